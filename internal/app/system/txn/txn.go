// internal/app/system/txn/txn.go
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.uber.org/zap"
)

// Run executes fn inside a MongoDB multi-document transaction.
//
// The callback receives a session-bound context; every store call made with
// that context joins the same transaction. WithTransaction retries fn on
// transient transaction errors, so fn must be safe to run more than once
// (re-read state, derive writes from the reads, no external side effects).
//
// Deployments without replica sets (e.g. a standalone mongod in dev) do not
// support transactions. When that is detected, fn runs once without a
// transaction so the application still works, at the cost of atomicity.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	session, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			log.Debug("sessions unsupported on this topology; running without transaction")
			return fn(ctx)
		}
		return err
	}
	defer session.EndSession(ctx)

	opts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, opts)
	if err != nil {
		if IsNotSupported(err) {
			log.Debug("transactions unsupported on this topology; running without transaction",
				zap.Error(err))
			return fn(ctx)
		}
		return err
	}
	return nil
}

// IsNotSupported reports whether err indicates the server cannot run
// transactions at all (standalone topology, sessions disabled), as opposed
// to a transaction that failed and should surface to the caller.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		// 20 IllegalOperation, 51 NoSuchTransaction variants,
		// 263 OperationNotSupportedInTransaction.
		switch cmdErr.Code {
		case 20, 51, 263:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	contains := func(s string) bool { return strings.Contains(msg, s) }
	switch {
	case contains("transaction") && contains("replica set"):
		return true
	case contains("session") && contains("not supported"):
		return true
	case contains("transaction") && contains("session"):
		return true
	case contains("transaction") && contains("illegal operation"):
		return true
	}
	return false
}
