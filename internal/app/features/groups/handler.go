// internal/app/features/groups/handler.go
package groups

import (
	"errors"
	"net/http"
	"time"

	"github.com/cardfolio/clubhouse/internal/app/moderation"
	groupstore "github.com/cardfolio/clubhouse/internal/app/store/groups"
	memberstore "github.com/cardfolio/clubhouse/internal/app/store/members"
	"github.com/cardfolio/clubhouse/internal/app/system/auditlog"
	"github.com/cardfolio/clubhouse/internal/app/system/httpapi"
	"github.com/cardfolio/clubhouse/internal/app/system/ratelimit"
	"github.com/cardfolio/clubhouse/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the group membership and moderation handlers.
type Handler struct {
	DB         *mongo.Database
	Engine     *moderation.Engine
	Groups     *groupstore.Store
	Members    *memberstore.Store
	Log        *zap.Logger
	ErrLog     *httpapi.ErrorLogger
	Audit      *auditlog.Logger
	ModLimiter *ratelimit.Limiter
}

// NewHandler constructs a groups Handler.
func NewHandler(db *mongo.Database, log *zap.Logger, audit *auditlog.Logger, modLimiter *ratelimit.Limiter) *Handler {
	return &Handler{
		DB:         db,
		Engine:     moderation.New(db, log),
		Groups:     groupstore.New(db),
		Members:    memberstore.New(db),
		Log:        log,
		ErrLog:     httpapi.NewErrorLogger(log),
		Audit:      audit,
		ModLimiter: modLimiter,
	}
}

// groupJSON is the wire shape of a group.
type groupJSON struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	OwnerID      string    `json:"ownerId"`
	IsPrivate    bool      `json:"isPrivate"`
	MemberCount  int       `json:"memberCount"`
	LastActivity time.Time `json:"lastActivity"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toGroupJSON(g models.Group) groupJSON {
	return groupJSON{
		ID:           g.ID.Hex(),
		Name:         g.Name,
		Description:  g.Description,
		OwnerID:      g.OwnerID,
		IsPrivate:    g.IsPrivate,
		MemberCount:  g.MemberCount,
		LastActivity: g.LastActivity,
		CreatedAt:    g.CreatedAt,
	}
}

// groupIDParam parses the {groupID} route parameter. A malformed id can
// never name an existing group, so callers answer !ok with 404.
func groupIDParam(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "groupID"))
	return id, err == nil
}

// respondEngineError translates a failed transition into the wire contract.
// The switch is exhaustive over the failure kinds; an unrecognized kind or a
// raw store error is a server fault and answers 500 with a generic body.
func (h *Handler) respondEngineError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if f, ok := moderation.AsFailure(err); ok {
		switch f.Kind {
		case moderation.KindGroupNotFound, moderation.KindMemberNotFound:
			httpapi.Error(w, http.StatusNotFound, f.Message)
		case moderation.KindForbidden:
			httpapi.Error(w, http.StatusForbidden, f.Message)
		case moderation.KindNotBanned:
			httpapi.Error(w, http.StatusBadRequest, f.Message)
		case moderation.KindAlreadyBanned, moderation.KindAlreadyMember:
			httpapi.Error(w, http.StatusConflict, f.Message)
		default:
			h.ErrLog.LogServerError(w, r, "unmapped failure kind in "+op, err, "internal server error")
		}
		return
	}
	if errors.Is(err, groupstore.ErrDuplicateGroupName) {
		httpapi.Error(w, http.StatusConflict, err.Error())
		return
	}
	h.ErrLog.LogServerError(w, r, "failed to "+op, err, "internal server error")
}
