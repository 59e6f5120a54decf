// Package groupqueries provides complex read-only queries for groups.
package groupqueries

import (
	"context"
	"time"

	"github.com/cardfolio/clubhouse/internal/app/system/paging"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// GroupListItem holds the result of a group list query. MemberCount is
// computed live from the group_members collection, not read from the
// denormalized field, so the listing never shows a stale count.
type GroupListItem struct {
	ID           primitive.ObjectID `bson:"_id"`
	Name         string             `bson:"name"`
	NameCI       string             `bson:"name_ci"`
	Description  string             `bson:"description"`
	OwnerID      string             `bson:"owner_id"`
	IsPrivate    bool               `bson:"is_private"`
	MemberCount  int                `bson:"member_count"`
	LastActivity time.Time          `bson:"last_activity"`
	CreatedAt    time.Time          `bson:"created_at"`
}

// GroupListResult contains the paginated results and metadata.
type GroupListResult struct {
	Items []GroupListItem
	Total int64
}

// ListFilter defines the filter options for listing groups.
type ListFilter struct {
	SearchQuery string // prefix search on name_ci
	MemberID    string // non-empty: groups this uid belongs to (including private)
}

// ListGroups fetches a paginated list of groups with live membership counts
// using a single aggregation pipeline with $facet.
//
// Without a MemberID filter only public groups are returned.
func ListGroups(
	ctx context.Context,
	db *mongo.Database,
	filter ListFilter,
	cfg paging.KeysetConfig,
) (GroupListResult, error) {
	var result GroupListResult

	// Build base filter (without keyset window for total count)
	baseClauses := buildBaseClauses(filter)
	baseFilter := andify(baseClauses)

	// Build aggregation pipeline with $facet to get data and count in one query
	pipe := mongo.Pipeline{
		// Match base filter first (for accurate total count)
		bson.D{{Key: "$match", Value: baseFilter}},
		// Use $facet to run count and data queries in parallel
		bson.D{{Key: "$facet", Value: bson.M{
			"totalCount": []bson.M{
				{"$count": "count"},
			},
			"data": buildDataPipeline(cfg),
		}}},
	}

	cur, err := db.Collection("groups").Aggregate(ctx, pipe)
	if err != nil {
		return result, err
	}
	defer cur.Close(ctx)

	// Parse aggregation result
	var aggResult struct {
		TotalCount []struct {
			Count int64 `bson:"count"`
		} `bson:"totalCount"`
		Data []GroupListItem `bson:"data"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&aggResult); err != nil {
			return result, err
		}
	}

	if len(aggResult.TotalCount) > 0 {
		result.Total = aggResult.TotalCount[0].Count
	}
	result.Items = aggResult.Data

	return result, nil
}

// buildBaseClauses builds the base filter clauses from the ListFilter.
func buildBaseClauses(filter ListFilter) []bson.M {
	var clauses []bson.M
	if filter.MemberID != "" {
		// Membership scope: uses the multikey index over member_ids
		clauses = append(clauses, bson.M{"member_ids": filter.MemberID})
	} else {
		clauses = append(clauses, bson.M{"is_private": false})
	}
	if filter.SearchQuery != "" {
		q := text.Fold(filter.SearchQuery)
		hi := q + "￿"
		clauses = append(clauses, bson.M{"name_ci": bson.M{"$gte": q, "$lt": hi}})
	}
	return clauses
}

// buildDataPipeline constructs the data portion of the $facet pipeline.
// It applies keyset pagination and computes live membership counts.
func buildDataPipeline(cfg paging.KeysetConfig) []bson.M {
	pipeline := []bson.M{}

	// Apply keyset window filter if present (re-match after facet's base match)
	if ks := cfg.KeysetWindow("name_ci"); ks != nil {
		pipeline = append(pipeline, bson.M{"$match": ks})
	}

	// Sort and limit for pagination
	pipeline = append(pipeline,
		bson.M{"$sort": bson.D{
			{Key: "name_ci", Value: cfg.SortOrder},
			{Key: "_id", Value: cfg.SortOrder},
		}},
		bson.M{"$limit": paging.LimitPlusOne()},
	)

	// Count member records per group
	pipeline = append(pipeline,
		bson.M{"$lookup": bson.M{
			"from": "group_members",
			"let":  bson.M{"gid": "$_id"},
			"pipeline": []bson.M{
				{"$match": bson.M{"$expr": bson.M{"$eq": []string{"$group_id", "$$gid"}}}},
				{"$count": "count"},
			},
			"as": "members",
		}},
	)

	// Project final fields with the computed count
	pipeline = append(pipeline,
		bson.M{"$project": bson.M{
			"_id":           1,
			"name":          1,
			"name_ci":       1,
			"description":   1,
			"owner_id":      1,
			"is_private":    1,
			"last_activity": 1,
			"created_at":    1,
			"member_count": bson.M{"$ifNull": []interface{}{
				bson.M{"$arrayElemAt": []interface{}{"$members.count", 0}},
				0,
			}},
		}},
	)

	return pipeline
}

// andify composes clauses into a single bson.M with optional $and.
func andify(clauses []bson.M) bson.M {
	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0]
	default:
		return bson.M{"$and": clauses}
	}
}
