// Package storeutil holds find-option helpers shared by the Mongo stores.
package storeutil

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultPageSize = 20

// Page returns find options for the given 1-based page, sorted newest
// first on the named time field. Out-of-range page and limit values fall
// back to the first page and the default size.
func Page(timeField string, page, limit int64) *options.FindOptions {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	return options.Find().
		SetSort(bson.D{{Key: timeField, Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
}
