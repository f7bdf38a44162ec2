package mongodb

import (
	"strings"

	"brightsteps/internal/domain/entity"

	"go.mongodb.org/mongo-driver/bson"
)

// listingSort is the canonical activity order.
var listingSort = bson.D{
	{Key: "popularity", Value: -1},
	{Key: "createdAt", Value: -1},
	{Key: "_id", Value: 1},
}

// buildActivityFilter translates the typed filter into a query document.
func buildActivityFilter(f entity.ActivityFilter) bson.D {
	filter := bson.D{}

	if f.FreeOnly {
		filter = append(filter, bson.E{Key: "isPremium", Value: false})
	}
	if f.PackID != nil {
		filter = append(filter, bson.E{Key: "packId", Value: f.PackID.String()})
	}
	// age ranges overlap when stored.max >= ageMin and stored.min <= ageMax
	if f.AgeMin != nil {
		filter = append(filter, bson.E{Key: "ageRange.max", Value: bson.D{{Key: "$gte", Value: *f.AgeMin}}})
	}
	if f.AgeMax != nil {
		filter = append(filter, bson.E{Key: "ageRange.min", Value: bson.D{{Key: "$lte", Value: *f.AgeMax}}})
	}
	if len(f.DevelopmentalAreas) > 0 {
		filter = append(filter, bson.E{Key: "developmentalAreas", Value: bson.D{{Key: "$in", Value: areaStrings(f.DevelopmentalAreas)}}})
	}
	if f.TimeMax != nil {
		filter = append(filter, bson.E{Key: "timeRequired", Value: bson.D{{Key: "$lte", Value: *f.TimeMax}}})
	}
	if len(f.Materials) > 0 {
		filter = append(filter, bson.E{Key: "materials", Value: bson.D{{Key: "$all", Value: f.Materials}}})
	}
	if f.Difficulty != "" {
		filter = append(filter, bson.E{Key: "difficulty", Value: string(f.Difficulty)})
	}
	// Tokenized terms carry no quotes or leading dashes, so $text sees a plain OR of words.
	if terms := f.SearchTerms(); len(terms) > 0 {
		filter = append(filter, bson.E{Key: "$text", Value: bson.D{{Key: "$search", Value: strings.Join(terms, " ")}}})
	}

	return filter
}
