package store

import (
	"context"
	"fmt"
	"regexp"

	"foodgram/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListIngredients returns ingredients whose name starts with prefix, by name
func (s *Store) ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	filter := bson.M{}
	if prefix != "" {
		filter["name"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix)}
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "measurement_unit", Value: 1}})
	cursor, err := s.ingredients.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	ingredients := []models.Ingredient{}
	if err := cursor.All(ctx, &ingredients); err != nil {
		return nil, fmt.Errorf("failed to decode ingredients: %w", err)
	}
	return ingredients, nil
}

// GetIngredient retrieves an ingredient by ID
func (s *Store) GetIngredient(ctx context.Context, id primitive.ObjectID) (*models.Ingredient, error) {
	var ing models.Ingredient
	if err := s.ingredients.FindOne(ctx, bson.M{"_id": id}).Decode(&ing); err != nil {
		return nil, notFound(err)
	}
	return &ing, nil
}

// IngredientsByIDs returns the ingredients among ids, keyed by ID
func (s *Store) IngredientsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Ingredient, error) {
	out := make(map[primitive.ObjectID]models.Ingredient, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cursor, err := s.ingredients.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find ingredients: %w", err)
	}
	var list []models.Ingredient
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("failed to decode ingredients: %w", err)
	}
	for _, ing := range list {
		out[ing.ID] = ing
	}
	return out, nil
}

// InsertIngredients bulk-loads ingredients and returns how many were stored
func (s *Store) InsertIngredients(ctx context.Context, ingredients []models.Ingredient) (int, error) {
	if len(ingredients) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, len(ingredients))
	for i := range ingredients {
		ingredients[i].ID = primitive.NewObjectID()
		docs[i] = ingredients[i]
	}
	res, err := s.ingredients.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("failed to insert ingredients: %w", err)
	}
	return len(res.InsertedIDs), nil
}

// ListTags returns all tags ordered by name
func (s *Store) ListTags(ctx context.Context) ([]models.Tag, error) {
	cursor, err := s.tags.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	tags := []models.Tag{}
	if err := cursor.All(ctx, &tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	return tags, nil
}

// GetTag retrieves a tag by ID
func (s *Store) GetTag(ctx context.Context, id primitive.ObjectID) (*models.Tag, error) {
	var tag models.Tag
	if err := s.tags.FindOne(ctx, bson.M{"_id": id}).Decode(&tag); err != nil {
		return nil, notFound(err)
	}
	return &tag, nil
}

// TagsByIDs returns the tags among ids, keyed by ID
func (s *Store) TagsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Tag, error) {
	out := make(map[primitive.ObjectID]models.Tag, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cursor, err := s.tags.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find tags: %w", err)
	}
	var list []models.Tag
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	for _, t := range list {
		out[t.ID] = t
	}
	return out, nil
}

func (s *Store) tagIDsBySlugs(ctx context.Context, slugs []string) ([]primitive.ObjectID, error) {
	cursor, err := s.tags.Find(ctx, bson.M{"slug": bson.M{"$in": slugs}}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to find tags by slug: %w", err)
	}
	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	ids := make([]primitive.ObjectID, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}
