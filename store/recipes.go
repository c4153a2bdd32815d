package store

import (
	"context"
	"fmt"
	"time"

	"foodgram/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var newestFirst = bson.D{{Key: "pub_date", Value: -1}, {Key: "_id", Value: -1}}

// CreateRecipe stores r, assigning its ID and publication date
func (s *Store) CreateRecipe(ctx context.Context, r *models.Recipe) error {
	r.ID = primitive.NewObjectID()
	r.PubDate = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := s.recipes.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("failed to insert recipe: %w", err)
	}
	return nil
}

// GetRecipe retrieves a recipe by ID
func (s *Store) GetRecipe(ctx context.Context, id primitive.ObjectID) (*models.Recipe, error) {
	var r models.Recipe
	if err := s.recipes.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

// UpdateRecipe replaces the stored recipe with r
func (s *Store) UpdateRecipe(ctx context.Context, r *models.Recipe) error {
	res, err := s.recipes.ReplaceOne(ctx, bson.M{"_id": r.ID}, r)
	if err != nil {
		return fmt.Errorf("failed to update recipe: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRecipe removes a recipe together with its cart and favorite entries
func (s *Store) DeleteRecipe(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.recipes.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	if err := s.Carts.deleteRecipe(ctx, id); err != nil {
		return err
	}
	return s.Favorites.deleteRecipe(ctx, id)
}

// ListRecipes returns the recipes matching f, newest first
func (s *Store) ListRecipes(ctx context.Context, f models.RecipeFilter) ([]models.Recipe, error) {
	filter := bson.M{}
	if !f.AuthorID.IsZero() {
		filter["author_id"] = f.AuthorID
	}
	if len(f.TagSlugs) > 0 {
		ids, err := s.tagIDsBySlugs(ctx, f.TagSlugs)
		if err != nil {
			return nil, err
		}
		filter["tag_ids"] = bson.M{"$in": ids}
	}

	// favorites and cart filters intersect
	var restrict []primitive.ObjectID
	restricted := false
	for _, rel := range []struct {
		user primitive.ObjectID
		set  *UserRecipes
	}{{f.FavoritedBy, s.Favorites}, {f.InShoppingCartOf, s.Carts}} {
		if rel.user.IsZero() {
			continue
		}
		ids, err := rel.set.RecipeIDs(ctx, rel.user)
		if err != nil {
			return nil, err
		}
		if restricted {
			restrict = intersect(restrict, ids)
		} else {
			restrict, restricted = ids, true
		}
	}
	if restricted {
		filter["_id"] = bson.M{"$in": restrict}
	}

	cursor, err := s.recipes.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	recipes := []models.Recipe{}
	if err := cursor.All(ctx, &recipes); err != nil {
		return nil, fmt.Errorf("failed to decode recipes: %w", err)
	}
	return recipes, nil
}

// RecipesByAuthor returns up to limit of an author's newest recipes.
// limit <= 0 means no limit.
func (s *Store) RecipesByAuthor(ctx context.Context, authorID primitive.ObjectID, limit int) ([]models.Recipe, error) {
	opts := options.Find().SetSort(newestFirst)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := s.recipes.Find(ctx, bson.M{"author_id": authorID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list author recipes: %w", err)
	}
	recipes := []models.Recipe{}
	if err := cursor.All(ctx, &recipes); err != nil {
		return nil, fmt.Errorf("failed to decode recipes: %w", err)
	}
	return recipes, nil
}

// CountRecipesByAuthor counts an author's recipes
func (s *Store) CountRecipesByAuthor(ctx context.Context, authorID primitive.ObjectID) (int64, error) {
	n, err := s.recipes.CountDocuments(ctx, bson.M{"author_id": authorID})
	if err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return n, nil
}

func intersect(a, b []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(b))
	for _, id := range b {
		seen[id] = struct{}{}
	}
	out := []primitive.ObjectID{}
	for _, id := range a {
		if _, ok := seen[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
