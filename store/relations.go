package store

import (
	"context"
	"fmt"

	"foodgram/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRecipes is a set of (user, recipe) pairs: the shopping cart or the
// favorites. A unique index keeps each pair at most once.
type UserRecipes struct {
	coll *mongo.Collection
}

// Add inserts the pair, returning ErrDuplicate when it already exists
func (u *UserRecipes) Add(ctx context.Context, userID, recipeID primitive.ObjectID) error {
	_, err := u.coll.InsertOne(ctx, models.UserRecipe{
		ID:       primitive.NewObjectID(),
		UserID:   userID,
		RecipeID: recipeID,
	})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", u.coll.Name(), err)
	}
	return nil
}

// Remove deletes the pair, returning ErrNotFound when it is absent
func (u *UserRecipes) Remove(ctx context.Context, userID, recipeID primitive.ObjectID) error {
	res, err := u.coll.DeleteOne(ctx, bson.M{"user_id": userID, "recipe_id": recipeID})
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", u.coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Exists reports whether the pair is present
func (u *UserRecipes) Exists(ctx context.Context, userID, recipeID primitive.ObjectID) (bool, error) {
	n, err := u.coll.CountDocuments(ctx, bson.M{"user_id": userID, "recipe_id": recipeID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count %s: %w", u.coll.Name(), err)
	}
	return n > 0, nil
}

// RecipeIDs lists the recipes paired with userID
func (u *UserRecipes) RecipeIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := u.coll.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", u.coll.Name(), err)
	}
	var rows []models.UserRecipe
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", u.coll.Name(), err)
	}
	ids := make([]primitive.ObjectID, len(rows))
	for i, r := range rows {
		ids[i] = r.RecipeID
	}
	return ids, nil
}

func (u *UserRecipes) deleteRecipe(ctx context.Context, recipeID primitive.ObjectID) error {
	if _, err := u.coll.DeleteMany(ctx, bson.M{"recipe_id": recipeID}); err != nil {
		return fmt.Errorf("failed to cascade recipe delete to %s: %w", u.coll.Name(), err)
	}
	return nil
}

// cartIngredientsPipeline flattens every ingredient of every recipe in a
// user's cart into (name, measurement_unit, amount) rows.
func cartIngredientsPipeline(userID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         RecipesCollection,
			"localField":   "recipe_id",
			"foreignField": "_id",
			"as":           "recipe",
		}}},
		{{Key: "$unwind", Value: "$recipe"}},
		{{Key: "$unwind", Value: "$recipe.ingredients"}},
		{{Key: "$lookup", Value: bson.M{
			"from":         IngredientsCollection,
			"localField":   "recipe.ingredients.ingredient_id",
			"foreignField": "_id",
			"as":           "ingredient",
		}}},
		// a missing ingredient document still yields a row, with an empty
		// name and unit, so the report fails instead of under-reporting
		{{Key: "$unwind", Value: bson.M{"path": "$ingredient", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{
			"_id":              0,
			"name":             "$ingredient.name",
			"measurement_unit": "$ingredient.measurement_unit",
			"amount":           "$recipe.ingredients.amount",
		}}},
	}
}

// CartIngredients returns the ungrouped ingredient rows of a user's cart
func (s *Store) CartIngredients(ctx context.Context, userID primitive.ObjectID) ([]models.CartIngredient, error) {
	cursor, err := s.Carts.coll.Aggregate(ctx, cartIngredientsPipeline(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate cart ingredients: %w", err)
	}
	rows := []models.CartIngredient{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode cart ingredients: %w", err)
	}
	return rows, nil
}
