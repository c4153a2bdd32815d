package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRecipe is the shape shared by shopping cart and favorite entries.
// A (user, recipe) pair appears at most once per collection.
type UserRecipe struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	RecipeID primitive.ObjectID `bson:"recipe_id" json:"recipe_id"`
}

// CartIngredient is one ingredient row of one recipe in a user's cart,
// as read from the database before aggregation.
type CartIngredient struct {
	Name            string `bson:"name"`
	MeasurementUnit string `bson:"measurement_unit"`
	Amount          int    `bson:"amount"`
}
