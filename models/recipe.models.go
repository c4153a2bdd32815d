package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ingredient is a product with a fixed measurement unit
type Ingredient struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	MeasurementUnit string             `bson:"measurement_unit" json:"measurement_unit"`
}

// Tag groups recipes, e.g. "breakfast"
type Tag struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Color string             `bson:"color" json:"color"`
	Slug  string             `bson:"slug" json:"slug"`
}

// RecipeIngredient is the amount of one ingredient used in a recipe.
// Amount is always >= 1.
type RecipeIngredient struct {
	IngredientID primitive.ObjectID `bson:"ingredient_id" json:"id"`
	Amount       int                `bson:"amount" json:"amount"`
}

// Recipe represents a published recipe
type Recipe struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	AuthorID    primitive.ObjectID   `bson:"author_id" json:"author"`
	Name        string               `bson:"name" json:"name"`
	Text        string               `bson:"text" json:"text"`
	Image       string               `bson:"image" json:"image"`
	CookingTime int                  `bson:"cooking_time" json:"cooking_time"`
	PubDate     time.Time            `bson:"pub_date" json:"pub_date"`
	TagIDs      []primitive.ObjectID `bson:"tag_ids" json:"tags"`
	Ingredients []RecipeIngredient   `bson:"ingredients" json:"ingredients"`
}

// RecipeFilter narrows a recipe listing. Zero values mean "no filter".
type RecipeFilter struct {
	AuthorID         primitive.ObjectID
	TagSlugs         []string
	FavoritedBy      primitive.ObjectID
	InShoppingCartOf primitive.ObjectID
}
