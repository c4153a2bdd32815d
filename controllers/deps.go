package controllers

import (
	"context"

	"foodgram/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is the persistence the handlers need
type Store interface {
	UserExists(ctx context.Context, id primitive.ObjectID) (bool, error)
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UsersByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error)

	ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id primitive.ObjectID) (*models.Ingredient, error)
	IngredientsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Ingredient, error)

	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id primitive.ObjectID) (*models.Tag, error)
	TagsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Tag, error)

	CreateRecipe(ctx context.Context, r *models.Recipe) error
	GetRecipe(ctx context.Context, id primitive.ObjectID) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, r *models.Recipe) error
	DeleteRecipe(ctx context.Context, id primitive.ObjectID) error
	ListRecipes(ctx context.Context, f models.RecipeFilter) ([]models.Recipe, error)
	RecipesByAuthor(ctx context.Context, authorID primitive.ObjectID, limit int) ([]models.Recipe, error)
	CountRecipesByAuthor(ctx context.Context, authorID primitive.ObjectID) (int64, error)

	Follow(ctx context.Context, userID, authorID primitive.ObjectID) error
	Unfollow(ctx context.Context, userID, authorID primitive.ObjectID) error
	IsFollowing(ctx context.Context, userID, authorID primitive.ObjectID) (bool, error)
	FollowedAuthors(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// Relation is a unique set of (user, recipe) pairs: cart or favorites
type Relation interface {
	Add(ctx context.Context, userID, recipeID primitive.ObjectID) error
	Remove(ctx context.Context, userID, recipeID primitive.ObjectID) error
	Exists(ctx context.Context, userID, recipeID primitive.ObjectID) (bool, error)
}

// Mailer delivers a rendered shopping list by email
type Mailer interface {
	SendShoppingList(toEmail string, htmlBody, textBody []byte) error
}
