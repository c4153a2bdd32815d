// Package store keeps recipes, catalog data and user relations in MongoDB.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	// ErrNotFound is returned when a document does not exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique relation already exists
	ErrDuplicate = errors.New("already exists")
)

// Collection names
const (
	UsersCollection         = "users"
	IngredientsCollection   = "ingredients"
	TagsCollection          = "tags"
	RecipesCollection       = "recipes"
	ShoppingCartsCollection = "shopping_carts"
	FavoritesCollection     = "favorites"
	FollowsCollection       = "follows"
)

// Store is the MongoDB-backed persistence layer
type Store struct {
	db          *mongo.Database
	users       *mongo.Collection
	ingredients *mongo.Collection
	tags        *mongo.Collection
	recipes     *mongo.Collection
	follows     *mongo.Collection

	Carts     *UserRecipes
	Favorites *UserRecipes
}

// New creates a Store on top of db
func New(db *mongo.Database) *Store {
	return &Store{
		db:          db,
		users:       db.Collection(UsersCollection),
		ingredients: db.Collection(IngredientsCollection),
		tags:        db.Collection(TagsCollection),
		recipes:     db.Collection(RecipesCollection),
		follows:     db.Collection(FollowsCollection),
		Carts:       &UserRecipes{coll: db.Collection(ShoppingCartsCollection)},
		Favorites:   &UserRecipes{coll: db.Collection(FavoritesCollection)},
	}
}

// EnsureIndexes creates the unique and lookup indexes the API relies on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	specs := map[*mongo.Collection][]mongo.IndexModel{
		s.tags: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
		},
		s.ingredients: {
			{Keys: bson.D{{Key: "name", Value: 1}, {Key: "measurement_unit", Value: 1}}},
		},
		s.recipes: {
			{Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "pub_date", Value: -1}}},
			{Keys: bson.D{{Key: "tag_ids", Value: 1}}},
		},
		s.Carts.coll: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "recipe_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "recipe_id", Value: 1}}},
		},
		s.Favorites.coll: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "recipe_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "recipe_id", Value: 1}}},
		},
		s.follows: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "author_id", Value: 1}}, Options: unique},
		},
	}
	for coll, idx := range specs {
		if _, err := coll.Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
