package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account managed by the external identity service.
// The API only reads users.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	Username  string             `bson:"username" json:"username"`
	FirstName string             `bson:"first_name" json:"first_name"`
	LastName  string             `bson:"last_name" json:"last_name"`
}

// Follow links a subscriber to an author
type Follow struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	AuthorID primitive.ObjectID `bson:"author_id" json:"author_id"`
}
