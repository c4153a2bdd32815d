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

// Follow subscribes userID to authorID
func (s *Store) Follow(ctx context.Context, userID, authorID primitive.ObjectID) error {
	_, err := s.follows.InsertOne(ctx, models.Follow{
		ID:       primitive.NewObjectID(),
		UserID:   userID,
		AuthorID: authorID,
	})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert follow: %w", err)
	}
	return nil
}

// Unfollow removes a subscription, returning ErrNotFound when there is none
func (s *Store) Unfollow(ctx context.Context, userID, authorID primitive.ObjectID) error {
	res, err := s.follows.DeleteOne(ctx, bson.M{"user_id": userID, "author_id": authorID})
	if err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IsFollowing reports whether userID follows authorID
func (s *Store) IsFollowing(ctx context.Context, userID, authorID primitive.ObjectID) (bool, error) {
	n, err := s.follows.CountDocuments(ctx, bson.M{"user_id": userID, "author_id": authorID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count follows: %w", err)
	}
	return n > 0, nil
}

// FollowedAuthors lists the authors userID follows
func (s *Store) FollowedAuthors(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := s.follows.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to read follows: %w", err)
	}
	var rows []models.Follow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode follows: %w", err)
	}
	ids := make([]primitive.ObjectID, len(rows))
	for i, f := range rows {
		ids[i] = f.AuthorID
	}
	return ids, nil
}
