// Package shopping builds the downloadable shopping list for a user's cart.
package shopping

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"foodgram/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when the user does not exist.
var ErrNotFound = errors.New("user not found")

// Line is one aggregated ingredient of the shopping list
type Line struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	TotalAmount     int    `json:"total_amount"`
}

// Source reads cart data from persistence.
type Source interface {
	UserExists(ctx context.Context, userID primitive.ObjectID) (bool, error)
	CartIngredients(ctx context.Context, userID primitive.ObjectID) ([]models.CartIngredient, error)
}

// Aggregator sums ingredient amounts over every recipe in a user's cart
type Aggregator struct {
	source Source
}

// NewAggregator creates a new Aggregator
func NewAggregator(source Source) *Aggregator {
	return &Aggregator{source: source}
}

// Aggregate returns the ingredient totals for userID sorted by name, then unit.
// An empty cart yields an empty list.
func (a *Aggregator) Aggregate(ctx context.Context, userID primitive.ObjectID) ([]Line, error) {
	ok, err := a.source.UserExists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !ok {
		return nil, ErrNotFound
	}

	rows, err := a.source.CartIngredients(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart ingredients: %w", err)
	}
	return Group(rows), nil
}

type groupKey struct {
	name string
	unit string
}

// Group merges rows sharing the same (name, measurement unit) and sums their amounts.
func Group(rows []models.CartIngredient) []Line {
	totals := make(map[groupKey]int, len(rows))
	for _, row := range rows {
		totals[groupKey{row.Name, row.MeasurementUnit}] += row.Amount
	}

	lines := make([]Line, 0, len(totals))
	for k, total := range totals {
		lines = append(lines, Line{Name: k.name, MeasurementUnit: k.unit, TotalAmount: total})
	}
	// keys are unique, so name+unit is a total order
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Name != lines[j].Name {
			return lines[i].Name < lines[j].Name
		}
		return lines[i].MeasurementUnit < lines[j].MeasurementUnit
	})
	return lines
}
