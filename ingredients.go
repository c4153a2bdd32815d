package main

import (
	"fmt"
	"strings"

	"foodgram/models"

	json "github.com/goccy/go-json"
)

// parseIngredients decodes an ingredient fixture and rejects entries
// without a name or unit
func parseIngredients(data []byte) ([]models.Ingredient, error) {
	var raw []struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode ingredients: %w", err)
	}

	out := make([]models.Ingredient, 0, len(raw))
	for i, r := range raw {
		name, unit := strings.TrimSpace(r.Name), strings.TrimSpace(r.MeasurementUnit)
		if name == "" || unit == "" {
			return nil, fmt.Errorf("ingredient %d: name and measurement_unit are required", i)
		}
		out = append(out, models.Ingredient{Name: name, MeasurementUnit: unit})
	}
	return out, nil
}
