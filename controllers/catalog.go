package controllers

import (
	"errors"
	"net/http"

	"foodgram/store"
)

// CatalogController serves the read-only ingredient and tag directories
type CatalogController struct {
	Store Store
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(s Store) *CatalogController {
	return &CatalogController{Store: s}
}

// GetIngredients lists ingredients, optionally filtered by ?name= prefix
func (cc *CatalogController) GetIngredients(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	ingredients, err := cc.Store.ListIngredients(ctx, r.URL.Query().Get("name"))
	if err != nil {
		internalError(w, r, "Error fetching ingredients", err)
		return
	}
	writeJSON(w, http.StatusOK, ingredients)
}

// GetIngredientByID retrieves a single ingredient
func (cc *CatalogController) GetIngredientByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid ingredient ID")
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	ingredient, err := cc.Store.GetIngredient(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Ingredient not found")
		return
	}
	if err != nil {
		internalError(w, r, "Error fetching ingredient", err)
		return
	}
	writeJSON(w, http.StatusOK, ingredient)
}

// GetTags lists all tags
func (cc *CatalogController) GetTags(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	tags, err := cc.Store.ListTags(ctx)
	if err != nil {
		internalError(w, r, "Error fetching tags", err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// GetTagByID retrieves a single tag
func (cc *CatalogController) GetTagByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid tag ID")
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	tag, err := cc.Store.GetTag(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Tag not found")
		return
	}
	if err != nil {
		internalError(w, r, "Error fetching tag", err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}
