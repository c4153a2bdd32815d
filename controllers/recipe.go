package controllers

import (
	"context"
	"errors"
	"net/http"

	"foodgram/middleware"
	"foodgram/models"
	"foodgram/store"
	"foodgram/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecipeInput is the body of recipe create and update requests
type RecipeInput struct {
	Ingredients []IngredientInput `json:"ingredients" validate:"required,min=1,unique=ID,dive"`
	Tags        []string          `json:"tags" validate:"required,min=1,unique,dive,mongodb"`
	Image       string            `json:"image"`
	Name        string            `json:"name" validate:"required,max=200"`
	Text        string            `json:"text" validate:"required"`
	CookingTime int               `json:"cooking_time" validate:"min=1"`
}

// IngredientInput references a catalog ingredient with its amount
type IngredientInput struct {
	ID     string `json:"id" validate:"required,mongodb"`
	Amount int    `json:"amount" validate:"min=1,max=32767"`
}

// RecipeController handles recipe CRUD
type RecipeController struct {
	Store Store
	view  *presenter
}

// NewRecipeController creates a new RecipeController
func NewRecipeController(s Store, carts, favorites Relation) *RecipeController {
	return &RecipeController{
		Store: s,
		view:  &presenter{store: s, carts: carts, favorites: favorites},
	}
}

// GetRecipes lists recipes, newest first.
// Filters: author, tags (repeatable slug), is_favorited, is_in_shopping_cart.
func (rc *RecipeController) GetRecipes(w http.ResponseWriter, r *http.Request) {
	viewer, _ := middleware.CurrentUser(r)
	q := r.URL.Query()

	var filter models.RecipeFilter
	if author := q.Get("author"); author != "" {
		id, err := primitive.ObjectIDFromHex(author)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid author ID")
			return
		}
		filter.AuthorID = id
	}
	filter.TagSlugs = q["tags"]
	if isEnabled(q.Get("is_favorited")) || isEnabled(q.Get("is_in_shopping_cart")) {
		if viewer.IsZero() {
			writeError(w, http.StatusUnauthorized, "Authentication required for this filter")
			return
		}
		if isEnabled(q.Get("is_favorited")) {
			filter.FavoritedBy = viewer
		}
		if isEnabled(q.Get("is_in_shopping_cart")) {
			filter.InShoppingCartOf = viewer
		}
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	recipes, err := rc.Store.ListRecipes(ctx, filter)
	if err != nil {
		internalError(w, r, "Error fetching recipes", err)
		return
	}
	views, err := rc.view.recipes(ctx, viewer, recipes)
	if err != nil {
		internalError(w, r, "Error fetching recipes", err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// GetRecipeByID retrieves a single recipe
func (rc *RecipeController) GetRecipeByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid recipe ID")
		return
	}
	viewer, _ := middleware.CurrentUser(r)
	ctx, cancel := requestContext(r)
	defer cancel()

	recipe, err := rc.Store.GetRecipe(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Recipe not found")
		return
	}
	if err != nil {
		internalError(w, r, "Error fetching recipe", err)
		return
	}
	view, err := rc.view.recipe(ctx, viewer, *recipe)
	if err != nil {
		internalError(w, r, "Error fetching recipe", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// CreateRecipe publishes a recipe authored by the current user
func (rc *RecipeController) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input RecipeInput
	if err := decode(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if errs := utils.Validate(&input); errs != nil {
		writeValidation(w, errs)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	recipe := &models.Recipe{AuthorID: userID}
	if errs, err := rc.apply(ctx, recipe, input); err != nil {
		internalError(w, r, "Error creating recipe", err)
		return
	} else if errs != nil {
		writeValidation(w, errs)
		return
	}
	if err := rc.Store.CreateRecipe(ctx, recipe); err != nil {
		internalError(w, r, "Error creating recipe", err)
		return
	}

	view, err := rc.view.recipe(ctx, userID, *recipe)
	if err != nil {
		internalError(w, r, "Error creating recipe", err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// UpdateRecipe replaces a recipe's content. Only the author may update it.
func (rc *RecipeController) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid recipe ID")
		return
	}

	var input RecipeInput
	if err := decode(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if errs := utils.Validate(&input); errs != nil {
		writeValidation(w, errs)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	recipe, err := rc.Store.GetRecipe(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Recipe not found")
		return
	}
	if err != nil {
		internalError(w, r, "Error updating recipe", err)
		return
	}
	if recipe.AuthorID != userID {
		writeError(w, http.StatusForbidden, "Only the author can change this recipe")
		return
	}

	if errs, err := rc.apply(ctx, recipe, input); err != nil {
		internalError(w, r, "Error updating recipe", err)
		return
	} else if errs != nil {
		writeValidation(w, errs)
		return
	}
	if err := rc.Store.UpdateRecipe(ctx, recipe); err != nil {
		internalError(w, r, "Error updating recipe", err)
		return
	}

	view, err := rc.view.recipe(ctx, userID, *recipe)
	if err != nil {
		internalError(w, r, "Error updating recipe", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// DeleteRecipe removes a recipe. Only the author may delete it.
func (rc *RecipeController) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid recipe ID")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	recipe, err := rc.Store.GetRecipe(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Recipe not found")
		return
	}
	if err != nil {
		internalError(w, r, "Error deleting recipe", err)
		return
	}
	if recipe.AuthorID != userID {
		writeError(w, http.StatusForbidden, "Only the author can delete this recipe")
		return
	}
	if err := rc.Store.DeleteRecipe(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		internalError(w, r, "Error deleting recipe", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apply copies validated input onto recipe after checking that every
// referenced tag and ingredient exists. It returns field errors for unknown
// references.
func (rc *RecipeController) apply(ctx context.Context, recipe *models.Recipe, input RecipeInput) (map[string]string, error) {
	tagIDs := make([]primitive.ObjectID, len(input.Tags))
	for i, t := range input.Tags {
		tagIDs[i], _ = primitive.ObjectIDFromHex(t)
	}
	tags, err := rc.Store.TagsByIDs(ctx, tagIDs)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(tagIDs) {
		return map[string]string{"RecipeInput.Tags": "unknown tag"}, nil
	}

	items := make([]models.RecipeIngredient, len(input.Ingredients))
	ids := make([]primitive.ObjectID, len(input.Ingredients))
	for i, in := range input.Ingredients {
		ids[i], _ = primitive.ObjectIDFromHex(in.ID)
		items[i] = models.RecipeIngredient{IngredientID: ids[i], Amount: in.Amount}
	}
	ingredients, err := rc.Store.IngredientsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(ingredients) != len(ids) {
		return map[string]string{"RecipeInput.Ingredients": "unknown ingredient"}, nil
	}

	recipe.Name = input.Name
	recipe.Text = input.Text
	recipe.Image = input.Image
	recipe.CookingTime = input.CookingTime
	recipe.TagIDs = tagIDs
	recipe.Ingredients = items
	return nil, nil
}
