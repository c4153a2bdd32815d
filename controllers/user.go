package controllers

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"foodgram/middleware"
	"foodgram/models"
	"foodgram/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserController handles author profiles and subscriptions
type UserController struct {
	Store Store
	view  *presenter
}

// NewUserController creates a new UserController
func NewUserController(s Store) *UserController {
	return &UserController{Store: s, view: &presenter{store: s}}
}

// GetUsers lists all users
func (uc *UserController) GetUsers(w http.ResponseWriter, r *http.Request) {
	viewer, _ := middleware.CurrentUser(r)
	ctx, cancel := requestContext(r)
	defer cancel()

	users, err := uc.Store.ListUsers(ctx)
	if err != nil {
		internalError(w, r, "Error fetching users", err)
		return
	}
	views := make([]AuthorView, 0, len(users))
	for _, u := range users {
		v, err := uc.view.author(ctx, viewer, u)
		if err != nil {
			internalError(w, r, "Error fetching users", err)
			return
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, views)
}

// GetUserByID retrieves a single user
func (uc *UserController) GetUserByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	viewer, _ := middleware.CurrentUser(r)
	uc.writeUser(w, r, viewer, id)
}

// GetProfile returns the current user
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	uc.writeUser(w, r, userID, userID)
}

func (uc *UserController) writeUser(w http.ResponseWriter, r *http.Request, viewer, id primitive.ObjectID) {
	ctx, cancel := requestContext(r)
	defer cancel()

	user, err := uc.Store.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		internalError(w, r, "Error fetching user", err)
		return
	}
	view, err := uc.view.author(ctx, viewer, *user)
	if err != nil {
		internalError(w, r, "Error fetching user", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Subscribe makes the current user follow the author {id}
func (uc *UserController) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	authorID, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	if authorID == userID {
		writeError(w, http.StatusBadRequest, "You cannot subscribe to yourself")
		return
	}
	limit, err := recipesLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	author, err := uc.Store.GetUser(ctx, authorID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		internalError(w, r, "Error subscribing", err)
		return
	}

	err = uc.Store.Follow(ctx, userID, authorID)
	if errors.Is(err, store.ErrDuplicate) {
		writeError(w, http.StatusBadRequest, "You are already subscribed to this author")
		return
	}
	if err != nil {
		internalError(w, r, "Error subscribing", err)
		return
	}

	view, err := uc.subscription(r, *author, limit)
	if err != nil {
		internalError(w, r, "Error subscribing", err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// Unsubscribe removes the current user's subscription to {id}
func (uc *UserController) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	authorID, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	if _, err := uc.Store.GetUser(ctx, authorID); errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		internalError(w, r, "Error unsubscribing", err)
		return
	}

	err := uc.Store.Unfollow(ctx, userID, authorID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusBadRequest, "You are not subscribed to this author")
		return
	}
	if err != nil {
		internalError(w, r, "Error unsubscribing", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSubscriptions lists the authors the current user follows, by username.
// ?recipes_limit caps the recipes shown per author.
func (uc *UserController) GetSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	limit, err := recipesLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	ids, err := uc.Store.FollowedAuthors(ctx, userID)
	if err != nil {
		internalError(w, r, "Error fetching subscriptions", err)
		return
	}
	users, err := uc.Store.UsersByIDs(ctx, ids)
	if err != nil {
		internalError(w, r, "Error fetching subscriptions", err)
		return
	}

	authors := make([]models.User, 0, len(users))
	for _, u := range users {
		authors = append(authors, u)
	}
	sort.Slice(authors, func(i, j int) bool {
		if authors[i].Username != authors[j].Username {
			return authors[i].Username < authors[j].Username
		}
		return authors[i].ID.Hex() < authors[j].ID.Hex()
	})

	views := make([]SubscriptionView, 0, len(authors))
	for _, a := range authors {
		v, err := uc.subscription(r, a, limit)
		if err != nil {
			internalError(w, r, "Error fetching subscriptions", err)
			return
		}
		views = append(views, *v)
	}
	writeJSON(w, http.StatusOK, views)
}

func (uc *UserController) subscription(r *http.Request, author models.User, limit int) (*SubscriptionView, error) {
	ctx, cancel := requestContext(r)
	defer cancel()

	recipes, err := uc.Store.RecipesByAuthor(ctx, author.ID, limit)
	if err != nil {
		return nil, err
	}
	count, err := uc.Store.CountRecipesByAuthor(ctx, author.ID)
	if err != nil {
		return nil, err
	}

	view := &SubscriptionView{
		AuthorView: AuthorView{
			ID:           author.ID,
			Email:        author.Email,
			Username:     author.Username,
			FirstName:    author.FirstName,
			LastName:     author.LastName,
			IsSubscribed: true,
		},
		Recipes:      make([]ShortRecipeView, 0, len(recipes)),
		RecipesCount: count,
	}
	for _, rec := range recipes {
		view.Recipes = append(view.Recipes, shortRecipe(rec))
	}
	return view, nil
}

func recipesLimit(r *http.Request) (int, error) {
	v := r.URL.Query().Get("recipes_limit")
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New("recipes_limit must be a non-negative integer")
	}
	return n, nil
}
