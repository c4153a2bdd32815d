package controllers

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	"foodgram/middleware"
	"foodgram/shopping"
	"foodgram/store"
	"foodgram/utils"
)

// CartController handles the shopping cart and the shopping list download
type CartController struct {
	Store      Store
	Carts      Relation
	Aggregator *shopping.Aggregator
	// Mailer is nil when email delivery is not configured
	Mailer Mailer
}

// NewCartController creates a new CartController
func NewCartController(s Store, carts Relation, aggregator *shopping.Aggregator, mailer Mailer) *CartController {
	return &CartController{
		Store:      s,
		Carts:      carts,
		Aggregator: aggregator,
		Mailer:     mailer,
	}
}

// AddToCart puts a recipe into the user's shopping cart
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	addRelation(w, r, cc.Store, cc.Carts, "shopping cart")
}

// RemoveFromCart takes a recipe out of the user's shopping cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	removeRelation(w, r, cc.Carts, "shopping cart")
}

// DownloadShoppingCart renders the aggregated ingredients of every recipe in
// the cart as an attachment. ?format=txt (default) or html.
func (cc *CartController) DownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	format, err := shopping.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	lines, err := cc.Aggregator.Aggregate(ctx, userID)
	if errors.Is(err, shopping.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		utils.ShoppingReportsTotal.WithLabelValues(string(format), "error").Inc()
		internalError(w, r, "Error building shopping list", err)
		return
	}

	report, err := shopping.Render(lines, format)
	if err != nil {
		utils.ShoppingReportsTotal.WithLabelValues(string(format), "error").Inc()
		internalError(w, r, "Error rendering shopping list", err)
		return
	}
	utils.ShoppingReportsTotal.WithLabelValues(string(format), "ok").Inc()

	disposition := "inline"
	if report.Attachment {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": report.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(report.Body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(report.Body); err != nil {
		utils.Logger.Warn().Err(err).Msg("failed to write shopping list")
	}
}

// EmailShoppingCart sends the shopping list to the user's address in both
// text and HTML form
func (cc *CartController) EmailShoppingCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if cc.Mailer == nil {
		writeError(w, http.StatusServiceUnavailable, "Email delivery is not configured")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	lines, err := cc.Aggregator.Aggregate(ctx, userID)
	if errors.Is(err, shopping.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		internalError(w, r, "Error building shopping list", err)
		return
	}
	user, err := cc.Store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		internalError(w, r, "Error building shopping list", err)
		return
	}
	if user.Email == "" {
		writeError(w, http.StatusBadRequest, "User has no email address")
		return
	}

	text, err := shopping.Render(lines, shopping.FormatText)
	if err != nil {
		internalError(w, r, "Error rendering shopping list", err)
		return
	}
	html, err := shopping.Render(lines, shopping.FormatHTML)
	if err != nil {
		internalError(w, r, "Error rendering shopping list", err)
		return
	}

	if err := cc.Mailer.SendShoppingList(user.Email, html.Body, text.Body); err != nil {
		utils.Logger.Error().Err(err).Str("user_id", userID.Hex()).Msg("failed to email shopping list")
		writeError(w, http.StatusBadGateway, "Error sending email")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{"sent_to": user.Email, "items": text.Rows})
}

// FavoriteController handles favorite recipes
type FavoriteController struct {
	Store     Store
	Favorites Relation
}

// NewFavoriteController creates a new FavoriteController
func NewFavoriteController(s Store, favorites Relation) *FavoriteController {
	return &FavoriteController{Store: s, Favorites: favorites}
}

// AddFavorite marks a recipe as a favorite
func (fc *FavoriteController) AddFavorite(w http.ResponseWriter, r *http.Request) {
	addRelation(w, r, fc.Store, fc.Favorites, "favorites")
}

// RemoveFavorite unmarks a favorite recipe
func (fc *FavoriteController) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	removeRelation(w, r, fc.Favorites, "favorites")
}

func addRelation(w http.ResponseWriter, r *http.Request, s Store, rel Relation, what string) {
	userID, ok := middleware.CurrentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	recipeID, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid recipe ID")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	recipe, err := s.GetRecipe(ctx, recipeID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Recipe not found")
		return
	}
	if err != nil {
		internalError(w, r, "Error updating "+what, err)
		return
	}

	err = rel.Add(ctx, userID, recipeID)
	if errors.Is(err, store.ErrDuplicate) {
		writeError(w, http.StatusBadRequest, "Recipe is already in "+what)
		return
	}
	if err != nil {
		internalError(w, r, "Error updating "+what, err)
		return
	}
	writeJSON(w, http.StatusCreated, shortRecipe(*recipe))
}

func removeRelation(w http.ResponseWriter, r *http.Request, rel Relation, what string) {
	userID, ok := middleware.CurrentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	recipeID, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid recipe ID")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	err := rel.Remove(ctx, userID, recipeID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusBadRequest, "Recipe is not in "+what)
		return
	}
	if err != nil {
		internalError(w, r, "Error updating "+what, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
