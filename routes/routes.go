// routes/routes.go
package routes

import (
	"net/http"

	"foodgram/controllers"
	"foodgram/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const objectID = "{id:[0-9a-fA-F]{24}}"

// Controllers groups the handlers served by the API
type Controllers struct {
	Catalog  *controllers.CatalogController
	Recipe   *controllers.RecipeController
	Cart     *controllers.CartController
	Favorite *controllers.FavoriteController
	User     *controllers.UserController
	Health   *controllers.HealthController
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, c Controllers) {
	router.Use(middleware.RequestLogger)

	protected := func(h http.HandlerFunc) http.Handler { return middleware.AuthMiddleware(h) }
	optional := func(h http.HandlerFunc) http.Handler { return middleware.OptionalAuthMiddleware(h) }

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/healthz", c.Health.Health).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	// Catalog routes
	api.HandleFunc("/ingredients", c.Catalog.GetIngredients).Methods("GET")
	api.HandleFunc("/ingredients/"+objectID, c.Catalog.GetIngredientByID).Methods("GET")
	api.HandleFunc("/tags", c.Catalog.GetTags).Methods("GET")
	api.HandleFunc("/tags/"+objectID, c.Catalog.GetTagByID).Methods("GET")

	// Shopping list routes, registered before /recipes/{id}
	api.Handle("/recipes/download_shopping_cart/", protected(c.Cart.DownloadShoppingCart)).Methods("GET")
	api.Handle("/recipes/download_shopping_cart/email", protected(c.Cart.EmailShoppingCart)).Methods("POST")

	// Recipe routes
	api.Handle("/recipes", optional(c.Recipe.GetRecipes)).Methods("GET")
	api.Handle("/recipes", protected(c.Recipe.CreateRecipe)).Methods("POST")
	api.Handle("/recipes/"+objectID, optional(c.Recipe.GetRecipeByID)).Methods("GET")
	api.Handle("/recipes/"+objectID, protected(c.Recipe.UpdateRecipe)).Methods("PATCH")
	api.Handle("/recipes/"+objectID, protected(c.Recipe.DeleteRecipe)).Methods("DELETE")

	// Cart and favorite routes
	api.Handle("/recipes/"+objectID+"/shopping_cart", protected(c.Cart.AddToCart)).Methods("POST")
	api.Handle("/recipes/"+objectID+"/shopping_cart", protected(c.Cart.RemoveFromCart)).Methods("DELETE")
	api.Handle("/recipes/"+objectID+"/favorite", protected(c.Favorite.AddFavorite)).Methods("POST")
	api.Handle("/recipes/"+objectID+"/favorite", protected(c.Favorite.RemoveFavorite)).Methods("DELETE")

	// User routes
	api.Handle("/users", optional(c.User.GetUsers)).Methods("GET")
	api.Handle("/users/me", protected(c.User.GetProfile)).Methods("GET")
	api.Handle("/users/subscriptions", protected(c.User.GetSubscriptions)).Methods("GET")
	api.Handle("/users/"+objectID, optional(c.User.GetUserByID)).Methods("GET")
	api.Handle("/users/"+objectID+"/subscribe", protected(c.User.Subscribe)).Methods("POST")
	api.Handle("/users/"+objectID+"/subscribe", protected(c.User.Unsubscribe)).Methods("DELETE")
}
