package controllers

import (
	"context"

	"foodgram/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthorView is a user as seen by the viewer
type AuthorView struct {
	ID           primitive.ObjectID `json:"id"`
	Email        string             `json:"email"`
	Username     string             `json:"username"`
	FirstName    string             `json:"first_name"`
	LastName     string             `json:"last_name"`
	IsSubscribed bool               `json:"is_subscribed"`
}

// IngredientAmountView is an ingredient line of a recipe
type IngredientAmountView struct {
	ID              primitive.ObjectID `json:"id"`
	Name            string             `json:"name"`
	MeasurementUnit string             `json:"measurement_unit"`
	Amount          int                `json:"amount"`
}

// RecipeView is the read representation of a recipe
type RecipeView struct {
	ID               primitive.ObjectID     `json:"id"`
	Tags             []models.Tag           `json:"tags"`
	Author           AuthorView             `json:"author"`
	Ingredients      []IngredientAmountView `json:"ingredients"`
	Name             string                 `json:"name"`
	Text             string                 `json:"text"`
	CookingTime      int                    `json:"cooking_time"`
	Image            string                 `json:"image"`
	IsFavorited      bool                   `json:"is_favorited"`
	IsInShoppingCart bool                   `json:"is_in_shopping_cart"`
}

// ShortRecipeView is returned by cart, favorite and subscription endpoints
type ShortRecipeView struct {
	ID          primitive.ObjectID `json:"id"`
	Name        string             `json:"name"`
	Image       string             `json:"image"`
	CookingTime int                `json:"cooking_time"`
}

// SubscriptionView is a followed author with some of their recipes
type SubscriptionView struct {
	AuthorView
	Recipes      []ShortRecipeView `json:"recipes"`
	RecipesCount int64             `json:"recipes_count"`
}

func shortRecipe(r models.Recipe) ShortRecipeView {
	return ShortRecipeView{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

// presenter resolves references and per-viewer flags for responses.
// A zero viewer is anonymous: every flag is false.
type presenter struct {
	store     Store
	carts     Relation
	favorites Relation
}

func (p *presenter) author(ctx context.Context, viewer primitive.ObjectID, u models.User) (AuthorView, error) {
	view := AuthorView{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
	if viewer.IsZero() {
		return view, nil
	}
	subscribed, err := p.store.IsFollowing(ctx, viewer, u.ID)
	if err != nil {
		return view, err
	}
	view.IsSubscribed = subscribed
	return view, nil
}

func (p *presenter) recipes(ctx context.Context, viewer primitive.ObjectID, recipes []models.Recipe) ([]RecipeView, error) {
	var authorIDs, tagIDs, ingredientIDs []primitive.ObjectID
	for _, r := range recipes {
		authorIDs = append(authorIDs, r.AuthorID)
		tagIDs = append(tagIDs, r.TagIDs...)
		for _, ri := range r.Ingredients {
			ingredientIDs = append(ingredientIDs, ri.IngredientID)
		}
	}

	users, err := p.store.UsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	tags, err := p.store.TagsByIDs(ctx, tagIDs)
	if err != nil {
		return nil, err
	}
	ingredients, err := p.store.IngredientsByIDs(ctx, ingredientIDs)
	if err != nil {
		return nil, err
	}

	authors := make(map[primitive.ObjectID]AuthorView, len(users))
	views := make([]RecipeView, 0, len(recipes))
	for _, r := range recipes {
		author, ok := authors[r.AuthorID]
		if !ok {
			// authors deleted upstream still render with their ID
			u, found := users[r.AuthorID]
			if !found {
				u = models.User{ID: r.AuthorID}
			}
			if author, err = p.author(ctx, viewer, u); err != nil {
				return nil, err
			}
			authors[r.AuthorID] = author
		}

		view := RecipeView{
			ID:          r.ID,
			Tags:        make([]models.Tag, 0, len(r.TagIDs)),
			Author:      author,
			Ingredients: make([]IngredientAmountView, 0, len(r.Ingredients)),
			Name:        r.Name,
			Text:        r.Text,
			CookingTime: r.CookingTime,
			Image:       r.Image,
		}
		for _, id := range r.TagIDs {
			if t, ok := tags[id]; ok {
				view.Tags = append(view.Tags, t)
			}
		}
		for _, ri := range r.Ingredients {
			ing := ingredients[ri.IngredientID]
			view.Ingredients = append(view.Ingredients, IngredientAmountView{
				ID:              ri.IngredientID,
				Name:            ing.Name,
				MeasurementUnit: ing.MeasurementUnit,
				Amount:          ri.Amount,
			})
		}
		if !viewer.IsZero() {
			if view.IsFavorited, err = p.favorites.Exists(ctx, viewer, r.ID); err != nil {
				return nil, err
			}
			if view.IsInShoppingCart, err = p.carts.Exists(ctx, viewer, r.ID); err != nil {
				return nil, err
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (p *presenter) recipe(ctx context.Context, viewer primitive.ObjectID, r models.Recipe) (*RecipeView, error) {
	views, err := p.recipes(ctx, viewer, []models.Recipe{r})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}
