package routes

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"foodgram/controllers"
	"foodgram/models"
	"foodgram/shopping"
	"foodgram/utils"

	json "github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMain(m *testing.M) {
	utils.JwtKey = []byte("test-secret")
	utils.InitLogger("disabled", "json", nil)
	os.Exit(m.Run())
}

type fakeMailer struct {
	to         string
	html, text []byte
	err        error
}

func (f *fakeMailer) SendShoppingList(to string, html, text []byte) error {
	f.to, f.html, f.text = to, html, text
	return f.err
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type env struct {
	t      *testing.T
	store  *memStore
	router *mux.Router
	mailer *fakeMailer
}

func newEnv(t *testing.T, withMailer bool) *env {
	t.Helper()
	s := newMemStore()
	e := &env{t: t, store: s}

	var mailer controllers.Mailer
	if withMailer {
		e.mailer = &fakeMailer{}
		mailer = e.mailer
	}

	e.router = mux.NewRouter()
	RegisterRoutes(e.router, Controllers{
		Catalog:  controllers.NewCatalogController(s),
		Recipe:   controllers.NewRecipeController(s, s.carts, s.favorites),
		Cart:     controllers.NewCartController(s, s.carts, shopping.NewAggregator(s), mailer),
		Favorite: controllers.NewFavoriteController(s, s.favorites),
		User:     controllers.NewUserController(s),
		Health:   controllers.NewHealthController(fakePinger{}),
	})
	return e
}

func token(t *testing.T, userID primitive.ObjectID) string {
	t.Helper()
	tok, err := utils.GenerateJWT(userID.Hex(), "", "user", time.Hour)
	require.NoError(t, err)
	return tok
}

func (e *env) do(method, path string, user primitive.ObjectID, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if !user.IsZero() {
		req.Header.Set("Authorization", "Bearer "+token(e.t, user))
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func item(i models.Ingredient, amount int) models.RecipeIngredient {
	return models.RecipeIngredient{IngredientID: i.ID, Amount: amount}
}

func TestDownloadShoppingCart(t *testing.T) {
	e := newEnv(t, false)
	user := e.store.addUser("alice")
	flour := e.store.addIngredient("Flour", "g")
	sugar := e.store.addIngredient("Sugar", "g")
	egg := e.store.addIngredient("Egg", "pcs")
	a := e.store.addRecipe(user.ID, "A", nil, item(flour, 200), item(sugar, 50))
	b := e.store.addRecipe(user.ID, "B", nil, item(flour, 300), item(egg, 2))

	for _, r := range []models.Recipe{a, b} {
		rec := e.do("POST", "/api/recipes/"+r.ID.Hex()+"/shopping_cart", user.ID, nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := e.do("GET", "/api/recipes/download_shopping_cart/", user.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=list.txt", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "1. Egg - 2 pcs\n2. Flour - 500 g\n3. Sugar - 50 g\n")
	assert.Equal(t, 1, strings.Count(body, "Flour"))

	again := e.do("GET", "/api/recipes/download_shopping_cart/", user.ID, nil)
	assert.Equal(t, body, again.Body.String())

	html := e.do("GET", "/api/recipes/download_shopping_cart/?format=html", user.ID, nil)
	require.Equal(t, http.StatusOK, html.Code)
	assert.Equal(t, "attachment; filename=list.html", html.Header().Get("Content-Disposition"))
	assert.Contains(t, html.Body.String(), `<td>Flour</td><td class="amount">500</td>`)
}

func TestDownloadShoppingCartEmpty(t *testing.T) {
	e := newEnv(t, false)
	user := e.store.addUser("bob")

	rec := e.do("GET", "/api/recipes/download_shopping_cart/", user.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=list.txt", rec.Header().Get("Content-Disposition"))

	empty, err := shopping.Render(nil, shopping.FormatText)
	require.NoError(t, err)
	assert.Equal(t, string(empty.Body), rec.Body.String())
}

func TestDownloadShoppingCartErrors(t *testing.T) {
	e := newEnv(t, false)
	user := e.store.addUser("carol")

	rec := e.do("GET", "/api/recipes/download_shopping_cart/", primitive.NilObjectID, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do("GET", "/api/recipes/download_shopping_cart/", primitive.NewObjectID(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))

	rec = e.do("GET", "/api/recipes/download_shopping_cart/?format=pdf", user.ID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// ingredient with no unit upstream
	broken := e.store.addIngredient("Mystery", "")
	r := e.store.addRecipe(user.ID, "Broken", nil, item(broken, 1))
	require.NoError(t, e.store.carts.Add(context.Background(), user.ID, r.ID))
	rec = e.do("GET", "/api/recipes/download_shopping_cart/", user.ID, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
	assert.NotContains(t, rec.Body.String(), "Shopping list\n")
}

func TestInvalidToken(t *testing.T) {
	e := newEnv(t, false)
	req := httptest.NewRequest("GET", "/api/recipes", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest("GET", "/api/users/me", nil)
	req.Header.Set("Authorization", "Token abc")
	rec = httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCartAndFavorites(t *testing.T) {
	e := newEnv(t, false)
	user := e.store.addUser("dave")
	salt := e.store.addIngredient("Salt", "g")
	r := e.store.addRecipe(user.ID, "Soup", nil, item(salt, 1))
	other := e.store.addRecipe(user.ID, "Stew", nil, item(salt, 2))

	for _, rel := range []string{"shopping_cart", "favorite"} {
		t.Run(rel, func(t *testing.T) {
			path := "/api/recipes/" + r.ID.Hex() + "/" + rel

			rec := e.do("POST", path, user.ID, nil)
			require.Equal(t, http.StatusCreated, rec.Code)
			var short controllers.ShortRecipeView
			decodeBody(t, rec, &short)
			assert.Equal(t, r.ID, short.ID)
			assert.Equal(t, "Soup", short.Name)

			assert.Equal(t, http.StatusBadRequest, e.do("POST", path, user.ID, nil).Code)
			assert.Equal(t, http.StatusNotFound, e.do("POST", "/api/recipes/"+primitive.NewObjectID().Hex()+"/"+rel, user.ID, nil).Code)
			assert.Equal(t, http.StatusUnauthorized, e.do("POST", path, primitive.NilObjectID, nil).Code)
		})
	}

	var list []controllers.RecipeView
	rec := e.do("GET", "/api/recipes?is_favorited=1", user.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &list)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsFavorited)
	assert.True(t, list[0].IsInShoppingCart)

	rec = e.do("GET", "/api/recipes?is_in_shopping_cart=true", user.ID, nil)
	decodeBody(t, rec, &list)
	require.Len(t, list, 1)

	rec = e.do("GET", "/api/recipes", user.ID, nil)
	decodeBody(t, rec, &list)
	require.Len(t, list, 2)
	assert.Equal(t, other.ID, list[0].ID, "newest first")
	assert.False(t, list[0].IsFavorited)

	assert.Equal(t, http.StatusUnauthorized, e.do("GET", "/api/recipes?is_favorited=1", primitive.NilObjectID, nil).Code)

	for _, rel := range []string{"shopping_cart", "favorite"} {
		path := "/api/recipes/" + r.ID.Hex() + "/" + rel
		assert.Equal(t, http.StatusNoContent, e.do("DELETE", path, user.ID, nil).Code)
		assert.Equal(t, http.StatusBadRequest, e.do("DELETE", path, user.ID, nil).Code)
	}
}

func validInput(tag models.Tag, ings ...models.Ingredient) controllers.RecipeInput {
	in := controllers.RecipeInput{
		Tags:        []string{tag.ID.Hex()},
		Name:        "Pancakes",
		Text:        "Mix and fry",
		CookingTime: 15,
	}
	for i, ing := range ings {
		in.Ingredients = append(in.Ingredients, controllers.IngredientInput{ID: ing.ID.Hex(), Amount: i + 1})
	}
	return in
}

func TestCreateRecipe(t *testing.T) {
	e := newEnv(t, false)
	user := e.store.addUser("erin")
	tag := e.store.addTag("breakfast")
	flour := e.store.addIngredient("Flour", "g")
	milk := e.store.addIngredient("Milk", "ml")

	rec := e.do("POST", "/api/recipes", user.ID, validInput(tag, flour, milk))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var view controllers.RecipeView
	decodeBody(t, rec, &view)
	assert.Equal(t, "Pancakes", view.Name)
	assert.Equal(t, user.ID, view.Author.ID)
	assert.Equal(t, "erin", view.Author.Username)
	require.Len(t, view.Tags, 1)
	assert.Equal(t, "breakfast", view.Tags[0].Slug)
	assert.Equal(t, []controllers.IngredientAmountView{
		{ID: flour.ID, Name: "Flour", MeasurementUnit: "g", Amount: 1},
		{ID: milk.ID, Name: "Milk", MeasurementUnit: "ml", Amount: 2},
	}, view.Ingredients)

	rec = e.do("GET", "/api/recipes?tags=breakfast&author="+user.ID.Hex(), primitive.NilObjectID, nil)
	var list []controllers.RecipeView
	decodeBody(t, rec, &list)
	assert.Len(t, list, 1)

	rec = e.do("GET", "/api/recipes?tags=dinner", primitive.NilObjectID, nil)
	decodeBody(t, rec, &list)
	assert.Empty(t, list)

	assert.Equal(t, http.StatusUnauthorized, e.do("POST", "/api/recipes", primitive.NilObjectID, validInput(tag, flour)).Code)
}

func TestCreateRecipeValidation(t *testing.T) {
	e := newEnv(t, false)
	user := e.store.addUser("frank")
	tag := e.store.addTag("lunch")
	flour := e.store.addIngredient("Flour", "g")

	tests := []struct {
		name   string
		mutate func(in *controllers.RecipeInput)
	}{
		{"no ingredients", func(in *controllers.RecipeInput) { in.Ingredients = nil }},
		{"duplicate ingredient", func(in *controllers.RecipeInput) { in.Ingredients = append(in.Ingredients, in.Ingredients[0]) }},
		{"zero amount", func(in *controllers.RecipeInput) { in.Ingredients[0].Amount = 0 }},
		{"no tags", func(in *controllers.RecipeInput) { in.Tags = nil }},
		{"duplicate tags", func(in *controllers.RecipeInput) { in.Tags = append(in.Tags, in.Tags[0]) }},
		{"unknown tag", func(in *controllers.RecipeInput) { in.Tags = []string{primitive.NewObjectID().Hex()} }},
		{"unknown ingredient", func(in *controllers.RecipeInput) { in.Ingredients[0].ID = primitive.NewObjectID().Hex() }},
		{"bad ingredient id", func(in *controllers.RecipeInput) { in.Ingredients[0].ID = "flour" }},
		{"zero cooking time", func(in *controllers.RecipeInput) { in.CookingTime = 0 }},
		{"missing name", func(in *controllers.RecipeInput) { in.Name = "" }},
		{"missing text", func(in *controllers.RecipeInput) { in.Text = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput(tag, flour)
			tt.mutate(&in)
			rec := e.do("POST", "/api/recipes", user.ID, in)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
	assert.Empty(t, e.store.recipes)
}

func TestUpdateAndDeleteRecipe(t *testing.T) {
	e := newEnv(t, false)
	author := e.store.addUser("gina")
	stranger := e.store.addUser("hank")
	tag := e.store.addTag("dinner")
	rice := e.store.addIngredient("Rice", "g")
	r := e.store.addRecipe(author.ID, "Pilaf", []primitive.ObjectID{tag.ID}, item(rice, 100))
	path := "/api/recipes/" + r.ID.Hex()

	in := validInput(tag, rice)
	in.Name = "Better pilaf"
	assert.Equal(t, http.StatusForbidden, e.do("PATCH", path, stranger.ID, in).Code)

	rec := e.do("PATCH", path, author.ID, in)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var view controllers.RecipeView
	decodeBody(t, rec, &view)
	assert.Equal(t, "Better pilaf", view.Name)
	assert.Equal(t, r.PubDate, e.store.recipes[r.ID].PubDate)

	require.NoError(t, e.store.carts.Add(context.Background(), stranger.ID, r.ID))

	assert.Equal(t, http.StatusForbidden, e.do("DELETE", path, stranger.ID, nil).Code)
	assert.Equal(t, http.StatusNoContent, e.do("DELETE", path, author.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do("GET", path, author.ID, nil).Code)
	assert.False(t, e.store.carts.has(stranger.ID, r.ID))

	rec = e.do("GET", "/api/recipes/download_shopping_cart/", stranger.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Rice")
}

func TestSubscriptions(t *testing.T) {
	e := newEnv(t, false)
	reader := e.store.addUser("ivy")
	zed := e.store.addUser("zed")
	amy := e.store.addUser("amy")
	salt := e.store.addIngredient("Salt", "g")
	for i := 0; i < 3; i++ {
		e.store.addRecipe(zed.ID, "Dish", nil, item(salt, 1))
	}

	assert.Equal(t, http.StatusBadRequest, e.do("POST", "/api/users/"+reader.ID.Hex()+"/subscribe", reader.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do("POST", "/api/users/"+primitive.NewObjectID().Hex()+"/subscribe", reader.ID, nil).Code)

	rec := e.do("POST", "/api/users/"+zed.ID.Hex()+"/subscribe?recipes_limit=abc", reader.ID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	following, err := e.store.IsFollowing(context.Background(), reader.ID, zed.ID)
	require.NoError(t, err)
	assert.False(t, following, "rejected request must not subscribe")

	rec = e.do("POST", "/api/users/"+zed.ID.Hex()+"/subscribe?recipes_limit=1", reader.ID, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var sub controllers.SubscriptionView
	decodeBody(t, rec, &sub)
	assert.True(t, sub.IsSubscribed)
	assert.Len(t, sub.Recipes, 1)
	assert.EqualValues(t, 3, sub.RecipesCount)

	assert.Equal(t, http.StatusBadRequest, e.do("POST", "/api/users/"+zed.ID.Hex()+"/subscribe", reader.ID, nil).Code)
	require.Equal(t, http.StatusCreated, e.do("POST", "/api/users/"+amy.ID.Hex()+"/subscribe", reader.ID, nil).Code)

	rec = e.do("GET", "/api/users/subscriptions?recipes_limit=2", reader.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var subs []controllers.SubscriptionView
	decodeBody(t, rec, &subs)
	require.Len(t, subs, 2)
	assert.Equal(t, "amy", subs[0].Username)
	assert.Equal(t, "zed", subs[1].Username)
	assert.Len(t, subs[1].Recipes, 2)

	assert.Equal(t, http.StatusBadRequest, e.do("GET", "/api/users/subscriptions?recipes_limit=-1", reader.ID, nil).Code)

	var author controllers.AuthorView
	decodeBody(t, e.do("GET", "/api/users/"+zed.ID.Hex(), reader.ID, nil), &author)
	assert.True(t, author.IsSubscribed)
	decodeBody(t, e.do("GET", "/api/users/"+zed.ID.Hex(), primitive.NilObjectID, nil), &author)
	assert.False(t, author.IsSubscribed)

	assert.Equal(t, http.StatusNoContent, e.do("DELETE", "/api/users/"+zed.ID.Hex()+"/subscribe", reader.ID, nil).Code)
	assert.Equal(t, http.StatusBadRequest, e.do("DELETE", "/api/users/"+zed.ID.Hex()+"/subscribe", reader.ID, nil).Code)
}

func TestUsers(t *testing.T) {
	e := newEnv(t, false)
	me := e.store.addUser("jill")
	e.store.addUser("abe")

	var profile controllers.AuthorView
	rec := e.do("GET", "/api/users/me", me.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &profile)
	assert.Equal(t, "jill", profile.Username)
	assert.Equal(t, http.StatusUnauthorized, e.do("GET", "/api/users/me", primitive.NilObjectID, nil).Code)

	var users []controllers.AuthorView
	decodeBody(t, e.do("GET", "/api/users", primitive.NilObjectID, nil), &users)
	require.Len(t, users, 2)
	assert.Equal(t, "abe", users[0].Username)
}

func TestCatalog(t *testing.T) {
	e := newEnv(t, false)
	e.store.addIngredient("Flour", "g")
	e.store.addIngredient("Flaxseed", "g")
	e.store.addIngredient("Egg", "pcs")
	tag := e.store.addTag("vegan")

	var ings []models.Ingredient
	decodeBody(t, e.do("GET", "/api/ingredients?name=Fl", primitive.NilObjectID, nil), &ings)
	require.Len(t, ings, 2)
	assert.Equal(t, "Flaxseed", ings[0].Name)

	decodeBody(t, e.do("GET", "/api/ingredients", primitive.NilObjectID, nil), &ings)
	assert.Len(t, ings, 3)
	assert.Equal(t, http.StatusNotFound, e.do("GET", "/api/ingredients/"+primitive.NewObjectID().Hex(), primitive.NilObjectID, nil).Code)

	var got models.Tag
	decodeBody(t, e.do("GET", "/api/tags/"+tag.ID.Hex(), primitive.NilObjectID, nil), &got)
	assert.Equal(t, tag, got)
	assert.Equal(t, http.StatusNotFound, e.do("GET", "/api/tags/not-an-id", primitive.NilObjectID, nil).Code)
}

func TestEmailShoppingCart(t *testing.T) {
	disabled := newEnv(t, false)
	u := disabled.store.addUser("kim")
	assert.Equal(t, http.StatusServiceUnavailable, disabled.do("POST", "/api/recipes/download_shopping_cart/email", u.ID, nil).Code)

	e := newEnv(t, true)
	user := e.store.addUser("lee")
	oil := e.store.addIngredient("Oil", "ml")
	r := e.store.addRecipe(user.ID, "Fry", nil, item(oil, 30))
	require.NoError(t, e.store.carts.Add(context.Background(), user.ID, r.ID))

	rec := e.do("POST", "/api/recipes/download_shopping_cart/email", user.ID, nil)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Equal(t, "lee@example.com", e.mailer.to)
	assert.Contains(t, string(e.mailer.text), "1. Oil - 30 ml")
	assert.Contains(t, string(e.mailer.html), "<td>Oil</td>")

	e.mailer.err = errors.New("postmark down")
	assert.Equal(t, http.StatusBadGateway, e.do("POST", "/api/recipes/download_shopping_cart/email", user.ID, nil).Code)
}

func TestHealthAndMetrics(t *testing.T) {
	e := newEnv(t, false)
	assert.Equal(t, http.StatusOK, e.do("GET", "/healthz", primitive.NilObjectID, nil).Code)

	e.do("GET", "/api/tags", primitive.NilObjectID, nil)
	rec := e.do("GET", "/metrics", primitive.NilObjectID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "foodgram_http_requests_total")

	down := mux.NewRouter()
	RegisterRoutes(down, Controllers{Health: controllers.NewHealthController(fakePinger{err: errors.New("no primary")})})
	req := httptest.NewRequest("GET", "/healthz", nil)
	res := httptest.NewRecorder()
	down.ServeHTTP(res, req)
	assert.Equal(t, http.StatusServiceUnavailable, res.Code)
}
