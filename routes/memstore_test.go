package routes

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"foodgram/models"
	"foodgram/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory stand-in for store.Store
type memStore struct {
	mu          sync.Mutex
	users       map[primitive.ObjectID]models.User
	ingredients map[primitive.ObjectID]models.Ingredient
	tags        map[primitive.ObjectID]models.Tag
	recipes     map[primitive.ObjectID]models.Recipe
	follows     map[[2]primitive.ObjectID]bool
	carts       *memRelation
	favorites   *memRelation
	clock       time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:       map[primitive.ObjectID]models.User{},
		ingredients: map[primitive.ObjectID]models.Ingredient{},
		tags:        map[primitive.ObjectID]models.Tag{},
		recipes:     map[primitive.ObjectID]models.Recipe{},
		follows:     map[[2]primitive.ObjectID]bool{},
		carts:       &memRelation{pairs: map[[2]primitive.ObjectID]bool{}},
		favorites:   &memRelation{pairs: map[[2]primitive.ObjectID]bool{}},
		clock:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) addUser(username string) models.User {
	u := models.User{ID: primitive.NewObjectID(), Username: username, Email: username + "@example.com"}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addIngredient(name, unit string) models.Ingredient {
	i := models.Ingredient{ID: primitive.NewObjectID(), Name: name, MeasurementUnit: unit}
	m.ingredients[i.ID] = i
	return i
}

func (m *memStore) addTag(slug string) models.Tag {
	t := models.Tag{ID: primitive.NewObjectID(), Name: strings.ToUpper(slug[:1]) + slug[1:], Slug: slug, Color: "#ff0000"}
	m.tags[t.ID] = t
	return t
}

func (m *memStore) addRecipe(author primitive.ObjectID, name string, tags []primitive.ObjectID, items ...models.RecipeIngredient) models.Recipe {
	r := models.Recipe{AuthorID: author, Name: name, Text: name, CookingTime: 10, TagIDs: tags, Ingredients: items}
	_ = m.CreateRecipe(context.Background(), &r)
	return r
}

func (m *memStore) UserExists(_ context.Context, id primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[id]
	return ok, nil
}

func (m *memStore) GetUser(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (m *memStore) ListUsers(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (m *memStore) UsersByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[primitive.ObjectID]models.User{}
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (m *memStore) ListIngredients(_ context.Context, prefix string) ([]models.Ingredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Ingredient{}
	for _, i := range m.ingredients {
		if strings.HasPrefix(i.Name, prefix) {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out, nil
}

func (m *memStore) GetIngredient(_ context.Context, id primitive.ObjectID) (*models.Ingredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.ingredients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &i, nil
}

func (m *memStore) IngredientsByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Ingredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[primitive.ObjectID]models.Ingredient{}
	for _, id := range ids {
		if i, ok := m.ingredients[id]; ok {
			out[id] = i
		}
	}
	return out, nil
}

func (m *memStore) ListTags(_ context.Context) ([]models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Tag{}
	for _, t := range m.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out, nil
}

func (m *memStore) GetTag(_ context.Context, id primitive.ObjectID) (*models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tags[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

func (m *memStore) TagsByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[primitive.ObjectID]models.Tag{}
	for _, id := range ids {
		if t, ok := m.tags[id]; ok {
			out[id] = t
		}
	}
	return out, nil
}

func (m *memStore) CreateRecipe(_ context.Context, r *models.Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = m.clock.Add(time.Minute)
	r.ID = primitive.NewObjectID()
	r.PubDate = m.clock
	m.recipes[r.ID] = *r
	return nil
}

func (m *memStore) GetRecipe(_ context.Context, id primitive.ObjectID) (*models.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recipes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (m *memStore) UpdateRecipe(_ context.Context, r *models.Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recipes[r.ID]; !ok {
		return store.ErrNotFound
	}
	m.recipes[r.ID] = *r
	return nil
}

func (m *memStore) DeleteRecipe(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recipes[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.recipes, id)
	m.carts.dropRecipe(id)
	m.favorites.dropRecipe(id)
	return nil
}

func (m *memStore) ListRecipes(_ context.Context, f models.RecipeFilter) ([]models.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slugs := map[string]bool{}
	for _, s := range f.TagSlugs {
		slugs[s] = true
	}
	out := []models.Recipe{}
	for _, r := range m.recipes {
		if !f.AuthorID.IsZero() && r.AuthorID != f.AuthorID {
			continue
		}
		if len(slugs) > 0 {
			hit := false
			for _, id := range r.TagIDs {
				if slugs[m.tags[id].Slug] {
					hit = true
				}
			}
			if !hit {
				continue
			}
		}
		if !f.FavoritedBy.IsZero() && !m.favorites.has(f.FavoritedBy, r.ID) {
			continue
		}
		if !f.InShoppingCartOf.IsZero() && !m.carts.has(f.InShoppingCartOf, r.ID) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PubDate.After(out[j].PubDate) })
	return out, nil
}

func (m *memStore) RecipesByAuthor(ctx context.Context, authorID primitive.ObjectID, limit int) ([]models.Recipe, error) {
	all, _ := m.ListRecipes(ctx, models.RecipeFilter{AuthorID: authorID})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *memStore) CountRecipesByAuthor(ctx context.Context, authorID primitive.ObjectID) (int64, error) {
	all, _ := m.ListRecipes(ctx, models.RecipeFilter{AuthorID: authorID})
	return int64(len(all)), nil
}

func (m *memStore) Follow(_ context.Context, userID, authorID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := [2]primitive.ObjectID{userID, authorID}
	if m.follows[k] {
		return store.ErrDuplicate
	}
	m.follows[k] = true
	return nil
}

func (m *memStore) Unfollow(_ context.Context, userID, authorID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := [2]primitive.ObjectID{userID, authorID}
	if !m.follows[k] {
		return store.ErrNotFound
	}
	delete(m.follows, k)
	return nil
}

func (m *memStore) IsFollowing(_ context.Context, userID, authorID primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.follows[[2]primitive.ObjectID{userID, authorID}], nil
}

func (m *memStore) FollowedAuthors(_ context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []primitive.ObjectID{}
	for k := range m.follows {
		if k[0] == userID {
			out = append(out, k[1])
		}
	}
	return out, nil
}

// CartIngredients mirrors the Mongo pipeline: one row per recipe ingredient
func (m *memStore) CartIngredients(_ context.Context, userID primitive.ObjectID) ([]models.CartIngredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := []models.CartIngredient{}
	for k := range m.carts.pairs {
		if k[0] != userID {
			continue
		}
		for _, ri := range m.recipes[k[1]].Ingredients {
			ing := m.ingredients[ri.IngredientID]
			rows = append(rows, models.CartIngredient{Name: ing.Name, MeasurementUnit: ing.MeasurementUnit, Amount: ri.Amount})
		}
	}
	return rows, nil
}

type memRelation struct {
	mu    sync.Mutex
	pairs map[[2]primitive.ObjectID]bool
}

func (r *memRelation) Add(_ context.Context, userID, recipeID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := [2]primitive.ObjectID{userID, recipeID}
	if r.pairs[k] {
		return store.ErrDuplicate
	}
	r.pairs[k] = true
	return nil
}

func (r *memRelation) Remove(_ context.Context, userID, recipeID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := [2]primitive.ObjectID{userID, recipeID}
	if !r.pairs[k] {
		return store.ErrNotFound
	}
	delete(r.pairs, k)
	return nil
}

func (r *memRelation) Exists(_ context.Context, userID, recipeID primitive.ObjectID) (bool, error) {
	return r.has(userID, recipeID), nil
}

func (r *memRelation) has(userID, recipeID primitive.ObjectID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pairs[[2]primitive.ObjectID{userID, recipeID}]
}

func (r *memRelation) dropRecipe(recipeID primitive.ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.pairs {
		if k[1] == recipeID {
			delete(r.pairs, k)
		}
	}
}
