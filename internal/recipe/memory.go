// Package recipe provides the in-memory recipe service used in offline
// mode and by tests.
package recipe

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// Compile-time interface check.
var _ domain.RecipeAPI = (*MemorySource)(nil)

// MemorySource holds recipes in memory. Safe for concurrent use.
type MemorySource struct {
	mu      sync.RWMutex
	recipes map[string]*domain.Recipe
	key     string
	log     *logger.Logger
}

// Option configures a MemorySource.
type Option func(*MemorySource)

// WithRecipes adds recipes on top of (or instead of, see WithoutSeed) the
// built-in ones.
func WithRecipes(recipes ...*domain.Recipe) Option {
	return func(s *MemorySource) {
		for _, r := range recipes {
			s.recipes[r.ID] = r.Clone()
		}
	}
}

// WithoutSeed drops the built-in recipes.
func WithoutSeed() Option {
	return func(s *MemorySource) {
		s.recipes = make(map[string]*domain.Recipe)
	}
}

// WithKey sets the key stamped on created recipes.
func WithKey(key string) Option {
	return func(s *MemorySource) { s.key = key }
}

// NewMemorySource creates a source preloaded with built-in recipes.
func NewMemorySource(log *logger.Logger, opts ...Option) *MemorySource {
	src := &MemorySource{
		recipes: make(map[string]*domain.Recipe),
		key:     "offline",
		log:     log,
	}
	src.seed()
	for _, o := range opts {
		o(src)
	}
	return src
}

// GetRecipe returns a copy of the recipe with the given id.
func (s *MemorySource) GetRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipes[id]
	if !ok {
		s.log.Debug("recipe not found: %s", id)
		return nil, fmt.Errorf("recipe %s: %w", id, domain.ErrNotFound)
	}
	return r.Clone(), nil
}

// SearchRecipes returns recipes whose title or publisher contain the
// query, case-insensitively, ordered by title.
func (s *MemorySource) SearchRecipes(ctx context.Context, query string) ([]domain.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	s.log.Debug("searching recipes for: %s", q)

	var out []domain.SearchResult
	for _, r := range s.recipes {
		if s.matches(r, q) {
			out = append(out, r.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title == out[j].Title {
			return out[i].ID < out[j].ID
		}
		return out[i].Title < out[j].Title
	})
	return out, nil
}

// CreateRecipe stores a copy of recipe under a fresh id.
func (s *MemorySource) CreateRecipe(ctx context.Context, recipe *domain.Recipe) (*domain.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := recipe.Clone()
	r.ID = uuid.NewString()
	r.Key = s.key
	r.Bookmarked = false

	s.mu.Lock()
	s.recipes[r.ID] = r
	s.mu.Unlock()

	s.log.Info("recipe created: %s (%s)", r.Title, r.ID)
	return r.Clone(), nil
}

// Len returns the number of stored recipes.
func (s *MemorySource) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recipes)
}

func (s *MemorySource) matches(r *domain.Recipe, query string) bool {
	if query == "" {
		return false
	}
	return strings.Contains(strings.ToLower(r.Title), query) ||
		strings.Contains(strings.ToLower(r.Publisher), query)
}

// seed populates the source with built-in recipes.
func (s *MemorySource) seed() {
	recipes := []*domain.Recipe{
		chickenAlfredo(),
		vegetableStirFry(),
		margheritaPizza(),
		pepperoniPizza(),
	}
	for _, r := range recipes {
		s.recipes[r.ID] = r
	}
	s.log.Debug("seeded %d recipes", len(recipes))
}

func q(v float64) *float64 { return domain.Quantity(v) }

func chickenAlfredo() *domain.Recipe {
	return &domain.Recipe{
		ID:          "chicken-alfredo",
		Title:       "Chicken Alfredo",
		Publisher:   "Recipebook Kitchen",
		ImageURL:    "/static/img/chicken-alfredo.jpg",
		SourceURL:   "https://example.com/recipes/chicken-alfredo",
		CookingTime: 35,
		Servings:    2,
		Ingredients: []domain.Ingredient{
			{Quantity: q(250), Unit: "g", Description: "spaghetti"},
			{Quantity: q(2), Unit: "", Description: "medium chicken breasts"},
			{Quantity: q(1), Unit: "cup", Description: "creme fraiche"},
			{Quantity: q(1), Unit: "cup", Description: "grated gruyere cheese"},
			{Quantity: q(3), Unit: "tbsps", Description: "margarine"},
			{Quantity: q(4), Unit: "", Description: "garlic cloves"},
			{Quantity: q(1), Unit: "tbsp", Description: "olive oil"},
			{Quantity: nil, Unit: "", Description: "salt and black pepper to taste"},
		},
	}
}

func vegetableStirFry() *domain.Recipe {
	return &domain.Recipe{
		ID:          "vegetable-stir-fry",
		Title:       "Vegetable Stir Fry",
		Publisher:   "Recipebook Kitchen",
		ImageURL:    "/static/img/vegetable-stir-fry.jpg",
		SourceURL:   "https://example.com/recipes/vegetable-stir-fry",
		CookingTime: 20,
		Servings:    2,
		Ingredients: []domain.Ingredient{
			{Quantity: q(1), Unit: "", Description: "large bell pepper"},
			{Quantity: q(2), Unit: "cups", Description: "broccoli florets"},
			{Quantity: q(1), Unit: "", Description: "medium carrot"},
			{Quantity: q(1), Unit: "cup", Description: "snap peas"},
			{Quantity: q(3), Unit: "", Description: "garlic cloves"},
			{Quantity: q(1), Unit: "tbsp", Description: "grated fresh ginger"},
			{Quantity: q(2), Unit: "tbsps", Description: "soy sauce"},
			{Quantity: q(1), Unit: "tbsp", Description: "sesame oil"},
			{Quantity: q(0.5), Unit: "tsp", Description: "cornstarch"},
		},
	}
}

func margheritaPizza() *domain.Recipe {
	return &domain.Recipe{
		ID:          "margherita-pizza",
		Title:       "Margherita Pizza",
		Publisher:   "Closet Cooking",
		ImageURL:    "/static/img/margherita-pizza.jpg",
		SourceURL:   "https://example.com/recipes/margherita-pizza",
		CookingTime: 25,
		Servings:    4,
		Ingredients: []domain.Ingredient{
			{Quantity: q(1), Unit: "", Description: "pizza dough ball"},
			{Quantity: q(0.75), Unit: "cup", Description: "tomato sauce"},
			{Quantity: q(200), Unit: "g", Description: "fresh mozzarella"},
			{Quantity: nil, Unit: "", Description: "fresh basil leaves"},
		},
	}
}

func pepperoniPizza() *domain.Recipe {
	return &domain.Recipe{
		ID:          "pepperoni-pizza",
		Title:       "Pepperoni Pizza",
		Publisher:   "Closet Cooking",
		ImageURL:    "/static/img/pepperoni-pizza.jpg",
		SourceURL:   "https://example.com/recipes/pepperoni-pizza",
		CookingTime: 30,
		Servings:    4,
		Ingredients: []domain.Ingredient{
			{Quantity: q(1), Unit: "", Description: "pizza dough ball"},
			{Quantity: q(0.5), Unit: "cup", Description: "pizza sauce"},
			{Quantity: q(1.5), Unit: "cups", Description: "shredded mozzarella"},
			{Quantity: q(30), Unit: "", Description: "pepperoni slices"},
		},
	}
}
