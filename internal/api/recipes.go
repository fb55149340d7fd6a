package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// DefaultBaseURL is the public forkify v2 recipes endpoint.
const DefaultBaseURL = "https://forkify-api.herokuapp.com/api/v2/recipes"

// Compile-time interface check.
var _ domain.RecipeAPI = (*RecipeClient)(nil)

// RecipeClient implements domain.RecipeAPI over HTTP.
type RecipeClient struct {
	client *Client
	base   *url.URL
	key    string
	log    *logger.Logger
}

// NewRecipeClient binds a Client to the recipes endpoint at baseURL. key
// is the API key sent with every request; it may be empty for reads.
func NewRecipeClient(client *Client, baseURL, key string, log *logger.Logger) (*RecipeClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api: base url %q must be absolute", baseURL)
	}
	return &RecipeClient{client: client, base: u, key: key, log: log}, nil
}

// ── Wire types ───────────────────────────────────────────────────

type rawIngredient struct {
	Quantity    *float64 `json:"quantity"`
	Unit        string   `json:"unit"`
	Description string   `json:"description"`
}

type rawRecipe struct {
	ID          string          `json:"id,omitempty"`
	Title       string          `json:"title"`
	Publisher   string          `json:"publisher"`
	ImageURL    string          `json:"image_url"`
	SourceURL   string          `json:"source_url,omitempty"`
	CookingTime int             `json:"cooking_time,omitempty"`
	Servings    int             `json:"servings,omitempty"`
	Ingredients []rawIngredient `json:"ingredients,omitempty"`
	Key         string          `json:"key,omitempty"`
}

type envelope struct {
	Status string `json:"status"`
	Data   struct {
		Recipe  *rawRecipe  `json:"recipe"`
		Recipes []rawRecipe `json:"recipes"`
	} `json:"data"`
}

// ── Endpoints ────────────────────────────────────────────────────

// GetRecipe loads one recipe by id.
func (c *RecipeClient) GetRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	env, err := c.do(ctx, c.endpoint(id, nil), nil)
	if err != nil {
		return nil, err
	}
	if env.Data.Recipe == nil {
		return nil, fmt.Errorf("api: recipe %s: %w", id, domain.ErrNotFound)
	}
	return toRecipe(env.Data.Recipe), nil
}

// SearchRecipes runs a full-text search.
func (c *RecipeClient) SearchRecipes(ctx context.Context, query string) ([]domain.SearchResult, error) {
	env, err := c.do(ctx, c.endpoint("", url.Values{"search": {query}}), nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SearchResult, 0, len(env.Data.Recipes))
	for _, r := range env.Data.Recipes {
		out = append(out, domain.SearchResult{
			ID:        r.ID,
			Title:     r.Title,
			Publisher: r.Publisher,
			ImageURL:  r.ImageURL,
			Key:       r.Key,
		})
	}
	c.log.Debug("api: search %q returned %d recipes", query, len(out))
	return out, nil
}

// CreateRecipe posts a user recipe and returns it as stored by the API.
func (c *RecipeClient) CreateRecipe(ctx context.Context, recipe *domain.Recipe) (*domain.Recipe, error) {
	var body any = fromRecipe(recipe)
	env, err := c.do(ctx, c.endpoint("", nil), body)
	if err != nil {
		return nil, err
	}
	if env.Data.Recipe == nil {
		return nil, fmt.Errorf("api: create recipe: empty response")
	}
	return toRecipe(env.Data.Recipe), nil
}

func (c *RecipeClient) do(ctx context.Context, target string, body any) (*envelope, error) {
	raw, err := c.client.Request(ctx, target, body)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("api: unmarshal response: %w", err)
	}
	return &env, nil
}

// endpoint builds {base}[/{id}]?[extra&]key={key}.
func (c *RecipeClient) endpoint(id string, extra url.Values) string {
	u := *c.base
	if id != "" {
		u = *u.JoinPath(id)
	}
	q := u.Query()
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if c.key != "" {
		q.Set("key", c.key)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func toRecipe(r *rawRecipe) *domain.Recipe {
	out := &domain.Recipe{
		ID:          r.ID,
		Title:       r.Title,
		Publisher:   r.Publisher,
		ImageURL:    r.ImageURL,
		SourceURL:   r.SourceURL,
		CookingTime: r.CookingTime,
		Servings:    r.Servings,
		Key:         r.Key,
		Ingredients: make([]domain.Ingredient, 0, len(r.Ingredients)),
	}
	for _, ing := range r.Ingredients {
		out.Ingredients = append(out.Ingredients, domain.Ingredient(ing))
	}
	return out
}

func fromRecipe(r *domain.Recipe) *rawRecipe {
	out := &rawRecipe{
		Title:       r.Title,
		Publisher:   r.Publisher,
		ImageURL:    r.ImageURL,
		SourceURL:   r.SourceURL,
		CookingTime: r.CookingTime,
		Servings:    r.Servings,
		Ingredients: make([]rawIngredient, 0, len(r.Ingredients)),
	}
	for _, ing := range r.Ingredients {
		out.Ingredients = append(out.Ingredients, rawIngredient(ing))
	}
	return out
}
