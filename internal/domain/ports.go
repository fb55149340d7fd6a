package domain

import "context"

// RecipeAPI is the remote recipe service. The production implementation
// talks HTTP; the in-memory one backs offline mode and tests.
type RecipeAPI interface {
	GetRecipe(ctx context.Context, id string) (*Recipe, error)
	SearchRecipes(ctx context.Context, query string) ([]SearchResult, error)
	CreateRecipe(ctx context.Context, recipe *Recipe) (*Recipe, error)
}

// KeyValueStore is durable string storage keyed by name, the server-side
// stand-in for browser local storage. Get reports ok=false for a missing key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}
