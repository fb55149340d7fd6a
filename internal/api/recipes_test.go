package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

const recipeJSON = `{"status":"success","data":{"recipe":{
	"id":"5ed6604591c37cdc054bc886","title":"Pasta","publisher":"Closet Cooking",
	"image_url":"http://img/p.jpg","source_url":"http://src/p","cooking_time":45,"servings":4,
	"ingredients":[{"quantity":2,"unit":"cups","description":"flour"},{"quantity":null,"unit":"","description":"salt"}]}}}`

func newRecipeClient(t *testing.T, h http.HandlerFunc) *RecipeClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	log := logger.New(logger.LevelOff, nil)
	rc, err := NewRecipeClient(NewClient(log), srv.URL+"/api/v2/recipes", "secret", log)
	if err != nil {
		t.Fatalf("new recipe client: %v", err)
	}
	return rc
}

func TestGetRecipe(t *testing.T) {
	rc := newRecipeClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/recipes/5ed6604591c37cdc054bc886" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "secret" {
			t.Errorf("missing key, query=%s", r.URL.RawQuery)
		}
		w.Write([]byte(recipeJSON))
	})

	r, err := rc.GetRecipe(context.Background(), "5ed6604591c37cdc054bc886")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if r.Title != "Pasta" || r.CookingTime != 45 || r.Servings != 4 || r.SourceURL != "http://src/p" {
		t.Fatalf("unexpected recipe %+v", r)
	}
	if len(r.Ingredients) != 2 || *r.Ingredients[0].Quantity != 2 || r.Ingredients[1].Quantity != nil {
		t.Fatalf("unexpected ingredients %+v", r.Ingredients)
	}
}

func TestGetRecipeMissingPayload(t *testing.T) {
	rc := newRecipeClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{}}`))
	})
	_, err := rc.GetRecipe(context.Background(), "x")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchRecipesEscapesQuery(t *testing.T) {
	rc := newRecipeClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("search"); got != "mac & cheese" {
			t.Errorf("search param = %q", got)
		}
		w.Write([]byte(`{"status":"success","data":{"recipes":[
			{"id":"a","title":"Mac","publisher":"P","image_url":"i"},
			{"id":"b","title":"Cheese","publisher":"Q","image_url":"j","key":"k"}]}}`))
	})

	res, err := rc.SearchRecipes(context.Background(), "mac & cheese")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res) != 2 || res[1].Key != "k" {
		t.Fatalf("unexpected results %+v", res)
	}
}

func TestCreateRecipe(t *testing.T) {
	rc := newRecipeClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var got rawRecipe
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		if got.Title != "Soup" || got.CookingTime != 30 || len(got.Ingredients) != 1 {
			t.Errorf("unexpected payload %+v", got)
		}
		got.ID = "new-id"
		got.Key = "secret"
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"status": "success", "data": map[string]any{"recipe": got}})
	})

	in := &domain.Recipe{
		Title: "Soup", Publisher: "me", CookingTime: 30, Servings: 2,
		Ingredients: []domain.Ingredient{{Quantity: domain.Quantity(1), Unit: "l", Description: "water"}},
	}
	out, err := rc.CreateRecipe(context.Background(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if out.ID != "new-id" || !out.UserGenerated() {
		t.Fatalf("unexpected created recipe %+v", out)
	}
}

func TestNewRecipeClientRejectsRelativeURL(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	if _, err := NewRecipeClient(NewClient(log), "/recipes", "", log); err == nil {
		t.Fatal("expected error for relative base url")
	}
}
