// Package domain defines the core types and interfaces for recipebook.
// All other packages depend on domain; domain depends on nothing.
package domain

// Recipe is a dish record loaded from the API or submitted by the user.
type Recipe struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Publisher   string       `json:"publisher"`
	ImageURL    string       `json:"image_url"`
	SourceURL   string       `json:"source_url"`
	CookingTime int          `json:"cooking_time"` // minutes
	Servings    int          `json:"servings"`
	Ingredients []Ingredient `json:"ingredients"`
	Key         string       `json:"key,omitempty"` // set on user-submitted recipes
	Bookmarked  bool         `json:"bookmarked"`
}

// Ingredient is one line of a recipe. Quantity is nil for lines like
// "salt to taste".
type Ingredient struct {
	Quantity    *float64 `json:"quantity"`
	Unit        string   `json:"unit"`
	Description string   `json:"description"`
}

// UserGenerated reports whether the recipe was submitted through the
// upload form rather than published by the API.
func (r *Recipe) UserGenerated() bool {
	return r.Key != ""
}

// ScaleServings rescales every ingredient quantity proportionally to
// newServings and then overwrites Servings. The caller validates that
// both the current and the new servings are positive.
func (r *Recipe) ScaleServings(newServings int) {
	old := float64(r.Servings)
	for i := range r.Ingredients {
		q := r.Ingredients[i].Quantity
		if q == nil {
			continue
		}
		scaled := *q * float64(newServings) / old
		r.Ingredients[i].Quantity = &scaled
	}
	r.Servings = newServings
}

// Clone returns a deep copy. Bookmarks hold clones so later servings
// changes on the current recipe do not leak into stored snapshots.
func (r *Recipe) Clone() *Recipe {
	if r == nil {
		return nil
	}
	out := *r
	out.Ingredients = make([]Ingredient, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		out.Ingredients[i] = ing
		if ing.Quantity != nil {
			q := *ing.Quantity
			out.Ingredients[i].Quantity = &q
		}
	}
	return &out
}

// Quantity is a convenience for building ingredients in code.
func Quantity(v float64) *float64 {
	return &v
}
