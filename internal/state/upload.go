package state

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hammamikhairi/recipebook/internal/domain"
)

// Upload form field names.
const (
	FieldTitle       = "title"
	FieldSourceURL   = "sourceUrl"
	FieldImageURL    = "image"
	FieldPublisher   = "publisher"
	FieldCookingTime = "cookingTime"
	FieldServings    = "servings"

	// IngredientPrefix starts the name of every ingredient field
	// ("ingredient-1", "ingredient-2", ...).
	IngredientPrefix = "ingredient"
)

// FormatError reports an upload field that could not be parsed.
type FormatError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("state: wrong format in %s (%q): %s", e.Field, e.Value, e.Reason)
}

// Unwrap lets callers match with errors.Is(err, domain.ErrFormat).
func (e *FormatError) Unwrap() error { return domain.ErrFormat }

// ParseUpload turns the flat field map submitted by the upload form into a
// recipe. Every non-empty field named with IngredientPrefix must hold
// exactly three comma separated parts: quantity, unit, description. The
// quantity may be empty.
func ParseUpload(fields map[string]string) (*domain.Recipe, error) {
	r := &domain.Recipe{
		Title:     strings.TrimSpace(fields[FieldTitle]),
		SourceURL: strings.TrimSpace(fields[FieldSourceURL]),
		ImageURL:  strings.TrimSpace(fields[FieldImageURL]),
		Publisher: strings.TrimSpace(fields[FieldPublisher]),
	}
	if r.Title == "" {
		return nil, &FormatError{Field: FieldTitle, Reason: "title is required"}
	}

	var err error
	if r.CookingTime, err = parseCount(fields, FieldCookingTime, 0); err != nil {
		return nil, err
	}
	if r.Servings, err = parseCount(fields, FieldServings, 1); err != nil {
		return nil, err
	}

	for _, name := range ingredientFields(fields) {
		ing, err := parseIngredient(name, fields[name])
		if err != nil {
			return nil, err
		}
		r.Ingredients = append(r.Ingredients, ing)
	}
	return r, nil
}

func parseCount(fields map[string]string, name string, min int) (int, error) {
	raw := strings.TrimSpace(fields[name])
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &FormatError{Field: name, Value: raw, Reason: "not a whole number"}
	}
	if n < min {
		return 0, &FormatError{Field: name, Value: raw, Reason: fmt.Sprintf("must be at least %d", min)}
	}
	return n, nil
}

func parseIngredient(name, raw string) (domain.Ingredient, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 3 {
		return domain.Ingredient{}, &FormatError{
			Field:  name,
			Value:  raw,
			Reason: "use the format 'quantity,unit,description'",
		}
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	ing := domain.Ingredient{Unit: parts[1], Description: parts[2]}
	if parts[0] != "" {
		q, err := strconv.ParseFloat(parts[0], 64)
		if err != nil || q <= 0 {
			return domain.Ingredient{}, &FormatError{Field: name, Value: raw, Reason: "quantity must be a positive number"}
		}
		ing.Quantity = &q
	}
	return ing, nil
}

// ingredientFields returns the non-empty ingredient field names ordered by
// their numeric suffix, so "ingredient-10" sorts after "ingredient-2".
func ingredientFields(fields map[string]string) []string {
	var names []string
	for name, v := range fields {
		if strings.HasPrefix(name, IngredientPrefix) && strings.TrimSpace(v) != "" {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		a, aok := fieldIndex(names[i])
		b, bok := fieldIndex(names[j])
		if aok && bok && a != b {
			return a < b
		}
		return names[i] < names[j]
	})
	return names
}

func fieldIndex(name string) (int, bool) {
	i := strings.LastIndexAny(name, "-_")
	if i < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(name[i+1:])
	return n, err == nil
}
