package view

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/hammamikhairi/recipebook/internal/dom"
	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

func newDoc(t *testing.T) *dom.Document {
	t.Helper()
	page, err := Page("recipebook")
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	doc, err := dom.ParseString(page, logger.New(logger.LevelOff, nil))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

// query parses the serialized document so assertions see exactly what a
// browser would receive.
func query(t *testing.T, doc *dom.Document) *goquery.Document {
	t.Helper()
	out, err := doc.HTML()
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	g, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	return g
}

func testRecipe() *domain.Recipe {
	return &domain.Recipe{
		ID:          "5ed6604591c37cdc054bc886",
		Title:       "Pasta with Tomato Cream Sauce",
		Publisher:   "The Pioneer Woman",
		ImageURL:    "https://example.com/pasta.jpg",
		SourceURL:   "https://example.com/pasta",
		CookingTime: 45,
		Servings:    4,
		Ingredients: []domain.Ingredient{
			{Quantity: domain.Quantity(1.5), Unit: "cups", Description: "cream"},
			{Quantity: domain.Quantity(0.5), Unit: "", Description: "onion"},
			{Description: "salt"},
		},
	}
}

func TestRecipeViewRenderAndUpdate(t *testing.T) {
	doc := newDoc(t)
	v := NewRecipeView(doc, logger.New(logger.LevelOff, nil))

	r := testRecipe()
	if err := v.Render(r); err != nil {
		t.Fatalf("render: %v", err)
	}
	if v.State() != StateRendered {
		t.Fatalf("state = %v", v.State())
	}

	g := query(t, doc)
	if got := g.Find(".recipe__title span").Text(); got != r.Title {
		t.Fatalf("title = %q", got)
	}
	if got, _ := g.Find(".btn--increase-servings").Attr("data-update-to"); got != "5" {
		t.Fatalf("increase button targets %q", got)
	}
	if got := g.Find(".recipe__quantity").First().Text(); got != "1 1/2" {
		t.Fatalf("quantity = %q", got)
	}
	if !g.Find(".recipe__user-generated").HasClass("hidden") {
		t.Fatal("API recipe must hide the user-generated marker")
	}
	if href, _ := g.Find(".recipe__btn").Attr("href"); href != r.SourceURL {
		t.Fatalf("directions link = %q", href)
	}

	before, _ := doc.Resolve(".recipe__info-data--people")
	r.ScaleServings(8)
	r.Bookmarked = true
	if err := v.Update(r); err != nil {
		t.Fatalf("update: %v", err)
	}
	after, _ := doc.Resolve(".recipe__info-data--people")
	if before != after {
		t.Fatal("update must patch, not replace")
	}

	g = query(t, doc)
	if got := g.Find(".recipe__info-data--people").Text(); got != "8" {
		t.Fatalf("servings = %q", got)
	}
	if got := g.Find(".recipe__quantity").First().Text(); got != "3" {
		t.Fatalf("scaled quantity = %q", got)
	}
	if href, _ := g.Find(".btn--bookmark use").Attr("href"); !strings.HasSuffix(href, "#icon-bookmark-fill") {
		t.Fatalf("bookmark icon = %q", href)
	}
}

func TestViewOverlays(t *testing.T) {
	doc := newDoc(t)
	v := NewRecipeView(doc, logger.New(logger.LevelOff, nil))

	tests := []struct {
		name  string
		run   func() error
		want  State
		class string
		text  string
	}{
		{"nil data", func() error { return v.Render(nil) }, StateError, ".error", "We could not find that recipe"},
		{"spinner", v.RenderSpinner, StateSpinner, ".spinner", ""},
		{"default message", func() error { return v.RenderMessage("") }, StateMessage, ".message", "Start by searching"},
		{"custom error", func() error { return v.RenderError("boom") }, StateError, ".error", "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); err != nil {
				t.Fatalf("run: %v", err)
			}
			if v.State() != tt.want {
				t.Fatalf("state = %v, want %v", v.State(), tt.want)
			}
			sel := query(t, doc).Find(".recipe").Children()
			if sel.Length() != 1 || !sel.Is(tt.class) {
				t.Fatalf("expected a single %s overlay", tt.class)
			}
			if !strings.Contains(sel.Text(), tt.text) {
				t.Fatalf("overlay text %q lacks %q", sel.Text(), tt.text)
			}
		})
	}

	// Update over an overlay leaves it in place.
	if err := v.Update(testRecipe()); err != nil {
		t.Fatalf("update: %v", err)
	}
	if v.State() != StateError {
		t.Fatalf("update must not leave the overlay, state = %v", v.State())
	}
}

func TestResultsViewMarksActive(t *testing.T) {
	doc := newDoc(t)
	v := NewResultsView(doc, logger.New(logger.LevelOff, nil))
	results := []domain.SearchResult{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B", Key: "k"},
	}

	if err := v.Render(results); err != nil {
		t.Fatalf("render: %v", err)
	}
	doc.SetHash("b")
	if err := v.Update(results); err != nil {
		t.Fatalf("update: %v", err)
	}

	g := query(t, doc)
	links := g.Find(".results .preview__link")
	if links.Length() != 2 {
		t.Fatalf("expected 2 previews, got %d", links.Length())
	}
	if links.Eq(0).HasClass("preview__link--active") || !links.Eq(1).HasClass("preview__link--active") {
		t.Fatal("active marker on the wrong preview")
	}
	if href, _ := links.Eq(1).Attr("href"); href != "/recipes/b" {
		t.Fatalf("href = %q", href)
	}
	if g.Find(".results .preview__user-generated").Eq(1).HasClass("hidden") {
		t.Fatal("user recipe must show the marker")
	}

	if err := v.Render(nil); err != nil {
		t.Fatalf("render empty: %v", err)
	}
	if v.State() != StateError {
		t.Fatal("empty results must render the error overlay")
	}
}

func TestPaginationButtons(t *testing.T) {
	tests := []struct {
		name       string
		results    int
		page       int
		prev, next int
	}{
		{"first of many", 30, 1, 0, 2},
		{"middle", 30, 2, 1, 3},
		{"last", 30, 3, 2, 0},
		{"single page", 7, 1, 0, 0},
		{"no results", 0, 1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := newDoc(t)
			v := NewPaginationView(doc, logger.New(logger.LevelOff, nil))
			s := domain.SearchState{
				Results:        make([]domain.SearchResult, tt.results),
				Page:           tt.page,
				ResultsPerPage: 10,
			}
			if err := v.Render(s); err != nil {
				t.Fatalf("render: %v", err)
			}
			g := query(t, doc)
			check := func(sel string, want int) {
				b := g.Find(sel)
				if want == 0 {
					if b.Length() != 0 {
						t.Fatalf("%s should be absent", sel)
					}
					return
				}
				if got, _ := b.Attr("data-goto"); got != strconv.Itoa(want) {
					t.Fatalf("%s goes to %q, want %d", sel, got, want)
				}
			}
			check(".pagination__btn--prev", tt.prev)
			check(".pagination__btn--next", tt.next)
		})
	}
}

func TestHandlers(t *testing.T) {
	doc := newDoc(t)
	log := logger.New(logger.LevelOff, nil)
	ctx := context.Background()

	rv := NewRecipeView(doc, log)
	pv := NewPaginationView(doc, log)
	_ = rv.Render(testRecipe())
	_ = pv.Render(domain.SearchState{Results: make([]domain.SearchResult, 25), Page: 2, ResultsPerPage: 10})

	var servings, page, bookmarks int
	rv.AddHandlerUpdateServings(func(ctx context.Context, n int) { servings = n })
	rv.AddHandlerAddBookmark(func(ctx context.Context) { bookmarks++ })
	pv.AddHandlerClick(func(ctx context.Context, p int) { page = p })

	click := func(sel string) {
		t.Helper()
		target, err := doc.Resolve(sel)
		if err != nil {
			t.Fatalf("resolve %s: %v", sel, err)
		}
		doc.Dispatch(ctx, dom.Event{Type: dom.EventClick, Target: target})
	}

	click(".btn--decrease-servings svg")
	if servings != 3 {
		t.Fatalf("servings = %d, want 3", servings)
	}
	click(".pagination__btn--next span")
	if page != 3 {
		t.Fatalf("page = %d, want 3", page)
	}
	click(".btn--bookmark")
	if bookmarks != 1 {
		t.Fatalf("bookmark clicks = %d", bookmarks)
	}
	click(".recipe__title")
	if servings != 3 || bookmarks != 1 {
		t.Fatal("clicks outside buttons must be ignored")
	}

	// A one-serving recipe offers a decrease to 0, which is ignored.
	one := testRecipe()
	one.Servings = 1
	_ = rv.Render(one)
	servings = -1
	click(".btn--decrease-servings")
	if servings != -1 {
		t.Fatalf("decrease to zero must be ignored, got %d", servings)
	}
}

func TestSearchViewQuery(t *testing.T) {
	doc := newDoc(t)
	v := NewSearchView(doc, logger.New(logger.LevelOff, nil))

	fired := false
	v.AddHandlerSearch(func(ctx context.Context) { fired = true })

	form, _ := doc.Resolve(".search")
	doc.SetFormValues(form, map[string]string{"query": "pizza"})
	doc.Dispatch(context.Background(), dom.Event{Type: dom.EventSubmit, Target: form})

	if !fired {
		t.Fatal("submit handler not called")
	}
	if q := v.Query(); q != "pizza" {
		t.Fatalf("query = %q", q)
	}
	if q := v.Query(); q != "" {
		t.Fatalf("field not cleared, got %q", q)
	}
}

func TestBookmarksView(t *testing.T) {
	doc := newDoc(t)
	v := NewBookmarksView(doc, logger.New(logger.LevelOff, nil))

	if err := v.Render(nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(query(t, doc).Find(".bookmarks__list").Text(), "No bookmarks yet") {
		t.Fatal("empty list must show the error message")
	}

	_ = v.Render([]*domain.Recipe{testRecipe()})
	g := query(t, doc)
	if key, _ := g.Find(".bookmarks__list .preview").Attr("data-key"); key != testRecipe().ID {
		t.Fatalf("preview key = %q", key)
	}
}

func TestAddRecipeView(t *testing.T) {
	doc := newDoc(t)
	v, err := NewAddRecipeView(doc, logger.New(logger.LevelOff, nil))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	var got map[string]string
	v.AddHandlerUpload(func(ctx context.Context, fields map[string]string) { got = fields })

	open, _ := doc.Resolve(".nav__btn--add-recipe span")
	doc.Dispatch(ctx, dom.Event{Type: dom.EventClick, Target: open})
	if !v.IsOpen() {
		t.Fatal("window should be open")
	}

	form, _ := doc.Resolve(".upload")
	doc.SetFormValues(form, map[string]string{"title": "Soup", "ingredient-1": "1,kg,carrots"})
	doc.Dispatch(ctx, dom.Event{Type: dom.EventSubmit, Target: form})
	if got["title"] != "Soup" || got["ingredient-1"] != "1,kg,carrots" {
		t.Fatalf("fields = %v", got)
	}
	if _, ok := got["form"]; ok {
		t.Fatal("routing field must be stripped")
	}
	if _, ok := got["ingredient-6"]; !ok {
		t.Fatal("expected six ingredient slots")
	}

	_ = v.RenderMessage("")
	overlay, _ := doc.Resolve(".overlay")
	doc.Dispatch(ctx, dom.Event{Type: dom.EventClick, Target: overlay})
	if v.IsOpen() {
		t.Fatal("overlay click should close the window")
	}
	if v.State() != StateRendered {
		t.Fatal("closing must restore the form")
	}
	if fields := doc.FormValues(form); fields["title"] != "" {
		t.Fatalf("form not reset: %v", fields)
	}
}

func TestAddRecipeViewCloseResetsForm(t *testing.T) {
	doc := newDoc(t)
	v, err := NewAddRecipeView(doc, logger.New(logger.LevelOff, nil))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	open, _ := doc.Resolve(".nav__btn--add-recipe")
	doc.Dispatch(ctx, dom.Event{Type: dom.EventClick, Target: open})

	form, _ := doc.Resolve(".upload")
	doc.SetFormValues(form, map[string]string{"title": "Soup", "servings": "4", "ingredient-2": "1,,salt"})
	title, _ := doc.Resolve(`.upload input[name="title"]`)

	closeBtn, _ := doc.Resolve(".btn--close-modal")
	doc.Dispatch(ctx, dom.Event{Type: dom.EventClick, Target: closeBtn})
	if v.IsOpen() {
		t.Fatal("close button should hide the window")
	}

	fields := doc.FormValues(form)
	for _, name := range []string{"title", "servings", "ingredient-2"} {
		if fields[name] != "" {
			t.Fatalf("%s not reset: %q", name, fields[name])
		}
	}
	if fields["form"] != ".upload" {
		t.Fatalf("hidden routing field must survive the reset, got %q", fields["form"])
	}
	if again, _ := doc.Resolve(`.upload input[name="title"]`); again != title {
		t.Fatal("a reset form should keep its controls instead of re-rendering")
	}
}

func TestViewClear(t *testing.T) {
	doc := newDoc(t)
	v := NewPaginationView(doc, logger.New(logger.LevelOff, nil))
	if err := v.Render(domain.SearchState{Results: make([]domain.SearchResult, 25), Page: 1, ResultsPerPage: 10}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := v.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if v.State() != StateEmpty {
		t.Fatalf("state = %s", v.State())
	}
	inner, _ := doc.InnerHTML(".pagination")
	if strings.TrimSpace(inner) != "" {
		t.Fatalf("pagination not cleared: %q", inner)
	}
}

func TestFormatQuantity(t *testing.T) {
	tests := []struct {
		in   *float64
		want string
	}{
		{nil, ""},
		{domain.Quantity(2), "2"},
		{domain.Quantity(0.5), "1/2"},
		{domain.Quantity(1.5), "1 1/2"},
		{domain.Quantity(0.75), "3/4"},
		{domain.Quantity(1.0 / 3), "1/3"},
		{domain.Quantity(2.999), "3"},
		{domain.Quantity(0.0625), "1/16"},
	}
	for _, tt := range tests {
		if got := FormatQuantity(tt.in); got != tt.want {
			t.Fatalf("FormatQuantity(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
