package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hammamikhairi/recipebook/internal/domain"
)

func TestRenderBannerCentres(t *testing.T) {
	out := RenderBanner(200)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) == 0 {
		t.Fatal("empty banner")
	}
	if !strings.HasPrefix(lines[0], strings.Repeat(" ", 50)) {
		t.Fatalf("banner not padded: %q", lines[0])
	}
}

func TestBookmarksListing(t *testing.T) {
	tests := []struct {
		name      string
		bookmarks []*domain.Recipe
		want      []string
	}{
		{"empty", nil, []string{"No bookmarks yet."}},
		{
			"two",
			[]*domain.Recipe{
				{ID: "a", Title: "Soup", Publisher: "me", CookingTime: 20, Servings: 2},
				{ID: "b", Title: "Stew", Key: "k", Servings: 4},
			},
			[]string{"Bookmarks (2)", "1. Soup", "by me", "2. Stew", "(yours)", "4 servings"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewPrinter(&buf, 80).Bookmarks(tt.bookmarks)
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Fatalf("output %q lacks %q", buf.String(), w)
				}
			}
		})
	}
}
