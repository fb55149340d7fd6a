package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// IconSprite is the URL of the SVG sprite the markup points at.
const IconSprite = "/static/icons.svg"

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"icon":     func(name string) string { return IconSprite + "#icon-" + name },
	"add":      func(a, b int) int { return a + b },
	"fraction": FormatQuantity,
}).ParseFS(templateFS, "templates/*.html"))

func execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("view: execute %s: %w", name, err)
	}
	return buf.String(), nil
}

// Page renders the page skeleton every session document starts from.
func Page(title string) (string, error) {
	return execute("page", struct{ Title string }{title})
}
