// Package web embeds the HTML templates and static assets.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"strings"
	"time"

	"simplegest/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var funcs = template.FuncMap{
	"formatDate": service.FormatDate,
	"printDate":  func(t time.Time) string { return t.Format(service.DisplayDateLayout) },
	"join":       strings.Join,
	"inc":        func(i int) int { return i + 1 },
	"isYes":      func(b *bool) bool { return b != nil && *b },
	"isNo":       func(b *bool) bool { return b != nil && !*b },
}

// Templates parses every page template
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// Static is the asset tree served under /static
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
