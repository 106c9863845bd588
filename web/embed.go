package web

import (
	"embed"
	"html/template"
	"io/fs"
	"time"
)

// Pages and assets are compiled into the binary so the servers need no files on disk.
//
//go:embed templates/*.html
var templateFS embed.FS

//go:embed all:static
var staticFS embed.FS

// Templates parses every embedded page template. Pages share "layout.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(FuncMap()).ParseFS(templateFS, "templates/*.html")
}

// Static returns the embedded stylesheet and script tree rooted at "static".
func Static() (fs.FS, error) {
	return fs.Sub(staticFS, "static")
}

// FuncMap holds the helpers available to page templates.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.UTC().Format("January 2, 2006")
		},
		"year": func() int { return time.Now().Year() },
	}
}
