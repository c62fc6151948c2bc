// Package views embeds the microblog page templates and static assets.
package views

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"microblog/internal/timeline"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed public
var publicFS embed.FS

// Page is the data every full page renders with. Name is empty for
// anonymous visitors.
type Page struct {
	Name     string
	Query    string
	Flashes  []string
	Tweets   []timeline.Entry
	User     string
	MyPage   bool
	IsFriend bool
}

// Templates parses every embedded template: index, user, search, _tweets.
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// MustTemplates panics when the embedded templates do not parse.
func MustTemplates() *template.Template {
	return template.Must(Templates())
}

// Public serves /css and /js.
func Public() http.FileSystem {
	sub, err := fs.Sub(publicFS, "public")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
