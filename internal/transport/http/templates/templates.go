// Package templates holds the HTML pages served by the account flow.
package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html
var FS embed.FS

// Page names accepted by gin's HTML renderer.
const (
	Registration = "registro.html"
	Login        = "login.html"
	Home         = "inicio.html"
)

// Load parses every embedded page together with the shared partials.
func Load() (*template.Template, error) {
	return template.New("").ParseFS(FS, "*.html")
}
