// Package views holds the HTML templates, compiled into the binary.
package views

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var files embed.FS

// Engine returns the HTML template engine with all views loaded from the
// embedded filesystem, so rendering works regardless of the working directory.
func Engine() *html.Engine {
	sub, err := fs.Sub(files, "templates")
	if err != nil {
		panic("views: embedded templates missing: " + err.Error())
	}
	return html.NewFileSystem(http.FS(sub), ".html")
}
