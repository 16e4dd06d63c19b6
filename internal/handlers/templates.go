package handlers

import (
	"html/template"
	"path/filepath"
	"time"

	"captionvote/internal/utils"

	"github.com/gin-contrib/multitemplate"
)

// LoadTemplates registers each view with the shared layout and components.
// Fragments used for HTMX swaps are registered standalone.
func LoadTemplates(templatesDir string) (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		return nil, err
	}
	components, err := filepath.Glob(templatesDir + "/components/*.html")
	if err != nil {
		return nil, err
	}

	assemble := func(view string) []string {
		files := make([]string, 0, len(layouts)+len(components)+1)
		files = append(files, layouts...)
		files = append(files, components...)
		return append(files, view)
	}

	funcMap := template.FuncMap{
		"add":           func(a, b int) int { return a + b },
		"sub":           func(a, b int) int { return a - b },
		"renderCaption": utils.RenderCaption,
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
	}

	views := map[string]string{
		"feed/list.html":  "/views/feed/list.html",
		"auth/login.html": "/views/auth/login.html",
		"error.html":      "/views/error.html",
	}
	for name, view := range views {
		r.AddFromFilesFuncs(name, funcMap, assemble(templatesDir+view)...)
	}

	// HTMX fragment
	r.AddFromFilesFuncs("feed/vote_buttons.html", funcMap, templatesDir+"/components/vote_buttons.html")

	return r, nil
}
