// Package render turns todos into the HTML the page and htmx swap in.
//
// Every function is a pure mapping from its arguments to markup written to w.
// Content is escaped by html/template.
package render

import (
	"embed"
	"html/template"
	"io"

	"htmx-todos/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	DefaultTitle         = "Todos"
	DefaultStylesheetURL = "/static/css/tailwind.css"
	DefaultHTMXURL       = "https://unpkg.com/htmx.org@1.9.10"
)

type PageData struct {
	Title         string
	StylesheetURL string
	HTMXURL       string
}

func DefaultPageData() PageData {
	return PageData{
		Title:         DefaultTitle,
		StylesheetURL: DefaultStylesheetURL,
		HTMXURL:       DefaultHTMXURL,
	}
}

// Page writes the document shell. Its <main> loads the list on page load.
func Page(w io.Writer, data PageData) error {
	return templates.ExecuteTemplate(w, "page", data)
}

// List writes every todo followed by the add form.
func List(w io.Writer, todos []model.Todo) error {
	if todos == nil {
		todos = []model.Todo{}
	}
	return templates.ExecuteTemplate(w, "list", todos)
}

// Item writes one todo. Its checkbox and delete button replace the
// enclosing div with the server response.
func Item(w io.Writer, t model.Todo) error {
	return templates.ExecuteTemplate(w, "item", t)
}

// Form writes the add form; new items are inserted right before it.
func Form(w io.Writer) error {
	return templates.ExecuteTemplate(w, "form", nil)
}

func Clicked(w io.Writer) error {
	return templates.ExecuteTemplate(w, "clicked", nil)
}

func Error(w io.Writer, msg string) error {
	return templates.ExecuteTemplate(w, "error", msg)
}
