package automator

import (
	"html/template"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Field is one settings field of an admin page.
type Field struct {
	Type string        `json:"type"`
	HTML template.HTML `json:"html"`
}

// Fields is the ordered settings field mapping of an admin page.
type Fields = *orderedmap.OrderedMap[string, Field]

func NewFields() Fields {
	return orderedmap.New[string, Field]()
}

// HTMLField wraps raw markup in a Field.
func HTMLField(html template.HTML) Field {
	return Field{Type: "html", HTML: html}
}

// Render concatenates the markup of every field, in order.
func Render(fields Fields) template.HTML {
	var out template.HTML
	for pair := fields.Oldest(); pair != nil; pair = pair.Next() {
		out += pair.Value.HTML
	}
	return out
}
