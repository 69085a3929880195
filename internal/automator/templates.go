package automator

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Templates renders the dashboard fragments of one integration.
type Templates struct {
	integration Integration
	tmpl        *template.Template
}

// NewTemplates parses the embedded dashboard templates.
func NewTemplates(integration Integration) (*Templates, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard templates: %w", err)
	}
	return &Templates{integration: integration, tmpl: tmpl}, nil
}

// IntroText is the dashboard header.
func (t *Templates) IntroText() (template.HTML, error) {
	return t.render("intro", t.integration)
}

type button struct {
	Kind         string // enable, disable, clear
	Label        string
	Link         string
	Confirmation string
}

type row struct {
	View    View
	IsQueue bool
	Buttons []button
}

// Dashboard renders one row per endpoint, in the given order. Endpoints with a
// missing dependency get no action buttons.
func (t *Templates) Dashboard(views []View, m *Manager, u URL) (template.HTML, error) {
	rows := make([]row, 0, len(views))
	for _, v := range views {
		r := row{View: v, IsQueue: v.Type == TypeQueue}
		if !v.MissingDependency {
			if v.Enabled {
				r.Buttons = append(r.Buttons, button{
					Kind:         "disable",
					Label:        "Disable",
					Link:         u.ToDisableEndpoint(v.ID),
					Confirmation: m.DisableConfirmation(v.Type),
				})
			} else {
				r.Buttons = append(r.Buttons, button{
					Kind:         "enable",
					Label:        "Enable",
					Link:         u.ToEnableEndpoint(v.ID),
					Confirmation: m.EnableConfirmation(),
				})
			}
			if r.IsQueue {
				r.Buttons = append(r.Buttons, button{
					Kind:         "clear",
					Label:        "Clear Queue",
					Link:         u.ToClearEndpointQueue(v.ID),
					Confirmation: m.ClearConfirmation(),
				})
			}
		}
		rows = append(rows, r)
	}

	return t.render("dashboard", struct {
		Integration Integration
		Rows        []row
	}{t.integration, rows})
}

func (t *Templates) render(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := t.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}
