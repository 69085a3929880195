package automator

import (
	"context"
	"fmt"
	"html/template"
)

// Dashboard adds the endpoint table of an integration to its settings page.
type Dashboard struct {
	manager   *Manager
	templates *Templates
	url       URL
}

func NewDashboard(manager *Manager, url URL) *Dashboard {
	return &Dashboard{manager: manager, templates: manager.Templates(), url: url}
}

// Endpoints returns the endpoints sorted by id.
func (d *Dashboard) Endpoints() []*Endpoint {
	return d.manager.Sorted()
}

// FieldKeys returns the four keys AddFields writes, in order.
func (d *Dashboard) FieldKeys() [4]string {
	p := d.manager.Integration().OptionPrefix
	return [4]string{p + "wrapper_open", p + "header", p + "endpoints", p + "wrapper_close"}
}

// AddFields appends the dashboard to fields. The four fields are present even
// when the integration has no endpoint.
func (d *Dashboard) AddFields(ctx context.Context, fields Fields) (Fields, error) {
	endpoints := d.Endpoints()
	views := make([]View, 0, len(endpoints))
	for _, e := range endpoints {
		v, err := e.View(ctx)
		if err != nil {
			return fields, fmt.Errorf("failed to load endpoint %s: %w", e.ID(), err)
		}
		views = append(views, v)
	}

	header, err := d.templates.IntroText()
	if err != nil {
		return fields, err
	}
	table, err := d.templates.Dashboard(views, d.manager, d.url)
	if err != nil {
		return fields, err
	}

	id := template.HTMLEscapeString(d.manager.Integration().ID)
	open := template.HTML(fmt.Sprintf(
		`<div id="tribe-settings-%[1]s-application" class="tec-automator-dashboard tec-events-settings-%[1]s-dashboard">`, id))

	if fields == nil {
		fields = NewFields()
	}
	keys := d.FieldKeys()
	fields.Set(keys[0], HTMLField(open))
	fields.Set(keys[1], HTMLField(header))
	fields.Set(keys[2], HTMLField(table))
	fields.Set(keys[3], HTMLField(`<div class="clear"></div></div>`))
	return fields, nil
}
