package automator

import (
	"context"
	"net/url"
	"strings"
	"testing"
)

func TestAddFieldsWithoutEndpoints(t *testing.T) {
	c, _ := newTestConnector(t)
	d := c.Dashboard(nil, "https://example.com/wp-admin/admin-ajax.php")

	fields := NewFields()
	fields.Set("before", HTMLField("<p>before</p>"))

	fields, err := d.AddFields(context.Background(), fields)
	if err != nil {
		t.Fatalf("AddFields(): %v", err)
	}

	want := []string{
		"before",
		"tec_zapier_endpoints_wrapper_open",
		"tec_zapier_endpoints_header",
		"tec_zapier_endpoints_endpoints",
		"tec_zapier_endpoints_wrapper_close",
	}
	var got []string
	for pair := fields.Oldest(); pair != nil; pair = pair.Next() {
		got = append(got, pair.Key)
		if pair.Value.Type != "html" {
			t.Errorf("field %s type = %q", pair.Key, pair.Value.Type)
		}
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("keys = %v, want %v", got, want)
	}

	open, _ := fields.Get("tec_zapier_endpoints_wrapper_open")
	if !strings.Contains(string(open.HTML), `id="tribe-settings-zapier-application"`) {
		t.Errorf("wrapper_open = %s", open.HTML)
	}
	closing, _ := fields.Get("tec_zapier_endpoints_wrapper_close")
	if closing.HTML != `<div class="clear"></div></div>` {
		t.Errorf("wrapper_close = %s", closing.HTML)
	}
}

func TestAddFieldsNilMapping(t *testing.T) {
	c, _ := newTestConnector(t)
	fields, err := c.Dashboard(nil, "/ajax").AddFields(context.Background(), nil)
	if err != nil {
		t.Fatalf("AddFields(): %v", err)
	}
	if fields.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", fields.Len())
	}
}

func TestDashboardRendersEndpoints(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestConnector(t, canceledDef, Definition{ID: "find_events", DisplayName: "Find Events", Type: TypeSearch})
	c.Manager().Enable(ctx, "canceled_events")

	d := c.Dashboard(func(action string) string { return "n-" + action }, "/wp-admin/admin-ajax.php")
	fields, err := d.AddFields(ctx, nil)
	if err != nil {
		t.Fatalf("AddFields(): %v", err)
	}
	table, _ := fields.Get("tec_zapier_endpoints_endpoints")
	html := string(table.HTML)

	for _, want := range []string{
		"Canceled Events",
		"Find Events",
		"tec-automator-zapier-disable-endpoint",
		"tec-automator-zapier-enable-endpoint",
		"tec-automator-zapier-clear-endpoint-queue",
		"n-tec-automator-zapier-clear-endpoint-queue",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
	if strings.Index(html, "Canceled Events") > strings.Index(html, "Find Events") {
		t.Errorf("endpoints not sorted by id")
	}
}

func TestDashboardHidesButtonsOnMissingDependency(t *testing.T) {
	c, _ := newTestConnector(t, Definition{ID: "find_tickets", DisplayName: "Find Tickets", Type: TypeSearch, Dependents: []string{"et"}})
	fields, err := c.Dashboard(nil, "/ajax").AddFields(context.Background(), nil)
	if err != nil {
		t.Fatalf("AddFields(): %v", err)
	}
	table, _ := fields.Get("tec_zapier_endpoints_endpoints")
	html := string(table.HTML)

	if !strings.Contains(html, "Missing required plugin") {
		t.Errorf("missing dependency not shown")
	}
	if strings.Contains(html, "<button") {
		t.Errorf("buttons rendered for an endpoint with a missing dependency")
	}
}

func TestURL(t *testing.T) {
	u := NewURL("/wp-admin/admin-ajax.php", NewActions(PowerAutomate), func(action string) string { return "nonce-" + action })

	link := u.ToDisableEndpoint("new_events")
	parsed, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse %q: %v", link, err)
	}
	q := parsed.Query()
	if parsed.Path != "/wp-admin/admin-ajax.php" {
		t.Errorf("path = %q", parsed.Path)
	}
	if q.Get("action") != "tec-automator-power-automate-disable-endpoint" {
		t.Errorf("action = %q", q.Get("action"))
	}
	if q.Get("endpoint_id") != "new_events" {
		t.Errorf("endpoint_id = %q", q.Get("endpoint_id"))
	}
	if q.Get("_ajax_nonce") != "nonce-tec-automator-power-automate-disable-endpoint" {
		t.Errorf("_ajax_nonce = %q", q.Get("_ajax_nonce"))
	}
}
