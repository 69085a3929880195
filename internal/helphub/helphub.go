package helphub

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	TypeTECEvents    = "tec_events"
	TypeEventTickets = "event_tickets"
)

// Template variants of the resources tab.
const (
	VariantNoLicense            = "no-license"
	VariantHasLicenseNoConsent  = "has-license-no-consent"
	VariantHasLicenseHasConsent = "has-license-has-consent"
)

var ErrUnknownHubType = errors.New("unknown help hub type")

//go:embed resources.yaml templates/*.tmpl
var files embed.FS

// Link is an entry of a resource list.
type Link struct {
	Title string `yaml:"title"`
	Link  string `yaml:"link"`
	Icon  string `yaml:"icon,omitempty"`
}

// ResourceData is what differs between the hubs of two plugins.
type ResourceData struct {
	Title                 string            `yaml:"title"`
	SupportHubTitle       string            `yaml:"support_hub_title"`
	SupportHubDescription string            `yaml:"support_hub_description"`
	ChatbotName           string            `yaml:"chatbot_name"`
	Icons                 map[string]string `yaml:"icons"`
	Links                 map[string]string `yaml:"links"`
	CommonIssues          []Link            `yaml:"common_issues"`
	CustomizationGuides   []Link            `yaml:"customization_guides"`
}

// ChatKeys are the keys of the support chat services. Empty when not configured.
type ChatKeys struct {
	DocsBot string
	Zendesk string
}

// Status is the license and telemetry state of the site.
type Status struct {
	OptedIn      bool
	LicenseValid bool
}

// Hub is a configured help page.
type Hub struct {
	Type   string
	Data   ResourceData
	Keys   ChatKeys
	Status Status

	assetBase string
	tmpl      *template.Template
}

// TemplateVariant picks the resources sidebar from the site status.
func (h *Hub) TemplateVariant() string {
	switch {
	case !h.Status.LicenseValid:
		return VariantNoLicense
	case !h.Status.OptedIn:
		return VariantHasLicenseNoConsent
	default:
		return VariantHasLicenseHasConsent
	}
}

// Render writes the help page.
func (h *Hub) Render(w io.Writer) error {
	if err := h.tmpl.ExecuteTemplate(w, "hub", h); err != nil {
		return fmt.Errorf("failed to render %s help hub: %w", h.Type, err)
	}
	return nil
}

// Factory builds hubs by type.
type Factory struct {
	resources map[string]ResourceData
	keys      ChatKeys
	assetBase string
	tmpl      *template.Template
}

// NewFactory loads the built-in resource data. Relative icon paths are served
// under assetBase.
func NewFactory(keys ChatKeys, assetBase string) (*Factory, error) {
	raw, err := files.ReadFile("resources.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read help hub resources: %w", err)
	}
	var resources map[string]ResourceData
	if err := yaml.Unmarshal(raw, &resources); err != nil {
		return nil, fmt.Errorf("failed to parse help hub resources: %w", err)
	}

	f := &Factory{resources: resources, keys: keys, assetBase: strings.TrimSuffix(assetBase, "/")}
	f.tmpl, err = template.New("helphub").Funcs(template.FuncMap{
		"asset": f.asset,
	}).ParseFS(files, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse help hub templates: %w", err)
	}
	return f, nil
}

// Types lists the known hub types.
func (f *Factory) Types() []string {
	types := make([]string, 0, len(f.resources))
	for t := range f.resources {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Create returns the hub of hubType.
func (f *Factory) Create(hubType string) (*Hub, error) {
	data, ok := f.resources[hubType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHubType, hubType)
	}
	return &Hub{
		Type:      hubType,
		Data:      data,
		Keys:      f.keys,
		assetBase: f.assetBase,
		tmpl:      f.tmpl,
	}, nil
}

func (f *Factory) asset(p string) string {
	if p == "" || strings.Contains(p, "://") {
		return p
	}
	return f.assetBase + path.Clean("/"+p)
}
