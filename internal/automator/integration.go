package automator

// RESTVersion is the version segment of every integration namespace.
const RESTVersion = "v1"

// Integration describes one external automation service the endpoints are exposed to.
type Integration struct {
	ID           string // "zapier", "power-automate"
	Name         string // display name
	OptionPrefix string // prefix of every option and dashboard field owned by the integration
}

// Namespace returns the versioned REST namespace, ex: tribe/zapier/v1.
func (i Integration) Namespace() string {
	return "tribe/" + i.ID + "/" + RESTVersion
}

var (
	Zapier = Integration{
		ID:           "zapier",
		Name:         "Zapier",
		OptionPrefix: "tec_zapier_endpoints_",
	}
	PowerAutomate = Integration{
		ID:           "power-automate",
		Name:         "Power Automate",
		OptionPrefix: "tec_power_automate_endpoints_",
	}
)

// Integrations lists every supported integration in dashboard order.
func Integrations() []Integration {
	return []Integration{Zapier, PowerAutomate}
}

// Actions holds the admin ajax action names of one integration.
type Actions struct {
	AddConnection    string
	CreateAccess     string
	DeleteConnection string
	ClearQueue       string
	DisableEndpoint  string
	EnableEndpoint   string
}

// NewActions derives the action names for an integration,
// ex: tec-automator-zapier-enable-endpoint.
func NewActions(integration Integration) Actions {
	p := "tec-automator-" + integration.ID + "-"
	return Actions{
		AddConnection:    p + "add-connection",
		CreateAccess:     p + "create-access-token",
		DeleteConnection: p + "delete-connection",
		ClearQueue:       p + "clear-endpoint-queue",
		DisableEndpoint:  p + "disable-endpoint",
		EnableEndpoint:   p + "enable-endpoint",
	}
}
