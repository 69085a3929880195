package automator

// Connector groups what one integration needs to serve its dashboard and routes.
type Connector struct {
	Integration Integration
	Actions     Actions
	Registry    Registry
	Templates   *Templates
}

// NewConnector builds the connector of an integration with an empty registry.
func NewConnector(integration Integration) (*Connector, error) {
	t, err := NewTemplates(integration)
	if err != nil {
		return nil, err
	}
	return &Connector{
		Integration: integration,
		Actions:     NewActions(integration),
		Registry:    NewMemoryRegistry(),
		Templates:   t,
	}, nil
}

// Manager snapshots the registry.
func (c *Connector) Manager() *Manager {
	return NewManager(c.Integration, c.Actions, c.Templates, c.Registry)
}

// Dashboard is built with a per-user URL since links carry the user's nonce.
func (c *Connector) Dashboard(nonce NonceFunc, ajaxURL string) *Dashboard {
	return NewDashboard(c.Manager(), NewURL(ajaxURL, c.Actions, nonce))
}
