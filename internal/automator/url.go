package automator

import "net/url"

// NonceFunc mints a nonce for an action on behalf of the current user.
type NonceFunc func(action string) string

// URL builds the admin ajax links used by the dashboard buttons.
type URL struct {
	ajaxURL string
	actions Actions
	nonce   NonceFunc
}

func NewURL(ajaxURL string, actions Actions, nonce NonceFunc) URL {
	return URL{ajaxURL: ajaxURL, actions: actions, nonce: nonce}
}

func (u URL) ToEnableEndpoint(endpointID string) string {
	return u.link(u.actions.EnableEndpoint, endpointID)
}

func (u URL) ToDisableEndpoint(endpointID string) string {
	return u.link(u.actions.DisableEndpoint, endpointID)
}

func (u URL) ToClearEndpointQueue(endpointID string) string {
	return u.link(u.actions.ClearQueue, endpointID)
}

func (u URL) link(action, endpointID string) string {
	q := url.Values{}
	q.Set("action", action)
	q.Set("endpoint_id", endpointID)
	if u.nonce != nil {
		q.Set("_ajax_nonce", u.nonce(action))
	}
	return u.ajaxURL + "?" + q.Encode()
}
