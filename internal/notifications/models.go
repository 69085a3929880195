package notifications

// Notification is one in-admin notification of the feed.
type Notification struct {
	ID          string   `json:"id" yaml:"id"`
	Type        string   `json:"type" yaml:"type"` // update, notice, warning
	Slug        string   `json:"slug" yaml:"slug"`
	Title       string   `json:"title" yaml:"title"`
	Content     string   `json:"content" yaml:"content"`
	Actions     []Action `json:"actions" yaml:"actions"`
	Dismissible bool     `json:"dismissible" yaml:"dismissible"`
}

// Action is a call to action button of a notification.
type Action struct {
	Text   string `json:"text" yaml:"text"`
	Link   string `json:"link" yaml:"link"`
	Target string `json:"target" yaml:"target"`
}
