// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// CredentialRowViewModel holds presentation-ready data for one row of the
// credential table.
type CredentialRowViewModel struct {
	ID            string
	Provider      string
	MaskedKey     string
	Status        string // "active", "cooling down", "inactive" or "unreadable"
	StatusClass   string // CSS modifier for the status badge
	FailCount     int
	LastUsed      string // "never" or a relative time such as "5m ago"
	DisabledUntil string // empty unless a disable window is in the future
	Active        bool

	DeactivateURL string
	ReactivateURL string
	DeleteURL     string
}

// CredentialsPageViewModel holds everything the credential admin page shows.
type CredentialsPageViewModel struct {
	Credentials []CredentialRowViewModel
	UsableCount int
	Notice      string
	Error       string
	CSRFToken   string
}

// DetailOption is one choice in the detail-level selector.
type DetailOption struct {
	Value    string
	Label    string
	Selected bool
}

// SummarizePageViewModel holds the summarize form and, after a submission,
// its result.
type SummarizePageViewModel struct {
	Text          string
	DetailOptions []DetailOption
	// SummaryHTML is sanitized HTML rendered from the model's Markdown.
	SummaryHTML string
	ChunkCount  int
	Degraded    bool
	Error       string
	CSRFToken   string
}
