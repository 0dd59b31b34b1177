package gate

// Action describes the kind of operation a caller wants to perform.
// The dashboard is read-only, so only list and view are in use.
type Action string

const (
	ActionView Action = "view"
	ActionList Action = "list"
)
