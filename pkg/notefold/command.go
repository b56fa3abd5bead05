package notefold

// Command represents a discrete application operation with its specific
// configuration. Implementations carry their own options; the application
// layer routes execution through [App].
type Command interface {
	// Name returns the command identifier used for routing.
	Name() string
}

// MigrateCommand initializes or updates the backend schema to match the
// current data model. Safe to run repeatedly; it only creates missing
// schema elements.
type MigrateCommand struct{}

func (c *MigrateCommand) Name() string { return "migrate" }

// RunCommand starts the HTTP server and blocks until the context is
// cancelled or the server fails.
type RunCommand struct{}

func (c *RunCommand) Name() string { return "run" }
