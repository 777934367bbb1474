package model

import "time"

// Shared defaults used by the CLI, the HTTP API and the TUI.
const (
	DefaultServer         = "speckle.xyz"
	DefaultStreamLimit    = 10
	DefaultBranchLimit    = 10
	DefaultCommitLimit    = 100
	DefaultRequestTimeout = 30 * time.Second
	DefaultTitle          = "Embodied Carbon Dashboard"
)
