package components

import "github.com/pthm-cable/flap/config"

// Body holds the collision extent of an agent.
type Body struct {
	Width, Height int
}

// BodyFromConfig returns the agent body described by cfg.
func BodyFromConfig(cfg *config.AgentConfig) Body {
	return Body{Width: cfg.Width, Height: cfg.Height}
}
