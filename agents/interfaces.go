package agents

import (
	"context"

	"github.com/va6996/flightfinder/plugins/core"
)

// Task is one flight search request handed to a reasoning engine
type Task struct {
	Query   string
	Details core.QueryDetails
}

// Reasoner runs a think/act/observe loop over a fixed tool set and returns the final answer
type Reasoner interface {
	Run(ctx context.Context, task Task) (string, error)
}
