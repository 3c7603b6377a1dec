package tools

import (
	"context"
	"sync"

	"github.com/firebase/genkit/go/ai"
)

type directReturnKey struct{}

// DirectReturn captures the output of a return-direct tool during a native
// tool-calling run, so the run can stop with that output as its answer.
type DirectReturn struct {
	mu     sync.Mutex
	tool   string
	output string
	set    bool
}

// WithDirectReturn attaches a fresh capture to ctx
func WithDirectReturn(ctx context.Context) (context.Context, *DirectReturn) {
	d := &DirectReturn{}
	return context.WithValue(ctx, directReturnKey{}, d), d
}

// Output returns the captured tool name and output, if any
func (d *DirectReturn) Output() (string, string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tool, d.output, d.set
}

func (d *DirectReturn) record(tool, output string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tool, d.output, d.set = tool, output, true
}

// Finish converts a Result into the genkit tool return value.
// For return-direct tools running under WithDirectReturn, the output is captured
// and the generation is interrupted instead of being fed back to the model.
func Finish(ctx *ai.ToolContext, name string, res Result, direct bool) (string, error) {
	out := res.Text()
	if !direct {
		return out, nil
	}
	d, ok := ctx.Value(directReturnKey{}).(*DirectReturn)
	if !ok {
		return out, nil
	}
	d.record(name, out)
	return "", ctx.Interrupt(&ai.InterruptOptions{
		Metadata: map[string]any{
			"direct_return": name,
		},
	})
}
