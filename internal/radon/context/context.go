// Package context carries the per-execution settings that travel through
// the Retrieve/Aggregate/Tally pipeline: which WIPs are active, the
// reducer return policy, and a Stage field. It has
// nothing to do with the standard library's context.Context — a RADON
// execution is synchronous and CPU-bound, there is nothing here to cancel.
package context

import "radon-engine/internal/radon/value"

// Context holds the settings for every execution of one stage runner. The
// caller builds it (cmd/radonsrv from pkg/config.Config) and passes it to
// stage.New, which reads ActiveWips and AverageMeanReturnPolicy once.
type Context struct {
	// ActiveWips names the feature flags this execution honors (e.g.
	// "wip0017", "wip0019"). A nil map means no WIPs are active — it is
	// always safe to check membership without a nil guard.
	ActiveWips map[string]struct{}

	// AverageMeanReturnPolicy is "round_to_integer" or "preserve_float",
	// fixed for the whole execution so the retrieve and tally stages of
	// one request never disagree on AverageMean's result type.
	AverageMeanReturnPolicy string

	// Stage names a pipeline stage. stage.Runner does not read it: Error
	// values are tagged with the stage passed to script.Interpreter.Execute.
	Stage value.Stage
}

// HasWip reports whether the named WIP is active for this execution.
func (c Context) HasWip(name string) bool {
	if c.ActiveWips == nil {
		return false
	}
	_, ok := c.ActiveWips[name]
	return ok
}

// WithStage returns a copy of c with Stage set.
func (c Context) WithStage(s value.Stage) Context {
	c.Stage = s
	return c
}

// NewActiveWips builds the ActiveWips set from a slice of WIP names, the
// shape pkg/config.Config.Engine.ActiveWips is loaded as.
func NewActiveWips(names []string) map[string]struct{} {
	if len(names) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}
