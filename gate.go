package analytics

import "sync/atomic"

// Gate is the per-adapter enabled flag. Embed it to get Enable, Disable and
// Enabled. The zero value is enabled, and the flag is safe to toggle while
// other goroutines send.
type Gate struct {
	disabled atomic.Bool
}

// Enable turns sending on.
func (g *Gate) Enable() {
	g.disabled.Store(false)
}

// Disable turns sending off. Disabled adapters make no network calls.
func (g *Gate) Disable() {
	g.disabled.Store(true)
}

// Enabled reports whether the gate is open.
func (g *Gate) Enabled() bool {
	return !g.disabled.Load()
}
