package contextwindow

import "github.com/corey/ctxwin/internal/ports"

// Merge overlays cached on base, keyed by provider. A provider present in
// cached replaces the base entry wholesale; models are never merged
// individually. Neither input is modified and the result shares no maps with
// them.
func Merge(base, cached ports.ContextWindowMap) ports.ContextWindowMap {
	out := base.Clone()
	if out == nil {
		out = make(ports.ContextWindowMap, len(cached))
	}
	for provider, models := range cached {
		out[provider] = models.Clone()
	}
	return out
}
