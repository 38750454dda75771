package cmd

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/corey/ctxwin/internal/app"
	"github.com/corey/ctxwin/internal/ports"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// formatTokens formats a token count with k/M suffixes.
func formatTokens(tokens int) string {
	if tokens >= 1_000_000 {
		return fmt.Sprintf("%.1fM", float64(tokens)/1_000_000)
	}
	if tokens >= 1_000 {
		return fmt.Sprintf("%.1fk", float64(tokens)/1_000)
	}
	return fmt.Sprintf("%d", tokens)
}

// formatProviderModels lists a provider's models sorted by name.
//
//	⚡ openai │ 13 models
//	  gpt-4o        128000  128.0k
func formatProviderModels(provider string, models ports.ProviderModelMap) string {
	names := make([]string, 0, len(models))
	width := 0
	for m := range models {
		names = append(names, m)
		if len(m) > width {
			width = len(m)
		}
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ %s%s │ %d models\n", colorBold, provider, colorReset, len(models)))
	for _, m := range names {
		sb.WriteString(fmt.Sprintf("  %s%-*s%s  %d  %s%s%s\n",
			colorCyan, width, m, colorReset,
			models[m],
			colorGray, formatTokens(models[m]), colorReset))
	}
	return sb.String()
}

// formatAge renders a duration as a coarse "Nd Nh" / "Nh Nm" / "Nm" string.
func formatAge(d time.Duration) string {
	if d < 0 {
		return "in the future"
	}
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%dd %dh ago", int(d/(24*time.Hour)), int(d%(24*time.Hour)/time.Hour))
	case d >= time.Hour:
		return fmt.Sprintf("%dh %dm ago", int(d/time.Hour), int(d%time.Hour/time.Minute))
	default:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	}
}

// formatStatus formats an app.Status for terminal display.
func formatStatus(st app.Status) string {
	return formatStatusAt(st, time.Now())
}

func formatStatusAt(st app.Status, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ ctxwin cache%s\n", colorBold, colorReset))
	sb.WriteString(fmt.Sprintf("  Dir:       %s\n", st.CacheDir))

	switch {
	case st.CacheLoaded:
		sb.WriteString(fmt.Sprintf("  Data:      %scache%s + fallback\n", colorGreen, colorReset))
	case errors.Is(st.LoadErr, ports.ErrCacheMissing):
		sb.WriteString(fmt.Sprintf("  Data:      %sfallback only%s (no cache)\n", colorYellow, colorReset))
	default:
		sb.WriteString(fmt.Sprintf("  Data:      %sfallback only%s (%v)\n", colorYellow, colorReset, st.LoadErr))
	}
	sb.WriteString(fmt.Sprintf("  Models:    %d across %d providers\n", st.Models, st.Providers))

	if st.HasMarker {
		sb.WriteString(fmt.Sprintf("  Cached:    %s (%s)\n",
			st.CachedAt.Local().Format(time.RFC3339), formatAge(now.Sub(st.CachedAt))))
	} else {
		sb.WriteString("  Cached:    never\n")
	}
	if st.Stale {
		sb.WriteString(fmt.Sprintf("  Fresh:     %s✗ stale%s\n", colorYellow, colorReset))
	} else {
		sb.WriteString(fmt.Sprintf("  Fresh:     %s✓ fresh%s\n", colorGreen, colorReset))
	}

	if r := st.LastRefresh; r != nil {
		at := time.UnixMilli(r.AtMillis).Local().Format(time.RFC3339)
		if r.OK() {
			sb.WriteString(fmt.Sprintf("  Refreshed: %s from %s (%d models)\n", at, r.Source, r.Models))
		} else {
			sb.WriteString(fmt.Sprintf("  Refreshed: %s %sfailed%s: %s\n", at, colorYellow, colorReset, r.Err))
		}
	}
	return sb.String()
}

// formatRefreshResult formats the outcome of one refresh.
func formatRefreshResult(res app.RefreshResult, source string) string {
	if !res.Refreshed {
		return fmt.Sprintf("%s⚡ cache is fresh%s │ nothing to do", colorBold, colorReset)
	}
	return fmt.Sprintf("%s⚡ refreshed%s │ %d models across %d providers │ %s%s%s",
		colorBold, colorReset, res.Models, res.Providers, colorGray, source, colorReset)
}
