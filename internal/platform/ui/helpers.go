package ui

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// formatDuration formats a duration for humans.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	} else if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	} else {
		minutes := int(d.Minutes())
		seconds := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	}
}

// formatScore prints whole distances without decimals and "-" when no
// neighbour was compared.
func formatScore(d float64) string {
	switch {
	case math.IsInf(d, 1):
		return "-"
	case d == math.Trunc(d):
		return fmt.Sprintf("%.0f", d)
	default:
		return fmt.Sprintf("%.2f", d)
	}
}

// boolToString renders a flag as ON/OFF.
func boolToString(b bool) string {
	if b {
		return StyleSuccess.Sprint("ON")
	}
	return StyleSecondary.Sprint("OFF")
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return StyleSecondary.Sprint("none")
	}
	return strings.Join(items, ", ")
}
