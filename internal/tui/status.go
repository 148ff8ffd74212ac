package tui

import (
	"fmt"
	"strings"
)

// Canonical short status messages used across the app.
const (
	MsgSearching      = "Finding Recommendations..."
	MsgReady          = "Ready"
	MsgOpening        = "Opening…"
	MsgNoResults      = "No recommendations found"
	MsgNoResultsHint  = "Try adjusting your search or similarity threshold"
	MsgErrorTitle     = "Something went wrong"
	MsgResultsHeader  = "Recommended Movies"
	MsgSubmitIdle     = "Get Recommendations"
	MsgPreferenceFail = "Could not save theme preference"
)

func MsgShowingResultsFor(corrected string) string {
	return "Showing results for: " + strings.TrimSpace(corrected)
}

func MsgResultsCount(n int) string {
	return fmt.Sprintf("%d recommendations", n)
}

func MsgThemeSwitched(dark bool) string {
	if dark {
		return "Dark mode on"
	}
	return "Light mode on"
}
