package ui

import "github.com/pterm/pterm"

// Palette
var (
	EmberOrange = pterm.NewRGB(255, 107, 53)
	InfernoRed  = pterm.NewRGB(215, 38, 56)
	MoltenGold  = pterm.NewRGB(255, 182, 39)
	AshGray     = pterm.NewRGB(128, 128, 128)
	GhostCyan   = pterm.NewRGB(0, 206, 209)
)

// Styles by purpose
var (
	// StylePrimary - headers and scores of accepted URLs
	StylePrimary = EmberOrange.ToRGBStyle()

	// StyleSuccess - accepted URLs and enabled flags
	StyleSuccess = GhostCyan.ToRGBStyle()

	// StyleWarning - skipped lines
	StyleWarning = MoltenGold.ToRGBStyle()

	// StyleError - run failures
	StyleError = InfernoRed.ToRGBStyle()

	// StyleSecondary - suppressed URLs and disabled flags
	StyleSecondary = AshGray.ToRGBStyle()
)
