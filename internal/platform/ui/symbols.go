package ui

// Icons
var (
	IconAccepted   = "✓"
	IconSuppressed = "≈"
	IconSkipped    = "⊘"
	IconStats      = "📊"
	IconTime       = "⏱"
)

// Separators
var (
	SeparatorHeavy = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"
)
