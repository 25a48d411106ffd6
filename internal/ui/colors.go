package ui

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[94m" // Bright blue - more readable on dark backgrounds
	ColorGray   = "\033[90m"
	ColorBold   = "\033[1m"
)

// Summary line statuses
const (
	StatusOK    = "OK"
	StatusWarn  = "WARN"
	StatusEmpty = "EMPTY"
	StatusFail  = "FAIL"
)

// Colors holds all color functions
type Colors struct {
	enabled bool
}

// NewColors creates a new Colors instance
func NewColors(enabled bool) *Colors {
	return &Colors{enabled: enabled}
}

func (c *Colors) wrap(code, s string) string {
	if !c.enabled {
		return s
	}
	return code + s + ColorReset
}

// Red returns red colored text
func (c *Colors) Red(s string) string { return c.wrap(ColorRed, s) }

// Green returns green colored text
func (c *Colors) Green(s string) string { return c.wrap(ColorGreen, s) }

// Yellow returns yellow colored text
func (c *Colors) Yellow(s string) string { return c.wrap(ColorYellow, s) }

// Blue returns blue colored text
func (c *Colors) Blue(s string) string { return c.wrap(ColorBlue, s) }

// Gray returns gray colored text
func (c *Colors) Gray(s string) string { return c.wrap(ColorGray, s) }

// Bold returns bold text
func (c *Colors) Bold(s string) string { return c.wrap(ColorBold, s) }

// StatusColor returns colored text based on status
func (c *Colors) StatusColor(status string, text string) string {
	switch status {
	case StatusOK:
		return c.Green(text)
	case StatusFail:
		return c.Red(text)
	case StatusWarn:
		return c.Yellow(text)
	case StatusEmpty:
		return c.Gray(text)
	default:
		return text
	}
}

// StatusSymbol returns a colored symbol for the status
func (c *Colors) StatusSymbol(status string) string {
	switch status {
	case StatusOK:
		return c.Green("✓")
	case StatusFail:
		return c.Red("✗")
	case StatusWarn:
		return c.Yellow("!")
	case StatusEmpty:
		return c.Gray("⊘")
	default:
		return " "
	}
}
