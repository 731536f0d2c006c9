// ABOUTME: Icon system with Nerd Font detection and Unicode fallback
// ABOUTME: Provides consistent iconography across different terminal capabilities

package icons

import (
	"os"
	"strings"
	"sync"
)

var (
	useNerdFonts     bool
	nerdFontDetected sync.Once
)

// detectNerdFonts checks if Nerd Fonts should be used
func detectNerdFonts() bool {
	// Explicit override via environment variable
	if env := os.Getenv("INVENTORY_NERD_FONTS"); env != "" {
		return env == "1" || strings.ToLower(env) == "true"
	}

	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")

	// iTerm2, Alacritty, WezTerm, Kitty typically have Nerd Fonts
	nerdFontTerminals := []string{
		"iTerm.app",
		"alacritty",
		"WezTerm",
		"kitty",
		"ghostty",
	}

	for _, t := range nerdFontTerminals {
		if strings.Contains(termProgram, t) || strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}

	if os.Getenv("NERD_FONTS") == "1" {
		return true
	}

	// Default to Unicode fallback for maximum compatibility
	return false
}

// HasNerdFonts returns true if Nerd Fonts are available
func HasNerdFonts() bool {
	nerdFontDetected.Do(func() {
		useNerdFonts = detectNerdFonts()
	})
	return useNerdFonts
}

// Icon represents an icon with Nerd Font and Unicode fallback variants
type Icon struct {
	NerdFont string
	Fallback string
}

// String returns the appropriate icon based on font availability
func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

// Icon definitions - Nerd Font codepoints with Unicode fallbacks
var (
	// People and things
	User    = Icon{"\U000F0004", "●"} // nf-md-account
	Admin   = Icon{"\U000F0483", "⛊"} // nf-md-shield_check
	Item    = Icon{"\U000F01A7", "□"} // nf-md-cube_outline
	Request = Icon{"\U000F0219", "▤"} // nf-md-file_document

	// Status indicators
	CheckOK  = Icon{"\uF058", "✓"}     // nf-fa-check_circle
	Pending  = Icon{"\U000F0954", "◷"} // nf-md-clock_outline
	Warning  = Icon{"\uF071", "⚠"}     // nf-fa-warning
	Critical = Icon{"\uF057", "✗"}     // nf-fa-times_circle
	Info     = Icon{"\uF05A", "ℹ"}     // nf-fa-info_circle

	// Actions
	Refresh = Icon{"\U000F0450", "↻"} // nf-md-refresh
	Add     = Icon{"\U000F0415", "+"} // nf-md-plus
	Edit    = Icon{"\U000F03EB", "✎"} // nf-md-pencil
	Delete  = Icon{"\U000F01B4", "⌫"} // nf-md-delete
	Logout  = Icon{"\U000F0343", "⇥"} // nf-md-logout

	// Application
	App = Icon{"\U000F03D7", "◈"} // nf-md-package_variant_closed
)
