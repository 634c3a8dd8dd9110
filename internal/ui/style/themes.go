package style

import (
	"sort"
	"strings"

	"github.com/muesli/termenv"
)

// Colors holds the ANSI 256 color of each semantic role.
// A value of "bold" renders bold without a color.
type Colors struct {
	Success string
	Warning string
	Error   string
	Info    string
	Muted   string
	Header  string
	Accent  string
}

// Themes contains the built-in themes. Dark variants use bright colors,
// light variants use dark ones.
var Themes = map[string]Colors{
	"default-dark": {
		Success: "10",
		Warning: "11",
		Error:   "9",
		Info:    "14",
		Muted:   "245",
		Header:  "bold",
		Accent:  "105",
	},
	"default-light": {
		Success: "28",
		Warning: "130",
		Error:   "124",
		Info:    "27",
		Muted:   "243",
		Header:  "bold",
		Accent:  "62",
	},
	"neon-dark": {
		Success: "46",
		Warning: "226",
		Error:   "196",
		Info:    "51",
		Muted:   "240",
		Header:  "201",
		Accent:  "201",
	},
	"neon-light": {
		Success: "34",
		Warning: "172",
		Error:   "160",
		Info:    "31",
		Muted:   "245",
		Header:  "127",
		Accent:  "127",
	},
	"ocean-dark": {
		Success: "79",
		Warning: "222",
		Error:   "210",
		Info:    "117",
		Muted:   "244",
		Header:  "75",
		Accent:  "39",
	},
	"ocean-light": {
		Success: "29",
		Warning: "136",
		Error:   "131",
		Info:    "25",
		Muted:   "244",
		Header:  "24",
		Accent:  "31",
	},
	"mono-dark": {
		Success: "bold",
		Warning: "bold",
		Error:   "bold",
		Info:    "252",
		Muted:   "242",
		Header:  "bold",
		Accent:  "255",
	},
	"mono-light": {
		Success: "bold",
		Warning: "bold",
		Error:   "bold",
		Info:    "238",
		Muted:   "246",
		Header:  "bold",
		Accent:  "232",
	},
}

// BaseThemeNames lists the theme bases, without the -dark/-light suffix.
func BaseThemeNames() []string {
	seen := map[string]bool{}
	var names []string
	for name := range Themes {
		base := strings.TrimSuffix(strings.TrimSuffix(name, "-dark"), "-light")
		if !seen[base] {
			seen[base] = true
			names = append(names, base)
		}
	}
	sort.Strings(names)
	return names
}

// IsDarkBackground queries the terminal. It returns true when detection fails.
func IsDarkBackground() bool {
	return termenv.HasDarkBackground()
}

// ResolveThemeName appends -dark or -light to a base name. Names that already
// carry a suffix are returned unchanged.
func ResolveThemeName(name string, dark bool) string {
	if name == "" {
		name = "default"
	}
	if strings.HasSuffix(name, "-dark") || strings.HasSuffix(name, "-light") {
		return name
	}
	if dark {
		return name + "-dark"
	}
	return name + "-light"
}

// Lookup returns the colors of a resolved theme name, falling back to
// default-dark for unknown names.
func Lookup(name string) (Colors, bool) {
	c, ok := Themes[name]
	if !ok {
		return Themes["default-dark"], false
	}
	return c, true
}
