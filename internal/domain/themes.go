package domain

import "strings"

// Palette is the resolved colour set the rasteriser paints with. Colours
// are #rrggbb strings so the SVG chrome can embed them directly.
type Palette struct {
	BackgroundFrom    string  `json:"backgroundFrom"`
	BackgroundTo      string  `json:"backgroundTo"`
	Text              string  `json:"text"`
	StatsPanel        string  `json:"statsPanel"`
	StatsPanelOpacity float64 `json:"statsPanelOpacity"`
	Accent            string  `json:"accent"`
}

// Gradient reports whether the background blends top to bottom.
func (p Palette) Gradient() bool {
	return !strings.EqualFold(p.BackgroundFrom, p.BackgroundTo)
}

// CardTheme is an immutable preset selected by name from the catalog.
type CardTheme struct {
	Name         string  `json:"name"`
	BgClass      string  `json:"bgClass"`
	TextClass    string  `json:"textClass"`
	StatsBgClass string  `json:"statsBgClass"`
	AccentClass  string  `json:"accentClass"`
	Palette      Palette `json:"palette"`
}

const (
	colorPubgDark   = "#1b1d21"
	colorPubgLight  = "#f3efe6"
	colorPubgOrange = "#f2a900"
	colorPubgRed    = "#d6331f"
	colorPubgBlue   = "#2f8fe8"
	colorPubgGreen  = "#3fb950"
	colorBlue900    = "#1e3a8a"
	colorGreen900   = "#14532d"
	colorWhite      = "#ffffff"
	colorBlack      = "#000000"
)

var themes = [...]CardTheme{
	{
		Name:         "Dark",
		BgClass:      "bg-pubg-dark",
		TextClass:    "text-white",
		StatsBgClass: "bg-black/40",
		AccentClass:  "bg-pubg-orange",
		Palette: Palette{
			BackgroundFrom:    colorPubgDark,
			BackgroundTo:      colorPubgDark,
			Text:              colorWhite,
			StatsPanel:        colorBlack,
			StatsPanelOpacity: 0.4,
			Accent:            colorPubgOrange,
		},
	},
	{
		Name:         "Light",
		BgClass:      "bg-pubg-light",
		TextClass:    "text-pubg-dark",
		StatsBgClass: "bg-white/80",
		AccentClass:  "bg-pubg-dark",
		Palette: Palette{
			BackgroundFrom:    colorPubgLight,
			BackgroundTo:      colorPubgLight,
			Text:              colorPubgDark,
			StatsPanel:        colorWhite,
			StatsPanelOpacity: 0.8,
			Accent:            colorPubgDark,
		},
	},
	{
		Name:         "Fire",
		BgClass:      "bg-gradient-to-b from-pubg-orange to-pubg-red",
		TextClass:    "text-white",
		StatsBgClass: "bg-black/30",
		AccentClass:  "bg-pubg-dark",
		Palette: Palette{
			BackgroundFrom:    colorPubgOrange,
			BackgroundTo:      colorPubgRed,
			Text:              colorWhite,
			StatsPanel:        colorBlack,
			StatsPanelOpacity: 0.3,
			Accent:            colorPubgDark,
		},
	},
	{
		Name:         "Ice",
		BgClass:      "bg-gradient-to-b from-pubg-blue to-blue-900",
		TextClass:    "text-white",
		StatsBgClass: "bg-black/30",
		AccentClass:  "bg-pubg-dark",
		Palette: Palette{
			BackgroundFrom:    colorPubgBlue,
			BackgroundTo:      colorBlue900,
			Text:              colorWhite,
			StatsPanel:        colorBlack,
			StatsPanelOpacity: 0.3,
			Accent:            colorPubgDark,
		},
	},
	{
		Name:         "Toxic",
		BgClass:      "bg-gradient-to-b from-pubg-green to-green-900",
		TextClass:    "text-white",
		StatsBgClass: "bg-black/30",
		AccentClass:  "bg-pubg-dark",
		Palette: Palette{
			BackgroundFrom:    colorPubgGreen,
			BackgroundTo:      colorGreen900,
			Text:              colorWhite,
			StatsPanel:        colorBlack,
			StatsPanelOpacity: 0.3,
			Accent:            colorPubgDark,
		},
	},
}

// Themes returns the catalog in selector order.
func Themes() []CardTheme {
	return append([]CardTheme(nil), themes[:]...)
}

// ThemeByName looks a preset up by its exact name.
func ThemeByName(name string) (CardTheme, bool) {
	for _, t := range themes {
		if t.Name == name {
			return t, true
		}
	}
	return CardTheme{}, false
}

// DefaultTheme is the preset a new page session starts with.
func DefaultTheme() CardTheme {
	return themes[0]
}
