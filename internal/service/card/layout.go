package card

import (
	"strings"

	"github.com/park285/pubg-card-studio/internal/domain"
)

// ProductLabel is the fixed label shown at the right of the header bar.
const ProductLabel = "PUBG ESPORTS"

// PlaceholderText is shown inside the portrait when no image is set.
const PlaceholderText = "No Image"

// Natural card footprint in pixels (portrait orientation).
const (
	CardWidth  = 380
	CardHeight = 520
)

type Header struct {
	TeamName string `json:"teamName"`
	Label    string `json:"label"`
}

type Portrait struct {
	Placeholder bool   `json:"placeholder"`
	Text        string `json:"text,omitempty"`
	Source      string `json:"source,omitempty"`
	Alt         string `json:"alt,omitempty"`
}

type StatCell struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Layout is the deterministic visual structure of a card. Renderers and the
// HTML markup both draw from it.
type Layout struct {
	Theme    domain.CardTheme `json:"theme"`
	Header   Header           `json:"header"`
	Portrait Portrait         `json:"portrait"`
	Title    string           `json:"title"`
	IGN      string           `json:"ign"`
	Role     string           `json:"role"`
	Stats    [4]StatCell      `json:"stats"`
}

// Subtitle is the in-game name in quotes followed by the upper-cased role.
func (l Layout) Subtitle() string {
	return `"` + l.IGN + `" ` + l.Role
}

func BuildLayout(info domain.PlayerInfo, theme domain.CardTheme) Layout {
	portrait := Portrait{Placeholder: true, Text: PlaceholderText}
	if info.ProfileImage != "" {
		portrait = Portrait{Source: info.ProfileImage, Alt: info.PlayerName}
	}
	return Layout{
		Theme:    theme,
		Header:   Header{TeamName: info.TeamName, Label: ProductLabel},
		Portrait: portrait,
		Title:    info.PlayerName,
		IGN:      info.InGameName,
		Role:     strings.ToUpper(info.Role),
		Stats: [4]StatCell{
			{Label: "K/D Ratio", Value: info.Stats.KD},
			{Label: "Matches", Value: info.Stats.Matches},
			{Label: "Wins", Value: info.Stats.Wins},
			{Label: "Headshot %", Value: info.Stats.HeadshotRate},
		},
	}
}
