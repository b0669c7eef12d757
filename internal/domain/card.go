package domain

import (
	"errors"
	"strings"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrUnknownRole  = errors.New("unknown role")
	ErrUnknownTheme = errors.New("unknown theme")
)

// PlayerStats holds display-ready stat text. Values are never parsed.
type PlayerStats struct {
	KD           string `json:"kd"`
	Matches      string `json:"matches"`
	Wins         string `json:"wins"`
	HeadshotRate string `json:"headshotRate"`
}

// PlayerInfo is one snapshot of the card's player data. It is replaced
// wholesale on every edit.
type PlayerInfo struct {
	PlayerName   string      `json:"playerName"`
	InGameName   string      `json:"inGameName"`
	TeamName     string      `json:"teamName"`
	Role         string      `json:"role"`
	ProfileImage string      `json:"profileImage"`
	Stats        PlayerStats `json:"stats"`
}

// Field names an editable text field of PlayerInfo.
type Field string

const (
	FieldPlayerName   Field = "playerName"
	FieldInGameName   Field = "inGameName"
	FieldTeamName     Field = "teamName"
	FieldRole         Field = "role"
	FieldKD           Field = "kd"
	FieldMatches      Field = "matches"
	FieldWins         Field = "wins"
	FieldHeadshotRate Field = "headshotRate"
)

var fields = []Field{
	FieldPlayerName,
	FieldInGameName,
	FieldTeamName,
	FieldRole,
	FieldKD,
	FieldMatches,
	FieldWins,
	FieldHeadshotRate,
}

// Fields lists the editable text fields in form order.
func Fields() []Field {
	return append([]Field(nil), fields...)
}

func ParseField(s string) (Field, error) {
	v := Field(strings.TrimSpace(s))
	for _, f := range fields {
		if f == v {
			return f, nil
		}
	}
	return "", ErrUnknownField
}

// IsStat reports whether the field lives in the nested stats record.
func (f Field) IsStat() bool {
	switch f {
	case FieldKD, FieldMatches, FieldWins, FieldHeadshotRate:
		return true
	}
	return false
}

// With returns a copy of p with exactly one field replaced.
func (p PlayerInfo) With(field Field, value string) (PlayerInfo, error) {
	next := p
	switch field {
	case FieldPlayerName:
		next.PlayerName = value
	case FieldInGameName:
		next.InGameName = value
	case FieldTeamName:
		next.TeamName = value
	case FieldRole:
		next.Role = value
	case FieldKD:
		next.Stats.KD = value
	case FieldMatches:
		next.Stats.Matches = value
	case FieldWins:
		next.Stats.Wins = value
	case FieldHeadshotRate:
		next.Stats.HeadshotRate = value
	default:
		return p, ErrUnknownField
	}
	return next, nil
}

// Value reads a field back; used by the form and the wire layer.
func (p PlayerInfo) Value(field Field) (string, error) {
	switch field {
	case FieldPlayerName:
		return p.PlayerName, nil
	case FieldInGameName:
		return p.InGameName, nil
	case FieldTeamName:
		return p.TeamName, nil
	case FieldRole:
		return p.Role, nil
	case FieldKD:
		return p.Stats.KD, nil
	case FieldMatches:
		return p.Stats.Matches, nil
	case FieldWins:
		return p.Stats.Wins, nil
	case FieldHeadshotRate:
		return p.Stats.HeadshotRate, nil
	}
	return "", ErrUnknownField
}

// WithProfileImage returns a copy of p carrying the given image reference.
func (p PlayerInfo) WithProfileImage(ref string) PlayerInfo {
	next := p
	next.ProfileImage = ref
	return next
}

// DefaultPlayerInfo is the seed snapshot shown when a page session starts.
func DefaultPlayerInfo() PlayerInfo {
	return PlayerInfo{
		PlayerName:   "John Doe",
		InGameName:   "WraithKiller",
		TeamName:     "Phoenix Force",
		Role:         RoleFragger,
		ProfileImage: "",
		Stats: PlayerStats{
			KD:           "2.8",
			Matches:      "345",
			Wins:         "42",
			HeadshotRate: "38%",
		},
	}
}
