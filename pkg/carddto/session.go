package carddto

import "time"

type PlayerStats struct {
	KD           string `json:"kd"`
	Matches      string `json:"matches"`
	Wins         string `json:"wins"`
	HeadshotRate string `json:"headshotRate"`
}

type PlayerInfo struct {
	PlayerName   string      `json:"playerName"`
	InGameName   string      `json:"inGameName"`
	TeamName     string      `json:"teamName"`
	Role         string      `json:"role"`
	ProfileImage string      `json:"profileImage"`
	Stats        PlayerStats `json:"stats"`
}

type CardTheme struct {
	Name         string `json:"name"`
	BgClass      string `json:"bgClass"`
	TextClass    string `json:"textClass"`
	StatsBgClass string `json:"statsBgClass"`
	AccentClass  string `json:"accentClass"`
}

type RoleOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type StatCell struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// CardLayout mirrors what the preview draws.
type CardLayout struct {
	Header      string     `json:"header"`
	Label       string     `json:"label"`
	Placeholder bool       `json:"placeholder"`
	Title       string     `json:"title"`
	Subtitle    string     `json:"subtitle"`
	Stats       []StatCell `json:"stats"`
	Width       int        `json:"width"`
	Height      int        `json:"height"`
}

// SessionState is one page session's snapshot pair plus preview metadata.
type SessionState struct {
	SessionID   string     `json:"sessionId"`
	Version     uint64     `json:"version"`
	PlayerInfo  PlayerInfo `json:"playerInfo"`
	Theme       CardTheme  `json:"theme"`
	Layout      CardLayout `json:"layout"`
	ExportState string     `json:"exportState"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
