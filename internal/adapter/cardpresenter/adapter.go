package cardpresenter

import (
	"github.com/park285/pubg-card-studio/internal/domain"
	"github.com/park285/pubg-card-studio/internal/service/card"
	"github.com/park285/pubg-card-studio/internal/studio"
	"github.com/park285/pubg-card-studio/pkg/carddto"
)

func ToDTOState(s studio.State) carddto.SessionState {
	return carddto.SessionState{
		SessionID:   s.SessionID,
		Version:     s.Version,
		PlayerInfo:  ToDTOPlayerInfo(s.PlayerInfo),
		Theme:       ToDTOTheme(s.Theme),
		Layout:      ToDTOLayout(s.Layout),
		ExportState: s.ExportState.String(),
		UpdatedAt:   s.UpdatedAt,
	}
}

func ToDTOPlayerInfo(p domain.PlayerInfo) carddto.PlayerInfo {
	return carddto.PlayerInfo{
		PlayerName:   p.PlayerName,
		InGameName:   p.InGameName,
		TeamName:     p.TeamName,
		Role:         p.Role,
		ProfileImage: p.ProfileImage,
		Stats: carddto.PlayerStats{
			KD:           p.Stats.KD,
			Matches:      p.Stats.Matches,
			Wins:         p.Stats.Wins,
			HeadshotRate: p.Stats.HeadshotRate,
		},
	}
}

func ToDTOTheme(t domain.CardTheme) carddto.CardTheme {
	return carddto.CardTheme{
		Name:         t.Name,
		BgClass:      t.BgClass,
		TextClass:    t.TextClass,
		StatsBgClass: t.StatsBgClass,
		AccentClass:  t.AccentClass,
	}
}

func ToDTOThemes(list []domain.CardTheme) []carddto.CardTheme {
	out := make([]carddto.CardTheme, 0, len(list))
	for _, t := range list {
		out = append(out, ToDTOTheme(t))
	}
	return out
}

func ToDTORoles(list []domain.RoleOption) []carddto.RoleOption {
	out := make([]carddto.RoleOption, 0, len(list))
	for _, r := range list {
		out = append(out, carddto.RoleOption{Value: r.Value, Label: r.Label})
	}
	return out
}

// ToDTOLayout carries no portrait source; clients already hold the image
// in PlayerInfo.
func ToDTOLayout(l card.Layout) carddto.CardLayout {
	stats := make([]carddto.StatCell, 0, len(l.Stats))
	for _, c := range l.Stats {
		stats = append(stats, carddto.StatCell{Label: c.Label, Value: c.Value})
	}
	return carddto.CardLayout{
		Header:      l.Header.TeamName,
		Label:       l.Header.Label,
		Placeholder: l.Portrait.Placeholder,
		Title:       l.Title,
		Subtitle:    l.Subtitle(),
		Stats:       stats,
		Width:       card.CardWidth,
		Height:      card.CardHeight,
	}
}

func ToDTOToast(t domain.Toast) carddto.Toast {
	return carddto.Toast{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Variant:     string(t.Variant),
		CreatedAt:   t.CreatedAt,
		ExpiresAt:   t.ExpiresAt,
	}
}

func ToDTOToasts(list []domain.Toast) []carddto.Toast {
	out := make([]carddto.Toast, 0, len(list))
	for _, t := range list {
		out = append(out, ToDTOToast(t))
	}
	return out
}

func ToDTOEvent(ev studio.Event) carddto.Event {
	out := carddto.Event{Type: string(ev.Type)}
	if ev.State != nil {
		st := ToDTOState(*ev.State)
		out.State = &st
		out.Version = st.Version
	}
	if ev.Toast != nil {
		t := ToDTOToast(*ev.Toast)
		out.Toast = &t
	}
	return out
}

func ToDTOError(code string, err error) carddto.Event {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return carddto.Event{
		Type:  carddto.EventError,
		Error: &carddto.DomainError{Code: code, Message: msg},
	}
}
