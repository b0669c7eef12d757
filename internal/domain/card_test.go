package domain

import (
	"errors"
	"testing"
)

func TestWithReplacesExactlyOneField(t *testing.T) {
	base := DefaultPlayerInfo()
	base.ProfileImage = "data:image/png;base64,AAAA"

	for _, f := range Fields() {
		next, err := base.With(f, "edited")
		if err != nil {
			t.Fatalf("With(%s): %v", f, err)
		}
		got, _ := next.Value(f)
		if got != "edited" {
			t.Fatalf("field %s not replaced: %q", f, got)
		}
		for _, other := range Fields() {
			if other == f {
				continue
			}
			want, _ := base.Value(other)
			have, _ := next.Value(other)
			if want != have {
				t.Fatalf("editing %s changed %s: %q -> %q", f, other, want, have)
			}
		}
		if next.ProfileImage != base.ProfileImage {
			t.Fatalf("editing %s changed profile image", f)
		}
	}
}

func TestWithUnknownField(t *testing.T) {
	base := DefaultPlayerInfo()
	next, err := base.With(Field("nickname"), "x")
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if next != base {
		t.Fatalf("snapshot changed on unknown field")
	}
}

func TestStatFieldsMergeIntoStats(t *testing.T) {
	next, err := DefaultPlayerInfo().With(FieldHeadshotRate, "51%")
	if err != nil {
		t.Fatalf("With: %v", err)
	}
	if next.Stats.HeadshotRate != "51%" || next.Stats.KD != "2.8" {
		t.Fatalf("unexpected stats: %+v", next.Stats)
	}
	if !FieldKD.IsStat() || FieldTeamName.IsStat() {
		t.Fatalf("IsStat misclassified")
	}
}

func TestParseField(t *testing.T) {
	if f, err := ParseField(" kd "); err != nil || f != FieldKD {
		t.Fatalf("ParseField kd: %v %v", f, err)
	}
	if _, err := ParseField("KD"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("field names are case-sensitive, got %v", err)
	}
}

func TestThemeCatalog(t *testing.T) {
	list := Themes()
	if len(list) != 5 {
		t.Fatalf("expected 5 presets, got %d", len(list))
	}
	names := []string{"Dark", "Light", "Fire", "Ice", "Toxic"}
	for i, name := range names {
		if list[i].Name != name {
			t.Fatalf("preset %d: want %s got %s", i, name, list[i].Name)
		}
		got, ok := ThemeByName(name)
		if !ok || got != list[i] {
			t.Fatalf("ThemeByName(%s) mismatch", name)
		}
	}
	if _, ok := ThemeByName("Neon"); ok {
		t.Fatalf("unknown theme resolved")
	}
	if _, ok := ThemeByName("dark"); ok {
		t.Fatalf("theme lookup must be exact")
	}
	if DefaultTheme().Name != "Dark" || DefaultTheme().Palette.Gradient() {
		t.Fatalf("default theme should be solid Dark")
	}
	fire, _ := ThemeByName("Fire")
	if !fire.Palette.Gradient() {
		t.Fatalf("Fire should be a gradient")
	}
}

func TestThemesReturnsCopy(t *testing.T) {
	list := Themes()
	list[0].Name = "Mutated"
	if DefaultTheme().Name != "Dark" {
		t.Fatalf("catalog mutated through Themes()")
	}
}

func TestLookupRole(t *testing.T) {
	if r, ok := LookupRole("sniper"); !ok || r != RoleSniper {
		t.Fatalf("LookupRole sniper: %q %v", r, ok)
	}
	if _, ok := LookupRole("Medic"); ok {
		t.Fatalf("unexpected role match")
	}
	if len(Roles()) != 5 {
		t.Fatalf("expected 5 roles")
	}
}
