package domain

import "strings"

const (
	RoleIGL     = "IGL"
	RoleFragger = "Fragger"
	RoleSupport = "Support"
	RoleSniper  = "Sniper"
	RoleLurker  = "Lurker"
)

// RoleOption is one entry of the role selector.
type RoleOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var roles = []RoleOption{
	{Value: RoleIGL, Label: "IGL (In-Game Leader)"},
	{Value: RoleFragger, Label: "Fragger"},
	{Value: RoleSupport, Label: "Support"},
	{Value: RoleSniper, Label: "Sniper"},
	{Value: RoleLurker, Label: "Lurker"},
}

func Roles() []RoleOption {
	return append([]RoleOption(nil), roles...)
}

// LookupRole matches a selector value case-insensitively and returns the
// canonical spelling.
func LookupRole(value string) (string, bool) {
	v := strings.TrimSpace(value)
	for _, r := range roles {
		if strings.EqualFold(r.Value, v) {
			return r.Value, true
		}
	}
	return "", false
}
