package entities

// Principal is the authenticated identity resolved from a session.
type Principal struct {
	UserID       string   `json:"user_id"`
	MobileNumber string   `json:"mobile_number"`
	Roles        []string `json:"roles"`
}

// HasAnyRole reports whether the principal holds at least one of the
// required role names. An empty requirement set means any authenticated
// principal qualifies.
func (p Principal) HasAnyRole(required ...string) bool {
	if len(required) == 0 {
		return true
	}
	held := make(map[string]struct{}, len(p.Roles))
	for _, name := range p.Roles {
		held[name] = struct{}{}
	}
	for _, name := range required {
		if _, ok := held[name]; ok {
			return true
		}
	}
	return false
}
