package core

// Scope restricts what part of the data a caller may see or write.
// A founder is Unrestricted; every other role is pinned to CampusID.
type Scope struct {
	CampusID     string
	Unrestricted bool
}

// Campus returns the campus a filter or a write must use: the requested one
// when the scope is unrestricted, the scope's own campus otherwise.
func (s Scope) Campus(requested string) string {
	if s.Unrestricted {
		return requested
	}
	return s.CampusID
}

// Allows reports whether a record belonging to campusID is visible.
func (s Scope) Allows(campusID string) bool {
	return s.Unrestricted || s.CampusID == campusID
}
