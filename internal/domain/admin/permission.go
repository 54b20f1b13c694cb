package admin

import (
	"fmt"
	"sort"
	"strings"
)

// Permission names one manageable content area of the back-office.
type Permission string

// Permission constants. This set is closed: screens and handlers must use these
// values rather than raw strings.
const (
	PermSpeakers      Permission = "speakers"
	PermSchedule      Permission = "schedule"
	PermSponsors      Permission = "sponsors"
	PermRegistrations Permission = "registrations"
	PermPitches       Permission = "pitches"
	PermNewsletter    Permission = "newsletter"
)

// AllPermissions lists every permission in display order.
var AllPermissions = []Permission{
	PermSpeakers,
	PermSchedule,
	PermSponsors,
	PermRegistrations,
	PermPitches,
	PermNewsletter,
}

// ParsePermission converts a stored or user-supplied tag into a Permission.
func ParsePermission(s string) (Permission, error) {
	p := Permission(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllPermissions {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown permission %q", s)
}

// ParsePermissions parses a comma-separated list, ignoring blanks and duplicates.
// The result is sorted so equal sets compare equal.
func ParsePermissions(csv string) ([]Permission, error) {
	seen := make(map[Permission]bool)
	var out []Permission
	for _, part := range strings.Split(csv, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		p, err := ParsePermission(part)
		if err != nil {
			return nil, err
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// JoinPermissions renders permissions as the comma-separated storage form.
func JoinPermissions(perms []Permission) string {
	parts := make([]string, len(perms))
	for i, p := range perms {
		parts[i] = string(p)
	}
	return strings.Join(parts, ",")
}
