// Package routing maps an issue category to the authority responsible for
// acting on it. The mapping is a pure, ordered rule table with no side
// effects, safe to evaluate any number of times.
package routing

import "strings"

// rule maps issue-type keywords to an authority. First matching rule wins.
type rule struct {
	keywords  []string
	authority string
}

// Rules are evaluated in order with case-insensitive substring matching on
// the issue-type token.
var rules = []rule{
	{[]string{"electric"}, "Electricity Department"},
	{[]string{"water", "drain"}, "Water Supply & Sewerage Department"},
	{[]string{"garbage"}, "Municipal Sanitation Department"},
	{[]string{"pothole", "road"}, "Public Works Department"},
	{[]string{"streetlight"}, "Municipal Lighting Division"},
	{[]string{"transport"}, "Transport Department"},
	{[]string{"noise"}, "Pollution Control Board & Police"},
}

// Resolve returns the authority responsible for the given issue type, or
// ok=false when no rule matches and the complaint stays unassigned for
// manual triage.
func Resolve(issueType string) (authority string, ok bool) {
	token := strings.ToLower(issueType)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(token, kw) {
				return r.authority, true
			}
		}
	}
	return "", false
}
