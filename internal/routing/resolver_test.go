package routing_test

import (
	"testing"

	"nagarseva/backend/internal/models"
	"nagarseva/backend/internal/routing"

	"github.com/stretchr/testify/assert"
)

// TestResolveKnownIssueTypes verifies the authority mapping for the full
// issue vocabulary.
func TestResolveKnownIssueTypes(t *testing.T) {
	cases := []struct {
		issueType string
		authority string
		routed    bool
	}{
		{"electricity", "Electricity Department", true},
		{"water", "Water Supply & Sewerage Department", true},
		{"drainage", "Water Supply & Sewerage Department", true},
		{"garbage", "Municipal Sanitation Department", true},
		{"pothole", "Public Works Department", true},
		{"streetlight", "Municipal Lighting Division", true},
		{"noise", "Pollution Control Board & Police", true},
		{"others", "", false},
	}

	for _, tc := range cases {
		authority, ok := routing.Resolve(tc.issueType)
		assert.Equal(t, tc.routed, ok, "issue type %q", tc.issueType)
		assert.Equal(t, tc.authority, authority, "issue type %q", tc.issueType)
	}
}

// TestResolveIsCaseInsensitive checks matching on mixed-case tokens.
func TestResolveIsCaseInsensitive(t *testing.T) {
	authority, ok := routing.Resolve("Electricity")
	assert.True(t, ok)
	assert.Equal(t, "Electricity Department", authority)

	authority, ok = routing.Resolve("STREETLIGHT")
	assert.True(t, ok)
	assert.Equal(t, "Municipal Lighting Division", authority)
}

// TestResolveSubstringMatching verifies that related tokens hit the same
// rule ("road" and "pothole" both belong to public works).
func TestResolveSubstringMatching(t *testing.T) {
	authority, ok := routing.Resolve("road")
	assert.True(t, ok)
	assert.Equal(t, "Public Works Department", authority)
}

// TestResolveIdempotent calls Resolve twice for every issue type in the
// vocabulary and expects identical results.
func TestResolveIdempotent(t *testing.T) {
	for _, issueType := range models.IssueTypes {
		first, firstOK := routing.Resolve(issueType)
		second, secondOK := routing.Resolve(issueType)
		assert.Equal(t, first, second, "issue type %q", issueType)
		assert.Equal(t, firstOK, secondOK, "issue type %q", issueType)
	}
}

// TestResolveUnknownTokens leaves unmatched categories unassigned.
func TestResolveUnknownTokens(t *testing.T) {
	for _, token := range []string{"", "others", "miscellaneous"} {
		authority, ok := routing.Resolve(token)
		assert.False(t, ok, "token %q", token)
		assert.Empty(t, authority, "token %q", token)
	}
}
