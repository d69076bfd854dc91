package models

// IssueTypes is the closed vocabulary of reportable issue categories,
// shared by the media-analysis gate and the routing resolver.
var IssueTypes = []string{
	"streetlight",
	"pothole",
	"garbage",
	"drainage",
	"water",
	"electricity",
	"noise",
	"others",
}

// IsValidIssueType reports whether t is a member of the fixed issue vocabulary.
func IsValidIssueType(t string) bool {
	for _, it := range IssueTypes {
		if it == t {
			return true
		}
	}
	return false
}
