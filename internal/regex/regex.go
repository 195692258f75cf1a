package regex

import "regexp"

var (
	// Dependency reference patterns, most specific first.
	QualifiedRef = regexp.MustCompile(`\b([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)#(\d+)\b`) // owner/repo#123
	SameOrgRef   = regexp.MustCompile(`\b([A-Za-z0-9_.-]+)#(\d+)\b`)                   // repo#123
	SameRepoRef  = regexp.MustCompile(`#(\d+)\b`)                                      // #123, caller checks the preceding byte

	// Enforcement intent keywords
	DependencyIntent = regexp.MustCompile(`(?i)(depends on|blocked by|requires|needs|prerequisite|merge first)`)
)

// IsWordByte reports whether b belongs to the \w class.
func IsWordByte(b byte) bool {
	return b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}
