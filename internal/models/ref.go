package models

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// PRRef identifies one pull request (or issue-like item) in one repository.
// It is comparable and used directly as a map key and graph vertex.
type PRRef struct {
	Owner  string
	Repo   string
	Number int
}

func NewPRRef(owner, repo string, number int) PRRef {
	return PRRef{Owner: owner, Repo: repo, Number: number}
}

// String renders the reference as owner/repo#number.
func (r PRRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

// ParsePRRef parses the owner/repo#number form produced by String.
func ParsePRRef(s string) (PRRef, error) {
	s = strings.TrimSpace(s)
	full, num, ok := strings.Cut(s, "#")
	if !ok {
		return PRRef{}, fmt.Errorf("invalid reference %q: missing '#'", s)
	}
	owner, repo, ok := strings.Cut(full, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return PRRef{}, fmt.Errorf("invalid reference %q: expected owner/repo#number", s)
	}
	n, err := strconv.Atoi(num)
	if err != nil || n <= 0 {
		return PRRef{}, fmt.Errorf("invalid reference %q: number must be a positive integer", s)
	}
	return PRRef{Owner: owner, Repo: repo, Number: n}, nil
}

// ComparePRRef orders references by owner, repo and number.
func ComparePRRef(a, b PRRef) int {
	if c := cmp.Compare(a.Owner, b.Owner); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Repo, b.Repo); c != 0 {
		return c
	}
	return cmp.Compare(a.Number, b.Number)
}

// Edge is a directed "depends on" relation: Dependent depends on Dependency.
type Edge struct {
	Dependent  PRRef
	Dependency PRRef
}

// FormatChain joins references with arrows, e.g. a/b#1 → a/b#2 → a/b#1.
func FormatChain(refs []PRRef) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = r.String()
	}
	return strings.Join(parts, " → ")
}
