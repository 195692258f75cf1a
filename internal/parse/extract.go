// Package parse extracts pull request dependency references from free text.
package parse

import (
	"strconv"

	"github.com/g30r93g/PRereq/internal/models"
	"github.com/g30r93g/PRereq/internal/regex"
)

// Extract finds dependency references in text and reports whether the text
// declares intent to enforce them. Short references are resolved against
// owner and repo. A span consumed by a more specific pattern is masked so a
// looser pattern cannot capture it again.
func Extract(text, owner, repo string) models.Extraction {
	if text == "" {
		return models.Extraction{}
	}

	c := collector{seen: make(map[models.PRRef]struct{})}
	work := []byte(text)

	for _, m := range regex.QualifiedRef.FindAllSubmatchIndex(work, -1) {
		c.add(string(work[m[2]:m[3]]), string(work[m[4]:m[5]]), work[m[6]:m[7]])
		mask(work, m[0], m[1])
	}

	for _, m := range regex.SameOrgRef.FindAllSubmatchIndex(work, -1) {
		c.add(owner, string(work[m[2]:m[3]]), work[m[4]:m[5]])
		mask(work, m[0], m[1])
	}

	for _, m := range regex.SameRepoRef.FindAllSubmatchIndex(work, -1) {
		if m[0] > 0 && regex.IsWordByte(work[m[0]-1]) {
			continue
		}
		c.add(owner, repo, work[m[2]:m[3]])
	}

	return models.Extraction{
		References: c.refs,
		Enforce:    regex.DependencyIntent.MatchString(text),
	}
}

type collector struct {
	seen map[models.PRRef]struct{}
	refs []models.PRRef
}

func (c *collector) add(owner, repo string, digits []byte) {
	n, err := strconv.Atoi(string(digits))
	if err != nil || n <= 0 {
		return
	}
	ref := models.NewPRRef(owner, repo, n)
	if _, ok := c.seen[ref]; ok {
		return
	}
	c.seen[ref] = struct{}{}
	c.refs = append(c.refs, ref)
}

// mask blanks out a consumed span. Spaces keep offsets stable and are not
// word characters, so no new reference can be formed across the span.
func mask(b []byte, start, end int) {
	for i := start; i < end; i++ {
		b[i] = ' '
	}
}
