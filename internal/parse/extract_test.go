package parse

import (
	"testing"

	"github.com/g30r93g/PRereq/internal/models"
	"github.com/stretchr/testify/assert"
)

func ref(owner, repo string, n int) models.PRRef {
	return models.NewPRRef(owner, repo, n)
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantRefs    []models.PRRef
		wantEnforce bool
	}{
		{
			name:     "bare reference resolves against context repository",
			text:     "fixes #7",
			wantRefs: []models.PRRef{ref("acme", "widgets", 7)},
		},
		{
			name:        "qualified references with intent keywords",
			text:        "depends on acme/widgets#3 and needs other/repo#9",
			wantRefs:    []models.PRRef{ref("acme", "widgets", 3), ref("other", "repo", 9)},
			wantEnforce: true,
		},
		{
			name:     "same organization reference resolves against context owner",
			text:     "see gears#12",
			wantRefs: []models.PRRef{ref("acme", "gears", 12)},
		},
		{
			name:        "qualified span is not captured again by looser patterns",
			text:        "Blocked by other/gears#4",
			wantRefs:    []models.PRRef{ref("other", "gears", 4)},
			wantEnforce: true,
		},
		{
			name:     "duplicates collapse on the resolved triple",
			text:     "#5 and acme/widgets#5 and widgets#5",
			wantRefs: []models.PRRef{ref("acme", "widgets", 5)},
		},
		{
			name:     "mixed shapes keep precedence order",
			text:     "#1, gears#2, other/repo#3",
			wantRefs: []models.PRRef{ref("other", "repo", 3), ref("acme", "gears", 2), ref("acme", "widgets", 1)},
		},
		{
			name: "hash glued to a word is not a bare reference",
			text: "colour x#ff and abc_#12x",
		},
		{
			name: "trailing word characters disqualify the number",
			text: "see #12abc",
		},
		{
			name:        "keywords without references still report intent",
			text:        "this needs a review",
			wantEnforce: true,
		},
		{
			name:        "keywords are case insensitive",
			text:        "MERGE FIRST: #8",
			wantRefs:    []models.PRRef{ref("acme", "widgets", 8)},
			wantEnforce: true,
		},
		{
			name:     "numbers beyond 32 bits are kept",
			text:     "after #3000000000",
			wantRefs: []models.PRRef{ref("acme", "widgets", 3000000000)},
		},
		{
			name: "numbers that overflow are ignored",
			text: "see #99999999999999999999",
		},
		{
			name:     "references are case sensitive",
			text:     "Acme/Widgets#2 acme/widgets#2",
			wantRefs: []models.PRRef{ref("Acme", "Widgets", 2), ref("acme", "widgets", 2)},
		},
		{
			name:     "self reference is extracted",
			text:     "requires acme/widgets#10",
			wantRefs: []models.PRRef{ref("acme", "widgets", 10)}, wantEnforce: true,
		},
		{
			name:     "multiline text is scanned as a whole",
			text:     "Title\n\nPrerequisite:\n- other/repo#1\n- #2",
			wantRefs: []models.PRRef{ref("other", "repo", 1), ref("acme", "widgets", 2)}, wantEnforce: true,
		},
		{
			name: "zero is not a valid number",
			text: "#0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text, "acme", "widgets")

			assert.ElementsMatch(t, tt.wantRefs, got.References)
			assert.Equal(t, tt.wantEnforce, got.Enforce)
		})
	}
}

func TestExtract_EmptyText(t *testing.T) {
	got := Extract("", "acme", "widgets")

	assert.Empty(t, got.References)
	assert.False(t, got.Enforce)
}

func TestExtract_Deterministic(t *testing.T) {
	text := "depends on other/repo#9, gears#2 and #4; needs #4 again"

	first := Extract(text, "acme", "widgets")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Extract(text, "acme", "widgets"))
	}
}

func TestExtract_ConcurrentCallsDoNotInterfere(t *testing.T) {
	done := make(chan models.Extraction, 2)
	go func() { done <- Extract("depends on a/b#1", "x", "y") }()
	go func() { done <- Extract("#2", "x", "y") }()

	results := []models.Extraction{<-done, <-done}

	var refs []models.PRRef
	for _, r := range results {
		refs = append(refs, r.References...)
	}
	assert.ElementsMatch(t, []models.PRRef{ref("a", "b", 1), ref("x", "y", 2)}, refs)
}
