package models

type (
	// PullRequest is the input of one evaluation.
	PullRequest struct {
		Ref     PRRef
		Title   string
		Body    string
		Labels  []string
		HeadSHA string
		State   string
		Draft   bool
		Merged  bool
	}

	// Extraction is the result of parsing a pull request description.
	Extraction struct {
		References []PRRef
		Enforce    bool
	}
)

// Text returns the text scanned for dependency references.
func (pr PullRequest) Text() string {
	return pr.Title + "\n" + pr.Body
}

// DepStatus is the resolved state of a declared dependency.
type DepStatus string

const (
	StatusMerged  DepStatus = "merged"
	StatusOpen    DepStatus = "open"
	StatusClosed  DepStatus = "closed"
	StatusDraft   DepStatus = "draft"
	StatusUnknown DepStatus = "unknown"
)

// CycleKind tells apart the terminal states of a cycle search.
type CycleKind int

const (
	CycleNone CycleKind = iota
	CycleFound
	// CycleBudgetExceeded means the exploration budget ran out before the
	// traversal finished. It is not a proven cycle.
	CycleBudgetExceeded
)

func (k CycleKind) String() string {
	switch k {
	case CycleNone:
		return "none"
	case CycleFound:
		return "cycle"
	case CycleBudgetExceeded:
		return "budget_exceeded"
	default:
		return "unknown"
	}
}

type CycleResult struct {
	Kind CycleKind
	// Path runs from the cycle entry back to itself, inclusive. On budget
	// exhaustion it holds the partial path explored followed by the start node.
	Path []PRRef
}

func (c CycleResult) HasCycle() bool {
	return c.Kind == CycleFound
}
