package models

type Conclusion string

const (
	ConclusionSuccess Conclusion = "success"
	ConclusionFailure Conclusion = "failure"
	ConclusionNeutral Conclusion = "neutral"
)

type (
	// Verdict is the outcome of one evaluation. It is never persisted.
	Verdict struct {
		Conclusion Conclusion
		Title      string
		Summary    string
	}

	// CheckRun is a verdict addressed to a commit.
	CheckRun struct {
		Ref     PRRef
		HeadSHA string
		Name    string
		Verdict Verdict
	}
)
