package reconcile

import "time"

// Action is what a pass did, or would do under dry-run, with one file.
type Action string

const (
	ActionConverted Action = "converted"
	ActionSkipped   Action = "skipped"
	ActionDeleted   Action = "deleted"
	ActionRetained  Action = "retained"
	ActionFailed    Action = "failed"
)

// Outcome is the result for one source or output file.
type Outcome struct {
	Action Action `json:"action"`
	Source string `json:"source,omitempty"`
	Output string `json:"output,omitempty"`
	Title  string `json:"title,omitempty"`
	Reason string `json:"reason,omitempty"`

	// Content is the generated document, also set under dry-run.
	Content string `json:"-"`
	Err     error  `json:"-"`
}

// Report collects the outcomes of one pass in the order they happened.
type Report struct {
	DryRun   bool      `json:"dry_run"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Outcomes []Outcome `json:"outcomes"`
}

// Count returns the number of outcomes with the given action.
func (r *Report) Count(a Action) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Action == a {
			n++
		}
	}
	return n
}

// Failed returns the failed outcomes.
func (r *Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Action == ActionFailed {
			out = append(out, o)
		}
	}
	return out
}

// Mutations returns the number of writes and deletes the pass performed.
func (r *Report) Mutations() int {
	if r.DryRun {
		return 0
	}
	return r.Count(ActionConverted) + r.Count(ActionDeleted)
}
