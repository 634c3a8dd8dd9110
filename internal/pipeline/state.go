package pipeline

// State is a dispatcher state. Terminal states end a run.
type State string

const (
	StateIdle           State = "idle"
	StateAnalyzing      State = "analyzing"
	StateSkipped        State = "skipped"
	StateAnalysisFailed State = "analysis_failed"
	StateRendering      State = "rendering"
	StateRenderFailed   State = "render_failed"
	StateComposing      State = "composing"
	StatePreviewed      State = "previewed"
	StatePosting        State = "posting"
	StatePosted         State = "posted"
	StatePostFailed     State = "post_failed"
)

// Failed reports whether s is one of the failure terminal states.
func (s State) Failed() bool {
	switch s {
	case StateAnalysisFailed, StateRenderFailed, StatePostFailed:
		return true
	}
	return false
}

// Terminal reports whether a run in state s is finished.
func (s State) Terminal() bool {
	switch s {
	case StateSkipped, StatePreviewed, StatePosted:
		return true
	}
	return s.Failed()
}
