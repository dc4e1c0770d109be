package pipeline

import "fmt"

// Stage is the position of a run in the processing lifecycle.
type Stage string

const (
	StageIdle              Stage = "IDLE"
	StageFileSelected      Stage = "FILE_SELECTED"
	StageParsed            Stage = "PARSED"
	StageHeaderLocated     Stage = "HEADER_LOCATED"
	StageGratuityCollected Stage = "GRATUITY_COLLECTED"
	StageReportWritten     Stage = "REPORT_WRITTEN"
	StageError             Stage = "ERROR"
)

// transitions lists the stages reachable from each stage. Every non-terminal
// stage may also fall to StageError.
var transitions = map[Stage][]Stage{
	StageIdle:              {StageFileSelected},
	StageFileSelected:      {StageParsed},
	StageParsed:            {StageHeaderLocated},
	StageHeaderLocated:     {StageGratuityCollected},
	StageGratuityCollected: {StageReportWritten},
}

var terminalStages = map[Stage]bool{
	StageReportWritten: true,
	StageError:         true,
}

// IsTerminal returns true if no further transitions are allowed.
func (s Stage) IsTerminal() bool {
	return terminalStages[s]
}

// IsValid returns true if s is a known stage.
func (s Stage) IsValid() bool {
	_, ok := transitions[s]
	return ok || terminalStages[s]
}

// String returns the string representation of the stage
func (s Stage) String() string {
	return string(s)
}

// CanTransition reports whether a run in stage s may move to next.
func (s Stage) CanTransition(next Stage) bool {
	if s.IsTerminal() || !s.IsValid() {
		return false
	}
	if next == StageError {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// tracker records the stages a single run passes through.
type tracker struct {
	current Stage
	history []Stage
}

func newTracker() *tracker {
	return &tracker{current: StageIdle, history: []Stage{StageIdle}}
}

// advance moves the run to next.
func (t *tracker) advance(next Stage) error {
	if !t.current.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.current, next)
	}
	t.current = next
	t.history = append(t.history, next)
	return nil
}
