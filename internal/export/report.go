package export

import (
	"time"
)

// Level indicates the severity/type of a notice.
type Level int

const (
	LevelInfo Level = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

func (l Level) String() string {
	switch l {
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	default:
		return "info"
	}
}

// Notice is a human-readable message about a run.
type Notice struct {
	Message string
	Level   Level
}

// Output is the outcome of one produced (or failed) file.
type Output struct {
	Collection string   `json:"collection"`
	Sheets     []string `json:"sheets"`
	Format     string   `json:"format"`
	Path       string   `json:"path,omitempty"`
	// Legacy is set when the file came from the legacy print path.
	Legacy bool      `json:"legacy,omitempty"`
	Kind   ErrorKind `json:"-"`
	Error  string    `json:"error,omitempty"`
}

// OK reports whether the output was produced.
func (o Output) OK() bool {
	return o.Error == ""
}

// Report summarizes a run.
type Report struct {
	RunID    string    `json:"run_id"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Outputs  []Output  `json:"outputs"`
	// Skipped lists collections the plan does not export.
	Skipped []string `json:"skipped,omitempty"`
	// Failed lists collections that failed as a whole.
	Failed []string `json:"failed,omitempty"`
}

// Succeeded returns the number of produced files.
func (r *Report) Succeeded() int {
	n := 0
	for _, o := range r.Outputs {
		if o.OK() {
			n++
		}
	}
	return n
}

// Failures returns the outputs that failed.
func (r *Report) Failures() []Output {
	var out []Output
	for _, o := range r.Outputs {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}
