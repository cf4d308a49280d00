package shell

import (
	"fmt"
	"time"
)

// Result is the outcome of one command
type Result struct {
	Output   string        `json:"output"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
	Effect   *Effect       `json:"effect,omitempty"`
}

// Success reports a zero exit code
func (r Result) Success() bool {
	return r.ExitCode == 0
}

func ok(output string) Result {
	return Result{Output: output}
}

func okWith(output string, effect *Effect) Result {
	return Result{Output: output, Effect: effect}
}

func fail(format string, args ...interface{}) Result {
	return Result{Output: fmt.Sprintf(format, args...), ExitCode: 1}
}

// report accumulates per-operand output for commands that keep going after a
// failure (rm a b c). Any error line makes the exit code 1.
type report struct {
	lines  []string
	failed bool
}

func (r *report) add(line string) {
	r.lines = append(r.lines, line)
}

func (r *report) errorf(format string, args ...interface{}) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
	r.failed = true
}

func (r *report) result() Result {
	res := ok(joinLines(r.lines))
	if r.failed {
		res.ExitCode = 1
	}
	return res
}
