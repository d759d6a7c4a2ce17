package model

import (
	"fmt"
	"time"
)

// Result classifies a verified run.
type Result int

const (
	ResultValid   Result = iota // Output passed verification
	ResultInvalid               // Output failed verification
	ResultFailed                // Algorithm did not produce an output
)

func (r Result) String() string {
	switch r {
	case ResultValid:
		return "VALID_OUTPUT"
	case ResultInvalid:
		return "INVALID_OUTPUT"
	default:
		return "FAILED_TO_RUN"
	}
}

// RunResult classifies how an algorithm run ended.
type RunResult int

const (
	RunOK RunResult = iota
	RunTimeLimitExceeded
	RunException
)

func (r RunResult) String() string {
	switch r {
	case RunTimeLimitExceeded:
		return "TIME_LIMIT_EXCEEDED"
	case RunException:
		return "EXCEPTION"
	default:
		return "OK"
	}
}

// RunInfo describes a single algorithm run.
type RunInfo struct {
	Result  RunResult     `json:"result"`
	Elapsed time.Duration `json:"elapsed"`
	Err     error         `json:"-"`
}

// Verdict is the outcome of checking an output against its instance.
type Verdict struct {
	Result  Result  `json:"result"`
	Comment string  `json:"comment,omitempty"`
	Run     RunInfo `json:"run"`
}

// Valid returns a verdict for an output that passed every check.
func Valid() Verdict {
	return Verdict{Result: ResultValid}
}

// Invalid returns a verdict for an output that failed a check.
func Invalid(format string, args ...any) Verdict {
	return Verdict{Result: ResultInvalid, Comment: fmt.Sprintf(format, args...)}
}

func (v Verdict) String() string {
	return fmt.Sprintf("%s: %s", v.Result, v.Comment)
}
