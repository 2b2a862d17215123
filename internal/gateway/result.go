package gateway

// Outcome tags how a gateway call resolved
type Outcome string

const (
	Succeeded           Outcome = "succeeded"
	SkippedNoCredential Outcome = "skipped_no_credential"
	SkippedInput        Outcome = "skipped_input"
	Failed              Outcome = "failed"
	QuotaExceeded       Outcome = "quota_exceeded"
)

// Result carries a value or the documented default plus the reason it was
// used. Gateway calls never return bare errors.
type Result[T any] struct {
	Value   T
	Outcome Outcome
	Err     error
}

// OK reports whether the value came from the model
func (r Result[T]) OK() bool {
	return r.Outcome == Succeeded
}

// Reason is a loggable description of the error, if any
func (r Result[T]) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

func success[T any](v T) Result[T] {
	return Result[T]{Value: v, Outcome: Succeeded}
}

func fallback[T any](def T, outcome Outcome, err error) Result[T] {
	return Result[T]{Value: def, Outcome: outcome, Err: err}
}
