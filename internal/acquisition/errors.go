package acquisition

import "fmt"

// ObjectNotFoundError means a task did not match exactly one object under its prefix.
type ObjectNotFoundError struct {
	Prefix  string
	Pattern string
	Matches []string
}

func (e *ObjectNotFoundError) Error() string {
	if len(e.Matches) == 0 {
		return fmt.Sprintf("no object under %s matches %s", e.Prefix, e.Pattern)
	}
	return fmt.Sprintf("%d objects under %s match %s, expected one", len(e.Matches), e.Prefix, e.Pattern)
}

// FetchFailure is the final error of a task that used up its retries.
type FetchFailure struct {
	Task     Task
	Attempts int
	Err      error
}

func (e *FetchFailure) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Task, e.Attempts, e.Err)
}

func (e *FetchFailure) Unwrap() error { return e.Err }
