package pipeline

import "fmt"

// UnreadableInputError reports input the run cannot proceed without: a
// level that fails to load or validate, or a texture directory that cannot
// be read. The run aborts before producing any output.
type UnreadableInputError struct {
	// Source names the offending input, usually a path.
	Source string
	Err    error
}

func (e *UnreadableInputError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("unreadable input: %v", e.Err)
	}
	return fmt.Sprintf("unreadable input %s: %v", e.Source, e.Err)
}

func (e *UnreadableInputError) Unwrap() error {
	return e.Err
}
