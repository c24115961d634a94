package model

import (
	"errors"
	"fmt"
)

var (
	// ErrStructural marks input whose shape does not match the expected layout. Fatal.
	ErrStructural = errors.New("structural error")
	// ErrWrite marks a failure to publish the fact table. Fatal; the prior version stays visible.
	ErrWrite = errors.New("write error")
	// ErrLocked is returned when another run holds the output lock
	ErrLocked = errors.New("output is locked by another run")
	// ErrNoTable is returned by readers when no version has been published yet
	ErrNoTable = errors.New("no fact table version published")
)

// StructuralError reports an input file that cannot be interpreted at all
type StructuralError struct {
	Source string
	Reason string
	Err    error
}

func (e *StructuralError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", ErrStructural, e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", ErrStructural, e.Source, e.Reason)
}

func (e *StructuralError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrStructural, e.Err}
	}
	return []error{ErrStructural}
}

// RowDataError describes one dropped row or cell. It is never returned from a run;
// it is counted into DropCounts and logged.
type RowDataError struct {
	Source  string
	Line    int
	Country string
	Year    int
	Reason  DropReason
	Value   string
}

func (e *RowDataError) Error() string {
	msg := fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Reason)
	if e.Country != "" {
		msg += fmt.Sprintf(" country=%q", e.Country)
	}
	if e.Year != 0 {
		msg += fmt.Sprintf(" year=%d", e.Year)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(" value=%q", e.Value)
	}
	return msg
}

// WriteError wraps a failed filesystem operation while publishing the fact table
type WriteError struct {
	Op   string
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrWrite, e.Op, e.Path, e.Err)
}

func (e *WriteError) Unwrap() []error {
	return []error{ErrWrite, e.Err}
}
