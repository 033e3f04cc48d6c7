package series

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable matches any failure to open or read the sample resource.
	ErrSourceUnavailable = errors.New("sample source unavailable")
	// ErrEmptyDataset matches a reachable resource that yielded no valid samples.
	ErrEmptyDataset = errors.New("no valid samples")
)

// SourceUnavailableError reports that the resource could not be fetched or read.
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() []error { return []error{ErrSourceUnavailable, e.Err} }

// EmptyDatasetError reports that every line was blank or malformed.
type EmptyDatasetError struct {
	Source  string
	Lines   int // non-blank lines seen
	Dropped int
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("%s: no valid samples (%d non-blank lines, %d dropped)", e.Source, e.Lines, e.Dropped)
}

func (e *EmptyDatasetError) Unwrap() error { return ErrEmptyDataset }

// ParseWarning describes one dropped line. It is recoverable and never aborts a load.
type ParseWarning struct {
	Line int // 1-based physical line number
	Text string
	Err  error
}

func (w ParseWarning) String() string {
	text := w.Text
	if len(text) > 120 {
		text = text[:117] + "..."
	}
	return fmt.Sprintf("line %d: %v (%q)", w.Line, w.Err, text)
}
