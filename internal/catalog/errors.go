package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrFetchFailure = errors.New("catalog fetch failed")
	ErrNotFound     = errors.New("not found")
)

// FetchError reports a failed store call for one view.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetchFailure }
