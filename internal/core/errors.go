package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	ErrDataSourceNotFound   = errors.New("data source not found")
	ErrDataSourceUnreadable = errors.New("data source unreadable")
	ErrUnknownPage          = errors.New("unknown page")
	ErrRowNotFound          = errors.New("row not found")
	ErrNoDataSources        = errors.New("no data sources loaded")
)

// ErrorKind classifies a SourceError.
type ErrorKind string

const (
	KindSourceNotFound   ErrorKind = "data_source_not_found"
	KindSourceUnreadable ErrorKind = "data_source_unreadable"
	KindUnknownPage      ErrorKind = "unknown_page"
	KindRowNotFound      ErrorKind = "row_not_found"
)

var kindSentinels = map[ErrorKind]error{
	KindSourceNotFound:   ErrDataSourceNotFound,
	KindSourceUnreadable: ErrDataSourceUnreadable,
	KindUnknownPage:      ErrUnknownPage,
	KindRowNotFound:      ErrRowNotFound,
}

// SourceError reports a failure tied to one data source, identified as
// "page/tab".
type SourceError struct {
	Kind   ErrorKind
	Source string
	Err    error
}

// NewSourceError wraps err with a kind and source identifier.
func NewSourceError(kind ErrorKind, source string, err error) *SourceError {
	return &SourceError{Kind: kind, Source: source, Err: err}
}

func (e *SourceError) Error() string {
	label := string(e.Kind)
	if sentinel, ok := kindSentinels[e.Kind]; ok {
		label = sentinel.Error()
	}
	msg := fmt.Sprintf("%s: %s", label, e.Source)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *SourceError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}
