package moodle

import "errors"

// ErrCategory signals a Moodle category marker: a folder node in the
// authoring tool, not a real question. Callers skip it without
// counting it as a failure.
var ErrCategory = errors.New("category node")

// MissingTypeError: a non-category node carries no type field at all.
type MissingTypeError struct{}

func (*MissingTypeError) Error() string { return "question type is missing or undefined" }

// UnsupportedTypeError names the original, non-normalized type string
// so the trainer can see exactly what the file contained.
type UnsupportedTypeError struct{ Type string }

func (e *UnsupportedTypeError) Error() string { return "unsupported question type: " + e.Type }

// NoAnswersError: a multiple-choice question with an empty answer list.
type NoAnswersError struct{}

func (*NoAnswersError) Error() string { return "no answers found for multiple choice question" }

// MalformedXMLError is fatal to the whole file: either the document
// does not parse under any decoder configuration, or no question
// collection exists under the known root shapes.
type MalformedXMLError struct {
	Reason string
	Err    error
}

func (e *MalformedXMLError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return "failed to parse XML: " + e.Err.Error()
}

func (e *MalformedXMLError) Unwrap() error { return e.Err }
