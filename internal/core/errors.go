package core

import "errors"

var (
	// ErrMalformedMacro is returned when a macro body lacks the reply html
	ErrMalformedMacro = errors.New("malformed macro body")
	// ErrNoChoices is returned when a model response carries no generated text
	ErrNoChoices = errors.New("completion has no choices")
)
