package models

import (
	"errors"
	"fmt"
)

// Error categories. Every error surfaced by the interview flow wraps one of these.
var (
	ErrValidation          = errors.New("validation error")
	ErrState               = errors.New("invalid session state")
	ErrNotFound            = errors.New("not found")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

var (
	ErrEmptyAnswer       = fmt.Errorf("%w: answer must not be empty", ErrValidation)
	ErrEmptyRole         = fmt.Errorf("%w: role is required", ErrValidation)
	ErrInvalidCount      = fmt.Errorf("%w: question count must be positive", ErrValidation)
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported file format, only PDF and DOCX are accepted", ErrValidation)
	ErrFileTooLarge      = fmt.Errorf("%w: file too large", ErrValidation)
	ErrEmptyDocument     = fmt.Errorf("%w: no text content found in document", ErrValidation)
	ErrNoQuestions       = fmt.Errorf("%w: no questions could be generated", ErrValidation)

	ErrOutOfRange           = fmt.Errorf("%w: no current question, interview is complete", ErrState)
	ErrSessionComplete      = fmt.Errorf("%w: interview is already complete", ErrState)
	ErrSubmissionInProgress = fmt.Errorf("%w: another answer for this session is being evaluated", ErrState)
	ErrStaleSubmission      = fmt.Errorf("%w: answer does not match the current question", ErrState)
	ErrIncompleteSession    = fmt.Errorf("%w: interview is not complete yet", ErrState)
	ErrNoEvaluations        = fmt.Errorf("%w: no evaluations recorded", ErrState)

	ErrSessionNotFound = fmt.Errorf("%w: session", ErrNotFound)
)
