package enhance

import "errors"

var (
	// ErrInvalidInput is returned for missing or unusable request fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrExtractFailed is returned when no text could be read from the resume.
	ErrExtractFailed = errors.New("resume text extraction failed")
	// ErrRewriteFailed is returned when the rewrite oracle did not answer.
	ErrRewriteFailed = errors.New("resume rewrite failed")
	// ErrMalformedResume is returned when the rewrite answer is not a usable resume document.
	ErrMalformedResume = errors.New("rewrite returned a malformed resume")
	// ErrNotFound is returned for unknown or expired artifacts.
	ErrNotFound = errors.New("enhanced resume not found")
)
