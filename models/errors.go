package models

import "errors"

var (
	// ErrNoQuestionsAvailable means the assembler found zero candidates
	// after filtering. The caller should broaden the filters.
	ErrNoQuestionsAvailable = errors.New("no questions available for the selected filters")

	// ErrBankUnavailable means the underlying question store could not be
	// reached. Retryable by the caller.
	ErrBankUnavailable = errors.New("question bank unavailable")

	// ErrSessionNotFound means no in-flight session matches the given id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSectionGeneration marks a single-section synthesis failure. Other
	// sections of the same paper remain usable.
	ErrSectionGeneration = errors.New("section generation failed")

	// ErrPaperYearConflict means a second, distinct paper was submitted
	// for a (subject, year) pair that already has one.
	ErrPaperYearConflict = errors.New("a paper already exists for this subject and year")
)
