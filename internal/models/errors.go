package models

import "errors"

var (
	// ErrNotFound is returned when a repository root or record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyQuery is returned when a query has no content after cleaning.
	ErrEmptyQuery = errors.New("empty query")

	ErrGuardrailRejected = errors.New("query rejected by guardrail")
	ErrRetrievalFailed   = errors.New("retrieval failed")
	ErrGenerationFailed  = errors.New("generation failed")

	// ErrMissingCredential is returned when the model provider API key is absent.
	ErrMissingCredential = errors.New("missing credential")
)

// EmptyQueryMessage is the answer text shown for ErrEmptyQuery.
const EmptyQueryMessage = "I could not understand that query."
