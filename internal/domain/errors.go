package domain

import "errors"

var (
	// ErrEmbeddingUnavailable means the vector source could not be reached.
	// It is fatal to a synthesis run.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	// ErrMalformedSignal rejects a single signal; the run continues without it.
	ErrMalformedSignal = errors.New("malformed signal")
	// ErrGenerationUnavailable means the text generation backend could not be reached.
	ErrGenerationUnavailable = errors.New("generation unavailable")
	ErrInvalidConfig         = errors.New("invalid synthesis config")
)
