package app

import "errors"

var (
	// ErrInvalidInput is bad or missing caller input (maps to 400).
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoContent means PDF extraction produced no usable text.
	ErrNoContent = errors.New("no text content could be extracted from the document")
	// ErrEmbeddingFailed wraps embedding collaborator failures.
	ErrEmbeddingFailed = errors.New("embedding failed")
	// ErrGenerationFailed wraps generative model failures.
	ErrGenerationFailed = errors.New("answer generation failed")
)
