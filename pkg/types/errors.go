package types

import "errors"

// Domain errors for type validation
var (
	// Search result errors
	ErrMissingURL      = errors.New("search result URL is required")
	ErrMissingProvider = errors.New("search result provider id is required")

	// Knowledge hit errors
	ErrMissingDocumentID = errors.New("document id is required")
	ErrInvalidScore      = errors.New("similarity score must be between 0 and 1")
)
