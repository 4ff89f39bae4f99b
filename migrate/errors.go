package migrate

import "errors"

var (
	// ErrSourceRequired indicates no source store was provided.
	ErrSourceRequired = errors.New("source store is required")

	// ErrDestinationRequired indicates no destination store was provided.
	ErrDestinationRequired = errors.New("destination store is required")
)
