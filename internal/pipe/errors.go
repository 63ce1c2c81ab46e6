package pipe

import "errors"

var (
	// ErrDuplicateProvider is returned by Provide when the pipe already has a
	// source and replacement was not requested.
	ErrDuplicateProvider = errors.New("pipe already has a provider")

	// ErrNoProvider is returned by Request when nothing provides the pipe.
	ErrNoProvider = errors.New("pipe has no provider")
)
