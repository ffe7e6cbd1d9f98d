package config

import "errors"

var (
	// ErrInvalidArgument is returned when a lookup is attempted with an empty property name.
	ErrInvalidArgument = errors.New("property name must not be empty")
	// ErrNumberFormat is returned when a configured value cannot be parsed as a base-10 integer.
	ErrNumberFormat = errors.New("invalid number format")
	// ErrUnknownEncoding is returned when the resolved text encoding has no known decoder.
	ErrUnknownEncoding = errors.New("unknown text encoding")
	// ErrUnsupportedScheme is returned when a configuration source uses a scheme the opener cannot read.
	ErrUnsupportedScheme = errors.New("unsupported configuration source scheme")
	// ErrSourceUnavailable is returned when a remote configuration source answers with a non-success status.
	ErrSourceUnavailable = errors.New("configuration source unavailable")
)
