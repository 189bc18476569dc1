package domain

import "errors"

// ErrBuildNotFound is returned when the host has no record for a build ID.
var ErrBuildNotFound = errors.New("build not found")

// ErrConditionNotFound is returned when a condition ID cannot be found in the loader.
var ErrConditionNotFound = errors.New("condition not found")
