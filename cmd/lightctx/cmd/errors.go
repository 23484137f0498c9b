package cmd

import (
	"github.com/pkg/errors"
)

// ErrSerialization is returned when an input or output file cannot be read,
// written or decoded.
var ErrSerialization = errors.New("serialization failure")
