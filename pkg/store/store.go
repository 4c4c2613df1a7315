// Package store holds errors shared by the blob and evidence stores.
package store

import (
	"errors"
)

var (
	ErrNotFound = errors.New("not found")
)
