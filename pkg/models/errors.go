package models

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned by single-object lookups when no row matches the
// identity or effective-date filter.
var ErrNotFound = errors.New("not found")

// IsNotFound reports whether err is a missing-row error from this package
// or from gorm directly.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// notFound maps gorm's record-not-found onto ErrNotFound and passes other
// errors through.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
