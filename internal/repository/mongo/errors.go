package repository

import "errors"

var (
	ErrNotFound = errors.New("document not found")

	// ErrDuplicate maps Mongo duplicate-key failures on unique indexes
	// (uid, username, slug, tokenSeriesId, transactionHash).
	ErrDuplicate = errors.New("duplicate key")
)
