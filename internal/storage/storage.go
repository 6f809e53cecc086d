package storage

import "errors"

var (
	ErrAlreadyExists     = errors.New("record already exists")
	ErrNotFound          = errors.New("record does not found")
	ErrReferenceNotFound = errors.New("referenced record does not found")
)
