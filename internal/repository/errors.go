package repository

import "errors"

var (
	ErrNotFound  = errors.New("record not found")
	ErrNoStock   = errors.New("room has no stock left")
	ErrDuplicate = errors.New("record already exists")
)
