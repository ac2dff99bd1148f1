package util

import "errors"

var (
	ErrNoExtractableText = errors.New("no extractable text found in PDF")

	ErrNotFound      = errors.New("not found")
	ErrUsernameTaken = errors.New("username already exists")
)
