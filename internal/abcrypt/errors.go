package abcrypt

import "errors"

var (
	// ErrEmptyKeystream is returned when decryption is attempted with a
	// zero-length keystream, which would otherwise index modulo zero.
	ErrEmptyKeystream = errors.New("empty keystream")
	// ErrInvalidKeyLength is returned when the database base key is
	// shorter than the 13 bytes the XOR schedule cycles over.
	ErrInvalidKeyLength = errors.New("invalid base key length")
)
