package hostui

import (
	"errors"

	"github.com/beachspainc/hostui/lib/encoding"
)

// Encoder is an alias for encoding.Encoder for convenience.
type Encoder = encoding.Encoder

// NewEncoder creates a new encoder with the given key.
func NewEncoder(key []byte) (*Encoder, error) {
	return encoding.NewEncoder(key)
}

// wrapEncodingError maps encoding package errors onto hostui sentinels.
func wrapEncodingError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, encoding.ErrInvalidFormat) {
		return ErrInvalidFormat
	}
	if errors.Is(err, encoding.ErrSignatureInvalid) {
		return ErrSignatureInvalid
	}
	if errors.Is(err, encoding.ErrDecryptFailed) {
		return ErrDecryptFailed
	}
	return err
}
