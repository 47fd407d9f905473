package hostui

import "errors"

// Sentinel errors for component operations.
var (
	ErrConfiguration    = errors.New("hostui: no markup source configured")
	ErrElementNotFound  = errors.New("hostui: root element not found")
	ErrNotLoaded        = errors.New("hostui: component not loaded")
	ErrNotMounted       = errors.New("hostui: component not mounted")
	ErrNotComponent     = errors.New("hostui: value is not a component")
	ErrChildOwned       = errors.New("hostui: child already has a parent")
	ErrCycle            = errors.New("hostui: child is an ancestor of its parent")
	ErrNetwork          = errors.New("hostui: markup fetch failed")
	ErrParentNotFound   = errors.New("hostui: parent element not found")
	ErrDestroyed        = errors.New("hostui: component destroyed")
	ErrNoEncoder        = errors.New("hostui: host has no state encoder")
	ErrUnknownWidget    = errors.New("hostui: unknown widget")
	ErrDecryptFailed    = errors.New("hostui: state decryption failed")
	ErrSignatureInvalid = errors.New("hostui: state signature verification failed")
	ErrInvalidFormat    = errors.New("hostui: invalid state format")
)

// IsLifecycleError reports whether err came from calling a lifecycle
// method out of order.
func IsLifecycleError(err error) bool {
	return errors.Is(err, ErrNotLoaded) || errors.Is(err, ErrNotMounted) || errors.Is(err, ErrDestroyed)
}

// IsNetworkError checks if err is a markup fetch failure.
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsDecryptionError checks if err is a decryption or signature error.
func IsDecryptionError(err error) bool {
	return errors.Is(err, ErrDecryptFailed) || errors.Is(err, ErrSignatureInvalid)
}
