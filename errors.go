package shadows

import "errors"

// Configuration errors. Setters clamp the offending value and return one of
// these wrapped with the rejected input.
var (
	ErrInvalidRange         = errors.New("shadows: range must be a non-negative number")
	ErrInvalidIntensity     = errors.New("shadows: intensity must be a non-negative number")
	ErrInvalidPointCount    = errors.New("shadows: point count must be in [1, 1000]")
	ErrInvalidResolution    = errors.New("shadows: resolution must be positive")
	ErrInvalidScatter       = errors.New("shadows: scatter range must be a non-negative number")
	ErrInvalidOverlayLength = errors.New("shadows: overlay light length must be positive")
	ErrInvalidAmbient       = errors.New("shadows: ambient light must be in [0, 1]")
	ErrInvalidSize          = errors.New("shadows: viewport size must be positive")
)
