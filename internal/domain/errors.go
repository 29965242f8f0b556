package domain

import "errors"

var (
	// ErrInvalidTile is returned when a surface tile is missing a required attribute or carries a malformed one.
	ErrInvalidTile = errors.New("invalid element tile")
	// ErrDuplicateTile indicates two tiles share an atomic number, symbol or reference.
	ErrDuplicateTile = errors.New("duplicate element tile")
	// ErrEmptyRegistry is returned when the surface exposes no element tiles at all.
	ErrEmptyRegistry = errors.New("element registry is empty")
	// ErrInstallFailed indicates the asset cache could not be fully populated.
	ErrInstallFailed = errors.New("asset cache install failed")
	// ErrNotInstalled is returned when activation is attempted before a successful install.
	ErrNotInstalled = errors.New("asset cache not installed")
	// ErrWorkerRedundant is returned by a worker that failed to install or was terminated.
	ErrWorkerRedundant = errors.New("asset worker is redundant")
)
