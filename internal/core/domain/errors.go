package domain

import "errors"

var (
	// ErrInvalidRegion is returned for bounds whose north-east corner is not
	// strictly north-east of the south-west corner.
	ErrInvalidRegion = errors.New("invalid region")

	// ErrInvalidCoordinate is returned for non-numeric or out-of-range lat/lng.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrStoreUnavailable wraps every failure of the POI store.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound is returned when a POI does not exist.
	ErrNotFound = errors.New("not found")
)
