package errors

import "net/http"

var (
	ErrInvalidPositionCode = New(
		"INVALID_POSITION_CODE",
		"Address is not a valid geohash",
		http.StatusBadRequest,
	)

	ErrMalformedRecord = New(
		"MALFORMED_RECORD",
		"Curb record is missing or has an invalid geohash or curb_designation",
		http.StatusUnprocessableEntity,
	)

	ErrInvalidRadius = New(
		"INVALID_RADIUS",
		"Invalid radius value",
		http.StatusBadRequest,
	)

	ErrCoverageTooLarge = New(
		"COVERAGE_TOO_LARGE",
		"Search radius covers too many cells at the configured precision",
		http.StatusUnprocessableEntity,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
