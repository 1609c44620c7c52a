// Package utils holds small helpers shared by the server and the CLI: curb
// scoring and ID generation.
//
// Go Learning Note — "pkg/" Directory Convention:
// Code under pkg/ is intended to be importable by external projects (unlike
// internal/ which is compiler-enforced private). This is a community convention,
// not a Go language feature.
package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a random (v4) UUID string. The API uses it to tag
// requests that arrive without an X-Request-ID header.
func GenerateID() string {
	return uuid.New().String()
}
