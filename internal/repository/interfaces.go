package repository

import (
	"curbfinder/internal/domain/entities"
)

// CurbIndex is the bucketed curb store the search service runs against.
// geo.SpatialIndex is the in-memory implementation.
type CurbIndex interface {
	Precision() int
	Build(records []entities.CurbRecord) (int, error)
	Upsert(record entities.CurbRecord) error
	Lookup(bucketKey string) map[string]int
	LookupPrefix(prefix string) map[string]int
	Buckets() []string
	Stats() entities.IndexStats
}
