package geo

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"curbfinder/internal/domain/entities"

	"github.com/rotisserie/eris"
)

// SpatialIndex is an in-memory index of curb records grouped into geohash
// buckets. A bucket key is the first `precision` characters of a record's
// geohash, so a radius search only needs to look at the buckets its coverage
// returns instead of scanning every curb in the city.
//
// Go Learning Note — sync.RWMutex:
// RWMutex provides read-write locking. Multiple goroutines can hold a read lock
// simultaneously (RLock), but a write lock (Lock) is exclusive. Searches take
// the read lock; Build and Upsert take the write lock, so a search never sees
// a half-applied write.
//
// Go Learning Note — Nested Maps:
// The buckets field is map[string]map[string]int, a two-level map.
// The outer key is the bucket prefix, the inner key is the full geohash and
// the value is its designation. Go maps must be initialized with make()
// before use; a nil map will panic on write (but reads return the zero value).
type SpatialIndex struct {
	mu        sync.RWMutex
	precision int
	buckets   map[string]map[string]int // bucket prefix -> geohash -> designation
}

// NewSpatialIndex creates an empty spatial index with the given bucket precision.
func NewSpatialIndex(precision int) *SpatialIndex {
	return &SpatialIndex{
		precision: clampPrecision(precision),
		buckets:   make(map[string]map[string]int),
	}
}

// Precision returns the bucket key length.
func (s *SpatialIndex) Precision() int {
	return s.precision
}

// Build indexes a batch of records. Malformed records are skipped; every
// other record is indexed. The returned error joins one ErrMalformedRecord
// per rejected record and is nil when none were rejected.
func (s *SpatialIndex) Build(records []entities.CurbRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	indexed := 0
	for i, record := range records {
		code, err := s.validate(record)
		if err != nil {
			errs = append(errs, eris.Wrapf(err, "record %d", i))
			continue
		}
		s.put(code, record.Designation)
		indexed++
	}

	return indexed, errors.Join(errs...)
}

// Upsert inserts a record or overwrites the designation of an existing one.
// A malformed record leaves the index untouched.
func (s *SpatialIndex) Upsert(record entities.CurbRecord) error {
	code, err := s.validate(record)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.put(code, record.Designation)
	return nil
}

// Lookup returns a copy of the bucket stored under key, or an empty map if
// there is none.
func (s *SpatialIndex) Lookup(key string) map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket := s.buckets[Normalize(key)]
	out := make(map[string]int, len(bucket))
	for code, designation := range bucket {
		out[code] = designation
	}
	return out
}

// LookupPrefix returns every record whose geohash starts with prefix. A
// prefix shorter than the bucket precision spans several buckets (this is
// how merged coverage cells are resolved); a longer one narrows a single
// bucket.
func (s *SpatialIndex) LookupPrefix(prefix string) map[string]int {
	prefix = Normalize(prefix)
	if len(prefix) == s.precision {
		return s.Lookup(prefix)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int)
	if len(prefix) > s.precision {
		for code, designation := range s.buckets[prefix[:s.precision]] {
			if strings.HasPrefix(code, prefix) {
				out[code] = designation
			}
		}
		return out
	}

	for key, bucket := range s.buckets {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		for code, designation := range bucket {
			out[code] = designation
		}
	}
	return out
}

// Buckets returns the sorted keys of all non-empty buckets.
//
// Go Learning Note — make() with Length 0 and Capacity:
// make([]string, 0, len(s.buckets)) creates a slice with length 0 but
// pre-allocated capacity, the pattern to use with append() when the final
// size is known up front.
func (s *SpatialIndex) Buckets() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.buckets))
	for key := range s.buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Count returns the total number of records in the index.
func (s *SpatialIndex) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, bucket := range s.buckets {
		count += len(bucket)
	}
	return count
}

// Stats summarises bucket fan-out.
func (s *SpatialIndex) Stats() entities.IndexStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := entities.IndexStats{Precision: s.precision, Buckets: len(s.buckets)}
	for _, bucket := range s.buckets {
		stats.Records += len(bucket)
		if len(bucket) > stats.LargestBucket {
			stats.LargestBucket = len(bucket)
		}
	}
	return stats
}

// put must be called with the write lock held.
func (s *SpatialIndex) put(code string, designation int) {
	key := code[:s.precision]
	bucket, exists := s.buckets[key]
	if !exists {
		bucket = make(map[string]int)
		s.buckets[key] = bucket
	}
	bucket[code] = designation
}

// validate returns the normalized geohash of a well-formed record.
func (s *SpatialIndex) validate(record entities.CurbRecord) (string, error) {
	code := Normalize(record.Geohash)
	if code == "" {
		return "", eris.Wrap(entities.ErrMalformedRecord, "missing geohash")
	}
	if err := Validate(code); err != nil {
		return "", eris.Wrapf(entities.ErrMalformedRecord, "geohash %q: %v", record.Geohash, err)
	}
	if len(code) < s.precision {
		return "", eris.Wrapf(entities.ErrMalformedRecord, "geohash %q shorter than bucket precision %d", record.Geohash, s.precision)
	}
	if record.Designation < 0 {
		return "", eris.Wrapf(entities.ErrMalformedRecord, "negative curb_designation %d for %q", record.Designation, record.Geohash)
	}
	return code, nil
}
