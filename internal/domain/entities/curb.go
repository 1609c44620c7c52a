package entities

import "github.com/rotisserie/eris"

// Domain error kinds. Every error returned by the index, codec and service
// wraps one of these; match with errors.Is, which also looks inside the
// joined error Build returns.
var (
	ErrMalformedRecord     = eris.New("malformed curb record")
	ErrInvalidPositionCode = eris.New("invalid position code")
	ErrInvalidRadius       = eris.New("invalid search radius")
	ErrCoverageTooLarge    = eris.New("coverage exceeds cell limit")
)

// CurbRecord is a single curb observation: a full precision geohash and its
// externally assigned desirability rating.
//
// Go Learning Note — Pointer Fields for "Missing":
// Designation is a plain int here because by the time a record reaches the
// index, it has already been decoded. Wire formats that must distinguish
// "absent" from "zero" (see CurbInput) use *int and convert with ToRecord.
type CurbRecord struct {
	Geohash     string `json:"geohash"`
	Designation int    `json:"curb_designation"`
}

// CurbInput is the wire shape of a record: both fields are required, and a
// designation of 0 ("not a viable spot") is still a present value.
type CurbInput struct {
	Geohash     string `json:"geohash" binding:"required" validate:"required"`
	Designation *int   `json:"curb_designation" binding:"required" validate:"required,min=0"`
}

// ToRecord converts the wire shape into a CurbRecord.
func (in CurbInput) ToRecord() (CurbRecord, error) {
	if in.Geohash == "" {
		return CurbRecord{}, eris.Wrap(ErrMalformedRecord, "missing geohash")
	}
	if in.Designation == nil {
		return CurbRecord{}, eris.Wrapf(ErrMalformedRecord, "missing curb_designation for %q", in.Geohash)
	}
	return CurbRecord{Geohash: in.Geohash, Designation: *in.Designation}, nil
}

// ScoredCurb is a search candidate with its rank score. It only lives for
// the duration of one search.
type ScoredCurb struct {
	Geohash   string  `json:"geohash"`
	CurbScore float64 `json:"curbScore"`
}

// SearchResult is the response of a curb search.
type SearchResult struct {
	Address      string       `json:"address"`
	RadiusMeters float64      `json:"radius_meters"`
	Buckets      []string     `json:"buckets"`
	Candidates   int          `json:"candidates"`
	Results      []ScoredCurb `json:"results"`
}

// IndexStats summarises the contents of the spatial index.
type IndexStats struct {
	Precision     int `json:"precision"`
	Buckets       int `json:"buckets"`
	Records       int `json:"records"`
	LargestBucket int `json:"largest_bucket"`
}
