package services

import (
	"context"
	"sort"

	"curbfinder/internal/config"
	"curbfinder/internal/domain/entities"
	"curbfinder/internal/geo"
	"curbfinder/internal/repository"
	"curbfinder/pkg/utils"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// CurbService answers "where should I stop near this address" by combining
// radius coverage, bucket lookups and curb scoring over a CurbIndex.
type CurbService struct {
	index    repository.CurbIndex
	coverage *geo.CoverageGenerator
	scorer   *utils.CurbScoreCalculator
	cfg      config.SearchConfig
	logger   *zap.Logger
}

func NewCurbService(
	index repository.CurbIndex,
	coverage *geo.CoverageGenerator,
	scorer *utils.CurbScoreCalculator,
	cfg config.SearchConfig,
	logger *zap.Logger,
) *CurbService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CurbService{
		index:    index,
		coverage: coverage,
		scorer:   scorer,
		cfg:      cfg,
		logger:   logger,
	}
}

// Search returns up to topK curbs near address, best first. A radius of
// zero or a topK of zero (or less) uses the configured default; a negative
// radius fails with ErrInvalidRadius.
//
// Candidates are visited bucket by bucket in sorted key order and by
// ascending geohash within a bucket. The sort is stable, so curbs with
// equal scores keep that order. Curbs scoring 0 are dropped; an empty
// result is not an error.
func (s *CurbService) Search(ctx context.Context, address string, radiusMeters float64, topK int) (*entities.SearchResult, error) {
	if radiusMeters == 0 {
		radiusMeters = s.cfg.RadiusMeters
	}
	if topK <= 0 {
		topK = s.cfg.TopK
	}

	address = geo.Normalize(address)
	lat, lon, err := geo.Decode(address)
	if err != nil {
		return nil, eris.Wrap(err, "decode address")
	}

	keys, err := s.coverage.Coverage(lat, lon, radiusMeters, s.index.Precision(), s.cfg.MergeAdjacent)
	if err != nil {
		return nil, eris.Wrap(err, "cover search radius")
	}

	var candidates []entities.ScoredCurb
	seen := make(map[string]bool)
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "search cancelled")
		}

		bucket := s.index.LookupPrefix(key)
		codes := make([]string, 0, len(bucket))
		for code := range bucket {
			if !seen[code] {
				seen[code] = true
				codes = append(codes, code)
			}
		}
		sort.Strings(codes)

		for _, code := range codes {
			score, err := s.scorer.Score(address, code, bucket[code])
			if err != nil {
				return nil, eris.Wrapf(err, "score %s", code)
			}
			candidates = append(candidates, entities.ScoredCurb{Geohash: code, CurbScore: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CurbScore > candidates[j].CurbScore
	})

	results := make([]entities.ScoredCurb, 0, min(topK, len(candidates)))
	for _, c := range candidates {
		if len(results) == topK {
			break
		}
		if c.CurbScore == 0 {
			continue
		}
		results = append(results, c)
	}

	s.logger.Debug("curb search",
		zap.String("address", address),
		zap.Float64("radius_meters", radiusMeters),
		zap.Strings("buckets", keys),
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(results)),
	)

	return &entities.SearchResult{
		Address:      address,
		RadiusMeters: radiusMeters,
		Buckets:      keys,
		Candidates:   len(candidates),
		Results:      results,
	}, nil
}

// Update inserts a curb or changes its designation, e.g. when a user
// reports that a spot now has a hydrant.
func (s *CurbService) Update(ctx context.Context, record entities.CurbRecord) error {
	if err := s.index.Upsert(record); err != nil {
		return eris.Wrap(err, "update curb")
	}
	s.logger.Debug("curb updated",
		zap.String("geohash", record.Geohash),
		zap.Int("curb_designation", record.Designation),
	)
	return nil
}

// Load bulk-indexes records. Malformed records are skipped and reported in
// the returned error; the rest are indexed.
func (s *CurbService) Load(ctx context.Context, records []entities.CurbRecord) (int, error) {
	indexed, err := s.index.Build(records)
	s.logger.Info("curbs loaded",
		zap.Int("indexed", indexed),
		zap.Int("rejected", len(records)-indexed),
	)
	return indexed, err
}

// Bucket returns the curbs stored under one bucket key.
func (s *CurbService) Bucket(ctx context.Context, key string) map[string]int {
	return s.index.Lookup(key)
}

// Buckets lists the non-empty bucket keys.
func (s *CurbService) Buckets(ctx context.Context) []string {
	return s.index.Buckets()
}

// Stats reports the index size and bucket fan-out.
func (s *CurbService) Stats(ctx context.Context) entities.IndexStats {
	return s.index.Stats()
}
