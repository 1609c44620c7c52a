package utils

import (
	"curbfinder/internal/geo"
)

// SelfDistanceKm stands in for the distance between a query and a curb at
// the exact same geohash, so the score stays finite and maximal.
const SelfDistanceKm = 0.00001

// CurbScoreCalculator ranks a curb relative to a query position:
//
//	score = (designation * DesignationWeight) / (distanceKm * DistanceWeight)
//
// Both weights default to 1 and can be tuned from collected user data.
type CurbScoreCalculator struct {
	DesignationWeight float64
	DistanceWeight    float64
}

func NewCurbScoreCalculator(designationWeight, distanceWeight float64) *CurbScoreCalculator {
	if designationWeight <= 0 {
		designationWeight = 1
	}
	if distanceWeight <= 0 {
		distanceWeight = 1
	}
	return &CurbScoreCalculator{
		DesignationWeight: designationWeight,
		DistanceWeight:    distanceWeight,
	}
}

// Score returns the rank score of candidate for a search at query. A
// designation of 0 always scores 0 so such curbs drop out of results.
func (c *CurbScoreCalculator) Score(query, candidate string, designation int) (float64, error) {
	if designation == 0 {
		return 0, nil
	}

	distance := SelfDistanceKm
	if geo.Normalize(query) != geo.Normalize(candidate) {
		d, err := geo.DistanceKm(query, candidate)
		if err != nil {
			return 0, err
		}
		// Never closer than an exact match.
		if d > SelfDistanceKm {
			distance = d
		}
	}

	return (float64(designation) * c.DesignationWeight) / (distance * c.DistanceWeight), nil
}
