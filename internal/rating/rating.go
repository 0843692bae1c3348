// Package rating derives a tour's cached aggregate from its reviews.
package rating

import (
	"math"

	"github.com/kirinyoku/tour-go/internal/domain"
)

// Aggregate is the cached rating stored on a tour.
type Aggregate struct {
	Rating     float64
	NumReviews int
}

// FromSum builds the aggregate from the sum and count of review ratings.
// A tour without reviews goes back to domain.DefaultRating.
func FromSum(sum float64, count int) Aggregate {
	if count <= 0 {
		return Aggregate{Rating: domain.DefaultRating, NumReviews: 0}
	}
	return Aggregate{Rating: Round1(sum / float64(count)), NumReviews: count}
}

// FromRatings is FromSum over individual review ratings.
func FromRatings(ratings []int) Aggregate {
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return FromSum(float64(sum), len(ratings))
}

// Round1 rounds to one decimal place, halves away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func ValidRating(r int) bool {
	return r >= 1 && r <= 5
}
