package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRatings(t *testing.T) {
	cases := []struct {
		name    string
		ratings []int
		want    Aggregate
	}{
		{"single", []int{4}, Aggregate{4, 1}},
		{"round down", []int{5, 4, 4}, Aggregate{4.3, 3}},
		{"round up", []int{5, 5, 4}, Aggregate{4.7, 3}},
		{"half", []int{4, 5}, Aggregate{4.5, 2}},
		{"empty resets", nil, Aggregate{4.5, 0}},
		{"low", []int{1, 1, 2}, Aggregate{1.3, 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FromRatings(tc.ratings))
		})
	}
}

func TestFromSumEmpty(t *testing.T) {
	got := FromSum(0, 0)
	assert.Equal(t, 4.5, got.Rating)
	assert.Equal(t, 0, got.NumReviews)
}

func TestValidRating(t *testing.T) {
	assert.True(t, ValidRating(1))
	assert.True(t, ValidRating(5))
	assert.False(t, ValidRating(0))
	assert.False(t, ValidRating(6))
}
