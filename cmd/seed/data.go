package main

import (
	"time"

	"github.com/kirinyoku/tour-go/internal/auth"
	"github.com/kirinyoku/tour-go/internal/domain"
)

func dates(ds ...string) []time.Time {
	out := make([]time.Time, 0, len(ds))
	for _, d := range ds {
		t, err := time.Parse(time.DateOnly, d)
		if err != nil {
			panic(err)
		}
		out = append(out, t)
	}
	return out
}

func sampleTours() []domain.Tour {
	return []domain.Tour{
		{
			Name:         "The Northern Lights Adventure",
			Description:  "Experience the magical Aurora Borealis in Iceland. This unforgettable journey takes you to the best viewing spots, including remote locations away from city lights.",
			Price:        2499,
			Duration:     7,
			MaxGroupSize: 12,
			Difficulty:   domain.DifficultyModerate,
			Rating:       4.8,
			NumReviews:   234,
			ImageURL:     "https://images.unsplash.com/photo-1579033461380-adb47c3eb938?w=800&q=80",
			Location:     "Reykjavik, Iceland",
			StartDates:   dates("2026-12-15", "2027-01-10", "2027-01-25"),
			Highlights: []string{
				"Northern Lights hunting with expert guides",
				"Visit to the Blue Lagoon",
				"Glacier hiking experience",
				"Traditional Icelandic cuisine",
			},
		},
		{
			Name:         "Tropical Paradise in Bali",
			Description:  "Discover the enchanting island of Bali with its stunning beaches, ancient temples, lush rice terraces, and vibrant culture.",
			Price:        1899,
			Duration:     10,
			MaxGroupSize: 15,
			Difficulty:   domain.DifficultyEasy,
			Rating:       4.9,
			NumReviews:   412,
			ImageURL:     "https://images.unsplash.com/photo-1537996194471-e657df975ab4?w=800&q=80",
			Location:     "Ubud, Bali",
			StartDates:   dates("2026-12-20", "2027-01-15", "2027-02-10"),
			Highlights: []string{
				"Sunrise trek to Mount Batur",
				"Rice terrace photography tour",
				"Traditional Balinese cooking class",
				"Beach sunset ceremonies",
			},
		},
		{
			Name:         "Machu Picchu Trek",
			Description:  "Hike the legendary Inca Trail to the ancient citadel of Machu Picchu. This challenging trek rewards you with breathtaking mountain views and rich history.",
			Price:        3299,
			Duration:     8,
			MaxGroupSize: 10,
			Difficulty:   domain.DifficultyDifficult,
			Rating:       4.7,
			NumReviews:   189,
			ImageURL:     "https://images.unsplash.com/photo-1587595431973-160d0d94add1?w=800&q=80",
			Location:     "Cusco, Peru",
			StartDates:   dates("2026-12-15", "2027-01-20", "2027-03-01"),
			Highlights: []string{
				"4-day Inca Trail trek",
				"Professional mountain guides",
				"Visit to Sacred Valley",
				"Sunrise at Machu Picchu",
			},
		},
		{
			Name:         "Safari in the Serengeti",
			Description:  "Witness the incredible wildlife of Tanzania on this luxury safari adventure. See the Big Five and experience the Great Migration.",
			Price:        4599,
			Duration:     12,
			MaxGroupSize: 8,
			Difficulty:   domain.DifficultyEasy,
			Rating:       5.0,
			NumReviews:   156,
			ImageURL:     "https://images.unsplash.com/photo-1516426122078-c23e76319801?w=800&q=80",
			Location:     "Serengeti, Tanzania",
			StartDates:   dates("2026-12-18", "2027-01-22", "2027-03-15"),
			Highlights: []string{
				"Daily game drives",
				"Luxury tented camps",
				"Hot air balloon safari",
				"Maasai village visit",
			},
		},
		{
			Name:         "Japanese Cultural Experience",
			Description:  "Immerse yourself in Japanese culture with visits to ancient temples, traditional tea ceremonies, and the bustling streets of Tokyo.",
			Price:        2799,
			Duration:     14,
			MaxGroupSize: 16,
			Difficulty:   domain.DifficultyEasy,
			Rating:       4.8,
			NumReviews:   298,
			ImageURL:     "https://images.unsplash.com/photo-1493976040374-85c8e12f0c0e?w=800&q=80",
			Location:     "Tokyo & Kyoto, Japan",
			StartDates:   dates("2026-12-20", "2027-01-25", "2027-03-20"),
			Highlights: []string{
				"Traditional tea ceremony",
				"Sumo wrestling experience",
				"Mount Fuji day trip",
				"Authentic ryokan stay",
			},
		},
		{
			Name:         "Swiss Alps Adventure",
			Description:  "Explore the majestic Swiss Alps with hiking, mountain railways, and charming alpine villages. Perfect for nature lovers and adventure seekers.",
			Price:        3499,
			Duration:     9,
			MaxGroupSize: 14,
			Difficulty:   domain.DifficultyModerate,
			Rating:       4.9,
			NumReviews:   267,
			ImageURL:     "https://images.unsplash.com/photo-1531366936337-7c912a4589a7?w=800&q=80",
			Location:     "Interlaken, Switzerland",
			StartDates:   dates("2026-12-15", "2027-01-10", "2027-02-25"),
			Highlights: []string{
				"Jungfrau railway to Top of Europe",
				"Paragliding in Interlaken",
				"Scenic Alpine hikes",
				"Swiss chocolate factory tour",
			},
		},
	}
}

func sampleUsers(h *auth.Hasher) ([]domain.User, error) {
	users := []struct {
		name, email, password, seed string
		role                        domain.Role
	}{
		{"Alice Example", "alice@example.com", "password123", "alice", domain.RoleUser},
		{"Bob Admin", "bob@admin.com", "adminpass", "bob", domain.RoleAdmin},
		{"Charlie User", "charlie@user.com", "charliepass", "charlie", domain.RoleUser},
	}

	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		hash, err := h.Hash(u.password)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.User{
			Name:         u.name,
			Email:        u.email,
			PasswordHash: hash,
			Avatar:       "https://api.dicebear.com/7.x/avataaars/svg?seed=" + u.seed,
			Role:         u.role,
		})
	}

	return out, nil
}
