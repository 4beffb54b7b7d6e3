package matching

import "github.com/hermon-k/roomshare/backend/internal/models"

// Rank orders the eligible sets into recommended and other tiers.
//
// Precedence: exact-size groups matching a concrete religion preference
// come first; failing that, all exact-size groups; failing that, near-size
// groups are promoted. "Other" is the remainder in exact-then-near order
// with no duplicates. A same-size match always beats a near-size one when
// both exist.
func Rank(exact, near []models.MatchGroup, religion string) (recommended, other []models.MatchGroup) {
	if religion != "" && religion != models.ReligionAny {
		for _, g := range exact {
			if g.ReligionPreference == religion {
				recommended = append(recommended, g)
			}
		}
	}

	if len(recommended) == 0 {
		if len(exact) > 0 {
			recommended = append(recommended, exact...)
		} else if len(near) > 0 {
			recommended = append(recommended, near...)
		}
	}

	picked := make(map[uint]bool, len(recommended))
	for _, g := range recommended {
		picked[g.ID] = true
	}
	for _, g := range exact {
		if !picked[g.ID] {
			picked[g.ID] = true
			other = append(other, g)
		}
	}
	for _, g := range near {
		if !picked[g.ID] {
			picked[g.ID] = true
			other = append(other, g)
		}
	}
	return recommended, other
}
