// Package matching holds the pure compatibility and ranking rules used by
// the group search. Nothing here touches storage; callers load candidate
// groups (with members) and pass them in.
package matching

import "github.com/hermon-k/roomshare/backend/internal/models"

// Criteria captures one searcher's requirements.
type Criteria struct {
	UserID      uint
	Age         int
	DesiredSize int
	Religion    string // "any" or a specific value
	Gender      string // optional: "", "any", "male", "female", "mixed"
}

// ReligionsCompatible reports whether two religion preferences can share a
// group: at least one side is "any", or both are equal.
func ReligionsCompatible(a, b string) bool {
	if a == models.ReligionAny || b == models.ReligionAny {
		return true
	}
	return a == b
}

// genderAllowed checks the requester's gender preference against the
// room's restriction. Only a concrete preference narrows anything.
func genderAllowed(pref, roomRestriction string) bool {
	if pref == "" || pref == models.ReligionAny || pref == models.GenderMixed {
		return true
	}
	return roomRestriction == models.GenderMixed || roomRestriction == pref
}

// compatible applies every rule except the size comparison.
func compatible(g *models.MatchGroup, roomGender string, c Criteria) bool {
	for _, m := range g.Members {
		if m.UserID == c.UserID {
			return false
		}
	}
	if c.Age < g.AgeRangeMin || c.Age > g.AgeRangeMax {
		return false
	}
	religion := c.Religion
	if religion == "" {
		religion = models.ReligionAny
	}
	if !ReligionsCompatible(g.ReligionPreference, religion) {
		return false
	}
	return genderAllowed(c.Gender, roomGender)
}

// Partition splits the candidate groups into the exact-size eligible set
// and the near-size set (target size differs from the desired size by one).
// Input order is preserved within each set.
func Partition(groups []models.MatchGroup, roomGender string, c Criteria) (exact, near []models.MatchGroup) {
	for i := range groups {
		g := &groups[i]
		if !compatible(g, roomGender, c) {
			continue
		}
		diff := g.TargetSize - c.DesiredSize
		switch {
		case diff == 0:
			exact = append(exact, *g)
		case diff == 1 || diff == -1:
			near = append(near, *g)
		}
	}
	return exact, near
}
