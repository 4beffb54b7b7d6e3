package engine

import (
	"context"
	"testing"

	"github.com/hermon-k/roomshare/backend/internal/models"
)

func TestSearchGroups(t *testing.T) {
	ctx := context.Background()

	t.Run("tiers groups by religion, size and the fallbacks", func(t *testing.T) {
		f := newFixture()
		f.addRoom(1, 3000, models.GenderMixed)
		f.addUser(1, "Hermon", 30, models.GenderFemale, "christian")
		f.addUser(2, "Sara", 30, models.GenderFemale, "any")
		f.addUser(3, "Lily", 30, models.GenderFemale, "any")
		f.addUser(10, "Ruth", 30, models.GenderFemale, "christian")

		a, err := f.eng.CreateGroup(ctx, 1, 1, models.CreateGroupRequest{DesiredGroupSize: 3, ReligionPreference: "christian"})
		if err != nil {
			t.Fatalf("create group A: %v", err)
		}
		b, err := f.eng.CreateGroup(ctx, 1, 2, models.CreateGroupRequest{DesiredGroupSize: 3})
		if err != nil {
			t.Fatalf("create group B: %v", err)
		}
		c, err := f.eng.CreateGroup(ctx, 1, 3, models.CreateGroupRequest{DesiredGroupSize: 2})
		if err != nil {
			t.Fatalf("create group C: %v", err)
		}

		result, err := f.eng.SearchGroups(ctx, 1, 10, models.SearchGroupsRequest{
			DesiredGroupSize:   3,
			ReligionPreference: "christian",
		})
		if err != nil {
			t.Fatalf("SearchGroups failed: %v", err)
		}

		if len(result.RecommendedGroups) != 1 || result.RecommendedGroups[0].ID != a.GroupID {
			t.Errorf("recommended = %v, want the religion-matching exact-size group %d", summaryIDs(result.RecommendedGroups), a.GroupID)
		}
		if len(result.OtherGroups) != 2 || result.OtherGroups[0].ID != b.GroupID || result.OtherGroups[1].ID != c.GroupID {
			t.Errorf("other = %v, want [%d %d]", summaryIDs(result.OtherGroups), b.GroupID, c.GroupID)
		}
		if !result.CanCreateNew {
			t.Error("creating a new group should always be offered")
		}
		if result.CostPerPersonIfNewGroup != 1000 {
			t.Errorf("new-group cost = %v, want 1000", result.CostPerPersonIfNewGroup)
		}
		if result.UserCriteria.AgeRange != "25-35" {
			t.Errorf("criteria age range = %s, want 25-35", result.UserCriteria.AgeRange)
		}
	})

	t.Run("near sizes are promoted when nothing matches exactly", func(t *testing.T) {
		f := newFixture()
		f.addRoom(1, 3000, models.GenderMixed)
		f.addUser(1, "Hermon", 30, models.GenderFemale, "any")
		f.addUser(10, "Ruth", 30, models.GenderFemale, "any")

		c, err := f.eng.CreateGroup(ctx, 1, 1, models.CreateGroupRequest{DesiredGroupSize: 2})
		if err != nil {
			t.Fatalf("create group: %v", err)
		}

		result, err := f.eng.SearchGroups(ctx, 1, 10, models.SearchGroupsRequest{DesiredGroupSize: 3})
		if err != nil {
			t.Fatalf("SearchGroups failed: %v", err)
		}
		if len(result.RecommendedGroups) != 1 || result.RecommendedGroups[0].ID != c.GroupID {
			t.Errorf("recommended = %v, want promoted near-size group %d", summaryIDs(result.RecommendedGroups), c.GroupID)
		}
	})

	t.Run("own groups are filtered out", func(t *testing.T) {
		f := newFixture()
		f.addRoom(1, 3000, models.GenderMixed)
		f.addUser(1, "Hermon", 30, models.GenderFemale, "any")

		if _, err := f.eng.CreateGroup(ctx, 1, 1, models.CreateGroupRequest{DesiredGroupSize: 3}); err != nil {
			t.Fatalf("create group: %v", err)
		}

		result, err := f.eng.SearchGroups(ctx, 1, 1, models.SearchGroupsRequest{DesiredGroupSize: 3})
		if err != nil {
			t.Fatalf("SearchGroups failed: %v", err)
		}
		if len(result.RecommendedGroups)+len(result.OtherGroups) != 0 {
			t.Errorf("searcher sees own group: recommended=%v other=%v",
				summaryIDs(result.RecommendedGroups), summaryIDs(result.OtherGroups))
		}
	})

	t.Run("room gender restriction gates the search", func(t *testing.T) {
		f := newFixture()
		f.addRoom(1, 3000, models.GenderFemale)
		f.addUser(1, "Dawit", 30, models.GenderMale, "any")

		_, err := f.eng.SearchGroups(ctx, 1, 1, models.SearchGroupsRequest{DesiredGroupSize: 2})
		if KindOf(err) != KindIncompatible {
			t.Errorf("male searcher on female room: got %v, want incompatible", err)
		}
	})

	t.Run("stale payment holds are released before searching", func(t *testing.T) {
		f := newFixture()
		gid := completeGroup(t, f, 2) // complete, so not searchable
		backdate(t, f, gid, 2)

		f.addUser(10, "Ruth", 30, models.GenderFemale, "any")
		result, err := f.eng.SearchGroups(ctx, 1, 10, models.SearchGroupsRequest{DesiredGroupSize: 2})
		if err != nil {
			t.Fatalf("SearchGroups failed: %v", err)
		}

		// The sweep reopened the group; its freed spot is visible.
		if len(result.RecommendedGroups) != 1 || result.RecommendedGroups[0].ID != gid {
			t.Fatalf("recommended = %v, want reopened group %d", summaryIDs(result.RecommendedGroups), gid)
		}
		if result.RecommendedGroups[0].SpotsLeft != 1 {
			t.Errorf("spots left = %d, want 1", result.RecommendedGroups[0].SpotsLeft)
		}
	})
}

func summaryIDs(groups []models.GroupSummary) []uint {
	out := make([]uint, len(groups))
	for i, g := range groups {
		out[i] = g.ID
	}
	return out
}
