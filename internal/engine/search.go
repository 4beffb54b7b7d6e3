package engine

import (
	"context"
	"fmt"

	"github.com/hermon-k/roomshare/backend/internal/matching"
	"github.com/hermon-k/roomshare/backend/internal/models"
)

func ageRangeString(min, max int) string {
	return fmt.Sprintf("%d-%d", min, max)
}

// SearchGroups finds compatible groups on a room for the calling user,
// split into recommended and other tiers. Stale payment holds on the room
// are swept first so freed spots appear immediately.
func (e *Engine) SearchGroups(ctx context.Context, roomID, userID uint, req models.SearchGroupsRequest) (*models.SearchGroupsResult, error) {
	room, err := e.rooms.GetRoomByID(roomID)
	if err != nil {
		return nil, classify(err, "room")
	}
	user, err := e.users.GetUserByID(userID)
	if err != nil {
		return nil, classify(err, "user")
	}

	if room.GenderPreference != models.GenderMixed && user.Gender != room.GenderPreference {
		return nil, incompatible("this room is for %s only", room.GenderPreference)
	}

	age, err := e.resolveAge(user, req.UserAge)
	if err != nil {
		return nil, err
	}

	if _, err := e.Sweep(ctx, nil, &roomID); err != nil {
		e.logger.Warn("pre-search sweep failed", "room_id", roomID, "error", err)
	}

	groups, err := e.groups.FindOpenGroupsByRoom(roomID)
	if err != nil {
		return nil, unavailable("failed to load groups", err)
	}

	religion := req.ReligionPreference
	if religion == "" {
		religion = models.ReligionAny
	}
	criteria := matching.Criteria{
		UserID:      userID,
		Age:         age,
		DesiredSize: req.DesiredGroupSize,
		Religion:    religion,
		Gender:      req.GenderPreference,
	}

	exact, near := matching.Partition(groups, room.GenderPreference, criteria)
	recommended, other := matching.Rank(exact, near, religion)

	result := &models.SearchGroupsResult{
		Room: room.Summary(),
		UserCriteria: models.SearchCriteria{
			Age:              age,
			AgeRange:         ageRangeString(age-ageWindow, age+ageWindow),
			Religion:         religion,
			DesiredGroupSize: req.DesiredGroupSize,
		},
		RecommendedGroups:       groupSummaries(recommended),
		OtherGroups:             groupSummaries(other),
		CanCreateNew:            true,
		CostPerPersonIfNewGroup: costPerPerson(room.MonthlyRent, req.DesiredGroupSize),
	}
	return result, nil
}

func groupSummaries(groups []models.MatchGroup) []models.GroupSummary {
	summaries := make([]models.GroupSummary, 0, len(groups))
	for i := range groups {
		g := &groups[i]
		summaries = append(summaries, models.GroupSummary{
			ID:                 g.ID,
			CurrentSize:        g.CurrentSize,
			TargetSize:         g.TargetSize,
			CostPerPerson:      g.CostPerPerson,
			AgeRange:           g.AgeRange(),
			ReligionPreference: g.ReligionPreference,
			Members:            memberSummaries(g.Members),
			SpotsLeft:          g.SpotsLeft(),
		})
	}
	return summaries
}
