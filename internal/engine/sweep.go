package engine

import (
	"context"
	"sort"
	"time"

	"github.com/hermon-k/roomshare/backend/internal/models"
	"github.com/hermon-k/roomshare/backend/internal/repositories"
)

// expiredMember records one sweep casualty for post-commit notification.
type expiredMember struct {
	group     models.MatchGroup
	firstName string
	newSize   int
}

// Sweep expires active memberships whose payment window has lapsed and
// reopens the affected groups. Scope by groupID, by roomID, or neither
// for a global pass.
//
// Safe to call concurrently and repeatedly: overdue rows are expired with
// a status guard, so a membership is processed at most once, and a second
// run with no new overdue rows changes nothing.
func (e *Engine) Sweep(ctx context.Context, groupID, roomID *uint) (*models.SweepResult, error) {
	result := &models.SweepResult{}
	var casualties []expiredMember

	txErr := e.groups.Transact(func(tx repositories.GroupRepository) error {
		overdue, err := tx.FindOverduePendingMembers(groupID, roomID, time.Now())
		if err != nil {
			return err
		}
		if len(overdue) == 0 {
			return nil
		}

		byGroup := make(map[uint][]models.GroupMember)
		for _, m := range overdue {
			byGroup[m.GroupID] = append(byGroup[m.GroupID], m)
		}
		// Lock groups in ID order so concurrent sweeps cannot deadlock.
		gids := make([]uint, 0, len(byGroup))
		for gid := range byGroup {
			gids = append(gids, gid)
		}
		sort.Slice(gids, func(i, j int) bool { return gids[i] < gids[j] })

		for _, gid := range gids {
			members := byGroup[gid]
			g, err := tx.LockGroupByID(gid)
			if err != nil {
				// Group vanished; its memberships are unreachable anyway.
				continue
			}
			if g.Status == models.GroupExpired {
				continue
			}

			ids := make([]uint, len(members))
			for i, m := range members {
				ids[i] = m.ID
			}
			removed, err := tx.ExpireMembers(ids)
			if err != nil {
				return err
			}
			if removed == 0 {
				// A concurrent sweep got here first.
				continue
			}
			result.RemovedMembers += int(removed)

			newSize, err := tx.CountActiveMembers(gid)
			if err != nil {
				return err
			}
			prevStatus := g.Status
			g.CurrentSize = newSize
			g.Status, g.IsActive = groupStateForSize(g, newSize)
			// Survivors of a reopened group owe nothing until it refills.
			if prevStatus == models.GroupComplete && newSize < g.TargetSize && newSize > 0 {
				if err := tx.ClearPaymentWindows(gid); err != nil {
					return err
				}
			}
			if err := tx.UpdateGroup(g); err != nil {
				return err
			}
			result.UpdatedGroups++

			if newSize > 0 {
				for _, m := range members {
					name := "A member"
					if m.User != nil && m.User.FirstName != "" {
						name = m.User.FirstName
					}
					casualties = append(casualties, expiredMember{group: *g, firstName: name, newSize: newSize})
				}
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, unavailable("sweep failed", txErr)
	}

	if result.RemovedMembers > 0 {
		e.logger.Info("payment sweep expired members",
			"removed_members", result.RemovedMembers, "updated_groups", result.UpdatedGroups)
	}

	for _, c := range casualties {
		room, err := e.rooms.GetRoomByID(c.group.RoomID)
		if err != nil {
			e.logger.Warn("room lookup for sweep notification failed", "room_id", c.group.RoomID, "error", err)
			room = &models.Room{}
			room.ID = c.group.RoomID
		}
		e.notifier.MemberLeft(ctx, &c.group, room, c.firstName, c.newSize)
	}

	return result, nil
}
