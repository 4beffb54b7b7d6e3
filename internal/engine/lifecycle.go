package engine

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/hermon-k/roomshare/backend/internal/matching"
	"github.com/hermon-k/roomshare/backend/internal/models"
	"github.com/hermon-k/roomshare/backend/internal/repositories"
)

// CreateGroup starts a new group on a room with the caller as its first,
// creator member. The group inherits the creator's age window and
// religion preference for its whole life.
func (e *Engine) CreateGroup(ctx context.Context, roomID, userID uint, req models.CreateGroupRequest) (*models.CreateGroupResult, error) {
	if req.DesiredGroupSize < 2 || req.DesiredGroupSize > 3 {
		return nil, invalidArgument("group size must be 2 or 3")
	}

	room, err := e.rooms.GetRoomByID(roomID)
	if err != nil {
		return nil, classify(err, "room")
	}
	user, err := e.users.GetUserByID(userID)
	if err != nil {
		return nil, classify(err, "user")
	}

	age, err := e.resolveAge(user, req.UserAge)
	if err != nil {
		return nil, err
	}

	religion := req.ReligionPreference
	if religion == "" {
		religion = models.ReligionAny
	}

	group := &models.MatchGroup{
		RoomID:             roomID,
		CreatorID:          userID,
		TargetSize:         req.DesiredGroupSize,
		CurrentSize:        1,
		CostPerPerson:      costPerPerson(room.MonthlyRent, req.DesiredGroupSize),
		CreatorAge:         age,
		AgeRangeMin:        age - ageWindow,
		AgeRangeMax:        age + ageWindow,
		ReligionPreference: religion,
		Status:             models.GroupForming,
		IsActive:           true,
	}
	creator := &models.GroupMember{
		UserID:        userID,
		Status:        models.MemberActive,
		IsCreator:     true,
		PaymentStatus: models.PaymentNone,
	}

	if err := e.groups.CreateGroupWithCreator(group, creator); err != nil {
		return nil, unavailable("failed to create group", err)
	}

	e.logger.Info("group created",
		"group_id", group.ID, "room_id", roomID, "creator_id", userID,
		"target_size", group.TargetSize, "cost_per_person", group.CostPerPerson)

	e.notifier.GroupFound(ctx, group, room)

	return &models.CreateGroupResult{
		GroupID:       group.ID,
		CostPerPerson: group.CostPerPerson,
		SpotsLeft:     group.TargetSize - 1,
	}, nil
}

// JoinGroup adds a user to a forming group. If the join fills the group,
// the payment window is stamped on every active member inside the same
// transaction that flips the group complete.
func (e *Engine) JoinGroup(ctx context.Context, groupID, userID uint, req models.JoinGroupRequest) (*models.JoinGroupResult, error) {
	user, err := e.users.GetUserByID(userID)
	if err != nil {
		return nil, classify(err, "user")
	}
	age, err := e.resolveAge(user, req.UserAge)
	if err != nil {
		return nil, err
	}

	var (
		group          models.MatchGroup
		newSize        int
		becameComplete bool
		dueAt          time.Time
	)

	txErr := e.groups.Transact(func(tx repositories.GroupRepository) error {
		g, err := tx.LockGroupByID(groupID)
		if err != nil {
			return classify(err, "group")
		}
		if g.Status == models.GroupExpired {
			return conflict("group has expired")
		}
		if g.CurrentSize >= g.TargetSize {
			return conflict("group is already full")
		}
		if _, err := tx.GetActiveMembership(groupID, userID); err == nil {
			return conflict("you are already in this group")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return unavailable("membership lookup failed", err)
		}

		if age < g.AgeRangeMin || age > g.AgeRangeMax {
			return incompatible("age not compatible with group requirements")
		}
		religion := user.Religion
		if religion == "" {
			religion = req.ReligionPreference
		}
		if religion == "" {
			religion = models.ReligionAny
		}
		if !matching.ReligionsCompatible(g.ReligionPreference, religion) {
			return incompatible("religion preference not compatible with group")
		}

		member := &models.GroupMember{
			GroupID:       groupID,
			UserID:        userID,
			Status:        models.MemberActive,
			PaymentStatus: models.PaymentNone,
		}
		if err := tx.CreateMember(member); err != nil {
			return unavailable("failed to join group", err)
		}

		newSize, err = tx.CountActiveMembers(groupID)
		if err != nil {
			return unavailable("failed to count members", err)
		}

		prevStatus := g.Status
		g.CurrentSize = newSize
		g.Status, g.IsActive = groupStateForSize(g, newSize)
		becameComplete = g.Status == models.GroupComplete && prevStatus != models.GroupComplete
		if becameComplete {
			dueAt = time.Now().Add(e.PaymentWindow)
			if err := tx.SetPaymentWindow(groupID, dueAt); err != nil {
				return unavailable("failed to start payment window", err)
			}
		}
		if err := tx.UpdateGroup(g); err != nil {
			return unavailable("failed to update group", err)
		}

		group = *g
		return nil
	})
	if txErr != nil {
		if _, ok := txErr.(*Error); ok {
			return nil, txErr
		}
		return nil, unavailable("join failed", txErr)
	}

	e.logger.Info("member joined group",
		"group_id", groupID, "user_id", userID,
		"current_size", newSize, "target_size", group.TargetSize,
		"complete", becameComplete)

	room, err := e.rooms.GetRoomByID(group.RoomID)
	if err != nil {
		// Notifications degrade without the room; the join itself stands.
		e.logger.Warn("room lookup for notifications failed", "room_id", group.RoomID, "error", err)
		room = &models.Room{}
		room.ID = group.RoomID
	}
	e.notifier.MemberJoined(ctx, &group, room, user.FirstName, newSize)
	if becameComplete {
		e.notifier.GroupComplete(ctx, &group, room, dueAt)
	}

	return &models.JoinGroupResult{
		GroupID:       groupID,
		CurrentSize:   newSize,
		TargetSize:    group.TargetSize,
		CostPerPerson: group.CostPerPerson,
		IsComplete:    becameComplete,
	}, nil
}

// LeaveGroup removes the caller's active membership. The leaver's payment
// fields are cleared; if the group falls below target from complete, the
// remaining members' payment obligation is void. A group left empty
// expires for good.
func (e *Engine) LeaveGroup(ctx context.Context, groupID, userID uint) error {
	user, err := e.users.GetUserByID(userID)
	if err != nil {
		return classify(err, "user")
	}

	var (
		group   models.MatchGroup
		newSize int
	)

	txErr := e.groups.Transact(func(tx repositories.GroupRepository) error {
		member, err := tx.GetActiveMembership(groupID, userID)
		if err != nil {
			return classify(err, "group membership")
		}
		g, err := tx.LockGroupByID(groupID)
		if err != nil {
			return classify(err, "group")
		}

		member.Status = models.MemberLeft
		member.PaymentStatus = models.PaymentNone
		member.PaymentDueAt = nil
		if err := tx.UpdateMember(member); err != nil {
			return unavailable("failed to update membership", err)
		}

		newSize, err = tx.CountActiveMembers(groupID)
		if err != nil {
			return unavailable("failed to count members", err)
		}

		prevStatus := g.Status
		g.CurrentSize = newSize
		g.Status, g.IsActive = groupStateForSize(g, newSize)
		// The payment obligation is void once the group is no longer full.
		if prevStatus == models.GroupComplete && newSize < g.TargetSize && newSize > 0 {
			if err := tx.ClearPaymentWindows(groupID); err != nil {
				return unavailable("failed to clear payment windows", err)
			}
		}
		if err := tx.UpdateGroup(g); err != nil {
			return unavailable("failed to update group", err)
		}

		group = *g
		return nil
	})
	if txErr != nil {
		if _, ok := txErr.(*Error); ok {
			return txErr
		}
		return unavailable("leave failed", txErr)
	}

	e.logger.Info("member left group",
		"group_id", groupID, "user_id", userID,
		"current_size", newSize, "status", group.Status)

	if newSize > 0 {
		room, err := e.rooms.GetRoomByID(group.RoomID)
		if err != nil {
			e.logger.Warn("room lookup for notifications failed", "room_id", group.RoomID, "error", err)
			room = &models.Room{}
			room.ID = group.RoomID
		}
		e.notifier.MemberLeft(ctx, &group, room, user.FirstName, newSize)
	}
	return nil
}

// MyGroups lists the caller's group memberships: active ones plus those
// that ended through payment expiry (kept as history). Overdue members
// everywhere are swept first so the view reflects released holds.
func (e *Engine) MyGroups(ctx context.Context, userID uint) ([]models.MyGroupView, error) {
	if _, err := e.Sweep(ctx, nil, nil); err != nil {
		e.logger.Warn("pre-listing sweep failed", "user_id", userID, "error", err)
	}

	memberships, err := e.groups.GetUserMemberships(userID)
	if err != nil {
		return nil, unavailable("failed to load memberships", err)
	}

	views := make([]models.MyGroupView, 0, len(memberships))
	for i := range memberships {
		m := &memberships[i]
		g := m.Group
		if g == nil {
			continue
		}
		// Keep left memberships only when they expired for payment.
		if m.Status == models.MemberLeft && m.PaymentStatus != models.PaymentExpired {
			continue
		}

		view := models.MyGroupView{
			GroupID:            g.ID,
			CurrentSize:        g.CurrentSize,
			TargetSize:         g.TargetSize,
			CostPerPerson:      g.CostPerPerson,
			Status:             g.Status,
			PaymentRequired:    m.PaymentStatus == models.PaymentPending || g.Status == models.GroupComplete,
			IsHistory:          m.PaymentStatus == models.PaymentExpired || (m.Status == models.MemberLeft && m.PaymentDueAt != nil),
			IsCreator:          m.IsCreator,
			ReligionPreference: g.ReligionPreference,
			AgeRange:           g.AgeRange(),
			Members:            memberSummaries(g.Members),
			SpotsLeft:          g.SpotsLeft(),
			PaymentDueAt:       m.PaymentDueAt,
			PaymentStatus:      m.PaymentStatus,
		}
		if m.PaymentStatus == models.PaymentExpired && m.PaymentDueAt != nil {
			view.ExpiredAt = m.PaymentDueAt
		}
		if g.Room != nil {
			s := g.Room.Summary()
			view.Room = &s
		}
		views = append(views, view)
	}
	return views, nil
}

func memberSummaries(members []models.GroupMember) []models.MemberSummary {
	summaries := make([]models.MemberSummary, 0, len(members))
	for _, m := range members {
		s := models.MemberSummary{IsCreator: m.IsCreator}
		if m.User != nil {
			s.FirstName = m.User.FirstName
			s.Age = m.User.Age
			s.Religion = m.User.Religion
		}
		summaries = append(summaries, s)
	}
	return summaries
}
