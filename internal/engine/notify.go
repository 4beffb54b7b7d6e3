package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hermon-k/roomshare/backend/internal/models"
	"github.com/hermon-k/roomshare/backend/internal/repositories"
)

// localTimeLayout renders a deadline without a zone suffix so clients
// treat it as local time for countdowns.
const localTimeLayout = "2006-01-02T15:04:05"

// Notifier translates lifecycle events into addressed notification
// records. Every method is best-effort: dispatch failures are logged and
// never affect the state transition that triggered them.
type Notifier struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	groups        repositories.GroupRepository
	logger        *slog.Logger
}

// NewNotifier creates a Notifier.
func NewNotifier(notifications repositories.NotificationRepository, users repositories.UserRepository, groups repositories.GroupRepository, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{notifications: notifications, users: users, groups: groups, logger: logger}
}

// groupDisplayName derives a friendly group name from its room.
func groupDisplayName(group *models.MatchGroup, room *models.Room) string {
	if room != nil {
		switch {
		case room.Address != "" && room.City != "":
			return room.Address + ", " + room.City
		case room.Address != "":
			return room.Address
		case room.City != "":
			return room.City
		}
	}
	return fmt.Sprintf("Group %d", group.ID)
}

// GroupFound fans out to every user compatible with a new group: age in
// range, gender matching the room restriction, religion compatible,
// creator excluded.
func (n *Notifier) GroupFound(ctx context.Context, group *models.MatchGroup, room *models.Room) {
	users, err := n.users.FindCompatibleUsers(
		group.AgeRangeMin, group.AgeRangeMax,
		room.GenderPreference, group.ReligionPreference, group.CreatorID)
	if err != nil {
		n.logger.Warn("group_found fan-out query failed", "group_id", group.ID, "error", err)
		return
	}
	if len(users) == 0 {
		return
	}

	name := groupDisplayName(group, room)
	items := make([]models.Notification, len(users))
	for i, u := range users {
		items[i] = models.Notification{
			UserID:         u.ID,
			Type:           models.NotifGroupFound,
			Title:          "Compatible Group Found!",
			Message:        fmt.Sprintf("A roommate group near %s is looking for members. Join now!", name),
			RelatedGroupID: group.ID,
			RelatedRoomID:  room.ID,
			Data: map[string]interface{}{
				"cost_per_person": group.CostPerPerson,
				"spots_left":      group.SpotsLeft(),
			},
		}
	}
	if err := n.notifications.CreateNotifications(ctx, items); err != nil {
		n.logger.Warn("group_found dispatch failed", "group_id", group.ID, "recipients", len(items), "error", err)
	}
}

// MemberJoined notifies the group creator that someone joined.
func (n *Notifier) MemberJoined(ctx context.Context, group *models.MatchGroup, room *models.Room, newMemberName string, currentSize int) {
	name := groupDisplayName(group, room)
	notification := &models.Notification{
		UserID:         group.CreatorID,
		Type:           models.NotifMemberJoined,
		Title:          fmt.Sprintf("New Member Joined - %s", name),
		Message:        fmt.Sprintf("%s joined your group %q. %d/%d members.", newMemberName, name, currentSize, group.TargetSize),
		RelatedGroupID: group.ID,
		RelatedRoomID:  room.ID,
		Data: map[string]interface{}{
			"group_name":   name,
			"current_size": currentSize,
			"target_size":  group.TargetSize,
		},
	}
	if err := n.notifications.CreateNotification(ctx, notification); err != nil {
		n.logger.Warn("member_joined dispatch failed", "group_id", group.ID, "error", err)
	}
}

// MemberLeft notifies every remaining active member of a departure
// (voluntary or sweep-induced).
func (n *Notifier) MemberLeft(ctx context.Context, group *models.MatchGroup, room *models.Room, leftMemberName string, currentSize int) {
	members, err := n.groups.GetActiveMembers(group.ID)
	if err != nil {
		n.logger.Warn("member_left recipient query failed", "group_id", group.ID, "error", err)
		return
	}
	if len(members) == 0 {
		return
	}

	name := groupDisplayName(group, room)
	items := make([]models.Notification, len(members))
	for i, m := range members {
		items[i] = models.Notification{
			UserID:         m.UserID,
			Type:           models.NotifMemberLeft,
			Title:          fmt.Sprintf("Member Left - %s", name),
			Message:        fmt.Sprintf("%s left the group %q. %d/%d members.", leftMemberName, name, currentSize, group.TargetSize),
			RelatedGroupID: group.ID,
			RelatedRoomID:  room.ID,
			Data: map[string]interface{}{
				"group_name":   name,
				"current_size": currentSize,
				"target_size":  group.TargetSize,
			},
		}
	}
	if err := n.notifications.CreateNotifications(ctx, items); err != nil {
		n.logger.Warn("member_left dispatch failed", "group_id", group.ID, "recipients", len(items), "error", err)
	}
}

// GroupComplete sends the split completion messaging: a management notice
// to the creator, and a pay-now message with a routing payload and the
// local-time deadline to every other active member.
func (n *Notifier) GroupComplete(ctx context.Context, group *models.MatchGroup, room *models.Room, dueAt time.Time) {
	members, err := n.groups.GetActiveMembers(group.ID)
	if err != nil {
		n.logger.Warn("group_complete recipient query failed", "group_id", group.ID, "error", err)
		return
	}

	name := groupDisplayName(group, room)

	creatorNote := &models.Notification{
		UserID:         group.CreatorID,
		Type:           models.NotifGroupComplete,
		Title:          fmt.Sprintf("Group Complete - %s", name),
		Message:        fmt.Sprintf("Your group %q is now full and ready for booking!", name),
		RelatedGroupID: group.ID,
		RelatedRoomID:  room.ID,
		Data:           map[string]interface{}{"group_name": name},
	}
	if err := n.notifications.CreateNotification(ctx, creatorNote); err != nil {
		n.logger.Warn("group_complete creator dispatch failed", "group_id", group.ID, "error", err)
	}

	payData := map[string]interface{}{
		"screen": "bookings",
		"params": map[string]interface{}{
			"pay_required":    true,
			"pay_label":       "Pay now",
			"pay_url":         fmt.Sprintf("/payments/rooms/%d/groups/%d", group.RoomID, group.ID),
			"cost_per_person": group.CostPerPerson,
			"expires_at":      dueAt.Local().Format(localTimeLayout),
			"group_id":        group.ID,
			"room_id":         group.RoomID,
		},
		"group_name": name,
	}

	var items []models.Notification
	for _, m := range members {
		if m.UserID == group.CreatorID {
			continue
		}
		items = append(items, models.Notification{
			UserID:         m.UserID,
			Type:           models.NotifGroupComplete,
			Title:          fmt.Sprintf("Group Complete - %s", name),
			Message:        fmt.Sprintf("%q is full. Please complete your payment to proceed.", name),
			RelatedGroupID: group.ID,
			RelatedRoomID:  room.ID,
			Data:           payData,
		})
	}
	if err := n.notifications.CreateNotifications(ctx, items); err != nil {
		n.logger.Warn("group_complete member dispatch failed", "group_id", group.ID, "recipients", len(items), "error", err)
	}
}
