package engine

import (
	"context"
	"testing"
	"time"

	"github.com/hermon-k/roomshare/backend/internal/models"
)

func TestGroupFoundFanOut(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addRoom(1, 3000, models.GenderFemale)
	f.addUser(1, "Hermon", 30, models.GenderFemale, "christian")
	f.addUser(2, "Sara", 32, models.GenderFemale, "christian")  // compatible
	f.addUser(3, "Marta", 50, models.GenderFemale, "christian") // age out of range
	f.addUser(4, "Dawit", 30, models.GenderMale, "christian")   // wrong gender for the room
	f.addUser(5, "Amina", 30, models.GenderFemale, "muslim")    // religion mismatch

	_, err := f.eng.CreateGroup(ctx, 1, 1, models.CreateGroupRequest{
		DesiredGroupSize:   2,
		ReligionPreference: "christian",
	})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	found := f.notes.byType(models.NotifGroupFound)
	if len(found) != 1 || found[0].UserID != 2 {
		ids := make([]uint, len(found))
		for i, n := range found {
			ids[i] = n.UserID
		}
		t.Fatalf("group_found recipients = %v, want only the compatible user 2", ids)
	}
	if found[0].Data["spots_left"] != 1 {
		t.Errorf("spots_left = %v, want 1", found[0].Data["spots_left"])
	}
}

func TestMemberJoinedGoesToCreatorOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	gid := fill(t, f, 3)
	f.addUser(2, "Sara", 32, models.GenderFemale, "any")
	f.addUser(3, "Lily", 27, models.GenderFemale, "any")

	if _, err := f.eng.JoinGroup(ctx, gid, 2, models.JoinGroupRequest{}); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if _, err := f.eng.JoinGroup(ctx, gid, 3, models.JoinGroupRequest{}); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	joined := f.notes.byType(models.NotifMemberJoined)
	if len(joined) != 2 {
		t.Fatalf("member_joined count = %d, want one per join", len(joined))
	}
	for _, n := range joined {
		if n.UserID != 1 {
			t.Errorf("member_joined sent to user %d, want creator only", n.UserID)
		}
	}
}

func TestGroupCompleteSplitsMessaging(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	gid := fill(t, f, 2)
	f.addUser(2, "Sara", 32, models.GenderFemale, "any")

	before := time.Now()
	if _, err := f.eng.JoinGroup(ctx, gid, 2, models.JoinGroupRequest{}); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	complete := f.notes.byType(models.NotifGroupComplete)
	if len(complete) != 2 {
		t.Fatalf("group_complete count = %d, want creator note plus one pay message", len(complete))
	}

	var creatorNote, payNote *models.Notification
	for i := range complete {
		if complete[i].UserID == 1 {
			creatorNote = &complete[i]
		} else if complete[i].UserID == 2 {
			payNote = &complete[i]
		}
	}
	if creatorNote == nil || payNote == nil {
		t.Fatalf("recipients wrong: %+v", complete)
	}

	if _, ok := creatorNote.Data["params"]; ok {
		t.Error("creator note should carry no payment routing payload")
	}

	params, ok := payNote.Data["params"].(map[string]interface{})
	if !ok {
		t.Fatalf("pay message params missing: %+v", payNote.Data)
	}
	if params["pay_required"] != true {
		t.Errorf("pay_required = %v, want true", params["pay_required"])
	}
	if params["cost_per_person"] != 1500.0 {
		t.Errorf("cost_per_person = %v, want 1500", params["cost_per_person"])
	}

	expiresAt, ok := params["expires_at"].(string)
	if !ok {
		t.Fatalf("expires_at missing: %+v", params)
	}
	due, err := time.ParseInLocation(localTimeLayout, expiresAt, time.Local)
	if err != nil {
		t.Fatalf("expires_at %q not in the zone-free local layout: %v", expiresAt, err)
	}
	elapsed := due.Sub(before)
	if elapsed < time.Hour-time.Second || elapsed > time.Hour+time.Minute {
		t.Errorf("expires_at %v from join, want about one hour", elapsed)
	}
}
