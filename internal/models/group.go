package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Group lifecycle statuses. Expired is terminal: a group that reaches
// zero active members never comes back.
const (
	GroupForming  = "forming"
	GroupComplete = "complete"
	GroupExpired  = "expired"
)

// Membership statuses.
const (
	MemberActive = "active"
	MemberLeft   = "left"
)

// Payment statuses on a membership.
const (
	PaymentNone    = "none"
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentExpired = "expired"
)

// ReligionAny matches every religion on either side of a comparison.
const ReligionAny = "any"

// MatchGroup is a set of tenants forming around one room. The age window
// and religion preference are fixed from the creator at creation time and
// inherited by everyone who joins.
type MatchGroup struct {
	gorm.Model    `json:"-"`
	ID            uint    `json:"id" gorm:"primaryKey"`
	RoomID        uint    `json:"room_id" gorm:"index"`
	CreatorID     uint    `json:"creator_id" gorm:"index"`
	TargetSize    int     `json:"target_size"`
	CurrentSize   int     `json:"current_size" gorm:"default:1"`
	CostPerPerson float64 `json:"cost_per_person"`
	CreatorAge    int     `json:"creator_age"`
	AgeRangeMin   int     `json:"age_range_min"`
	AgeRangeMax   int     `json:"age_range_max"`
	// "any" or a specific religion value
	ReligionPreference string `json:"religion_preference" gorm:"type:varchar(30);default:'any';index"`
	Status             string `json:"status" gorm:"type:varchar(20);default:'forming';index:idx_groups_status_active"`
	IsActive           bool   `json:"is_active" gorm:"default:true;index:idx_groups_status_active"`

	Room    *Room         `json:"room,omitempty" gorm:"foreignKey:RoomID"`
	Members []GroupMember `json:"members,omitempty" gorm:"foreignKey:GroupID"`
}

// AgeRange renders the inherited age window for display, e.g. "25-35".
func (g *MatchGroup) AgeRange() string {
	return fmt.Sprintf("%d-%d", g.AgeRangeMin, g.AgeRangeMax)
}

// SpotsLeft is how many active members the group still needs.
func (g *MatchGroup) SpotsLeft() int {
	return g.TargetSize - g.CurrentSize
}

// GroupMember is one user's membership in one group, carrying that
// member's payment state for the commitment window.
type GroupMember struct {
	gorm.Model    `json:"-"`
	ID            uint       `json:"id" gorm:"primaryKey"`
	GroupID       uint       `json:"group_id" gorm:"index"`
	UserID        uint       `json:"user_id" gorm:"index"`
	Status        string     `json:"status" gorm:"type:varchar(10);default:'active';index"`
	IsCreator     bool       `json:"is_creator" gorm:"default:false"`
	PaymentStatus string     `json:"payment_status" gorm:"type:varchar(10);default:'none'"`
	PaymentDueAt  *time.Time `json:"payment_due_at"`
	PaymentRef    string     `json:"-" gorm:"type:varchar(64);index"` // provider transaction reference

	User  *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Group *MatchGroup `json:"group,omitempty" gorm:"foreignKey:GroupID"`
}

// --- request DTOs ---

type SearchGroupsRequest struct {
	UserAge            int    `json:"user_age" validate:"omitempty,min=16,max=100"`
	DesiredGroupSize   int    `json:"desired_group_size" validate:"required,min=2,max=3"`
	ReligionPreference string `json:"religion_preference" validate:"omitempty,max=30"`
	GenderPreference   string `json:"gender_preference" validate:"omitempty,oneof=any male female mixed"`
}

type CreateGroupRequest struct {
	UserAge            int    `json:"user_age" validate:"omitempty,min=16,max=100"`
	DesiredGroupSize   int    `json:"desired_group_size" validate:"required"`
	ReligionPreference string `json:"religion_preference" validate:"omitempty,max=30"`
}

type JoinGroupRequest struct {
	UserAge            int    `json:"user_age" validate:"omitempty,min=16,max=100"`
	ReligionPreference string `json:"religion_preference" validate:"omitempty,max=30"`
}

// --- response shapes ---

// MemberSummary is the member shape exposed to other group members.
type MemberSummary struct {
	FirstName string `json:"first_name"`
	Age       int    `json:"age"`
	Religion  string `json:"religion"`
	IsCreator bool   `json:"is_creator"`
}

// GroupSummary annotates a group for search results.
type GroupSummary struct {
	ID                 uint            `json:"id"`
	CurrentSize        int             `json:"current_size"`
	TargetSize         int             `json:"target_size"`
	CostPerPerson      float64         `json:"cost_per_person"`
	AgeRange           string          `json:"age_range"`
	ReligionPreference string          `json:"religion_preference"`
	Members            []MemberSummary `json:"members"`
	SpotsLeft          int             `json:"spots_left"`
}

// SearchGroupsResult is the payload of a group search on a room.
type SearchGroupsResult struct {
	Room                    RoomSummary    `json:"room"`
	UserCriteria            SearchCriteria `json:"user_criteria"`
	RecommendedGroups       []GroupSummary `json:"recommended_groups"`
	OtherGroups             []GroupSummary `json:"other_groups"`
	CanCreateNew            bool           `json:"can_create_new"`
	CostPerPersonIfNewGroup float64        `json:"cost_per_person_if_new_group"`
}

type SearchCriteria struct {
	Age              int    `json:"age"`
	AgeRange         string `json:"age_range"`
	Religion         string `json:"religion"`
	DesiredGroupSize int    `json:"desired_group_size"`
}

// CreateGroupResult is returned after a group is created.
type CreateGroupResult struct {
	GroupID       uint    `json:"group_id"`
	CostPerPerson float64 `json:"cost_per_person"`
	SpotsLeft     int     `json:"spots_left"`
}

// JoinGroupResult is returned after a successful join.
type JoinGroupResult struct {
	GroupID       uint    `json:"group_id"`
	CurrentSize   int     `json:"current_size"`
	TargetSize    int     `json:"target_size"`
	CostPerPerson float64 `json:"cost_per_person"`
	IsComplete    bool    `json:"is_complete"`
}

// MyGroupView is one entry of a user's group listing, combining the
// membership's payment state with the group snapshot.
type MyGroupView struct {
	GroupID            uint            `json:"group_id"`
	Room               *RoomSummary    `json:"room"`
	CurrentSize        int             `json:"current_size"`
	TargetSize         int             `json:"target_size"`
	CostPerPerson      float64         `json:"cost_per_person"`
	Status             string          `json:"status"`
	PaymentRequired    bool            `json:"payment_required"`
	IsHistory          bool            `json:"is_history"`
	IsCreator          bool            `json:"is_creator"`
	ReligionPreference string          `json:"religion_preference"`
	AgeRange           string          `json:"age_range"`
	Members            []MemberSummary `json:"members"`
	SpotsLeft          int             `json:"spots_left"`
	PaymentDueAt       *time.Time      `json:"payment_due_at"`
	PaymentStatus      string          `json:"payment_status"`
	ExpiredAt          *time.Time      `json:"expired_at"`
}

// SweepResult reports what an expiry sweep changed.
type SweepResult struct {
	RemovedMembers int `json:"removed_members"`
	UpdatedGroups  int `json:"updated_groups"`
}
