package repositories

import (
	"time"

	"github.com/hermon-k/roomshare/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GroupRepository defines the interface for match-group and membership
// data operations. Mutating lifecycle flows run inside Transact, where
// LockGroupByID serializes concurrent writers on the same group.
type GroupRepository interface {
	// Transact runs fn inside one database transaction; the repository
	// passed to fn is bound to that transaction.
	Transact(fn func(tx GroupRepository) error) error

	CreateGroupWithCreator(group *models.MatchGroup, creator *models.GroupMember) error
	GetGroupByID(id uint) (*models.MatchGroup, error)
	// LockGroupByID reads a group with a row lock (SELECT ... FOR UPDATE).
	// Only meaningful inside Transact.
	LockGroupByID(id uint) (*models.MatchGroup, error)
	UpdateGroup(group *models.MatchGroup) error
	// FindOpenGroupsByRoom returns searchable forming groups for a room
	// with members (and their users) preloaded.
	FindOpenGroupsByRoom(roomID uint) ([]models.MatchGroup, error)

	CreateMember(member *models.GroupMember) error
	UpdateMember(member *models.GroupMember) error
	GetActiveMembership(groupID, userID uint) (*models.GroupMember, error)
	GetMembership(groupID, userID uint) (*models.GroupMember, error)
	GetMembershipByPaymentRef(ref string) (*models.GroupMember, error)
	GetActiveMembers(groupID uint) ([]models.GroupMember, error)
	CountActiveMembers(groupID uint) (int, error)
	GetUserMemberships(userID uint) ([]models.GroupMember, error)

	// ExpireMembers marks the given memberships left+expired. The status
	// guard makes repeated sweeps idempotent: already-left rows are never
	// touched again. Returns the number of rows actually changed.
	ExpireMembers(ids []uint) (int64, error)
	// SetPaymentWindow stamps every active member of a group pending with
	// the given deadline.
	SetPaymentWindow(groupID uint, dueAt time.Time) error
	// ClearPaymentWindows voids the open payment obligation for a group's
	// active members. Recorded payments are left alone.
	ClearPaymentWindows(groupID uint) error
	// FindOverduePendingMembers selects active memberships whose payment
	// window has lapsed, optionally scoped to one group or one room.
	FindOverduePendingMembers(groupID, roomID *uint, now time.Time) ([]models.GroupMember, error)
}

// PostgresGroupRepository implements GroupRepository for PostgreSQL
type PostgresGroupRepository struct {
	db *gorm.DB
}

// NewPostgresGroupRepository creates a new PostgresGroupRepository
func NewPostgresGroupRepository(db *gorm.DB) *PostgresGroupRepository {
	return &PostgresGroupRepository{db: db}
}

// Transact runs fn with the repository re-bound to a transaction.
func (r *PostgresGroupRepository) Transact(fn func(tx GroupRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresGroupRepository{db: tx})
	})
}

// CreateGroupWithCreator inserts the group and its creator membership as
// one atomic unit.
func (r *PostgresGroupRepository) CreateGroupWithCreator(group *models.MatchGroup, creator *models.GroupMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		creator.GroupID = group.ID
		return tx.Create(creator).Error
	})
}

// GetGroupByID retrieves a group by ID
func (r *PostgresGroupRepository) GetGroupByID(id uint) (*models.MatchGroup, error) {
	var group models.MatchGroup
	if err := r.db.First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// LockGroupByID retrieves a group with a FOR UPDATE row lock
func (r *PostgresGroupRepository) LockGroupByID(id uint) (*models.MatchGroup, error) {
	var group models.MatchGroup
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// UpdateGroup persists a modified group
func (r *PostgresGroupRepository) UpdateGroup(group *models.MatchGroup) error {
	return r.db.Omit("Room", "Members").Save(group).Error
}

// FindOpenGroupsByRoom retrieves searchable forming groups for a room
func (r *PostgresGroupRepository) FindOpenGroupsByRoom(roomID uint) ([]models.MatchGroup, error) {
	var groups []models.MatchGroup
	err := r.db.
		Where("room_id = ? AND status = ? AND is_active = ? AND current_size < target_size",
			roomID, models.GroupForming, true).
		Preload("Members", "status = ?", models.MemberActive).
		Preload("Members.User").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// CreateMember inserts a new membership
func (r *PostgresGroupRepository) CreateMember(member *models.GroupMember) error {
	return r.db.Create(member).Error
}

// UpdateMember persists a modified membership
func (r *PostgresGroupRepository) UpdateMember(member *models.GroupMember) error {
	return r.db.Omit("User", "Group").Save(member).Error
}

// GetActiveMembership retrieves a user's active membership in a group
func (r *PostgresGroupRepository) GetActiveMembership(groupID, userID uint) (*models.GroupMember, error) {
	var member models.GroupMember
	err := r.db.Where("group_id = ? AND user_id = ? AND status = ?",
		groupID, userID, models.MemberActive).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GetMembership retrieves a user's membership in a group regardless of status
func (r *PostgresGroupRepository) GetMembership(groupID, userID uint) (*models.GroupMember, error) {
	var member models.GroupMember
	err := r.db.Where("group_id = ? AND user_id = ?", groupID, userID).
		Order("created_at DESC").First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GetMembershipByPaymentRef resolves a membership from a provider
// transaction reference (webhook path)
func (r *PostgresGroupRepository) GetMembershipByPaymentRef(ref string) (*models.GroupMember, error) {
	var member models.GroupMember
	if err := r.db.Where("payment_ref = ?", ref).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// GetActiveMembers retrieves all active members of a group with users preloaded
func (r *PostgresGroupRepository) GetActiveMembers(groupID uint) ([]models.GroupMember, error) {
	var members []models.GroupMember
	err := r.db.Where("group_id = ? AND status = ?", groupID, models.MemberActive).
		Preload("User").Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// CountActiveMembers counts active memberships for a group. This is the
// authoritative size; the cached column is only ever written from it.
func (r *PostgresGroupRepository) CountActiveMembers(groupID uint) (int, error) {
	var count int64
	err := r.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND status = ?", groupID, models.MemberActive).
		Count(&count).Error
	return int(count), err
}

// GetUserMemberships retrieves a user's memberships with group, room and
// fellow members preloaded
func (r *PostgresGroupRepository) GetUserMemberships(userID uint) ([]models.GroupMember, error) {
	var memberships []models.GroupMember
	err := r.db.Where("user_id = ?", userID).
		Preload("Group").
		Preload("Group.Room").
		Preload("Group.Members", "status = ?", models.MemberActive).
		Preload("Group.Members.User").
		Order("created_at DESC").
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}
	return memberships, nil
}

// ExpireMembers marks overdue memberships left+expired (status-guarded)
func (r *PostgresGroupRepository) ExpireMembers(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.Model(&models.GroupMember{}).
		Where("id IN ? AND status = ?", ids, models.MemberActive).
		Updates(map[string]interface{}{
			"status":         models.MemberLeft,
			"payment_status": models.PaymentExpired,
		})
	return res.RowsAffected, res.Error
}

// SetPaymentWindow stamps all active members of a group pending with a deadline
func (r *PostgresGroupRepository) SetPaymentWindow(groupID uint, dueAt time.Time) error {
	return r.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND status = ?", groupID, models.MemberActive).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentPending,
			"payment_due_at": dueAt,
		}).Error
}

// ClearPaymentWindows voids open payment obligations for a group's active members
func (r *PostgresGroupRepository) ClearPaymentWindows(groupID uint) error {
	return r.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND status = ? AND payment_status = ?",
			groupID, models.MemberActive, models.PaymentPending).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentNone,
			"payment_due_at": nil,
		}).Error
}

// FindOverduePendingMembers selects active+pending memberships past their deadline
func (r *PostgresGroupRepository) FindOverduePendingMembers(groupID, roomID *uint, now time.Time) ([]models.GroupMember, error) {
	q := r.db.Model(&models.GroupMember{}).
		Where("group_members.status = ? AND group_members.payment_status = ? AND group_members.payment_due_at < ?",
			models.MemberActive, models.PaymentPending, now)
	if groupID != nil {
		q = q.Where("group_members.group_id = ?", *groupID)
	}
	if roomID != nil {
		q = q.Joins("JOIN match_groups ON match_groups.id = group_members.group_id").
			Where("match_groups.room_id = ?", *roomID)
	}

	var members []models.GroupMember
	if err := q.Preload("User").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}
