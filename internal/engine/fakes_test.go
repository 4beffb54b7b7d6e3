package engine

import (
	"context"
	"sort"
	"time"

	"github.com/hermon-k/roomshare/backend/internal/models"
	"github.com/hermon-k/roomshare/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// In-memory repository fakes. They mirror the query semantics of the
// Postgres/Mongo implementations closely enough for lifecycle tests:
// status guards, preloads and the authoritative active-member count.

type fakeUserRepo struct {
	users map[uint]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User)}
}

func (r *fakeUserRepo) CreateUser(user *models.User) error {
	if user.ID == 0 {
		user.ID = uint(len(r.users) + 1)
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetUserByID(id uint) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetUserByEmail(email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetUserByFirebaseUID(uid string) (*models.User, error) {
	for _, u := range r.users {
		if u.FirebaseUID == uid {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) UpdateUser(user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdateUserAge(id uint, age int) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Age = age
	return nil
}

func (r *fakeUserRepo) FindCompatibleUsers(ageMin, ageMax int, genderRestriction, religion string, excludeID uint) ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		if u.ID == excludeID || u.Age < ageMin || u.Age > ageMax {
			continue
		}
		if genderRestriction != models.GenderMixed && u.Gender != genderRestriction {
			continue
		}
		if religion != models.ReligionAny && u.Religion != religion && u.Religion != models.ReligionAny {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeRoomRepo struct {
	rooms map[uint]*models.Room
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[uint]*models.Room)}
}

func (r *fakeRoomRepo) CreateRoom(room *models.Room) error {
	if room.ID == 0 {
		room.ID = uint(len(r.rooms) + 1)
	}
	cp := *room
	r.rooms[room.ID] = &cp
	return nil
}

func (r *fakeRoomRepo) GetRoomByID(id uint) (*models.Room, error) {
	room, ok := r.rooms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *room
	return &cp, nil
}

func (r *fakeRoomRepo) GetAvailableRooms() ([]models.Room, error) {
	var out []models.Room
	for _, room := range r.rooms {
		if room.IsAvailable && room.IsApproved {
			out = append(out, *room)
		}
	}
	return out, nil
}

func (r *fakeRoomRepo) GetRoomsByLandlord(landlordID uint) ([]models.Room, error) {
	var out []models.Room
	for _, room := range r.rooms {
		if room.LandlordID == landlordID {
			out = append(out, *room)
		}
	}
	return out, nil
}

func (r *fakeRoomRepo) UpdateRoom(room *models.Room) error {
	cp := *room
	r.rooms[room.ID] = &cp
	return nil
}

type fakeGroupRepo struct {
	groups     map[uint]*models.MatchGroup
	members    map[uint]*models.GroupMember
	users      *fakeUserRepo
	rooms      *fakeRoomRepo
	nextGroup  uint
	nextMember uint

	// membershipErr, when set, fails GetActiveMembership before any lookup.
	membershipErr error
	// lockOrder records every LockGroupByID call in sequence.
	lockOrder []uint
}

func newFakeGroupRepo(users *fakeUserRepo, rooms *fakeRoomRepo) *fakeGroupRepo {
	return &fakeGroupRepo{
		groups:  make(map[uint]*models.MatchGroup),
		members: make(map[uint]*models.GroupMember),
		users:   users,
		rooms:   rooms,
	}
}

func (r *fakeGroupRepo) Transact(fn func(tx repositories.GroupRepository) error) error {
	return fn(r)
}

func (r *fakeGroupRepo) CreateGroupWithCreator(group *models.MatchGroup, creator *models.GroupMember) error {
	r.nextGroup++
	group.ID = r.nextGroup
	cp := *group
	cp.Members = nil
	r.groups[group.ID] = &cp

	creator.GroupID = group.ID
	return r.CreateMember(creator)
}

func (r *fakeGroupRepo) GetGroupByID(id uint) (*models.MatchGroup, error) {
	g, ok := r.groups[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *fakeGroupRepo) LockGroupByID(id uint) (*models.MatchGroup, error) {
	r.lockOrder = append(r.lockOrder, id)
	return r.GetGroupByID(id)
}

func (r *fakeGroupRepo) UpdateGroup(group *models.MatchGroup) error {
	if _, ok := r.groups[group.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *group
	cp.Room = nil
	cp.Members = nil
	r.groups[group.ID] = &cp
	return nil
}

func (r *fakeGroupRepo) FindOpenGroupsByRoom(roomID uint) ([]models.MatchGroup, error) {
	var out []models.MatchGroup
	for _, g := range r.groups {
		if g.RoomID != roomID || g.Status != models.GroupForming || !g.IsActive || g.CurrentSize >= g.TargetSize {
			continue
		}
		cp := *g
		cp.Members = r.activeMembers(g.ID)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeGroupRepo) CreateMember(member *models.GroupMember) error {
	r.nextMember++
	member.ID = r.nextMember
	cp := *member
	cp.User = nil
	cp.Group = nil
	r.members[member.ID] = &cp
	return nil
}

func (r *fakeGroupRepo) UpdateMember(member *models.GroupMember) error {
	if _, ok := r.members[member.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *member
	cp.User = nil
	cp.Group = nil
	r.members[member.ID] = &cp
	return nil
}

func (r *fakeGroupRepo) GetActiveMembership(groupID, userID uint) (*models.GroupMember, error) {
	if r.membershipErr != nil {
		return nil, r.membershipErr
	}
	for _, m := range r.sortedMembers() {
		if m.GroupID == groupID && m.UserID == userID && m.Status == models.MemberActive {
			cp := *m
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeGroupRepo) GetMembership(groupID, userID uint) (*models.GroupMember, error) {
	sorted := r.sortedMembers()
	for i := len(sorted) - 1; i >= 0; i-- {
		m := sorted[i]
		if m.GroupID == groupID && m.UserID == userID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeGroupRepo) GetMembershipByPaymentRef(ref string) (*models.GroupMember, error) {
	if ref == "" {
		return nil, gorm.ErrRecordNotFound
	}
	for _, m := range r.sortedMembers() {
		if m.PaymentRef == ref {
			cp := *m
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeGroupRepo) GetActiveMembers(groupID uint) ([]models.GroupMember, error) {
	return r.activeMembers(groupID), nil
}

func (r *fakeGroupRepo) CountActiveMembers(groupID uint) (int, error) {
	return len(r.activeMembers(groupID)), nil
}

func (r *fakeGroupRepo) GetUserMemberships(userID uint) ([]models.GroupMember, error) {
	var out []models.GroupMember
	sorted := r.sortedMembers()
	for i := len(sorted) - 1; i >= 0; i-- {
		m := sorted[i]
		if m.UserID != userID {
			continue
		}
		cp := *m
		if g, ok := r.groups[m.GroupID]; ok {
			gcp := *g
			gcp.Members = r.activeMembers(g.ID)
			if room, ok := r.rooms.rooms[g.RoomID]; ok {
				rcp := *room
				gcp.Room = &rcp
			}
			cp.Group = &gcp
		}
		out = append(out, cp)
	}
	return out, nil
}

func (r *fakeGroupRepo) ExpireMembers(ids []uint) (int64, error) {
	var n int64
	for _, id := range ids {
		m, ok := r.members[id]
		if !ok || m.Status != models.MemberActive {
			continue
		}
		m.Status = models.MemberLeft
		m.PaymentStatus = models.PaymentExpired
		n++
	}
	return n, nil
}

func (r *fakeGroupRepo) SetPaymentWindow(groupID uint, dueAt time.Time) error {
	for _, m := range r.members {
		if m.GroupID == groupID && m.Status == models.MemberActive {
			due := dueAt
			m.PaymentStatus = models.PaymentPending
			m.PaymentDueAt = &due
		}
	}
	return nil
}

func (r *fakeGroupRepo) ClearPaymentWindows(groupID uint) error {
	for _, m := range r.members {
		if m.GroupID == groupID && m.Status == models.MemberActive && m.PaymentStatus == models.PaymentPending {
			m.PaymentStatus = models.PaymentNone
			m.PaymentDueAt = nil
		}
	}
	return nil
}

func (r *fakeGroupRepo) FindOverduePendingMembers(groupID, roomID *uint, now time.Time) ([]models.GroupMember, error) {
	var out []models.GroupMember
	for _, m := range r.sortedMembers() {
		if m.Status != models.MemberActive || m.PaymentStatus != models.PaymentPending {
			continue
		}
		if m.PaymentDueAt == nil || !m.PaymentDueAt.Before(now) {
			continue
		}
		if groupID != nil && m.GroupID != *groupID {
			continue
		}
		if roomID != nil {
			g, ok := r.groups[m.GroupID]
			if !ok || g.RoomID != *roomID {
				continue
			}
		}
		cp := *m
		if u, ok := r.users.users[m.UserID]; ok {
			ucp := *u
			cp.User = &ucp
		}
		out = append(out, cp)
	}
	return out, nil
}

func (r *fakeGroupRepo) activeMembers(groupID uint) []models.GroupMember {
	var out []models.GroupMember
	for _, m := range r.sortedMembers() {
		if m.GroupID == groupID && m.Status == models.MemberActive {
			cp := *m
			if u, ok := r.users.users[m.UserID]; ok {
				ucp := *u
				cp.User = &ucp
			}
			out = append(out, cp)
		}
	}
	return out
}

func (r *fakeGroupRepo) sortedMembers() []*models.GroupMember {
	out := make([]*models.GroupMember, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeNotificationRepo struct {
	records []models.Notification
}

func (r *fakeNotificationRepo) CreateNotification(ctx context.Context, n *models.Notification) error {
	n.CreatedAt = time.Now()
	r.records = append(r.records, *n)
	return nil
}

func (r *fakeNotificationRepo) CreateNotifications(ctx context.Context, ns []models.Notification) error {
	for i := range ns {
		ns[i].CreatedAt = time.Now()
	}
	r.records = append(r.records, ns...)
	return nil
}

func (r *fakeNotificationRepo) GetByUserID(ctx context.Context, userID uint, skip, limit int64) ([]models.Notification, int64, error) {
	var out []models.Notification
	for _, n := range r.records {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeNotificationRepo) GetUnreadCount(ctx context.Context, userID uint) (int64, error) {
	var n int64
	for _, rec := range r.records {
		if rec.UserID == userID && !rec.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) MarkAsRead(ctx context.Context, id string, userID uint) error {
	for i := range r.records {
		if r.records[i].ID.Hex() == id && r.records[i].UserID == userID {
			r.records[i].IsRead = true
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (r *fakeNotificationRepo) MarkAllAsRead(ctx context.Context, userID uint) error {
	for i := range r.records {
		if r.records[i].UserID == userID {
			r.records[i].IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) byType(typ string) []models.Notification {
	var out []models.Notification
	for _, n := range r.records {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

// fixture wires an engine over the fakes.
type fixture struct {
	users  *fakeUserRepo
	rooms  *fakeRoomRepo
	groups *fakeGroupRepo
	notes  *fakeNotificationRepo
	eng    *Engine
}

func newFixture() *fixture {
	users := newFakeUserRepo()
	rooms := newFakeRoomRepo()
	groups := newFakeGroupRepo(users, rooms)
	notes := &fakeNotificationRepo{}
	notifier := NewNotifier(notes, users, groups, nil)
	return &fixture{
		users:  users,
		rooms:  rooms,
		groups: groups,
		notes:  notes,
		eng:    New(groups, users, rooms, notifier, nil),
	}
}

func (f *fixture) addUser(id uint, name string, age int, gender, religion string) *models.User {
	u := &models.User{FirstName: name, Age: age, Gender: gender, Religion: religion}
	u.ID = id
	f.users.users[id] = u
	return u
}

func (f *fixture) addRoom(id uint, rent float64, gender string) *models.Room {
	room := &models.Room{
		MonthlyRent:      rent,
		GenderPreference: gender,
		Address:          "Bole Road",
		City:             "Addis Ababa",
		IsAvailable:      true,
		IsApproved:       true,
	}
	room.ID = id
	f.rooms.rooms[id] = room
	return room
}
