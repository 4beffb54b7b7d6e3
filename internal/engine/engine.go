// Package engine implements the group matching and lifecycle core:
// compatibility search, the group/membership state machine, the payment
// commitment window with its idempotent expiry sweep, and notification
// dispatch for lifecycle events.
package engine

import (
	"log/slog"
	"math"
	"time"

	"github.com/hermon-k/roomshare/backend/internal/models"
	"github.com/hermon-k/roomshare/backend/internal/repositories"
)

// DefaultPaymentWindow is how long each member of a completed group has
// to confirm payment before being expired.
const DefaultPaymentWindow = time.Hour

// ageWindow is added on both sides of the creator's age to form the
// group's inherited age range.
const ageWindow = 5

// Engine owns all group and membership state transitions. Handlers call
// it and translate its typed errors; repositories do the storage work.
type Engine struct {
	groups   repositories.GroupRepository
	users    repositories.UserRepository
	rooms    repositories.RoomRepository
	notifier *Notifier
	logger   *slog.Logger

	// PaymentWindow can be shortened in tests.
	PaymentWindow time.Duration
}

// New creates an Engine.
func New(groups repositories.GroupRepository, users repositories.UserRepository, rooms repositories.RoomRepository, notifier *Notifier, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		groups:        groups,
		users:         users,
		rooms:         rooms,
		notifier:      notifier,
		logger:        logger,
		PaymentWindow: DefaultPaymentWindow,
	}
}

// costPerPerson splits a rent across a group, rounded to the nearest unit.
func costPerPerson(monthlyRent float64, size int) float64 {
	return math.Round(monthlyRent / float64(size))
}

// groupStateForSize is the single authority for the group state machine.
// Given the freshly recomputed active-member count it returns the status
// and searchability the group must carry. Expired is terminal and is
// handled by callers before any mutation.
func groupStateForSize(g *models.MatchGroup, size int) (status string, isActive bool) {
	switch {
	case size <= 0:
		return models.GroupExpired, false
	case size >= g.TargetSize:
		return models.GroupComplete, false
	default:
		return models.GroupForming, true
	}
}

// resolveAge applies the missing-age fallback: use the profile age when
// set, otherwise persist the supplied one. Returns an InvalidArgument
// error when neither is available.
func (e *Engine) resolveAge(user *models.User, suppliedAge int) (int, error) {
	if user.Age > 0 {
		return user.Age, nil
	}
	if suppliedAge <= 0 {
		return 0, invalidArgument("age is required for roommate matching")
	}
	if err := e.users.UpdateUserAge(user.ID, suppliedAge); err != nil {
		return 0, unavailable("failed to save age", err)
	}
	user.Age = suppliedAge
	return suppliedAge, nil
}
