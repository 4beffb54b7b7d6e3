package engine

import (
	"context"

	"github.com/hermon-k/roomshare/backend/internal/models"
)

// MarkPaid records a confirmed payment on a membership: paid, deadline
// cleared, nothing else. It is a pure overwrite, so the provider webhook
// and the client's success redirect can both call it safely.
func (e *Engine) MarkPaid(ctx context.Context, groupID, userID uint) error {
	member, err := e.groups.GetMembership(groupID, userID)
	if err != nil {
		return classify(err, "group membership")
	}
	member.PaymentStatus = models.PaymentPaid
	member.PaymentDueAt = nil
	if err := e.groups.UpdateMember(member); err != nil {
		return unavailable("failed to record payment", err)
	}
	e.logger.Info("payment recorded", "group_id", groupID, "user_id", userID)
	return nil
}

// MarkPaidByRef is the webhook variant: the membership is resolved from
// the provider transaction reference stored at checkout time.
func (e *Engine) MarkPaidByRef(ctx context.Context, paymentRef string) error {
	member, err := e.groups.GetMembershipByPaymentRef(paymentRef)
	if err != nil {
		return classify(err, "group membership")
	}
	return e.MarkPaid(ctx, member.GroupID, member.UserID)
}

// BeginCheckout validates that the caller owes a payment on the group and
// records the provider transaction reference on the membership. Only a
// pending member can check out: a payment window must be open, and a paid
// member has nothing left to pay. The actual provider call happens in the
// handler; the engine only owns membership state.
func (e *Engine) BeginCheckout(ctx context.Context, groupID, userID uint, paymentRef string) (amount float64, err error) {
	group, err := e.groups.GetGroupByID(groupID)
	if err != nil {
		return 0, classify(err, "group")
	}
	member, err := e.groups.GetActiveMembership(groupID, userID)
	if err != nil {
		return 0, classify(err, "group membership")
	}
	if group.CostPerPerson <= 0 {
		return 0, invalidArgument("group has no payable amount")
	}
	if member.PaymentStatus == models.PaymentPaid {
		return 0, conflict("payment already recorded for this group")
	}
	if member.PaymentStatus != models.PaymentPending {
		return 0, conflict("no payment is currently due for this group")
	}

	member.PaymentRef = paymentRef
	if err := e.groups.UpdateMember(member); err != nil {
		return 0, unavailable("failed to record checkout", err)
	}
	return group.CostPerPerson, nil
}
