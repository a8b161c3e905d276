// Package policy centralizes role-based authorization. Handlers and services
// ask Can(actor, action, ownership) instead of comparing role strings inline,
// so every access rule lives in one testable table.
package policy

import "food-delivery-backend/internal/models"

// Action names an operation an actor may attempt.
type Action string

const (
	ActionViewOrder            Action = "order:view"
	ActionUpdateOrderStatus    Action = "order:update-status"
	ActionForcePaymentStatus   Action = "order:force-payment-status"
	ActionListRestaurantOrders Action = "order:list-restaurant"
	ActionListDeliveries       Action = "order:list-deliveries"
	ActionDeleteReview         Action = "review:delete"
)

// Actor is the authenticated principal attempting an action.
type Actor struct {
	UserID string
	Role   models.Role
}

// Can reports whether the actor may perform the action. owns indicates
// whether the actor owns the target resource (e.g. the order's user_id or
// the review's user_id matches the actor).
func Can(actor Actor, action Action, owns bool) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}
	switch action {
	case ActionViewOrder, ActionDeleteReview:
		return owns
	case ActionUpdateOrderStatus:
		// Any authenticated actor may drive the guarded status update;
		// the lifecycle guard itself decides legality of the transition.
		return actor.UserID != ""
	case ActionListDeliveries:
		return actor.Role == models.RoleRestaurateur
	case ActionForcePaymentStatus, ActionListRestaurantOrders:
		return false // admin only
	default:
		return false
	}
}
