package model

import "time"

// Role is the job function of a staff member.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleWaiter  Role = "waiter"
	RoleKitchen Role = "kitchen"
	RoleCashier Role = "cashier"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleWaiter, RoleKitchen, RoleCashier:
		return true
	}
	return false
}

// TakesOrders reports whether r may submit orders.
func (r Role) TakesOrders() bool {
	return r == RoleAdmin || r == RoleWaiter
}

var roleTargets = map[Role][]OrderStatus{
	RoleKitchen: {OrderStatusPreparing, OrderStatusReady},
	RoleWaiter:  {OrderStatusServed, OrderStatusCancelled},
	RoleCashier: {OrderStatusPaid, OrderStatusCancelled},
}

// MayTransitionTo reports whether r is allowed to move an order into target.
func (r Role) MayTransitionTo(target OrderStatus) bool {
	if r == RoleAdmin {
		return target.Valid()
	}
	for _, allowed := range roleTargets[r] {
		if allowed == target {
			return true
		}
	}
	return false
}

var roleModules = map[Role]Module{
	RoleWaiter:  ModuleWaitStaff,
	RoleKitchen: ModuleKitchen,
	RoleCashier: ModuleCashier,
}

// MayJoin reports whether r is allowed to open a live channel for module m.
func (r Role) MayJoin(m Module) bool {
	if !m.Valid() {
		return false
	}
	if r == RoleAdmin {
		return true
	}
	return roleModules[r] == m
}

// Staff is an employee able to authenticate against the service.
type Staff struct {
	ID           int64
	Login        string
	Name         string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
