package shared

// Role identifies who is performing an operation. The core never
// authenticates; the HTTP layer extracts the verified identity from the
// request and passes it down as an Actor.
type Role string

const (
	RoleCustomer Role = "customer"
	RolePartner  Role = "partner"
	RoleAdmin    Role = "admin"
	RoleShipper  Role = "shipper"
	RoleSystem   Role = "system"
)

// Actor is the verified identity attached to every state-changing operation.
type Actor struct {
	UserID string
	Role   Role
	// ShopID is set for partner actors only.
	ShopID string
}

// SystemActor is used for bus-driven and scheduled operations.
func SystemActor() Actor {
	return Actor{UserID: "system", Role: RoleSystem}
}

// IsAdmin reports whether the actor bypasses ownership checks.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin || a.Role == RoleSystem
}
