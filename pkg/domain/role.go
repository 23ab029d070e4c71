package domain

// Role is the authority a caller holds over a ledger record. Every mutating
// operation resolves the caller's role explicitly at its top, so each
// component's authorization rule stays auditable in one place.
type Role string

const (
	RolePlatformOwner Role = "platform_owner"
	RoleIssuer        Role = "issuer"
	RoleBeneficiary   Role = "beneficiary"
	RoleNone          Role = "none"
)

// ResolveRole classifies a caller against the platform owner and the record's
// business owner (asset issuer or sale beneficiary). The platform owner wins
// even when it also happens to be the business owner.
func ResolveRole(caller, platformOwner, businessOwner Address, businessRole Role) Role {
	if caller == platformOwner {
		return RolePlatformOwner
	}
	if caller == businessOwner {
		return businessRole
	}
	return RoleNone
}
