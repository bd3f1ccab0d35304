package registry

import (
	"context"

	lerrors "github.com/invenia/lambdalayers/internal/errors"
)

// PermissionTarget selects who may read a published layer version. It is
// one of AccountTarget, OrganizationTarget, MyAccountTarget or
// MyOrganizationTarget.
type PermissionTarget interface {
	isPermissionTarget()
}

// AccountTarget grants a single account, or everyone when AccountID is "*".
type AccountTarget struct {
	AccountID string
}

// OrganizationTarget grants every account in an AWS Organization.
type OrganizationTarget struct {
	OrganizationID string
}

// MyAccountTarget grants the caller's own account.
type MyAccountTarget struct{}

// MyOrganizationTarget grants the caller's own organization.
type MyOrganizationTarget struct{}

func (AccountTarget) isPermissionTarget()        {}
func (OrganizationTarget) isPermissionTarget()   {}
func (MyAccountTarget) isPermissionTarget()      {}
func (MyOrganizationTarget) isPermissionTarget() {}

// Grant is a resolved permission: a principal and, for organization-wide
// grants, the organization that scopes it. Principal is always "*" when
// OrganizationID is set.
type Grant struct {
	Principal      string `json:"principal" yaml:"principal"`
	OrganizationID string `json:"organization_id,omitempty" yaml:"organization_id,omitempty"`
}

// TargetFromFlags maps the CLI permission flags to a target. An explicit
// organization outranks an account because organization grants always use
// the wildcard principal.
func TargetFromFlags(account, organization string, myAccount, myOrganization bool) (PermissionTarget, error) {
	switch {
	case myOrganization:
		return MyOrganizationTarget{}, nil
	case organization != "":
		return OrganizationTarget{OrganizationID: organization}, nil
	case myAccount:
		return MyAccountTarget{}, nil
	case account != "":
		return AccountTarget{AccountID: account}, nil
	default:
		return nil, lerrors.MissingPermissionTarget()
	}
}

// ResolvePermission turns a target into a Grant, asking identity for the
// caller's account or organization when the target refers to them.
func ResolvePermission(ctx context.Context, identity Identity, target PermissionTarget) (Grant, error) {
	var account, organization string

	switch t := target.(type) {
	case MyOrganizationTarget:
		org, err := identity.CallerOrganization(ctx)
		if err != nil {
			return Grant{}, lerrors.NewRegistryError("resolve_permission", "failed to look up caller organization", err)
		}
		organization = org
	case MyAccountTarget:
		acct, err := identity.CallerAccount(ctx)
		if err != nil {
			return Grant{}, lerrors.NewRegistryError("resolve_permission", "failed to look up caller account", err)
		}
		account = acct
	case OrganizationTarget:
		organization = t.OrganizationID
	case AccountTarget:
		account = t.AccountID
	}

	if organization != "" {
		account = AnyPrincipal
	}
	if account == "" {
		return Grant{}, lerrors.MissingPermissionTarget()
	}

	return Grant{Principal: account, OrganizationID: organization}, nil
}
