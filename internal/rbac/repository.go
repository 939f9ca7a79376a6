package rbac

import "context"

// RepositoryPort defines data access for roles, permissions, and grants.
// All reads are plain lookups keyed by id; writes are idempotent upserts or
// keyed deletes, so concurrent use needs no coordination beyond the store's
// composite-unique constraints.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRoleByName(ctx context.Context, name string) (Role, error)
	CreateRole(ctx context.Context, name, description string) (Role, error)
	DeleteRole(ctx context.Context, id int64) (int64, error)

	ListPermissions(ctx context.Context) ([]Permission, error)
	EnsurePermission(ctx context.Context, name, description string) (Permission, error)
	SetRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error

	AssignRole(ctx context.Context, userID, roleID int64) error
	RevokeRole(ctx context.Context, userID, roleID int64) error
	GrantPermission(ctx context.Context, userID, permissionID int64) error
	RevokePermission(ctx context.Context, userID, permissionID int64) error

	UserRoleNames(ctx context.Context, userID int64) ([]string, error)
	UserRolePermissionNames(ctx context.Context, userID int64) ([]string, error)
	UserDirectPermissionNames(ctx context.Context, userID int64) ([]string, error)
}
