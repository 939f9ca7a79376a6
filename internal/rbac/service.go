package rbac

import (
	"context"
	"errors"
	"sort"
	"strings"

	"golang.org/x/sync/singleflight"
)

// ErrNotFound indicates that the requested record does not exist.
var ErrNotFound = errors.New("rbac: not found")

// Service orchestrates role/permission administration and resolution.
type Service struct {
	repo  RepositoryPort
	cache *ResolveCache
	group singleflight.Group
}

// NewService constructs a Service. cache may be nil, in which case every
// resolution hits the repository.
func NewService(repo RepositoryPort, cache *ResolveCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Resolve computes the effective grants for a user: the names of the user's
// roles, and the union of role-derived and directly granted permissions.
// It is read-only and idempotent; concurrent resolutions for the same user
// collapse into one repository round trip.
func (s *Service) Resolve(ctx context.Context, userID int64) (Grants, error) {
	if s.cache != nil {
		if grants, ok := s.cache.Get(ctx, userID); ok {
			return grants, nil
		}
	}

	v, err, _ := s.group.Do(resolveKey(userID), func() (any, error) {
		return s.resolve(ctx, userID)
	})
	if err != nil {
		return Grants{}, err
	}
	grants := v.(Grants)

	if s.cache != nil {
		s.cache.Put(ctx, userID, grants)
	}
	return grants, nil
}

func (s *Service) resolve(ctx context.Context, userID int64) (Grants, error) {
	roles, err := s.repo.UserRoleNames(ctx, userID)
	if err != nil {
		return Grants{}, err
	}
	viaRoles, err := s.repo.UserRolePermissionNames(ctx, userID)
	if err != nil {
		return Grants{}, err
	}
	direct, err := s.repo.UserDirectPermissionNames(ctx, userID)
	if err != nil {
		return Grants{}, err
	}

	seen := make(map[string]struct{}, len(viaRoles)+len(direct))
	perms := make([]string, 0, len(viaRoles)+len(direct))
	for _, name := range append(viaRoles, direct...) {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		perms = append(perms, name)
	}
	sort.Strings(perms)

	if roles == nil {
		roles = []string{}
	}
	return Grants{Roles: roles, Permissions: perms}, nil
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// GetRoleByName fetches a role by its unique name.
func (s *Service) GetRoleByName(ctx context.Context, name string) (Role, error) {
	role, err := s.repo.GetRoleByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return Role{}, err
	}
	return role, nil
}

// CreateRole inserts a new role.
func (s *Service) CreateRole(ctx context.Context, name, description string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, errors.New("rbac: role name required")
	}
	return s.repo.CreateRole(ctx, name, strings.TrimSpace(description))
}

// DeleteRole removes a role by ID. Join rows cascade in the store, so every
// user holding the role simply loses it. Returns ErrNotFound if nothing was
// deleted.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	rows, err := s.repo.DeleteRole(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	if s.cache != nil {
		s.cache.InvalidateAll(ctx)
	}
	return nil
}

// ListPermissions returns all permissions.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

// EnsurePermission upserts a permission ensuring description is stored.
func (s *Service) EnsurePermission(ctx context.Context, name, description string) (Permission, error) {
	return s.repo.EnsurePermission(ctx, strings.TrimSpace(name), strings.TrimSpace(description))
}

// SetRolePermissions replaces permissions for a role.
func (s *Service) SetRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	if err := s.repo.SetRolePermissions(ctx, roleID, permissionIDs); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.InvalidateAll(ctx)
	}
	return nil
}

// AssignRole assigns a role to the given user. Idempotent.
func (s *Service) AssignRole(ctx context.Context, userID, roleID int64) error {
	if err := s.repo.AssignRole(ctx, userID, roleID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// RevokeRole removes a role from a user.
func (s *Service) RevokeRole(ctx context.Context, userID, roleID int64) error {
	if err := s.repo.RevokeRole(ctx, userID, roleID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// GrantPermission records a direct grant for a user. Idempotent.
func (s *Service) GrantPermission(ctx context.Context, userID, permissionID int64) error {
	if err := s.repo.GrantPermission(ctx, userID, permissionID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// RevokePermission removes a direct grant.
func (s *Service) RevokePermission(ctx context.Context, userID, permissionID int64) error {
	if err := s.repo.RevokePermission(ctx, userID, permissionID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, userID int64) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
}
