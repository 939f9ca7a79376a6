package rbac

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardgate/wardgate/internal/shared"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type pair struct{ a, b int64 }

type mockRepository struct {
	roles       map[int64]Role
	permissions map[int64]Permission
	nextRoleID  int64
	nextPermID  int64

	userRoles map[pair]struct{} // (userID, roleID)
	rolePerms map[pair]struct{} // (roleID, permissionID)
	userPerms map[pair]struct{} // (userID, permissionID)

	resolveCalls int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		roles:       make(map[int64]Role),
		permissions: make(map[int64]Permission),
		nextRoleID:  1,
		nextPermID:  1,
		userRoles:   make(map[pair]struct{}),
		rolePerms:   make(map[pair]struct{}),
		userPerms:   make(map[pair]struct{}),
	}
}

func (m *mockRepository) ListRoles(ctx context.Context) ([]Role, error) {
	out := make([]Role, 0, len(m.roles))
	for _, r := range m.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockRepository) GetRoleByName(ctx context.Context, name string) (Role, error) {
	for _, r := range m.roles {
		if r.Name == name {
			return r, nil
		}
	}
	return Role{}, shared.ErrNotFound
}

func (m *mockRepository) CreateRole(ctx context.Context, name, description string) (Role, error) {
	for _, r := range m.roles {
		if r.Name == name {
			return Role{}, shared.ErrDuplicate
		}
	}
	role := Role{ID: m.nextRoleID, Name: name, Description: description, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.roles[role.ID] = role
	m.nextRoleID++
	return role, nil
}

func (m *mockRepository) DeleteRole(ctx context.Context, id int64) (int64, error) {
	if _, ok := m.roles[id]; !ok {
		return 0, nil
	}
	delete(m.roles, id)
	// Cascade like the schema's ON DELETE CASCADE.
	for p := range m.userRoles {
		if p.b == id {
			delete(m.userRoles, p)
		}
	}
	for p := range m.rolePerms {
		if p.a == id {
			delete(m.rolePerms, p)
		}
	}
	return 1, nil
}

func (m *mockRepository) ListPermissions(ctx context.Context) ([]Permission, error) {
	out := make([]Permission, 0, len(m.permissions))
	for _, p := range m.permissions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockRepository) EnsurePermission(ctx context.Context, name, description string) (Permission, error) {
	for id, p := range m.permissions {
		if p.Name == name {
			p.Description = description
			m.permissions[id] = p
			return p, nil
		}
	}
	perm := Permission{ID: m.nextPermID, Name: name, Description: description}
	m.permissions[perm.ID] = perm
	m.nextPermID++
	return perm, nil
}

func (m *mockRepository) SetRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	for p := range m.rolePerms {
		if p.a == roleID {
			delete(m.rolePerms, p)
		}
	}
	for _, id := range permissionIDs {
		m.rolePerms[pair{roleID, id}] = struct{}{}
	}
	return nil
}

func (m *mockRepository) AssignRole(ctx context.Context, userID, roleID int64) error {
	m.userRoles[pair{userID, roleID}] = struct{}{}
	return nil
}

func (m *mockRepository) RevokeRole(ctx context.Context, userID, roleID int64) error {
	delete(m.userRoles, pair{userID, roleID})
	return nil
}

func (m *mockRepository) GrantPermission(ctx context.Context, userID, permissionID int64) error {
	m.userPerms[pair{userID, permissionID}] = struct{}{}
	return nil
}

func (m *mockRepository) RevokePermission(ctx context.Context, userID, permissionID int64) error {
	delete(m.userPerms, pair{userID, permissionID})
	return nil
}

func (m *mockRepository) UserRoleNames(ctx context.Context, userID int64) ([]string, error) {
	m.resolveCalls++
	var names []string
	for p := range m.userRoles {
		if p.a == userID {
			names = append(names, m.roles[p.b].Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *mockRepository) UserRolePermissionNames(ctx context.Context, userID int64) ([]string, error) {
	seen := make(map[string]struct{})
	var names []string
	for ur := range m.userRoles {
		if ur.a != userID {
			continue
		}
		for rp := range m.rolePerms {
			if rp.a != ur.b {
				continue
			}
			name := m.permissions[rp.b].Name
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				names = append(names, name)
			}
		}
	}
	return names, nil
}

func (m *mockRepository) UserDirectPermissionNames(ctx context.Context, userID int64) ([]string, error) {
	var names []string
	for p := range m.userPerms {
		if p.a == userID {
			names = append(names, m.permissions[p.b].Name)
		}
	}
	return names, nil
}

var _ RepositoryPort = (*mockRepository)(nil)

// ============================================================================
// FIXTURE
// ============================================================================

func seedHospital(t *testing.T, repo *mockRepository) (doctorRole, nurseRole Role, perms map[string]Permission) {
	t.Helper()
	ctx := context.Background()

	perms = make(map[string]Permission)
	for _, name := range []string{"read_patient_record", "view_lab_results", "discharge_patient", "view_billing_info"} {
		p, err := repo.EnsurePermission(ctx, name, name)
		require.NoError(t, err)
		perms[name] = p
	}

	var err error
	doctorRole, err = repo.CreateRole(ctx, "doctor", "Medical Doctor")
	require.NoError(t, err)
	nurseRole, err = repo.CreateRole(ctx, "nurse", "Registered Nurse")
	require.NoError(t, err)

	require.NoError(t, repo.SetRolePermissions(ctx, doctorRole.ID, []int64{
		perms["read_patient_record"].ID, perms["view_lab_results"].ID, perms["discharge_patient"].ID,
	}))
	require.NoError(t, repo.SetRolePermissions(ctx, nurseRole.ID, []int64{
		perms["read_patient_record"].ID, perms["view_lab_results"].ID,
	}))
	return doctorRole, nurseRole, perms
}

// ============================================================================
// TESTS
// ============================================================================

func TestResolveUnionOfRoleAndDirectGrants(t *testing.T) {
	repo := newMockRepository()
	doctor, nurse, perms := seedHospital(t, repo)
	svc := NewService(repo, nil)
	ctx := context.Background()

	const userID = int64(10)
	require.NoError(t, svc.AssignRole(ctx, userID, doctor.ID))
	require.NoError(t, svc.AssignRole(ctx, userID, nurse.ID))
	require.NoError(t, svc.GrantPermission(ctx, userID, perms["view_billing_info"].ID))

	grants, err := svc.Resolve(ctx, userID)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"doctor", "nurse"}, grants.Roles)
	// Exactly the union of role-derived and direct grants, deduplicated.
	assert.ElementsMatch(t, []string{
		"read_patient_record", "view_lab_results", "discharge_patient", "view_billing_info",
	}, grants.Permissions)
}

func TestResolveDirectGrantOverlappingRoleGrantDeduplicates(t *testing.T) {
	repo := newMockRepository()
	_, nurse, perms := seedHospital(t, repo)
	svc := NewService(repo, nil)
	ctx := context.Background()

	const userID = int64(11)
	require.NoError(t, svc.AssignRole(ctx, userID, nurse.ID))
	require.NoError(t, svc.GrantPermission(ctx, userID, perms["view_lab_results"].ID))

	grants, err := svc.Resolve(ctx, userID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"read_patient_record", "view_lab_results"}, grants.Permissions)
}

func TestResolveUserWithoutGrants(t *testing.T) {
	repo := newMockRepository()
	seedHospital(t, repo)
	svc := NewService(repo, nil)

	grants, err := svc.Resolve(context.Background(), 999)
	require.NoError(t, err)
	assert.Empty(t, grants.Roles)
	assert.Empty(t, grants.Permissions)
}

func TestAssignRoleIsIdempotent(t *testing.T) {
	repo := newMockRepository()
	doctor, _, _ := seedHospital(t, repo)
	svc := NewService(repo, nil)
	ctx := context.Background()

	const userID = int64(12)
	require.NoError(t, svc.AssignRole(ctx, userID, doctor.ID))
	require.NoError(t, svc.AssignRole(ctx, userID, doctor.ID))

	grants, err := svc.Resolve(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"doctor"}, grants.Roles)
}

func TestDeleteRoleCascadesOutOfResolution(t *testing.T) {
	repo := newMockRepository()
	doctor, _, _ := seedHospital(t, repo)
	svc := NewService(repo, nil)
	ctx := context.Background()

	const userID = int64(13)
	require.NoError(t, svc.AssignRole(ctx, userID, doctor.ID))
	require.NoError(t, svc.DeleteRole(ctx, doctor.ID))

	grants, err := svc.Resolve(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, grants.Roles)
	assert.Empty(t, grants.Permissions)

	assert.ErrorIs(t, svc.DeleteRole(ctx, doctor.ID), ErrNotFound)
}

func TestResolveUsesCacheUntilInvalidated(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewResolveCache(client, time.Minute)

	repo := newMockRepository()
	doctor, _, _ := seedHospital(t, repo)
	svc := NewService(repo, cache)
	ctx := context.Background()

	const userID = int64(14)
	require.NoError(t, svc.AssignRole(ctx, userID, doctor.ID))

	first, err := svc.Resolve(ctx, userID)
	require.NoError(t, err)
	callsAfterFirst := repo.resolveCalls

	second, err := svc.Resolve(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, callsAfterFirst, repo.resolveCalls, "second resolve should be served from cache")

	// A revocation invalidates the cached entry.
	require.NoError(t, svc.RevokeRole(ctx, userID, doctor.ID))
	third, err := svc.Resolve(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, third.Roles)
	assert.Greater(t, repo.resolveCalls, callsAfterFirst)
}

func TestRoleDefinitionChangeInvalidatesAllCachedEntries(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewResolveCache(client, time.Minute)

	repo := newMockRepository()
	doctor, _, perms := seedHospital(t, repo)
	svc := NewService(repo, cache)
	ctx := context.Background()

	const userID = int64(15)
	require.NoError(t, svc.AssignRole(ctx, userID, doctor.ID))
	_, err := svc.Resolve(ctx, userID)
	require.NoError(t, err)

	require.NoError(t, svc.SetRolePermissions(ctx, doctor.ID, []int64{perms["view_lab_results"].ID}))

	grants, err := svc.Resolve(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"view_lab_results"}, grants.Permissions)
}
