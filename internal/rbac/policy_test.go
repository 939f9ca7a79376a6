package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wardgate/wardgate/internal/shared"
)

func TestAuthorizeRoleOrPermissionAnd(t *testing.T) {
	nurse := shared.Identity{
		ID:          7,
		Roles:       []string{"nurse"},
		Permissions: []string{"view_lab_results"},
	}

	// Any-of roles: nurse matches even though doctor is listed first.
	d := Authorize(nurse, Requirement{
		Roles:       []string{"doctor", "nurse"},
		Permissions: []string{"view_lab_results"},
	})
	assert.True(t, d.Allowed)

	// All-of permissions: one missing permission flips the decision.
	d = Authorize(nurse, Requirement{
		Roles:       []string{"doctor", "nurse"},
		Permissions: []string{"view_lab_results", "discharge_patient"},
	})
	assert.False(t, d.Allowed)
	assert.Equal(t, DefaultDenyRedirect, d.RedirectTo)
}

func TestAuthorizeEmptyRequirementIsVacuouslyAllowed(t *testing.T) {
	identities := []shared.Identity{
		{},
		{ID: 1, Roles: []string{"doctor"}},
		{ID: 2, Permissions: []string{"read_patient_record"}},
	}
	for _, id := range identities {
		d := Authorize(id, Requirement{})
		assert.True(t, d.Allowed)
	}
}

func TestAuthorizeRolesOnlyRequirement(t *testing.T) {
	id := shared.Identity{Roles: []string{"receptionist"}}

	assert.True(t, Authorize(id, Requirement{Roles: []string{"receptionist"}}).Allowed)
	assert.False(t, Authorize(id, Requirement{Roles: []string{"admin"}}).Allowed)
}

func TestAuthorizePermissionsOnlyRequirement(t *testing.T) {
	id := shared.Identity{Permissions: []string{"create_appointment", "cancel_appointment"}}

	assert.True(t, Authorize(id, Requirement{Permissions: []string{"create_appointment"}}).Allowed)
	assert.True(t, Authorize(id, Requirement{Permissions: []string{"create_appointment", "cancel_appointment"}}).Allowed)
	assert.False(t, Authorize(id, Requirement{Permissions: []string{"create_appointment", "discharge_patient"}}).Allowed)
}

func TestAuthorizeCustomRedirect(t *testing.T) {
	d := Authorize(shared.Identity{}, Requirement{
		Roles:      []string{"admin"},
		RedirectTo: "/denied",
	})
	assert.False(t, d.Allowed)
	assert.Equal(t, "/denied", d.RedirectTo)
}

func TestAuthorizeIsPure(t *testing.T) {
	id := shared.Identity{Roles: []string{"nurse"}, Permissions: []string{"view_lab_results"}}
	req := Requirement{Roles: []string{"nurse"}, Permissions: []string{"view_lab_results"}}

	first := Authorize(id, req)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Authorize(id, req))
	}
}
