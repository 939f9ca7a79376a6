package shared

// Hospital platform permissions. Names are stable identifiers: once seeded
// they are never reused for a different meaning.
const (
	PermReadPatientRecord    = "read_patient_record"
	PermEditPatientRecord    = "edit_patient_record"
	PermCreateAppointment    = "create_appointment"
	PermCancelAppointment    = "cancel_appointment"
	PermAdministerMedication = "administer_medication"
	PermDischargePatient     = "discharge_patient"
	PermViewLabResults       = "view_lab_results"
	PermManageUsers          = "manage_users"
	PermManageRoles          = "manage_roles"
	PermViewBillingInfo      = "view_billing_info"
	PermEditBillingInfo      = "edit_billing_info"
	PermAccessAuditLogs      = "access_audit_logs"
)

// Built-in roles.
const (
	RoleAdmin         = "admin"
	RoleDoctor        = "doctor"
	RoleNurse         = "nurse"
	RoleReceptionist  = "receptionist"
	RoleBillingStaff  = "billing_staff"
	RoleLabTechnician = "lab_technician"
)

// CoreScopes lists every permission the platform ships with.
func CoreScopes() []string {
	return []string{
		PermReadPatientRecord,
		PermEditPatientRecord,
		PermCreateAppointment,
		PermCancelAppointment,
		PermAdministerMedication,
		PermDischargePatient,
		PermViewLabResults,
		PermManageUsers,
		PermManageRoles,
		PermViewBillingInfo,
		PermEditBillingInfo,
		PermAccessAuditLogs,
	}
}
