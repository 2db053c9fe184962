package domain

// EnforceRequest is the authorization question asked for every protected route.
type EnforceRequest struct {
	EmployeeID string `json:"employee_id" binding:"required"`
	CompanyID  string `json:"company_id" binding:"required"`
	Resource   string `json:"resource" binding:"required"`
	Action     string `json:"action" binding:"required"`
}

// Offboarding resources guarded by casbin policies.
const (
	ResourceSeparation  = "separation"
	ResourceClearance   = "clearance"
	ResourceSettlement  = "settlement"
	ResourceCertificate = "certificate"
	ResourceDepartment  = "department"
)

// Actions shared by all resources. The workflow actions map to the
// transitions that need a dedicated permission.
const (
	ActionRead    = "read"
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionApprove = "approve"
	ActionVerify  = "verify"
	ActionPay     = "pay"
	ActionIssue   = "issue"
)
