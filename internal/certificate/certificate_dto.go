package certificate

type CreateCertificateRequest struct {
	SeparationID    string `json:"separation_id" binding:"required,uuid"`
	CertificateType string `json:"certificate_type" binding:"required,oneof=work_certificate experience_letter service_certificate"`
	DutiesSummary   string `json:"duties_summary"`
	SignatoryName   string `json:"signatory_name" binding:"max=255"`
	SignatoryTitle  string `json:"signatory_title" binding:"max=255"`
}

type UpdateCertificateRequest struct {
	PositionTitle  *string `json:"position_title" binding:"omitempty,max=255"`
	DutiesSummary  *string `json:"duties_summary"`
	SignatoryName  *string `json:"signatory_name" binding:"omitempty,max=255"`
	SignatoryTitle *string `json:"signatory_title" binding:"omitempty,max=255"`
}

type RevokeCertificateRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type Filter struct {
	Status          string `form:"status"`
	CertificateType string `form:"certificate_type"`
	SeparationID    string `form:"separation_id"`
}

type CertificateResponse struct {
	ID                  string  `json:"id"`
	CertificateNumber   string  `json:"certificate_number"`
	SeparationID        string  `json:"separation_id"`
	EmployeeID          string  `json:"employee_id"`
	EmployeeName        string  `json:"employee_name"`
	CertificateType     string  `json:"certificate_type"`
	PositionTitle       string  `json:"position_title"`
	Department          string  `json:"department"`
	EmploymentStartDate string  `json:"employment_start_date"`
	EmploymentEndDate   string  `json:"employment_end_date"`
	DutiesSummary       string  `json:"duties_summary,omitempty"`
	SignatoryName       string  `json:"signatory_name,omitempty"`
	SignatoryTitle      string  `json:"signatory_title,omitempty"`
	Status              string  `json:"status"`
	IssueDate           *string `json:"issue_date,omitempty"`
	IssuedBy            string  `json:"issued_by,omitempty"`
	RevokedAt           *string `json:"revoked_at,omitempty"`
	RevokedBy           string  `json:"revoked_by,omitempty"`
	RevocationReason    string  `json:"revocation_reason,omitempty"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at"`
}

type AvailableTypesResponse struct {
	SeparationID string   `json:"separation_id"`
	Types        []string `json:"types"`
}
