package separation

type CreateSeparationRequest struct {
	EmployeeID             string `json:"employee_id" binding:"required"`
	SeparationType         string `json:"separation_type" binding:"required,oneof=resignation contract_expiry project_end termination_without_cause termination_with_cause probation_failed retirement"`
	InitiatedBy            string `json:"initiated_by" binding:"omitempty,oneof=employee organization"`
	RequestDate            string `json:"request_date" binding:"required"`
	ProposedLastDay        string `json:"proposed_last_day" binding:"required"`
	NoticePeriodDays       *int   `json:"notice_period_days" binding:"omitempty,gte=0"`
	ReasonCategory         string `json:"reason_category" binding:"required,max=100"`
	ReasonDetails          string `json:"reason_details"`
	EligibleForCertificate *bool  `json:"eligible_for_certificate"`
	EligibleForRehire      *bool  `json:"eligible_for_rehire"`
}

// UpdateSeparationRequest is a partial edit. Absent fields keep their value.
type UpdateSeparationRequest struct {
	SeparationType         *string `json:"separation_type" binding:"omitempty,oneof=resignation contract_expiry project_end termination_without_cause termination_with_cause probation_failed retirement"`
	InitiatedBy            *string `json:"initiated_by" binding:"omitempty,oneof=employee organization"`
	RequestDate            *string `json:"request_date"`
	ProposedLastDay        *string `json:"proposed_last_day"`
	NoticePeriodDays       *int    `json:"notice_period_days" binding:"omitempty,gte=0"`
	ReasonCategory         *string `json:"reason_category" binding:"omitempty,max=100"`
	ReasonDetails          *string `json:"reason_details"`
	EligibleForCertificate *bool   `json:"eligible_for_certificate"`
	EligibleForRehire      *bool   `json:"eligible_for_rehire"`
}

func (r UpdateSeparationRequest) touchesRequestFields() bool {
	return r.SeparationType != nil || r.InitiatedBy != nil || r.RequestDate != nil ||
		r.ProposedLastDay != nil || r.NoticePeriodDays != nil || r.ReasonCategory != nil ||
		r.ReasonDetails != nil
}

type TransitionRequest struct {
	Reason string `json:"reason"`
}

type RejectSeparationRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ExitInterviewRequest struct {
	InterviewDate     string `json:"interview_date" binding:"required"`
	Interviewer       string `json:"interviewer" binding:"required,max=255"`
	Notes             string `json:"notes"`
	EligibleForRehire *bool  `json:"eligible_for_rehire"`
}

type Filter struct {
	Status         string `form:"status"`
	SeparationType string `form:"separation_type"`
	Search         string `form:"search"`
}

type StatusChangeResponse struct {
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	Reason     string `json:"reason,omitempty"`
	Actor      string `json:"actor"`
	ChangedAt  string `json:"changed_at"`
}

type SeparationResponse struct {
	ID                     string                 `json:"id"`
	CompanyID              string                 `json:"company_id"`
	SeparationNumber       string                 `json:"separation_number"`
	EmployeeID             string                 `json:"employee_id"`
	EmployeeName           string                 `json:"employee_name"`
	Department             string                 `json:"department"`
	Position               string                 `json:"position"`
	SeparationType         string                 `json:"separation_type"`
	InitiatedBy            string                 `json:"initiated_by"`
	RequestDate            string                 `json:"request_date"`
	ProposedLastDay        string                 `json:"proposed_last_day"`
	NoticePeriodDays       int                    `json:"notice_period_days"`
	ReasonCategory         string                 `json:"reason_category"`
	ReasonDetails          string                 `json:"reason_details"`
	EligibleForCertificate bool                   `json:"eligible_for_certificate"`
	EligibleForRehire      bool                   `json:"eligible_for_rehire"`
	Status                 string                 `json:"status"`
	ExitInterviewDate      *string                `json:"exit_interview_date,omitempty"`
	ExitInterviewer        string                 `json:"exit_interviewer,omitempty"`
	ExitInterviewNotes     string                 `json:"exit_interview_notes,omitempty"`
	CreatedBy              string                 `json:"created_by"`
	CreatedAt              string                 `json:"created_at"`
	UpdatedAt              string                 `json:"updated_at"`
	StatusHistory          []StatusChangeResponse `json:"status_history,omitempty"`
}
