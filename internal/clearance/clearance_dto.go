package clearance

type StartReviewRequest struct {
	Notes string `json:"notes"`
}

type MarkClearedRequest struct {
	Notes string `json:"notes"`
}

type FlagIssuesRequest struct {
	OutstandingItems []string `json:"outstanding_items" binding:"required,min=1"`
	Notes            string   `json:"notes"`
}

type Filter struct {
	Status       string `form:"status"`
	DepartmentID string `form:"department_id"`
	SeparationID string `form:"separation_id"`
}

type ClearanceResponse struct {
	ID               string   `json:"id"`
	SeparationID     string   `json:"separation_id"`
	DepartmentID     string   `json:"department_id"`
	DepartmentName   string   `json:"department_name"`
	Status           string   `json:"status"`
	OutstandingItems []string `json:"outstanding_items,omitempty"`
	Notes            string   `json:"notes,omitempty"`
	ClearanceDate    *string  `json:"clearance_date,omitempty"`
	ClearedBy        string   `json:"cleared_by,omitempty"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

type ProgressResponse struct {
	SeparationID string `json:"separation_id"`
	Cleared      int    `json:"cleared"`
	Total        int    `json:"total"`
	FullyCleared bool   `json:"fully_cleared"`
}
