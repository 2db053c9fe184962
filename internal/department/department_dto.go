package department

type CreateDepartmentRequest struct {
	Name              string `json:"name" binding:"required,max=255"`
	Description       string `json:"description"`
	RequiresClearance bool   `json:"requires_clearance"`
	IsActive          *bool  `json:"is_active"`
	ClearanceOrder    int    `json:"clearance_order" binding:"gte=0"`
}

type UpdateDepartmentRequest struct {
	Name              string `json:"name" binding:"required,max=255"`
	Description       string `json:"description"`
	RequiresClearance bool   `json:"requires_clearance"`
	IsActive          *bool  `json:"is_active"`
	ClearanceOrder    int    `json:"clearance_order" binding:"gte=0"`
}

type DepartmentResponse struct {
	ID                string `json:"id"`
	CompanyID         string `json:"company_id"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	RequiresClearance bool   `json:"requires_clearance"`
	IsActive          bool   `json:"is_active"`
	ClearanceOrder    int    `json:"clearance_order"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}
