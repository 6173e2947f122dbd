package dto

// CreateServiceRequest creates a catalog entry.
type CreateServiceRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	DurationMin int    `json:"duration_min" validate:"required,gt=0"`
	PriceCents  int64  `json:"price_cents" validate:"gte=0"`
	Active      *bool  `json:"active,omitempty"`
}

// UpdateServiceRequest partially updates a catalog entry.
type UpdateServiceRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	DurationMin *int    `json:"duration_min,omitempty" validate:"omitempty,gt=0"`
	PriceCents  *int64  `json:"price_cents,omitempty" validate:"omitempty,gte=0"`
	Active      *bool   `json:"active,omitempty"`
}

// CreateStaffRequest adds a staff member to the roster.
type CreateStaffRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Title    string `json:"title"`
	Active   *bool  `json:"active,omitempty"`
}

// UpdateStaffRequest partially updates a staff member.
type UpdateStaffRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Title    *string `json:"title,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}
