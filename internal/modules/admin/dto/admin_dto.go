package dto

type CreateUserInput struct {
	Name       string `json:"name" form:"name" binding:"required,max=255"`
	Email      string `json:"email" form:"email" binding:"required,email,max=255"`
	Password   string `json:"password" form:"password" binding:"required,min=8"`
	IsAdmin    bool   `json:"is_admin" form:"is_admin"`
	IsEmployer bool   `json:"is_employer" form:"is_employer"`
}

// UserFilter narrows the admin user listing. Role is one of "admin",
// "employer" or "applicant"; empty lists everyone.
type UserFilter struct {
	Role string `form:"role" binding:"omitempty,oneof=admin employer applicant"`
}
