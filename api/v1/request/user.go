package request

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,max=255"`
	Password string `json:"password" binding:"required,userpassword"`
	Username string `json:"username" binding:"required,username"`
	Gender   string `json:"gender" binding:"omitempty,max=64"`
	Avatar   string `json:"avatar" binding:"omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,max=255"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest is a partial update: nil pointers leave the field
// unchanged.
type UpdateProfileRequest struct {
	Email    *string `json:"email" binding:"omitempty,max=255"`
	Username *string `json:"username" binding:"omitempty,username"`
	Gender   *string `json:"gender" binding:"omitempty,max=64"`
	Avatar   *string `json:"avatar" binding:"omitempty"`
}
