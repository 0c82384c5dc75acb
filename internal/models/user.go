package models

// User is the profile document linked to an external auth identity
type User struct {
	ID       string `json:"id"`
	AuthID   string `json:"auth_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
}

// CreateUserRequest defines the request body for registering a profile.
// The auth id comes from the verified token, never from the body.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Avatar   string `json:"avatar,omitempty" validate:"omitempty,url"`
}
