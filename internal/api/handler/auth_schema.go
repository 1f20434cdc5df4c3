package handler

import "github.com/taskmanager/task-api/internal/core/domain"

type signinRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type signupRequest struct {
	Username string   `json:"username" validate:"required,min=3,max=20"`
	Email    string   `json:"email" validate:"required,email,max=50"`
	Password string   `json:"password" validate:"required,min=6,max=40"`
	Roles    []string `json:"roles,omitempty"`
}

// jwtResponse is returned by a successful sign-in.
type jwtResponse struct {
	Token    string   `json:"token"`
	Type     string   `json:"type"`
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// messageResponse carries a single human-readable message.
type messageResponse struct {
	Message string `json:"message"`
}

func newJWTResponse(token string, user *domain.User) jwtResponse {
	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.RoleNames() {
		roles = append(roles, string(r))
	}
	return jwtResponse{
		Token:    token,
		Type:     "Bearer",
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Roles:    roles,
	}
}
