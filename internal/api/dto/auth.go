package dto

import "voicenote/internal/app/model"

// UserResponse is the public view of a user.
type UserResponse struct {
	ID    string  `json:"id"`
	Name  *string `json:"name"`
	Email string  `json:"email"`
	Image *string `json:"image"`
}

// SessionResponse describes the signed-in user.
type SessionResponse struct {
	User UserResponse `json:"user"`
}

// NewSessionResponse maps a user.
func NewSessionResponse(u *model.User) *SessionResponse {
	return &SessionResponse{
		User: UserResponse{
			ID:    u.ID,
			Name:  u.Name,
			Email: u.Email,
			Image: u.Image,
		},
	}
}
