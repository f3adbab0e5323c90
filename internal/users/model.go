package users

import "time"

// User is an account created lazily on first successful login.
type User struct {
	ID                 string    `json:"id"`
	ExternalIdentityID string    `json:"externalIdentityId"`
	Email              string    `json:"email"`
	DisplayName        string    `json:"displayName"`
	AvatarURL          string    `json:"avatarUrl,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Identity is what an external identity provider asserts about a person.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}
