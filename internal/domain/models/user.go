package models

import "time"

// Role grants access levels.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// OAuth providers an account can be provisioned through.
const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

// User is an account. Its ID is the owner id of everything it creates.
type User struct {
	ID            string    `json:"id" bson:"_id,omitempty" firestore:"-"`
	Name          string    `json:"name" bson:"name" firestore:"name"`
	Email         string    `json:"email" bson:"email" firestore:"email"`
	PasswordHash  string    `json:"-" bson:"passwordHash,omitempty" firestore:"passwordHash"`
	OAuth         bool      `json:"oauth" bson:"oauth" firestore:"oauth"`
	OAuthProvider string    `json:"oauthProvider,omitempty" bson:"oauthProvider,omitempty" firestore:"oauthProvider"`
	Role          Role      `json:"role" bson:"role" firestore:"role"`
	Active        bool      `json:"active" bson:"active" firestore:"active"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt" firestore:"updatedAt"`
}
