package github

import "time"

// Label represents a GitHub issue label as stored on the server
type Label struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// Milestone represents a GitHub milestone as stored on the server
type Milestone struct {
	Number      int        `json:"number"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	State       string     `json:"state"` // open, closed
	DueOn       *time.Time `json:"due_on,omitempty"`
}

// SecretKey represents a repository's Actions public key used to seal
// secret values before upload
type SecretKey struct {
	KeyID string `json:"key_id"`
	Key   string `json:"key"` // base64-encoded libsodium public key
}

// RateInfo represents the core API rate limit state for the current token
type RateInfo struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Reset     time.Time `json:"reset"`
}
