package models

// User identifies the account a session belongs to.
type User struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}
