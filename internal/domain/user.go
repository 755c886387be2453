package domain

import "time"

// User is the stored credential record.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Country      string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity returns the principal for the user.
func (u *User) Identity() Identity {
	return Identity{Subject: u.Username, Role: u.Role}
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// NewUser holds registration input.
type NewUser struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Country   string
}
