package models

// User represents the structure for the 'users' table in the database.
// The JSON projection is the public one: the password hash and the raw
// location foreign key are never serialized.
type User struct {
	UserID       int64  `json:"user_id" db:"user_id"`       // Primary key, generated on insert
	FirstName    string `json:"first_name" db:"first_name"` // User's first name
	LastName     string `json:"last_name" db:"last_name"`   // User's last name
	Phone        string `json:"phone" db:"phone"`           // Phone number, unique
	Email        string `json:"email" db:"email"`           // Email address, unique
	DOB          string `json:"-" db:"dob"`                 // Date of birth as submitted (YYYY-MM-DD)
	LocationID   int64  `json:"-" db:"location_id"`         // Reference to the user's location row
	PasswordHash string `json:"-" db:"password_hash"`       // Hashed password (never serialized)
	Gender       string `json:"gender" db:"gender"`         // One of M, F, O, C
	PfpLink      string `json:"pfp_link" db:"pfp_link"`     // Public URL of the profile picture
}

// RegistrationForm carries the multipart form fields of a registration
// attempt. Coordinates arrive as strings and are range-checked by the
// validator; country falls back to "India" when absent.
type RegistrationForm struct {
	FirstName     string `form:"first_name" validate:"required"`
	LastName      string `form:"last_name" validate:"required"`
	Phone         string `form:"phone" validate:"required"`
	Email         string `form:"email" validate:"required"`
	DOB           string `form:"dob" validate:"required"`
	StreetAddress string `form:"street_address" validate:"required"`
	City          string `form:"city" validate:"required"`
	State         string `form:"state" validate:"required"`
	Country       string `form:"country"`
	Password      string `form:"password" validate:"required"`
	Gender        string `form:"gender" validate:"required"`
	LocationX     string `form:"location_x" validate:"required"`
	LocationY     string `form:"location_y" validate:"required"`
}

// ValidationIssue describes one problem with a registration attempt.
// Every issue found is reported, not just the first.
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// RegistrationResponse is the 201 body returned on successful registration.
type RegistrationResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    *User  `json:"user"`
}
