package models

import "time"

// FailedLogin counts unsuccessful authentication attempts coming from one
// client address.
type FailedLogin struct {
	ID int64 `json:"-"`

	// IPAddress is the client address the attempts came from. Unique.
	IPAddress string `json:"ip_address"`

	// Attempts is the number of failures recorded since the last successful
	// login from IPAddress.
	Attempts int `json:"attempts"`

	// LastAttempt is the time of the most recent failure.
	LastAttempt time.Time `json:"last_attempt"`
}

// TableName returns the name of the database table
// associated with the FailedLogin model.
func (f FailedLogin) TableName() string {
	return "failed_logins"
}
