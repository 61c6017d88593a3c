package identity

import (
	"time"

	id "zirrmi/pkg/domain"
)

// Account is a registered user. Emails are stored lower-cased.
type Account struct {
	ID           id.UserID
	Email        string
	PasswordHash []byte
	FullName     string
	Phone        string
	CompanyName  string
	CreatedAt    time.Time
}
