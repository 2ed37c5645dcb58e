package domain

import "time"

// IssuedToken запись о выданном JWT. Токен принимается, пока запись существует.
type IssuedToken struct {
	TokenID   string
	UserID    string
	ExpiresAt time.Time
}
