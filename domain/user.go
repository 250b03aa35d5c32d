package domain

import "time"

// User is an opaque identity reference. Authentication and profile data
// live in an external identity system; the engine only needs identity
// equality and existence.
type User struct {
	ID        string
	Handle    string
	CreatedAt time.Time
}
