package feedback

import "time"

// MaxListLimit caps how many entries a single read returns.
const MaxListLimit = 100

// Entry is a persisted feedback row. ID and CreatedAt are always assigned by
// the database.
type Entry struct {
	ID        int64     `json:"id"`
	PageSlug  string    `json:"-"`
	Username  string    `json:"username"`
	Rating    int       `json:"rating"` // 1-5
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Draft is a validated submission that has not been stored yet.
type Draft struct {
	PageSlug string `json:"page_slug" validate:"required,nonul"`
	Username string `json:"username" validate:"nonul"`
	Rating   int    `json:"rating" validate:"min=1,max=5"`
	Comment  string `json:"comment" validate:"required,nonul"`
}
