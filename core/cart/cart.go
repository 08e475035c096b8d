package cart

import (
	"time"
)

type Cart struct {
	UserID    string    `json:"-" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
	Version   int       `json:"-" db:"version"`
	Items     []Item    `json:"items" db:"-"`
}

type Item struct {
	UserID    string    `json:"-" db:"user_id"`
	ProgramID string    `json:"programId" db:"program_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Joined from the catalog on reads.
	Title string `json:"title" db:"title"`
	Price int    `json:"price" db:"price"`
}

type ItemNew struct {
	ProgramID string `json:"programId" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}
