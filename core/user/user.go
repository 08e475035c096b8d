package user

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

type User struct {
	ID           string    `json:"id" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Role         string    `json:"role" db:"role"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

type UserNew struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// Activity is one append-only entry of the user's activity log.
type Activity struct {
	UserID    string         `json:"-" db:"user_id"`
	Action    string         `json:"action" db:"action"`
	Data      types.JSONText `json:"data" db:"data"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
}
