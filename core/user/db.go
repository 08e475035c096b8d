package user

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, u User) error {
	const q = `
	INSERT INTO users (user_id, name, email, role, password_hash, created_at, updated_at)
	VALUES (:user_id, :name, :email, :role, :password_hash, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, u); err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (User, error) {
	const q = `SELECT * FROM users WHERE user_id = $1`

	var u User
	if err := sqlx.GetContext(ctx, db, &u, q, id); err != nil {
		return User{}, fmt.Errorf("selecting user[%s]: %w", id, err)
	}

	return u, nil
}

func FetchByEmail(ctx context.Context, db sqlx.ExtContext, email string) (User, error) {
	const q = `SELECT * FROM users WHERE email = $1`

	var u User
	if err := sqlx.GetContext(ctx, db, &u, q, email); err != nil {
		return User{}, fmt.Errorf("selecting user by email: %w", err)
	}

	return u, nil
}

// AddActivity appends one entry to the user's activity log.
func AddActivity(ctx context.Context, db sqlx.ExtContext, userID string, action string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshalling activity data: %w", err)
	}

	const q = `
	INSERT INTO user_activity (user_id, action, data, created_at)
	VALUES ($1, $2, $3, $4)`

	if _, err := db.ExecContext(ctx, q, userID, action, raw, time.Now().UTC()); err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}

	return nil
}

// AddPrograms unions program IDs into the user's purchased set. Reinserting
// an already-owned program is a no-op, which keeps completion idempotent.
func AddPrograms(ctx context.Context, db sqlx.ExtContext, userID string, programIDs []string) error {
	const q = `
	INSERT INTO user_programs (user_id, program_id, created_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (user_id, program_id) DO NOTHING`

	now := time.Now().UTC()
	for _, pid := range programIDs {
		if _, err := db.ExecContext(ctx, q, userID, pid, now); err != nil {
			return fmt.Errorf("inserting purchased program[%s]: %w", pid, err)
		}
	}

	return nil
}

func FetchProgramIDs(ctx context.Context, db sqlx.ExtContext, userID string) ([]string, error) {
	const q = `SELECT program_id FROM user_programs WHERE user_id = $1 ORDER BY created_at`

	ids := []string{}
	if err := sqlx.SelectContext(ctx, db, &ids, q, userID); err != nil {
		return nil, fmt.Errorf("selecting purchased programs: %w", err)
	}

	return ids, nil
}

func FetchActivity(ctx context.Context, db sqlx.ExtContext, userID string, limit int) ([]Activity, error) {
	const q = `
	SELECT * FROM user_activity
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT $2`

	acts := []Activity{}
	if err := sqlx.SelectContext(ctx, db, &acts, q, userID, limit); err != nil {
		return nil, fmt.Errorf("selecting activity: %w", err)
	}

	return acts, nil
}
