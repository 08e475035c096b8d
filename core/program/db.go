package program

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, p Program) error {
	const q = `
	INSERT INTO programs
		(program_id, title, subtitle, description, image_url, duration, level,
		category, max_participants, price, enrollment_count, rating_average,
		rating_count, active, created_at, updated_at, version)
	VALUES
		(:program_id, :title, :subtitle, :description, :image_url, :duration, :level,
		:category, :max_participants, :price, :enrollment_count, :rating_average,
		:rating_count, :active, :created_at, :updated_at, :version)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, p); err != nil {
		return fmt.Errorf("inserting program: %w", err)
	}

	return nil
}

func Update(ctx context.Context, db sqlx.ExtContext, p Program) error {
	const q = `
	UPDATE programs SET
		title            = :title,
		subtitle         = :subtitle,
		description      = :description,
		image_url        = :image_url,
		duration         = :duration,
		level            = :level,
		category         = :category,
		max_participants = :max_participants,
		price            = :price,
		active           = :active,
		updated_at       = :updated_at,
		version          = version + 1
	WHERE program_id = :program_id AND version = :version`

	if _, err := sqlx.NamedExecContext(ctx, db, q, p); err != nil {
		return fmt.Errorf("updating program[%s]: %w", p.ID, err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Program, error) {
	const q = `SELECT * FROM programs WHERE program_id = $1`

	var p Program
	if err := sqlx.GetContext(ctx, db, &p, q, id); err != nil {
		return Program{}, fmt.Errorf("selecting program[%s]: %w", id, err)
	}

	return p, nil
}

func FetchAll(ctx context.Context, db sqlx.ExtContext) ([]Program, error) {
	const q = `SELECT * FROM programs WHERE active ORDER BY title`

	ps := []Program{}
	if err := sqlx.SelectContext(ctx, db, &ps, q); err != nil {
		return nil, fmt.Errorf("selecting programs: %w", err)
	}

	return ps, nil
}

// FetchOwned returns the catalog entries the user has purchased.
func FetchOwned(ctx context.Context, db sqlx.ExtContext, userID string) ([]Program, error) {
	const q = `
	SELECT p.* FROM programs AS p
	JOIN user_programs AS up ON up.program_id = p.program_id
	WHERE up.user_id = $1
	ORDER BY p.title`

	ps := []Program{}
	if err := sqlx.SelectContext(ctx, db, &ps, q, userID); err != nil {
		return nil, fmt.Errorf("selecting owned programs: %w", err)
	}

	return ps, nil
}

func CreateSchedule(ctx context.Context, db sqlx.ExtContext, s Schedule) error {
	const q = `
	INSERT INTO program_schedule (program_id, day, start_time, spots, kind, focus, available)
	VALUES (:program_id, :day, :start_time, :spots, :kind, :focus, :available)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, s); err != nil {
		return fmt.Errorf("inserting schedule entry: %w", err)
	}

	return nil
}

func FetchSchedule(ctx context.Context, db sqlx.ExtContext, programID string) ([]Schedule, error) {
	const q = `SELECT * FROM program_schedule WHERE program_id = $1 ORDER BY day, start_time`

	ss := []Schedule{}
	if err := sqlx.SelectContext(ctx, db, &ss, q, programID); err != nil {
		return nil, fmt.Errorf("selecting schedule: %w", err)
	}

	return ss, nil
}

func CreateReview(ctx context.Context, db sqlx.ExtContext, rv Review) error {
	const q = `
	INSERT INTO program_reviews (review_id, program_id, user_id, rating, comment, created_at)
	VALUES (:review_id, :program_id, :user_id, :rating, :comment, :created_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, rv); err != nil {
		return fmt.Errorf("inserting review: %w", err)
	}

	return nil
}

func FetchReviews(ctx context.Context, db sqlx.ExtContext, programID string) ([]Review, error) {
	const q = `SELECT * FROM program_reviews WHERE program_id = $1 ORDER BY created_at DESC`

	rvs := []Review{}
	if err := sqlx.SelectContext(ctx, db, &rvs, q, programID); err != nil {
		return nil, fmt.Errorf("selecting reviews: %w", err)
	}

	return rvs, nil
}

// refreshRating recomputes the stored aggregate from the review rows.
func refreshRating(ctx context.Context, db sqlx.ExtContext, programID string) error {
	const sel = `SELECT rating FROM program_reviews WHERE program_id = $1`

	ratings := []int{}
	if err := sqlx.SelectContext(ctx, db, &ratings, sel, programID); err != nil {
		return fmt.Errorf("selecting ratings: %w", err)
	}

	average, count := aggregate(ratings)

	const up = `
	UPDATE programs SET rating_average = $2, rating_count = $3, updated_at = $4
	WHERE program_id = $1`

	if _, err := db.ExecContext(ctx, up, programID, average, count, time.Now().UTC()); err != nil {
		return fmt.Errorf("updating rating aggregate: %w", err)
	}

	return nil
}

// IncrementEnrollment bumps the enrollment counter, one call per purchase.
func IncrementEnrollment(ctx context.Context, db sqlx.ExtContext, programID string) error {
	const q = `
	UPDATE programs SET enrollment_count = enrollment_count + 1, updated_at = $2
	WHERE program_id = $1`

	if _, err := db.ExecContext(ctx, q, programID, time.Now().UTC()); err != nil {
		return fmt.Errorf("incrementing enrollment of program[%s]: %w", programID, err)
	}

	return nil
}
