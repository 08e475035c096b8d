package program

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fitzone/fitzone/api/web"
	"github.com/fitzone/fitzone/api/weberr"
	"github.com/fitzone/fitzone/core/claims"
	"github.com/fitzone/fitzone/database"
	"github.com/fitzone/fitzone/validate"
	"github.com/jmoiron/sqlx"
)

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ps, err := FetchAll(ctx, db)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, ps, http.StatusOK)
	}
}

func HandleListOwned(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		ps, err := FetchOwned(ctx, db, clm.UserID)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, ps, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		p, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return err
		}

		return web.Respond(ctx, w, p, http.StatusOK)
	}
}

func HandleShowSchedule(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		ss, err := FetchSchedule(ctx, db, id)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, ss, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var pn ProgramNew
		if err := web.Decode(w, r, &pn); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding program body: %w", err))
		}

		if err := validate.Check(pn); err != nil {
			return weberr.Validation(err, validate.Fields(err))
		}

		now := time.Now().UTC()
		p := Program{
			ID:              validate.GenerateID(),
			Title:           pn.Title,
			Subtitle:        pn.Subtitle,
			Description:     pn.Description,
			ImageURL:        pn.ImageURL,
			Duration:        pn.Duration,
			Level:           pn.Level,
			Category:        pn.Category,
			MaxParticipants: pn.MaxParticipants,
			Price:           pn.Price,
			Active:          true,
			CreatedAt:       now,
			UpdatedAt:       now,
			Version:         1,
		}

		if err := Create(ctx, db, p); err != nil {
			return fmt.Errorf("creating program: %w", err)
		}

		return web.Respond(ctx, w, p, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		var up ProgramUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding program update: %w", err))
		}

		if err := validate.Check(up); err != nil {
			return weberr.Validation(err, validate.Fields(err))
		}

		p, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return err
		}

		if up.Title != nil {
			p.Title = *up.Title
		}
		if up.Subtitle != nil {
			p.Subtitle = *up.Subtitle
		}
		if up.Description != nil {
			p.Description = *up.Description
		}
		if up.ImageURL != nil {
			p.ImageURL = *up.ImageURL
		}
		if up.Duration != nil {
			p.Duration = *up.Duration
		}
		if up.Level != nil {
			p.Level = *up.Level
		}
		if up.Category != nil {
			p.Category = *up.Category
		}
		if up.MaxParticipants != nil {
			p.MaxParticipants = *up.MaxParticipants
		}
		if up.Price != nil {
			p.Price = *up.Price
		}
		if up.Active != nil {
			p.Active = *up.Active
		}
		p.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, p); err != nil {
			return fmt.Errorf("updating program: %w", err)
		}

		return web.Respond(ctx, w, p, http.StatusOK)
	}
}

func HandleListReviews(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		rvs, err := FetchReviews(ctx, db, id)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, rvs, http.StatusOK)
	}
}

func HandleCreateReview(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		var rn ReviewNew
		if err := web.Decode(w, r, &rn); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding review body: %w", err))
		}

		if err := validate.Check(rn); err != nil {
			return weberr.Validation(err, validate.Fields(err))
		}

		if _, err := Fetch(ctx, db, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return err
		}

		rv := Review{
			ID:        validate.GenerateID(),
			ProgramID: id,
			UserID:    clm.UserID,
			Rating:    rn.Rating,
			Comment:   rn.Comment,
			CreatedAt: time.Now().UTC(),
		}

		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			if err := CreateReview(ctx, tx, rv); err != nil {
				return err
			}
			return refreshRating(ctx, tx, id)
		})
		if err != nil {
			return fmt.Errorf("creating review for program[%s]: %w", id, err)
		}

		return web.Respond(ctx, w, rv, http.StatusCreated)
	}
}
