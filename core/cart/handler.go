package cart

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
	"github.com/fitzone/fitzone/validate"
	"github.com/jmoiron/sqlx"
)

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		c, err := Fetch(ctx, db, clm.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// No cart yet is an empty cart, not an error.
				return web.Respond(ctx, w, Cart{UserID: clm.UserID, Items: []Item{}}, http.StatusOK)
			}
			return err
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandleUpsertItem(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var in ItemNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding cart item: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.Validation(err, validate.Fields(err))
		}

		now := time.Now().UTC()
		it := Item{
			UserID:    clm.UserID,
			ProgramID: in.ProgramID,
			Quantity:  in.Quantity,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := UpsertItem(ctx, db, it); err != nil {
			return fmt.Errorf("upserting cart item: %w", err)
		}

		c, err := Fetch(ctx, db, clm.UserID)
		if err != nil {
			return fmt.Errorf("fetching cart after upsert: %w", err)
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandleDeleteItem(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		programID := web.Param(r, "program_id")
		if err := validate.CheckID(programID); err != nil {
			return weberr.BadRequest(err)
		}

		if err := DeleteItem(ctx, db, clm.UserID, programID); err != nil {
			return fmt.Errorf("deleting cart item: %w", err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleDelete(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		if err := Delete(ctx, db, clm.UserID); err != nil {
			return fmt.Errorf("flushing cart: %w", err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
