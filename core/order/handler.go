package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fitzone/fitzone/api/background"
	"github.com/fitzone/fitzone/api/web"
	"github.com/fitzone/fitzone/api/weberr"
	"github.com/fitzone/fitzone/core/claims"
	"github.com/fitzone/fitzone/core/program"
	"github.com/fitzone/fitzone/core/user"
	"github.com/fitzone/fitzone/database"
	"github.com/fitzone/fitzone/validate"
	"github.com/jmoiron/sqlx"
)

// Mailer sends the confirmation message on completion. Failures are
// logged by the background runner and never reach the caller.
type Mailer interface {
	SendOrderConfirmation(to string, orderID string, total int) error
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var on OrderNew
		if err := web.Decode(w, r, &on); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding order body: %w", err))
		}

		if err := validate.Check(on); err != nil {
			return weberr.Validation(err, validate.Fields(err))
		}

		now := time.Now().UTC()
		ord := Order{
			ID:        GenerateID(),
			UserID:    clm.UserID,
			Status:    Pending,
			Method:    on.Payment.Method,
			Amount:    ComputeAmount(on.Items),
			Billing:   on.Billing,
			CreatedAt: now,
			UpdatedAt: now,
		}

		items := make([]Item, 0, len(on.Items))
		for _, it := range on.Items {
			typ := it.Type
			if typ == "" {
				typ = "program"
			}

			items = append(items, Item{
				OrderID:   ord.ID,
				ProgramID: it.ProgramID,
				Type:      typ,
				Price:     it.Price,
				Quantity:  it.Quantity,
				CreatedAt: now,
			})
		}

		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			if err := Create(ctx, tx, ord); err != nil {
				return err
			}

			for _, it := range items {
				if err := CreateItem(ctx, tx, it); err != nil {
					return err
				}
			}

			h := History{
				OrderID:   ord.ID,
				Status:    Pending,
				Note:      "Order created",
				Actor:     clm.UserID,
				CreatedAt: now,
			}
			if err := AddHistory(ctx, tx, h); err != nil {
				return err
			}

			act := map[string]any{"orderId": ord.ID, "total": ord.Total, "itemCount": len(items)}
			return user.AddActivity(ctx, tx, clm.UserID, "order_created", act)
		})
		if err != nil {
			return fmt.Errorf("creating order for user[%s]: %w", clm.UserID, err)
		}

		sum := Summary{
			OrderID:   ord.ID,
			Status:    ord.Status,
			Total:     ord.Total,
			Items:     items,
			CreatedAt: ord.CreatedAt,
			UpdatedAt: ord.UpdatedAt,
		}

		return web.Respond(ctx, w, sum, http.StatusCreated)
	}
}

func HandleListMine(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		page := web.QueryInt(r, "page", 1)
		limit := web.QueryInt(r, "limit", 10)

		ords, err := FetchByUser(ctx, db, clm.UserID, page, limit)
		if err != nil {
			return err
		}

		total, err := CountByUser(ctx, db, clm.UserID)
		if err != nil {
			return err
		}

		resp := struct {
			Orders     []Order    `json:"orders"`
			Pagination Pagination `json:"pagination"`
		}{
			Orders:     ords,
			Pagination: paginate(total, page, limit),
		}

		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		orderID := web.Param(r, "id")

		ord, err := FetchOwned(ctx, db, orderID, clm.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return err
		}

		if ord.Items, err = FetchItems(ctx, db, orderID); err != nil {
			return err
		}
		if ord.History, err = FetchHistory(ctx, db, orderID); err != nil {
			return err
		}

		return web.Respond(ctx, w, ord, http.StatusOK)
	}
}

func HandleUpdateStatus(db *sqlx.DB, bg *background.Background, mailer Mailer) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		orderID := web.Param(r, "id")

		var up StatusUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding status body: %w", err))
		}

		if err := validate.Check(up); err != nil {
			return weberr.Validation(err, validate.Fields(err))
		}

		ord, err := Fetch(ctx, db, orderID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return err
		}

		if !ord.Status.CanBecome(up.Status) {
			err := fmt.Errorf("order[%s] cannot go from %s to %s", ord.ID, ord.Status, up.Status)
			return weberr.NewError(err, "illegal status transition", http.StatusBadRequest)
		}

		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			h := History{
				OrderID:   ord.ID,
				Status:    up.Status,
				Note:      up.Note,
				Actor:     clm.UserID,
				CreatedAt: time.Now().UTC(),
			}
			if err := AddHistory(ctx, tx, h); err != nil {
				return err
			}

			if up.Status == Completed {
				return complete(ctx, tx, ord)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("updating status of order[%s]: %w", ord.ID, err)
		}

		if up.Status == Completed {
			bg.Add("order confirmation mail", func() error {
				return mailer.SendOrderConfirmation(ord.Email, ord.ID, ord.Total)
			})
		}

		sum := Summary{
			OrderID:   ord.ID,
			Status:    up.Status,
			Total:     ord.Total,
			UpdatedAt: time.Now().UTC(),
		}

		return web.Respond(ctx, w, sum, http.StatusOK)
	}
}

// complete unions the order's programs into the buyer's purchased set
// and records the bookkeeping that goes with it. Runs in the same
// transaction as the status write, so a crash can't leave the user's
// library inconsistent with the order.
func complete(ctx context.Context, tx sqlx.ExtContext, ord Order) error {
	items, err := FetchItems(ctx, tx, ord.ID)
	if err != nil {
		return err
	}

	programIDs := make([]string, 0, len(items))
	for _, it := range items {
		if it.Type != "program" {
			continue
		}
		programIDs = append(programIDs, it.ProgramID)
	}

	if len(programIDs) == 0 {
		return nil
	}

	if err := user.AddPrograms(ctx, tx, ord.UserID, programIDs); err != nil {
		return err
	}

	for _, pid := range programIDs {
		if err := program.IncrementEnrollment(ctx, tx, pid); err != nil {
			return err
		}
	}

	act := map[string]any{"orderId": ord.ID, "programs": programIDs}
	return user.AddActivity(ctx, tx, ord.UserID, "programs_purchased", act)
}

func HandleCancel(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		orderID := web.Param(r, "id")

		var req CancelReq
		if err := web.Decode(w, r, &req); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding cancel body: %w", err))
		}

		ord, err := FetchOwned(ctx, db, orderID, clm.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return weberr.NotFound(err)
			}
			return err
		}

		if !ord.Status.Cancellable() {
			err := fmt.Errorf("order[%s] has status %s", ord.ID, ord.Status)
			return weberr.NewError(err, "Order cannot be cancelled", http.StatusBadRequest)
		}

		reason := req.Reason
		if reason == "" {
			reason = "Cancelled by user"
		}

		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			h := History{
				OrderID:   ord.ID,
				Status:    Cancelled,
				Note:      reason,
				Actor:     clm.UserID,
				CreatedAt: time.Now().UTC(),
			}
			if err := AddHistory(ctx, tx, h); err != nil {
				return err
			}

			act := map[string]any{"orderId": ord.ID, "reason": reason}
			return user.AddActivity(ctx, tx, clm.UserID, "order_cancelled", act)
		})
		if err != nil {
			return fmt.Errorf("cancelling order[%s]: %w", ord.ID, err)
		}

		sum := Summary{
			OrderID:   ord.ID,
			Status:    Cancelled,
			Total:     ord.Total,
			UpdatedAt: time.Now().UTC(),
		}

		return web.Respond(ctx, w, sum, http.StatusOK)
	}
}
