package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/fitzone/fitzone/api/web"
	"github.com/fitzone/fitzone/api/weberr"
	"github.com/fitzone/fitzone/core/claims"
	"github.com/fitzone/fitzone/validate"
	"github.com/sirupsen/logrus"
)

func HandleCreateIntent(log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if _, err := claims.Get(ctx); err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var in IntentNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding intent body: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.Validation(err, validate.Fields(err))
		}

		intent := NewIntent(in)

		log.WithFields(logrus.Fields{
			"intent_id": intent.ID,
			"amount":    intent.Amount,
			"currency":  intent.Currency,
		}).Info("payment intent created")

		resp := struct {
			ClientSecret string `json:"client_secret"`
			IntentID     string `json:"payment_intent_id"`
		}{
			ClientSecret: intent.ClientSecret,
			IntentID:     intent.ID,
		}

		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}

func HandleConfirm(log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if _, err := claims.Get(ctx); err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var req ConfirmReq
		if err := web.Decode(w, r, &req); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding confirm body: %w", err))
		}

		if err := validate.Check(req); err != nil {
			return weberr.Validation(err, validate.Fields(err))
		}

		conf := Confirm(req)

		log.WithField("intent_id", conf.ID).Info("payment confirmed")

		resp := struct {
			Intent  Confirmation `json:"payment_intent"`
			Success bool         `json:"success"`
		}{
			Intent:  conf,
			Success: true,
		}

		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}
