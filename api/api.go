package api

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/fitzone/fitzone/api/background"
	"github.com/fitzone/fitzone/api/middleware"
	"github.com/fitzone/fitzone/api/web"
	"github.com/fitzone/fitzone/core/auth"
	"github.com/fitzone/fitzone/core/cart"
	"github.com/fitzone/fitzone/core/order"
	"github.com/fitzone/fitzone/core/payment"
	"github.com/fitzone/fitzone/core/program"
	"github.com/fitzone/fitzone/core/user"
	"github.com/fitzone/fitzone/rate"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin       string
	Log              logrus.FieldLogger
	DB               *sqlx.DB
	Session          *scs.SessionManager
	Mailer           order.Mailer
	Background       *background.Background
	Limiter          *rate.Limiter
	Providers        map[string]auth.Provider
	LoginRedirectURL string
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, auth.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	authen := auth.Authenticate(cfg.Session)
	admin := auth.Admin(cfg.Session)
	limited := middleware.RateLimit(cfg.Limiter)

	a.Handle(http.MethodPost, "/auth/signup", auth.HandleSignup(cfg.DB, cfg.Session))
	a.Handle(http.MethodPost, "/auth/login", auth.HandleLogin(cfg.DB, cfg.Session), limited)
	a.Handle(http.MethodPost, "/auth/logout", auth.HandleLogout(cfg.Session))
	a.Handle(http.MethodGet, "/auth/oauth-login/{provider}", auth.HandleOauthLogin(cfg.Session, cfg.Providers))
	a.Handle(http.MethodGet, "/auth/oauth-callback/{provider}", auth.HandleOauthCallback(cfg.DB, cfg.Session, cfg.Providers, cfg.LoginRedirectURL))

	a.Handle(http.MethodGet, "/users/current", user.HandleShowCurrent(cfg.DB), authen)
	a.Handle(http.MethodGet, "/users/current/programs", user.HandleShowPurchased(cfg.DB), authen)
	a.Handle(http.MethodGet, "/users/current/activity", user.HandleShowActivity(cfg.DB), authen)

	a.Handle(http.MethodGet, "/programs/owned", program.HandleListOwned(cfg.DB), authen)
	a.Handle(http.MethodGet, "/programs/{id}/schedule", program.HandleShowSchedule(cfg.DB))
	a.Handle(http.MethodGet, "/programs/{id}/reviews", program.HandleListReviews(cfg.DB))
	a.Handle(http.MethodPost, "/programs/{id}/reviews", program.HandleCreateReview(cfg.DB), authen)
	a.Handle(http.MethodGet, "/programs/{id}", program.HandleShow(cfg.DB))
	a.Handle(http.MethodGet, "/programs", program.HandleList(cfg.DB))
	a.Handle(http.MethodPost, "/programs", program.HandleCreate(cfg.DB), admin)
	a.Handle(http.MethodPut, "/programs/{id}", program.HandleUpdate(cfg.DB), admin)

	a.Handle(http.MethodGet, "/cart", cart.HandleShow(cfg.DB), authen)
	a.Handle(http.MethodDelete, "/cart", cart.HandleDelete(cfg.DB), authen)
	a.Handle(http.MethodPut, "/cart/items", cart.HandleUpsertItem(cfg.DB), authen)
	a.Handle(http.MethodDelete, "/cart/items/{program_id}", cart.HandleDeleteItem(cfg.DB), authen)

	a.Handle(http.MethodPost, "/orders/create", order.HandleCreate(cfg.DB), authen)
	a.Handle(http.MethodGet, "/orders/my-orders", order.HandleListMine(cfg.DB), authen)
	a.Handle(http.MethodGet, "/orders/{id}", order.HandleShow(cfg.DB), authen)
	a.Handle(http.MethodPut, "/orders/{id}/status", order.HandleUpdateStatus(cfg.DB, cfg.Background, cfg.Mailer), admin)
	a.Handle(http.MethodPost, "/orders/{id}/cancel", order.HandleCancel(cfg.DB), authen)

	a.Handle(http.MethodPost, "/payments/create-payment-intent", payment.HandleCreateIntent(cfg.Log), authen, limited)
	a.Handle(http.MethodPost, "/payments/confirm-payment", payment.HandleConfirm(cfg.Log), authen, limited)

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
