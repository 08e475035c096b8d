package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/fitzone/fitzone/api/web"
	"github.com/fitzone/fitzone/api/weberr"
	"github.com/fitzone/fitzone/rate"
)

// RateLimit throttles per client address. Used on the login and
// payment endpoints, which are the ones worth brute-forcing.
func RateLimit(lim *rate.Limiter) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			if !lim.Check(host) {
				err := errors.New("rate limit exceeded")
				return weberr.NewError(err, "too many requests", http.StatusTooManyRequests)
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
