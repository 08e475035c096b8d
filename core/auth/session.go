package auth

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/fitzone/fitzone/api/web"
	"github.com/fitzone/fitzone/api/weberr"
	"github.com/fitzone/fitzone/core/claims"
)

const (
	sessionUserID = "user_id"
	sessionRole   = "role"
	sessionState  = "oauth_state"
)

// bufferedWriter holds the body back until the session cookie has
// been committed: headers are useless once the body is on the wire.
type bufferedWriter struct {
	http.ResponseWriter
	buf  bytes.Buffer
	code int
}

func (bw *bufferedWriter) Write(b []byte) (int, error) { return bw.buf.Write(b) }

func (bw *bufferedWriter) WriteHeader(code int) { bw.code = code }

func (bw *bufferedWriter) flush() error {
	if bw.code != 0 {
		bw.ResponseWriter.WriteHeader(bw.code)
	}
	_, err := bw.ResponseWriter.Write(bw.buf.Bytes())
	return err
}

// LoadAndSave loads the caller's session from the cookie, exposes it as
// claims on the context, and commits any mutation after the handler runs.
func LoadAndSave(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			var token string
			if cookie, err := r.Cookie(session.Cookie.Name); err == nil {
				token = cookie.Value
			}

			ctx, err := session.Load(ctx, token)
			if err != nil {
				return weberr.NewError(err, "invalid session", http.StatusBadRequest)
			}

			if uid := session.GetString(ctx, sessionUserID); uid != "" {
				ctx = claims.Set(ctx, claims.Claims{
					UserID: uid,
					Role:   session.GetString(ctx, sessionRole),
				})
			}

			bw := &bufferedWriter{ResponseWriter: w}
			err = handler(ctx, bw, r.WithContext(ctx))

			switch session.Status(ctx) {
			case scs.Modified:
				token, expiry, errc := session.Commit(ctx)
				if errc != nil {
					return errc
				}
				session.WriteSessionCookie(ctx, w, token, expiry)

			case scs.Destroyed:
				session.WriteSessionCookie(ctx, w, "", time.Time{})
			}

			if errf := bw.flush(); errf != nil && err == nil {
				err = errf
			}

			return err
		}
		return h
	}
	return m
}

func Authenticate(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			if _, err := claims.Get(ctx); err != nil {
				return weberr.NotAuthorized(errors.New("user not authenticated"))
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

func Admin(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			if !claims.IsAdmin(ctx) {
				return weberr.NotAuthorized(errors.New("user is not an administrator"))
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

// login binds the session to the user, rotating the token against fixation.
func login(ctx context.Context, session *scs.SessionManager, userID string, role string) error {
	if err := session.RenewToken(ctx); err != nil {
		return err
	}

	session.Put(ctx, sessionUserID, userID)
	session.Put(ctx, sessionRole, role)
	return nil
}
