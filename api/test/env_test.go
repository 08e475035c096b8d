package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/fitzone/fitzone/api"
	"github.com/fitzone/fitzone/api/background"
	"github.com/fitzone/fitzone/config"
	"github.com/fitzone/fitzone/core/claims"
	"github.com/fitzone/fitzone/core/user"
	"github.com/fitzone/fitzone/database"
	"github.com/fitzone/fitzone/rate"
	"github.com/fitzone/fitzone/validate"
	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var pgHostPort string

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not connect to docker: %v\n", err)
		os.Exit(1)
	}

	resource, err := pool.Run("postgres", "15-alpine", []string{
		"POSTGRES_USER=postgres",
		"POSTGRES_PASSWORD=postgres",
		"POSTGRES_DB=postgres",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not start postgres: %v\n", err)
		os.Exit(1)
	}

	pgHostPort = resource.GetHostPort("5432/tcp")

	err = pool.Retry(func() error {
		db, err := database.Open(config.DB{
			User: "postgres", Password: "postgres", Host: pgHostPort, Name: "postgres", DisableTLS: true,
		})
		if err != nil {
			return err
		}
		defer db.Close()
		return db.Ping()
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "postgres never became ready: %v\n", err)
		pool.Purge(resource)
		os.Exit(1)
	}

	code := m.Run()

	pool.Purge(resource)
	os.Exit(code)
}

// mailRecorder stands in for the smtp mailer and remembers what it sent.
type mailRecorder struct {
	mu   sync.Mutex
	sent []string
}

func (m *mailRecorder) SendOrderConfirmation(to string, orderID string, total int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, orderID)
	return nil
}

func (m *mailRecorder) Sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

type TestEnv struct {
	DB     *sqlx.DB
	Server *httptest.Server
	URL    string
	Mail   *mailRecorder

	UserID     string
	UserEmail  string
	UserPass   string
	AdminEmail string
	AdminPass  string

	BG     *background.Background
	client *http.Client
}

func NewTestEnv(t *testing.T, name string) (*TestEnv, error) {
	admin, err := database.Open(config.DB{
		User: "postgres", Password: "postgres", Host: pgHostPort, Name: "postgres", DisableTLS: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening admin connection: %w", err)
	}
	defer admin.Close()

	if _, err := admin.Exec("CREATE DATABASE " + name); err != nil {
		return nil, fmt.Errorf("creating test database: %w", err)
	}

	db, err := database.Open(config.DB{
		User: "postgres", Password: "postgres", Host: pgHostPort, Name: name, DisableTLS: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening test connection: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrating test database: %w", err)
	}

	env := &TestEnv{
		DB:         db,
		Mail:       &mailRecorder{},
		UserEmail:  "member@test.com",
		UserPass:   "gophers-only-12",
		AdminEmail: "admin@test.com",
		AdminPass:  "admins-only-12",
	}

	env.UserID, err = seedUser(db, "Test Member", env.UserEmail, env.UserPass, claims.RoleUser)
	if err != nil {
		return nil, err
	}
	if _, err = seedUser(db, "Test Admin", env.AdminEmail, env.AdminPass, claims.RoleAdmin); err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	session := scs.New()
	session.Lifetime = time.Hour

	env.BG = background.New(logger)

	mux := api.APIMux(api.APIConfig{
		Log:        logger,
		DB:         db,
		Session:    session,
		Mailer:     env.Mail,
		Background: env.BG,
		Limiter:    rate.NewLimiter(1000, 100, 1000),
	})

	env.Server = httptest.NewServer(mux)
	env.URL = env.Server.URL

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	env.client = &http.Client{Jar: jar}

	t.Cleanup(func() {
		env.Server.Close()
		db.Close()
	})

	return env, nil
}

func (te *TestEnv) Client() *http.Client {
	return te.client
}

func seedUser(db *sqlx.DB, name string, email string, pass string, role string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.MinCost)
	if err != nil {
		return "", fmt.Errorf("hashing seed password: %w", err)
	}

	now := time.Now().UTC()
	u := user.User{
		ID:           validate.GenerateID(),
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := user.Create(context.Background(), db, u); err != nil {
		return "", err
	}

	return u.ID, nil
}

func Login(env *TestEnv, email string, pass string) error {
	body, err := json.Marshal(map[string]string{"email": email, "password": pass})
	if err != nil {
		return err
	}

	w, err := env.Client().Post(env.URL+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed: status code %s", w.Status)
	}
	return nil
}

func Logout(env *TestEnv) error {
	w, err := env.Client().Post(env.URL+"/auth/logout", "application/json", nil)
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusNoContent {
		return fmt.Errorf("logout failed: status code %s", w.Status)
	}
	return nil
}
