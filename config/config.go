package config

import "time"

type Config struct {
	Web     Web
	DB      DB
	Session Session
	Cors    Cors
	Email   Email
	Oauth   Oauth
	Limit   Limit
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type DB struct {
	User       string `conf:"default:postgres"`
	Password   string `conf:"default:postgres,mask"`
	Host       string `conf:"default:localhost"`
	Name       string `conf:"default:fitzone"`
	DisableTLS bool   `conf:"default:true"`
}

type Session struct {
	Lifetime time.Duration `conf:"default:24h"`
}

type Cors struct {
	Origin string
}

type Email struct {
	Address  string
	Password string `conf:"mask"`
	Host     string
	Port     string `conf:"default:587"`
}

type Oauth struct {
	DiscoveryTimeout time.Duration `conf:"default:30s"`
	LoginRedirectURL string        `conf:"default:http://localhost:3000"`
	Google           Provider
}

type Provider struct {
	Client      string
	Secret      string `conf:"mask"`
	URL         string `conf:"default:https://accounts.google.com"`
	RedirectURL string `conf:"default:http://localhost:8000/auth/oauth-callback/google"`
}

type Limit struct {
	RPS    float64 `conf:"default:2"`
	Burst  int     `conf:"default:4"`
	Expiry int     `conf:"default:10"`
}
