// Package config defines the necessary types to configure the application.
// An example config file config.yaml is provided in the repository.
package config

import (
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
)

// InsecureDefaultSecret signs session cookies when no session secret is configured.
// It is public knowledge and must never be relied upon outside local development.
const InsecureDefaultSecret = "Go Lakers"

type Config struct {
	commoncfg.BaseConfig `mapstructure:",squash" yaml:",inline"`

	// Development enables the dev-only traffic forwarder and disables static caching.
	Development bool `yaml:"development"`

	HTTP        HTTPServer  `yaml:"http"`
	Session     Session     `yaml:"session"`
	ValKey      ValKey      `yaml:"valkey"`
	Database    Database    `yaml:"database"`
	DevProxy    DevProxy    `yaml:"devProxy"`
	Static      Static      `yaml:"static"`
	Login       Login       `yaml:"login"`
	Compression Compression `yaml:"compression"`
	Housekeeper Housekeeper `yaml:"housekeeper"`
	Migrate     Migrate     `yaml:"migrate"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" default:":3000"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" default:"5s"`
}

type SessionBackend string

const (
	SessionBackendMemory   SessionBackend = "memory"
	SessionBackendValKey   SessionBackend = "valkey"
	SessionBackendPostgres SessionBackend = "postgres"
)

type Session struct {
	Backend  SessionBackend      `yaml:"backend" default:"valkey"`
	Duration time.Duration       `yaml:"duration" default:"12h"`
	Secret   commoncfg.SourceRef `yaml:"secret"`
	Cookie   CookieTemplate      `yaml:"cookie"`
}

type CookieSameSite string

const (
	CookieSameSiteNone   CookieSameSite = "None"
	CookieSameSiteLax    CookieSameSite = "Lax"
	CookieSameSiteStrict CookieSameSite = "Strict"
)

type CookieTemplate struct {
	Name     string         `yaml:"name" default:"connect.sid"`
	MaxAge   int            `yaml:"maxAge"`
	Path     string         `yaml:"path" default:"/"`
	Domain   string         `yaml:"domain"`
	Secure   bool           `yaml:"secure"`
	SameSite CookieSameSite `yaml:"sameSite" default:"Lax"`
	HTTPOnly bool           `yaml:"httpOnly" default:"true"`
}

type ValKey struct {
	Host      commoncfg.SourceRef `yaml:"host"`
	User      commoncfg.SourceRef `yaml:"user"`
	Password  commoncfg.SourceRef `yaml:"password"`
	Prefix    string              `yaml:"prefix" default:"login-gateway"`
	SecretRef commoncfg.SecretRef `yaml:"secretRef"`
}

type Database struct {
	Name     string              `yaml:"name"`
	Port     string              `yaml:"port"`
	Host     commoncfg.SourceRef `yaml:"host"`
	User     commoncfg.SourceRef `yaml:"user"`
	Password commoncfg.SourceRef `yaml:"password"`
	SSLMode  string              `yaml:"sslMode"`
}

type DevProxy struct {
	Target   string   `yaml:"target" default:"http://localhost:8080"`
	Prefixes []string `yaml:"prefixes" default:"[\"/api\",\"/auth\"]"`
}

type Static struct {
	Dir    string        `yaml:"dir" default:"static"`
	MaxAge time.Duration `yaml:"maxAge" default:"1h"`
}

type Login struct {
	CallbackPath    string `yaml:"callbackPath" default:"/login-callback"`
	BackendLoginURL string `yaml:"backendLoginURL" default:"/auth/login"`
}

type Compression struct {
	Enabled bool `yaml:"enabled" default:"true"`
}

type Housekeeper struct {
	TriggerInterval time.Duration `yaml:"triggerInterval" default:"10m"`
}

type Migrate struct {
	// Source is a directory with migration files. Empty uses the embedded migrations.
	Source string `yaml:"source"`
}
