package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"catalog-post/pkg/httpclient"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded when present; a missing file is not an error.
const DefaultEnvFile = ".env"

// Ledger sources.
const (
	LedgerXMLRPC = "xmlrpc"
	LedgerFeed   = "feed"
)

// History backends.
const (
	HistoryNone     = "none"
	HistoryMongo    = "mongo"
	HistoryPostgres = "postgres"
	HistorySupabase = "supabase"
)

type rawConfig struct {
	// Required
	AffiliateID string `long:"affiliate-id" env:"AFFILIATE_ID" description:"Affiliate id embedded in outbound links"`
	WPURL       string `long:"wp-url" env:"WP_URL" description:"WordPress site URL (XML-RPC endpoint is derived from it)"`
	WPUser      string `long:"wp-user" env:"WP_USER" description:"WordPress user"`
	WPPass      string `long:"wp-pass" env:"WP_PASS" description:"WordPress application password"`

	// Catalog and HTTP
	CatalogLimit int           `long:"catalog-limit" env:"CATALOG_LIMIT" default:"100" description:"Catalog entries considered per run"`
	HTTPTimeout  time.Duration `long:"http-timeout" env:"HTTP_TIMEOUT" default:"10s" description:"Per-request timeout"`
	RequestRate  float64       `long:"request-rate" env:"REQUEST_RATE" default:"2" description:"Requests per second to the catalog, 0 disables pacing"`
	UserAgent    string        `long:"user-agent" env:"USER_AGENT" description:"User agent override"`
	HTTPProfile  string        `long:"http-profile" env:"HTTP_PROFILE" default:"browser" description:"Catalog request header profile (browser|cloudflare)"`

	// Ledger
	LedgerSource  string `long:"ledger-source" env:"LEDGER_SOURCE" default:"xmlrpc" description:"Where published titles come from (xmlrpc|feed)"`
	LedgerFeedURL string `long:"ledger-feed-url" env:"LEDGER_FEED_URL" description:"Feed URL for the feed ledger, defaults to WP_URL/feed/"`

	// Media
	UploadSamples     bool `long:"upload-samples" env:"UPLOAD_SAMPLES" description:"Re-host sample images too"`
	MaxImageDimension int  `long:"max-image-dimension" env:"MAX_IMAGE_DIMENSION" default:"0" description:"Downscale images above this size, 0 disables"`

	// History
	HistoryBackend   string `long:"history-backend" env:"HISTORY_BACKEND" default:"none" description:"Run history store (none|mongo|postgres|supabase)"`
	MongoURI         string `long:"mongo-uri" env:"MONGO_URI" default:"mongodb://localhost:27017" description:"MongoDB connection string"`
	MongoDB          string `long:"mongo-db" env:"MONGO_DB" default:"catalogpost" description:"MongoDB database"`
	MongoCollection  string `long:"mongo-collection" env:"MONGO_COLLECTION" default:"runs" description:"MongoDB collection"`
	PostgresDSN      string `long:"postgres-dsn" env:"POSTGRES_DSN" description:"Postgres DSN"`
	SupabaseURL      string `long:"supabase-url" env:"SUPABASE_URL" description:"Supabase project URL"`
	SupabaseKey      string `long:"supabase-key" env:"SUPABASE_KEY" description:"Supabase service key"`
	SupabasePassword string `long:"supabase-password" env:"SUPABASE_PASSWORD" description:"Supabase database password"`

	LogLevel string `long:"log-level" env:"LOG_LEVEL" default:"info" description:"debug|info|warn|error"`
}

// Config is built once at startup and handed to components at construction.
type Config struct {
	AffiliateID string
	WordPress   WordPress

	CatalogLimit int
	HTTPTimeout  time.Duration
	RequestRate  float64
	UserAgent    string
	HTTPProfile  httpclient.ClientType

	LedgerSource  string
	LedgerFeedURL string

	UploadSamples     bool
	MaxImageDimension int

	History History

	LogLevel slog.Level
}

// WordPress holds the remote site credentials.
type WordPress struct {
	URL      string
	User     string
	Password string
}

// History selects and configures the run history store.
type History struct {
	Backend          string
	MongoURI         string
	MongoDB          string
	MongoCollection  string
	PostgresDSN      string
	SupabaseURL      string
	SupabaseKey      string
	SupabasePassword string
}

// Load reads envFile into the environment (existing variables win) and builds
// the configuration from the environment.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (Config, error) {
	var raw rawConfig

	parser := flags.NewParser(&raw, flags.IgnoreUnknown)
	if _, err := parser.ParseArgs([]string{}); err != nil {
		return Config{}, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return raw.build()
}

func (raw rawConfig) build() (Config, error) {
	var missing []string
	for _, req := range []struct{ name, value string }{
		{"AFFILIATE_ID", raw.AffiliateID},
		{"WP_URL", raw.WPURL},
		{"WP_USER", raw.WPUser},
		{"WP_PASS", raw.WPPass},
	} {
		if strings.TrimSpace(req.value) == "" {
			missing = append(missing, req.name)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	level, err := ParseLevel(raw.LogLevel)
	if err != nil {
		return Config{}, err
	}

	profile, err := httpclient.ParseClientType(strings.ToLower(strings.TrimSpace(raw.HTTPProfile)))
	if err != nil {
		return Config{}, fmt.Errorf("HTTP_PROFILE: %w", err)
	}

	cfg := Config{
		AffiliateID: strings.TrimSpace(raw.AffiliateID),
		WordPress: WordPress{
			URL:      strings.TrimRight(strings.TrimSpace(raw.WPURL), "/"),
			User:     raw.WPUser,
			Password: raw.WPPass,
		},
		CatalogLimit:      raw.CatalogLimit,
		HTTPTimeout:       raw.HTTPTimeout,
		RequestRate:       raw.RequestRate,
		UserAgent:         raw.UserAgent,
		HTTPProfile:       profile,
		LedgerSource:      strings.ToLower(raw.LedgerSource),
		LedgerFeedURL:     raw.LedgerFeedURL,
		UploadSamples:     raw.UploadSamples,
		MaxImageDimension: raw.MaxImageDimension,
		History: History{
			Backend:          strings.ToLower(raw.HistoryBackend),
			MongoURI:         raw.MongoURI,
			MongoDB:          raw.MongoDB,
			MongoCollection:  raw.MongoCollection,
			PostgresDSN:      raw.PostgresDSN,
			SupabaseURL:      raw.SupabaseURL,
			SupabaseKey:      raw.SupabaseKey,
			SupabasePassword: raw.SupabasePassword,
		},
		LogLevel: level,
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.CatalogLimit < 0 {
		return fmt.Errorf("CATALOG_LIMIT must not be negative, got %d", c.CatalogLimit)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	if c.RequestRate < 0 {
		return fmt.Errorf("REQUEST_RATE must not be negative, got %v", c.RequestRate)
	}
	if c.MaxImageDimension < 0 {
		return fmt.Errorf("MAX_IMAGE_DIMENSION must not be negative, got %d", c.MaxImageDimension)
	}

	switch c.LedgerSource {
	case LedgerXMLRPC, LedgerFeed:
	default:
		return fmt.Errorf("unknown LEDGER_SOURCE %q", c.LedgerSource)
	}

	switch c.History.Backend {
	case HistoryNone, HistoryMongo:
	case HistoryPostgres:
		if c.History.PostgresDSN == "" {
			return fmt.Errorf("HISTORY_BACKEND=postgres requires POSTGRES_DSN")
		}
	case HistorySupabase:
		if c.History.SupabaseURL == "" {
			return fmt.Errorf("HISTORY_BACKEND=supabase requires SUPABASE_URL")
		}
		if c.History.SupabaseKey == "" && c.History.SupabasePassword == "" {
			return fmt.Errorf("HISTORY_BACKEND=supabase requires SUPABASE_KEY or SUPABASE_PASSWORD")
		}
	default:
		return fmt.Errorf("unknown HISTORY_BACKEND %q", c.History.Backend)
	}
	return nil
}

// ParseLevel maps debug|info|warn|error onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}
