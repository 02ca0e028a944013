//-------------------------------------------------------------------------
//
// pgEdge Data Simulator
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-datasim.
// Values come from defaults, an optional YAML config file, an optional
// .env file and the environment. CLI flags take precedence over all of
// them.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pgEdge/pgedge-datasim/internal/batch"
	"github.com/pgEdge/pgedge-datasim/internal/catalog"
	"github.com/pgEdge/pgedge-datasim/internal/datagen"
	"github.com/pgEdge/pgedge-datasim/internal/errs"
	"github.com/pgEdge/pgedge-datasim/internal/scheduler"
	"github.com/pgEdge/pgedge-datasim/internal/schema"
	"github.com/pgEdge/pgedge-datasim/internal/synth"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "DATASIM"

// MinTokenLength is the shortest identifier the token strategy accepts.
const MinTokenLength = 6

// Config holds all configuration for pgedge-datasim.
type Config struct {
	// Connection is the PostgreSQL connection string. When empty it is
	// assembled from Database.
	Connection string `mapstructure:"connection"`

	// Database holds discrete connection parts.
	Database DatabaseConfig `mapstructure:"database"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// MaxConns caps the connection pool.
	MaxConns int `mapstructure:"max_conns"`

	Catalogs  catalog.Paths   `mapstructure:"catalogs"`
	Tables    TablesConfig    `mapstructure:"tables"`
	Generate  GenerateConfig  `mapstructure:"generate"`
	Users     UsersConfig     `mapstructure:"users"`
	Sessions  SessionsConfig  `mapstructure:"sessions"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// DatabaseConfig holds connection parts used when Connection is empty.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// TablesConfig names the destination tables and the player identifier.
type TablesConfig struct {
	Transactions string `mapstructure:"transactions"`
	Players      string `mapstructure:"players"`
	IDColumn     string `mapstructure:"id_column"`

	// IDStrategy is used when the identifier column has no default:
	// sequence or token.
	IDStrategy  string `mapstructure:"id_strategy"`
	TokenLength int    `mapstructure:"token_length"`
}

// GenerateConfig holds transaction generation parameters.
type GenerateConfig struct {
	Seed        string  `mapstructure:"seed"`
	Year        int     `mapstructure:"year"`
	Count       int     `mapstructure:"count"`
	MonthStart  int     `mapstructure:"month_start"`
	MonthEnd    int     `mapstructure:"month_end"`
	PerHourMin  int     `mapstructure:"per_hour_min"`
	PerHourMax  int     `mapstructure:"per_hour_max"`
	PurchaseMin float64 `mapstructure:"purchase_min"`
	PurchaseMax float64 `mapstructure:"purchase_max"`
	ChunkSize   int     `mapstructure:"chunk_size"`
}

// UsersConfig holds on-demand user creation parameters.
type UsersConfig struct {
	Count     int `mapstructure:"count"`
	ChunkSize int `mapstructure:"chunk_size"`
}

// SessionsConfig holds session growth parameters.
type SessionsConfig struct {
	Min          int `mapstructure:"min"`
	Max          int `mapstructure:"max"`
	LookbackDays int `mapstructure:"lookback_days"`
	ChunkSize    int `mapstructure:"chunk_size"`
}

// SchedulerConfig holds the cron job settings.
type SchedulerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	SessionsCron string        `mapstructure:"sessions_cron"`
	UsersCron    string        `mapstructure:"users_cron"`
	UsersPerRun  int           `mapstructure:"users_per_run"`
	NewUsers     int           `mapstructure:"new_users"`
	Overlap      string        `mapstructure:"overlap"`
	JobTimeout   time.Duration `mapstructure:"job_timeout"`

	// MetricsAddr, when set, serves /metrics on this address.
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// legacyEnv maps config keys to the unprefixed environment variables
// older deployments already set.
var legacyEnv = map[string]string{
	"database.host":           "DB_HOST",
	"database.port":           "DB_PORT",
	"database.name":           "DB_NAME",
	"database.user":           "DB_USER",
	"database.password":       "DB_PASSWORD",
	"tables.transactions":     "PG_TABLE",
	"tables.players":          "PLAYERS_TABLE",
	"generate.seed":           "SEED_SEED",
	"generate.year":           "SEED_YEAR",
	"generate.count":          "SEED_COUNT",
	"generate.per_hour_min":   "SEED_PER_HOUR_MIN",
	"generate.per_hour_max":   "SEED_PER_HOUR_MAX",
	"sessions.min":            "SIM_MIN_SESSIONS",
	"sessions.max":            "SIM_MAX_SESSIONS",
	"sessions.lookback_days":  "SIM_DAYS",
	"scheduler.enabled":       "ENABLE_SIM_JOBS",
	"scheduler.sessions_cron": "SIM_SESSIONS_CRON",
	"scheduler.users_cron":    "SIM_USERS_CRON",
	"scheduler.users_per_run": "SIM_USERS_PER_RUN",
	"scheduler.new_users":     "SIM_NEW_USERS",
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	tx := synth.DefaultTransactionParams()
	sched := scheduler.DefaultConfig()

	return &Config{
		LogLevel: "info",
		MaxConns: 8,
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			SSLMode: "prefer",
		},
		Tables: TablesConfig{
			Transactions: schema.DefaultTransactionsTable,
			Players:      schema.DefaultPlayersTable,
			IDColumn:     schema.DefaultIDColumn,
			IDStrategy:   string(schema.StrategySequence),
			TokenLength:  synth.DefaultTokenLength,
		},
		Generate: GenerateConfig{
			Year:        tx.Year,
			Count:       200,
			MonthStart:  tx.MonthStart,
			MonthEnd:    tx.MonthEnd,
			PerHourMin:  tx.PerHourMin,
			PerHourMax:  tx.PerHourMax,
			PurchaseMin: tx.PurchaseMin,
			PurchaseMax: tx.PurchaseMax,
			ChunkSize:   batch.DefaultChunkSize,
		},
		Users: UsersConfig{
			Count:     100,
			ChunkSize: batch.DefaultChunkSize,
		},
		Sessions: SessionsConfig{
			Min:          sched.MinSessions,
			Max:          sched.MaxSessions,
			LookbackDays: sched.LookbackDays,
			ChunkSize:    batch.DefaultChunkSize,
		},
		Scheduler: SchedulerConfig{
			Enabled:      sched.Enabled,
			SessionsCron: sched.SessionsCron,
			UsersCron:    sched.UsersCron,
			UsersPerRun:  sched.UsersPerRun,
			NewUsers:     sched.NewUsers,
			Overlap:      string(sched.Overlap),
			JobTimeout:   sched.JobTimeout,
		},
	}
}

// Load reads configuration.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-datasim.yaml
// 3. ~/.config/pgedge-datasim/config.yaml
//
// A .env file in the working directory is loaded first if present;
// variables already set in the environment win over it.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("pgedge-datasim")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-datasim"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	registerDefaults(v, cfg)

	if err := bindEnvironment(v); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// registerDefaults makes every key known to viper so AutomaticEnv can
// override keys that are absent from the config file.
func registerDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("connection", cfg.Connection)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("max_conns", cfg.MaxConns)

	v.SetDefault("database.host", cfg.Database.Host)
	v.SetDefault("database.port", cfg.Database.Port)
	v.SetDefault("database.name", cfg.Database.Name)
	v.SetDefault("database.user", cfg.Database.User)
	v.SetDefault("database.password", cfg.Database.Password)
	v.SetDefault("database.sslmode", cfg.Database.SSLMode)

	v.SetDefault("catalogs.merchants", cfg.Catalogs.Merchants)
	v.SetDefault("catalogs.zones", cfg.Catalogs.Zones)
	v.SetDefault("catalogs.coupon_types", cfg.Catalogs.CouponTypes)
	v.SetDefault("catalogs.capture_locations", cfg.Catalogs.CaptureLocations)

	v.SetDefault("tables.transactions", cfg.Tables.Transactions)
	v.SetDefault("tables.players", cfg.Tables.Players)
	v.SetDefault("tables.id_column", cfg.Tables.IDColumn)
	v.SetDefault("tables.id_strategy", cfg.Tables.IDStrategy)
	v.SetDefault("tables.token_length", cfg.Tables.TokenLength)

	v.SetDefault("generate.seed", cfg.Generate.Seed)
	v.SetDefault("generate.year", cfg.Generate.Year)
	v.SetDefault("generate.count", cfg.Generate.Count)
	v.SetDefault("generate.month_start", cfg.Generate.MonthStart)
	v.SetDefault("generate.month_end", cfg.Generate.MonthEnd)
	v.SetDefault("generate.per_hour_min", cfg.Generate.PerHourMin)
	v.SetDefault("generate.per_hour_max", cfg.Generate.PerHourMax)
	v.SetDefault("generate.purchase_min", cfg.Generate.PurchaseMin)
	v.SetDefault("generate.purchase_max", cfg.Generate.PurchaseMax)
	v.SetDefault("generate.chunk_size", cfg.Generate.ChunkSize)

	v.SetDefault("users.count", cfg.Users.Count)
	v.SetDefault("users.chunk_size", cfg.Users.ChunkSize)

	v.SetDefault("sessions.min", cfg.Sessions.Min)
	v.SetDefault("sessions.max", cfg.Sessions.Max)
	v.SetDefault("sessions.lookback_days", cfg.Sessions.LookbackDays)
	v.SetDefault("sessions.chunk_size", cfg.Sessions.ChunkSize)

	v.SetDefault("scheduler.enabled", cfg.Scheduler.Enabled)
	v.SetDefault("scheduler.sessions_cron", cfg.Scheduler.SessionsCron)
	v.SetDefault("scheduler.users_cron", cfg.Scheduler.UsersCron)
	v.SetDefault("scheduler.users_per_run", cfg.Scheduler.UsersPerRun)
	v.SetDefault("scheduler.new_users", cfg.Scheduler.NewUsers)
	v.SetDefault("scheduler.overlap", cfg.Scheduler.Overlap)
	v.SetDefault("scheduler.job_timeout", cfg.Scheduler.JobTimeout)
	v.SetDefault("scheduler.metrics_addr", cfg.Scheduler.MetricsAddr)
}

// bindEnvironment maps DATASIM_* variables onto config keys and binds the
// legacy unprefixed names as fallbacks.
func bindEnvironment(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		// The prefixed name is listed first so it wins.
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return fmt.Errorf("error binding environment for %s: %w", key, err)
		}
	}
	return nil
}

// ConnectionString returns Connection, or a URL built from Database
// when Connection is empty and a database name is set.
func (c *Config) ConnectionString() string {
	if c.Connection != "" {
		return c.Connection
	}
	if c.Database.Name == "" {
		return ""
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port)),
		Path:   "/" + c.Database.Name,
	}
	if c.Database.User != "" {
		if c.Database.Password != "" {
			u.User = url.UserPassword(c.Database.User, c.Database.Password)
		} else {
			u.User = url.User(c.Database.User)
		}
	}
	if c.Database.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.Database.SSLMode}}.Encode()
	}
	return u.String()
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.ConnectionString() == "" {
		return errs.Validation("connection string is required")
	}
	if c.MaxConns < 1 {
		return errs.Validation("max_conns must be at least 1")
	}
	return c.ValidateTables()
}

// ValidateTables checks table names and the identifier strategy.
func (c *Config) ValidateTables() error {
	if err := schema.ValidateIdentifiers(c.Tables.Transactions, c.Tables.Players, c.Tables.IDColumn); err != nil {
		return err
	}
	strategy, err := schema.ParseClientStrategy(c.Tables.IDStrategy)
	if err != nil {
		return err
	}
	if strategy == schema.StrategyToken && c.Tables.TokenLength < MinTokenLength {
		return errs.Validation("token_length must be at least %d", MinTokenLength)
	}
	return nil
}

// ValidateGenerate checks configuration required for the generate command.
func (c *Config) ValidateGenerate() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.TransactionParams().Validate()
}

// ValidateUsers checks configuration required for the users command.
func (c *Config) ValidateUsers() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Users.Count < 0 {
		return errs.Validation("users count must not be negative")
	}
	return nil
}

// ValidateSessions checks configuration required for the sessions command.
func (c *Config) ValidateSessions() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return synth.SessionParams{
		MinSessions:  c.Sessions.Min,
		MaxSessions:  c.Sessions.Max,
		LookbackDays: c.Sessions.LookbackDays,
	}.Validate()
}

// ValidateSchedule checks configuration required for the schedule command.
func (c *Config) ValidateSchedule() error {
	if err := c.ValidateSessions(); err != nil {
		return err
	}
	if c.Scheduler.UsersPerRun < 1 {
		return errs.Validation("users_per_run must be at least 1")
	}
	if c.Scheduler.NewUsers < 0 {
		return errs.Validation("new_users must not be negative")
	}
	if _, err := scheduler.ParseOverlapPolicy(c.Scheduler.Overlap); err != nil {
		return err
	}
	if !c.Scheduler.Enabled {
		return nil
	}
	for _, expr := range []string{c.Scheduler.SessionsCron, c.Scheduler.UsersCron} {
		if err := scheduler.ValidateCron(expr); err != nil {
			return err
		}
	}
	return nil
}

// TransactionParams converts the generate section.
func (c *Config) TransactionParams() synth.TransactionParams {
	return synth.TransactionParams{
		Seed:        datagen.ParseSeed(c.Generate.Seed),
		Year:        c.Generate.Year,
		Count:       c.Generate.Count,
		MonthStart:  c.Generate.MonthStart,
		MonthEnd:    c.Generate.MonthEnd,
		PerHourMin:  c.Generate.PerHourMin,
		PerHourMax:  c.Generate.PerHourMax,
		PurchaseMin: c.Generate.PurchaseMin,
		PurchaseMax: c.Generate.PurchaseMax,
	}
}

// SchedulerConfig converts the scheduler and sessions sections.
func (c *Config) SchedulerConfig() scheduler.Config {
	overlap, _ := scheduler.ParseOverlapPolicy(c.Scheduler.Overlap)
	return scheduler.Config{
		Enabled:      c.Scheduler.Enabled,
		SessionsCron: c.Scheduler.SessionsCron,
		UsersCron:    c.Scheduler.UsersCron,
		UsersPerRun:  c.Scheduler.UsersPerRun,
		MinSessions:  c.Sessions.Min,
		MaxSessions:  c.Sessions.Max,
		LookbackDays: c.Sessions.LookbackDays,
		NewUsers:     c.Scheduler.NewUsers,
		ChunkSize:    c.Sessions.ChunkSize,
		Overlap:      overlap,
		JobTimeout:   c.Scheduler.JobTimeout,
	}
}
