package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Staff     StaffConfig
	Shop      ShopConfig
	Cart      CartConfig
	Realtime  RealtimeConfig
	Storage   StorageConfig
	Report    ReportConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Swagger   SwaggerConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application configuration
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver          string // postgres or sqlite
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	SQLitePath      string // file path or ":memory:" when Driver is sqlite
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	AutoMigrate     bool
	SeedMenu        bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret                string
	AccessTokenExpiration time.Duration
	Issuer                string
}

// StaffAccount is one fixed back-office login
type StaffAccount struct {
	Username     string
	DisplayName  string
	Password     string // plain text, development only
	PasswordHash string // bcrypt
}

// StaffConfig holds the two fixed staff roles
type StaffConfig struct {
	Admin   StaffAccount
	Cashier StaffAccount
}

// ShopConfig holds storefront business settings
type ShopConfig struct {
	Name                string
	WhatsAppNumber      string
	DefaultTable        string
	OversellPolicy      string // clamp or reject
	DefaultMinStock     int
	SeedStock           int
	LogRetention        int
	RecommendationTopN  int
	CheckoutIdempotency time.Duration // 0 disables Idempotency-Key handling
}

// CartConfig holds cart session settings
type CartConfig struct {
	TTL           time.Duration
	SessionHeader string
}

// RealtimeConfig holds SSE and change feed settings
type RealtimeConfig struct {
	Heartbeat      time.Duration
	MaxClients     int
	Channel        string
	ReconnectDelay time.Duration
}

// StorageConfig holds S3-compatible object storage settings
type StorageConfig struct {
	Enabled         bool
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
	UsePathStyle    bool
	ArchiveReports  bool
}

// ReportConfig holds report export settings
type ReportConfig struct {
	PDFEnabled bool
	ChromePath string
	Timeout    time.Duration
	Timezone   string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// SwaggerConfig holds Swagger UI settings
type SwaggerConfig struct {
	Enabled bool
}

// TelemetryConfig holds OpenTelemetry and profiling configuration
type TelemetryConfig struct {
	Enabled           bool    // Enable tracing
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0)
	ServiceName       string
	Insecure          bool
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	LogsEnabled       bool
	DBTraceEnabled    bool
	DBSlowQueryThresh time.Duration

	ProfilingEnabled   bool
	ProfilingServer    string
	ProfilingSpanLinks bool
}

// Load reads configuration from config.toml and TEHRAJA_* environment variables
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("TEHRAJA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			SQLitePath:      v.GetString("database.sqlite_path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
			SeedMenu:        v.GetBool("database.seed_menu"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                v.GetString("jwt.secret"),
			AccessTokenExpiration: v.GetDuration("jwt.access_token_expiration"),
			Issuer:                v.GetString("jwt.issuer"),
		},
		Staff: StaffConfig{
			Admin: StaffAccount{
				Username:     v.GetString("staff.admin.username"),
				DisplayName:  v.GetString("staff.admin.display_name"),
				Password:     v.GetString("staff.admin.password"),
				PasswordHash: v.GetString("staff.admin.password_hash"),
			},
			Cashier: StaffAccount{
				Username:     v.GetString("staff.cashier.username"),
				DisplayName:  v.GetString("staff.cashier.display_name"),
				Password:     v.GetString("staff.cashier.password"),
				PasswordHash: v.GetString("staff.cashier.password_hash"),
			},
		},
		Shop: ShopConfig{
			Name:                v.GetString("shop.name"),
			WhatsAppNumber:      v.GetString("shop.whatsapp_number"),
			DefaultTable:        v.GetString("shop.default_table"),
			OversellPolicy:      v.GetString("shop.oversell_policy"),
			DefaultMinStock:     v.GetInt("shop.default_min_stock"),
			SeedStock:           v.GetInt("shop.seed_stock"),
			LogRetention:        v.GetInt("shop.log_retention"),
			RecommendationTopN:  v.GetInt("shop.recommendation_top_n"),
			CheckoutIdempotency: v.GetDuration("shop.checkout_idempotency_ttl"),
		},
		Cart: CartConfig{
			TTL:           v.GetDuration("cart.ttl"),
			SessionHeader: v.GetString("cart.session_header"),
		},
		Realtime: RealtimeConfig{
			Heartbeat:      v.GetDuration("realtime.heartbeat"),
			MaxClients:     v.GetInt("realtime.max_clients"),
			Channel:        v.GetString("realtime.channel"),
			ReconnectDelay: v.GetDuration("realtime.reconnect_delay"),
		},
		Storage: StorageConfig{
			Enabled:         v.GetBool("storage.enabled"),
			Endpoint:        v.GetString("storage.endpoint"),
			Region:          v.GetString("storage.region"),
			Bucket:          v.GetString("storage.bucket"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			PublicURL:       v.GetString("storage.public_url"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
			ArchiveReports:  v.GetBool("storage.archive_reports"),
		},
		Report: ReportConfig{
			PDFEnabled: v.GetBool("report.pdf_enabled"),
			ChromePath: v.GetString("report.chrome_path"),
			Timeout:    v.GetDuration("report.timeout"),
			Timezone:   v.GetString("report.timezone"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Swagger: SwaggerConfig{
			Enabled: v.GetBool("swagger.enabled"),
		},
		Telemetry: TelemetryConfig{
			Enabled:            v.GetBool("telemetry.enabled"),
			CollectorEndpoint:  v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:      v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:        v.GetString("telemetry.service_name"),
			Insecure:           v.GetBool("telemetry.insecure"),
			MetricsEnabled:     v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:    v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:        v.GetBool("telemetry.logs_enabled"),
			DBTraceEnabled:     v.GetBool("telemetry.db_trace_enabled"),
			DBSlowQueryThresh:  v.GetDuration("telemetry.db_slow_query_threshold"),
			ProfilingEnabled:   v.GetBool("telemetry.profiling_enabled"),
			ProfilingServer:    v.GetString("telemetry.profiling_server"),
			ProfilingSpanLinks: v.GetBool("telemetry.profiling_span_links"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "tehraja-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "tehraja"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "tehraja.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 12 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "tehraja-backend"
	}
	if cfg.Staff.Admin.Username == "" {
		cfg.Staff.Admin.Username = "admin"
	}
	if cfg.Staff.Admin.DisplayName == "" {
		cfg.Staff.Admin.DisplayName = "Admin"
	}
	if cfg.Staff.Cashier.Username == "" {
		cfg.Staff.Cashier.Username = "kasir"
	}
	if cfg.Staff.Cashier.DisplayName == "" {
		cfg.Staff.Cashier.DisplayName = "Kasir"
	}
	if cfg.Shop.Name == "" {
		cfg.Shop.Name = "TEH RAJA"
	}
	if cfg.Shop.WhatsAppNumber == "" {
		cfg.Shop.WhatsAppNumber = "6285166500741"
	}
	if cfg.Shop.DefaultTable == "" {
		cfg.Shop.DefaultTable = "Takeaway"
	}
	if cfg.Shop.OversellPolicy == "" {
		cfg.Shop.OversellPolicy = "clamp"
	}
	if cfg.Shop.DefaultMinStock == 0 {
		cfg.Shop.DefaultMinStock = 5
	}
	if cfg.Shop.SeedStock == 0 {
		cfg.Shop.SeedStock = 50
	}
	if cfg.Shop.LogRetention == 0 {
		cfg.Shop.LogRetention = 100
	}
	if cfg.Shop.RecommendationTopN == 0 {
		cfg.Shop.RecommendationTopN = 3
	}
	if cfg.Cart.TTL == 0 {
		cfg.Cart.TTL = 7 * 24 * time.Hour
	}
	if cfg.Cart.SessionHeader == "" {
		cfg.Cart.SessionHeader = "X-Cart-Session"
	}
	if cfg.Realtime.Heartbeat == 0 {
		cfg.Realtime.Heartbeat = 30 * time.Second
	}
	if cfg.Realtime.MaxClients == 0 {
		cfg.Realtime.MaxClients = 1000
	}
	if cfg.Realtime.Channel == "" {
		cfg.Realtime.Channel = "tehraja:changes"
	}
	if cfg.Realtime.ReconnectDelay == 0 {
		cfg.Realtime.ReconnectDelay = 2 * time.Second
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Report.Timeout == 0 {
		cfg.Report.Timeout = 30 * time.Second
	}
	if cfg.Report.Timezone == "" {
		cfg.Report.Timezone = "Asia/Jakarta"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	// SSE streams hold the connection open, so no write timeout by default.
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 5 << 20 // 5MB, room for product images
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-Cart-Session", "Idempotency-Key"}
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "tehraja-backend"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch strings.ToLower(c.Shop.OversellPolicy) {
	case "clamp", "reject":
	default:
		return fmt.Errorf("shop.oversell_policy must be clamp or reject, got %q", c.Shop.OversellPolicy)
	}
	if c.Shop.LogRetention < 1 {
		return fmt.Errorf("shop.log_retention must be positive")
	}
	if c.Shop.DefaultMinStock < 0 {
		return fmt.Errorf("shop.default_min_stock cannot be negative")
	}
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage is enabled")
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Driver == "postgres" && c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Staff.Admin.PasswordHash == "" || c.Staff.Cashier.PasswordHash == "" {
			return fmt.Errorf("staff password hashes are required in production")
		}
		if c.Staff.Admin.Password != "" || c.Staff.Cashier.Password != "" {
			return fmt.Errorf("plain staff passwords are not allowed in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.Telemetry.ProfilingEnabled && c.Telemetry.ProfilingServer == "" {
		return fmt.Errorf("telemetry.profiling_server is required when profiling is enabled")
	}

	return nil
}

// IsDevelopment reports whether the app runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
