package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env       string
	Server    ServerConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Stripe    StripeConfig
	SMTP      SMTPConfig
	AMQP      AMQPConfig
	Notify    NotifyConfig
	Booking   BookingConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
	MaxConns int32
}

// DSN returns the pgx connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
		c.SSLMode,
	)
}

type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	AppURL        string
}

func (c StripeConfig) Enabled() bool {
	return c.SecretKey != ""
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	FromName string
}

func (c SMTPConfig) Enabled() bool {
	return c.User != "" && c.Password != ""
}

type AMQPConfig struct {
	URL   string
	Queue string
}

func (c AMQPConfig) Enabled() bool {
	return c.URL != ""
}

type NotifyConfig struct {
	Workers   int
	QueueSize int
}

type BookingConfig struct {
	StrictCapacity bool
}

type RateLimitConfig struct {
	PerMinute int
	// AuthPerMinute applies to signup and login, keyed by client IP.
	AuthPerMinute int
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	env := getEnv("APP_ENV", "development")

	serverPort, err := getInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	serverCfg := ServerConfig{
		Host: getEnv("SERVER_HOST", "localhost"),
		Port: serverPort,
	}

	postgresCfg, err := loadPostgres()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisDB, err := getInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisCfg := RedisConfig{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
	}

	authCfg, err := loadAuth()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stripeCfg := StripeConfig{
		SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		Currency:      strings.ToLower(getEnv("STRIPE_CURRENCY", "usd")),
		AppURL:        strings.TrimRight(getEnv("APP_URL", "http://localhost:3000"), "/"),
	}

	smtpPort, err := getInt("SMTP_PORT", 587)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	smtpCfg := SMTPConfig{
		Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		Port:     smtpPort,
		User:     os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASSWORD"),
		FromName: getEnv("MAIL_FROM_NAME", "TravelHub"),
	}

	amqpCfg := AMQPConfig{
		URL:   os.Getenv("AMQP_URL"),
		Queue: getEnv("AMQP_QUEUE", "booking.notifications"),
	}

	workers, err := getInt("NOTIFY_WORKERS", 2)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if workers < 1 {
		return nil, fmt.Errorf("%s: NOTIFY_WORKERS must be >= 1", op)
	}

	queueSize, err := getInt("NOTIFY_QUEUE_SIZE", 256)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if queueSize < 1 {
		return nil, fmt.Errorf("%s: NOTIFY_QUEUE_SIZE must be >= 1", op)
	}

	strict, err := getBool("BOOKING_STRICT_CAPACITY", false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	perMinute, err := getInt("RATE_LIMIT_PER_MINUTE", 10)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	authPerMinute, err := getInt("RATE_LIMIT_AUTH_PER_MINUTE", 5)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Config{
		Env:       env,
		Server:    serverCfg,
		Postgres:  postgresCfg,
		Redis:     redisCfg,
		Auth:      authCfg,
		Stripe:    stripeCfg,
		SMTP:      smtpCfg,
		AMQP:      amqpCfg,
		Notify:    NotifyConfig{Workers: workers, QueueSize: queueSize},
		Booking:   BookingConfig{StrictCapacity: strict},
		RateLimit: RateLimitConfig{PerMinute: perMinute, AuthPerMinute: authPerMinute},
	}, nil
}

// LoadPostgres reads only the database section. The maintenance tools use it
// so they do not need the server's secrets.
func LoadPostgres() (PostgresConfig, error) {
	_ = godotenv.Load()
	return loadPostgres()
}

func loadPostgres() (PostgresConfig, error) {
	port, err := getInt("POSTGRES_PORT", 5432)
	if err != nil {
		return PostgresConfig{}, err
	}

	user := os.Getenv("POSTGRES_USER")
	if user == "" {
		return PostgresConfig{}, fmt.Errorf("missing POSTGRES_USER")
	}

	password := os.Getenv("POSTGRES_PASSWORD")
	if password == "" {
		return PostgresConfig{}, fmt.Errorf("missing POSTGRES_PASSWORD")
	}

	name := os.Getenv("POSTGRES_DB")
	if name == "" {
		return PostgresConfig{}, fmt.Errorf("missing POSTGRES_DB")
	}

	maxConns, err := getInt("POSTGRES_MAX_CONNS", 0)
	if err != nil {
		return PostgresConfig{}, err
	}

	return PostgresConfig{
		User:     user,
		Password: password,
		Name:     name,
		Host:     getEnv("POSTGRES_HOST", "localhost"),
		Port:     port,
		SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		MaxConns: int32(maxConns),
	}, nil
}

func loadAuth() (AuthConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return AuthConfig{}, fmt.Errorf("missing JWT_SECRET")
	}

	ttl, err := getDuration("JWT_TTL", 30*24*time.Hour)
	if err != nil {
		return AuthConfig{}, err
	}

	cost, err := getInt("BCRYPT_COST", 12)
	if err != nil {
		return AuthConfig{}, err
	}
	if cost < 4 || cost > 31 {
		return AuthConfig{}, fmt.Errorf("BCRYPT_COST must be within 4..31")
	}

	return AuthConfig{JWTSecret: secret, TokenTTL: ttl, BcryptCost: cost}, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getBool(key string, def bool) (bool, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
