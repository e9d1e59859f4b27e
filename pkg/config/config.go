package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// AppConfig detém a configuração da aplicação.
type AppConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	AppVersion  string `env:"APP_VERSION" envDefault:"dev"`

	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Reset    ResetConfig
	Email    EmailConfig
	CORS     CORSConfig

	// FeatureToggles is filled from FEATURE_* variables, keyed without the prefix.
	FeatureToggles map[string]bool
}

type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"5000"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// DatabaseConfig holds the store settings. Driver "memory" runs without postgres.
type DatabaseConfig struct {
	Driver          string        `env:"DB_DRIVER" envDefault:"postgres"`
	Host            string        `env:"DB_HOST" envDefault:"localhost"`
	Port            string        `env:"DB_PORT" envDefault:"5432"`
	User            string        `env:"DB_USER" envDefault:"todo_user"`
	Password        string        `env:"DB_PASSWORD" envDefault:"todo_pass"`
	Name            string        `env:"DB_NAME" envDefault:"todo_db"`
	SSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`
	RunMigrations   bool          `env:"DB_RUN_MIGRATIONS" envDefault:"true"`
}

type JWTConfig struct {
	Secret    string        `env:"JWT_SECRET,required,notEmpty"`
	ExpiresIn time.Duration `env:"JWT_EXPIRES_IN" envDefault:"720h"`
}

type ResetConfig struct {
	TokenTTL   time.Duration `env:"RESET_TOKEN_TTL" envDefault:"10m"`
	ClientURL  string        `env:"CLIENT_URL" envDefault:"http://localhost:3000"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`
}

type EmailConfig struct {
	AWSRegion string `env:"AWS_REGION"`
	From      string `env:"EMAIL_FROM"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// Cfg é a configuração carregada pelo último Load bem-sucedido.
var Cfg AppConfig

// Load carrega a configuração da aplicação de variáveis de ambiente.
// Um arquivo .env é lido se existir; variáveis já definidas no ambiente prevalecem.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Println("Aviso: erro ao carregar arquivo .env:", err)
	}
	return Parse()
}

// Parse lê a configuração apenas do ambiente atual, sem tocar em arquivos .env.
func Parse() (*AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.FeatureToggles = loadFeatureToggles(os.Environ())
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{cfg.Reset.ClientURL}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	Cfg = cfg
	return &cfg, nil
}

// Validate checks values that struct tags cannot express.
func (c *AppConfig) Validate() error {
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.JWT.ExpiresIn <= 0 {
		return errors.New("JWT_EXPIRES_IN must be positive")
	}
	if c.Reset.TokenTTL <= 0 {
		return errors.New("RESET_TOKEN_TTL must be positive")
	}
	return nil
}

func (c *AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}

// DSN returns the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

func loadFeatureToggles(environ []string) map[string]bool {
	toggles := make(map[string]bool)
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, "FEATURE_") {
			continue
		}
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			log.Printf("Aviso: feature toggle '%s' com valor inválido '%s', ignorando.", key, value)
			continue
		}
		toggles[strings.TrimPrefix(key, "FEATURE_")] = enabled
	}
	return toggles
}
