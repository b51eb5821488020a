package config

import (
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"

	StorageDisk     = "disk"
	StorageFirebase = "firebase"
)

type Config struct {
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	DBDriver      string `mapstructure:"DB_DRIVER"`
	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	JWTSecret  string        `mapstructure:"JWT_SECRET"`
	TokenTTL   time.Duration `mapstructure:"TOKEN_TTL"`
	BcryptCost int           `mapstructure:"BCRYPT_COST"`

	StorageDriver           string `mapstructure:"STORAGE_DRIVER"`
	UploadDir               string `mapstructure:"UPLOAD_DIR"`
	PublicBaseURL           string `mapstructure:"PUBLIC_BASE_URL"`
	FirebaseCredentialsPath string `mapstructure:"FIREBASE_CREDENTIALS_PATH"`
	FirebaseStorageBucket   string `mapstructure:"FIREBASE_STORAGE_BUCKET"`

	GeminiAPIKey     string `mapstructure:"GEMINI_API_KEY"`
	GeminiTextModel  string `mapstructure:"GEMINI_TEXT_MODEL"`
	GeminiImageModel string `mapstructure:"GEMINI_IMAGE_MODEL"`

	MetricsPort string `mapstructure:"METRICS_PORT"`

	LogLevel      string `mapstructure:"LOG_LEVEL"`
	LogPath       string `mapstructure:"LOG_PATH"`
	LogMaxSizeMB  int    `mapstructure:"LOG_MAX_SIZE_MB"`
	LogMaxBackups int    `mapstructure:"LOG_MAX_BACKUPS"`
	LogMaxAgeDays int    `mapstructure:"LOG_MAX_AGE_DAYS"`
	LogCompress   bool   `mapstructure:"LOG_COMPRESS"`
}

var defaults = map[string]any{
	"PORT":                      "8080",
	"ENV":                       "development",
	"DB_DRIVER":                 DriverMongo,
	"MONGO_URI":                 "",
	"MONGO_DATABASE":            "dreamscape",
	"JWT_SECRET":                "",
	"TOKEN_TTL":                 "72h",
	"BCRYPT_COST":               12,
	"STORAGE_DRIVER":            StorageDisk,
	"UPLOAD_DIR":                "public/uploads",
	"PUBLIC_BASE_URL":           "http://localhost:8080",
	"FIREBASE_CREDENTIALS_PATH": "",
	"FIREBASE_STORAGE_BUCKET":   "",
	"GEMINI_API_KEY":            "",
	"GEMINI_TEXT_MODEL":         "gemini-2.5-flash",
	"GEMINI_IMAGE_MODEL":        "imagen-3.0-generate-002",
	"METRICS_PORT":              "9090",
	"LOG_LEVEL":                 "info",
	"LOG_PATH":                  "",
	"LOG_MAX_SIZE_MB":           100,
	"LOG_MAX_BACKUPS":           3,
	"LOG_MAX_AGE_DAYS":          7,
	"LOG_COMPRESS":              false,
}

// Load reads .env (if present) and the process environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET environment variable not set"))
	}
	switch c.DBDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI environment variable not set"))
		}
	case DriverMemory:
	default:
		errs = append(errs, errors.New("DB_DRIVER must be mongo or memory"))
	}
	switch c.StorageDriver {
	case StorageDisk:
	case StorageFirebase:
		if c.FirebaseCredentialsPath == "" || c.FirebaseStorageBucket == "" {
			errs = append(errs, errors.New("firebase storage needs FIREBASE_CREDENTIALS_PATH and FIREBASE_STORAGE_BUCKET"))
		}
	default:
		errs = append(errs, errors.New("STORAGE_DRIVER must be disk or firebase"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
