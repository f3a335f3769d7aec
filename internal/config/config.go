package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const (
	StoreRedis    = "redis"
	StoreDynamoDB = "dynamodb"
)

type Config struct {
	Port           string
	DatabaseDSN    string
	DBDebug        bool
	CreateSchema   bool
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	AMQPURL        string
	UserEventQueue string
	JWTSecret      string
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	BcryptCost     int
	TokenStore     string
	TableName      string
	Region         string
	LogLevel       string
	AuthRateLimit  float64
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("USER_EVENT_QUEUE", "user_event.queue")
	v.SetDefault("ACCESS_TOKEN_TTL", 900)
	v.SetDefault("REFRESH_TOKEN_TTL", 1_296_000)
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("TOKEN_STORE", StoreRedis)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("AUTH_RATE_LIMIT", 20)
	v.SetDefault("DB_DEBUG", false)
	v.SetDefault("CREATE_SCHEMA", false)
}

// Load reads the environment, and CONFIG_FILE when it is set, into a
// validated Config.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := Config{
		Port:           v.GetString("PORT"),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		DBDebug:        v.GetBool("DB_DEBUG"),
		CreateSchema:   v.GetBool("CREATE_SCHEMA"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		RedisDB:        v.GetInt("REDIS_DB"),
		AMQPURL:        v.GetString("AMQP_URL"),
		UserEventQueue: v.GetString("USER_EVENT_QUEUE"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		AccessTTL:      lifetime(v, "ACCESS_TOKEN_TTL"),
		RefreshTTL:     lifetime(v, "REFRESH_TOKEN_TTL"),
		BcryptCost:     v.GetInt("BCRYPT_COST"),
		TokenStore:     strings.ToLower(v.GetString("TOKEN_STORE")),
		TableName:      v.GetString("TABLE_NAME"),
		Region:         v.GetString("AWS_REGION"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		AuthRateLimit:  v.GetFloat64("AUTH_RATE_LIMIT"),
	}
	return cfg, cfg.Validate()
}

// lifetime reads a token lifetime. A bare number counts seconds; anything
// else is parsed as a duration such as "15m".
func lifetime(v *viper.Viper, key string) time.Duration {
	if n, err := strconv.ParseInt(strings.TrimSpace(v.GetString(key)), 10, 64); err == nil {
		return time.Duration(n) * time.Second
	}
	return v.GetDuration(key)
}

func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN is required"))
	}
	if c.AccessTTL < time.Second || c.RefreshTTL < time.Second {
		errs = append(errs, errors.New("token lifetimes must be at least one second"))
	}
	switch c.TokenStore {
	case StoreRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis token store"))
		}
	case StoreDynamoDB:
		if c.TableName == "" || c.Region == "" {
			errs = append(errs, errors.New("TABLE_NAME and AWS_REGION are required for the dynamodb token store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown TOKEN_STORE %q", c.TokenStore))
	}
	return errors.Join(errs...)
}
