package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Cache    CacheConfig
	Rates    RatesConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
	Issuer            string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig governs the cumulative report cache.
type CacheConfig struct {
	Enabled   bool
	ReportTTL time.Duration
}

// RatesConfig carries the remuneration rate schedule. Institutional rates
// change between exam years, so every constant can be overridden through the
// environment without a rebuild.
type RatesConfig struct {
	QuestionPreparationFull float64
	QuestionPreparationHalf float64
	ModerationPerQuestion   float64
	ScriptFinal             float64
	ScriptIncourse          float64
	ScriptAssignment        float64
	ScriptPresentation      float64
	ScriptPractical         float64
	ScriptDefault           float64
	PracticalPerStudentDay  float64
	VivaPerStudent          float64
	TabulationPerStudent    float64
	AnswerSheetPerSheet     float64
	OtherPerPage            float64
	OtherFlat               float64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
		Issuer:            v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{
		Enabled:   v.GetBool("ENABLE_REPORT_CACHE"),
		ReportTTL: parseDuration(v.GetString("REPORT_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Rates = RatesConfig{
		QuestionPreparationFull: v.GetFloat64("RATE_QUESTION_PREPARATION_FULL"),
		QuestionPreparationHalf: v.GetFloat64("RATE_QUESTION_PREPARATION_HALF"),
		ModerationPerQuestion:   v.GetFloat64("RATE_MODERATION_PER_QUESTION"),
		ScriptFinal:             v.GetFloat64("RATE_SCRIPT_FINAL"),
		ScriptIncourse:          v.GetFloat64("RATE_SCRIPT_INCOURSE"),
		ScriptAssignment:        v.GetFloat64("RATE_SCRIPT_ASSIGNMENT"),
		ScriptPresentation:      v.GetFloat64("RATE_SCRIPT_PRESENTATION"),
		ScriptPractical:         v.GetFloat64("RATE_SCRIPT_PRACTICAL"),
		ScriptDefault:           v.GetFloat64("RATE_SCRIPT_DEFAULT"),
		PracticalPerStudentDay:  v.GetFloat64("RATE_PRACTICAL_PER_STUDENT_DAY"),
		VivaPerStudent:          v.GetFloat64("RATE_VIVA_PER_STUDENT"),
		TabulationPerStudent:    v.GetFloat64("RATE_TABULATION_PER_STUDENT"),
		AnswerSheetPerSheet:     v.GetFloat64("RATE_ANSWER_SHEET_PER_SHEET"),
		OtherPerPage:            v.GetFloat64("RATE_OTHER_PER_PAGE"),
		OtherFlat:               v.GetFloat64("RATE_OTHER_FLAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "exam_remuneration")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")
	v.SetDefault("JWT_ISSUER", "exam-remuneration-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_REPORT_CACHE", false)
	v.SetDefault("REPORT_CACHE_TTL", "10m")

	v.SetDefault("RATE_QUESTION_PREPARATION_FULL", 500.0)
	v.SetDefault("RATE_QUESTION_PREPARATION_HALF", 250.0)
	v.SetDefault("RATE_MODERATION_PER_QUESTION", 100.0)
	v.SetDefault("RATE_SCRIPT_FINAL", 15.0)
	v.SetDefault("RATE_SCRIPT_INCOURSE", 5.0)
	v.SetDefault("RATE_SCRIPT_ASSIGNMENT", 5.0)
	v.SetDefault("RATE_SCRIPT_PRESENTATION", 10.0)
	v.SetDefault("RATE_SCRIPT_PRACTICAL", 10.0)
	v.SetDefault("RATE_SCRIPT_DEFAULT", 10.0)
	v.SetDefault("RATE_PRACTICAL_PER_STUDENT_DAY", 2.0)
	v.SetDefault("RATE_VIVA_PER_STUDENT", 10.0)
	v.SetDefault("RATE_TABULATION_PER_STUDENT", 5.0)
	v.SetDefault("RATE_ANSWER_SHEET_PER_SHEET", 20.0)
	v.SetDefault("RATE_OTHER_PER_PAGE", 10.0)
	v.SetDefault("RATE_OTHER_FLAT", 500.0)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
