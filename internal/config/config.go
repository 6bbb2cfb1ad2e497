// config предоставляет структуру конфигурации сервиса и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация сервиса.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	Ops      OpsConfig     `yaml:"ops"`
	Auth     AuthConfig    `yaml:"auth"`
	DB       DBConfig      `yaml:"db"`
	Redis    RedisConfig   `yaml:"redis"`
	OTP      OTPConfig     `yaml:"otp"`
	Mail     MailConfig    `yaml:"mail"`
	Limits   LimitsConfig  `yaml:"limits"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// TimeoutConfig — сервисные таймауты (общий дедлайн обработки запроса).
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
}

// HTTPConfig — сетевые настройки API-сервера.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"50080"`
}

// OpsConfig — служебный HTTP (livez/healthz/metrics).
type OpsConfig struct {
	Host string `yaml:"host" env:"OPS_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"OPS_PORT" env-default:"50090"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// Addr возвращает адрес в формате host:port.
func (o OpsConfig) Addr() string {
	return net.JoinHostPort(o.Host, o.Port)
}

// AuthConfig содержит параметры выпуска/валидации токенов и политику
// учебной почты закрытой популяции пользователей.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"1h"`
	Issuer         string        `yaml:"issuer"   env:"ISSUER" env-default:"campus-match"`
	Audience       []string      `yaml:"audience" env:"AUDIENCE" env-default:"campus-match-web"`
	// Домен студенческой почты: допускаются только адреса вида <цифры>@<домен>.
	EmailDomain string `yaml:"email_domain" env:"EMAIL_DOMAIN" env-default:"kiit.ac.in"`
}

// DBConfig — настройки подключения к MongoDB.
type DBConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL" env-required:"true"`
}

// RedisConfig — настройки подключения к Redis (кэш OTP).
type RedisConfig struct {
	URL string `yaml:"url" env:"REDIS_URL" env-required:"true"`
}

// OTPConfig — параметры одноразовых кодов подтверждения почты.
type OTPConfig struct {
	TTL        time.Duration `yaml:"ttl" env:"OTP_TTL" env-default:"15m"`
	CodeLength int           `yaml:"code_length" env:"OTP_CODE_LENGTH" env-default:"6"`
}

// MailConfig — параметры отправки писем через Mailtrap API.
type MailConfig struct {
	APIURL    string `yaml:"api_url" env:"MAILTRAP_API_URL" env-default:""`
	APIKey    string `yaml:"api_key" env:"MAILTRAP_API_KEY" env-default:""`
	FromEmail string `yaml:"from_email" env:"MAIL_FROM_EMAIL" env-default:"no-reply@campus-match.local"`
	FromName  string `yaml:"from_name"  env:"MAIL_FROM_NAME"  env-default:"Campus Match"`
}

// LimitsConfig — доменные константы совместимости.
type LimitsConfig struct {
	// Минимальный балл совместимости, при котором разрешён запрос контакта.
	// Порог включительный: score == ScoreThreshold проходит.
	ScoreThreshold int32 `yaml:"score_threshold" env:"SCORE_THRESHOLD" env-default:"60"`
	// Количество вопросов теста; ответы принимаются только на все сразу.
	QuestionCount int `yaml:"question_count" env:"QUESTION_COUNT" env-default:"10"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		c, err := tryRead(path)
		if err != nil {
			return nil, err
		}

		if err := c.validate(); err != nil {
			return nil, err
		}

		return c, nil
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		c, err := tryRead(envPath)
		if err != nil {
			return nil, err
		}

		if err := c.validate(); err != nil {
			return nil, err
		}

		return c, nil
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		c, err := tryRead("local.yaml")
		if err != nil {
			return nil, err
		}

		if err := c.validate(); err != nil {
			return nil, err
		}

		return c, nil
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate — базовая валидация значений.
func (c *Config) validate() error {
	if c.DB.URL == "" {
		return fmt.Errorf("db.url is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("redis.url is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	if c.Auth.EmailDomain == "" {
		return fmt.Errorf("auth.email_domain is required")
	}

	if c.OTP.TTL < time.Minute {
		return fmt.Errorf("otp.ttl must be at least 1m")
	}

	if c.OTP.CodeLength < 4 || c.OTP.CodeLength > 10 {
		return fmt.Errorf("otp.code_length must be in [4, 10]")
	}

	if c.Limits.ScoreThreshold < 0 || c.Limits.ScoreThreshold > 100 {
		return fmt.Errorf("limits.score_threshold must be in [0, 100]")
	}

	if c.Limits.QuestionCount <= 0 {
		return fmt.Errorf("limits.question_count must be > 0")
	}

	return nil
}
