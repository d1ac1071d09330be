package configs

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// TelegramConfig хранит настройки чат-транспорта
type TelegramConfig struct {
	Token string
}

// AvitoConfig — учетные данные площадки Авито (client_credentials обмен)
type AvitoConfig struct {
	ClientID     string
	ClientSecret string
	CompanyID    string
}

// CianConfig — bearer-токен площадки CIAN
type CianConfig struct {
	Token string
}

// YandexConfig — двойная OAuth-авторизация фида Яндекс Недвижимости
type YandexConfig struct {
	Token  string
	XToken string
	FeedID string
}

// DomclickConfig — токен и аккаунт XML-отчета ДомКлик
type DomclickConfig struct {
	Token     string
	CompanyID string
}

type StdoutLogConfig struct {
	Level string // По умолчанию DEBUG
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string // По умолчанию INFO
}

// HealthConfig — адрес HTTP-сервера health-проверок; пустой адрес отключает сервер
type HealthConfig struct {
	Addr string
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string
	Telegram     TelegramConfig
	Avito        AvitoConfig
	Cian         CianConfig
	Yandex       YandexConfig
	Domclick     DomclickConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
	Health       HealthConfig
}

// LoadConfig загружает конфигурацию из переменных окружения.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		// .env опционален: в контейнере переменные приходят из окружения
		log.Printf("Info: Could not load .env file (path: %v): %v.\n", envPath, err)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "arka-bot")

	cfg.Telegram.Token = os.Getenv("TELEGRAM_TOKEN")
	if cfg.Telegram.Token == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN environment variable is required")
	}

	cfg.Avito.ClientID = os.Getenv("AVITO_CLIENT_ID")
	if cfg.Avito.ClientID == "" {
		return nil, fmt.Errorf("AVITO_CLIENT_ID environment variable is required")
	}
	cfg.Avito.ClientSecret = os.Getenv("AVITO_CLIENT_SECRET")
	if cfg.Avito.ClientSecret == "" {
		return nil, fmt.Errorf("AVITO_CLIENT_SECRET environment variable is required")
	}
	cfg.Avito.CompanyID = os.Getenv("AVITO_COMPANY_ID")
	if cfg.Avito.CompanyID == "" {
		return nil, fmt.Errorf("AVITO_COMPANY_ID environment variable is required")
	}

	cfg.Cian.Token = os.Getenv("CIAN_TOKEN")
	if cfg.Cian.Token == "" {
		return nil, fmt.Errorf("CIAN_TOKEN environment variable is required")
	}

	cfg.Yandex.Token = os.Getenv("YANDEX_TOKEN")
	if cfg.Yandex.Token == "" {
		return nil, fmt.Errorf("YANDEX_TOKEN environment variable is required")
	}
	cfg.Yandex.XToken = os.Getenv("YANDEX_X_TOKEN")
	if cfg.Yandex.XToken == "" {
		return nil, fmt.Errorf("YANDEX_X_TOKEN environment variable is required")
	}
	cfg.Yandex.FeedID = os.Getenv("YANDEX_FEED_ID")
	if cfg.Yandex.FeedID == "" {
		return nil, fmt.Errorf("YANDEX_FEED_ID environment variable is required")
	}

	cfg.Domclick.Token = os.Getenv("DOMCLICK_TOKEN")
	if cfg.Domclick.Token == "" {
		return nil, fmt.Errorf("DOMCLICK_TOKEN environment variable is required")
	}
	cfg.Domclick.CompanyID = os.Getenv("DOMCLICK_COMPANY_ID")
	if cfg.Domclick.CompanyID == "" {
		return nil, fmt.Errorf("DOMCLICK_COMPANY_ID environment variable is required")
	}

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}

		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")
	cfg.Health.Addr = getEnvAsString("HEALTH_ADDR", "")

	return cfg, nil
}

// getEnvAsString читает переменную окружения как строку или возвращает значение по умолчанию
func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt читает переменную окружения как int или возвращает значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

// getEnvAsBool читает переменную окружения как bool или возвращает значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}
