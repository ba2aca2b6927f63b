package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config хранит конфигурацию сервера
type Config struct {
	ServerAddress    string        `json:"server_address"`
	BaseURL          string        `json:"base_url"`
	FileStoragePath  string        `json:"file_storage_path"`
	DatabaseDSN      string        `json:"database_dsn"`
	PgMigrationsPath string        `json:"pg_migrations_path"`
	RedisAddr        string        `json:"redis_addr"`
	AuthSecret       string        `json:"auth_secret"`
	CodeLength       int           `json:"code_length"`
	ClickBuffer      int           `json:"click_buffer"`
	ClickFlushEvery  time.Duration `json:"click_flush_every"`
	SweepEvery       time.Duration `json:"sweep_every"`
	StoreTimeout     time.Duration `json:"store_timeout"`
	Mode             string        `json:"-"`
}

// NewConfig инициализирует конфигурацию на основе аргументов командной строки
func NewConfig() *Config {

	viper.SetDefault("SERVER_ADDRESS", "localhost:8080") // Значения по умолчанию
	viper.SetDefault("BASE_URL", "http://localhost:8080")
	viper.SetDefault("FILE_STORAGE_PATH", "")
	viper.SetDefault("DATABASE_DSN", "")
	viper.SetDefault("PG_MIGRATIONS_PATH", "internal/migrations")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("AUTH_SECRET", "shorttrack-secret")
	viper.SetDefault("CODE_LENGTH", 10)
	viper.SetDefault("CLICK_BUFFER", 1024)
	viper.SetDefault("CLICK_FLUSH_EVERY", "2s")
	viper.SetDefault("SWEEP_EVERY", "10m")
	viper.SetDefault("STORE_TIMEOUT", "3s")

	viper.AutomaticEnv()

	// Читаем .env, если есть (не переопределяет переменные окружения!)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // Ошибку игнорируем, если файла нет

	// Определяем флаги, но НЕ задаем в них значения по умолчанию
	serverAddress := flag.String("a", "", "server address")
	baseURL := flag.String("b", "", "base URL")
	fileStoragePath := flag.String("f", "", "file storage path (JSONL journal)")
	databaseDSN := flag.String("d", "", "PostgreSQL DSN")
	redisAddr := flag.String("r", "", "redis address for resolve cache")
	configPath := flag.String("c", "", "path to JSON config file")
	flag.StringVar(configPath, "config", "", "path to JSON config file")

	flag.Parse()

	// Загружаем JSON-конфигурацию (если указана)
	if *configPath == "" {
		*configPath = os.Getenv("CONFIG")
	}

	type rawJSON Config
	jsonCfg := &rawJSON{}
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			log.Printf("Не удалось прочитать JSON-файл конфигурации %q: %v", *configPath, err)
		} else if err := json.Unmarshal(data, jsonCfg); err != nil {
			log.Printf("Ошибка разбора JSON-файла конфигурации: %v", err)
		}
	}

	cfg := &Config{
		ServerAddress:    viper.GetString("SERVER_ADDRESS"),
		BaseURL:          viper.GetString("BASE_URL"),
		FileStoragePath:  viper.GetString("FILE_STORAGE_PATH"),
		DatabaseDSN:      viper.GetString("DATABASE_DSN"),
		PgMigrationsPath: viper.GetString("PG_MIGRATIONS_PATH"),
		RedisAddr:        viper.GetString("REDIS_ADDR"),
		AuthSecret:       viper.GetString("AUTH_SECRET"),
		CodeLength:       viper.GetInt("CODE_LENGTH"),
		ClickBuffer:      viper.GetInt("CLICK_BUFFER"),
		ClickFlushEvery:  viper.GetDuration("CLICK_FLUSH_EVERY"),
		SweepEvery:       viper.GetDuration("SWEEP_EVERY"),
		StoreTimeout:     viper.GetDuration("STORE_TIMEOUT"),
	}

	// Значения из JSON-файла применяются, если не заданы иначе
	if jsonCfg.ServerAddress != "" && !viper.IsSet("SERVER_ADDRESS") {
		cfg.ServerAddress = jsonCfg.ServerAddress
	}
	if jsonCfg.DatabaseDSN != "" && !viper.IsSet("DATABASE_DSN") {
		cfg.DatabaseDSN = jsonCfg.DatabaseDSN
	}
	if jsonCfg.BaseURL != "" && !viper.IsSet("BASE_URL") {
		cfg.BaseURL = jsonCfg.BaseURL
	}

	// Если флаг передан, но переменной окружения нет — используем флаг
	if *serverAddress != "" {
		cfg.ServerAddress = *serverAddress
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *fileStoragePath != "" {
		cfg.FileStoragePath = *fileStoragePath
	}
	if *databaseDSN != "" {
		cfg.DatabaseDSN = *databaseDSN
		os.Setenv("DATABASE_DSN", cfg.DatabaseDSN)
	}
	if *redisAddr != "" {
		cfg.RedisAddr = *redisAddr
	}

	// Определяем режим работы
	if cfg.DatabaseDSN != "" {
		cfg.Mode = "database"
	} else if cfg.FileStoragePath != "" {
		cfg.Mode = "file"
	} else {
		cfg.Mode = "in-memory"
	}

	log.Printf("Инициализация конфигурации: ServerAddress=%s", cfg.ServerAddress)
	log.Printf("Инициализация конфигурации: BaseURL=%s", cfg.BaseURL)
	log.Printf("Инициализация конфигурации: Mode=%s", cfg.Mode)
	log.Printf("Инициализация конфигурации: RedisAddr=%s", cfg.RedisAddr)
	log.Printf("Инициализация конфигурации: CodeLength=%d", cfg.CodeLength)

	// Проверка корректности конфигурации
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Ошибка конфигурации: %v\n", err)
	}

	return cfg
}

// Validate проверяет корректность конфигурации
func (cfg *Config) Validate() error {
	if cfg.ServerAddress == "" {
		return fmt.Errorf("адрес сервера не может быть пустым")
	}
	if cfg.BaseURL == "" {
		return fmt.Errorf("базовый URL не может быть пустым")
	}
	if cfg.CodeLength < 4 {
		return fmt.Errorf("длина кода меньше 4 делает коды перечислимыми")
	}
	if cfg.ClickBuffer <= 0 {
		return fmt.Errorf("буфер кликов должен быть положительным")
	}
	return nil
}
