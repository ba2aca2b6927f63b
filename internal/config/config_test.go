package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	valid := Config{
		ServerAddress: "localhost:8080",
		BaseURL:       "http://localhost:8080",
		CodeLength:    10,
		ClickBuffer:   1024,
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"валидная конфигурация", func(c *Config) {}, false},
		{"пустой адрес сервера", func(c *Config) { c.ServerAddress = "" }, true},
		{"пустой базовый URL", func(c *Config) { c.BaseURL = "" }, true},
		{"слишком короткий код", func(c *Config) { c.CodeLength = 3 }, true},
		{"минимально допустимая длина кода", func(c *Config) { c.CodeLength = 4 }, false},
		{"нулевой буфер кликов", func(c *Config) { c.ClickBuffer = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
