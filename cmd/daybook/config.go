package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/daybook-io/daybook/internal/logger"
	internalhttp "github.com/daybook-io/daybook/internal/server/http"
	"github.com/daybook-io/daybook/internal/storagebuilder"
	"github.com/spf13/viper"
)

const envConfigPrefix = "$env:"

type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
}

type Config struct {
	HTTPServer internalhttp.Config
	Auth       AuthConfig
	Logger     logger.Config
	Storage    storagebuilder.Config
}

func NewConfig(configFile string) (Config, error) {
	config := Config{}
	viper.SetConfigFile(configFile)

	viper.SetDefault("httpServer.host", "127.0.0.1")
	viper.SetDefault("httpServer.port", "8005")
	viper.SetDefault("auth.tokenTTL", "1h")
	viper.SetDefault("logger.level", "WARN")
	viper.SetDefault("storage.storageType", "memory")

	err := viper.ReadInConfig()
	if err != nil {
		return config, fmt.Errorf("failed to read config %q: %w", configFile, err)
	}
	keys := viper.AllKeys()
	for _, key := range keys {
		env := viper.GetString(key)
		if strings.HasPrefix(env, envConfigPrefix) {
			err := viper.BindEnv(key, env[len(envConfigPrefix):])
			if err != nil {
				return Config{}, fmt.Errorf("failed to prepare config: %w", err)
			}
		}
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return config, fmt.Errorf("unable to decode into config struct: %w", err)
	}
	if config.Auth.Secret == "" {
		return config, fmt.Errorf("auth.secret is required")
	}
	return config, nil
}
