package api

import "github.com/kelseyhightower/envconfig"

type Config struct {
	MaxBatchSize int   `envconfig:"PETROVICH_API_MAX_BATCH_SIZE" default:"1000"`
	MaxBodyBytes int64 `envconfig:"PETROVICH_API_MAX_BODY_BYTES" default:"1048576"`
}

func ReadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
