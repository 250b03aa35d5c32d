package internal

import "time"

type Config struct {
	BadgerFilepath string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string        `env:"BLUGE_FILEPATH,required=true"`
	LogLevel       string        `env:"LOG_LEVEL,required=true"`
	Host           string        `env:"HOST,required=true"`
	Port           int           `env:"PORT,required=true"`
	LimitMessages  *int          `env:"LIMIT_MESSAGES"`
	SinkTimeout    time.Duration `env:"SINK_TIMEOUT,required=true"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS"`
}
