package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	LeaderboardDriverRedis    = "redis"
	LeaderboardDriverPostgres = "postgres"
)

type Config struct {
	LogLevel          string      `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort          string      `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort        string      `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Redis             Redis       `yaml:"redis"`
	SQLiteStoragePath string      `yaml:"sqlite-storage-path" env:"SQLITE_STORAGE_PATH" env-default:"./accounts.db"`
	Postgres          Postgres    `yaml:"postgres"`
	Match             Match       `yaml:"match"`
	Score             Score       `yaml:"score"`
	Leaderboard       Leaderboard `yaml:"leaderboard"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Postgres struct {
	DSN string `yaml:"dsn" env:"POSTGRES_DSN"`
}

// Match holds the timing of every match actor.
type Match struct {
	TickRate       int           `yaml:"tick-rate" env-default:"1"`
	ResetDelay     time.Duration `yaml:"reset-delay" env-default:"20s"`
	EmptyTickLimit int           `yaml:"empty-tick-limit" env-default:"100"`
	OpenTickLimit  int           `yaml:"open-tick-limit" env-default:"10"`
	ListLimit      int           `yaml:"list-limit" env-default:"10"`
}

type Score struct {
	LeaderboardID     string `yaml:"leaderboard-id" env-default:"tictactoe"`
	WinPoints         int64  `yaml:"win-points" env-default:"10"`
	DrawPoints        int64  `yaml:"draw-points" env-default:"5"`
	RequireRegistered bool   `yaml:"require-registered" env-default:"true"`
	Workers           int    `yaml:"workers" env-default:"4"`
	QueueSize         int    `yaml:"queue-size" env-default:"128"`
}

type Leaderboard struct {
	Driver string `yaml:"driver" env:"LEADERBOARD_DRIVER" env-default:"redis"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// TickInterval converts the tick rate into the period between two ticks.
func (that *Match) TickInterval() time.Duration {
	if that.TickRate <= 0 {
		return time.Second
	}

	return time.Second / time.Duration(that.TickRate)
}
