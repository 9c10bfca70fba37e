package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	TransportWebSocket = "websocket"
	TransportRedis     = "redis"
)

var ErrUnknownTransport = errors.New("unknown transport")

type Config struct {
	LogLevel      string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	LogFile       string        `yaml:"log-file" env:"LOG_FILE" env-default:"tictactoe-client.log"`
	Transport     string        `yaml:"transport" env:"TRANSPORT" env-default:"websocket"`
	ServerURL     string        `yaml:"server-url" env:"SERVER_URL" env-default:"http://localhost:5000"`
	GameNamespace string        `yaml:"game-namespace" env:"GAME_NAMESPACE" env-default:"/tictactoe/game"`
	WaitNamespace string        `yaml:"wait-namespace" env:"WAIT_NAMESPACE" env-default:"/tictactoe/wait"`
	GamePath      string        `yaml:"game-path" env:"GAME_PATH" env-default:"/game"`
	SessionCookie string        `yaml:"session-cookie" env:"SESSION_COOKIE"`
	DialTimeout   time.Duration `yaml:"dial-timeout" env:"DIAL_TIMEOUT" env-default:"10s"`
	Redis         Redis         `yaml:"redis" env-prefix:"REDIS_"`
}

type Redis struct {
	Host          string `yaml:"host" env:"HOST" env-default:"localhost"`
	Port          string `yaml:"port" env:"PORT" env-default:"6379"`
	ChannelPrefix string `yaml:"channel-prefix" env:"CHANNEL_PREFIX" env-default:"tictactoe"`
	Session       string `yaml:"session" env:"SESSION"`
}

// Load reads the config file at path, or only the environment when there is
// no such file. Environment variables win over the file.
func Load(path string) (*Config, error) {
	config := &Config{}

	var err error
	if _, statErr := os.Stat(path); statErr == nil {
		err = cleanenv.ReadConfig(path, config)
	} else {
		err = cleanenv.ReadEnv(config)
	}

	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	if err = config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func (that *Config) Validate() error {
	switch that.Transport {
	case TransportWebSocket, TransportRedis:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTransport, that.Transport)
	}
}

func (that *Redis) GetRedisAddr() string {
	if that.Host == "" || that.Port == "" {
		return ""
	}

	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
