package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "RELAY"

type Config struct {
	Mode     string `mapstructure:"mode"`
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	WriteWait  time.Duration `mapstructure:"write_wait"`
	SendBuffer int           `mapstructure:"send_buffer"`

	Secret string `mapstructure:"secret"`

	RoomIDLength     int    `mapstructure:"room_id_length"`
	CodeLength       int    `mapstructure:"code_length"`
	MaxIDAttempts    int    `mapstructure:"max_id_attempts"`
	SlowMemberPolicy string `mapstructure:"slow_member_policy"`

	ProvisionLimit    int           `mapstructure:"provision_limit"`
	ProvisionInterval time.Duration `mapstructure:"provision_interval"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Load resolves configuration from, lowest to highest precedence: defaults,
// the YAML file, RELAY_* environment variables and command-line flags.
func Load(args []string) (*Config, error) {
	fset := pflag.NewFlagSet("relay", pflag.ContinueOnError)
	configFile := fset.String("config", "", "path to a YAML config file")
	fset.Int("port", 3000, "listen port")
	fset.String("mode", "release", "gin mode: debug, release or test")
	fset.String("log_level", "info", "zerolog level")
	if err := fset.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")

	fileName := *configFile
	if fileName == "" {
		env := os.Getenv("CONFIG_ENV")
		if env == "" {
			env = "dev"
		}
		fileName = fmt.Sprintf("config/config.%s.yaml", env)
	}
	v.SetConfigFile(fileName)

	v.SetDefault("mode", "release")
	v.SetDefault("port", 3000)
	v.SetDefault("log_level", "info")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("write_wait", "10s")
	v.SetDefault("send_buffer", 32)
	v.SetDefault("secret", "")
	v.SetDefault("room_id_length", 7)
	v.SetDefault("code_length", 6)
	v.SetDefault("max_id_attempts", 64)
	v.SetDefault("slow_member_policy", "drop")
	v.SetDefault("provision_limit", 20)
	v.SetDefault("provision_interval", "1m")
	v.SetDefault("shutdown_timeout", "5s")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, name := range []string{"port", "mode", "log_level"} {
		if err := v.BindPFlag(name, fset.Lookup(name)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config %s: %w", fileName, err)
		}
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Secret == "" {
		cfg.Secret = uuid.NewString()
		log.Warn().Str("module", "config").Msg("no session secret configured, cookies will not survive a restart")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Msg("config ready")
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.ReadLimit <= 0 {
		errs = append(errs, errors.New("read_limit must be positive"))
	}
	if c.PingPeriod <= 0 {
		errs = append(errs, errors.New("ping_period must be positive"))
	}
	if c.WriteWait <= 0 {
		errs = append(errs, errors.New("write_wait must be positive"))
	}
	if c.SendBuffer <= 0 {
		errs = append(errs, errors.New("send_buffer must be positive"))
	}
	if c.RoomIDLength <= 0 || c.CodeLength <= 0 {
		errs = append(errs, errors.New("room_id_length and code_length must be positive"))
	}
	if c.MaxIDAttempts <= 0 {
		errs = append(errs, errors.New("max_id_attempts must be positive"))
	}
	switch c.SlowMemberPolicy {
	case "drop", "kick":
	default:
		errs = append(errs, fmt.Errorf("unknown slow_member_policy %q", c.SlowMemberPolicy))
	}
	if c.ProvisionLimit > 0 && c.ProvisionInterval <= 0 {
		errs = append(errs, errors.New("provision_interval must be positive when provision_limit is set"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
