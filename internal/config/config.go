package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/younsl/ec2ctl/internal/models"
	"github.com/younsl/ec2ctl/pkg/aws"
	"github.com/younsl/ec2ctl/pkg/utils"
)

// EnvPrefix is prepended to every environment variable read by ec2ctl
const EnvPrefix = "EC2CTL"

// DefaultConfigName is the file looked up in the home directory when no config file is given
const DefaultConfigName = ".ec2ctl"

// Config represents the complete ec2ctl configuration
type Config struct {
	Region  string `mapstructure:"region"`
	Profile string `mapstructure:"profile"`

	// Static credentials, used instead of the default chain when both are set
	AccessKeyID     string `mapstructure:"access-key-id"`
	SecretAccessKey string `mapstructure:"secret-access-key"`

	// IMDS enables the instance metadata credential provider
	IMDS bool `mapstructure:"imds"`

	// PollInterval is the delay between status checks while waiting for a state
	PollInterval time.Duration `mapstructure:"poll-interval"`
	// Timeout bounds a wait; 0 waits until interrupted
	Timeout time.Duration `mapstructure:"timeout"`

	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"` // "text" or "json"

	// Launch holds defaults for the run command
	Launch models.LaunchParameters `mapstructure:"launch"`
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Region:       utils.DefaultRegion,
		IMDS:         true,
		PollInterval: aws.DefaultPollInterval,
		LogLevel:     "info",
		LogFormat:    "text",
		Launch: models.LaunchParameters{
			InstanceType: "t2.micro",
			MinCount:     1,
			MaxCount:     1,
		},
	}
}

// SetDefaults registers default values and environment bindings on v
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("region", defaults.Region)
	v.SetDefault("profile", defaults.Profile)
	v.SetDefault("access-key-id", "")
	v.SetDefault("secret-access-key", "")
	v.SetDefault("imds", defaults.IMDS)
	v.SetDefault("poll-interval", defaults.PollInterval)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("log-level", defaults.LogLevel)
	v.SetDefault("log-format", defaults.LogFormat)

	v.SetDefault("launch.image-id", "")
	v.SetDefault("launch.instance-type", defaults.Launch.InstanceType)
	v.SetDefault("launch.key-name", "")
	v.SetDefault("launch.subnet-id", "")
	v.SetDefault("launch.security-group-ids", []string{})
	v.SetDefault("launch.user-data", "")
	v.SetDefault("launch.min-count", defaults.Launch.MinCount)
	v.SetDefault("launch.max-count", defaults.Launch.MaxCount)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	// Fall back to the standard AWS variables
	_ = v.BindEnv("region", EnvPrefix+"_REGION", "AWS_REGION", "AWS_DEFAULT_REGION")
	_ = v.BindEnv("profile", EnvPrefix+"_PROFILE", "AWS_PROFILE")
}

// Load reads configuration into a Config. An explicit configFile must exist;
// otherwise $HOME/.ec2ctl.yaml is read when present.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for values ec2ctl cannot work with
func (c *Config) Validate() error {
	if !utils.IsValidRegion(c.Region) {
		return fmt.Errorf("invalid region %q, must be one of: %s", c.Region, strings.Join(utils.Regions(), ", "))
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll-interval must be positive, got %s", c.PollInterval)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return errors.New("access-key-id and secret-access-key must be set together")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log-level: %w", err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log-format %q, must be text or json", c.LogFormat)
	}
	return nil
}

// ClientOptions returns the options for building the EC2 client
func (c *Config) ClientOptions() aws.ClientOptions {
	return aws.ClientOptions{
		Region:          c.Region,
		Profile:         c.Profile,
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
		DisableIMDS:     !c.IMDS,
	}
}

// ConfigPath returns the config file viper used, or "" when none was read
func ConfigPath(v *viper.Viper) string {
	if used := v.ConfigFileUsed(); used != "" {
		if abs, err := filepath.Abs(used); err == nil {
			return abs
		}
		return used
	}
	return ""
}
