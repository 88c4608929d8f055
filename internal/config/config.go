package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type AppConfig struct {
	API          *APIConfig          `mapstructure:"api"`
	Gin          *GinConfig          `mapstructure:"gin"`
	Postgres     *PostgresConfig     `mapstructure:"postgres"`
	RabbitMQ     *RabbitMQConfig     `mapstructure:"rabbitmq"`
	XP           *XPConfig           `mapstructure:"xp"`
	Achievements *AchievementsConfig `mapstructure:"achievements"`
	Progress     *ProgressConfig     `mapstructure:"progress"`
}

type APIConfig struct {
	Environment        string   `mapstructure:"environment"`
	Port               string   `mapstructure:"port"`
	BaseURL            string   `mapstructure:"base_url"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string   `mapstructure:"jwt_signing_key"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DB, c.SSLMode)
}

// RabbitMQConfig is optional. An empty URL keeps notifications in the log.
type RabbitMQConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type XPConfig struct {
	// EvaluationPoints maps a star rating ("1".."5") to the base XP it earns.
	EvaluationPoints map[string]int `mapstructure:"evaluation_points"`
	LevelStep        int            `mapstructure:"level_step"`
}

type AchievementsConfig struct {
	MaxIterations int `mapstructure:"max_iterations"`
}

type ProgressConfig struct {
	Capacity      int           `mapstructure:"capacity"`
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.allowed_cors_domains", []string{"http://localhost:3000"})
	v.SetDefault("api.jwt_signing_key", "")
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.db", "gamification")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.exchange", "gamification.exchange")
	v.SetDefault("xp.evaluation_points", map[string]int{"1": 0, "2": 5, "3": 10, "4": 20, "5": 30})
	v.SetDefault("xp.level_step", 100)
	v.SetDefault("achievements.max_iterations", 5)
	v.SetDefault("progress.capacity", 256)
	v.SetDefault("progress.ttl", "30m")
	v.SetDefault("progress.sweep_interval", "1m")
}

// Load reads the YAML file at path and overlays environment variables, e.g.
// API_PORT or POSTGRES_PASSWORD.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	return decode(v)
}

// Watch reloads the file at path whenever it changes and hands the new
// configuration to onChange. Decoding failures are passed to onErr.
func Watch(path string, onChange func(*AppConfig), onErr func(error)) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		onErr(fmt.Errorf("v.ReadInConfig -> %w", err))
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		conf, err := decode(v)
		if err != nil {
			onErr(err)
			return
		}
		onChange(conf)
	})
	v.WatchConfig()
}

func decode(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if conf.XP.LevelStep <= 0 {
		return nil, fmt.Errorf("xp.level_step must be positive, got %d", conf.XP.LevelStep)
	}
	if conf.Achievements.MaxIterations <= 0 {
		return nil, fmt.Errorf("achievements.max_iterations must be positive, got %d", conf.Achievements.MaxIterations)
	}

	return conf, nil
}
