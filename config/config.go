package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Configs struct {
	Env      string `toml:"env"`
	LogLevel int    `toml:"log_level"`

	ApiServer ServerConfigs   `toml:"api_server"`
	Database  DatabaseConfigs `toml:"database"`
	Redis     RedisConfigs    `toml:"redis"`
	Kafka     KafkaConfigs    `toml:"kafka"`
	Draw      DrawConfigs     `toml:"draw"`
	Platforms PlatformsConfig `toml:"platforms"`
}

// Load reads the configuration from a TOML file. Deployment secrets and
// addresses may be injected through the environment instead of the file.
func Load(path string) (Configs, error) {
	var cfg Configs
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Configs{}, err
	}

	overrideEnv(&cfg.ApiServer.Port, "PORT")
	overrideEnv(&cfg.Database.Password, "DATABASE_PASSWORD")
	overrideEnv(&cfg.Redis.Addr, "REDIS_ADDR")
	overrideEnv(&cfg.Kafka.Addr, "KAFKA_ADDR")
	overrideEnv(&cfg.Platforms.Instagram.AccessToken, "INSTAGRAM_ACCESS_TOKEN")
	overrideEnv(&cfg.Platforms.TikTok.AccessToken, "TIKTOK_ACCESS_TOKEN")
	overrideEnv(&cfg.Platforms.Twitter.AccessToken, "TWITTER_ACCESS_TOKEN")
	overrideEnv(&cfg.Platforms.Facebook.AccessToken, "FACEBOOK_ACCESS_TOKEN")
	overrideEnv(&cfg.Platforms.YouTube.AccessToken, "YOUTUBE_ACCESS_TOKEN")

	return cfg, nil
}

func overrideEnv(field *string, name string) {
	if value := os.Getenv(name); value != "" {
		*field = value
	}
}

type ServerConfigs struct {
	Host string `toml:"host"`
	Port string `toml:"port"`
}

func (s ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type DatabaseConfigs struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

func (d DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type RedisConfigs struct {
	Addr string `toml:"addr"`
}

type KafkaConfigs struct {
	Addr string `toml:"addr"`
}

type DrawConfigs struct {
	// CostPerDraw is the number of credits debited for one executed draw.
	CostPerDraw int64 `toml:"cost_per_draw"`

	// MaxPagesPerSource guards one acquisition against a provider that
	// keeps handing out cursors. Zero means no bound.
	MaxPagesPerSource int `toml:"max_pages_per_source"`

	RetryBase        time.Duration `toml:"retry_base"`
	RetryMultiplier  int           `toml:"retry_multiplier"`
	RetryMaxAttempts int           `toml:"retry_max_attempts"`
}

type PlatformsConfig struct {
	Instagram PlatformConfigs `toml:"instagram"`
	TikTok    PlatformConfigs `toml:"tiktok"`
	Twitter   PlatformConfigs `toml:"twitter"`
	Facebook  PlatformConfigs `toml:"facebook"`
	YouTube   PlatformConfigs `toml:"youtube"`
}

type PlatformConfigs struct {
	APIEndpoint string `toml:"api_endpoint"`
	AccessToken string `toml:"access_token"`

	// TokenExpiresIn is the remaining lifetime of the access token, as
	// reported by the provider at the last refresh.
	TokenExpiresIn time.Duration `toml:"token_expires_in"`

	PageSize int `toml:"page_size"`
}
