package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port        string `mapstructure:"port"`
		MetricsPort string `mapstructure:"metrics_port"`
		LogLevel    string `mapstructure:"log_level"`
	} `mapstructure:"server"`
	Database struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`
	Auth struct {
		JWTSecret string `mapstructure:"jwt_secret"`
	} `mapstructure:"auth"`
	Storage struct {
		Provider      string `mapstructure:"provider"` // "local" or "s3"
		LocalRoot     string `mapstructure:"local_root"`
		KeyID         string `mapstructure:"key_id"`
		AppKey        string `mapstructure:"app_key"`
		Endpoint      string `mapstructure:"endpoint"`
		Region        string `mapstructure:"region"`
		BucketImages  string `mapstructure:"bucket_images"`
		BucketProfile string `mapstructure:"bucket_profile"`
	} `mapstructure:"storage"`
	Services struct {
		KeywordURL       string `mapstructure:"keyword_url"`
		KeywordClientID  string `mapstructure:"keyword_client_id"`
		KeywordAPIKey    string `mapstructure:"keyword_api_key"`
		SpotifyClientID  string `mapstructure:"spotify_client_id"`
		SpotifySecret    string `mapstructure:"spotify_secret"`
		SpotifyTokenURL  string `mapstructure:"spotify_token_url"`
		SpotifySearchURL string `mapstructure:"spotify_search_url"`
	} `mapstructure:"services"`
}

func Load() *Config {
	viper.SetEnvPrefix("MELOMAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Register keys
	viper.BindEnv("server.port")
	viper.BindEnv("server.metrics_port")
	viper.BindEnv("server.log_level")

	viper.BindEnv("database.host")
	viper.BindEnv("database.port")
	viper.BindEnv("database.user")
	viper.BindEnv("database.password")
	viper.BindEnv("database.name")

	viper.BindEnv("auth.jwt_secret")

	viper.BindEnv("storage.provider")
	viper.BindEnv("storage.local_root")
	viper.BindEnv("storage.key_id")
	viper.BindEnv("storage.app_key")
	viper.BindEnv("storage.endpoint")
	viper.BindEnv("storage.region")
	viper.BindEnv("storage.bucket_images")
	viper.BindEnv("storage.bucket_profile")

	viper.BindEnv("services.keyword_url")
	viper.BindEnv("services.keyword_client_id")
	viper.BindEnv("services.keyword_api_key")
	viper.BindEnv("services.spotify_client_id")
	viper.BindEnv("services.spotify_secret")
	viper.BindEnv("services.spotify_token_url")
	viper.BindEnv("services.spotify_search_url")

	// Defaults
	viper.SetDefault("server.port", ":8081")
	viper.SetDefault("server.metrics_port", ":9091")
	viper.SetDefault("server.log_level", "info")

	viper.SetDefault("storage.provider", "local")
	viper.SetDefault("storage.local_root", "./data")
	viper.SetDefault("storage.bucket_images", "post-images")
	viper.SetDefault("storage.bucket_profile", "profile-images")

	viper.SetDefault("services.keyword_url", "https://api.everypixel.com/v1/keywords")
	viper.SetDefault("services.spotify_token_url", "https://accounts.spotify.com/api/token")
	viper.SetDefault("services.spotify_search_url", "https://api.spotify.com/v1/search")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Warning: Config error: %s", err)
		} else {
			log.Println("Info: config.yaml not found, using Environment Variables only.")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("Critical: JWT secret is missing (MELOMAP_AUTH_JWT_SECRET)")
	}

	return &cfg
}
