package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf is set by NewConfig. Most code receives a *Config explicitly; the
// global exists for the template helpers that render outside request scope.
var Conf *Config

type (
	Config struct {
		Debug            bool
		TestMode         bool
		Env              string
		Build            string
		AppName          string
		SecretKey        string
		FrontendBaseURL  string
		DefaultFromName  string
		DefaultFromAddr  string
		SendgridAPIKey   string
		RollbarToken     string
		AccountHookToken string

		Server   ServerConfig
		Database DatabaseConfig
		Storage  StorageConfig
		Redis    RedisConfig
	}

	ServerConfig struct {
		Host                      string
		Address                   string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		TeardownTimeout           time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	StorageConfig struct {
		Bucket     string
		Region     string
		Endpoint   string
		AccessKey  string
		SecretKey  string
		PublicHost string
		// ProviderImageHosts lists hosts whose objects we do not own
		// (identity-provider avatars); they must never be deleted.
		ProviderImageHosts []string
	}

	RedisConfig struct {
		Address  string
		Password string
		DB       int
		LockTTL  time.Duration
	}
)

func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.DefaultFromName, Address: c.DefaultFromAddr}
}

// NewConfig loads the app configuration from the environment with DEV
// defaults. A config/.env.<env> file is loaded first if it exists.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Darasa")
	v.SetDefault("secretKey", "w#ujye+a-3*t5e0-qm$1pr^4-6l^7sy2m&9c@9_kdv8jn!o3jd")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromName", "Darasa")
	v.SetDefault("defaultFromAddr", "noreply@localhost")

	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddress", ":8080")
	v.SetDefault("serverDebugHost", "localhost:4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("teardownTimeout", 10*time.Minute)

	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbName", "darasa")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbUser", "darasa")
	v.SetDefault("dbDisableTLS", true)

	v.SetDefault("storageBucket", "darasa")
	v.SetDefault("storageRegion", "auto")
	v.SetDefault("storagePublicHost", "media.localhost")
	v.SetDefault("storageProviderImageHosts", []string{"lh3.googleusercontent.com", "s.gravatar.com"})

	v.SetDefault("redisAddress", "localhost:6379")
	v.SetDefault("redisDB", 0)
	v.SetDefault("redisLockTTL", 15*time.Minute)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		Env:              env,
		Build:            v.GetString("build"),
		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		DefaultFromName:  v.GetString("defaultFromName"),
		DefaultFromAddr:  v.GetString("defaultFromAddr"),
		SendgridAPIKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		AccountHookToken: v.GetString("accountHookToken"),
		Server: ServerConfig{
			Host:                      v.GetString("serverHost"),
			Address:                   v.GetString("serverAddress"),
			DebugHost:                 v.GetString("serverDebugHost"),
			ShutdownTimeout:           v.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
			TeardownTimeout:           v.GetDuration("teardownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Name:          v.GetString("dbName"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetString("dbPort"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
		Storage: StorageConfig{
			Bucket:             v.GetString("storageBucket"),
			Region:             v.GetString("storageRegion"),
			Endpoint:           v.GetString("storageEndpoint"),
			AccessKey:          v.GetString("storageAccessKey"),
			SecretKey:          v.GetString("storageSecretKey"),
			PublicHost:         v.GetString("storagePublicHost"),
			ProviderImageHosts: v.GetStringSlice("storageProviderImageHosts"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redisAddress"),
			Password: v.GetString("redisPassword"),
			DB:       v.GetInt("redisDB"),
			LockTTL:  v.GetDuration("redisLockTTL"),
		},
	}
	Conf = conf
	return conf
}
