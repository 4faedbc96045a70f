package configuration

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"idle-fm-api/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	YouTube     YouTube     `json:"youtube"`
	Search      Search      `json:"search"`
	Mail        Mail        `json:"mail"`
	RateLimit   RateLimit   `json:"rateLimit"`
}

type App struct {
	Port           int      `json:"port"`
	Env            string   `json:"env"`
	LogLevel       string   `json:"logLevel"`
	SecretKey      string   `json:"secretKey"`
	TLSEnabled     bool     `json:"tlsEnabled"`
	TLSCertFile    string   `json:"tlsCertFile"`
	TLSKeyFile     string   `json:"tlsKeyFile"`
	FrontendURL    string   `json:"frontendUrl"`
	BackendURL     string   `json:"backendUrl"`
	AllowedOrigins []string `json:"allowedOrigins"`
	// TrustedProxies may set X-Forwarded-For; empty means client IP is the peer address.
	TrustedProxies []string `json:"trustedProxies"`
	// SystemUserID owns generated playlists.
	SystemUserID   int  `json:"systemUserId"`
	MigrateOnStart bool `json:"migrateOnStart"`
}

func (a App) IsProduction() bool {
	return a.Env == "production" || a.Env == "prod"
}

type Database struct {
	Mssql Db `json:"mssql"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	Username string `json:"username"`
	DB       int    `json:"db"`
}

func (r RedisClient) Enabled() bool {
	return r.Host != ""
}

type YouTube struct {
	APIKey       string `json:"apiKey"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	RedirectURI  string `json:"redirectURI"`
	RefreshToken string `json:"refreshToken"`
}

type Search struct {
	CacheTTLHours     int   `json:"cacheTtlHours"`
	UpsertConcurrency int   `json:"upsertConcurrency"`
	TimeoutSeconds    int   `json:"timeoutSeconds"`
	MaxResults        int64 `json:"maxResults"`
}

func (s Search) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLHours) * time.Hour
}

func (s Search) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

type Mail struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	From     string `json:"from"`
}

type RateLimit struct {
	Requests      int `json:"requests"`
	WindowSeconds int `json:"windowSeconds"`
	Burst         int `json:"burst"`
}

func (r RateLimit) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

var C Config

func init() {
	LoadEnvFromFile("config.env", ".env")
	LoadConfig()
	initApp(&C)
	initDatabase(&C)
	initRedis(&C)
	initSearch(&C)
	initMail(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		viper.AddConfigPath(p)
	}
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().WithField("config", name).Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
		return
	}
	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initApp(C *Config) {
	if v := os.Getenv("ENV"); v != "" {
		C.App.Env = v
	}
	if C.App.Env == "" {
		C.App.Env = "development"
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	// APP_PORT -> PORT -> config -> 8080
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 8080
	}
	if v := os.Getenv("TLS_ENABLED"); v != "" {
		C.App.TLSEnabled = parseBool(v, C.App.TLSEnabled)
	}
	C.App.TLSCertFile = getConfigValue(C.App.TLSCertFile, "TLS_CERT_FILE", "")
	C.App.TLSKeyFile = getConfigValue(C.App.TLSKeyFile, "TLS_KEY_FILE", "")
	C.App.LogLevel = getConfigValue(C.App.LogLevel, "LOG_LEVEL", "info")
	C.App.FrontendURL = getConfigValue(C.App.FrontendURL, "FRONTEND_URL", "http://localhost:5173")
	C.App.BackendURL = getConfigValue(C.App.BackendURL, "BACKEND_URL", fmt.Sprintf("http://localhost:%d", C.App.Port))
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		C.App.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		C.App.TrustedProxies = splitList(v)
	}
	if len(C.App.AllowedOrigins) == 0 {
		if C.App.IsProduction() {
			C.App.AllowedOrigins = []string{"https://idle.fm", "https://www.idle.fm"}
		} else {
			C.App.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
		}
	}
	if C.App.SystemUserID == 0 {
		C.App.SystemUserID = 1
	}
	if v := os.Getenv("MIGRATE_ON_START"); v != "" {
		C.App.MigrateOnStart = parseBool(v, C.App.MigrateOnStart)
	}
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; the server refuses to start without it. Provide SECRET_KEY via environment.")
	}
}

func initDatabase(C *Config) {
	m := &C.Database.Mssql
	m.Name = getConfigValue(m.Name, "MSSQL_DB_NAME", "idlefm")
	m.Host = getConfigValue(m.Host, "MSSQL_HOST", "localhost")
	m.Port = getConfigValue(m.Port, "MSSQL_PORT", "1433")
	m.User = getConfigValue(m.User, "MSSQL_USER", "sa")
	m.Password = getConfigValue(m.Password, "MSSQL_PASSWORD", "")
	logger.GetLogger().WithFields(map[string]interface{}{
		"host": m.Host,
		"port": m.Port,
		"name": m.Name,
	}).Info("Database configuration")
}

func initRedis(C *Config) {
	r := &C.RedisClient
	r.Host = getConfigValue(r.Host, "REDIS_HOST", "")
	r.Port = getConfigValue(r.Port, "REDIS_PORT", "6379")
	r.Username = getConfigValue(r.Username, "REDIS_USERNAME", "")
	r.Password = getConfigValue(r.Password, "REDIS_PASSWORD", "")
}

func initSearch(C *Config) {
	s := &C.Search
	if s.CacheTTLHours <= 0 {
		s.CacheTTLHours = 7 * 24
	}
	if s.UpsertConcurrency <= 0 {
		s.UpsertConcurrency = 4
	}
	if s.TimeoutSeconds <= 0 {
		s.TimeoutSeconds = 15
	}
	if s.MaxResults <= 0 {
		s.MaxResults = 50
	}
	rl := &C.RateLimit
	if rl.Requests <= 0 {
		rl.Requests = 30
	}
	if rl.WindowSeconds <= 0 {
		rl.WindowSeconds = 60
	}
	if rl.Burst <= 0 {
		rl.Burst = 10
	}
}

func initMail(C *Config) {
	m := &C.Mail
	m.Host = getConfigValue(m.Host, "SMTP_HOST", "")
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			m.Port = p
		}
	}
	if m.Port == 0 {
		m.Port = 587
	}
	m.Username = getConfigValue(m.Username, "SMTP_USER", "")
	m.Password = getConfigValue(m.Password, "SMTP_PASSWORD", "")
	m.From = getConfigValue(m.From, "MAIL_FROM", "Idle.fm <no-reply@idle.fm>")
}

func parseBool(v string, fallback bool) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
