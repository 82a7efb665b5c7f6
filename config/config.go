package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultPath is where Load looks for the JSON config file.
var DefaultPath = filepath.Join("config", "config.json")

// AppConfig holds file and environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via the config file or the environment.
type AppConfig struct {
	AppPort            string
	JWTSecret          string
	TokenTTLHours      int
	RateLimitPerMinute int
	AllowedOrigins     []string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Database: DBDriver is "mysql" or "sqlite"
	DBDriver    string
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	SQLitePath  string
	// Redis backs the logout token blacklist
	RedisEnabled  bool
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// Uploads
	UploadDir       string
	UploadURLPrefix string
	UploadMaxMB     int
	// Superuser seeded at startup when AdminUsername and AdminPassword are set
	AdminUsername string
	AdminPassword string
	AdminEmail    string
	// Demo data generated at startup into an empty database; 0 disables it
	SeedUsers        int
	SeedPostsPerUser int
}

// Load builds the configuration. Precedence: JSON file -> defaults -> environment variable overrides.
// Callers that want a .env file loaded do so before calling Load.
// A missing file is not an error; invalid JSON is.
func Load(path string) (AppConfig, error) {
	var cfg AppConfig
	if err := loadJSONConfig(path, &cfg); err != nil {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	applyDefaults(&cfg)
	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	if cfg.JWTSecret == "" {
		return cfg, errors.New("JWT_SECRET must be set in the config file or environment")
	}
	return cfg, nil
}

// Addr is the listen address derived from AppPort.
func (c AppConfig) Addr() string {
	return ":" + c.AppPort
}

// loadJSONConfig reads the grouped JSON file into out if present.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if s, ok := m[key].(string); ok {
			return s
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		if f, ok := m[key].(float64); ok {
			return int(f)
		}
		return 0
	}
	getBool := func(m map[string]any, key string) bool {
		b, _ := m[key].(bool)
		return b
	}
	getStringSlice := func(m map[string]any, key string) []string {
		arr, ok := m[key].([]any)
		if !ok {
			return nil
		}
		res := make([]string, 0, len(arr))
		for _, it := range arr {
			if s, ok := it.(string); ok {
				res = append(res, s)
			}
		}
		return res
	}

	if app, ok := raw["app"].(map[string]any); ok {
		out.AppPort = getString(app, "AppPort")
		out.JWTSecret = getString(app, "JWTSecret")
		out.TokenTTLHours = getInt(app, "TokenTTLHours")
		out.RateLimitPerMinute = getInt(app, "RateLimitPerMinute")
		out.AllowedOrigins = getStringSlice(app, "AllowedOrigins")
	}

	if g, ok := raw["gin"].(map[string]any); ok {
		out.GinMode = getString(g, "Mode")
		out.GinPath = getString(g, "LogPath")
	}

	if dbs, ok := raw["database"].(map[string]any); ok {
		out.DBDriver = getString(dbs, "Driver")
		out.DatabaseURI = getString(dbs, "DatabaseURI")
		out.DBHost = getString(dbs, "DBHost")
		out.DBPort = getString(dbs, "DBPort")
		out.DBUser = getString(dbs, "DBUser")
		out.DBPassword = getString(dbs, "DBPassword")
		out.DBName = getString(dbs, "DBName")
		out.SQLitePath = getString(dbs, "SQLitePath")
	}

	if rds, ok := raw["redis"].(map[string]any); ok {
		out.RedisEnabled = getBool(rds, "Enabled")
		out.RedisHost = getString(rds, "RedisHost")
		out.RedisPort = getInt(rds, "RedisPort")
		out.RedisDB = getInt(rds, "RedisDB")
		out.RedisPassword = getString(rds, "RedisPassword")
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		out.LogLevel = getString(lg, "Level")
		out.LogPath = getString(lg, "Path")
		out.LogMaxSizeMB = getInt(lg, "MaxSizeMB")
		out.LogMaxBackups = getInt(lg, "MaxBackups")
		out.LogMaxAgeDays = getInt(lg, "MaxAgeDays")
		out.LogCompress = getBool(lg, "Compress")
	}

	if up, ok := raw["upload"].(map[string]any); ok {
		out.UploadDir = getString(up, "Dir")
		out.UploadURLPrefix = getString(up, "URLPrefix")
		out.UploadMaxMB = getInt(up, "MaxMB")
	}

	if adm, ok := raw["admin"].(map[string]any); ok {
		out.AdminUsername = getString(adm, "Username")
		out.AdminPassword = getString(adm, "Password")
		out.AdminEmail = getString(adm, "Email")
	}

	if sd, ok := raw["seed"].(map[string]any); ok {
		out.SeedUsers = getInt(sd, "Users")
		out.SeedPostsPerUser = getInt(sd, "PostsPerUser")
	}

	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.TokenTTLHours == 0 {
		c.TokenTTLHours = 72
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.DBDriver == "" {
		c.DBDriver = "mysql"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "luntan"
	}
	if c.SQLitePath == "" {
		c.SQLitePath = "luntan.db"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
	if c.UploadDir == "" {
		c.UploadDir = filepath.Join("static", "uploads")
	}
	if c.UploadURLPrefix == "" {
		c.UploadURLPrefix = "/static/uploads"
	}
	if c.UploadMaxMB == 0 {
		c.UploadMaxMB = 10
	}
	if c.SeedUsers > 0 && c.SeedPostsPerUser == 0 {
		c.SeedPostsPerUser = 3
	}
	if c.AdminEmail == "" && c.AdminUsername != "" {
		c.AdminEmail = c.AdminUsername + "@luntan.local"
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) error {
	str := map[string]*string{
		"APP_PORT":          &c.AppPort,
		"JWT_SECRET":        &c.JWTSecret,
		"GIN_MODE":          &c.GinMode,
		"GIN_PATH":          &c.GinPath,
		"DB_DRIVER":         &c.DBDriver,
		"DATABASE_URI":      &c.DatabaseURI,
		"DB_HOST":           &c.DBHost,
		"DB_PORT":           &c.DBPort,
		"DB_USER":           &c.DBUser,
		"DB_PASSWORD":       &c.DBPassword,
		"DB_NAME":           &c.DBName,
		"SQLITE_PATH":       &c.SQLitePath,
		"REDIS_HOST":        &c.RedisHost,
		"REDIS_PASSWORD":    &c.RedisPassword,
		"LOG_LEVEL":         &c.LogLevel,
		"LOG_PATH":          &c.LogPath,
		"UPLOAD_DIR":        &c.UploadDir,
		"UPLOAD_URL_PREFIX": &c.UploadURLPrefix,
		"ADMIN_USERNAME":    &c.AdminUsername,
		"ADMIN_PASSWORD":    &c.AdminPassword,
		"ADMIN_EMAIL":       &c.AdminEmail,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"TOKEN_TTL_HOURS":       &c.TokenTTLHours,
		"RATE_LIMIT_PER_MINUTE": &c.RateLimitPerMinute,
		"REDIS_PORT":            &c.RedisPort,
		"REDIS_DB":              &c.RedisDB,
		"LOG_MAX_SIZE_MB":       &c.LogMaxSizeMB,
		"LOG_MAX_BACKUPS":       &c.LogMaxBackups,
		"LOG_MAX_AGE_DAYS":      &c.LogMaxAgeDays,
		"UPLOAD_MAX_MB":         &c.UploadMaxMB,
		"SEED_USERS":            &c.SeedUsers,
		"SEED_POSTS_PER_USER":   &c.SeedPostsPerUser,
	}
	for key, dst := range ints {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %w", key, err)
		}
		*dst = n
	}

	if v := os.Getenv("REDIS_ENABLED"); v != "" {
		c.RedisEnabled = v == "true"
	}
	if v := os.Getenv("LOG_COMPRESS"); v != "" {
		c.LogCompress = v == "true"
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	return nil
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
