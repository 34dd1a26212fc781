package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	JWT        JWTConfig        `yaml:"jwt"`
	Backup     BackupConfig     `yaml:"backup"`
	Redis      RedisConfig      `yaml:"redis"`
	Cloudinary CloudinaryConfig `yaml:"cloudinary"`
	Admin      AdminConfig      `yaml:"admin"`
}

type ServerConfig struct {
	Port           string        `yaml:"port"`
	Env            string        `yaml:"env"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RateLimit      int           `yaml:"rate_limit"`
	RateWindow     time.Duration `yaml:"rate_window"`
	StaticDir      string        `yaml:"static_dir"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"` // mysql | sqlite
	DSN             string        `yaml:"dsn"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
	Issuer string        `yaml:"issuer"`
}

// BackupConfig controls where snapshot files live and the scheduled export.
type BackupConfig struct {
	Storage       string        `yaml:"storage"` // local | s3
	Dir           string        `yaml:"dir"`
	Interval      time.Duration `yaml:"interval"` // 0 disables scheduled backups
	Keep          int           `yaml:"keep"`
	MaxActivities int           `yaml:"max_activities"`
	S3            S3Config      `yaml:"s3"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

type RedisConfig struct {
	URL     string        `yaml:"url"` // empty disables the public data cache
	SiteTTL time.Duration `yaml:"site_ttl"`
}

type CloudinaryConfig struct {
	CloudName string `yaml:"cloud_name"`
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	Folder    string `yaml:"folder"`
}

// AdminConfig seeds the first admin account when the users table is empty.
type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Email    string `yaml:"email"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "3000",
			Env:            "development",
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   30 * time.Second,
			AllowedOrigins: []string{"*"},
			RateLimit:      100,
			RateWindow:     15 * time.Minute,
			StaticDir:      "./public",
		},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			DSN:             "data/loteamento.db",
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			Secret: "change-me-in-production",
			Expiry: 24 * time.Hour,
			Issuer: "loteamento",
		},
		Backup: BackupConfig{
			Storage:       "local",
			Dir:           "data/backups",
			Interval:      0,
			Keep:          7,
			MaxActivities: 1000,
			S3: S3Config{
				Region: "us-east-1",
				Prefix: "backups/",
			},
		},
		Redis: RedisConfig{
			SiteTTL: 5 * time.Minute,
		},
		Cloudinary: CloudinaryConfig{
			Folder: "Loteamento",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file
// (CONFIG_FILE, default config.yml) and environment variables, in that order.
func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := Default()

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.Env, "APP_ENV")
	setString(&cfg.Server.StaticDir, "STATIC_DIR")
	setInt(&cfg.Server.RateLimit, "RATE_LIMIT")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}

	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.DSN, "DB_DSN")

	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setDuration(&cfg.JWT.Expiry, "JWT_EXPIRY")

	setString(&cfg.Backup.Storage, "BACKUP_STORAGE")
	setString(&cfg.Backup.Dir, "BACKUP_DIR")
	setDuration(&cfg.Backup.Interval, "BACKUP_INTERVAL")
	setInt(&cfg.Backup.Keep, "BACKUP_KEEP")
	setString(&cfg.Backup.S3.Bucket, "BACKUP_S3_BUCKET")
	setString(&cfg.Backup.S3.Region, "BACKUP_S3_REGION")
	setString(&cfg.Backup.S3.Endpoint, "BACKUP_S3_ENDPOINT")
	setString(&cfg.Backup.S3.Prefix, "BACKUP_S3_PREFIX")
	setString(&cfg.Backup.S3.AccessKeyID, "BACKUP_S3_ACCESS_KEY_ID")
	setString(&cfg.Backup.S3.SecretAccessKey, "BACKUP_S3_SECRET_ACCESS_KEY")
	if v := os.Getenv("BACKUP_S3_PATH_STYLE"); v != "" {
		cfg.Backup.S3.UsePathStyle, _ = strconv.ParseBool(v)
	}

	setString(&cfg.Redis.URL, "REDIS_URL")

	setString(&cfg.Cloudinary.CloudName, "CLOUDINARY_CLOUD_NAME")
	setString(&cfg.Cloudinary.APIKey, "CLOUDINARY_API_KEY")
	setString(&cfg.Cloudinary.APISecret, "CLOUDINARY_API_SECRET")

	setString(&cfg.Admin.Username, "ADMIN_USERNAME")
	setString(&cfg.Admin.Password, "ADMIN_PASSWORD")
	setString(&cfg.Admin.Email, "ADMIN_EMAIL")
}

func (c *Config) IsProduction() bool { return c.Server.Env == "production" }

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
