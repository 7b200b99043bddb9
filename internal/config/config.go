package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultServerAddr  = "localhost:8000"
	DefaultDatabaseDSN = "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable"
	DefaultAdminEmail  = "admin@novatech.com"

	envPrefix = "SUPPORTCHAT_"
)

type Config struct {
	ServerAddr     string
	DatabaseDSN    string
	AdminEmail     string
	AllowedOrigins []string
	SigningKey     []byte
	VerifyIdentity bool
	SkipMigrations bool
	Debug          bool
}

// Options holds raw, unvalidated settings gathered from the config
// file, the environment and command-line flags.
type Options struct {
	ServerAddr     string   `yaml:"server_addr"`
	DatabaseDSN    string   `yaml:"database_dsn"`
	AdminEmail     string   `yaml:"admin_email"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	SigningKey     string   `yaml:"signing_key"`
	VerifyIdentity bool     `yaml:"verify_identity"`
	SkipMigrations bool     `yaml:"skip_migrations"`
	Debug          bool     `yaml:"debug"`
}

func DefaultOptions() Options {
	return Options{
		ServerAddr:  DefaultServerAddr,
		DatabaseDSN: DefaultDatabaseDSN,
		AdminEmail:  DefaultAdminEmail,
	}
}

// LoadFile overlays the YAML file at path onto opts. Keys absent from
// the file leave opts untouched.
func LoadFile(path string, opts *Options) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(opts); err != nil {
		return fmt.Errorf("decode config file: %w", err)
	}

	return nil
}

// LoadEnv reads envFile into the process environment if it exists and
// then overlays SUPPORTCHAT_* variables onto opts.
func LoadEnv(envFile string, opts *Options) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file: %w", err)
		}
	}

	if v, ok := lookupEnv("ADDR"); ok {
		opts.ServerAddr = v
	}
	if v, ok := lookupEnv("DSN"); ok {
		opts.DatabaseDSN = v
	}
	if v, ok := lookupEnv("ADMIN_EMAIL"); ok {
		opts.AdminEmail = v
	}
	if v, ok := lookupEnv("SIGNING_KEY"); ok {
		opts.SigningKey = v
	}
	if v, ok := lookupEnv("ALLOWED_ORIGINS"); ok {
		opts.AllowedOrigins = SplitList(v)
	}

	for name, dst := range map[string]*bool{
		"VERIFY_IDENTITY": &opts.VerifyIdentity,
		"SKIP_MIGRATIONS": &opts.SkipMigrations,
		"DEBUG":           &opts.Debug,
	} {
		v, ok := lookupEnv(name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = b
	}

	return nil
}

func lookupEnv(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// SplitList splits a comma-separated list, dropping empty entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func decodeSigningSecret(base64Secret string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(base64Secret)
	if err != nil {
		return nil, err
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("empty signing secret")
	}
	return key, nil
}

func NewConfig(opts Options) (*Config, error) {
	if opts.ServerAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if opts.DatabaseDSN == "" {
		return nil, fmt.Errorf("database DSN cannot be empty")
	}
	if opts.AdminEmail == "" {
		return nil, fmt.Errorf("admin email cannot be empty")
	}
	if opts.VerifyIdentity && opts.SigningKey == "" {
		return nil, fmt.Errorf("signing secret is required when identity verification is enabled")
	}

	cfg := &Config{
		ServerAddr:     opts.ServerAddr,
		DatabaseDSN:    opts.DatabaseDSN,
		AdminEmail:     opts.AdminEmail,
		AllowedOrigins: opts.AllowedOrigins,
		VerifyIdentity: opts.VerifyIdentity,
		SkipMigrations: opts.SkipMigrations,
		Debug:          opts.Debug,
	}

	if opts.SigningKey != "" {
		signingKey, err := decodeSigningSecret(opts.SigningKey)
		if err != nil {
			return nil, fmt.Errorf("decode signing secret: %w", err)
		}
		cfg.SigningKey = signingKey
	}

	return cfg, nil
}
