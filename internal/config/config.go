package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Deployment modes for the auth service. A process runs exactly one of them;
// the token mode issues signed bearer tokens, the github mode keeps
// server-side sessions behind an OAuth redirect flow. They never mix.
const (
	ModeToken  = "token"
	ModeGitHub = "github"
)

// Run modes. Anything other than development requires an explicit JWT secret.
const (
	RunModeDevelopment = "development"
	RunModeProduction  = "production"
)

// DevSecret is the development-only fallback signing secret carried over from
// earlier deployments. Outside development mode the process refuses to start
// without an explicit secret instead of silently using it.
const DevSecret = "default-secret-key-change-in-production"

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Port string
	}
	Auth struct {
		Mode            string
		RunMode         string
		JWTSecret       string
		TokenTTLMinutes int
	}
	Identity struct {
		Username     string
		PasswordHash string
	}
	Database struct {
		Path string
	}
	Session struct {
		TTLMinutes int
	}
	GitHub struct {
		ClientID     string
		ClientSecret string
		CallbackURL  string
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix("AUTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bare env names kept for compatibility with existing deployments.
	_ = v.BindEnv("server.port", "PORT", "AUTH_SERVER_PORT")
	_ = v.BindEnv("auth.jwtsecret", "JWT_SECRET", "AUTH_JWT_SECRET")
	_ = v.BindEnv("github.clientid", "GITHUB_CLIENT_ID", "AUTH_GITHUB_CLIENTID")
	_ = v.BindEnv("github.clientsecret", "GITHUB_CLIENT_SECRET", "AUTH_GITHUB_CLIENTSECRET")
	_ = v.BindEnv("github.callbackurl", "CALLBACK_URL", "AUTH_GITHUB_CALLBACKURL")

	// The AutomaticEnv derivation doubles the prefix for auth.* keys
	// (AUTH_AUTH_MODE); bind the intended names explicitly.
	_ = v.BindEnv("auth.mode", "AUTH_MODE")
	_ = v.BindEnv("auth.runmode", "AUTH_RUN_MODE")
	_ = v.BindEnv("auth.tokenttlminutes", "AUTH_TOKEN_TTL_MINUTES")
	_ = v.BindEnv("session.ttlminutes", "AUTH_SESSION_TTL_MINUTES")

	v.SetDefault("server.port", "3001")
	v.SetDefault("auth.mode", ModeToken)
	v.SetDefault("auth.runmode", RunModeDevelopment)
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttlminutes", 60)
	v.SetDefault("identity.username", "admin")
	// bcrypt of the predefined development password ("SecurePass123!").
	v.SetDefault("identity.passwordhash", "$2b$10$o7OMixMNVeFuonIt0hsWleT00faZgaMcFdNzE8Zu7ma3G1XhKDSVy")
	v.SetDefault("database.path", "data/sessions.db")
	v.SetDefault("session.ttlminutes", 60)
	v.SetDefault("github.clientid", "")
	v.SetDefault("github.clientsecret", "")
	v.SetDefault("github.callbackurl", "http://localhost:3001/auth/github/callback")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address for the configured port.
func (c Config) Addr() string {
	return ":" + c.Server.Port
}

func loadDotEnv() {
	file, err := os.Open(".env")
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		partsIndex := strings.Index(line, "=")
		if partsIndex <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:partsIndex])
		value := strings.TrimSpace(line[partsIndex+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}

		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}
