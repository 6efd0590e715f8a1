package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/sha1n/mcp-prompts-server-go/internal/domain"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Configuration keys. Each key is also the name of its command line flag.
const (
	KeyConfig           = "config"
	KeyPromptsDir       = "prompts-dir"
	KeyRegisterAs       = "register-as"
	KeyTransport        = "transport"
	KeyHost             = "host"
	KeyPort             = "port"
	KeyTLSCert          = "tls-cert"
	KeyTLSKey           = "tls-key"
	KeyAuthType         = "auth-type"
	KeyAuthUsername     = "auth-basic-username"
	KeyAuthPassword     = "auth-basic-password"
	KeyAuthAPIKey       = "auth-api-key"
	KeyAuthOIDCIssuer   = "auth-oidc-issuer"
	KeyAuthOIDCClientID = "auth-oidc-client-id"
	KeySearch           = "search"
	KeySearchToolName   = "search-tool-name"
	KeySearchMaxResults = "search-max-results"
	KeyLogLevel         = "log-level"
	KeyLogFormat        = "log-format"
)

// Transports
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
	TransportHTTP  = "http"
)

// EnvPrefix prefixes the environment variables of all keys except
// PROMPTS_DIR and REGISTER_AS, which are read unprefixed
const EnvPrefix = "MCP_PROMPTS"

// ConfigFileName is looked up in the XDG config directories when no config file is given
var ConfigFileName = filepath.Join("mcp-prompts", "config.yaml")

// Settings holds the resolved process configuration
type Settings struct {
	PromptsDir string
	RegisterAs domain.RegistrationMode
	Transport  string
	Host       string
	Port       int
	CertFile   string
	KeyFile    string
	Auth       AuthSettings
	Search     SearchSettings
	Log        LogSettings
}

// AuthSettings configures authentication of the network transports
type AuthSettings struct {
	Type   string // none, basic, apikey, oidc
	Basic  BasicAuthSettings
	APIKey string
	OIDC   OIDCSettings
}

// BasicAuthSettings holds basic auth credentials
type BasicAuthSettings struct {
	Username string
	Password string
}

// OIDCSettings configures OIDC bearer token verification
type OIDCSettings struct {
	IssuerURL string
	ClientID  string
}

// SearchSettings configures the optional prompt search tool
type SearchSettings struct {
	Enabled    bool
	ToolName   string
	MaxResults int
}

// LogSettings configures logging
type LogSettings struct {
	Level  string
	Format string
}

// EnvVar returns the environment variable bound to a key
func EnvVar(key string) string {
	switch key {
	case KeyPromptsDir:
		return "PROMPTS_DIR"
	case KeyRegisterAs:
		return "REGISTER_AS"
	default:
		return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
	}
}

// BindFlags registers all configuration flags on fs and binds them to v
func BindFlags(fs *pflag.FlagSet, v *viper.Viper) error {
	fs.String(KeyConfig, "", "Path to a YAML config file (default: "+ConfigFileName+" in the XDG config directories)")
	fs.String(KeyPromptsDir, "", "Directory containing .md prompt files (env: PROMPTS_DIR)")
	fs.String(KeyRegisterAs, string(domain.DefaultRegistrationMode), "Registration mode: tool, prompt, or both (env: REGISTER_AS)")
	fs.String(KeyTransport, TransportStdio, "Transport: stdio, sse, or http")
	fs.String(KeyHost, "localhost", "Host to listen on (sse/http)")
	fs.Int(KeyPort, 8080, "Port to listen on (sse/http)")
	fs.String(KeyTLSCert, "", "TLS certificate file (sse/http)")
	fs.String(KeyTLSKey, "", "TLS key file (sse/http)")
	fs.String(KeyAuthType, "none", "Authentication type: none, basic, apikey, or oidc (sse/http)")
	fs.String(KeyAuthUsername, "", "Basic auth username")
	fs.String(KeyAuthPassword, "", "Basic auth password")
	fs.String(KeyAuthAPIKey, "", "API key")
	fs.String(KeyAuthOIDCIssuer, "", "OIDC issuer URL")
	fs.String(KeyAuthOIDCClientID, "", "OIDC client ID")
	fs.Bool(KeySearch, false, "Register a tool that searches the prompt library")
	fs.String(KeySearchToolName, "search_prompts", "Name of the search tool")
	fs.Int(KeySearchMaxResults, 10, "Default maximum number of search results")
	fs.String(KeyLogLevel, "info", "Log level: debug, info, warn, or error")
	fs.String(KeyLogFormat, "text", "Log format: text, json, or logfmt")

	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		if err = v.BindPFlag(f.Name, f); err != nil {
			return
		}
		if f.Name != KeyConfig {
			err = v.BindEnv(f.Name, EnvVar(f.Name))
		}
	})
	return err
}

// Load resolves settings from v. Precedence is flags, then environment, then
// the config file, then flag defaults.
func Load(v *viper.Viper) (*Settings, error) {
	configFile := v.GetString(KeyConfig)
	if configFile == "" {
		if path, err := xdg.SearchConfigFile(ConfigFileName); err == nil {
			configFile = path
		}
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	mode, err := domain.ParseRegistrationMode(v.GetString(KeyRegisterAs))
	if err != nil {
		return nil, err
	}

	settings := &Settings{
		PromptsDir: v.GetString(KeyPromptsDir),
		RegisterAs: mode,
		Transport:  v.GetString(KeyTransport),
		Host:       v.GetString(KeyHost),
		Port:       v.GetInt(KeyPort),
		CertFile:   v.GetString(KeyTLSCert),
		KeyFile:    v.GetString(KeyTLSKey),
		Auth: AuthSettings{
			Type: v.GetString(KeyAuthType),
			Basic: BasicAuthSettings{
				Username: v.GetString(KeyAuthUsername),
				Password: v.GetString(KeyAuthPassword),
			},
			APIKey: v.GetString(KeyAuthAPIKey),
			OIDC: OIDCSettings{
				IssuerURL: v.GetString(KeyAuthOIDCIssuer),
				ClientID:  v.GetString(KeyAuthOIDCClientID),
			},
		},
		Search: SearchSettings{
			Enabled:    v.GetBool(KeySearch),
			ToolName:   v.GetString(KeySearchToolName),
			MaxResults: v.GetInt(KeySearchMaxResults),
		},
		Log: LogSettings{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
		},
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return settings, nil
}

// Validate validates the settings
func (s *Settings) Validate() error {
	if s.PromptsDir == "" {
		return fmt.Errorf("environment variable %s must be set to the prompt directory path", EnvVar(KeyPromptsDir))
	}
	if !s.RegisterAs.Valid() {
		return fmt.Errorf("invalid registration mode: %q", s.RegisterAs)
	}

	switch s.Transport {
	case TransportStdio:
	case TransportSSE, TransportHTTP:
		if s.Port < 1 || s.Port > 65535 {
			return fmt.Errorf("invalid port: %d", s.Port)
		}
		if (s.CertFile == "") != (s.KeyFile == "") {
			return fmt.Errorf("both --%s and --%s must be set to enable TLS", KeyTLSCert, KeyTLSKey)
		}
		if err := s.Auth.Validate(); err != nil {
			return fmt.Errorf("invalid auth settings: %w", err)
		}
	default:
		return fmt.Errorf("unknown transport: %s", s.Transport)
	}

	if s.Search.Enabled {
		if s.Search.ToolName == "" {
			return fmt.Errorf("search tool name is required when search is enabled")
		}
		if s.Search.MaxResults < 1 {
			return fmt.Errorf("search max results must be positive, got %d", s.Search.MaxResults)
		}
	}

	return nil
}

// Validate validates the auth settings
func (a AuthSettings) Validate() error {
	switch a.Type {
	case "none", "":
		return nil
	case "basic":
		if a.Basic.Username == "" || a.Basic.Password == "" {
			return fmt.Errorf("basic auth requires a username and a password")
		}
	case "apikey":
		if a.APIKey == "" {
			return fmt.Errorf("apikey auth requires an API key")
		}
	case "oidc":
		if a.OIDC.IssuerURL == "" || a.OIDC.ClientID == "" {
			return fmt.Errorf("oidc auth requires an issuer URL and a client ID")
		}
	default:
		return fmt.Errorf("unknown auth type: %s", a.Type)
	}
	return nil
}
