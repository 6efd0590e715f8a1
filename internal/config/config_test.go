package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/sha1n/mcp-prompts-server-go/internal/domain"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PROMPTS_DIR", "")
	t.Setenv("REGISTER_AS", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_DIRS", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)
}

func load(t *testing.T, args ...string) (*Settings, error) {
	t.Helper()
	v := viper.New()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, BindFlags(fs, v))
	require.NoError(t, fs.Parse(args))
	return Load(v)
}

func TestLoad_Defaults(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PROMPTS_DIR", "/prompts")

	settings, err := load(t)
	require.NoError(t, err)

	assert.Equal(t, "/prompts", settings.PromptsDir)
	assert.Equal(t, domain.ModeTool, settings.RegisterAs)
	assert.Equal(t, TransportStdio, settings.Transport)
	assert.Equal(t, "none", settings.Auth.Type)
	assert.False(t, settings.Search.Enabled)
	assert.Equal(t, "search_prompts", settings.Search.ToolName)
	assert.Equal(t, 10, settings.Search.MaxResults)
	assert.Equal(t, "info", settings.Log.Level)
	assert.Equal(t, "text", settings.Log.Format)
}

func TestLoad_MissingPromptsDir(t *testing.T) {
	isolateEnv(t)

	_, err := load(t)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROMPTS_DIR must be set")
}

func TestLoad_RegisterAs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  string
		want domain.RegistrationMode
	}{
		{name: "Default", want: domain.ModeTool},
		{name: "Flag prompt", args: []string{"--register-as=prompt"}, want: domain.ModePrompt},
		{name: "Flag both", args: []string{"--register-as=both"}, want: domain.ModeBoth},
		{name: "Env", env: "prompt", want: domain.ModePrompt},
		{name: "Flag takes precedence over env", args: []string{"--register-as=tool"}, env: "prompt", want: domain.ModeTool},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			t.Setenv("PROMPTS_DIR", "/prompts")
			t.Setenv("REGISTER_AS", tt.env)

			settings, err := load(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, settings.RegisterAs)
		})
	}
}

func TestLoad_InvalidRegisterAs(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PROMPTS_DIR", "/prompts")

	_, err := load(t, "--register-as=invalid")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --register-as value")
}

func TestLoad_PromptsDirFlag(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PROMPTS_DIR", "/from-env")

	settings, err := load(t, "--prompts-dir", "/from-flag")
	require.NoError(t, err)
	assert.Equal(t, "/from-flag", settings.PromptsDir)
}

func TestLoad_PrefixedEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PROMPTS_DIR", "/prompts")
	t.Setenv("MCP_PROMPTS_TRANSPORT", "sse")
	t.Setenv("MCP_PROMPTS_PORT", "9090")
	t.Setenv("MCP_PROMPTS_SEARCH", "true")

	settings, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, TransportSSE, settings.Transport)
	assert.Equal(t, 9090, settings.Port)
	assert.True(t, settings.Search.Enabled)
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	isolateEnv(t)
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	content := "prompts-dir: /from-file\nregister-as: both\nlog-level: debug\n"
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

	settings, err := load(t, "--config", configFile)
	require.NoError(t, err)
	assert.Equal(t, "/from-file", settings.PromptsDir)
	assert.Equal(t, domain.ModeBoth, settings.RegisterAs)
	assert.Equal(t, "debug", settings.Log.Level)
}

func TestLoad_EnvOverridesConfigFile(t *testing.T) {
	isolateEnv(t)
	t.Setenv("REGISTER_AS", "prompt")
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("prompts-dir: /from-file\nregister-as: both\n"), 0644))

	settings, err := load(t, "--config", configFile)
	require.NoError(t, err)
	assert.Equal(t, domain.ModePrompt, settings.RegisterAs)
}

func TestLoad_XDGConfigFile(t *testing.T) {
	isolateEnv(t)
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	xdg.Reload()

	path := filepath.Join(configHome, ConfigFileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("prompts-dir: /from-xdg\n"), 0644))

	settings, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, "/from-xdg", settings.PromptsDir)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PROMPTS_DIR", "/prompts")

	_, err := load(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestSettings_Validate(t *testing.T) {
	valid := func() Settings {
		return Settings{
			PromptsDir: "/prompts",
			RegisterAs: domain.ModeTool,
			Transport:  TransportStdio,
			Port:       8080,
			Auth:       AuthSettings{Type: "none"},
			Search:     SearchSettings{ToolName: "search_prompts", MaxResults: 10},
		}
	}

	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantErr bool
	}{
		{name: "Valid", mutate: func(s *Settings) {}},
		{name: "Unknown transport", mutate: func(s *Settings) { s.Transport = "carrier-pigeon" }, wantErr: true},
		{name: "SSE", mutate: func(s *Settings) { s.Transport = TransportSSE }},
		{name: "HTTP bad port", mutate: func(s *Settings) { s.Transport = TransportHTTP; s.Port = 0 }, wantErr: true},
		{name: "Stdio ignores port", mutate: func(s *Settings) { s.Port = 0 }},
		{name: "TLS cert without key", mutate: func(s *Settings) { s.Transport = TransportSSE; s.CertFile = "c.pem" }, wantErr: true},
		{name: "TLS cert and key", mutate: func(s *Settings) { s.Transport = TransportSSE; s.CertFile = "c.pem"; s.KeyFile = "k.pem" }},
		{name: "Unknown auth", mutate: func(s *Settings) { s.Transport = TransportSSE; s.Auth.Type = "magic" }, wantErr: true},
		{name: "Basic auth without password", mutate: func(s *Settings) {
			s.Transport = TransportSSE
			s.Auth = AuthSettings{Type: "basic", Basic: BasicAuthSettings{Username: "u"}}
		}, wantErr: true},
		{name: "API key auth", mutate: func(s *Settings) {
			s.Transport = TransportHTTP
			s.Auth = AuthSettings{Type: "apikey", APIKey: "k"}
		}},
		{name: "OIDC without client", mutate: func(s *Settings) {
			s.Transport = TransportHTTP
			s.Auth = AuthSettings{Type: "oidc", OIDC: OIDCSettings{IssuerURL: "https://issuer"}}
		}, wantErr: true},
		{name: "Search without results", mutate: func(s *Settings) { s.Search = SearchSettings{Enabled: true, ToolName: "s"} }, wantErr: true},
		{name: "Search without name", mutate: func(s *Settings) { s.Search = SearchSettings{Enabled: true, MaxResults: 5} }, wantErr: true},
		{name: "Invalid mode", mutate: func(s *Settings) { s.RegisterAs = "all" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			if err := s.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Settings.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnvVar(t *testing.T) {
	assert.Equal(t, "PROMPTS_DIR", EnvVar(KeyPromptsDir))
	assert.Equal(t, "REGISTER_AS", EnvVar(KeyRegisterAs))
	assert.Equal(t, "MCP_PROMPTS_SEARCH_MAX_RESULTS", EnvVar(KeySearchMaxResults))
}
