package main

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/sammck-go/rgate/logging"
)

// fileConfig is the optional YAML config file layout, loaded before flags
// are applied so that command-line flags always win over the file.
type fileConfig struct {
	Address         string `yaml:"address"`
	CallbackAddr    string `yaml:"callback_address"`
	DiagnosticsAddr string `yaml:"diagnostics_address"`
	MaxConnections  int    `yaml:"max_connections"`
	AuthToken       string `yaml:"auth_token"`
	AuthTokenFile   string `yaml:"auth_token_file"`
	LogLevel        string `yaml:"log_level"`
}

// config is the fully-resolved CLI configuration: file values overridden by
// flags, plus the live auth token (hot-reloaded from AuthTokenFile by
// watchAuthToken).
type config struct {
	Address         string
	CallbackAddr    string
	DiagnosticsAddr string
	MaxConnections  int
	AuthTokenFile   string
	LogLevel        logging.Level

	token atomic.Value // string
}

func (c *config) currentToken() string {
	v := c.token.Load()
	if v == nil {
		return ""
	}
	return v.(string)
}

func (c *config) setToken(s string) {
	c.token.Store(s)
}

// loadFileConfig reads a YAML config file, returning a zero fileConfig if
// path is empty.
func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return fc, nil
}

// parseConfig builds a config from flagSet args: defaults, then config-file
// overrides, then explicit flags.
func parseConfig(flagSet *pflag.FlagSet, args []string) (*config, error) {
	var (
		configPath      string
		address         string
		callbackAddr    string
		diagnosticsAddr string
		maxConnections  int
		authToken       string
		authTokenFile   string
		logLevel        string
	)

	flagSet.StringVar(&configPath, "config", "", "path to a YAML config file")
	flagSet.StringVar(&address, "addr", "", "gateway address, host:port (default 127.0.0.1:25333)")
	flagSet.StringVar(&callbackAddr, "callback-addr", "", "callback server bind address (default 127.0.0.1:25334)")
	flagSet.StringVar(&diagnosticsAddr, "diagnostics-addr", "", "diagnostics HTTP server bind address (disabled if unset)")
	flagSet.IntVar(&maxConnections, "max-connections", 0, "maximum pooled connections (default 4)")
	flagSet.StringVar(&authToken, "auth-token", "", "auth token to present to the gateway")
	flagSet.StringVar(&authTokenFile, "auth-token-file", "", "path to a file containing the auth token, hot-reloaded on change")
	flagSet.StringVar(&logLevel, "log-level", "", "log level: error, warning, info, debug, trace (default info)")

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}

	fc, err := loadFileConfig(configPath)
	if err != nil {
		return nil, err
	}

	c := &config{
		Address:        "127.0.0.1:25333",
		CallbackAddr:   "127.0.0.1:25334",
		MaxConnections: 4,
		LogLevel:       logging.LevelInfo,
	}
	if fc.Address != "" {
		c.Address = fc.Address
	}
	if fc.CallbackAddr != "" {
		c.CallbackAddr = fc.CallbackAddr
	}
	if fc.DiagnosticsAddr != "" {
		c.DiagnosticsAddr = fc.DiagnosticsAddr
	}
	if fc.MaxConnections > 0 {
		c.MaxConnections = fc.MaxConnections
	}
	if fc.AuthToken != "" {
		c.setToken(fc.AuthToken)
	}
	if fc.AuthTokenFile != "" {
		c.AuthTokenFile = fc.AuthTokenFile
	}
	if fc.LogLevel != "" {
		if lvl := logging.ParseLevel(fc.LogLevel); lvl != logging.LevelUnknown {
			c.LogLevel = lvl
		}
	}

	if flagSet.Changed("addr") {
		c.Address = address
	}
	if flagSet.Changed("callback-addr") {
		c.CallbackAddr = callbackAddr
	}
	if flagSet.Changed("diagnostics-addr") {
		c.DiagnosticsAddr = diagnosticsAddr
	}
	if flagSet.Changed("max-connections") {
		c.MaxConnections = maxConnections
	}
	if flagSet.Changed("auth-token") {
		c.setToken(authToken)
	}
	if flagSet.Changed("auth-token-file") {
		c.AuthTokenFile = authTokenFile
	}
	if flagSet.Changed("log-level") {
		lvl := logging.ParseLevel(logLevel)
		if lvl == logging.LevelUnknown {
			return nil, fmt.Errorf("invalid --log-level %q", logLevel)
		}
		c.LogLevel = lvl
	}

	// -auth-token-file wins over a bare -auth-token/file value if both are
	// set, since it is the one that stays live via watchAuthToken.
	if c.AuthTokenFile != "" {
		data, err := os.ReadFile(c.AuthTokenFile)
		if err != nil {
			return nil, fmt.Errorf("reading auth token file %s: %w", c.AuthTokenFile, err)
		}
		c.setToken(trimToken(data))
	}

	return c, nil
}

func trimToken(data []byte) string {
	s := string(data)
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
