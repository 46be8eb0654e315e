package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/routex-dev/routex/internal/errors"
	"github.com/routex-dev/routex/pkg/plugin"
)

const (
	// DefaultRoutesPath is used when no configuration sets routesPath.
	DefaultRoutesPath = "./routes"

	// DefaultAddr is the address `routex serve` listens on.
	DefaultAddr = ":3000"

	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "ROUTEX_"
)

// FileNames lists the recognized configuration files in priority order.
var FileNames = []string{
	"routex.json",
	"routex.yaml",
	"routex.yml",
	"routex.toml",
}

// Config is the routex project configuration.
type Config struct {
	// RoutesPath is the directory scanned for route files. A relative path
	// is resolved against the directory holding the configuration file.
	RoutesPath string `config:"routesPath" json:"routesPath"`

	// Plugins are resolved by name against the plugin catalog, in order.
	Plugins []plugin.Spec `config:"plugins" json:"plugins,omitempty"`

	// Server configures `routex serve`.
	Server ServerConfig `config:"server" json:"server"`

	// S3 configures the .s3 route strategy.
	S3 S3Config `config:"s3" json:"s3"`

	path string
}

// ServerConfig configures the HTTP server started by the CLI.
type ServerConfig struct {
	Addr            string        `config:"addr" json:"addr,omitempty"`
	ShutdownTimeout time.Duration `config:"shutdownTimeout" json:"shutdownTimeout,omitempty"`
}

// S3Config holds client settings for bucket pointer routes.
type S3Config struct {
	Region         string `config:"region" json:"region,omitempty"`
	Endpoint       string `config:"endpoint" json:"endpoint,omitempty"`
	ForcePathStyle bool   `config:"forcePathStyle" json:"forcePathStyle,omitempty"`
	CacheSize      int    `config:"cacheSize" json:"cacheSize,omitempty"`
}

// overrides are the environment variables read on top of the file.
// Pointer fields stay nil when the variable is unset.
type overrides struct {
	RoutesPath       string         `env:"ROUTES_PATH"`
	Addr             string         `env:"ADDR"`
	S3Region         string         `env:"S3_REGION"`
	S3Endpoint       string         `env:"S3_ENDPOINT"`
	S3ForcePathStyle *bool          `env:"S3_FORCE_PATH_STYLE"`
	ShutdownTimeout  *time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

// New returns a configuration holding only defaults.
func New() *Config {
	return &Config{
		RoutesPath: DefaultRoutesPath,
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
	}
}

// LoadFile reads, validates and binds a configuration file. The format is
// chosen by extension. Every failure is an E103 error.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E103").WithFile(path).Wrap(err)
	}

	doc, err := decode(path, data)
	if err != nil {
		return nil, errors.New("E103").WithFile(path).Wrap(err)
	}

	if err := validate(doc); err != nil {
		return nil, errors.New("E103").
			WithFile(path).
			WithDetail("The configuration does not match the routex schema.").
			Wrap(err)
	}

	cfg := &Config{}
	if err := bind(doc, cfg); err != nil {
		return nil, errors.New("E103").WithFile(path).Wrap(err)
	}
	if err := mergo.Merge(cfg, New()); err != nil {
		return nil, errors.New("E103").WithFile(path).Wrap(err)
	}

	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	cfg.path = path
	return cfg, nil
}

// decode parses data into a generic document according to the extension.
func decode(path string, data []byte) (map[string]any, error) {
	doc := map[string]any{}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}

	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &doc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	case ".toml":
		err = toml.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("unsupported configuration format %q", ext)
	}
	if err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

// bind decodes a generic document into cfg.
func bind(doc map[string]any, cfg *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "config",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		Result: cfg,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(doc)
}

// ApplyEnv loads dir/.env, if present, and applies ROUTEX_* environment
// variables on top of c. Variables already set in the process win over
// the .env file. A malformed .env file is reported as E103 after the
// process environment has been applied.
func (c *Config) ApplyEnv(dir string) error {
	var dotenvErr error
	if dir != "" {
		path := filepath.Join(dir, ".env")
		if err := godotenv.Load(path); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			dotenvErr = errors.New("E103").WithFile(path).WithDetail("Invalid .env file.").Wrap(err)
		}
	}

	var o overrides
	if err := env.ParseWithOptions(&o, env.Options{Prefix: EnvPrefix}); err != nil {
		return errors.New("E103").WithDetail("Invalid ROUTEX_* environment variable.").Wrap(err)
	}

	if o.RoutesPath != "" {
		c.RoutesPath = o.RoutesPath
	}
	if o.Addr != "" {
		c.Server.Addr = o.Addr
	}
	if o.S3Region != "" {
		c.S3.Region = o.S3Region
	}
	if o.S3Endpoint != "" {
		c.S3.Endpoint = o.S3Endpoint
	}
	if o.S3ForcePathStyle != nil {
		c.S3.ForcePathStyle = *o.S3ForcePathStyle
	}
	if o.ShutdownTimeout != nil {
		c.Server.ShutdownTimeout = *o.ShutdownTimeout
	}
	return dotenvErr
}

// SaveTo writes c to path in the format given by its extension.
func (c *Config) SaveTo(path string) error {
	doc := c.document()

	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err = json.MarshalIndent(doc, "", "  ")
		data = append(data, '\n')
	case ".yaml", ".yml":
		data, err = yaml.Marshal(doc)
	case ".toml":
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(doc)
		data = buf.Bytes()
	default:
		err = fmt.Errorf("unsupported configuration format %q", ext)
	}
	if err != nil {
		return errors.New("E103").WithFile(path).Wrap(err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("E103").WithFile(path).Wrap(err)
	}

	c.path = path
	return nil
}

// document renders c as the generic shape accepted by LoadFile.
func (c *Config) document() map[string]any {
	doc := map[string]any{
		"routesPath": c.RoutesPath,
	}

	if len(c.Plugins) > 0 {
		plugins := make([]any, 0, len(c.Plugins))
		for _, p := range c.Plugins {
			entry := map[string]any{"name": p.Name}
			if p.Kind != "" {
				entry["kind"] = p.Kind
			}
			if p.Builtin {
				entry["builtin"] = true
			}
			if len(p.Options) > 0 {
				entry["options"] = p.Options
			}
			plugins = append(plugins, entry)
		}
		doc["plugins"] = plugins
	}

	server := map[string]any{}
	if c.Server.Addr != "" {
		server["addr"] = c.Server.Addr
	}
	if c.Server.ShutdownTimeout > 0 {
		server["shutdownTimeout"] = c.Server.ShutdownTimeout.String()
	}
	if len(server) > 0 {
		doc["server"] = server
	}

	s3 := map[string]any{}
	if c.S3.Region != "" {
		s3["region"] = c.S3.Region
	}
	if c.S3.Endpoint != "" {
		s3["endpoint"] = c.S3.Endpoint
	}
	if c.S3.ForcePathStyle {
		s3["forcePathStyle"] = true
	}
	if c.S3.CacheSize > 0 {
		s3["cacheSize"] = c.S3.CacheSize
	}
	if len(s3) > 0 {
		doc["s3"] = s3
	}

	return doc
}

// Path returns the file c was loaded from or saved to, or "" for defaults.
func (c *Config) Path() string {
	return c.path
}

// Dir returns the directory holding the configuration file, or "".
func (c *Config) Dir() string {
	if c.path == "" {
		return ""
	}
	return filepath.Dir(c.path)
}

// RoutesDir resolves RoutesPath. A relative path is joined to the
// configuration file's directory, or to workDir for programmatic and
// default configurations.
func (c *Config) RoutesDir(workDir string) string {
	routes := c.RoutesPath
	if routes == "" {
		routes = DefaultRoutesPath
	}
	if filepath.IsAbs(routes) {
		return routes
	}
	base := c.Dir()
	if base == "" {
		base = workDir
	}
	return filepath.Join(base, routes)
}
