package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/vango-dev/uniroute/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "uniroute.json"

	// DefaultMaxPages is the page stack depth allowed by the runtime.
	DefaultMaxPages = 10

	// DefaultAddr is the default bridge server address.
	DefaultAddr = ":8790"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "uniroute"

	// DefaultBufferSize is the default WebSocket read/write buffer size.
	DefaultBufferSize = 4096
)

// Config represents the complete uniroute.json configuration.
type Config struct {
	// Pages lists every page the app may open. The first one is the
	// entry page unless EntryPagePath is set.
	Pages []PageConfig `json:"pages"`

	// TabBar lists the pages reachable through SwitchTab.
	TabBar TabBarConfig `json:"tabBar,omitempty"`

	// EntryPagePath is the page opened on launch.
	EntryPagePath string `json:"entryPagePath,omitempty"`

	// MaxPages bounds the page stack depth (default: 10).
	MaxPages int `json:"maxPages,omitempty"`

	// Server configures the bridge server.
	Server ServerConfig `json:"server,omitempty"`

	// Metrics configures Prometheus metrics.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// PageConfig registers one page.
type PageConfig struct {
	// Path is the page route without a leading slash.
	Path string `json:"path"`
}

// TabBarConfig holds the tab bar pages.
type TabBarConfig struct {
	List []TabItem `json:"list,omitempty"`
}

// TabItem is a single tab.
type TabItem struct {
	PagePath string `json:"pagePath"`
	Text     string `json:"text,omitempty"`
}

// ServerConfig configures the bridge server.
type ServerConfig struct {
	// Addr is the listen address (default: ":8790").
	Addr string `json:"addr,omitempty"`

	// ReadBufferSize is the WebSocket read buffer size in bytes.
	ReadBufferSize int `json:"readBufferSize,omitempty"`

	// WriteBufferSize is the WebSocket write buffer size in bytes.
	WriteBufferSize int `json:"writeBufferSize,omitempty"`

	// AllowedOrigins restricts WebSocket origins. Empty allows same-origin only.
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "uniroute").
	Namespace string `json:"namespace,omitempty"`
}

// New creates a configuration with default values and no pages.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load loads uniroute.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E120").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " listing your pages")
		}
		return nil, errors.New("E121").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E121").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the path the configuration was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills unset fields and normalizes page paths.
func (c *Config) applyDefaults() {
	if c.MaxPages == 0 {
		c.MaxPages = DefaultMaxPages
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadBufferSize == 0 {
		c.Server.ReadBufferSize = DefaultBufferSize
	}
	if c.Server.WriteBufferSize == 0 {
		c.Server.WriteBufferSize = DefaultBufferSize
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}

	for i := range c.Pages {
		c.Pages[i].Path = NormalizeRoute(c.Pages[i].Path)
	}
	for i := range c.TabBar.List {
		c.TabBar.List[i].PagePath = NormalizeRoute(c.TabBar.List[i].PagePath)
	}
	c.EntryPagePath = NormalizeRoute(c.EntryPagePath)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Pages) == 0 {
		return errors.New("E122").WithDetail("pages must list at least one page")
	}
	if c.MaxPages < 1 {
		return errors.New("E122").WithDetailf("maxPages must be at least 1, got %d", c.MaxPages)
	}

	seen := make(map[string]bool, len(c.Pages))
	for _, p := range c.Pages {
		if p.Path == "" {
			return errors.New("E122").WithDetail("page path must not be empty")
		}
		if strings.Contains(p.Path, "?") {
			return errors.New("E122").WithDetailf("page path %q must not carry a query", p.Path)
		}
		if seen[p.Path] {
			return errors.New("E122").WithDetailf("page %q is listed twice", p.Path)
		}
		seen[p.Path] = true
	}

	for _, tab := range c.TabBar.List {
		if !seen[tab.PagePath] {
			return errors.New("E122").WithDetailf("tab page %q is not listed in pages", tab.PagePath)
		}
	}
	if c.EntryPagePath != "" && !seen[c.EntryPagePath] {
		return errors.New("E122").WithDetailf("entry page %q is not listed in pages", c.EntryPagePath)
	}
	return nil
}

// HasPage reports whether route is registered.
func (c *Config) HasPage(route string) bool {
	route = NormalizeRoute(route)
	for _, p := range c.Pages {
		if p.Path == route {
			return true
		}
	}
	return false
}

// IsTabPage reports whether route is in the tab bar.
func (c *Config) IsTabPage(route string) bool {
	route = NormalizeRoute(route)
	for _, tab := range c.TabBar.List {
		if tab.PagePath == route {
			return true
		}
	}
	return false
}

// EntryPage returns the page opened on launch.
func (c *Config) EntryPage() string {
	if c.EntryPagePath != "" {
		return c.EntryPagePath
	}
	if len(c.Pages) > 0 {
		return c.Pages[0].Path
	}
	return ""
}

// NormalizeRoute strips the leading slash and any query from a page URL.
func NormalizeRoute(url string) string {
	path, _, _ := strings.Cut(url, "?")
	return strings.TrimLeft(path, "/")
}
