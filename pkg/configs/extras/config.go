// Package extras declares additional endpoints which helixd proxies to other services.
//
//	endpoints:
//	  - path: /trainer
//	    proxy_to: http://trainer:8000/
//
// With the config above, a request to /trainer/metrics is sent to http://trainer:8000/metrics .
package extras

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

type Endpoint struct {
	// Path is the path prefix of requests to be proxied.
	//
	// This should be a clean absolute path (start with / and do not contain . or ..).
	Path string

	// ProxyTo is the root URL of the service which receives proxied requests.
	//
	// Sub-path of the original request is appended to this.
	ProxyTo *url.URL
}

var (
	ErrInvalidEndpointPath = errors.New("extras: endpoint path is invalid")
	ErrInvalidProxyTo      = errors.New("extras: proxy_to is invalid")
	ErrReservedPath        = errors.New("extras: endpoint path is reserved")
)

func (e *Endpoint) UnmarshalYAML(node *yaml.Node) error {
	raw := struct {
		Path    string `yaml:"path"`
		ProxyTo string `yaml:"proxy_to"`
	}{}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	switch {
	case raw.Path == "":
		return fmt.Errorf("%w: empty", ErrInvalidEndpointPath)
	case !path.IsAbs(raw.Path):
		return fmt.Errorf("%w: not absolute: %s", ErrInvalidEndpointPath, raw.Path)
	case path.Clean(raw.Path) != raw.Path:
		return fmt.Errorf("%w: not clean: %s", ErrInvalidEndpointPath, raw.Path)
	}

	dest, err := url.Parse(raw.ProxyTo)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProxyTo, err)
	}
	if !dest.IsAbs() {
		return fmt.Errorf("%w: not absolute: %s", ErrInvalidProxyTo, raw.ProxyTo)
	}
	if dest.Hostname() == "" {
		return fmt.Errorf("%w: no hostname: %s", ErrInvalidProxyTo, raw.ProxyTo)
	}

	e.Path = raw.Path
	e.ProxyTo = dest
	return nil
}

// Overlaps tells the endpoint takes requests for prefix, or under it.
func (e Endpoint) Overlaps(prefix string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	return e.Path == "/" ||
		e.Path == prefix ||
		strings.HasPrefix(e.Path, prefix+"/")
}

type Config struct {
	Endpoints []Endpoint `yaml:"endpoints,omitempty"`
}

// Check verifies that no endpoints overlap the reserved path prefixes.
func (c Config) Check(reserved ...string) error {
	for _, ep := range c.Endpoints {
		for _, r := range reserved {
			if ep.Overlaps(r) {
				return fmt.Errorf("%w: %s overlaps %s", ErrReservedPath, ep.Path, r)
			}
		}
	}
	return nil
}

// Load loads configuration from the file.
//
// An empty file is an empty config.
func Load(file string) (Config, error) {
	f, err := os.Open(file)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	cfg := Config{}
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	return cfg, nil
}
