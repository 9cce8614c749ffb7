package client

import (
	"maps"
	"sync"

	"github.com/dmitrijs2005/quzhan/internal/common"
)

// ServiceConfig is the mutable runtime configuration of one backend. It is a
// session.TokenSink, so the session keeps its token current.
type ServiceConfig struct {
	name string

	mu       sync.RWMutex
	baseURL  string
	token    string
	username string
	password string
	headers  map[string]string
}

func NewServiceConfig(name, baseURL string, headers map[string]string) *ServiceConfig {
	return &ServiceConfig{name: name, baseURL: baseURL, headers: maps.Clone(headers)}
}

func (c *ServiceConfig) Name() string { return c.name }

func (c *ServiceConfig) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *ServiceConfig) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetBasicAuth enables HTTP basic auth for requests sent without a token.
func (c *ServiceConfig) SetBasicAuth(username, password string) {
	c.mu.Lock()
	c.username, c.password = username, password
	c.mu.Unlock()
}

type serviceSettings struct {
	baseURL  string
	username string
	password string
	headers  map[string]string
}

func (c *ServiceConfig) settings() serviceSettings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return serviceSettings{
		baseURL:  c.baseURL,
		username: c.username,
		password: c.password,
		headers:  maps.Clone(c.headers),
	}
}

// Services are the three backends reached through the gateway.
type Services struct {
	UserHub     *ServiceConfig
	PostService *ServiceConfig
	PostSearch  *ServiceConfig
}

// NewServices configures every backend with the gateway URL and the platform
// header.
func NewServices(baseURL, platform string) *Services {
	if platform == "" {
		platform = common.DefaultPlatform
	}
	headers := map[string]string{common.PlatformHeaderName: platform}
	return &Services{
		UserHub:     NewServiceConfig("user-hub", baseURL, headers),
		PostService: NewServiceConfig("post-service", baseURL, headers),
		PostSearch:  NewServiceConfig("post-search", baseURL, headers),
	}
}

func (s *Services) All() []*ServiceConfig {
	return []*ServiceConfig{s.UserHub, s.PostService, s.PostSearch}
}
