package config

import (
	"fmt"
	"net"
	"strings"
	"time"
)

type ServerConfig struct {
	Host            string
	Port            int
	PublicBaseUrl   string
	UpstreamTimeout time.Duration
	WorkerPoolSize  int
	LogLevel        string
	JwksUrl         string
}

func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, fmt.Sprintf("%d", c.Port))
}

func GetServerConfig() (*ServerConfig, error) {
	port, err := getIntEnv("PORT", 5000)
	if err != nil {
		return nil, err
	}
	timeout, err := getDurationEnv("UPSTREAM_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	poolSize, err := getIntEnv("WORKER_POOL_SIZE", 16)
	if err != nil {
		return nil, err
	}
	if poolSize <= 0 {
		return nil, fmt.Errorf("WORKER_POOL_SIZE must be positive")
	}

	publicBaseUrl := getEnvOrDefault("PUBLIC_BASE_URL", fmt.Sprintf("http://localhost:%d", port))

	return &ServerConfig{
		Host:            getEnvOrDefault("HOST", "0.0.0.0"),
		Port:            port,
		PublicBaseUrl:   strings.TrimSuffix(publicBaseUrl, "/"),
		UpstreamTimeout: timeout,
		WorkerPoolSize:  poolSize,
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		JwksUrl:         getEnvOrDefault("JWKS_URL", ""),
	}, nil
}
