package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// ContainerConfig holds image versions for test containers
type ContainerConfig struct {
	MongoDBVersion string
	RedisVersion   string
}

// DefaultContainerConfig returns default container versions
func DefaultContainerConfig() ContainerConfig {
	return ContainerConfig{
		MongoDBVersion: "6.0",
		RedisVersion:   "7.0",
	}
}

// MongoDBContainer represents a MongoDB test container
type MongoDBContainer struct {
	Container    testcontainers.Container
	URI          string
	Host         string
	Port         string
	DatabaseName string
}

// StartMongoContainer starts a MongoDB container for testing
func StartMongoContainer(ctx context.Context) (*MongoDBContainer, error) {
	return StartMongoContainerWithConfig(ctx, DefaultContainerConfig())
}

// StartMongoContainerWithConfig starts a MongoDB container with custom config
func StartMongoContainerWithConfig(ctx context.Context, config ContainerConfig) (*MongoDBContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        fmt.Sprintf("mongo:%s", config.MongoDBVersion),
		ExposedPorts: []string{"27017/tcp"},
		Env: map[string]string{
			"MONGO_INITDB_ROOT_USERNAME": "test",
			"MONGO_INITDB_ROOT_PASSWORD": "test",
			"MONGO_INITDB_DATABASE":      "testdb",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("Waiting for connections"),
			wait.ForListeningPort("27017/tcp"),
		).WithDeadline(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start MongoDB container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get MongoDB container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "27017")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get MongoDB container port: %w", err)
	}

	uri := fmt.Sprintf("mongodb://test:test@%s:%s/testdb?authSource=admin", host, port.Port())

	return &MongoDBContainer{
		Container:    container,
		URI:          uri,
		Host:         host,
		Port:         port.Port(),
		DatabaseName: "testdb",
	}, nil
}

// Close terminates the MongoDB container
func (m *MongoDBContainer) Close(ctx context.Context) error {
	if m.Container != nil {
		return m.Container.Terminate(ctx)
	}
	return nil
}

// RedisContainer represents a Redis test container
type RedisContainer struct {
	Container testcontainers.Container
	URI       string
	Host      string
	Port      string
}

// StartRedisContainer starts a Redis container for testing
func StartRedisContainer(ctx context.Context) (*RedisContainer, error) {
	return StartRedisContainerWithConfig(ctx, DefaultContainerConfig())
}

// StartRedisContainerWithConfig starts a Redis container with custom config
func StartRedisContainerWithConfig(ctx context.Context, config ContainerConfig) (*RedisContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        fmt.Sprintf("redis:%s", config.RedisVersion),
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForLog("Ready to accept connections"),
			wait.ForListeningPort("6379/tcp"),
		).WithDeadline(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start Redis container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get Redis container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get Redis container port: %w", err)
	}

	return &RedisContainer{
		Container: container,
		URI:       fmt.Sprintf("redis://%s:%s", host, port.Port()),
		Host:      host,
		Port:      port.Port(),
	}, nil
}

// Close terminates the Redis container
func (r *RedisContainer) Close(ctx context.Context) error {
	if r.Container != nil {
		return r.Container.Terminate(ctx)
	}
	return nil
}
