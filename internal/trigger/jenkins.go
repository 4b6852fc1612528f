package trigger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bndr/gojenkins"
	"go.uber.org/zap"

	"github.com/tizendotnet/netcore-jenkins/internal/config"
	"github.com/tizendotnet/netcore-jenkins/internal/metrics"
)

// Client starts Jenkins builds without blocking the caller
type Client struct {
	api     jenkinsAPI
	logger  *zap.Logger
	metrics *metrics.Metrics
	wg      sync.WaitGroup

	maxConnectAttempts int
	initialBackoff     time.Duration
	maxBackoff         time.Duration
}

// NewClient creates a Jenkins client authenticated with user and API token
func NewClient(cfg *config.JenkinsConfig, m *metrics.Metrics, logger *zap.Logger) *Client {
	api := &requesterAPI{jenkins: gojenkins.CreateJenkins(nil, cfg.URL, cfg.User, cfg.Token)}
	return newClient(api, cfg.ConnectAttempts, m, logger)
}

func newClient(api jenkinsAPI, attempts int, m *metrics.Metrics, logger *zap.Logger) *Client {
	if attempts < 1 {
		attempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		api:                api,
		logger:             logger,
		metrics:            m,
		maxConnectAttempts: attempts,
		initialBackoff:     time.Second,
		maxBackoff:         30 * time.Second,
	}
}

// Connect initializes the Jenkins session (credentials and reachability),
// retrying with exponential backoff. Only startup is retried; builds are not.
func (c *Client) Connect(ctx context.Context) error {
	backoff := c.initialBackoff
	attempt := 0

	for {
		attempt++
		c.logger.Info("Attempting connection to Jenkins",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.maxConnectAttempts),
		)

		err := c.api.Init(ctx)
		if err == nil {
			break
		}
		if attempt >= c.maxConnectAttempts {
			return fmt.Errorf("failed to connect to Jenkins after %d attempts: %w", c.maxConnectAttempts, err)
		}

		c.logger.Warn("Connection to Jenkins failed, retrying...",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > c.maxBackoff {
			backoff = c.maxBackoff
		}
	}

	c.logger.Info("Connected to Jenkins", zap.Int("attempt", attempt))

	info, err := c.api.ServerInfo(ctx)
	if err != nil {
		c.logger.Warn("Failed to fetch Jenkins info", zap.Error(err))
		return nil
	}
	c.logger.Info("Jenkins info",
		zap.String("mode", info.Mode),
		zap.Int64("executors", info.NumExecutors),
	)
	return nil
}

// Ping checks that Jenkins answers its info endpoint
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.ServerInfo(ctx); err != nil {
		return fmt.Errorf("jenkins info request failed: %w", err)
	}
	return nil
}

// Build requests a build of jobName in the background. A build request is
// always posted, even when the job already sits in the queue. The outcome is
// only logged and counted; fields are attached to both log lines.
func (c *Client) Build(jobName string, params map[string]string, fields ...zap.Field) {
	log := c.logger.With(fields...).With(zap.String("job", jobName))

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				c.metrics.ObserveTrigger(fmt.Errorf("panic: %v", r))
				log.Error("Panic while triggering Jenkins job", zap.Any("panic", r))
			}
		}()

		queueID, err := c.api.BuildWithParameters(context.Background(), JobPath(jobName), params)
		c.metrics.ObserveTrigger(err)
		if err != nil {
			log.Error("Failed to trigger Jenkins job", zap.Error(err))
			return
		}

		log.Info("Jenkins job triggered", zap.Int64("queue_id", queueID))
	}()
}

// Wait blocks until every build started by Build has returned, or ctx ends
func (c *Client) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// JobPath turns a folder-qualified job name ("folder/job") into the path
// segment Jenkins expects after the leading /job/ ("folder/job/job")
func JobPath(name string) string {
	parts := strings.Split(name, "/")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return strings.Join(segments, "/job/")
}
