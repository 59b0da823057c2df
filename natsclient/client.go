// Package natsclient manages the NATS connection and JetStream key-value
// buckets backing durable mapping state.
package natsclient

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/errors"
)

// Well-known connection errors
var (
	ErrNotConnected = stderrors.New("not connected to NATS")
)

// Options configures the NATS connection.
type Options struct {
	URL           string
	Name          string // client identification
	MaxReconnects int
	ReconnectWait time.Duration
	Timeout       time.Duration
	Username      string
	Password      string
	Token         string
}

// DefaultOptions returns connection defaults suitable for a local server.
func DefaultOptions() Options {
	return Options{
		URL:           nats.DefaultURL,
		Name:          "surveymap",
		MaxReconnects: -1, // reconnect forever
		ReconnectWait: 2 * time.Second,
		Timeout:       5 * time.Second,
	}
}

// Client wraps a NATS connection with JetStream KV access.
type Client struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	logger *slog.Logger
}

// Connect establishes the NATS connection and initializes JetStream.
func Connect(opts Options, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.URL == "" {
		opts.URL = nats.DefaultURL
	}

	natsOpts := []nats.Option{
		nats.Name(opts.Name),
		nats.MaxReconnects(opts.MaxReconnects),
		nats.ReconnectWait(opts.ReconnectWait),
		nats.Timeout(opts.Timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}
	if opts.Username != "" {
		natsOpts = append(natsOpts, nats.UserInfo(opts.Username, opts.Password))
	}
	if opts.Token != "" {
		natsOpts = append(natsOpts, nats.Token(opts.Token))
	}

	conn, err := nats.Connect(opts.URL, natsOpts...)
	if err != nil {
		return nil, errors.WrapTransient(err, "natsclient", "Connect", "connect to "+opts.URL)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, errors.WrapFatal(err, "natsclient", "Connect", "initialize JetStream")
	}

	logger.Info("NATS connected", "url", conn.ConnectedUrl())
	return &Client{conn: conn, js: js, logger: logger}, nil
}

// NewFromConn wraps an existing connection (used by tests with a container-
// backed server).
func NewFromConn(conn *nats.Conn, logger *slog.Logger) (*Client, error) {
	if conn == nil {
		return nil, errors.WrapInvalid(ErrNotConnected, "natsclient", "NewFromConn", "nil connection")
	}
	if logger == nil {
		logger = slog.Default()
	}
	js, err := jetstream.New(conn)
	if err != nil {
		return nil, errors.WrapFatal(err, "natsclient", "NewFromConn", "initialize JetStream")
	}
	return &Client{conn: conn, js: js, logger: logger}, nil
}

// CreateKeyValueBucket creates or binds the named KV bucket.
func (c *Client) CreateKeyValueBucket(ctx context.Context, cfg jetstream.KeyValueConfig) (jetstream.KeyValue, error) {
	if c.js == nil {
		return nil, errors.WrapTransient(ErrNotConnected, "natsclient", "CreateKeyValueBucket", "no JetStream context")
	}

	bucket, err := c.js.CreateKeyValue(ctx, cfg)
	if err == nil {
		return bucket, nil
	}
	// Bucket may already exist with a different configuration; bind to it.
	bucket, bindErr := c.js.KeyValue(ctx, cfg.Bucket)
	if bindErr != nil {
		return nil, errors.WrapTransient(err, "natsclient", "CreateKeyValueBucket", "create bucket "+cfg.Bucket)
	}
	return bucket, nil
}

// Connected reports whether the underlying connection is up.
func (c *Client) Connected() bool {
	return c.conn != nil && c.conn.IsConnected()
}

// Close drains and closes the connection.
func (c *Client) Close() {
	if c.conn != nil && !c.conn.IsClosed() {
		if err := c.conn.Drain(); err != nil {
			c.logger.Warn("NATS drain failed, closing", "error", err)
			c.conn.Close()
		}
	}
}
