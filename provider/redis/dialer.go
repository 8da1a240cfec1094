package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/nscache/provider"
)

// DialConfig carries the Redis-specific settings that do not fit in a
// provider.Endpoint.
type DialConfig struct {
	Username   string
	Password   string
	DB         int
	ClientName string

	// Seeds are extra cluster/sentinel addresses dialed alongside the endpoint.
	Seeds      []string
	MasterName string // sentinel master; enables failover mode
	Cluster    bool   // force cluster mode with a single address

	// Tune is applied last and may override anything derived above.
	Tune func(*goredis.UniversalOptions)
}

type dialer struct{ cfg DialConfig }

// NewDialer returns a provider.Dialer that opens an owned go-redis client
// per Dial and verifies it with PING.
func NewDialer(cfg DialConfig) pr.Dialer { return dialer{cfg: cfg} }

func (d dialer) Dial(ctx context.Context, ep pr.Endpoint) (pr.Provider, error) {
	opts := UniversalOptions(ep, d.cfg)
	rdb := goredis.NewUniversalClient(opts)

	pingCtx := ctx
	if ep.Timeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, ep.Timeout)
		defer cancel()
	}
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", ep.Addr(), err)
	}
	return New(Config{Client: rdb, CloseClient: true})
}

// UniversalOptions maps an Endpoint onto go-redis options:
//   - Timeout > 0 bounds dial, read and write; 0 lets reads and writes block.
//   - RetryInterval > 0 keeps go-redis retries with a fixed backoff of
//     RetryInterval; 0 disables retries.
func UniversalOptions(ep pr.Endpoint, cfg DialConfig) *goredis.UniversalOptions {
	opts := &goredis.UniversalOptions{
		Addrs:                 append([]string{ep.Addr()}, cfg.Seeds...),
		Username:              cfg.Username,
		Password:              cfg.Password,
		DB:                    cfg.DB,
		ClientName:            cfg.ClientName,
		MasterName:            cfg.MasterName,
		IsClusterMode:         cfg.Cluster,
		ContextTimeoutEnabled: true,
	}

	if ep.Timeout > 0 {
		opts.DialTimeout = ep.Timeout
		opts.ReadTimeout = ep.Timeout
		opts.WriteTimeout = ep.Timeout
	} else {
		opts.ReadTimeout = -1
		opts.WriteTimeout = -1
	}

	if ep.RetryInterval > 0 {
		opts.MinRetryBackoff = ep.RetryInterval
		opts.MaxRetryBackoff = ep.RetryInterval
	} else {
		opts.MaxRetries = -1
	}

	if cfg.Tune != nil {
		cfg.Tune(opts)
	}
	return opts
}
