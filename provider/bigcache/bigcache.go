package bigcache

import (
	"context"
	"errors"
	"strings"
	"time"

	bc "github.com/allegro/bigcache/v3"

	pr "github.com/unkn0wn-root/nscache/provider"
)

type Provider struct {
	c *bc.BigCache
}

var _ pr.Provider = (*Provider)(nil)

const defaultLifeWindow = 10 * time.Minute

type Config struct {
	LifeWindow         time.Duration // 0 => 10m; bigcache evicts anything older on clean
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(cfg Config) (*Provider, error) {
	life := cfg.LifeWindow
	if life <= 0 {
		life = defaultLifeWindow
	}
	conf := bc.DefaultConfig(life)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	conf.Verbose = false
	c, err := bc.NewBigCache(conf)
	if err != nil {
		return nil, err
	}
	return &Provider{c: c}, nil
}

// Dialer builds a fresh in-process cache per Dial; the endpoint is ignored.
func Dialer(cfg Config) pr.Dialer {
	return pr.DialFunc(func(context.Context, pr.Endpoint) (pr.Provider, error) {
		return New(cfg)
	})
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := p.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	return b, err == nil, err
}

func (p *Provider) Set(_ context.Context, key string, value []byte, _ time.Duration) (bool, error) {
	// BigCache does not support per-entry TTL; uses global LifeWindow.
	if err := p.c.Set(key, value); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Provider) Del(_ context.Context, keys ...string) (int64, error) {
	var n int64
	for _, k := range keys {
		err := p.c.Delete(k)
		switch {
		case err == nil:
			n++
		case errors.Is(err, bc.ErrEntryNotFound):
		default:
			return n, err
		}
	}
	return n, nil
}

// Scan snapshots matching keys first; deleting while the iterator is live
// can invalidate it.
func (p *Provider) Scan(_ context.Context, prefix string, batch int, fn func([]string) error) error {
	var matched []string
	it := p.c.Iterator()
	for it.SetNext() {
		e, err := it.Value()
		if err != nil {
			// entry vanished between SetNext and Value
			continue
		}
		if strings.HasPrefix(e.Key(), prefix) {
			matched = append(matched, e.Key())
		}
	}
	return pr.Pages(matched, batch, fn)
}

func (p *Provider) Close(_ context.Context) error {
	return p.c.Close()
}
