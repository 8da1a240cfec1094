package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/unkn0wn-root/nscache"
	"github.com/unkn0wn-root/nscache/config"
	nszap "github.com/unkn0wn-root/nscache/log/zap"
)

type flags struct {
	configPath string
	envFile    string
	prefix     string
	codec      string
	ttl        time.Duration
	verbose    bool
}

var (
	errUsage    = errors.New("usage: nscache [flags] set <key> <value> | get <key> | del <key> | flush")
	errNotFound = errors.New("not found")
)

func loadFile(f flags) (config.File, error) {
	if f.envFile != "" {
		if err := config.LoadDotEnv(f.envFile); err != nil {
			return config.File{}, err
		}
	}
	if f.configPath != "" {
		return config.Load(f.configPath)
	}
	return config.FromEnv()
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func run(ctx context.Context, f flags, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	file, err := loadFile(f)
	if err != nil {
		return err
	}
	if f.prefix != "" {
		file.Prefix = f.prefix
	}
	if f.codec != "" {
		file.Codec = f.codec
	}
	vc, err := file.ValueCodec()
	if err != nil {
		return err
	}

	zl, err := newLogger(f.verbose)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()

	opts, err := file.Options(nszap.New(zl), nil)
	if err != nil {
		return err
	}
	c, err := nscache.New(opts)
	if err != nil {
		return err
	}
	if err := c.Connect(ctx, file.Endpoint); err != nil {
		return err
	}
	defer func() { _ = c.Close(context.Background()) }()

	ttl := f.ttl
	if ttl == 0 {
		ttl = file.DefaultTTL
	}
	return exec(ctx, nscache.NewTyped(c.Namespace(file.Prefix), vc), ttl, args, out)
}

// exec runs one command. Values pass through the typed view's codec; get
// prints the decoded value, the others print the outcome.
func exec(ctx context.Context, t nscache.Typed[string], ttl time.Duration, args []string, out io.Writer) error {
	switch cmd := args[0]; {
	case cmd == "set" && len(args) == 3:
		ok, err := t.Set(ctx, args[1], args[2], ttl)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("set rejected by backend")
		}
		fmt.Fprintln(out, "OK")
	case cmd == "get" && len(args) == 2:
		v, ok, err := t.Get(ctx, args[1])
		if err != nil {
			return err
		}
		if !ok {
			return errNotFound
		}
		fmt.Fprintln(out, v)
	case cmd == "del" && len(args) == 2:
		ok, err := t.Del(ctx, args[1])
		if err != nil {
			return err
		}
		if !ok {
			return errNotFound
		}
		fmt.Fprintln(out, "OK")
	case cmd == "flush" && len(args) == 1:
		n, err := t.Flush(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "removed %d\n", n)
	default:
		return errUsage
	}
	return nil
}
