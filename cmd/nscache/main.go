// nscache runs one cache command against a configured backend.
//
//	nscache [-config file.yaml] [-env .env] [-prefix p] [-codec json] set <key> <value>
//	nscache [...] get <key>
//	nscache [...] del <key>
//	nscache [...] flush
//
// Without -config the endpoint comes from NSCACHE_* environment variables.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/unkn0wn-root/nscache/codec"
)

var version = "dev"

func main() {
	var f flags
	flag.StringVar(&f.configPath, "config", "", "path to YAML config file (default: environment)")
	flag.StringVar(&f.envFile, "env", "", "optional .env file loaded before reading the environment")
	flag.StringVar(&f.prefix, "prefix", "", "namespace prefix (overrides config)")
	flag.StringVar(&f.codec, "codec", "", fmt.Sprintf("value codec %v (overrides config)", codec.Names()))
	flag.DurationVar(&f.ttl, "ttl", 0, "TTL for set (default: config default_ttl)")
	flag.BoolVar(&f.verbose, "v", false, "debug logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("nscache", version)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, f, flag.Args(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
