package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/unkn0wn-root/nscache/codec"
)

func writeConfig(t *testing.T, m *miniredis.Miniredis) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nscache.yaml")
	doc := "endpoint:\n  host: " + m.Host() + "\n  port: " + m.Port() + "\n  timeout: 1s\nprefix: cli\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCmd(t *testing.T, f flags, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), f, args, &out)
	return strings.TrimSpace(out.String()), err
}

func TestCommands(t *testing.T) {
	m := miniredis.RunT(t)
	f := flags{configPath: writeConfig(t, m), ttl: time.Minute}

	if out, err := runCmd(t, f, "set", "user//42", "alice"); err != nil || out != "OK" {
		t.Fatalf("set: %q %v", out, err)
	}
	keys := m.Keys()
	if len(keys) != 1 || !strings.HasPrefix(keys[0], "cli:user:42:") || m.TTL(keys[0]) != time.Minute {
		t.Fatalf("stored keys = %v", keys)
	}

	if out, err := runCmd(t, f, "get", "user//42"); err != nil || out != "alice" {
		t.Fatalf("get: %q %v", out, err)
	}
	if out, err := runCmd(t, f, "del", "user//42"); err != nil || out != "OK" {
		t.Fatalf("del: %q %v", out, err)
	}
	if _, err := runCmd(t, f, "get", "user//42"); !errors.Is(err, errNotFound) {
		t.Fatalf("get after del: %v", err)
	}

	runCmd(t, f, "set", "a", "1")
	runCmd(t, f, "set", "b", "2")
	if out, err := runCmd(t, f, "flush"); err != nil || out != "removed 2" {
		t.Fatalf("flush: %q %v", out, err)
	}
}

func TestPrefixFlagOverridesConfig(t *testing.T) {
	m := miniredis.RunT(t)
	f := flags{configPath: writeConfig(t, m), prefix: "other"}
	if _, err := runCmd(t, f, "set", "k", "v"); err != nil {
		t.Fatal(err)
	}
	if keys := m.Keys(); len(keys) != 1 || !strings.HasPrefix(keys[0], "other:k:") {
		t.Fatalf("keys = %v", keys)
	}
}

func TestEnvFileConfig(t *testing.T) {
	m := miniredis.RunT(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	doc := "NSCACHE_HOST=" + m.Host() + "\nNSCACHE_PORT=" + m.Port() + "\n"
	if err := os.WriteFile(envFile, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	// restore whatever godotenv sets
	t.Setenv("NSCACHE_HOST", "")
	t.Setenv("NSCACHE_PORT", "")
	os.Unsetenv("NSCACHE_HOST")
	os.Unsetenv("NSCACHE_PORT")

	if out, err := runCmd(t, flags{envFile: envFile}, "set", "k", "v"); err != nil || out != "OK" {
		t.Fatalf("set: %q %v", out, err)
	}
	if len(m.Keys()) != 1 || !strings.HasPrefix(m.Keys()[0], "cache:k:") {
		t.Fatalf("keys = %v", m.Keys())
	}
}

func TestUsageErrors(t *testing.T) {
	m := miniredis.RunT(t)
	f := flags{configPath: writeConfig(t, m)}
	for _, args := range [][]string{nil, {"set", "k"}, {"get"}, {"flush", "x"}, {"bogus"}} {
		if _, err := runCmd(t, f, args...); !errors.Is(err, errUsage) {
			t.Fatalf("%v: want usage error, got %v", args, err)
		}
	}
}

func TestConnectFailure(t *testing.T) {
	m := miniredis.RunT(t)
	path := writeConfig(t, m)
	m.Close()
	if _, err := runCmd(t, flags{configPath: path}, "get", "k"); err == nil {
		t.Fatalf("expected connect error")
	}
}

func TestCodecs(t *testing.T) {
	stored := map[string]string{
		"raw":      "alice",
		"json":     `"alice"`,
		"cbor":     "\x65alice",
		"msgpack":  "\xa5alice",
		"protobuf": "\x0a\x05alice",
	}
	for name, want := range stored {
		t.Run(name, func(t *testing.T) {
			m := miniredis.RunT(t)
			f := flags{configPath: writeConfig(t, m), codec: name}
			if _, err := runCmd(t, f, "set", "k", "alice"); err != nil {
				t.Fatalf("set: %v", err)
			}
			keys := m.Keys()
			if len(keys) != 1 {
				t.Fatalf("keys = %v", keys)
			}
			if got, _ := m.Get(keys[0]); got != want {
				t.Fatalf("stored %q, want %q", got, want)
			}
			if out, err := runCmd(t, f, "get", "k"); err != nil || out != "alice" {
				t.Fatalf("get: %q %v", out, err)
			}
		})
	}
}

func TestUndecodableValueIsDropped(t *testing.T) {
	m := miniredis.RunT(t)
	path := writeConfig(t, m)
	if _, err := runCmd(t, flags{configPath: path}, "set", "k", "not json"); err != nil {
		t.Fatal(err)
	}
	if _, err := runCmd(t, flags{configPath: path, codec: "json"}, "get", "k"); err == nil {
		t.Fatalf("expected decode error")
	}
	if keys := m.Keys(); len(keys) != 0 {
		t.Fatalf("undecodable entry kept: %v", keys)
	}
}

func TestCodecFromConfig(t *testing.T) {
	m := miniredis.RunT(t)
	path := filepath.Join(t.TempDir(), "nscache.yaml")
	doc := "endpoint: {host: " + m.Host() + ", port: " + m.Port() + "}\ncodec: json\nmax_value_bytes: 10\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	f := flags{configPath: path}
	if _, err := runCmd(t, f, "set", "k", "v"); err != nil {
		t.Fatal(err)
	}
	if got, _ := m.Get(m.Keys()[0]); got != `"v"` {
		t.Fatalf("stored %q", got)
	}
	if _, err := runCmd(t, f, "set", "big", "far more than ten bytes"); !errors.Is(err, codec.ErrTooLarge) {
		t.Fatalf("oversized set: %v", err)
	}
	if _, err := runCmd(t, flags{configPath: path, codec: "xml"}, "get", "k"); err == nil {
		t.Fatalf("unknown codec should fail")
	}
}
