package nscache

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	pr "github.com/unkn0wn-root/nscache/provider"
)

// DefaultPort is used when Config.Port is zero.
const DefaultPort = 6379

// Config describes the backend endpoint. Only Host is required.
type Config struct {
	Host          string        `yaml:"host" env:"HOST" validate:"required"`
	Port          int           `yaml:"port" env:"PORT" validate:"min=1,max=65535"`           // 0 => 6379
	Timeout       time.Duration `yaml:"timeout" env:"TIMEOUT" validate:"min=0"`               // 0 => no timeout
	RetryInterval time.Duration `yaml:"retry_interval" env:"RETRY_INTERVAL" validate:"min=0"` // 0 => no retry
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their config-file name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Normalize fills defaults and validates. The returned error is a *ConfigError.
func (c Config) Normalize() (Config, error) {
	c.Host = strings.TrimSpace(c.Host)
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return c, &ConfigError{Field: fe.Field(), Reason: reason(fe)}
		}
		return c, &ConfigError{Field: "config", Reason: err.Error()}
	}
	return c, nil
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be >= %s (got %v)", fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("must be <= %s (got %v)", fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

// Endpoint converts a normalized Config into what a provider.Dialer expects.
func (c Config) Endpoint() pr.Endpoint {
	return pr.Endpoint{
		Host:          c.Host,
		Port:          c.Port,
		Timeout:       c.Timeout,
		RetryInterval: c.RetryInterval,
	}
}

// ConfigFromMap reads the mapping form:
//
//	host            string (required)
//	port            int, default 6379
//	timeout         float seconds, default 0 (no timeout)
//	retry_interval  int milliseconds, default 0 (no retry)
//
// Numeric strings are accepted. Unknown keys are ignored. The result is
// normalized; errors are *ConfigError.
func ConfigFromMap(m map[string]any) (Config, error) {
	var c Config

	if v, ok := m["host"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return c, &ConfigError{Field: "host", Reason: fmt.Sprintf("must be a string, got %T", v)}
		}
		c.Host = s
	}

	if v, ok := m["port"]; ok && v != nil {
		f, err := number(v)
		if err != nil || !finite(f) || f != math.Trunc(f) {
			return c, &ConfigError{Field: "port", Reason: fmt.Sprintf("must be an integer, got %v", v)}
		}
		if f < 0 || f > 65535 {
			return c, &ConfigError{Field: "port", Reason: fmt.Sprintf("must be in 1..65535 (0 => default), got %v", v)}
		}
		c.Port = int(f)
	}

	if v, ok := m["timeout"]; ok && v != nil {
		f, err := number(v)
		if err != nil || !finite(f) {
			return c, &ConfigError{Field: "timeout", Reason: fmt.Sprintf("must be seconds, got %v", v)}
		}
		d, err := duration(f, time.Second)
		if err != nil {
			return c, &ConfigError{Field: "timeout", Reason: fmt.Sprintf("%v, got %v", err, v)}
		}
		c.Timeout = d
	}

	if v, ok := m["retry_interval"]; ok && v != nil {
		f, err := number(v)
		if err != nil || !finite(f) || f != math.Trunc(f) {
			return c, &ConfigError{Field: "retry_interval", Reason: fmt.Sprintf("must be integer milliseconds, got %v", v)}
		}
		d, err := duration(f, time.Millisecond)
		if err != nil {
			return c, &ConfigError{Field: "retry_interval", Reason: fmt.Sprintf("%v, got %v", err, v)}
		}
		c.RetryInterval = d
	}

	return c.Normalize()
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// duration converts f units to a Duration, refusing what time.Duration cannot hold.
func duration(f float64, unit time.Duration) (time.Duration, error) {
	if f < 0 {
		return 0, errors.New("must be >= 0")
	}
	// float64(MaxInt64) rounds up to 2^63, which does not fit
	n := f * float64(unit)
	if n >= float64(math.MaxInt64) {
		return 0, fmt.Errorf("must be <= %v", time.Duration(math.MaxInt64).Truncate(unit))
	}
	return time.Duration(n), nil
}

func number(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}
