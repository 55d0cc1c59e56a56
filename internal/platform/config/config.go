// Package config reads settings from the environment through prefixed views
//
// Must* getters panic through the logger when a value is missing or malformed,
// May* getters fall back to the default and warn about malformed values.
package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"toxlens/internal/platform/logger"
)

// Conf scopes lookups under a prefix, e.g. New().Prefix("CORE_UI_")
type Conf struct{ prefix string }

func New() Conf { return Conf{} }

// Prefix nests p under the current prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) lookup(key string) (name, value string) {
	name = c.prefix + key
	return name, strings.TrimSpace(os.Getenv(name))
}

// may parses key or returns def, a bad value is logged and ignored
func may[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	name, s := c.lookup(key)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", name).Str("value", s).Interface("default", def).Msg("config: malformed value, using default")
		return def
	}
	return v
}

func (c Conf) MayString(key, def string) string {
	return may(c, key, def, func(s string) (string, error) { return s, nil })
}

func (c Conf) MayInt(key string, def int) int { return may(c, key, def, strconv.Atoi) }

func (c Conf) MayBool(key string, def bool) bool { return may(c, key, def, strconv.ParseBool) }

// MayDuration takes Go duration syntax, 250ms or 1m30s
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return may(c, key, def, time.ParseDuration)
}

// MayEnum returns the value lower-cased, panics when it is not in allowed
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	name, _ := c.lookup(key)
	v := strings.ToLower(c.MayString(key, def))
	for _, a := range allowed {
		if v == strings.ToLower(a) {
			return v
		}
	}
	logger.Get().Panic().Str("key", name).Str("value", v).Strs("allowed", allowed).Msg("config: value not allowed")
	return ""
}

// MustString panics when key is unset or blank
func (c Conf) MustString(key string) string {
	name, s := c.lookup(key)
	if s == "" {
		logger.Get().Panic().Str("key", name).Msg("config: required value missing")
	}
	return s
}

// MustURL panics unless key holds an absolute URL
func (c Conf) MustURL(key string) *url.URL {
	s := c.MustString(key)
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() {
		name, _ := c.lookup(key)
		logger.Get().Panic().Str("key", name).Str("value", s).Msg("config: not an absolute url")
	}
	return u
}
