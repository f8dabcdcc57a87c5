// Package i18n holds the localized message catalogs used for user-facing
// failure messages. Catalogs are embedded YAML trees rooted at the locale
// name, flattened to dotted keys at load time.
package i18n

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yml
var localeFS embed.FS

// Catalog is an immutable set of translated messages for one locale.
type Catalog struct {
	locale   string
	messages map[string]string
}

// Load parses the embedded catalog for locale.
func Load(locale string) (*Catalog, error) {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if locale == "" {
		return nil, fmt.Errorf("locale is required")
	}

	raw, err := localeFS.ReadFile("locales/" + locale + ".yml")
	if err != nil {
		return nil, fmt.Errorf("unknown locale %q", locale)
	}
	return Parse(locale, raw)
}

// MustLoad is Load for package-level defaults; it panics on an unknown locale.
func MustLoad(locale string) *Catalog {
	c, err := Load(locale)
	if err != nil {
		panic(err)
	}
	return c
}

// Parse builds a catalog from a YAML document whose single root key is the locale.
func Parse(locale string, raw []byte) (*Catalog, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s catalog: %w", locale, err)
	}
	root, ok := doc[locale].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("catalog has no %q root", locale)
	}

	messages := make(map[string]string)
	flatten("", root, messages)
	return &Catalog{locale: locale, messages: messages}, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// Locale returns the catalog's locale name.
func (c *Catalog) Locale() string {
	return c.locale
}

// T returns the message for key. A missing key yields the key itself.
func (c *Catalog) T(key string) string {
	if c == nil {
		return key
	}
	if msg, ok := c.messages[key]; ok {
		return msg
	}
	return key
}

// Keys lists every key in the catalog in sorted order.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.messages))
	for k := range c.messages {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
