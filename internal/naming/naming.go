// Package naming translates animation script identifiers into display
// names.
//
// A Catalog holds per-language names on top of golang.org/x/text message
// catalogs. Unknown identifiers are shown as they are.
package naming

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Fallback is used when the configured language has no entry.
var Fallback = language.English

// builtin names for the scripts bundled with the host plugin.
var builtin = map[language.Tag]map[string]string{
	language.English: {
		"PSDToolKit.Blinker":       "Blinker",
		"PSDToolKit.LipSyncSimple": "Lip Sync (open/close)",
		"PSDToolKit.LipSyncLab":    "Lip Sync (vowels)",
	},
	language.Japanese: {
		"PSDToolKit.Blinker":       "目パチ",
		"PSDToolKit.LipSyncSimple": "口パク 開閉のみ",
		"PSDToolKit.LipSyncLab":    "口パク あいうえお",
	},
}

// Catalog maps script identifiers to display names for one language.
type Catalog struct {
	builder  *catalog.Builder
	known    map[language.Tag]map[string]bool
	tag      language.Tag
	printers map[language.Tag]*message.Printer
}

// New creates a catalog with the built-in names, displaying in lang. An
// unparsable lang falls back to English.
func New(lang string) *Catalog {
	c := &Catalog{
		builder:  catalog.NewBuilder(catalog.Fallback(Fallback)),
		known:    make(map[language.Tag]map[string]bool),
		printers: make(map[language.Tag]*message.Printer),
	}
	for tag, names := range builtin {
		for key, name := range names {
			_ = c.Set(tag, key, name)
		}
	}
	c.SetLanguage(lang)
	return c
}

// SetLanguage changes the display language.
func (c *Catalog) SetLanguage(lang string) {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = Fallback
	}
	c.tag = tag
}

// Language returns the display language.
func (c *Catalog) Language() language.Tag {
	return c.tag
}

// Set adds or replaces the display name of key in tag.
func (c *Catalog) Set(tag language.Tag, key, name string) error {
	// Names are literal text, not format strings.
	if err := c.builder.SetString(tag, key, strings.ReplaceAll(name, "%", "%%")); err != nil {
		return fmt.Errorf("set %s %q: %w", tag, key, err)
	}
	if c.known[tag] == nil {
		c.known[tag] = make(map[string]bool)
	}
	c.known[tag][key] = true
	return nil
}

// DisplayName returns the name of script in the display language, then
// its base language, then the fallback, or script itself.
func (c *Catalog) DisplayName(script string) string {
	if script == "" {
		return ""
	}
	base, _ := c.tag.Base()
	for _, tag := range []language.Tag{c.tag, language.Make(base.String()), Fallback} {
		if c.known[tag][script] {
			return c.printer(tag).Sprintf(script)
		}
	}
	return script
}

func (c *Catalog) printer(tag language.Tag) *message.Printer {
	p, ok := c.printers[tag]
	if !ok {
		p = message.NewPrinter(tag, message.Catalog(c.builder))
		c.printers[tag] = p
	}
	return p
}

// Keys returns every identifier with a name in any language, sorted.
func (c *Catalog) Keys() []string {
	seen := make(map[string]bool)
	for _, keys := range c.known {
		for k := range keys {
			seen[k] = true
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// LoadFile merges a TOML catalog file of the form
//
//	[ja]
//	"My.Script" = "表示名"
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading catalog %s: %w", path, err)
	}
	var tables map[string]map[string]string
	if err := toml.Unmarshal(data, &tables); err != nil {
		return fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	for lang, names := range tables {
		tag, err := language.Parse(lang)
		if err != nil {
			return fmt.Errorf("catalog %s: language %q: %w", path, lang, err)
		}
		for key, name := range names {
			if err := c.Set(tag, key, name); err != nil {
				return err
			}
		}
	}
	return nil
}
