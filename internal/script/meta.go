package script

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/anm2edit/internal/anm2"
)

const (
	metaPrefix = "--[==[anm2:meta "
	metaSuffix = "]==]"
)

// Item types in the metadata JSON.
const (
	typeValue     = "value"
	typeAnimation = "animation"
)

// Checksum returns the xxhash64 of body as 16 lowercase hex digits.
func Checksum(body string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(body))
}

// jsonBuilder collects sjson writes and keeps the first error.
type jsonBuilder struct {
	js  string
	err error
}

func newJSONBuilder() *jsonBuilder {
	return &jsonBuilder{js: "{}"}
}

func (b *jsonBuilder) set(path string, v any) {
	if b.err == nil {
		b.js, b.err = sjson.Set(b.js, path, v)
	}
}

func (b *jsonBuilder) setRaw(path, raw string) {
	if b.err == nil {
		b.js, b.err = sjson.SetRaw(b.js, path, raw)
	}
}

func (b *jsonBuilder) setOpt(path string, v *string) {
	if v == nil {
		b.setRaw(path, "null")
		return
	}
	b.set(path, *v)
}

// EncodeMeta renders c and the body checksum as the metadata line, without
// a trailing newline.
func EncodeMeta(c *anm2.Content, checksum string) (string, error) {
	b := newJSONBuilder()
	b.set("version", anm2.CurrentVersion)
	b.set("checksum", checksum)
	b.set("label", c.Label)
	b.set("psd_path", c.PSDPath)
	b.set("exclusive_support_default", c.ExclusiveSupportDefault)
	b.setOpt("information", c.Information)
	b.setOpt("default_character_id", c.DefaultCharacterID)
	b.setRaw("selectors", "[]")

	for _, sel := range c.Selectors {
		sb := newJSONBuilder()
		sb.set("name", sel.Name)
		sb.setRaw("items", "[]")
		for _, item := range sel.Items {
			sb.setRaw("items.-1", encodeItem(item))
		}
		if sb.err != nil {
			return "", fmt.Errorf("encode meta: %w", sb.err)
		}
		b.setRaw("selectors.-1", sb.js)
	}
	if b.err != nil {
		return "", fmt.Errorf("encode meta: %w", b.err)
	}

	// The block comment ends at "]==]", which can only appear inside a
	// JSON string, so escaping the bracket keeps the value intact.
	js := strings.ReplaceAll(b.js, metaSuffix, `\u005d==]`)
	return metaPrefix + js + metaSuffix, nil
}

func encodeItem(item anm2.ItemContent) string {
	b := newJSONBuilder()
	if !item.Animation {
		b.set("type", typeValue)
		b.set("name", item.Name)
		b.set("value", item.Value)
		return b.js
	}
	b.set("type", typeAnimation)
	b.set("script", item.ScriptName)
	b.set("name", item.Name)
	b.setRaw("params", "[]")
	for _, p := range item.Params {
		pb := newJSONBuilder()
		pb.set("key", p.Key)
		pb.set("value", p.Value)
		b.setRaw("params.-1", pb.js)
	}
	return b.js
}

// IsMetaLine reports whether line looks like a metadata line.
func IsMetaLine(line string) bool {
	return strings.HasPrefix(line, metaPrefix) && strings.HasSuffix(line, metaSuffix)
}

// DecodeMeta parses a metadata line and returns the content and the
// checksum it recorded. Errors wrap anm2.ErrInvalidFormat.
func DecodeMeta(line string) (*anm2.Content, string, error) {
	line = strings.TrimSuffix(line, "\r")
	if !IsMetaLine(line) {
		return nil, "", fmt.Errorf("decode meta: %w: missing metadata block", anm2.ErrInvalidFormat)
	}
	js := line[len(metaPrefix) : len(line)-len(metaSuffix)]
	if !gjson.Valid(js) {
		return nil, "", fmt.Errorf("decode meta: %w: malformed json", anm2.ErrInvalidFormat)
	}

	root := gjson.Parse(js)
	if !root.IsObject() {
		return nil, "", fmt.Errorf("decode meta: %w: metadata is not an object", anm2.ErrInvalidFormat)
	}
	version := int(root.Get("version").Int())
	if version < 1 || version > anm2.CurrentVersion {
		return nil, "", fmt.Errorf("decode meta: %w: unsupported version %d", anm2.ErrInvalidFormat, version)
	}

	c := &anm2.Content{
		Version:                 version,
		Label:                   root.Get("label").String(),
		PSDPath:                 root.Get("psd_path").String(),
		ExclusiveSupportDefault: root.Get("exclusive_support_default").Bool(),
		Information:             optString(root.Get("information")),
		DefaultCharacterID:      optString(root.Get("default_character_id")),
	}

	var err error
	root.Get("selectors").ForEach(func(_, sel gjson.Result) bool {
		sc := anm2.SelectorContent{Name: sel.Get("name").String()}
		sel.Get("items").ForEach(func(_, item gjson.Result) bool {
			var ic anm2.ItemContent
			ic, err = decodeItem(item)
			if err != nil {
				return false
			}
			sc.Items = append(sc.Items, ic)
			return true
		})
		if err != nil {
			return false
		}
		c.Selectors = append(c.Selectors, sc)
		return true
	})
	if err != nil {
		return nil, "", fmt.Errorf("decode meta: %w", err)
	}
	return c, root.Get("checksum").String(), nil
}

func decodeItem(item gjson.Result) (anm2.ItemContent, error) {
	ic := anm2.ItemContent{Name: item.Get("name").String()}
	switch t := item.Get("type").String(); t {
	case typeValue:
		ic.Value = item.Get("value").String()
	case typeAnimation:
		ic.Animation = true
		ic.ScriptName = item.Get("script").String()
		item.Get("params").ForEach(func(_, p gjson.Result) bool {
			ic.Params = append(ic.Params, anm2.ParamContent{
				Key:   p.Get("key").String(),
				Value: p.Get("value").String(),
			})
			return true
		})
	default:
		return ic, fmt.Errorf("%w: unknown item type %q", anm2.ErrInvalidFormat, t)
	}
	return ic, nil
}

func optString(r gjson.Result) *string {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	s := r.String()
	return &s
}
