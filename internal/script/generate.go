// Package script turns document content into an animation script file and
// back.
//
// A saved file is a metadata line carrying the full document as JSON,
// followed by a generated Lua body. The body is what the host application
// runs; the metadata is what the editor reads back. The checksum of the
// body, stored in the metadata, tells whether the body was edited by hand.
package script

import (
	"fmt"
	"strings"

	"github.com/yuin/gopher-lua/parse"

	"github.com/dshills/anm2edit/internal/anm2"
)

// Generator renders the Lua body of a script. The body depends only on
// the content, never on the UI language, so its checksum is stable across
// sessions. Unnamed animation items are listed by script identifier.
type Generator struct{}

// Generate renders the body for c. The result always ends in a newline.
func (g *Generator) Generate(c *anm2.Content) (string, error) {
	var b strings.Builder

	if c.Label != "" {
		fmt.Fprintf(&b, "--label:%s\n", commentText(c.Label))
	}
	if info := Information(c); info != "" {
		fmt.Fprintf(&b, "--information:%s\n", commentText(info))
	}
	for i, sel := range c.Selectors {
		fmt.Fprintf(&b, "--select@s%d:%s", i+1, selectText(sel.Name))
		for j, item := range sel.Items {
			fmt.Fprintf(&b, ",%s=%d", selectText(g.itemName(item)), j+1)
		}
		b.WriteByte('\n')
	}

	b.WriteString("local selectors = {\n")
	for _, sel := range c.Selectors {
		b.WriteString("  {\n")
		for _, item := range sel.Items {
			if !item.Animation {
				fmt.Fprintf(&b, "    {value = %s},\n", quote(item.Value))
				continue
			}
			fmt.Fprintf(&b, "    {script = %s, params = {", quote(item.ScriptName))
			for k, p := range item.Params {
				if k > 0 {
					b.WriteString(", ")
				}
				fmt.Fprintf(&b, "[%s] = %s", quote(p.Key), quote(p.Value))
			}
			b.WriteString("}},\n")
		}
		b.WriteString("  },\n")
	}
	b.WriteString("}\n")

	b.WriteString("local selected = {")
	for i := range c.Selectors {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "s%d", i+1)
	}
	b.WriteString("}\n")

	character := "nil"
	if c.DefaultCharacterID != nil {
		character = quote(*c.DefaultCharacterID)
	}
	b.WriteString("require(\"PSDToolKit\").apply(obj, {\n")
	fmt.Fprintf(&b, "  psd = %s,\n", quote(c.PSDPath))
	fmt.Fprintf(&b, "  exclusive = %t,\n", c.ExclusiveSupportDefault)
	fmt.Fprintf(&b, "  character = %s,\n", character)
	b.WriteString("  selectors = selectors,\n")
	b.WriteString("  selected = selected,\n")
	b.WriteString("})\n")

	body := b.String()
	if err := Validate(body); err != nil {
		return "", fmt.Errorf("generate: %w: %w", anm2.ErrUnexpected, err)
	}
	return body, nil
}

func (g *Generator) itemName(item anm2.ItemContent) string {
	if item.Name != "" || !item.Animation {
		return item.Name
	}
	return item.ScriptName
}

// Information returns the information line for c: the stored text, or
// "PSD: <file name>" when unset and a PSD path is known.
func Information(c *anm2.Content) string {
	if c.Information != nil {
		return *c.Information
	}
	if c.PSDPath == "" {
		return ""
	}
	return "PSD: " + baseName(c.PSDPath)
}

// Validate reports whether body parses as Lua.
func Validate(body string) error {
	if _, err := parse.Parse(strings.NewReader(body), "body"); err != nil {
		return fmt.Errorf("lua syntax: %w", err)
	}
	return nil
}

// baseName accepts both slash styles since PSD paths usually come from
// Windows.
func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}

// commentText keeps a value on its comment line.
func commentText(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}

// selectText also drops the option separators of a select line.
func selectText(s string) string {
	return strings.NewReplacer(",", "_", "=", "_").Replace(commentText(s))
}

// quote renders s as a Lua string literal. Other control bytes use
// three-digit decimal escapes so a following digit is never absorbed.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20 || c == 0x7f:
			fmt.Fprintf(&b, `\%03d`, c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
