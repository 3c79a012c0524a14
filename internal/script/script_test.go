package script

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/anm2edit/internal/anm2"
)

func ptr(s string) *string { return &s }

func sampleContent() *anm2.Content {
	return &anm2.Content{
		Version:                 anm2.CurrentVersion,
		Label:                   "Face",
		PSDPath:                 `C:\work\chara.psd`,
		ExclusiveSupportDefault: true,
		DefaultCharacterID:      ptr("zundamon"),
		Selectors: []anm2.SelectorContent{
			{
				Name: "Eyes",
				Items: []anm2.ItemContent{
					{Name: "open", Value: "v1.*eyes/open"},
					{Name: "closed", Value: "v1.*eyes/closed"},
				},
			},
			{
				Name: "Motion, extra",
				Items: []anm2.ItemContent{
					{Animation: true, ScriptName: "Blink", Params: []anm2.ParamContent{
						{Key: "interval", Value: "5"},
						{Key: "eye~ptkl", Value: "quote\" back\\ nl\n ctl\x01 9"},
					}},
				},
			},
			{Name: "Empty"},
		},
	}
}

func TestGenerate_Header(t *testing.T) {
	body, err := (&Generator{}).Generate(sampleContent())
	require.NoError(t, err)

	lines := strings.Split(body, "\n")
	assert.Equal(t, "--label:Face", lines[0])
	assert.Equal(t, "--information:PSD: chara.psd", lines[1])
	assert.Equal(t, "--select@s1:Eyes,open=1,closed=2", lines[2])
	assert.Equal(t, "--select@s2:Motion_ extra,Blink=1", lines[3])
	assert.Equal(t, "--select@s3:Empty", lines[4])
	assert.True(t, strings.HasSuffix(body, "\n"))
	assert.Contains(t, body, `character = "zundamon"`)
	assert.Contains(t, body, `local selected = {s1, s2, s3}`)
	assert.Contains(t, body, `["eye~ptkl"] = "quote\" back\\ nl\n ctl\001 9"`)
}

func TestGenerate_Information(t *testing.T) {
	tests := []struct {
		name string
		info *string
		psd  string
		want string
	}{
		{"explicit", ptr("hello"), "a.psd", "hello"},
		{"explicit empty", ptr(""), "a.psd", ""},
		{"from psd", nil, "/home/u/a.psd", "PSD: a.psd"},
		{"windows path", nil, `D:\x\y\b.psd`, "PSD: b.psd"},
		{"nothing", nil, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Information(&anm2.Content{Information: tt.info, PSDPath: tt.psd}))
		})
	}
}

func TestGenerate_EmptyDocumentIsLua(t *testing.T) {
	body, err := (&Generator{}).Generate(&anm2.Content{})
	require.NoError(t, err)
	assert.NotContains(t, body, "--label:")
	assert.NotContains(t, body, "--information:")
	assert.NoError(t, Validate(body))
}

func TestGenerate_MultilineLabelStaysOnOneLine(t *testing.T) {
	body, err := (&Generator{}).Generate(&anm2.Content{Label: "a\nb"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(body, "--label:a b\n"))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("local x = 1\n"))
	assert.Error(t, Validate("local = \n"))
}

func TestChecksum(t *testing.T) {
	sum := Checksum("body")
	assert.Len(t, sum, 16)
	assert.Equal(t, strings.ToLower(sum), sum)
	assert.Equal(t, sum, Checksum("body"))
	assert.NotEqual(t, sum, Checksum("body "))
}

func TestMeta_RoundTrip(t *testing.T) {
	c := sampleContent()
	c.Label = "tricky ]==] label"

	line, err := EncodeMeta(c, "0123456789abcdef")
	require.NoError(t, err)
	assert.True(t, IsMetaLine(line))
	assert.NotContains(t, line, "\n")
	assert.Equal(t, 1, strings.Count(line, metaSuffix))

	got, sum, err := DecodeMeta(line)
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef", sum)
	assert.Equal(t, c.Label, got.Label)
	assert.Equal(t, c.PSDPath, got.PSDPath)
	assert.True(t, got.ExclusiveSupportDefault)
	assert.Nil(t, got.Information)
	require.NotNil(t, got.DefaultCharacterID)
	assert.Equal(t, "zundamon", *got.DefaultCharacterID)
	require.Len(t, got.Selectors, 3)
	assert.Equal(t, c.Selectors[0].Items, got.Selectors[0].Items)
	assert.Equal(t, c.Selectors[1].Items, got.Selectors[1].Items)
	assert.Empty(t, got.Selectors[2].Items)
}

func TestDecodeMeta_Invalid(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"plain lua", "--label:foo"},
		{"empty", ""},
		{"bad json", metaPrefix + "{" + metaSuffix},
		{"array", metaPrefix + "[]" + metaSuffix},
		{"future version", metaPrefix + `{"version":99}` + metaSuffix},
		{"missing version", metaPrefix + `{}` + metaSuffix},
		{"unknown item", metaPrefix + `{"version":1,"selectors":[{"name":"a","items":[{"type":"x"}]}]}` + metaSuffix},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeMeta(tt.line)
			assert.ErrorIs(t, err, anm2.ErrInvalidFormat)
		})
	}
}

func TestStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "face.anm2")
	s := NewStore()

	sum, err := s.Save(path, sampleContent())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line, body, ok := strings.Cut(string(data), "\n")
	require.True(t, ok)
	assert.True(t, IsMetaLine(line))
	assert.Equal(t, sum, Checksum(body))
	assert.NoError(t, Validate(body))

	c, loadedSum, err := s.Load(path)
	require.NoError(t, err)
	assert.Equal(t, sum, loadedSum)
	assert.Equal(t, "Face", c.Label)
	require.Len(t, c.Selectors, 3)

	// No temp files are left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_LoadReportsOnDiskChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "face.anm2")
	s := NewStore()
	sum, err := s.Save(path, sampleContent())
	require.NoError(t, err)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteString("-- hand edit\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, loadedSum, err := s.Load(path)
	require.NoError(t, err)
	assert.NotEqual(t, sum, loadedSum)
}

func TestStore_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	s := NewStore()

	_, _, err := s.Load(filepath.Join(dir, "missing.anm2"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	plain := filepath.Join(dir, "plain.anm2")
	require.NoError(t, os.WriteFile(plain, []byte("--label:x\nlocal a = 1\n"), 0o644))
	_, _, err = s.Load(plain)
	assert.ErrorIs(t, err, anm2.ErrInvalidFormat)
}

func TestStore_Document(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.anm2")
	s := NewStore()

	doc := anm2.New(anm2.WithPersistence(s))
	require.NoError(t, doc.Apply(sampleContent()))
	assert.False(t, doc.VerifyChecksum())
	require.NoError(t, doc.Save(path))
	assert.False(t, doc.IsModified())
	assert.True(t, doc.VerifyChecksum())

	loaded := anm2.New(anm2.WithPersistence(s))
	require.NoError(t, loaded.Load(path))
	assert.True(t, loaded.VerifyChecksum())
	assert.Equal(t, stripIDs(doc.Content()), stripIDs(loaded.Content()))

	require.NoError(t, loaded.SetLabel("changed"))
	assert.False(t, loaded.VerifyChecksum())
}

func stripIDs(c *anm2.Content) *anm2.Content {
	for i := range c.Selectors {
		c.Selectors[i].ID = 0
		for j := range c.Selectors[i].Items {
			it := &c.Selectors[i].Items[j]
			it.ID = 0
			for k := range it.Params {
				it.Params[k].ID = 0
			}
		}
	}
	return c
}
