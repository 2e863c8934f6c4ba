package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Len(t, c.Items, 3)
	assert.Equal(t, "warning sign", c.Items[0].Name)
	require.Len(t, c.Styled, 1)
	assert.Len(t, c.Styled[0].Styles, 3)
	assert.Contains(t, c.Template, Placeholder)
}

func TestPromptReplacesEveryPlaceholder(t *testing.T) {
	c := &Catalog{Template: "icon of a {itemName}; the {itemName} is red"}

	got := c.Prompt(Item{Name: "stop sign"})

	assert.Equal(t, "icon of a stop sign; the stop sign is red", got)
}

func TestMultiPrompt(t *testing.T) {
	c := &Catalog{Template: "icons of {itemName}"}
	items := []Item{
		{Name: "a", Description: "first"},
		{Name: "b", Description: "second"},
	}

	got := c.MultiPrompt(items)

	assert.Equal(t, "icons of a, b\n\nPlease generate separate images for each of the following items:\n- a: first\n- b: second", got)
}

func TestBatchModes(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	c.Extra = Batch{{Name: "mail", Prompt: "from mail"}}

	tmpl, err := c.Batch(ModeTemplate)
	require.NoError(t, err)
	require.Len(t, tmpl, 3)
	for i, item := range tmpl {
		assert.Equal(t, c.Items[i].Name, item.Name)
		assert.NotContains(t, item.Prompt, Placeholder)
		assert.Contains(t, item.Prompt, item.Name)
	}

	distinct, err := c.Batch(ModeDistinct)
	require.NoError(t, err)
	require.Len(t, distinct, 4)
	assert.Equal(t, "Warning Sign / Clay Style", distinct[0].Name)
	assert.Equal(t, "Warning Sign / Minimalist", distinct[2].Name)
	assert.True(t, strings.HasPrefix(distinct[1].Prompt, "Generate a 1024"))
	assert.Equal(t, "mail", distinct[3].Name)

	combined, err := c.Batch(ModeCombined)
	require.NoError(t, err)
	require.Len(t, combined, 1)
	assert.Equal(t, "warning sign, stop sign, speed limit sign", combined[0].Name)
	assert.Contains(t, combined[0].Prompt, "- stop sign: A red octagonal stop sign")

	_, err = c.Batch(Mode("bogus"))
	assert.Error(t, err)
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes {
		got, err := ParseMode(m.Describe())
		require.NoError(t, err)
		assert.Equal(t, m, got)

		got, err = ParseMode(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	_, err := ParseMode("3")
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.yaml")
	data := "template: \"a {itemName}\"\nitems:\n  - name: compass\n    description: points north\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	batch, err := c.Batch(ModeTemplate)
	require.NoError(t, err)
	assert.Equal(t, Batch{{Name: "compass", Description: "points north", Prompt: "a compass"}}, batch)
}

func TestLoadRejectsBadContent(t *testing.T) {
	_, err := Parse([]byte("template: no placeholder\nitems:\n  - name: map\n"))
	assert.ErrorContains(t, err, "placeholder")

	_, err = Parse([]byte("styled:\n  - name: x\n    styles:\n      - name: empty\n"))
	assert.ErrorContains(t, err, "prompt is empty")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPromptFromMessage(t *testing.T) {
	item, ok := promptFromMessage("[sora]", "[sora] Compass", "draw a compass\r\nin clay\r\n")
	require.True(t, ok)
	assert.Equal(t, WorkItem{Name: "Compass", Description: "from mailbox", Prompt: "draw a compass\nin clay"}, item)

	item, ok = promptFromMessage("[sora]", "[sora]", "body")
	require.True(t, ok)
	assert.Equal(t, "[sora]", item.Name)

	_, ok = promptFromMessage("[sora]", "[sora] Empty", "  \r\n ")
	assert.False(t, ok)
}

func TestMailboxAddr(t *testing.T) {
	assert.Equal(t, "mail.example.com:993", Mailbox{Server: "mail.example.com", TLS: true}.addr())
	assert.Equal(t, "mail.example.com:143", Mailbox{Server: "mail.example.com"}.addr())
	assert.Equal(t, "mail.example.com:1143", Mailbox{Server: "mail.example.com:1143", TLS: true}.addr())
	assert.False(t, Mailbox{Server: "x"}.Enabled())
	assert.True(t, Mailbox{Server: "x", Username: "u", Subject: "s"}.Enabled())
}
