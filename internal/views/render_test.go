package views

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sandeepkv93/symbio/internal/model"
)

func TestPlainOutputHasNoEscapes(t *testing.T) {
	r := New(&bytes.Buffer{})
	assert.Equal(t, "tasks", r.Header("tasks"))
	assert.Equal(t, "boom", r.Status("boom", true))
	assert.Equal(t, "ok", r.Status("ok", false))
	assert.Equal(t, "**bold** text", r.Markdown("  **bold** text \n"))
	assert.Empty(t, r.Markdown("   "))
}

func TestThreadLine(t *testing.T) {
	r := New(&bytes.Buffer{})
	assert.Equal(t, "you: hi", r.ThreadLine("you", true, model.BodyText, "hi"))
	assert.Equal(t, "bob: [unreadable image]", r.ThreadLine("bob", false, model.BodyImage, "data:image/png;base64,!!!"))
}
