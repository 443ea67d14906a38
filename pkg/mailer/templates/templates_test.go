package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Welcome(t *testing.T) {
	data := WelcomeData{Username: "alice", Email: "alice@example.com"}.ToMap()

	subject, text, html, err := Render(Welcome, data)
	require.NoError(t, err)

	assert.Equal(t, "Welcome to Diagram Workspace, alice", subject)
	assert.Contains(t, text, `username "alice"`)
	assert.NotContains(t, text, "Registered at")
	assert.Contains(t, html, "<code>alice</code>")
}

func TestRender_EscapesHTML(t *testing.T) {
	data := WelcomeData{AppName: "Diagrams", Username: "<b>x</b>"}.ToMap()

	_, _, html, err := Render(Welcome, data)
	require.NoError(t, err)
	assert.NotContains(t, html, "<b>x</b>")
	assert.Contains(t, html, "&lt;b&gt;x&lt;/b&gt;")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, _, _, err := Render("missing", map[string]any{})
	assert.Error(t, err)
}
