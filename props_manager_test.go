package analytics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropsManager_SetValidation(t *testing.T) {
	m := NewPropsManager()

	assert.Error(t, m.Set("", "x"))
	assert.Error(t, m.Set(strings.Repeat("k", 256), "x"))
	assert.NoError(t, m.Set(strings.Repeat("k", 255), "x"))
}

func TestPropsManager_GetAllReturnsCopy(t *testing.T) {
	m := NewPropsManager()
	require.NotNil(t, m.GetAll())

	require.NoError(t, m.Set("appVersion", "1.0.0"))
	all := m.GetAll()
	all["appVersion"] = "changed"

	assert.Equal(t, "1.0.0", m.GetAll()["appVersion"])

	m.Delete("appVersion")
	assert.Empty(t, m.GetAll())
}

func TestPropsManager_Apply(t *testing.T) {
	m := NewPropsManager()
	require.NoError(t, m.Set("appVersion", "1.0.0"))
	require.NoError(t, m.Set("category", "global"))

	event := NewEvent().SetType("click").SetProp("category", "local")
	applied := m.Apply(event)

	assert.Equal(t, map[string]any{"appVersion": "1.0.0", "category": "local"}, applied.Props())
	assert.Equal(t, map[string]any{"category": "local"}, event.Props(), "caller event must not change")
}
