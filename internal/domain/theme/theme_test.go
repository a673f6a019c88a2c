package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	light, ok := For(Light)
	require.True(t, ok)
	assert.Equal(t, "#6750A4", light.Colors.Primary)
	assert.Equal(t, 57, light.Typography["display_large"].FontSize)

	dark, ok := For(Dark)
	require.True(t, ok)
	assert.NotEqual(t, light.Colors.Background, dark.Colors.Background)

	_, ok = For("sepia")
	assert.False(t, ok)
}

func TestAll(t *testing.T) {
	all := All()
	require.Len(t, all, 2)
	assert.Equal(t, Light, all[0].Scheme)
	assert.Equal(t, Dark, all[1].Scheme)

	all[0].Typography["body_large"] = TypeStyle{}
	again, _ := For(Light)
	assert.Equal(t, 16, again.Typography["body_large"].FontSize)
}
