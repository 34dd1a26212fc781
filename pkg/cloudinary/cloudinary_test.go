package cloudinary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOptimizedImageURL(t *testing.T) {
	assert.Equal(t,
		"https://res.cloudinary.com/demo/image/upload/q_auto,f_auto,w_400,c_fill/lotes/a1",
		BuildOptimizedImageURL("demo", "lotes/a1", ThumbWidth))
	assert.Contains(t, BuildOptimizedImageURL("demo", "x", 0), "w_1600")
}

func TestNewClientFromParams(t *testing.T) {
	_, err := NewClientFromParams("", "k", "s")
	assert.ErrorIs(t, err, ErrNotConfigured)

	c, err := NewClientFromParams("demo", "key", "secret")
	require.NoError(t, err)
	assert.NotNil(t, c)
}
