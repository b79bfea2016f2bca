package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoColorFlag(t *testing.T) {
	flag := &noColorFlag{}

	assert.False(t, flag.IsSet())
	assert.Equal(t, "false", flag.String())
	assert.Equal(t, "bool", flag.Type())

	assert.NoError(t, flag.Set("true"))
	assert.True(t, flag.IsSet())
	assert.Equal(t, "true", flag.String())

	assert.NoError(t, flag.Set("false"))
	assert.False(t, flag.IsSet())

	assert.Error(t, flag.Set("project"))
	assert.False(t, flag.IsSet())
}
