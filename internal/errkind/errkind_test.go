package errkind

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	err := New(NotFound, "ghost", "skill directory not found: %s", "/tmp/ghost")
	assert.Equal(t, "ghost: skill directory not found: /tmp/ghost", err.Error())

	bare := &Error{Kind: IO, Err: errors.New("disk full")}
	assert.Equal(t, "disk full", bare.Error())
}

func TestKindOf_ThroughWrapping(t *testing.T) {
	inner := Wrap(IO, "/tmp/x", fs.ErrPermission)
	outer := fmt.Errorf("publish alpha: %w", inner)

	assert.Equal(t, IO, KindOf(outer))
	assert.True(t, Is(outer, IO))
	assert.False(t, Is(outer, NotFound))
	assert.True(t, errors.Is(outer, fs.ErrPermission))
}

func TestWrap_Nil(t *testing.T) {
	require.NoError(t, Wrap(Syntax, "x", nil))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.False(t, Is(nil, IO))
}
