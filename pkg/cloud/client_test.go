package cloud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject_Float(t *testing.T) {
	o := Object{"b": 3380.0, "name": "x"}

	v, err := o.Float("b")
	require.NoError(t, err)
	assert.Equal(t, 3380.0, v)

	_, err = o.Float("missing")
	assert.ErrorContains(t, err, "missing")

	_, err = o.Float("name")
	assert.ErrorContains(t, err, "expected number")
}

func TestObject_Int(t *testing.T) {
	o := Object{"n": 288.0, "frac": 1.5}

	v, err := o.Int("n")
	require.NoError(t, err)
	assert.Equal(t, 288, v)

	// A fractional value is rejected, not truncated.
	_, err = o.Int("frac")
	assert.ErrorContains(t, err, "expected integer")
}

func TestObject_String(t *testing.T) {
	o := Object{"server": "pool.ntp.org", "n": 1.0}

	v, err := o.String("server")
	require.NoError(t, err)
	assert.Equal(t, "pool.ntp.org", v)

	_, err = o.String("n")
	assert.ErrorContains(t, err, "expected string")

	_, err = o.String("missing")
	assert.Error(t, err)
}

func TestMock_GetUnseededPathFails(t *testing.T) {
	m := NewMock()
	_, err := m.Get("config")
	assert.Error(t, err)
}
