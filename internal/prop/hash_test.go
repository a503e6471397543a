package prop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotHash_Deterministic(t *testing.T) {
	obj := Object{"balance": Int(-50), "owner": String("alice")}

	h1, err := SnapshotHash(obj)
	require.NoError(t, err)
	h2, err := SnapshotHash(obj)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64) // hex-encoded SHA-256
}

func TestSnapshotHash_KeyOrderIndependent(t *testing.T) {
	a := Object{"x": Int(1), "y": Int(2)}
	b := Object{"y": Int(2), "x": Int(1)}

	ha, err := SnapshotHash(a)
	require.NoError(t, err)
	hb, err := SnapshotHash(b)
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
}

func TestSnapshotHash_ValueSensitive(t *testing.T) {
	h1, err := SnapshotHash(Object{"balance": Int(0)})
	require.NoError(t, err)
	h2, err := SnapshotHash(Object{"balance": Int(-50)})
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}
