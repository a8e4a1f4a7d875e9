package warehouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundleSpawnWritesEveryField(t *testing.T) {
	w := NewWorld()
	ent, err := w.Spawn(NewBundle4(Position{X: 1}, Velocity{X: 2}, Health{Current: 3}, 7))
	require.NoError(t, err)

	pos, err := Get[Position](w.Ref(ent))
	require.NoError(t, err)
	assert.Equal(t, 1.0, pos.X)

	vel, err := Get[Velocity](w.Ref(ent))
	require.NoError(t, err)
	assert.Equal(t, 2.0, vel.X)

	hp, err := Get[Health](w.Ref(ent))
	require.NoError(t, err)
	assert.Equal(t, 3, hp.Current)

	tag, err := Get[int](w.Ref(ent))
	require.NoError(t, err)
	assert.Equal(t, 7, *tag)
}

func TestBundleRejectsDuplicateComponent(t *testing.T) {
	w := NewWorld()
	_, err := w.Spawn(NewBundle2(Position{}, Position{}))
	require.Error(t, err)
	assert.IsType(t, DuplicateBundleType{}, err)
}

func TestBundleDuplicateCheckPrecedesAnyColumnWrite(t *testing.T) {
	w := NewWorld()
	before := w.Len()
	_, err := w.Spawn(NewBundle3(Position{}, Velocity{}, Position{}))
	require.Error(t, err)
	assert.Equal(t, before, w.Len(), "a rejected bundle must not have spawned a partial entity")
}
