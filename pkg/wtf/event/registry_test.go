package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStandardDefinitionsComeFirst(t *testing.T) {
	ResetForTesting()

	defs := GetRegistry().Snapshot()
	require.GreaterOrEqual(t, len(defs), 6)

	expected := []struct {
		wireID uint32
		name   string
	}{
		{WireIDDefineEvent, "wtf.event#define"},
		{WireIDScopeLeave, "wtf.scope#leave"},
		{WireIDCreateZone, "wtf.zone#create"},
		{WireIDSetZone, "wtf.zone#set"},
		{WireIDFrameStart, "wtf.timing#frameStart"},
		{WireIDFrameEnd, "wtf.timing#frameEnd"},
	}
	for i, e := range expected {
		require.Equal(t, e.wireID, defs[i].WireID())
		require.Equal(t, e.name, defs[i].Name())
		require.NotZero(t, defs[i].Flags()&FlagBuiltin)
	}
}

func TestWireIDAllocation(t *testing.T) {
	ResetForTesting()

	seen := make(map[uint32]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := NextWireID()
				mu.Lock()
				require.False(t, seen[id], "wire id %d allocated twice", id)
				require.GreaterOrEqual(t, id, FirstUserWireID)
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Len(t, seen, 800)
}

func TestRegistrySnapshotIsACopy(t *testing.T) {
	ResetForTesting()

	id := NextWireID()
	Register(NewDefinition(id, ClassInstance, 0, "Snap#Shot", nil))

	before := GetRegistry().Snapshot()
	Register(NewDefinition(NextWireID(), ClassInstance, 0, "Snap#Later", nil))
	after := GetRegistry().Snapshot()

	require.Len(t, after, len(before)+1)
	require.Equal(t, "Snap#Shot", before[len(before)-1].Name())
}
