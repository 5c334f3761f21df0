package slab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-vdo/internal/codec"
	"github.com/deploymenttheory/go-vdo/internal/status"
)

func testDepotState(t *testing.T) DepotState {
	t.Helper()
	config, err := Configure(8192, 224)
	require.NoError(t, err)
	return DepotState{
		FirstBlock: 209,
		LastBlock:  123089,
		ZoneCount:  1,
		SlabCount:  15,
		SlabConfig: config,
	}
}

func TestDepotStateRoundTrip(t *testing.T) {
	state := testDepotState(t)

	buf := make([]byte, codec.EncodedHeaderSize+encodedDepotStateSize)
	w := codec.NewWriter(buf)
	state.Encode(w)
	require.NoError(t, w.Err())
	assert.Equal(t, len(buf), w.Offset())

	decoded, err := DecodeDepotState(codec.NewReader(buf))
	require.NoError(t, err)
	assert.Equal(t, state, decoded)
}

func TestDecodeDepotStateWrongComponent(t *testing.T) {
	state := testDepotState(t)
	buf := make([]byte, codec.EncodedHeaderSize+encodedDepotStateSize)
	w := codec.NewWriter(buf)
	state.Encode(w)
	require.NoError(t, w.Err())

	// Overwrite the component ID in the header.
	buf[0] = 9
	_, err := DecodeDepotState(codec.NewReader(buf))
	assert.ErrorIs(t, err, status.ErrIncorrectComponent)
}
