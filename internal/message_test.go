package gpuwatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"status":"latest","data":{"h1":{}}}`))
	require.NoError(t, err)
	assert.Equal(t, StatusLatest, env.Status)
	assert.JSONEq(t, `{"h1":{}}`, string(env.Data))
}

func TestDecodeEnvelopeMalformed(t *testing.T) {
	for name, raw := range map[string]string{
		"not json":       `{"status":`,
		"missing status": `{"data":{}}`,
		"array":          `[1,2,3]`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeEnvelope([]byte(raw))
			assert.ErrorIs(t, err, ErrMalformedMessage)
		})
	}
}

func TestDecodeSnapshot(t *testing.T) {
	snap, err := DecodeSnapshot([]byte(`{"h1":{"0":{"time_stamp":[1,2],"utilization_gpu":[10,20],"memory_used":[1,2],"memory_total":[4,4],"gpu_name":"GPU0"}}}`))
	require.NoError(t, err)

	gpu := snap["h1"]["0"]
	assert.Equal(t, []float64{1, 2}, gpu.TimeStamp)
	assert.Equal(t, []float64{10, 20}, gpu.UtilizationGPU)
	assert.Equal(t, "GPU0", gpu.GPUName)
}

func TestDecodeUpdate(t *testing.T) {
	u, err := DecodeUpdate([]byte(`{"h1":{"0":{"time_stamp":3,"utilization_gpu":30,"memory_used":3,"memory_total":4}}}`))
	require.NoError(t, err)
	assert.Equal(t, GPUReading{TimeStamp: 3, UtilizationGPU: 30, MemoryUsed: 3, MemoryTotal: 4}, u["h1"]["0"])
}

func TestDecodePayloadErrors(t *testing.T) {
	_, err := DecodeSnapshot(nil)
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = DecodeSnapshot([]byte(`{"h1":{"0":{"time_stamp":"yesterday"}}}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = DecodeUpdate([]byte(`[]`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestGPUHistoryValidate(t *testing.T) {
	ok := GPUHistory{
		TimeStamp:      []float64{1, 2},
		UtilizationGPU: []float64{1, 2},
		MemoryUsed:     []float64{1, 2},
		MemoryTotal:    []float64{4, 4},
	}
	assert.NoError(t, ok.validate())

	short := ok
	short.MemoryUsed = []float64{1}
	assert.Error(t, short.validate())

	zero := ok
	zero.MemoryTotal = []float64{4, 0}
	assert.Error(t, zero.validate())
}
