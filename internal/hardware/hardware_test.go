package hardware

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hardware.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefault(t *testing.T) {
	p := Default()
	assert.Equal(t, 0, p.GPUCount)
	assert.Equal(t, int64(8192), p.CPUBatchSize)
	assert.Equal(t, int64(65536), p.GPUBatchSize)
	assert.Equal(t, int64(100_000), p.GPUOffloadThresholdRows)
	assert.False(t, p.FPGAAvailable)
	assert.False(t, p.NPUAvailable)
	assert.Equal(t, Scalar, p.SIMDLevel)
}

func TestDetect_KeepsDefaultsAndSetsSIMD(t *testing.T) {
	p := Detect()
	assert.Equal(t, DetectSIMD(), p.SIMDLevel)
	assert.Equal(t, 0, p.GPUCount)
	assert.Equal(t, int64(DefaultGPUOffloadThreshold), p.GPUOffloadThresholdRows)
}

func TestLoad_FullProfile(t *testing.T) {
	path := writeProfile(t, `
gpu_count: 2
gpu_total_vram_bytes: 171798691840
gpu_device_name: NVIDIA A100-SXM4-80GB
gpu_compute_capability: [8, 0]
fpga_available: true
fpga_device_name: Xilinx Alveo U250
npu_available: true
simd_level: AVX2
gpu_offload_threshold_rows: 250000
`)

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, p.GPUCount)
	assert.Equal(t, "NVIDIA A100-SXM4-80GB", p.GPUDeviceName)
	require.NotNil(t, p.GPUComputeCapability)
	assert.Equal(t, [2]int{8, 0}, *p.GPUComputeCapability)
	assert.True(t, p.FPGAAvailable)
	assert.True(t, p.NPUAvailable)
	assert.Equal(t, AVX2, p.SIMDLevel)
	assert.Equal(t, int64(250000), p.GPUOffloadThresholdRows)
	assert.Equal(t, int64(DefaultCPUBatchSize), p.CPUBatchSize, "omitted fields keep defaults")
	assert.InDelta(t, 160.0, p.VRAMGiB(), 0.001)
}

func TestLoad_UnknownSIMDLevel(t *testing.T) {
	path := writeProfile(t, "simd_level: MMX\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_NegativeGPUCount(t *testing.T) {
	path := writeProfile(t, "gpu_count: -1\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_ComputeCapabilityWithoutGPU(t *testing.T) {
	path := writeProfile(t, "gpu_compute_capability: [8, 0]\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate_FillsZeroSizing(t *testing.T) {
	p := Profile{GPUCount: 1}
	require.NoError(t, p.Validate())
	assert.Equal(t, int64(DefaultCPUBatchSize), p.CPUBatchSize)
	assert.Equal(t, int64(DefaultGPUBatchSize), p.GPUBatchSize)
	assert.Equal(t, int64(DefaultGPUOffloadThreshold), p.GPUOffloadThresholdRows)
}

func TestSimdLevel_Names(t *testing.T) {
	cases := []struct {
		level SimdLevel
		name  string
		label string
	}{
		{Scalar, "Scalar", "Scalar"},
		{SSE42, "Sse42", "SSE 4.2"},
		{AVX2, "Avx2", "AVX2"},
		{AVX512, "Avx512", "AVX-512"},
		{NEON, "Neon", "NEON"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.name, tc.level.String())
		assert.Equal(t, tc.label, tc.level.Label())

		byName, err := ParseSimdLevel(tc.name)
		require.NoError(t, err)
		assert.Equal(t, tc.level, byName)

		byLabel, err := ParseSimdLevel(tc.label)
		require.NoError(t, err)
		assert.Equal(t, tc.level, byLabel)
	}
}

func TestProfile_JSONWireNames(t *testing.T) {
	p := Default()
	p.GPUCount = 2
	p.SIMDLevel = AVX512
	cc := [2]int{8, 0}
	p.GPUComputeCapability = &cc

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Avx512", decoded["simd_level"])
	assert.Equal(t, []any{float64(8), float64(0)}, decoded["gpu_compute_capability"])
	assert.Equal(t, float64(100_000), decoded["gpu_offload_threshold_rows"])
	assert.NotContains(t, decoded, "gpu_device_name")
}
