// Package hardware describes the acceleration resources available to a
// deployment. Profiles are plain values: load or detect one at startup and
// pass it by value to whoever needs it.
package hardware

import (
	"fmt"
	"os"

	"golang.org/x/sys/cpu"
	"gopkg.in/yaml.v3"
)

const (
	DefaultCPUBatchSize        = 8192
	DefaultGPUBatchSize        = 65536
	DefaultGPUOffloadThreshold = 100_000
	bytesPerGiB                = 1 << 30
)

// SimdLevel is the widest vector instruction set the CPU backend can use.
type SimdLevel int

const (
	Scalar SimdLevel = iota
	SSE42
	AVX2
	AVX512
	NEON
)

var simdNames = [...]string{"Scalar", "Sse42", "Avx2", "Avx512", "Neon"}

func (s SimdLevel) Label() string {
	switch s {
	case SSE42:
		return "SSE 4.2"
	case AVX2:
		return "AVX2"
	case AVX512:
		return "AVX-512"
	case NEON:
		return "NEON"
	default:
		return "Scalar"
	}
}

func (s SimdLevel) String() string {
	if s < 0 || int(s) >= len(simdNames) {
		return simdNames[Scalar]
	}
	return simdNames[s]
}

func (s SimdLevel) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SimdLevel) UnmarshalText(text []byte) error {
	v, err := ParseSimdLevel(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSimdLevel accepts both the wire names ("Avx2") and labels ("AVX2").
func ParseSimdLevel(s string) (SimdLevel, error) {
	for i, name := range simdNames {
		lvl := SimdLevel(i)
		if s == name || s == lvl.Label() {
			return lvl, nil
		}
	}
	return Scalar, fmt.Errorf("unknown SIMD level %q", s)
}

// Profile is an immutable snapshot of acceleration resources.
type Profile struct {
	GPUCount                int       `json:"gpu_count" yaml:"gpu_count"`
	GPUTotalVRAMBytes       uint64    `json:"gpu_total_vram_bytes" yaml:"gpu_total_vram_bytes"`
	GPUDeviceName           string    `json:"gpu_device_name,omitempty" yaml:"gpu_device_name,omitempty"`
	GPUComputeCapability    *[2]int   `json:"gpu_compute_capability,omitempty" yaml:"gpu_compute_capability,omitempty"`
	FPGAAvailable           bool      `json:"fpga_available" yaml:"fpga_available"`
	FPGADeviceName          string    `json:"fpga_device_name,omitempty" yaml:"fpga_device_name,omitempty"`
	NPUAvailable            bool      `json:"npu_available" yaml:"npu_available"`
	SIMDLevel               SimdLevel `json:"simd_level" yaml:"simd_level"`
	CPUBatchSize            int64     `json:"cpu_batch_size" yaml:"cpu_batch_size"`
	GPUBatchSize            int64     `json:"gpu_batch_size" yaml:"gpu_batch_size"`
	GPUOffloadThresholdRows int64     `json:"gpu_offload_threshold_rows" yaml:"gpu_offload_threshold_rows"`
}

// Default is a CPU-only profile with the stock batch sizes.
func Default() Profile {
	return Profile{
		SIMDLevel:               Scalar,
		CPUBatchSize:            DefaultCPUBatchSize,
		GPUBatchSize:            DefaultGPUBatchSize,
		GPUOffloadThresholdRows: DefaultGPUOffloadThreshold,
	}
}

// Detect returns Default with the SIMD level of the running CPU filled in.
// Accelerator inventory is not probed; it comes from a profile file.
func Detect() Profile {
	p := Default()
	p.SIMDLevel = DetectSIMD()
	return p
}

func DetectSIMD() SimdLevel {
	switch {
	case cpu.X86.HasAVX512F:
		return AVX512
	case cpu.X86.HasAVX2:
		return AVX2
	case cpu.X86.HasSSE42:
		return SSE42
	case cpu.ARM64.HasASIMD:
		return NEON
	default:
		return Scalar
	}
}

func (p Profile) HasGPU() bool { return p.GPUCount > 0 }

// Validate fills zero-valued sizing fields with defaults and rejects
// negative or inconsistent values.
func (p *Profile) Validate() error {
	if p.GPUCount < 0 {
		return fmt.Errorf("gpu_count must not be negative, got %d", p.GPUCount)
	}
	if p.CPUBatchSize < 0 || p.GPUBatchSize < 0 || p.GPUOffloadThresholdRows < 0 {
		return fmt.Errorf("batch sizes and offload threshold must not be negative")
	}
	if p.CPUBatchSize == 0 {
		p.CPUBatchSize = DefaultCPUBatchSize
	}
	if p.GPUBatchSize == 0 {
		p.GPUBatchSize = DefaultGPUBatchSize
	}
	if p.GPUOffloadThresholdRows == 0 {
		p.GPUOffloadThresholdRows = DefaultGPUOffloadThreshold
	}
	if p.GPUComputeCapability != nil && !p.HasGPU() {
		return fmt.Errorf("gpu_compute_capability set without any GPU")
	}
	return nil
}

// VRAMGiB is the total GPU memory in GiB.
func (p Profile) VRAMGiB() float64 {
	return float64(p.GPUTotalVRAMBytes) / bytesPerGiB
}

// Load reads a YAML profile. Fields left out keep their Default values.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("reading hardware profile: %w", err)
	}

	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parsing hardware profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("invalid hardware profile %s: %w", path, err)
	}
	return p, nil
}
