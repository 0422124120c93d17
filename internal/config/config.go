// Package config defines the core's tunables (thread counts, batch
// sizes, Huffman encoding limits) loaded from YAML, with defaults
// applied explicitly in code rather than via struct-tag magic —
// matching the teacher's own plain, field-by-field Init style.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hipdac-lab/ripples/internal/rrerrors"
)

// Config holds the knobs the generator, worker pool, Huffman store
// and selector read at construction time, plus Threads, which no
// component reads.
type Config struct {
	// Threads is loaded and stored but not read by any component: the
	// selector and the generator's parallel helpers size their fan-out
	// from runtime.GOMAXPROCS(0) whatever this field holds.
	Threads int `yaml:"threads"`

	// CPUWorkers and GPUWorkers size the worker pool roster.
	CPUWorkers int `yaml:"cpu_workers"`
	GPUWorkers int `yaml:"gpu_workers"`
	// GPUSubstreamsPerWorker is K' from spec.md §4.2.
	GPUSubstreamsPerWorker int `yaml:"gpu_substreams_per_worker"`

	// LTMaxBatchSize and ICMaxBatchSize are the per-model
	// max_batch_size values of spec.md §4.3 step 1.
	LTMaxBatchSize int `yaml:"lt_max_batch_size"`
	ICMaxBatchSize int `yaml:"ic_max_batch_size"`

	// MaskWords bounds an LT walk's length (spec.md §4.2).
	MaskWords int `yaml:"mask_words"`
	// BlockSize must evenly divide MaskWords (§7.1 configuration
	// error example).
	BlockSize int `yaml:"block_size"`

	// ActivationProb is IC's per-edge independent activation chance.
	ActivationProb float64 `yaml:"activation_prob"`

	// MaxEncodedBits is the tunable named in spec.md §9 Open
	// Questions; codes longer than this spill to the overflow list.
	MaxEncodedBits int `yaml:"max_encoded_bits"`
	// HuffmanLossy discards overflow vertices instead of storing them
	// verbatim (spec.md §4.4 "A lossy mode optionally discards
	// overflow").
	HuffmanLossy bool `yaml:"huffman_lossy"`
	// EagerRelease frees a compressed RR set's buffers the moment it
	// is marked covered (SPEC_FULL §11, DecompAndFind3's release_flag).
	EagerRelease bool `yaml:"eager_release"`
}

// Default returns the configuration the CLI and tests use absent an
// explicit file: four CPU workers, no accelerators, the spec's named
// constants for batch sizes and the encoded-bit cutoff.
func Default() Config {
	return Config{
		Threads:                0, // not read; see the Threads field
		CPUWorkers:             4,
		GPUWorkers:             0,
		GPUSubstreamsPerWorker: 0,
		LTMaxBatchSize:         32768,
		ICMaxBatchSize:         32,
		MaskWords:              64,
		BlockSize:              8,
		ActivationProb:         0.1,
		MaxEncodedBits:         32,
		HuffmanLossy:           false,
		EagerRelease:           false,
	}
}

// Load reads and validates a YAML config file, starting from Default
// and overlaying whatever keys the file sets.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parse %s: %v", rrerrors.ErrConfiguration, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate fails fast with ErrConfiguration on a nonpositive
// mask_words, a mask_words not divisible by block_size, a negative or
// all-zero worker roster, a max_encoded_bits outside (0, 128], and an
// activation_prob outside [0, 1]. It does not check the accelerator
// sub-stream count.
func (c Config) Validate() error {
	if c.MaskWords <= 0 {
		return fmt.Errorf("%w: mask_words must be positive", rrerrors.ErrConfiguration)
	}
	if c.BlockSize <= 0 || c.MaskWords%c.BlockSize != 0 {
		return fmt.Errorf("%w: mask_words (%d) not divisible by block_size (%d)", rrerrors.ErrConfiguration, c.MaskWords, c.BlockSize)
	}
	if c.CPUWorkers < 0 || c.GPUWorkers < 0 {
		return fmt.Errorf("%w: worker counts must be nonnegative", rrerrors.ErrConfiguration)
	}
	if c.CPUWorkers+c.GPUWorkers == 0 {
		return fmt.Errorf("%w: at least one worker is required", rrerrors.ErrConfiguration)
	}
	if c.MaxEncodedBits <= 0 || c.MaxEncodedBits > 128 {
		return fmt.Errorf("%w: max_encoded_bits must be in (0, 128]", rrerrors.ErrConfiguration)
	}
	if c.ActivationProb < 0 || c.ActivationProb > 1 {
		return fmt.Errorf("%w: activation_prob must be in [0, 1]", rrerrors.ErrConfiguration)
	}
	return nil
}
