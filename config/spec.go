package config

import (
	"fmt"
	"os"

	"github.com/sarchlab/akita/v4/mem/mem"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/npusim/npu"
	"github.com/sarchlab/npusim/pe"
)

// Spec lists the structural parameters of a device as they appear in a
// configuration file.
type Spec struct {
	ArraySize         int    `yaml:"array_size"`
	Datapath          string `yaml:"datapath"`
	FIFODepth         int    `yaml:"fifo_depth"`
	BurstSize         int    `yaml:"burst_size"`
	OutputRows        int    `yaml:"output_rows"`
	ReadLatency       int    `yaml:"csr_read_latency"`
	MemoryReadLatency int    `yaml:"mem_read_latency"`
	MemoryBytes       uint64 `yaml:"mem_bytes"`
	IngressDepth      int    `yaml:"ingress_depth"`
	EgressDepth       int    `yaml:"egress_depth"`
}

// DefaultSpec returns the reference configuration.
func DefaultSpec() Spec {
	cfg := npu.DefaultConfig()

	return Spec{
		ArraySize:         cfg.ArraySize,
		Datapath:          cfg.Datapath.String(),
		FIFODepth:         cfg.FIFODepth,
		BurstSize:         cfg.BurstSize,
		OutputRows:        cfg.OutputRows,
		ReadLatency:       cfg.ReadLatency,
		MemoryReadLatency: 4,
		MemoryBytes:       1 * mem.MB,
		IngressDepth:      cfg.IngressDepth,
		EgressDepth:       cfg.EgressDepth,
	}
}

// LoadSpec reads a YAML file. Fields missing from the file keep their
// reference values.
func LoadSpec(path string) (Spec, error) {
	spec := DefaultSpec()

	data, err := os.ReadFile(path)
	if err != nil {
		return spec, err
	}

	if err := yaml.Unmarshal(data, &spec); err != nil {
		return spec, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := spec.Validate(); err != nil {
		return spec, fmt.Errorf("%s: %w", path, err)
	}

	return spec, nil
}

// Validate checks the parameters.
func (s Spec) Validate() error {
	kind, err := pe.ParseKind(s.Datapath)
	if err != nil {
		return err
	}

	if s.MemoryReadLatency < 1 {
		return fmt.Errorf("memory read latency must be at least 1, got %d",
			s.MemoryReadLatency)
	}

	if s.MemoryBytes < 4 {
		return fmt.Errorf("memory must hold at least one word")
	}

	cfg := s.deviceConfig(kind)

	return cfg.Validate()
}

// DeviceConfig converts the spec into device parameters. The spec must be
// valid.
func (s Spec) DeviceConfig() npu.Config {
	kind, err := pe.ParseKind(s.Datapath)
	if err != nil {
		panic(err)
	}

	return s.deviceConfig(kind)
}

func (s Spec) deviceConfig(kind pe.Kind) npu.Config {
	return npu.Config{
		ArraySize:    s.ArraySize,
		Datapath:     kind,
		FIFODepth:    s.FIFODepth,
		BurstSize:    s.BurstSize,
		OutputRows:   s.OutputRows,
		ReadLatency:  s.ReadLatency,
		IngressDepth: s.IngressDepth,
		EgressDepth:  s.EgressDepth,
	}
}
