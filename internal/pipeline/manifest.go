// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

// Manifest is the on-disk YAML description of a batch. The operator writes
// (or a tool generates) a job list; LoadManifest materializes it into
// submitted descriptors.
type Manifest struct {
	Jobs []ManifestJob `yaml:"jobs"`
}

// ManifestJob is one manifest entry. Op and sources are required; output and
// options fall back to the operation's defaults.
type ManifestJob struct {
	Op      string           `yaml:"op"`
	Sources []string         `yaml:"sources"`
	Output  string           `yaml:"output,omitempty"`
	Options types.JobOptions `yaml:"options,omitempty"`
}

// LoadManifest reads a manifest file and materializes its entries: op tags
// are validated, IDs and submission times assigned, and empty outputs
// resolved to operation defaults. An invalid entry fails the whole load,
// naming the offending job.
func LoadManifest(path string) ([]types.JobDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if len(m.Jobs) == 0 {
		return nil, fmt.Errorf("manifest %s lists no jobs", path)
	}

	jobs := make([]types.JobDescriptor, 0, len(m.Jobs))
	for i, entry := range m.Jobs {
		op, err := types.ParseOpKind(entry.Op)
		if err != nil {
			return nil, fmt.Errorf("manifest job %d: %w", i+1, err)
		}
		if len(entry.Sources) == 0 {
			return nil, fmt.Errorf("manifest job %d (%s): no sources", i+1, op)
		}
		jobs = append(jobs, types.NewJob(op, entry.Sources, entry.Output, entry.Options))
	}
	return jobs, nil
}

// SaveManifest writes jobs back out as a manifest file, preserving resolved
// outputs and options so a run can be replayed or audited.
func SaveManifest(path string, jobs []types.JobDescriptor) error {
	m := Manifest{Jobs: make([]ManifestJob, 0, len(jobs))}
	for _, j := range jobs {
		m.Jobs = append(m.Jobs, ManifestJob{
			Op:      string(j.Op),
			Sources: j.Sources,
			Output:  j.Output,
			Options: j.Options,
		})
	}

	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
