package services

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"opsdash/models"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

var ErrInvalidRegistry = errors.New("invalid job registry")

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Registry is the immutable job catalog. The zero value is an empty catalog.
type Registry struct {
	jobs  []models.JobDefinition
	index map[string]int
}

// NewRegistry validates defs and builds a catalog that keeps defs' order.
func NewRegistry(defs []models.JobDefinition) (Registry, error) {
	if err := ValidateRegistry(defs); err != nil {
		return Registry{}, err
	}
	r := Registry{
		jobs:  make([]models.JobDefinition, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	copy(r.jobs, defs)
	for i, d := range r.jobs {
		r.index[d.Name] = i
	}
	return r, nil
}

func (r Registry) Len() int { return len(r.jobs) }

// Jobs returns a copy of the catalog in registration order.
func (r Registry) Jobs() []models.JobDefinition {
	out := make([]models.JobDefinition, len(r.jobs))
	copy(out, r.jobs)
	return out
}

func (r Registry) Names() []string {
	names := make([]string, len(r.jobs))
	for i, d := range r.jobs {
		names[i] = d.Name
	}
	return names
}

func (r Registry) Lookup(name string) (models.JobDefinition, bool) {
	i, ok := r.index[name]
	if !ok {
		return models.JobDefinition{}, false
	}
	return r.jobs[i], true
}

// NextRun returns the next time after t the job's schedule fires.
func (r Registry) NextRun(name string, t time.Time) (time.Time, bool) {
	d, ok := r.Lookup(name)
	if !ok {
		return time.Time{}, false
	}
	sched, err := scheduleParser.Parse(d.Schedule)
	if err != nil {
		return time.Time{}, false
	}
	return sched.Next(t), true
}

// ValidateRegistry reports every problem in defs at once.
func ValidateRegistry(defs []models.JobDefinition) error {
	var errs []error
	seen := make(map[string]bool, len(defs))
	for i, d := range defs {
		if d.Name == "" {
			errs = append(errs, fmt.Errorf("job #%d: empty name", i))
			continue
		}
		if seen[d.Name] {
			errs = append(errs, fmt.Errorf("job %s: duplicate name", d.Name))
		}
		seen[d.Name] = true

		if _, err := models.ParseJobCategory(string(d.Category)); err != nil {
			errs = append(errs, fmt.Errorf("job %s: %w", d.Name, err))
		}
		if d.SLASeconds <= 0 {
			errs = append(errs, fmt.Errorf("job %s: sla_seconds must be positive, got %d", d.Name, d.SLASeconds))
		}
		if _, err := scheduleParser.Parse(d.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("job %s: schedule %q: %w", d.Name, d.Schedule, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRegistry, errors.Join(errs...))
	}
	return nil
}

type registryFile struct {
	Jobs []models.JobDefinition `yaml:"jobs"`
}

// LoadRegistryFile reads a YAML catalog of the form `jobs: [...]`.
func LoadRegistryFile(path string) (Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Registry{}, fmt.Errorf("reading registry file: %w", err)
	}
	var f registryFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return Registry{}, fmt.Errorf("parsing registry file: %w", err)
	}
	return NewRegistry(f.Jobs)
}
