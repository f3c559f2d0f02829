package cron

import (
	"context"
	"slices"
)

// Job is one piece of maintenance work. Run should be safe to repeat.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry is the ordered job list for a maintenance cycle.
type Registry struct {
	jobs []Job
}

// NewRegistry skips nil jobs, so optional jobs can be passed directly.
func NewRegistry(jobs ...Job) *Registry {
	r := new(Registry)
	for _, job := range jobs {
		r.Register(job)
	}
	return r
}

func (r *Registry) Register(job Job) {
	if job != nil {
		r.jobs = append(r.jobs, job)
	}
}

func (r *Registry) Jobs() []Job {
	return slices.Clone(r.jobs)
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.jobs))
	for i, job := range r.jobs {
		names[i] = job.Name()
	}
	return names
}
