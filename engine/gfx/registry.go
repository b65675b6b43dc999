package gfx

import "fmt"

// PipelineHandle addresses a registered pipeline. Handles are dense,
// start at 0 and follow registration order.
type PipelineHandle int

// PipelineRegistry builds pipelines on demand and stores them by handle.
// Registered pipelines are never replaced.
type PipelineRegistry struct {
	builder   PipelineBuilder
	pipelines []Pipeline
	byName    map[string]PipelineHandle
}

func NewPipelineRegistry(b PipelineBuilder) *PipelineRegistry {
	return &PipelineRegistry{builder: b, byName: map[string]PipelineHandle{}}
}

// Add builds desc and returns its handle.
func (r *PipelineRegistry) Add(desc PipelineDescriptor) (PipelineHandle, error) {
	if err := desc.Validate(); err != nil {
		return -1, err
	}
	if desc.Name != "" {
		if _, dup := r.byName[desc.Name]; dup {
			return -1, fmt.Errorf("%w: duplicate name %q", ErrInvalidDescriptor, desc.Name)
		}
	}
	p, err := r.builder.BuildPipeline(desc)
	if err != nil {
		return -1, fmt.Errorf("build pipeline %q: %w", desc.Name, err)
	}
	h := PipelineHandle(len(r.pipelines))
	r.pipelines = append(r.pipelines, p)
	if desc.Name != "" {
		r.byName[desc.Name] = h
	}
	return h, nil
}

// Get returns the pipeline registered under h.
func (r *PipelineRegistry) Get(h PipelineHandle) (Pipeline, error) {
	if h < 0 || int(h) >= len(r.pipelines) {
		return nil, fmt.Errorf("%w: %d (have %d)", ErrInvalidHandle, h, len(r.pipelines))
	}
	return r.pipelines[h], nil
}

// Lookup finds a pipeline handle by descriptor name.
func (r *PipelineRegistry) Lookup(name string) (PipelineHandle, bool) {
	h, ok := r.byName[name]
	return h, ok
}

func (r *PipelineRegistry) Len() int { return len(r.pipelines) }

// Destroy releases every pipeline in reverse registration order. The
// device must be idle. All handles become invalid.
func (r *PipelineRegistry) Destroy() {
	for i := len(r.pipelines) - 1; i >= 0; i-- {
		r.pipelines[i].Destroy()
	}
	r.pipelines = nil
	r.byName = map[string]PipelineHandle{}
}
