package generator

import (
	"context"
	"time"
)

// Observer receives notifications about generations for observability.
//
// The observer is called after every generation, whether successful or
// failed. Implementations should not block.
type Observer interface {
	OnGenerate(ctx context.Context, event Event)
}

// Event describes a finished generation.
type Event struct {
	Generator string
	Model     string
	Profile   string

	// StatusCode is the backend HTTP status when known.
	StatusCode int
	Usage      Usage

	// Err is set if the call failed (nil on success).
	Err error

	Duration  time.Duration
	StartedAt time.Time
}

// ObserverFunc is a convenience type for using a function as an Observer.
type ObserverFunc func(ctx context.Context, event Event)

// OnGenerate implements Observer.
func (f ObserverFunc) OnGenerate(ctx context.Context, event Event) {
	f(ctx, event)
}

// MultiObserver combines multiple observers into one.
type MultiObserver struct {
	observers []Observer
}

// NewMultiObserver creates an observer that dispatches to multiple observers.
func NewMultiObserver(observers ...Observer) *MultiObserver {
	return &MultiObserver{observers: observers}
}

// OnGenerate dispatches the event to all registered observers.
func (m *MultiObserver) OnGenerate(ctx context.Context, event Event) {
	for _, obs := range m.observers {
		obs.OnGenerate(ctx, event)
	}
}

// Add adds an observer to the multi-observer.
func (m *MultiObserver) Add(obs Observer) {
	m.observers = append(m.observers, obs)
}

// Observed wraps a generator so every call is reported to obs.
type Observed struct {
	Generator
	obs Observer
}

// Observe returns g wrapped with obs. A nil observer returns g unchanged.
func Observe(g Generator, obs Observer) Generator {
	if obs == nil {
		return g
	}
	return &Observed{Generator: g, obs: obs}
}

// Generate implements Generator.
func (o *Observed) Generate(ctx context.Context, req Request) (*Output, error) {
	start := time.Now()
	out, err := o.Generator.Generate(ctx, req)

	event := Event{
		Generator: o.Name(),
		Model:     o.Model(),
		Profile:   req.Profile.FullName,
		Err:       err,
		Duration:  time.Since(start),
		StartedAt: start,
	}
	if out != nil {
		event.StatusCode = out.StatusCode
		event.Usage = out.Usage
		if out.Model != "" {
			event.Model = out.Model
		}
	}
	o.obs.OnGenerate(ctx, event)

	return out, err
}
