package game

import (
	"fmt"

	"github.com/zeusync/futbolin/internal/core/scene"
	"github.com/zeusync/futbolin/internal/core/systems/physics"
)

// TrackedEntity pairs a scene node with the body whose transform is copied
// onto it after every physics step.
type TrackedEntity struct {
	Node *scene.Node
	Body physics.Body
}

// Registry holds the entities read back after each step, in registration
// order. Static geometry is added to the physics world but never tracked.
type Registry struct {
	entities []*TrackedEntity
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Track registers node with its body. Every tracked entity keeps exactly one
// live body for its lifetime.
func (r *Registry) Track(node *scene.Node, body physics.Body) (*TrackedEntity, error) {
	if node == nil {
		return nil, fmt.Errorf("track: nil node")
	}
	if body == nil {
		return nil, fmt.Errorf("track %q: %w", node.Name, ErrNoBody)
	}
	for _, e := range r.entities {
		if e.Node == node {
			return nil, fmt.Errorf("track %q: already tracked", node.Name)
		}
	}
	node.Body = body
	e := &TrackedEntity{Node: node, Body: body}
	r.entities = append(r.entities, e)
	return e, nil
}

func (r *Registry) Len() int { return len(r.entities) }

func (r *Registry) Entities() []*TrackedEntity {
	out := make([]*TrackedEntity, len(r.entities))
	copy(out, r.entities)
	return out
}

// Readback copies each body's world transform onto its node, then calls
// after with the entity so per-entity rules run against fresh positions.
func (r *Registry) Readback(after func(*TrackedEntity)) {
	for _, e := range r.entities {
		if e.Body == nil {
			continue
		}
		e.Node.SetWorldTransform(e.Body.Transform())
		if after != nil {
			after(e)
		}
	}
}
