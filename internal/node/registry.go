package node

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Identifier and display name under which the subtitle node registers.
const (
	SubtitleNodeID          = "SubtitleNode"
	SubtitleNodeDisplayName = "SubtitleNode"
)

// Registration binds a node to its identifiers.
type Registration struct {
	ID          string
	DisplayName string
	Node        Node
}

// Registry maps stable identifiers to nodes. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Registration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Registration)}
}

// NewDefaultRegistry registers the subtitle node backed by processor.
func NewDefaultRegistry(processor Processor) *Registry {
	r := NewRegistry()
	r.MustRegister(SubtitleNodeID, SubtitleNodeDisplayName, NewSubtitleNode(processor))
	return r
}

// MustRegister is like Register but panics on error. It is meant for
// registrations wired at startup.
func (r *Registry) MustRegister(id, displayName string, n Node) {
	if err := r.Register(id, displayName, n); err != nil {
		panic(err)
	}
}

// Register adds n under id. Identifiers are unique.
func (r *Registry) Register(id, displayName string, n Node) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("register node: identifier is empty")
	}
	if n == nil {
		return fmt.Errorf("register node %s: node is nil", id)
	}
	if strings.TrimSpace(displayName) == "" {
		displayName = id
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[id]; exists {
		return fmt.Errorf("register node %s: already registered", id)
	}
	r.entries[id] = Registration{ID: id, DisplayName: displayName, Node: n}
	return nil
}

// Lookup returns the registration for id.
func (r *Registry) Lookup(id string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[id]
	return reg, ok
}

// List returns all registrations ordered by identifier.
func (r *Registry) List() []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Registration, 0, len(r.entries))
	for _, reg := range r.entries {
		out = append(out, reg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ClassMappings returns identifier to node.
func (r *Registry) ClassMappings() map[string]Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Node, len(r.entries))
	for id, reg := range r.entries {
		out[id] = reg.Node
	}
	return out
}

// DisplayNameMappings returns identifier to display name.
func (r *Registry) DisplayNameMappings() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.entries))
	for id, reg := range r.entries {
		out[id] = reg.DisplayName
	}
	return out
}
