package node

import "context"

// Ports is the imperative host surface: inputs are pulled by name and
// outputs pushed by name.
type Ports interface {
	GetInput(name string) (any, bool)
	SetOutput(name string, value any)
}

// PortAdapter drives a node from a Ports host.
type PortAdapter struct {
	node Node
}

// NewPortAdapter wraps n.
func NewPortAdapter(n Node) *PortAdapter {
	return &PortAdapter{node: n}
}

// Execute reads every declared input, runs the node and pushes each declared
// output. Nothing is pushed when the run fails.
func (a *PortAdapter) Execute(ctx context.Context, ports Ports) error {
	in := make(Inputs)
	for _, spec := range a.node.DescribeInputs() {
		if value, ok := ports.GetInput(spec.Name); ok {
			in[spec.Name] = value
		}
	}
	outputs, err := a.node.Run(ctx, in)
	if err != nil {
		return err
	}
	for _, spec := range a.node.DescribeOutputs() {
		if value, ok := outputs[spec.Name]; ok {
			ports.SetOutput(spec.Name, value)
		}
	}
	return nil
}

// MapPorts is a Ports backed by maps.
type MapPorts struct {
	In  map[string]any
	Out map[string]any
}

// GetInput implements Ports.
func (p *MapPorts) GetInput(name string) (any, bool) {
	value, ok := p.In[name]
	return value, ok
}

// SetOutput implements Ports.
func (p *MapPorts) SetOutput(name string, value any) {
	if p.Out == nil {
		p.Out = make(map[string]any)
	}
	p.Out[name] = value
}
