package node

import (
	"context"
	"fmt"
)

// ProcessFunction is the entry point name advertised to dictionary hosts.
const ProcessFunction = "process"

// DictAdapter serves hosts that describe inputs as
// {"required": {name: [TYPE, {"default": value}]}} and expect a positional
// result tuple.
type DictAdapter struct {
	node Node
}

// NewDictAdapter wraps n.
func NewDictAdapter(n Node) *DictAdapter {
	return &DictAdapter{node: n}
}

// InputTypes returns the host input declaration.
func (a *DictAdapter) InputTypes() map[string]any {
	required := make(map[string]any)
	for _, spec := range a.node.DescribeInputs() {
		required[spec.Name] = []any{string(spec.Type), map[string]any{"default": spec.Default}}
	}
	return map[string]any{"required": required}
}

// ReturnTypes lists the output types in position order.
func (a *DictAdapter) ReturnTypes() []string {
	outputs := a.node.DescribeOutputs()
	types := make([]string, 0, len(outputs))
	for _, spec := range outputs {
		types = append(types, string(spec.Type))
	}
	return types
}

// Function returns the entry point name.
func (a *DictAdapter) Function() string {
	return ProcessFunction
}

// Process runs the node with keyword arguments and returns the outputs as a
// tuple ordered like ReturnTypes.
func (a *DictAdapter) Process(ctx context.Context, kwargs map[string]any) ([]any, error) {
	outputs, err := a.node.Run(ctx, Inputs(kwargs))
	if err != nil {
		return nil, err
	}
	specs := a.node.DescribeOutputs()
	tuple := make([]any, 0, len(specs))
	for _, spec := range specs {
		value, ok := outputs[spec.Name]
		if !ok {
			return nil, fmt.Errorf("node produced no %q output", spec.Name)
		}
		tuple = append(tuple, value)
	}
	return tuple, nil
}
