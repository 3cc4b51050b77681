package node

import "context"

// ValueType names a host value type.
type ValueType string

const (
	TypeString  ValueType = "STRING"
	TypeFloat   ValueType = "FLOAT"
	TypeBoolean ValueType = "BOOLEAN"
)

// InputSpec declares one named input.
type InputSpec struct {
	Name        string    `json:"name"`
	Type        ValueType `json:"type"`
	Default     any       `json:"default"`
	Description string    `json:"description,omitempty"`
}

// OutputSpec declares one positional output.
type OutputSpec struct {
	Name string    `json:"name"`
	Type ValueType `json:"type"`
}

// Inputs are the values supplied by the host, keyed by input name. Missing
// names take their declared default.
type Inputs map[string]any

// Outputs are the values produced by a run, keyed by output name.
type Outputs map[string]any

// Node is the host-facing contract.
type Node interface {
	DescribeInputs() []InputSpec
	DescribeOutputs() []OutputSpec
	Run(ctx context.Context, in Inputs) (Outputs, error)
}
