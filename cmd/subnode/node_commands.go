package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"subnode/internal/hostapi"
	"subnode/internal/node"
	"subnode/internal/services"
)

func newNodeCommand(ctx *commandContext) *cobra.Command {
	nodeCmd := &cobra.Command{
		Use:   "node",
		Short: "Describe or invoke registered nodes",
	}
	nodeCmd.AddCommand(newNodeDescribeCommand(ctx))
	nodeCmd.AddCommand(newNodeInvokeCommand(ctx))
	return nodeCmd
}

func newNodeDescribeCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "describe [node-id]",
		Short: "Show node inputs and outputs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Describing never runs a job, so no pipeline is wired.
			reg := node.NewDefaultRegistry(nil)
			var infos []hostapi.NodeInfo
			if len(args) == 1 {
				entry, err := lookupNode(reg, args[0])
				if err != nil {
					return err
				}
				infos = append(infos, hostapi.Describe(entry))
			} else {
				for _, entry := range reg.List() {
					infos = append(infos, hostapi.Describe(entry))
				}
			}

			if asJSON {
				if len(args) == 1 {
					return writeJSON(cmd, infos[0])
				}
				return writeJSON(cmd, hostapi.NodeListResponse{Nodes: infos})
			}
			out := cmd.OutOrStdout()
			for i, info := range infos {
				if i > 0 {
					fmt.Fprintln(out)
				}
				printNodeInfo(out, info)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the description as JSON")
	return cmd
}

func printNodeInfo(out io.Writer, info hostapi.NodeInfo) {
	fmt.Fprintf(out, "%s (%s) -> %s(...)\n", info.DisplayName, info.ID, info.Function)
	rows := make([][]string, 0, len(info.Inputs))
	for _, in := range info.Inputs {
		rows = append(rows, []string{in.Name, string(in.Type), formatDefault(in.Default), in.Description})
	}
	fmt.Fprint(out, renderTable([]string{"Input", "Type", "Default", "Description"}, rows, nil))
	outputs := make([]string, 0, len(info.Outputs))
	for _, o := range info.Outputs {
		outputs = append(outputs, fmt.Sprintf("%s (%s)", o.Name, o.Type))
	}
	fmt.Fprintf(out, "Outputs: %s\n", strings.Join(outputs, ", "))
}

func formatDefault(value any) string {
	switch v := value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case nil:
		return "-"
	default:
		return fmt.Sprint(v)
	}
}

type invokeOutput struct {
	Outputs node.Outputs `json:"outputs"`
	Result  []any        `json:"result"`
}

func newNodeInvokeCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoke [node-id]",
		Short: "Run a node with a JSON object of inputs read from stdin",
		Long: "Reads a JSON object mapping input names to values from stdin, runs the node,\n" +
			"and prints the named outputs and the positional result as JSON.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kwargs, err := readInputs(cmd.InOrStdin())
			if err != nil {
				return err
			}

			p, _, err := ctx.newPipeline()
			if err != nil {
				return err
			}
			defer p.Close()

			id := node.SubtitleNodeID
			if len(args) == 1 {
				id = args[0]
			}
			entry, err := lookupNode(registry(p), id)
			if err != nil {
				return err
			}

			adapter := node.NewDictAdapter(entry.Node)
			result, err := adapter.Process(cmd.Context(), kwargs)
			if err != nil {
				_ = writeJSON(cmd, hostapi.ErrorResponse{Error: hostapi.NewErrorBody(err)})
				return err
			}
			outputs := make(node.Outputs, len(result))
			for i, spec := range entry.Node.DescribeOutputs() {
				if i < len(result) {
					outputs[spec.Name] = result[i]
				}
			}
			return writeJSON(cmd, invokeOutput{Outputs: outputs, Result: result})
		},
	}
	return cmd
}

func lookupNode(reg *node.Registry, id string) (node.Registration, error) {
	entry, ok := reg.Lookup(strings.TrimSpace(id))
	if !ok {
		var known []string
		for _, e := range reg.List() {
			known = append(known, e.ID)
		}
		return node.Registration{}, services.Wrap(services.ErrValidation, "", "lookup node",
			fmt.Sprintf("unknown node %q (known: %s)", id, strings.Join(known, ", ")), nil)
	}
	return entry, nil
}

// readInputs decodes a JSON object; numbers stay json.Number so the node
// coerces them by declared type.
func readInputs(r io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var kwargs map[string]any
	if err := dec.Decode(&kwargs); err != nil {
		return nil, services.Wrap(services.ErrValidation, "", "read inputs", "stdin must hold a JSON object of inputs", err)
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	return kwargs, nil
}
