package node

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"subnode/internal/job"
	"subnode/internal/pipeline"
	"subnode/internal/services"
)

// Input and output names of the subtitle node.
const (
	InputVideoFile          = "video_file"
	InputFontName           = "font_name"
	InputFontSize           = "font_size"
	InputFontColor          = "font_color"
	InputSubtitlePosition   = "subtitle_position"
	InputSubtitleStyle      = "subtitle_style"
	InputTranslateToEnglish = "translate_to_english"

	OutputVideo = "output_video"
)

// Processor runs one job. *pipeline.Pipeline satisfies it.
type Processor interface {
	Process(ctx context.Context, videoPath string, style job.StyleParameters) (pipeline.Result, error)
}

// SubtitleNode burns generated captions into a video.
type SubtitleNode struct {
	processor Processor
}

// NewSubtitleNode wraps processor as a node.
func NewSubtitleNode(processor Processor) *SubtitleNode {
	return &SubtitleNode{processor: processor}
}

// DescribeInputs lists the inputs in declaration order.
func (n *SubtitleNode) DescribeInputs() []InputSpec {
	return []InputSpec{
		{Name: InputVideoFile, Type: TypeString, Default: "", Description: "path to the source video"},
		{Name: InputFontName, Type: TypeString, Default: job.DefaultFontName},
		{Name: InputFontSize, Type: TypeFloat, Default: job.DefaultFontSize},
		{Name: InputFontColor, Type: TypeString, Default: job.DefaultFontColor, Description: "RRGGBB without '#'"},
		{Name: InputSubtitlePosition, Type: TypeString, Default: job.DefaultPosition, Description: "bottom, middle or top"},
		{Name: InputSubtitleStyle, Type: TypeString, Default: job.DefaultStyle, Description: "normal, bold, italic or boxed"},
		{Name: InputTranslateToEnglish, Type: TypeBoolean, Default: false},
	}
}

// DescribeOutputs lists the single output: the captioned video path.
func (n *SubtitleNode) DescribeOutputs() []OutputSpec {
	return []OutputSpec{{Name: OutputVideo, Type: TypeString}}
}

// Run decodes the inputs and runs the pipeline. Pipeline failures are
// returned unchanged.
func (n *SubtitleNode) Run(ctx context.Context, in Inputs) (Outputs, error) {
	values, err := resolveInputs(n.DescribeInputs(), in)
	if err != nil {
		return nil, err
	}
	style := job.StyleParameters{
		FontName:           values[InputFontName].(string),
		FontSize:           values[InputFontSize].(float64),
		FontColor:          values[InputFontColor].(string),
		Position:           values[InputSubtitlePosition].(string),
		Style:              values[InputSubtitleStyle].(string),
		TranslateToEnglish: values[InputTranslateToEnglish].(bool),
	}
	if n.processor == nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "run node", "no pipeline configured", nil)
	}
	result, err := n.processor.Process(ctx, values[InputVideoFile].(string), style)
	if err != nil {
		return nil, err
	}
	return Outputs{OutputVideo: result.OutputPath}, nil
}

// resolveInputs applies defaults, rejects unknown names and coerces each
// value to its declared type.
func resolveInputs(specs []InputSpec, in Inputs) (map[string]any, error) {
	known := make(map[string]InputSpec, len(specs))
	for _, spec := range specs {
		known[spec.Name] = spec
	}
	var unknown []string
	for name := range in {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, services.Wrap(services.ErrValidation, pipeline.StageValidate, "decode inputs",
			fmt.Sprintf("unknown inputs: %s", strings.Join(unknown, ", ")), nil)
	}

	values := make(map[string]any, len(specs))
	var problems []string
	for _, spec := range specs {
		raw, ok := in[spec.Name]
		if !ok || raw == nil {
			raw = spec.Default
		}
		value, err := coerce(spec.Name, spec.Type, raw)
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		values[spec.Name] = value
	}
	if len(problems) > 0 {
		return nil, services.Wrap(services.ErrValidation, pipeline.StageValidate, "decode inputs", strings.Join(problems, "; "), nil)
	}
	return values, nil
}
