package ffprobe

import (
	"context"
	"errors"
	"testing"

	"subnode/internal/services"
)

func TestPrimaryAudio(t *testing.T) {
	result := Result{Streams: []Stream{
		{Index: 0, CodecType: "video"},
		{Index: 1, CodecType: "AUDIO", CodecName: "aac", Channels: 2},
		{Index: 2, CodecType: "audio", CodecName: "ac3"},
	}}
	stream, ok := result.PrimaryAudio()
	if !ok || stream.Index != 1 || stream.CodecName != "aac" {
		t.Fatalf("unexpected primary audio %+v %v", stream, ok)
	}

	if _, ok := (Result{Streams: []Stream{{CodecType: "video"}}}).PrimaryAudio(); ok {
		t.Fatal("expected no audio stream")
	}
}

func TestDurationSeconds(t *testing.T) {
	cases := map[string]float64{"123.45": 123.45, " 1.0 ": 1, "": 0, "N/A": 0, "-3": 0}
	for raw, want := range cases {
		if got := (Result{Format: Format{Duration: raw}}).DurationSeconds(); got != want {
			t.Errorf("DurationSeconds(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestInspectDecodesRunnerOutput(t *testing.T) {
	var gotName string
	var gotArgs []string
	runner := services.CommandRunnerFunc(func(_ context.Context, name string, args ...string) (services.CommandResult, error) {
		gotName, gotArgs = name, args
		return services.CommandResult{
			Command: name,
			Stdout:  `{"streams":[{"index":0,"codec_type":"video"},{"index":1,"codec_type":"audio","channels":2,"sample_rate":"48000"}],"format":{"duration":"1.000"}}`,
		}, nil
	})

	result, res, err := New("/opt/ffprobe", WithCommandRunner(runner)).Inspect(context.Background(), "/tmp/clip.mp4")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if gotName != "/opt/ffprobe" || gotArgs[len(gotArgs)-1] != "/tmp/clip.mp4" || gotArgs[len(gotArgs)-2] != "--" {
		t.Fatalf("unexpected invocation %s %v", gotName, gotArgs)
	}
	audio, ok := result.PrimaryAudio()
	if !ok || audio.SampleRate != "48000" || result.DurationSeconds() != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if res.Command != "/opt/ffprobe" {
		t.Fatalf("expected command result returned, got %+v", res)
	}
}

func TestInspectFailures(t *testing.T) {
	failing := services.CommandRunnerFunc(func(_ context.Context, name string, _ ...string) (services.CommandResult, error) {
		return services.CommandResult{Command: name, ExitCode: 1, Stderr: "No such file"}, errors.New("exit status 1")
	})
	_, res, err := New("", WithCommandRunner(failing)).Inspect(context.Background(), "/missing.mp4")
	if err == nil || res.ExitCode != 1 || res.Stderr != "No such file" {
		t.Fatalf("expected command result on failure, got %+v %v", res, err)
	}

	garbage := services.CommandRunnerFunc(func(_ context.Context, name string, _ ...string) (services.CommandResult, error) {
		return services.CommandResult{Command: name, Stdout: "not json"}, nil
	})
	if _, _, err := New("", WithCommandRunner(garbage)).Inspect(context.Background(), "/clip.mp4"); err == nil {
		t.Fatal("expected decode error")
	}

	if _, _, err := New("ffprobe").Inspect(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
