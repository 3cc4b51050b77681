package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	transcriptionsPath = "/v1/audio/transcriptions"
	translationsPath   = "/v1/audio/translations"
	maxErrorBody       = 4 << 10
)

// HTTPConfig configures a Whisper-compatible HTTP service.
type HTTPConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTP posts audio to a Whisper-compatible service.
type HTTP struct {
	cfg    HTTPConfig
	client HTTPDoer
}

// NewHTTP creates an HTTP backend. A nil client gets one honouring cfg.Timeout.
func NewHTTP(cfg HTTPConfig, client *http.Client) *HTTP {
	if client == nil {
		return newHTTPWithDoer(cfg, nil)
	}
	return newHTTPWithDoer(cfg, client)
}

func newHTTPWithDoer(cfg HTTPConfig, client HTTPDoer) *HTTP {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTP{cfg: cfg, client: client}
}

// Name identifies the backend in logs.
func (h *HTTP) Name() string { return "http" }

// Transcribe uploads the WAV as multipart form data. Translation requests use
// the translations endpoint; everything else goes to transcriptions.
func (h *HTTP) Transcribe(ctx context.Context, req Request) ([]RawSegment, error) {
	file, err := os.Open(req.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer file.Close()

	body, contentType := h.multipartBody(file, filepath.Base(req.AudioPath), req)

	endpoint := transcriptionsPath
	if req.Task == TaskTranslate {
		endpoint = translationsPath
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.cfg.BaseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	if h.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+h.cfg.APIKey)
	}

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("whisper request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("whisper error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var result verboseResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode whisper response: %w", err)
	}
	return result.segments(), nil
}

// multipartBody streams the form so large WAV files are never buffered whole.
func (h *HTTP) multipartBody(audio io.Reader, filename string, req Request) (io.Reader, string) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		err := func() error {
			part, err := writer.CreateFormFile("file", filename)
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, audio); err != nil {
				return err
			}
			fields := [][2]string{
				{"model", req.Model},
				{"response_format", "verbose_json"},
				{"timestamp_granularities[]", "word"},
				{"timestamp_granularities[]", "segment"},
			}
			for _, field := range fields {
				if err := writer.WriteField(field[0], field[1]); err != nil {
					return err
				}
			}
			return writer.Close()
		}()
		pw.CloseWithError(err)
	}()
	return pr, writer.FormDataContentType()
}

type verboseResponse struct {
	Text     string       `json:"text"`
	Language string       `json:"language"`
	Segments []RawSegment `json:"segments"`
	Words    []RawWord    `json:"words"`
}

// segments prefers per-segment words. Services that only return a top-level
// word list get those words distributed into segments by start time.
func (r verboseResponse) segments() []RawSegment {
	for _, seg := range r.Segments {
		if len(seg.Words) > 0 {
			return r.Segments
		}
	}
	if len(r.Words) == 0 {
		return r.Segments
	}
	if len(r.Segments) == 0 {
		return []RawSegment{{Text: r.Text, Words: r.Words}}
	}

	out := make([]RawSegment, len(r.Segments))
	copy(out, r.Segments)
	for i := range out {
		out[i].Words = nil
	}
	for _, w := range r.Words {
		idx := len(out) - 1
		if w.Start != nil {
			idx = sort.Search(len(out), func(i int) bool { return out[i].End > *w.Start })
			if idx == len(out) {
				idx = len(out) - 1
			}
		}
		out[idx].Words = append(out[idx].Words, w)
	}
	return out
}
