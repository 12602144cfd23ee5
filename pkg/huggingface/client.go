// Package huggingface provides a client for the Hugging Face Inference API
// zero-shot classification task.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Model repository IDs for the two supported zero-shot classifiers.
const (
	ModelBart    = "facebook/bart-large-mnli"
	ModelDeberta = "MoritzLaurer/DeBERTa-v3-base-mnli-fever-anli"
)

// Client defines the Hugging Face inference operations.
type Client interface {
	// ZeroShot classifies the input text against the candidate labels and
	// returns labels ranked by descending confidence.
	ZeroShot(ctx context.Context, req ZeroShotRequest) (*ZeroShotResponse, error)
}

// ZeroShotRequest is a single zero-shot classification call.
type ZeroShotRequest struct {
	// Model is the model repository ID, e.g. "facebook/bart-large-mnli".
	Model string
	// Inputs is the text to classify.
	Inputs string
	// CandidateLabels is the label set the model ranks.
	CandidateLabels []string
}

// ZeroShotResponse is the parsed inference response. Labels and Scores are
// parallel slices ordered by descending score.
type ZeroShotResponse struct {
	Sequence string    `json:"sequence"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}

// Option configures the Hugging Face client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout overrides the request timeout on the default HTTP client.
// Zero-shot models can take a while to spin up from cold, so this is
// deliberately generous by default.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.http.Timeout = d
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a new Hugging Face inference client. The API key may be
// empty, in which case requests are sent unauthenticated.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api-inference.huggingface.co",
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type zeroShotPayload struct {
	Inputs     string             `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
}

type zeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
}

func (c *httpClient) ZeroShot(ctx context.Context, zr ZeroShotRequest) (*ZeroShotResponse, error) {
	if zr.Model == "" {
		return nil, eris.New("huggingface: model is required")
	}
	if len(zr.CandidateLabels) == 0 {
		return nil, eris.New("huggingface: candidate labels are required")
	}

	payload, err := json.Marshal(zeroShotPayload{
		Inputs:     zr.Inputs,
		Parameters: zeroShotParameters{CandidateLabels: zr.CandidateLabels},
	})
	if err != nil {
		return nil, eris.Wrap(err, "huggingface: marshal request")
	}

	reqURL := fmt.Sprintf("%s/models/%s", c.baseURL, zr.Model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "huggingface: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "huggingface: request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "huggingface: read response body")
	}

	// Cold model starts surface as 503 with an estimated loading time in the
	// body. That is reported as-is; there is no retry at this layer.
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("huggingface: unexpected status %d: %s", resp.StatusCode, excerpt(body))
	}

	return parseZeroShotBody(body)
}

// parseZeroShotBody decodes a zero-shot response. The API returns a single
// object for a single input, but some deployments wrap it in a one-element
// array.
func parseZeroShotBody(body []byte) (*ZeroShotResponse, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var batch []ZeroShotResponse
		if err := json.Unmarshal(trimmed, &batch); err != nil {
			return nil, eris.Wrap(err, "huggingface: unmarshal response")
		}
		if len(batch) == 0 {
			return nil, eris.New("huggingface: empty response array")
		}
		return &batch[0], nil
	}

	var result ZeroShotResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "huggingface: unmarshal response")
	}
	return &result, nil
}

// excerpt bounds error messages when the API returns an HTML error page.
func excerpt(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
