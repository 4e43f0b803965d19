package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// DefaultEndpoint is where the prediction service listens by default.
const DefaultEndpoint = "http://localhost:8000/predict"

// Prediction mirrors the service's success response.
type Prediction struct {
	Disease string `json:"disease"`
	Advice  string `json:"advice"`
}

// ErrorResponse is returned when the service answers with {"error": ...}.
type ErrorResponse struct {
	StatusCode int
	Message    string
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("triage service returned %d: %s", e.StatusCode, e.Message)
}

// Client calls the /predict endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New returns a client for endpoint. A nil httpClient gets a 10s timeout.
func New(endpoint string, httpClient *http.Client) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{endpoint: endpoint, httpClient: httpClient}
}

// Predict sends symptoms and decodes the service's answer.
func (c *Client) Predict(ctx context.Context, symptoms []string) (*Prediction, error) {
	if symptoms == nil {
		symptoms = []string{}
	}
	body, err := json.Marshal(map[string][]string{"symptoms": symptoms})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call triage service: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var out struct {
		Prediction
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &ErrorResponse{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.Error != "" || resp.StatusCode != http.StatusOK {
		msg := out.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &ErrorResponse{StatusCode: resp.StatusCode, Message: msg}
	}
	return &out.Prediction, nil
}

// CheckSymptoms is the chatbot tool: it parses free text such as
// "fever, cough" and reports the predicted disease in one sentence.
func (c *Client) CheckSymptoms(ctx context.Context, text string) (string, error) {
	p, err := c.Predict(ctx, ParseSymptoms(text))
	if err != nil {
		return "", err
	}
	return "The predicted disease is: " + p.Disease, nil
}

// ParseSymptoms splits comma separated text into symptom tokens. Each token
// is NFKC-normalized and trimmed; empty tokens and repeats are dropped. Case
// is left alone because the service matches case-sensitively.
func ParseSymptoms(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(norm.NFKC.String(p))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
