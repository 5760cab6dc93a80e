package finder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sakif/frelance/internal/model"
)

var _ Finder = (*GeminiClient)(nil)

// DefaultBaseURL is the public Generative Language API.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// GeminiClient calls the generateContent endpoint and asks for a JSON list
// of jobs.
type GeminiClient struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

// NewGeminiClient creates a client. An empty baseURL uses DefaultBaseURL.
func NewGeminiClient(baseURL, model, apiKey string, timeout time.Duration) *GeminiClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &GeminiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType"`
	Temperature      float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

// Find sends one generateContent request and decodes the jobs in the reply.
func (c *GeminiClient) Find(ctx context.Context, criteria model.SearchCriteria, profile model.UserProfile) ([]model.Job, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: buildPrompt(criteria, profile)}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			Temperature:      0.4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("finder: marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("finder: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("finder: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("finder: gemini error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var gen generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gen); err != nil {
		return nil, fmt.Errorf("finder: decode response: %w", err)
	}
	if len(gen.Candidates) == 0 || len(gen.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("finder: empty response")
	}

	var text strings.Builder
	for _, p := range gen.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return parseJobs(text.String())
}

// parseJobs accepts either a bare JSON array or an object with a "jobs" array,
// optionally wrapped in a Markdown code fence.
func parseJobs(text string) ([]model.Job, error) {
	text = stripFence(text)

	var jobs []model.Job
	if strings.HasPrefix(text, "{") {
		var wrapped struct {
			Jobs []wireJob `json:"jobs"`
		}
		if err := json.Unmarshal([]byte(text), &wrapped); err != nil {
			return nil, fmt.Errorf("finder: decode jobs: %w", err)
		}
		jobs = toJobs(wrapped.Jobs)
	} else {
		var err error
		if jobs, err = decodeJobs([]byte(text)); err != nil {
			return nil, fmt.Errorf("finder: decode jobs: %w", err)
		}
	}

	return normalize(jobs), nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// normalize gives every job a unique ID and keeps match scores in 0–100.
func normalize(jobs []model.Job) []model.Job {
	out := make([]model.Job, 0, len(jobs))
	seen := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		if j.ID == "" || seen[j.ID] {
			j.ID = uuid.NewString()
		}
		seen[j.ID] = true
		j.MatchPercentage = max(0, min(100, j.MatchPercentage))
		if j.Skills == nil {
			j.Skills = []string{}
		}
		out = append(out, j)
	}
	return out
}
