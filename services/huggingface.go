package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const huggingFaceBaseURL = "https://api-inference.huggingface.co/models"

type HuggingFaceClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewHuggingFaceClient builds an inference API client. An empty baseURL uses the public endpoint.
func NewHuggingFaceClient(apiKey, model, baseURL string, httpClient *http.Client) *HuggingFaceClient {
	if baseURL == "" {
		baseURL = huggingFaceBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &HuggingFaceClient{
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *HuggingFaceClient) Name() string { return "huggingface" }

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfResponse []struct {
	GeneratedText string `json:"generated_text"`
}

func (c *HuggingFaceClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", &UpstreamError{Provider: c.Name(), Err: ErrNoCredential}
	}

	jsonBody, err := json.Marshal(hfRequest{
		Inputs: "[INST] " + prompt + " [/INST]",
		Parameters: hfParameters{
			MaxNewTokens:   2048,
			Temperature:    0.6,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return "", &UpstreamError{Provider: c.Name(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+c.model, bytes.NewReader(jsonBody))
	if err != nil {
		return "", &UpstreamError{Provider: c.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &UpstreamError{Provider: c.Name(), Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusServiceUnavailable {
		return "", &UpstreamError{Provider: c.Name(), Status: resp.StatusCode, Err: fmt.Errorf("model is loading")}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &UpstreamError{Provider: c.Name(), Status: resp.StatusCode, Err: fmt.Errorf("%s", truncate(string(body), 200))}
	}

	var out hfResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &UpstreamError{Provider: c.Name(), Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(out) == 0 || strings.TrimSpace(out[0].GeneratedText) == "" {
		return "", &UpstreamError{Provider: c.Name(), Status: resp.StatusCode, Err: ErrEmptyGeneration}
	}
	return out[0].GeneratedText, nil
}
