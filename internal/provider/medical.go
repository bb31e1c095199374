package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// MedicalClient calls a dedicated medical model hosted on a Hugging Face
// inference endpoint through its OpenAI-compatible completions route.
type MedicalClient struct {
	endpointURL string
	apiKey      string
	client      *http.Client
}

func NewMedicalClient(endpointURL, apiKey string) *MedicalClient {
	return &MedicalClient{
		endpointURL: endpointURL,
		apiKey:      apiKey,
		client:      &http.Client{Timeout: 120 * time.Second},
	}
}

type completionRequest struct {
	Prompt      string   `json:"prompt"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature float32  `json:"temperature"`
	Stop        []string `json:"stop,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

type completionError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the prompt to the endpoint and returns the raw generated text.
func (c *MedicalClient) Complete(ctx context.Context, p Prompt, params Params) (string, error) {
	reqBody := completionRequest{
		Prompt:      p.System + "\n\n" + p.User,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		Stop:        params.Stop,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", &Error{Message: "marshal request: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL+"/v1/completions", bytes.NewReader(body))
	if err != nil {
		return "", &Error{Message: "create request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &Error{Message: "endpoint call: " + err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Message: "read response: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp completionError
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
			return "", &Error{StatusCode: resp.StatusCode, Message: errResp.Error.Message}
		}
		return "", &Error{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	var apiResp completionResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", &Error{Message: "unmarshal response: " + err.Error()}
	}

	if len(apiResp.Choices) == 0 {
		return "", nil
	}
	return apiResp.Choices[0].Text, nil
}
