// Package main is the divine-image plugin. It asks Gemini for an image of
// the manifestation and returns it base64-encoded.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"google.golang.org/genai"

	"github.com/ayusman/hanuman/internal/config"
	"github.com/ayusman/hanuman/internal/plugin"
)

// GenerateParams are the params of the generate action.
type GenerateParams struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
}

// GenerateResult is the data of a successful generate response.
type GenerateResult struct {
	MimeType string `json:"mime_type"`
	Image    string `json:"image"`
	Text     string `json:"text,omitempty"`
}

var errNoImage = errors.New("model returned no image")

func main() {
	var req plugin.Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	switch req.Action {
	case "generate":
		result, err := handleGenerate(req.Params)
		if err != nil {
			writeErrorResponse(fmt.Sprintf("generate failed: %v", err))
			return
		}
		writeSuccessResponse(result)
	default:
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
	}
}

func handleGenerate(raw json.RawMessage) (*GenerateResult, error) {
	params := GenerateParams{
		Prompt: config.DefaultPrompt,
		Model:  config.DefaultModel,
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, fmt.Errorf("failed to parse params: %w", err)
		}
	}
	if params.Prompt == "" {
		params.Prompt = config.DefaultPrompt
	}
	if params.Model == "" {
		params.Model = config.DefaultModel
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, params.Model, genai.Text(params.Prompt), nil)
	if err != nil {
		return nil, err
	}

	return extractImage(resp)
}

// extractImage returns the first inline image in the response.
func extractImage(resp *genai.GenerateContentResponse) (*GenerateResult, error) {
	var text string
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				mime := part.InlineData.MIMEType
				if mime == "" {
					mime = "image/png"
				}
				return &GenerateResult{
					MimeType: mime,
					Image:    base64.StdEncoding.EncodeToString(part.InlineData.Data),
					Text:     text,
				}, nil
			}
			text += part.Text
		}
	}
	return nil, errNoImage
}

func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(plugin.Response{
		Success: false,
		Error:   errMsg,
	})
}

func writeSuccessResponse(result *GenerateResult) {
	data, err := json.Marshal(result)
	if err != nil {
		writeErrorResponse(fmt.Sprintf("failed to encode result: %v", err))
		return
	}
	json.NewEncoder(os.Stdout).Encode(plugin.Response{
		Success: true,
		Data:    data,
	})
}
