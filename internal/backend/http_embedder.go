package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/Keyhole-Koro/snackPersona/internal/xerrors"
)

// HTTPEmbedder implements Embedder over an OpenAI-compatible /embeddings
// endpoint. No embedding SDK appears anywhere in the example pack, so
// this talks HTTP directly rather than depending on a provider client;
// see DESIGN.md for the standard-library justification.
type HTTPEmbedder struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewHTTPEmbedder creates an Embedder against baseURL (e.g.
// "https://api.openai.com/v1") using model for every request.
func NewHTTPEmbedder(baseURL, apiKey, model string, timeout time.Duration) *HTTPEmbedder {
	return &HTTPEmbedder{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
	}
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed implements Embedder.
func (h *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	body, err := json.Marshal(embeddingRequest{Model: h.model, Input: text})
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.InvalidInput, "encoding embedding request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.InvalidInput, "building embedding request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.apiKey)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.LLMGenerationFailed, "embedding request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.LLMGenerationFailed, "reading embedding response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, xerrors.WithFields(
			xerrors.New(xerrors.LLMGenerationFailed, "embedding endpoint returned an error status"),
			xerrors.Fields{"status": resp.StatusCode, "body": string(raw)})
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, xerrors.Wrap(err, xerrors.InvalidResponse, "parsing embedding response")
	}
	if len(parsed.Data) == 0 {
		return nil, xerrors.New(xerrors.InvalidResponse, "embedding response contained no vectors")
	}
	return parsed.Data[0].Embedding, nil
}
