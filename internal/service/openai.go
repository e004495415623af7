package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/mindan-edu/mathtutor/internal/config"
	"github.com/mindan-edu/mathtutor/internal/domain"
)

// CompletionService talks to the OpenAI-compatible completion proxy.
// It performs exactly one outbound call per turn and never retries;
// retry, if any, is the caller's concern.
type CompletionService struct {
	apiURL     string
	httpClient *http.Client
}

func NewCompletionService(apiURL string) *CompletionService {
	return &CompletionService{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: config.ProviderTimeout},
	}
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionResult is a successful dispatch outcome.
type CompletionResult struct {
	Content string
	Usage   *domain.Usage
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *domain.Usage `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the assembled message list to the provider. The proxy
// takes the bare JSON message array as its request body and answers in
// OpenAI chat-completion shape, possibly with an embedded error object.
func (s *CompletionService) Complete(ctx context.Context, messages []ChatMessage) (*CompletionResult, error) {
	payload, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, domain.ErrProviderTimeout
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnexpected, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.ProviderTransportError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrProviderUnexpected, err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", domain.ErrProviderUnexpected, err)
	}

	if chatResp.Error != nil {
		msg := chatResp.Error.Message
		if msg == "" {
			msg = "Unknown API error"
		}
		return nil, &domain.ProviderLogicalError{Message: msg}
	}

	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("%w: response has no choices", domain.ErrProviderUnexpected)
	}

	return &CompletionResult{
		Content: chatResp.Choices[0].Message.Content,
		Usage:   chatResp.Usage,
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}
