package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Sender delivers a text message to an external chat channel identified by a
// chat id. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, chatID, text string) error
}

// TelegramConfig configures the bot API client.
type TelegramConfig struct {
	BaseURL  string
	BotToken string
	Timeout  time.Duration

	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

const defaultTelegramTimeout = 10 * time.Second

// TelegramSender posts messages through the Telegram bot API.
type TelegramSender struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewTelegramSender validates the configuration and builds a sender.
func NewTelegramSender(cfg TelegramConfig) (*TelegramSender, error) {
	cfg.BotToken = strings.TrimSpace(cfg.BotToken)
	if cfg.BotToken == "" {
		return nil, errors.New("telegram: bot token is required")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTelegramTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &TelegramSender{
		baseURL: baseURL,
		token:   cfg.BotToken,
		client:  client,
	}, nil
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send posts a sendMessage call for the chat id. A non-2xx response or an
// ok=false body is reported as an error.
func (s *TelegramSender) Send(ctx context.Context, chatID, text string) error {
	if strings.TrimSpace(chatID) == "" {
		return errors.New("telegram: chat id is required")
	}

	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return fmt.Errorf("telegram: encode request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var decoded sendMessageResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("telegram: decode response: %w", err)
	}
	if !decoded.OK {
		return fmt.Errorf("telegram: api rejected message: %s", decoded.Description)
	}
	return nil
}
