package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTelegramSenderSend(t *testing.T) {
	var gotPath string
	var gotBody sendMessageRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	sender, err := NewTelegramSender(TelegramConfig{
		BaseURL:  server.URL,
		BotToken: "secret-token",
	})
	require.NoError(t, err)

	require.NoError(t, sender.Send(context.Background(), "12345", "drill is ready"))
	require.Equal(t, "/botsecret-token/sendMessage", gotPath)
	require.Equal(t, "12345", gotBody.ChatID)
	require.Equal(t, "drill is ready", gotBody.Text)
}

func TestTelegramSenderRejectedByAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer server.Close()

	sender, err := NewTelegramSender(TelegramConfig{BaseURL: server.URL, BotToken: "tok"})
	require.NoError(t, err)

	err = sender.Send(context.Background(), "999", "hello")
	require.Error(t, err)
	require.Contains(t, err.Error(), "chat not found")
}

func TestTelegramSenderHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	sender, err := NewTelegramSender(TelegramConfig{BaseURL: server.URL, BotToken: "tok"})
	require.NoError(t, err)

	err = sender.Send(context.Background(), "1", "hello")
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
}

func TestTelegramSenderValidation(t *testing.T) {
	_, err := NewTelegramSender(TelegramConfig{})
	require.Error(t, err)

	sender, err := NewTelegramSender(TelegramConfig{BotToken: "tok"})
	require.NoError(t, err)
	require.Error(t, sender.Send(context.Background(), "", "text"))
}
