package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Notification carries the context of a fired trigger for downstream
// delivery.
type Notification struct {
	OrganizationID int64
	TriggerID      int64
	Classification string
	Severity       string
	Confidence     int
	Title          string
	Summary        string
	ActionRequired bool
	Channels       []string
	FiredAt        time.Time
}

// Notifier delivers alert notifications to a downstream channel.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// TelegramNotifier pushes messages through the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier constructs a Telegram notifier.
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify calls the sendMessage API with a rendered alert summary.
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    renderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram returned ok=false")
		}
	}

	n.logger.Info().
		Int64("organization_id", note.OrganizationID).
		Int64("trigger_id", note.TriggerID).
		Str("severity", note.Severity).
		Str("channels", strings.Join(note.Channels, ",")).
		Msg("alert notification sent (telegram)")
	return nil
}

func renderMessage(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString("[Strategic Alert]\n")
	builder.WriteString(fmt.Sprintf("Fired: %s UTC\n", note.FiredAt.UTC().Format(time.RFC3339)))
	builder.WriteString(fmt.Sprintf("Organization: %d\n", note.OrganizationID))
	builder.WriteString(fmt.Sprintf("Trigger: %d\n", note.TriggerID))
	builder.WriteString(fmt.Sprintf("Classification: %s\n", note.Classification))
	builder.WriteString(fmt.Sprintf("Severity: %s\n", note.Severity))
	builder.WriteString(fmt.Sprintf("Confidence: %d/100\n", note.Confidence))
	if note.Title != "" {
		builder.WriteString(fmt.Sprintf("Title: %s\n", note.Title))
	}
	if note.Summary != "" {
		builder.WriteString(fmt.Sprintf("Summary: %s\n", note.Summary))
	}
	if note.ActionRequired {
		builder.WriteString("Action required\n")
	}
	if len(note.Channels) > 0 {
		builder.WriteString(fmt.Sprintf("Channels: %s\n", strings.Join(note.Channels, ",")))
	}
	return builder.String()
}

var _ Notifier = (*TelegramNotifier)(nil)
