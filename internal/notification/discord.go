package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type DiscordMessage struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

type DiscordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

const (
	colorRed   = 16711680
	colorGreen = 65280

	// Discord rejects embed descriptions above 4096 characters.
	maxDescription = 4000
)

// Discord posts run summaries to webhooks. An empty URL disables that kind of message.
type Discord struct {
	ErrorURL   string
	SuccessURL string
	Client     *http.Client
}

func NewDiscord(errorURL, successURL string) *Discord {
	return &Discord{ErrorURL: errorURL, SuccessURL: successURL, Client: http.DefaultClient}
}

func (d *Discord) Enabled() bool {
	return d != nil && (d.ErrorURL != "" || d.SuccessURL != "")
}

// SendBatchSummary reports a finished batch. Failures go to the error hook with one
// line per failed file.
func (d *Discord) SendBatchSummary(ctx context.Context, title string, total int, failures []string) error {
	if len(failures) == 0 {
		return d.SendSuccess(ctx, fmt.Sprintf("%s\n\nall %d files acquired", title, total))
	}
	return d.SendError(ctx, fmt.Sprintf("%s\n\n%d of %d files failed:\n%s", title, len(failures), total, strings.Join(failures, "\n")))
}

func (d *Discord) SendError(ctx context.Context, errorMessage string) error {
	if d == nil {
		return nil
	}
	return d.post(ctx, d.ErrorURL, DiscordEmbed{
		Title:       "🚨 GOES-16 run failed",
		Description: errorMessage,
		Color:       colorRed,
	})
}

func (d *Discord) SendSuccess(ctx context.Context, successMessage string) error {
	if d == nil {
		return nil
	}
	return d.post(ctx, d.SuccessURL, DiscordEmbed{
		Title:       "✅ GOES-16 run finished",
		Description: successMessage,
		Color:       colorGreen,
	})
}

func (d *Discord) post(ctx context.Context, url string, embed DiscordEmbed) error {
	if d == nil || url == "" {
		return nil
	}
	if len(embed.Description) > maxDescription {
		embed.Description = embed.Description[:maxDescription] + "…"
	}
	payload, err := json.Marshal(DiscordMessage{Embeds: []DiscordEmbed{embed}})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send Discord notification, status code: %d", resp.StatusCode)
	}
	return nil
}
