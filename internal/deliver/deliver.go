// Package deliver sends the rendered report image to chat-group
// destinations through an OneBot-compatible HTTP endpoint.
package deliver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/Huahuatgc/ribao/internal/config"
)

// Sender delivers one image to one destination.
type Sender interface {
	Send(ctx context.Context, destination, imagePath string) error
}

// HTTPSender posts the image as a base64 message segment to the configured
// endpoint's send_group_msg action.
type HTTPSender struct {
	endpoint    string
	accessToken string
	client      *http.Client
	logger      *slog.Logger
}

// NewHTTPSender creates an HTTPSender.
func NewHTTPSender(cfg *config.DeliverConfig, logger *slog.Logger) *HTTPSender {
	return &HTTPSender{
		endpoint:    cfg.Endpoint,
		accessToken: cfg.AccessToken,
		client:      &http.Client{Timeout: cfg.Timeout},
		logger:      logger.With("component", "http_sender"),
	}
}

type messageSegment struct {
	Type string            `json:"type"`
	Data map[string]string `json:"data"`
}

type sendGroupMsgRequest struct {
	GroupID string           `json:"group_id"`
	Message []messageSegment `json:"message"`
}

type sendGroupMsgResponse struct {
	Status  string `json:"status"`
	RetCode int    `json:"retcode"`
	Message string `json:"message"`
}

// Send posts the image to one group. The destination must already be
// normalized to a numeric group ID.
func (s *HTTPSender) Send(ctx context.Context, destination, imagePath string) error {
	image, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	payload := sendGroupMsgRequest{
		GroupID: destination,
		Message: []messageSegment{{
			Type: "image",
			Data: map[string]string{
				"file": "base64://" + base64.StdEncoding.EncodeToString(image),
			},
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.endpoint+"/send_group_msg", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.accessToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(preview))
	}

	var result sendGroupMsgResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if result.Status == "failed" {
		return fmt.Errorf("send rejected: retcode=%d message=%q", result.RetCode, result.Message)
	}

	s.logger.Info("report delivered", "destination", destination)
	return nil
}

// Broadcast sends the image to every destination, normalizing identifiers
// first. A failure for one destination never blocks the others; the number
// of successful deliveries is returned.
func Broadcast(ctx context.Context, sender Sender, destinations []string, imagePath string, logger *slog.Logger) int {
	success := 0
	for _, dest := range destinations {
		groupID, err := Normalize(dest)
		if err != nil {
			logger.Warn("skipping destination", "destination", dest, "error", err)
			continue
		}
		if err := sender.Send(ctx, groupID, imagePath); err != nil {
			logger.Error("delivery failed", "destination", dest, "error", err)
			continue
		}
		success++
	}
	logger.Info("broadcast finished", "success", success, "total", len(destinations))
	return success
}
