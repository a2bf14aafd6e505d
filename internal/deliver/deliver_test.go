package deliver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Huahuatgc/ribao/internal/config"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.png")
	if err := os.WriteFile(path, []byte("fake-png-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newSender(t *testing.T, handler http.Handler) *HTTPSender {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.DeliverConfig{
		Endpoint:    srv.URL,
		AccessToken: "token-123",
		Timeout:     5 * time.Second,
	}
	return NewHTTPSender(cfg, testLogger)
}

func TestSend(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq sendGroupMsgRequest

	sender := newSender(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"status": "ok", "retcode": 0}`))
	}))

	if err := sender.Send(context.Background(), "123456", writeTestImage(t)); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotPath != "/send_group_msg" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer token-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotReq.GroupID != "123456" {
		t.Errorf("group_id = %q", gotReq.GroupID)
	}
	if len(gotReq.Message) != 1 || gotReq.Message[0].Type != "image" {
		t.Fatalf("message = %+v", gotReq.Message)
	}
	if file := gotReq.Message[0].Data["file"]; !strings.HasPrefix(file, "base64://") {
		t.Errorf("file = %q, want a base64:// payload", file)
	}
}

func TestSendRejected(t *testing.T) {
	sender := newSender(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "failed", "retcode": 100, "message": "group not found"}`))
	}))

	if err := sender.Send(context.Background(), "123456", writeTestImage(t)); err == nil {
		t.Fatal("expected an error for a rejected send")
	}
}

func TestSendHTTPError(t *testing.T) {
	sender := newSender(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))

	if err := sender.Send(context.Background(), "123456", writeTestImage(t)); err == nil {
		t.Fatal("expected an error for a non-2xx response")
	}
}

func TestSendMissingImage(t *testing.T) {
	sender := newSender(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request sent despite unreadable image")
	}))

	if err := sender.Send(context.Background(), "123456", "/nonexistent/report.png"); err == nil {
		t.Fatal("expected an error for a missing image file")
	}
}

// stubSender records destinations and fails a chosen one.
type stubSender struct {
	failOn string
	sent   []string
}

func (s *stubSender) Send(ctx context.Context, destination, imagePath string) error {
	if destination == s.failOn {
		return context.DeadlineExceeded
	}
	s.sent = append(s.sent, destination)
	return nil
}

func TestBroadcast(t *testing.T) {
	sender := &stubSender{failOn: "222"}
	destinations := []string{
		"111",
		"aiocqhttp:GroupMessage:222",
		"not-a-destination",
		"333",
	}

	success := Broadcast(context.Background(), sender, destinations, "report.png", testLogger)

	// One send fails, one destination cannot be normalized, two succeed.
	if success != 2 {
		t.Errorf("success = %d, want 2", success)
	}
	if len(sender.sent) != 2 || sender.sent[0] != "111" || sender.sent[1] != "333" {
		t.Errorf("sent = %v, want [111 333]", sender.sent)
	}
}
