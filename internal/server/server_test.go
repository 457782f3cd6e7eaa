package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-assistant/internal/certs"
	"github.com/Veraticus/spice-assistant/internal/model"
)

type call struct {
	user string
	text string
}

// echoReplier answers with the utterance, or an auth error for anonymous users.
type echoReplier struct {
	mu    sync.Mutex
	calls []call
}

func (e *echoReplier) Reply(_ context.Context, user, text string) model.Reply {
	e.mu.Lock()
	e.calls = append(e.calls, call{user: user, text: text})
	e.mu.Unlock()

	if user == "" {
		return model.ErrorReply("Please log in first.")
	}
	return model.TextReply(user + ": " + text)
}

func (e *echoReplier) recorded() []call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]call(nil), e.calls...)
}

func newTestServer() (*Server, *echoReplier) {
	replier := &echoReplier{}
	return New(replier, slog.New(slog.NewTextHandler(io.Discard, nil))), replier
}

func postChat(t *testing.T, h http.Handler, body string, header string) (*httptest.ResponseRecorder, model.Reply) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if header != "" {
		req.Header.Set(UserHeader, header)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	var reply model.Reply
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &reply))
	return resp, reply
}

func TestHandleChat(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		header     string
		wantStatus int
		want       model.Reply
	}{
		{
			name:       "user in body",
			body:       `{"user":"alice","message":"balance"}`,
			wantStatus: http.StatusOK,
			want:       model.TextReply("alice: balance"),
		},
		{
			name:       "header wins over body",
			body:       `{"user":"alice","message":"hi"}`,
			header:     "bob",
			wantStatus: http.StatusOK,
			want:       model.TextReply("bob: hi"),
		},
		{
			name:       "anonymous",
			body:       `{"message":"hi"}`,
			wantStatus: http.StatusUnauthorized,
			want:       model.ErrorReply("Please log in first."),
		},
		{
			name:       "malformed body",
			body:       `{"message":`,
			wantStatus: http.StatusBadRequest,
			want:       model.ErrorReply("invalid request body"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer()
			resp, reply := postChat(t, s.Handler(), tt.body, tt.header)

			assert.Equal(t, tt.wantStatus, resp.Code)
			assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))
			assert.Equal(t, tt.want, reply)
		})
	}
}

func TestHandleChat_ReplyHasExactlyOneField(t *testing.T) {
	s, _ := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(`{"user":"alice","message":"hi"}`))
	resp := httptest.NewRecorder()
	s.Handler().ServeHTTP(resp, req)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &raw))
	assert.Len(t, raw, 1)
	assert.Contains(t, raw, "reply")
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp := httptest.NewRecorder()
	s.Handler().ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"ok"}`, resp.Body.String())
}

func TestWebSocketChat(t *testing.T) {
	s, replier := newTestServer()
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws?user=alice"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	defer func() { _ = conn.Close() }()

	for _, msg := range []string{"lunch 30", "yes"} {
		require.NoError(t, conn.WriteJSON(chatRequest{Message: msg}))

		var reply model.Reply
		require.NoError(t, conn.ReadJSON(&reply))
		assert.Equal(t, model.TextReply("alice: "+msg), reply)
	}

	assert.Equal(t, []call{{user: "alice", text: "lunch 30"}, {user: "alice", text: "yes"}}, replier.recorded())
}

func TestRun_StopsOnCancel(t *testing.T) {
	s, _ := newTestServer()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()

	cancel()
	assert.NoError(t, <-done)
}

func TestRun_TLS(t *testing.T) {
	s, _ := newTestServer()
	cfg, err := certs.NewFileManager(t.TempDir()).TLSConfig()
	require.NoError(t, err)
	s.EnableTLS(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()

	cancel()
	assert.NoError(t, <-done)
}
