package conversation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/workscope-dev/workscope/internal/api"
	"github.com/workscope-dev/workscope/internal/session"
)

// fakeBackend records which endpoints were hit and answers like the
// work-scope service.
type fakeBackend struct {
	mu    sync.Mutex
	paths []string

	failTurns  bool
	turnReply  string
	followUp   string
	transcript string
	delay      time.Duration
}

func (f *fakeBackend) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.paths = append(f.paths, r.URL.Path)
		f.mu.Unlock()

		if f.delay > 0 {
			time.Sleep(f.delay)
		}

		if r.URL.Path == "/sessions/create" {
			_, _ = w.Write([]byte(`{"session_id": "remote-1"}`))
			return
		}

		if f.failTurns {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"detail": "backend exploded"}`))
			return
		}

		reply := f.turnReply
		if reply == "" {
			reply = "understood"
		}
		body := `{"content": ` + jsonString(reply) + `, "current_stage": "gathering"`
		if f.followUp != "" {
			body += `, "follow_up_question": ` + jsonString(f.followUp)
		}
		if f.transcript != "" && strings.HasSuffix(r.URL.Path, "/voice-input") {
			body += `, "transcribed_text": ` + jsonString(f.transcript)
		}
		body += `}`
		_, _ = w.Write([]byte(body))
	})
}

func jsonString(s string) string {
	return `"` + s + `"`
}

func (f *fakeBackend) calls(suffix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.paths {
		if strings.HasSuffix(p, suffix) {
			n++
		}
	}
	return n
}

func newTestController(t *testing.T, backend *fakeBackend) (*Controller, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	store, err := session.Open(filepath.Join(t.TempDir(), "sessions.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	client := api.NewClient(srv.URL, 5*time.Second)
	return NewController(store, client, nil), srv
}

func TestSendTurnEmptyDirectSessionUsesInitialInput(t *testing.T) {
	backend := &fakeBackend{}
	c, _ := newTestController(t, backend)

	sess, err := c.NewDirectSession()
	if err != nil {
		t.Fatalf("NewDirectSession failed: %v", err)
	}

	if _, err := c.SendTurn(context.Background(), sess.ID, "build a parser"); err != nil {
		t.Fatalf("SendTurn failed: %v", err)
	}

	if got := backend.calls("/initial-input"); got != 1 {
		t.Errorf("initial-input calls: got %d, want 1", got)
	}
	if got := backend.calls("/input"); got != 0 {
		t.Errorf("next-turn calls: got %d, want 0", got)
	}
}

func TestSendTurnActiveSessionUsesInput(t *testing.T) {
	backend := &fakeBackend{}
	c, _ := newTestController(t, backend)

	sess, _ := c.NewDirectSession()
	if _, err := c.SendTurn(context.Background(), sess.ID, "first"); err != nil {
		t.Fatalf("first SendTurn failed: %v", err)
	}
	if _, err := c.SendTurn(context.Background(), sess.ID, "second"); err != nil {
		t.Fatalf("second SendTurn failed: %v", err)
	}

	if got := backend.calls("/initial-input"); got != 1 {
		t.Errorf("initial-input calls: got %d, want 1", got)
	}
	if got := backend.calls("/input"); got != 1 {
		t.Errorf("next-turn calls: got %d, want 1", got)
	}
}

func TestSendTurnRejectsEmptyText(t *testing.T) {
	backend := &fakeBackend{}
	c, _ := newTestController(t, backend)
	sess, _ := c.NewDirectSession()

	if _, err := c.SendTurn(context.Background(), sess.ID, "   \n\t"); err != ErrEmptyMessage {
		t.Errorf("got %v, want ErrEmptyMessage", err)
	}
	if got := backend.calls("/input"); got != 0 {
		t.Errorf("no call should be issued for empty text, got %d", got)
	}
}

func TestSendTurnUnknownSession(t *testing.T) {
	backend := &fakeBackend{}
	c, _ := newTestController(t, backend)

	if _, err := c.SendTurn(context.Background(), "missing", "hi"); err != session.ErrSessionNotFound {
		t.Errorf("got %v, want ErrSessionNotFound", err)
	}
}

func TestSendTurnRenamesDirectSessionFromFirstMessage(t *testing.T) {
	backend := &fakeBackend{}
	c, _ := newTestController(t, backend)

	sess, _ := c.NewDirectSession()
	long := strings.Repeat("describe the project in detail ", 3)
	if _, err := c.SendTurn(context.Background(), sess.ID, long); err != nil {
		t.Fatalf("SendTurn failed: %v", err)
	}

	got := c.Store().Get(sess.ID).Name
	if got == DefaultDirectName {
		t.Error("session should be renamed after the first message")
	}
	if len([]rune(got)) > maxDerivedNameLen+3 {
		t.Errorf("derived name too long: %q", got)
	}
	if !strings.HasPrefix(long, strings.TrimSuffix(got, "...")) {
		t.Errorf("derived name %q is not a prefix of the message", got)
	}
}

func TestFailedTurnAppendsSyntheticAssistantMessage(t *testing.T) {
	backend := &fakeBackend{failTurns: true}
	c, _ := newTestController(t, backend)

	sess, _ := c.NewDirectSession()
	_, err := c.SendTurn(context.Background(), sess.ID, "hello?")
	if err == nil {
		t.Fatal("SendTurn should propagate the backend failure")
	}

	msgs := c.Store().Get(sess.ID).Messages
	if len(msgs) != 2 {
		t.Fatalf("messages after failed turn: got %d, want 2", len(msgs))
	}
	if msgs[0].Role != session.RoleUser || msgs[0].Content != "hello?" {
		t.Errorf("user message missing from transcript: %+v", msgs[0])
	}
	if msgs[1].Role != session.RoleAssistant {
		t.Errorf("synthetic message role: got %q, want assistant", msgs[1].Role)
	}
	if !strings.Contains(msgs[1].Content, "server") {
		t.Errorf("synthetic message content: got %q", msgs[1].Content)
	}
}

func TestSuccessfulTurnAppendsAssistantReply(t *testing.T) {
	backend := &fakeBackend{turnReply: "here is a draft", followUp: "anything else?"}
	c, _ := newTestController(t, backend)

	sess, _ := c.NewDirectSession()
	updated, err := c.SendTurn(context.Background(), sess.ID, "make a plan")
	if err != nil {
		t.Fatalf("SendTurn failed: %v", err)
	}

	msgs := updated.Messages
	if len(msgs) != 2 {
		t.Fatalf("messages: got %d, want 2", len(msgs))
	}
	want := "here is a draft\n\nanything else?"
	if msgs[1].Content != want {
		t.Errorf("assistant content: got %q, want %q", msgs[1].Content, want)
	}
}

func TestUploadDocumentNamingAndKind(t *testing.T) {
	backend := &fakeBackend{turnReply: "document processed"}
	c, _ := newTestController(t, backend)

	dir := t.TempDir()
	path := filepath.Join(dir, "Project Plan.pdf")
	if err := os.WriteFile(path, []byte("pdf bytes"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	sess, err := c.UploadDocument(context.Background(), path)
	if err != nil {
		t.Fatalf("UploadDocument failed: %v", err)
	}

	if sess.Name != "Project Plan" {
		t.Errorf("name: got %q, want %q", sess.Name, "Project Plan")
	}
	if sess.Kind != session.KindDocument {
		t.Errorf("kind: got %q, want %q", sess.Kind, session.KindDocument)
	}
	if sess.SourceFileName != "Project Plan.pdf" {
		t.Errorf("source file: got %q", sess.SourceFileName)
	}

	msgs := sess.Messages
	if len(msgs) != 2 {
		t.Fatalf("messages: got %d, want 2", len(msgs))
	}
	if msgs[0].Content != "Uploaded: Project Plan.pdf" {
		t.Errorf("seed message: got %q", msgs[0].Content)
	}
	if msgs[1].Role != session.RoleAssistant || msgs[1].Content != "document processed" {
		t.Errorf("assistant message: %+v", msgs[1])
	}
}

func TestFailedUploadAppendsNoAssistantMessage(t *testing.T) {
	backend := &fakeBackend{failTurns: true}
	c, _ := newTestController(t, backend)

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("text"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	sess, err := c.UploadDocument(context.Background(), path)
	if err == nil {
		t.Fatal("UploadDocument should propagate the backend failure")
	}
	if sess == nil {
		t.Fatal("failed upload should still return the created session")
	}

	msgs := c.Store().Get(sess.ID).Messages
	if len(msgs) != 1 {
		t.Errorf("messages after failed upload: got %d, want only the seed", len(msgs))
	}
}

func TestRemoteIDFetchedOnceAndCached(t *testing.T) {
	backend := &fakeBackend{}
	c, _ := newTestController(t, backend)

	sess, _ := c.NewDirectSession()
	_, _ = c.SendTurn(context.Background(), sess.ID, "one")
	_, _ = c.SendTurn(context.Background(), sess.ID, "two")

	if got := backend.calls("/sessions/create"); got != 1 {
		t.Errorf("session create calls: got %d, want 1", got)
	}
	if got := c.Store().Get(sess.ID).RemoteID; got != "remote-1" {
		t.Errorf("remote id: got %q, want %q", got, "remote-1")
	}
}

func TestSendVoiceTurnAppendsTranscript(t *testing.T) {
	backend := &fakeBackend{turnReply: "heard you", transcript: "add a login page"}
	c, _ := newTestController(t, backend)

	sess, _ := c.NewDirectSession()
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.wav")
	if err := os.WriteFile(path, []byte("wav"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	updated, err := c.SendVoiceTurn(context.Background(), sess.ID, path)
	if err != nil {
		t.Fatalf("SendVoiceTurn failed: %v", err)
	}

	msgs := updated.Messages
	if len(msgs) != 2 {
		t.Fatalf("messages: got %d, want 2", len(msgs))
	}
	if msgs[0].Role != session.RoleUser || msgs[0].Content != "add a login page" {
		t.Errorf("transcript message: %+v", msgs[0])
	}
	if msgs[1].Content != "heard you" {
		t.Errorf("assistant message: %+v", msgs[1])
	}
}

// A second session created while an upload is still in flight must not
// corrupt the store.
func TestNewSessionDuringSlowUpload(t *testing.T) {
	backend := &fakeBackend{turnReply: "document processed", delay: 100 * time.Millisecond}
	c, _ := newTestController(t, backend)

	dir := t.TempDir()
	path := filepath.Join(dir, "plan.pdf")
	if err := os.WriteFile(path, []byte("pdf bytes"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := c.UploadDocument(context.Background(), path)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	direct, err := c.NewDirectSession()
	if err != nil {
		t.Fatalf("NewDirectSession failed: %v", err)
	}

	if err := <-done; err != nil {
		t.Fatalf("UploadDocument failed: %v", err)
	}

	sessions := c.Store().List("")
	if len(sessions) != 2 {
		t.Fatalf("sessions: got %d, want 2", len(sessions))
	}
	if c.Store().Get(direct.ID) == nil {
		t.Error("direct session lost")
	}
	docs := c.Store().List(session.KindDocument)
	if len(docs) != 1 || len(docs[0].Messages) != 2 {
		t.Errorf("document session incomplete: %+v", docs)
	}
}

func TestDeleteSession(t *testing.T) {
	backend := &fakeBackend{}
	c, _ := newTestController(t, backend)

	a, _ := c.NewDirectSession()
	b, _ := c.NewDirectSession()

	if err := c.DeleteSession(a.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if c.Store().Get(a.ID) != nil {
		t.Error("deleted session still present")
	}
	if c.Store().Get(b.ID) == nil {
		t.Error("unrelated session removed")
	}
	if err := c.DeleteSession(a.ID); err != session.ErrSessionNotFound {
		t.Errorf("second delete: got %v, want ErrSessionNotFound", err)
	}
}
