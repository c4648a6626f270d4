// Package conversation mediates between the session store, the backend
// client and the display layer. Each operation issues at most one
// outbound call and folds the result back into the session before
// returning.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/workscope-dev/workscope/internal/api"
	"github.com/workscope-dev/workscope/internal/log"
	"github.com/workscope-dev/workscope/internal/scope"
	"github.com/workscope-dev/workscope/internal/session"
)

// ErrEmptyMessage is returned when a turn is submitted with nothing but
// whitespace.
var ErrEmptyMessage = errors.New("conversation: empty message")

// DefaultDirectName is the label a direct session carries until its
// first message names it.
const DefaultDirectName = "New Chat"

// connectivityReply is appended as a synthetic assistant message when a
// chat turn cannot reach the backend, so the transcript never ends on a
// hanging user message.
const connectivityReply = "I couldn't reach the server. Please check your connection and try again."

const maxDerivedNameLen = 40

// Controller translates user intent into backend calls.
type Controller struct {
	store  *session.Store
	client *api.Client
	logger *log.Logger
}

// NewController creates a Controller. logger may be nil; event logging
// is best-effort and never fails an operation.
func NewController(store *session.Store, client *api.Client, logger *log.Logger) *Controller {
	return &Controller{store: store, client: client, logger: logger}
}

// Store exposes the underlying session store for listing and lookups.
func (c *Controller) Store() *session.Store {
	return c.store
}

// NewDirectSession creates an empty direct session with the default
// name.
func (c *Controller) NewDirectSession() (*session.Session, error) {
	sess, err := c.store.Create(session.KindDirect, DefaultDirectName, "", "")
	if err != nil {
		return nil, err
	}
	c.logEvent(log.LogEvent{Event: log.EventSessionCreated, SessionID: sess.ID, Kind: string(sess.Kind)})
	return sess, nil
}

// UploadDocument creates a document session for the file at path and
// submits it to the ingest endpoint. The session is named after the
// file with its extension stripped and seeded with an "Uploaded:" user
// message. On failure the session keeps only the seeded message; no
// partial assistant message is appended.
func (c *Controller) UploadDocument(ctx context.Context, path string) (*session.Session, error) {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	defer f.Close()

	sess, err := c.store.Create(session.KindDocument, name, base, "Uploaded: "+base)
	if err != nil {
		return nil, err
	}
	c.logEvent(log.LogEvent{Event: log.EventSessionCreated, SessionID: sess.ID, Kind: string(sess.Kind), FileName: base})

	remoteID, err := c.ensureRemoteID(ctx, sess)
	if err != nil {
		c.logEvent(log.LogEvent{Event: log.EventUploadFailed, SessionID: sess.ID, FileName: base, Error: err.Error()})
		return sess, err
	}

	resp, err := c.client.Upload(ctx, remoteID, base, f)
	if err != nil {
		c.logEvent(log.LogEvent{Event: log.EventUploadFailed, SessionID: sess.ID, FileName: base, Error: err.Error()})
		return sess, err
	}

	content := scope.MergeFollowUp(resp.Content, resp.FollowUpQuestion)
	sess, err = c.store.Append(sess.ID, session.NewMessage(session.RoleAssistant, content))
	if err != nil {
		return sess, err
	}

	c.logEvent(log.LogEvent{Event: log.EventUploadComplete, SessionID: sess.ID, FileName: base, Stage: resp.CurrentStage})
	return sess, nil
}

// SendTurn submits one chat turn. The user message is appended before
// the call (optimistic); a failed call appends exactly one synthetic
// assistant message and still returns the error so the caller can
// notify the user. The first turn of a direct session goes to the
// initial-input endpoint, every other turn to the input endpoint.
func (c *Controller) SendTurn(ctx context.Context, sessionID, text string) (*session.Session, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	sess := c.store.Get(sessionID)
	if sess == nil {
		return nil, session.ErrSessionNotFound
	}

	firstTurn := sess.Kind == session.KindDirect && len(sess.Messages) == 0

	// A direct session still carrying the default name takes its name
	// from the first message.
	if firstTurn && (sess.Name == "" || sess.Name == DefaultDirectName) {
		if err := c.store.Rename(sess.ID, deriveName(text)); err != nil {
			return nil, err
		}
	}

	sess, err := c.store.Append(sess.ID, session.NewMessage(session.RoleUser, text))
	if err != nil {
		return nil, err
	}

	endpoint := "input"
	if firstTurn {
		endpoint = "initial-input"
	}

	resp, callErr := c.callTurn(ctx, sess, text, firstTurn)
	if callErr != nil {
		sess, err = c.store.Append(sess.ID, session.NewMessage(session.RoleAssistant, connectivityReply))
		if err != nil {
			return sess, err
		}
		c.logEvent(log.LogEvent{Event: log.EventTurnFailed, SessionID: sess.ID, Endpoint: endpoint, Error: callErr.Error()})
		return sess, callErr
	}

	content := scope.MergeFollowUp(resp.Content, resp.FollowUpQuestion)
	sess, err = c.store.Append(sess.ID, session.NewMessage(session.RoleAssistant, content))
	if err != nil {
		return sess, err
	}

	c.logEvent(log.LogEvent{Event: log.EventTurnSent, SessionID: sess.ID, Endpoint: endpoint, Stage: resp.CurrentStage})
	return sess, nil
}

func (c *Controller) callTurn(ctx context.Context, sess *session.Session, text string, firstTurn bool) (*api.TurnResponse, error) {
	remoteID, err := c.ensureRemoteID(ctx, sess)
	if err != nil {
		return nil, err
	}

	if firstTurn {
		return c.client.SendInitial(ctx, remoteID, text)
	}
	return c.client.Send(ctx, remoteID, text)
}

// SendVoiceTurn submits a recorded audio file as a turn. The backend's
// transcription becomes the user message; like uploads, a failed call
// appends nothing.
func (c *Controller) SendVoiceTurn(ctx context.Context, sessionID, audioPath string) (*session.Session, error) {
	sess := c.store.Get(sessionID)
	if sess == nil {
		return nil, session.ErrSessionNotFound
	}

	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("opening audio file: %w", err)
	}
	defer f.Close()

	remoteID, err := c.ensureRemoteID(ctx, sess)
	if err != nil {
		return sess, err
	}

	resp, err := c.client.SendVoice(ctx, remoteID, filepath.Base(audioPath), f)
	if err != nil {
		c.logEvent(log.LogEvent{Event: log.EventTurnFailed, SessionID: sess.ID, Endpoint: "voice-input", Error: err.Error()})
		return sess, err
	}

	transcript := resp.TranscribedText
	if transcript == "" {
		transcript = "[voice message]"
	}
	if _, err := c.store.Append(sess.ID, session.NewMessage(session.RoleUser, transcript)); err != nil {
		return sess, err
	}

	content := scope.MergeFollowUp(resp.Content, resp.FollowUpQuestion)
	sess, err = c.store.Append(sess.ID, session.NewMessage(session.RoleAssistant, content))
	if err != nil {
		return sess, err
	}

	c.logEvent(log.LogEvent{Event: log.EventVoiceSent, SessionID: sess.ID, Stage: resp.CurrentStage})
	return sess, nil
}

// DeleteSession removes a session from the store. The display layer is
// responsible for navigating away when the active session is deleted.
func (c *Controller) DeleteSession(sessionID string) error {
	if err := c.store.Remove(sessionID); err != nil {
		return err
	}
	c.logEvent(log.LogEvent{Event: log.EventSessionDeleted, SessionID: sessionID})
	return nil
}

// ensureRemoteID returns the backend session id, asking the backend for
// one on first use and caching it on the session.
func (c *Controller) ensureRemoteID(ctx context.Context, sess *session.Session) (string, error) {
	if sess.RemoteID != "" {
		return sess.RemoteID, nil
	}

	remoteID, err := c.client.CreateSession(ctx)
	if err != nil {
		return "", err
	}
	if err := c.store.SetRemoteID(sess.ID, remoteID); err != nil {
		return "", err
	}
	return remoteID, nil
}

func (c *Controller) logEvent(event log.LogEvent) {
	if c.logger != nil {
		_ = c.logger.Append(event)
	}
}

// deriveName truncates the first message into a session label.
func deriveName(text string) string {
	runes := []rune(text)
	if len(runes) <= maxDerivedNameLen {
		return text
	}
	return string(runes[:maxDerivedNameLen]) + "..."
}
