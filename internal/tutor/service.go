// Package tutor owns the per-language chat session lifecycle: loading the
// durable transcript, windowing it into a live conversation, the one-shot
// cold-start greeting, and the clear/export actions around it.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/proglot/tutor/internal/ai"
	"github.com/proglot/tutor/internal/common"
	"github.com/proglot/tutor/internal/transcript"
)

// ClearConfirmation is the literal phrase required before a transcript is
// deleted (compared case-insensitively after trimming).
const ClearConfirmation = "delete"

// DefaultWindowSize bounds how many persisted messages seed a new session.
const DefaultWindowSize = 20

var (
	ErrUnknownLanguage      = errors.New("unknown language code")
	ErrConfirmationMismatch = errors.New("confirmation phrase does not match")
)

// Session is the live conversation bound to one language. It is swapped
// wholesale on language switch or clear, never partially mutated from
// outside.
type Session struct {
	ID          string
	Lang        Language
	History     transcript.Transcript
	Initialized bool

	provider ai.Provider
}

// View is the read-only snapshot handed to the rendering layer.
type View struct {
	SessionID   string                `json:"session_id"`
	Language    Language              `json:"language"`
	History     transcript.Transcript `json:"history"`
	Initialized bool                  `json:"initialized"`
}

// Service is the session controller. One logical student at a time: the
// mutex serializes turns, and a single active session is owned here rather
// than living in ambient state.
type Service struct {
	store        transcript.Store
	registry     *ai.Registry
	providerName string
	windowSize   int

	mu     sync.Mutex
	active *Session
}

func NewService(store transcript.Store, registry *ai.Registry, providerName string, windowSize int) *Service {
	if windowSize <= 0 || windowSize > 100 {
		windowSize = DefaultWindowSize
	}
	return &Service{
		store:        store,
		registry:     registry,
		providerName: providerName,
		windowSize:   windowSize,
	}
}

// Open makes sure a session exists for langCode and, when the track has no
// recorded history yet, fires the single cold-start turn. A cold-start
// failure still returns the session view so the student sees an empty
// lesson; the next Open retries the greeting.
func (s *Service) Open(ctx context.Context, langCode string) (View, error) {
	lang, ok := LanguageByCode(langCode)
	if !ok {
		return View{}, ErrUnknownLanguage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.ensure(ctx, lang)
	if err != nil {
		return View{}, err
	}
	if !sess.Initialized {
		if err := s.coldStart(ctx, sess); err != nil {
			return snapshot(sess), fmt.Errorf("cold start: %w", err)
		}
	}
	return snapshot(sess), nil
}

// History returns the current session view without triggering the cold
// start.
func (s *Service) History(ctx context.Context, langCode string) (View, error) {
	lang, ok := LanguageByCode(langCode)
	if !ok {
		return View{}, ErrUnknownLanguage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.ensure(ctx, lang)
	if err != nil {
		return View{}, err
	}
	return snapshot(sess), nil
}

// Send forwards one student turn to the model. On success the exchange is
// appended and the entire in-memory session history is written back — the
// persisted record becomes exactly what the session holds, which can shrink
// a long transcript to the window size after a truncating load. Deliberate
// reproduction of the upstream behavior; see DESIGN.md. On failure nothing
// is appended or persisted.
func (s *Service) Send(ctx context.Context, langCode, text string) (string, error) {
	lang, ok := LanguageByCode(langCode)
	if !ok {
		return "", ErrUnknownLanguage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.ensure(ctx, lang)
	if err != nil {
		return "", err
	}

	reply, err := sess.provider.Chat(ctx, providerMessages(sess.History, text))
	if err != nil {
		return "", err
	}

	sess.History = append(sess.History,
		transcript.New(transcript.RoleUser, text),
		transcript.New(transcript.RoleModel, reply),
	)
	sess.Initialized = true
	s.persist(ctx, sess)
	return reply, nil
}

// Clear deletes the per-language record and discards the active session, but
// only when confirm matches the required literal. A mismatch changes
// nothing.
func (s *Service) Clear(ctx context.Context, langCode, confirm string) error {
	lang, ok := LanguageByCode(langCode)
	if !ok {
		return ErrUnknownLanguage
	}
	if strings.ToLower(strings.TrimSpace(confirm)) != ClearConfirmation {
		return ErrConfirmationMismatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(ctx, lang.Code); err != nil {
		log.Printf("clear history lang=%s err=%v", lang.Code, err)
	}
	if s.active != nil && s.active.Lang.Code == lang.Code {
		s.active = nil
	}
	return nil
}

// Export renders the full on-disk transcript, bypassing the session window.
func (s *Service) Export(ctx context.Context, langCode string) (string, error) {
	lang, ok := LanguageByCode(langCode)
	if !ok {
		return "", ErrUnknownLanguage
	}

	full, err := s.store.Load(ctx, lang.Code)
	if err != nil {
		log.Printf("load history for export lang=%s err=%v", lang.Code, err)
	}
	return FormatExport(full, lang.Label), nil
}

// ensure returns the active session, replacing it when none exists or the
// bound language differs. Callers hold s.mu.
func (s *Service) ensure(ctx context.Context, lang Language) (*Session, error) {
	if s.active != nil && s.active.Lang.Code == lang.Code {
		return s.active, nil
	}

	full, err := s.store.Load(ctx, lang.Code)
	if err != nil {
		log.Printf("load history lang=%s err=%v", lang.Code, err)
		full = transcript.Transcript{}
	}

	seed := Window(full, s.windowSize)
	if !validSeed(seed) {
		// A malformed seed must not sink the whole session.
		log.Printf("discarding malformed seed history lang=%s", lang.Code)
		seed = transcript.Transcript{}
	}

	provider, err := s.registry.Get(ctx, s.providerName, SystemInstruction(lang.Label))
	if err != nil {
		return nil, err
	}

	id, err := common.NewULID()
	if err != nil {
		return nil, err
	}

	s.active = &Session{
		ID:          id,
		Lang:        lang,
		History:     append(transcript.Transcript(nil), seed...),
		Initialized: len(full) > 0,
		provider:    provider,
	}
	return s.active, nil
}

// coldStart sends the invisible lesson-opening instruction. The trigger is
// recorded as a student turn alongside the greeting, so a fresh track ends
// its first exchange with exactly two persisted messages. Callers hold s.mu.
func (s *Service) coldStart(ctx context.Context, sess *Session) error {
	prompt := ColdStartPrompt(sess.Lang.Label)
	reply, err := sess.provider.Chat(ctx, providerMessages(sess.History, prompt))
	if err != nil {
		return err
	}

	sess.History = append(sess.History,
		transcript.New(transcript.RoleUser, prompt),
		transcript.New(transcript.RoleModel, reply),
	)
	sess.Initialized = true
	s.persist(ctx, sess)
	return nil
}

// persist writes the whole session history back. Write failures are logged
// and swallowed: the in-memory session stays authoritative for the rest of
// the process lifetime.
func (s *Service) persist(ctx context.Context, sess *Session) {
	if err := s.store.Save(ctx, sess.Lang.Code, sess.History); err != nil {
		log.Printf("save history lang=%s err=%v (in-memory session remains authoritative)", sess.Lang.Code, err)
	}
}

func providerMessages(history transcript.Transcript, newText string) []ai.Message {
	out := make([]ai.Message, 0, len(history)+1)
	for _, m := range history {
		out = append(out, ai.Message{Role: m.Role, Text: m.Text()})
	}
	return append(out, ai.Message{Role: transcript.RoleUser, Text: newText})
}

func validSeed(t transcript.Transcript) bool {
	for _, m := range t {
		if m.Role != transcript.RoleUser && m.Role != transcript.RoleModel {
			return false
		}
		if len(m.Parts) == 0 {
			return false
		}
	}
	return true
}

func snapshot(sess *Session) View {
	return View{
		SessionID:   sess.ID,
		Language:    sess.Lang,
		History:     append(transcript.Transcript(nil), sess.History...),
		Initialized: sess.Initialized,
	}
}
