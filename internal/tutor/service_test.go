package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/proglot/tutor/internal/ai"
	"github.com/proglot/tutor/internal/transcript"
)

// scriptedProvider records every call and replies from a fixed script.
type scriptedProvider struct {
	replies []string
	err     error
	system  string
	calls   [][]ai.Message
}

func (p *scriptedProvider) Chat(ctx context.Context, messages []ai.Message) (string, error) {
	_ = ctx
	p.calls = append(p.calls, append([]ai.Message(nil), messages...))
	if p.err != nil {
		return "", p.err
	}
	if len(p.replies) == 0 {
		return "ok", nil
	}
	reply := p.replies[0]
	p.replies = p.replies[1:]
	return reply, nil
}

func newTestService(t *testing.T, prov *scriptedProvider, window int) (*Service, transcript.Store) {
	t.Helper()

	store := transcript.NewFileStore(t.TempDir())
	reg := ai.NewRegistry()
	reg.Register("scripted", func(ctx context.Context, systemInstruction string) (ai.Provider, error) {
		_ = ctx
		prov.system = systemInstruction
		return prov, nil
	})
	return NewService(store, reg, "scripted", window), store
}

func seedStore(t *testing.T, store transcript.Store, langCode string, n int) transcript.Transcript {
	t.Helper()

	tr := makeTranscript(n)
	if err := store.Save(context.Background(), langCode, tr); err != nil {
		t.Fatalf("seed save: %v", err)
	}
	return tr
}

func TestOpen_FreshLanguageColdStart(t *testing.T) {
	prov := &scriptedProvider{replies: []string{"Merhaba! Ben ProGlot."}}
	svc, store := newTestService(t, prov, 20)

	view, err := svc.Open(context.Background(), "It")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !view.Initialized {
		t.Fatal("expected session to be initialized after cold start")
	}
	if len(view.History) != 2 {
		t.Fatalf("expected 2 messages in session, got %d", len(view.History))
	}

	// The invisible trigger is recorded as the student turn.
	if view.History[0].Role != transcript.RoleUser ||
		!strings.Contains(view.History[0].Text(), "proficiency level") {
		t.Fatalf("unexpected trigger message: %+v", view.History[0])
	}
	if view.History[1].Role != transcript.RoleModel ||
		view.History[1].Text() != "Merhaba! Ben ProGlot." {
		t.Fatalf("unexpected greeting: %+v", view.History[1])
	}

	// Exactly 2 messages on disk.
	disk, err := store.Load(context.Background(), "It")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(disk) != 2 {
		t.Fatalf("expected 2 messages on disk, got %d", len(disk))
	}

	// Tutor persona is bound to the target language.
	if !strings.Contains(prov.system, "Italian (İtalyanca) 🇮🇹") {
		t.Fatalf("system instruction not parameterized: %q", prov.system)
	}
}

func TestOpen_ColdStartFiresExactlyOnce(t *testing.T) {
	prov := &scriptedProvider{}
	svc, _ := newTestService(t, prov, 20)

	if _, err := svc.Open(context.Background(), "It"); err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := svc.Open(context.Background(), "It"); err != nil {
		t.Fatalf("second open: %v", err)
	}
	if len(prov.calls) != 1 {
		t.Fatalf("expected exactly 1 model call, got %d", len(prov.calls))
	}
}

func TestOpen_ColdStartFailureRetriedOnNextOpen(t *testing.T) {
	prov := &scriptedProvider{err: fmt.Errorf("gemini: %w: outage", ai.ErrUnavailable)}
	svc, store := newTestService(t, prov, 20)

	view, err := svc.Open(context.Background(), "It")
	if err == nil {
		t.Fatal("expected cold start error")
	}
	if !errors.Is(err, ai.ErrUnavailable) {
		t.Fatalf("expected unavailable classification, got %v", err)
	}
	if view.Initialized {
		t.Fatal("failed cold start must leave the session uninitialized")
	}

	// Nothing persisted on failure.
	disk, _ := store.Load(context.Background(), "It")
	if len(disk) != 0 {
		t.Fatalf("expected empty disk record, got %d messages", len(disk))
	}

	// Next open retries and succeeds.
	prov.err = nil
	view, err = svc.Open(context.Background(), "It")
	if err != nil {
		t.Fatalf("retry open: %v", err)
	}
	if !view.Initialized || len(view.History) != 2 {
		t.Fatalf("expected initialized session with 2 messages, got init=%v len=%d",
			view.Initialized, len(view.History))
	}
}

func TestOpen_ExistingHistorySkipsColdStart(t *testing.T) {
	prov := &scriptedProvider{}
	svc, store := newTestService(t, prov, 20)
	full := seedStore(t, store, "Es", 25)

	view, err := svc.Open(context.Background(), "Es")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !view.Initialized {
		t.Fatal("existing history must initialize immediately")
	}
	if len(prov.calls) != 0 {
		t.Fatalf("no cold start expected, got %d model calls", len(prov.calls))
	}

	// Session holds exactly the last 20 of the 25 persisted messages.
	if len(view.History) != 20 {
		t.Fatalf("expected windowed history of 20, got %d", len(view.History))
	}
	for i, m := range view.History {
		if m.Text() != full[i+5].Text() {
			t.Fatalf("history[%d] = %q, want %q", i, m.Text(), full[i+5].Text())
		}
	}
}

func TestSend_AppendsPairAndPersistsSessionState(t *testing.T) {
	prov := &scriptedProvider{replies: []string{"Ciao! Molto bene."}}
	svc, store := newTestService(t, prov, 20)
	seedStore(t, store, "It", 25)

	reply, err := svc.Send(context.Background(), "It", "Ciao")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply != "Ciao! Molto bene." {
		t.Fatalf("unexpected reply: %q", reply)
	}

	// The provider saw the 20 windowed messages plus the new turn.
	if len(prov.calls) != 1 {
		t.Fatalf("expected 1 model call, got %d", len(prov.calls))
	}
	sent := prov.calls[0]
	if len(sent) != 21 {
		t.Fatalf("expected 21 messages sent to provider, got %d", len(sent))
	}
	if last := sent[len(sent)-1]; last.Role != transcript.RoleUser || last.Text != "Ciao" {
		t.Fatalf("unexpected final provider message: %+v", last)
	}

	// Disk now holds the session state: 20 loaded + 2 new. The record shrank
	// from 25 to 22, which is the documented save-the-session-state behavior.
	disk, err := store.Load(context.Background(), "It")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(disk) != 22 {
		t.Fatalf("expected 22 messages on disk, got %d", len(disk))
	}
	if disk[20].Text() != "Ciao" || disk[20].Role != transcript.RoleUser {
		t.Fatalf("unexpected persisted user turn: %+v", disk[20])
	}
	if disk[21].Text() != "Ciao! Molto bene." || disk[21].Role != transcript.RoleModel {
		t.Fatalf("unexpected persisted model turn: %+v", disk[21])
	}
}

func TestSend_QuotaFailureLeavesTranscriptUntouched(t *testing.T) {
	prov := &scriptedProvider{}
	svc, store := newTestService(t, prov, 20)
	seedStore(t, store, "It", 25)

	view, err := svc.History(context.Background(), "It")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	before := len(view.History)

	prov.err = fmt.Errorf("gemini: %w: out of quota", ai.ErrQuotaExceeded)
	if _, err := svc.Send(context.Background(), "It", "Ciao"); !errors.Is(err, ai.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}

	// Neither the session nor the disk record moved.
	view, err = svc.History(context.Background(), "It")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(view.History) != before {
		t.Fatalf("session history mutated on failure: %d -> %d", before, len(view.History))
	}
	disk, _ := store.Load(context.Background(), "It")
	if len(disk) != 25 {
		t.Fatalf("disk record mutated on failure: got %d messages", len(disk))
	}
}

func TestClear_ConfirmationMismatchChangesNothing(t *testing.T) {
	prov := &scriptedProvider{}
	svc, store := newTestService(t, prov, 20)
	seedStore(t, store, "It", 4)

	view, err := svc.History(context.Background(), "It")
	if err != nil {
		t.Fatalf("history: %v", err)
	}

	if err := svc.Clear(context.Background(), "It", "yes please"); !errors.Is(err, ErrConfirmationMismatch) {
		t.Fatalf("expected confirmation mismatch, got %v", err)
	}

	disk, _ := store.Load(context.Background(), "It")
	if len(disk) != 4 {
		t.Fatalf("record deleted despite mismatch: %d messages left", len(disk))
	}

	// Active session untouched: same handle.
	after, err := svc.History(context.Background(), "It")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if after.SessionID != view.SessionID {
		t.Fatal("active session replaced despite mismatch")
	}
}

func TestClear_ConfirmedDeletesRecordAndSession(t *testing.T) {
	prov := &scriptedProvider{}
	svc, store := newTestService(t, prov, 20)
	seedStore(t, store, "It", 4)

	view, err := svc.History(context.Background(), "It")
	if err != nil {
		t.Fatalf("history: %v", err)
	}

	// Phrase is trimmed and case-insensitive.
	if err := svc.Clear(context.Background(), "It", "  DELETE "); err != nil {
		t.Fatalf("clear: %v", err)
	}

	disk, _ := store.Load(context.Background(), "It")
	if len(disk) != 0 {
		t.Fatalf("expected empty record after clear, got %d messages", len(disk))
	}

	// Next access re-enters loading with a fresh, empty session.
	after, err := svc.History(context.Background(), "It")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if after.SessionID == view.SessionID {
		t.Fatal("expected a fresh session after clear")
	}
	if len(after.History) != 0 || after.Initialized {
		t.Fatalf("expected empty uninitialized session, got len=%d init=%v",
			len(after.History), after.Initialized)
	}
}

func TestLanguageSwitchReplacesSession(t *testing.T) {
	prov := &scriptedProvider{}
	svc, store := newTestService(t, prov, 20)
	seedStore(t, store, "It", 2)
	seedStore(t, store, "Es", 6)

	it, err := svc.History(context.Background(), "It")
	if err != nil {
		t.Fatalf("history It: %v", err)
	}
	es, err := svc.History(context.Background(), "Es")
	if err != nil {
		t.Fatalf("history Es: %v", err)
	}

	if it.SessionID == es.SessionID {
		t.Fatal("language switch must swap the session wholesale")
	}
	if len(es.History) != 6 {
		t.Fatalf("expected 6 messages for Es, got %d", len(es.History))
	}
	if !strings.Contains(prov.system, "Spanish (İspanyolca) 🇪🇸") {
		t.Fatalf("system instruction not rebound on switch: %q", prov.system)
	}
}

func TestEnsure_MalformedSeedFallsBackToEmpty(t *testing.T) {
	prov := &scriptedProvider{}
	svc, store := newTestService(t, prov, 20)

	bad := transcript.Transcript{
		{Role: "narrator", Parts: []transcript.Part{{Text: "??"}}},
	}
	if err := store.Save(context.Background(), "Fr", bad); err != nil {
		t.Fatalf("seed save: %v", err)
	}

	view, err := svc.History(context.Background(), "Fr")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(view.History) != 0 {
		t.Fatalf("malformed seed should be dropped, got %d messages", len(view.History))
	}
	// History existed on disk, so no cold start is owed.
	if !view.Initialized {
		t.Fatal("expected initialized=true: the track has recorded history")
	}
}

func TestUnknownLanguageRejected(t *testing.T) {
	prov := &scriptedProvider{}
	svc, _ := newTestService(t, prov, 20)

	if _, err := svc.Open(context.Background(), "Xx"); !errors.Is(err, ErrUnknownLanguage) {
		t.Fatalf("expected unknown language error, got %v", err)
	}
	if _, err := svc.Send(context.Background(), "Xx", "hi"); !errors.Is(err, ErrUnknownLanguage) {
		t.Fatalf("expected unknown language error, got %v", err)
	}
	if err := svc.Clear(context.Background(), "Xx", "delete"); !errors.Is(err, ErrUnknownLanguage) {
		t.Fatalf("expected unknown language error, got %v", err)
	}
}

func TestExport_UsesFullDiskTranscript(t *testing.T) {
	prov := &scriptedProvider{}
	svc, store := newTestService(t, prov, 20)
	seedStore(t, store, "It", 25)

	// Session only holds the window, but export must carry all 25 messages.
	if _, err := svc.History(context.Background(), "It"); err != nil {
		t.Fatalf("history: %v", err)
	}

	out, err := svc.Export(context.Background(), "It")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "msg-0") {
		t.Fatal("export missing the oldest message: window must be bypassed")
	}
	if !strings.Contains(out, "msg-24") {
		t.Fatal("export missing the newest message")
	}
}
