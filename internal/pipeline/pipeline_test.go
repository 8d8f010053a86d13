package pipeline

import (
	"context"
	"errors"
	"testing"

	"pine-backend/internal/llm"
	"pine-backend/internal/mailer"
	"pine-backend/pkg/models"
)

type fakeGenerator struct {
	reply string
	err   error
	calls int
}

func (f *fakeGenerator) GenerateReply(ctx context.Context, message string) (string, error) {
	f.calls++
	return f.reply, f.err
}

type fakeLedger struct {
	rows [][]string
	err  error
}

func (f *fakeLedger) AppendRow(ctx context.Context, row []string) error {
	f.rows = append(f.rows, row)
	return f.err
}

type fakeArchive struct {
	saved []*models.Lead
	err   error
}

func (f *fakeArchive) SaveLead(lead *models.Lead) error {
	f.saved = append(f.saved, lead)
	return f.err
}

type fakeNotifier struct {
	ownerCalls   int
	visitorCalls int
	withReply    bool
	ownerErr     error
	visitorErr   error
}

func (f *fakeNotifier) NotifyOwner(lead *models.Lead, withReply bool) error {
	f.ownerCalls++
	f.withReply = withReply
	return f.ownerErr
}

func (f *fakeNotifier) ConfirmVisitor(lead *models.Lead) error {
	f.visitorCalls++
	return f.visitorErr
}

func stageResult(t *testing.T, results []StageResult, stage string) StageResult {
	t.Helper()
	for _, r := range results {
		if r.Stage == stage {
			return r
		}
	}
	t.Fatalf("stage %s not present in results", stage)
	return StageResult{}
}

func TestProcessAssistFlow(t *testing.T) {
	gen := &fakeGenerator{reply: "Thanks for asking!"}
	ledger := &fakeLedger{}
	archive := &fakeArchive{}
	notifier := &fakeNotifier{}
	p := &Pipeline{Generator: gen, Ledger: ledger, Archive: archive, Notifier: notifier}

	lead := models.NewLead("Al", "al@x.com", "Pricing?", "")
	results := p.Process(context.Background(), lead, Options{GenerateReply: true, AppendLedger: true})

	if lead.ReplyText != "Thanks for asking!" {
		t.Errorf("expected reply on lead, got %q", lead.ReplyText)
	}
	if got := stageResult(t, results, "generate").Status; got != StageSucceeded {
		t.Errorf("generate: expected succeeded, got %s", got)
	}
	if len(ledger.rows) != 1 {
		t.Fatalf("expected one ledger row, got %d", len(ledger.rows))
	}
	if ledger.rows[0][5] != "Thanks for asking!" {
		t.Errorf("ledger row must carry the reply, got %q", ledger.rows[0][5])
	}
	if len(archive.saved) != 1 {
		t.Errorf("expected one archived lead, got %d", len(archive.saved))
	}
	if notifier.ownerCalls != 1 || !notifier.withReply {
		t.Errorf("expected one reply-bearing owner alert, got calls=%d withReply=%v",
			notifier.ownerCalls, notifier.withReply)
	}
	if notifier.visitorCalls != 0 {
		t.Errorf("assist flow must not confirm the visitor, got %d calls", notifier.visitorCalls)
	}
}

func TestProcessLedgerFailureDoesNotStopPipeline(t *testing.T) {
	ledger := &fakeLedger{err: errors.New("quota exceeded")}
	notifier := &fakeNotifier{}
	p := &Pipeline{
		Generator: &fakeGenerator{reply: "ok"},
		Ledger:    ledger,
		Notifier:  notifier,
	}

	lead := models.NewLead("", "", "hi", "")
	results := p.Process(context.Background(), lead, Options{GenerateReply: true, AppendLedger: true})

	if got := stageResult(t, results, "ledger").Status; got != StageFailed {
		t.Errorf("ledger: expected failed, got %s", got)
	}
	if notifier.ownerCalls != 1 {
		t.Error("owner must still be notified after a ledger failure")
	}
}

func TestProcessOwnerFailureStillConfirmsVisitor(t *testing.T) {
	notifier := &fakeNotifier{ownerErr: errors.New("smtp down")}
	p := &Pipeline{Notifier: notifier}

	lead := models.NewLead("", "al@x.com", "hi", "")
	results := p.Process(context.Background(), lead, Options{ConfirmVisitor: true})

	if got := stageResult(t, results, "notify_owner").Status; got != StageFailed {
		t.Errorf("notify_owner: expected failed, got %s", got)
	}
	if notifier.visitorCalls != 1 {
		t.Error("visitor confirmation must be attempted after an owner failure")
	}
	if got := stageResult(t, results, "notify_visitor").Status; got != StageSucceeded {
		t.Errorf("notify_visitor: expected succeeded, got %s", got)
	}
}

func TestProcessOwnerNotConfiguredSkips(t *testing.T) {
	notifier := &fakeNotifier{ownerErr: mailer.ErrOwnerNotConfigured}
	p := &Pipeline{Notifier: notifier}

	lead := models.NewLead("", "", "hi", "")
	results := p.Process(context.Background(), lead, Options{})

	if got := stageResult(t, results, "notify_owner").Status; got != StageSkipped {
		t.Errorf("notify_owner: expected skipped without OWNER_EMAIL, got %s", got)
	}
}

func TestProcessVisitorSkippedWithoutContact(t *testing.T) {
	notifier := &fakeNotifier{}
	p := &Pipeline{Notifier: notifier}

	lead := models.NewLead("", "", "hi", "")
	results := p.Process(context.Background(), lead, Options{ConfirmVisitor: true})

	if got := stageResult(t, results, "notify_visitor").Status; got != StageSkipped {
		t.Errorf("notify_visitor: expected skipped, got %s", got)
	}
	if notifier.visitorCalls != 0 {
		t.Error("no confirmation should be sent without a contact address")
	}
}

func TestProcessGeneratorNotConfigured(t *testing.T) {
	gen := &fakeGenerator{reply: llm.FallbackNotConfigured, err: llm.ErrNotConfigured}
	p := &Pipeline{Generator: gen}

	lead := models.NewLead("", "", "hi", "")
	results := p.Process(context.Background(), lead, Options{GenerateReply: true})

	if got := stageResult(t, results, "generate").Status; got != StageSkipped {
		t.Errorf("generate: expected skipped, got %s", got)
	}
	if lead.ReplyText != llm.FallbackNotConfigured {
		t.Errorf("expected fallback reply, got %q", lead.ReplyText)
	}
}

func TestProcessNilCollaboratorsSkip(t *testing.T) {
	p := &Pipeline{}

	lead := models.NewLead("", "al@x.com", "hi", "")
	results := p.Process(context.Background(), lead, Options{
		GenerateReply:  true,
		AppendLedger:   true,
		ConfirmVisitor: true,
	})

	for _, stage := range []string{"generate", "ledger", "archive", "notify_owner", "notify_visitor"} {
		if got := stageResult(t, results, stage).Status; got != StageSkipped {
			t.Errorf("%s: expected skipped, got %s", stage, got)
		}
	}
	if lead.ReplyText != llm.FallbackNotConfigured {
		t.Errorf("generate with no provider must fall back, got %q", lead.ReplyText)
	}
}

func TestProcessAppendIsNotDeduplicating(t *testing.T) {
	ledger := &fakeLedger{}
	p := &Pipeline{Ledger: ledger}

	lead := models.NewLead("", "", "hi", "")
	p.Process(context.Background(), lead, Options{AppendLedger: true})
	p.Process(context.Background(), lead, Options{AppendLedger: true})

	if len(ledger.rows) != 2 {
		t.Errorf("replaying an append must produce two rows, got %d", len(ledger.rows))
	}
}
