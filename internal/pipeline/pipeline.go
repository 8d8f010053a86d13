package pipeline

import (
	"context"
	"errors"
	"log"
	"time"

	"pine-backend/internal/llm"
	"pine-backend/internal/mailer"
	"pine-backend/pkg/models"
)

// ReplyGenerator drafts a reply for the lead message. Implementations must
// always return a usable reply string; the error only describes degradation.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, message string) (string, error)
}

// LedgerWriter appends one flattened lead row to the remote spreadsheet.
type LedgerWriter interface {
	AppendRow(ctx context.Context, row []string) error
}

// Archiver keeps a local copy of every processed lead.
type Archiver interface {
	SaveLead(lead *models.Lead) error
}

// Notifier sends the owner alert and the optional visitor confirmation.
type Notifier interface {
	NotifyOwner(lead *models.Lead, withReply bool) error
	ConfirmVisitor(lead *models.Lead) error
}

// Publisher pushes processed leads to live dashboard clients.
type Publisher interface {
	PublishLead(lead *models.Lead)
}

type StageStatus string

const (
	StageSucceeded StageStatus = "succeeded"
	StageSkipped   StageStatus = "skipped"
	StageFailed    StageStatus = "failed"
)

// StageResult records the outcome of one best-effort stage for a lead.
type StageResult struct {
	Stage  string
	Status StageStatus
	Err    error
}

// Options selects which stages run for an intake route. The two routes share
// one pipeline instead of duplicating the fan-out.
type Options struct {
	GenerateReply  bool
	AppendLedger   bool
	ConfirmVisitor bool
}

// Pipeline runs a lead through Generate -> Persist -> Notify. Every stage is
// best-effort: a failure is logged, recorded in the stage results, and never
// stops the stages after it.
type Pipeline struct {
	Generator ReplyGenerator
	Ledger    LedgerWriter
	Archive   Archiver
	Notifier  Notifier
	Feed      Publisher
}

func (p *Pipeline) Process(ctx context.Context, lead *models.Lead, opts Options) []StageResult {
	var results []StageResult

	if opts.GenerateReply {
		results = append(results, p.generate(ctx, lead))
	}

	if opts.AppendLedger {
		results = append(results, p.appendLedger(ctx, lead))
	}

	results = append(results, p.archive(lead))
	results = append(results, p.notifyOwner(lead, opts.GenerateReply))

	if opts.ConfirmVisitor {
		results = append(results, p.confirmVisitor(lead))
	}

	if p.Feed != nil {
		p.Feed.PublishLead(lead)
	}

	for _, r := range results {
		if r.Err != nil {
			log.Printf("lead %s: stage %s %s: %v", lead.ID, r.Stage, r.Status, r.Err)
		} else {
			log.Printf("lead %s: stage %s %s", lead.ID, r.Stage, r.Status)
		}
	}

	return results
}

func (p *Pipeline) generate(ctx context.Context, lead *models.Lead) StageResult {
	if p.Generator == nil {
		lead.ReplyText = llm.FallbackNotConfigured
		return StageResult{Stage: "generate", Status: StageSkipped}
	}

	reply, err := p.Generator.GenerateReply(ctx, lead.Message)
	lead.ReplyText = reply

	switch {
	case err == nil:
		return StageResult{Stage: "generate", Status: StageSucceeded}
	case errors.Is(err, llm.ErrNotConfigured):
		return StageResult{Stage: "generate", Status: StageSkipped, Err: err}
	default:
		return StageResult{Stage: "generate", Status: StageFailed, Err: err}
	}
}

func (p *Pipeline) appendLedger(ctx context.Context, lead *models.Lead) StageResult {
	if p.Ledger == nil {
		return StageResult{Stage: "ledger", Status: StageSkipped}
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := p.Ledger.AppendRow(ctx, lead.LedgerRow()); err != nil {
		return StageResult{Stage: "ledger", Status: StageFailed, Err: err}
	}
	return StageResult{Stage: "ledger", Status: StageSucceeded}
}

func (p *Pipeline) archive(lead *models.Lead) StageResult {
	if p.Archive == nil {
		return StageResult{Stage: "archive", Status: StageSkipped}
	}
	if err := p.Archive.SaveLead(lead); err != nil {
		return StageResult{Stage: "archive", Status: StageFailed, Err: err}
	}
	return StageResult{Stage: "archive", Status: StageSucceeded}
}

func (p *Pipeline) notifyOwner(lead *models.Lead, withReply bool) StageResult {
	if p.Notifier == nil {
		return StageResult{Stage: "notify_owner", Status: StageSkipped}
	}
	if err := p.Notifier.NotifyOwner(lead, withReply); err != nil {
		if errors.Is(err, mailer.ErrOwnerNotConfigured) {
			return StageResult{Stage: "notify_owner", Status: StageSkipped, Err: err}
		}
		return StageResult{Stage: "notify_owner", Status: StageFailed, Err: err}
	}
	return StageResult{Stage: "notify_owner", Status: StageSucceeded}
}

func (p *Pipeline) confirmVisitor(lead *models.Lead) StageResult {
	if p.Notifier == nil || lead.Contact == "" {
		return StageResult{Stage: "notify_visitor", Status: StageSkipped}
	}
	if err := p.Notifier.ConfirmVisitor(lead); err != nil {
		return StageResult{Stage: "notify_visitor", Status: StageFailed, Err: err}
	}
	return StageResult{Stage: "notify_visitor", Status: StageSucceeded}
}
