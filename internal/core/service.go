package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExclusionChecker decides whether a customer must not get automatic replies
type ExclusionChecker interface {
	IsExcluded(email string) bool
}

// TriageService runs the fetch, classify, respond and export pipeline
type TriageService struct {
	helpdesk   Helpdesk
	classifier *Classifier
	responder  *Responder
	store      HistoryStore
	exclusions ExclusionChecker
	logger     *zap.Logger
	batchSize  int
}

// NewTriageService creates a new triage service. exclusions may be nil.
func NewTriageService(
	helpdesk Helpdesk,
	classifier *Classifier,
	responder *Responder,
	store HistoryStore,
	exclusions ExclusionChecker,
	logger *zap.Logger,
	batchSize int,
) *TriageService {
	return &TriageService{
		helpdesk:   helpdesk,
		classifier: classifier,
		responder:  responder,
		store:      store,
		exclusions: exclusions,
		logger:     logger,
		batchSize:  batchSize,
	}
}

// Run performs one triage pass. A failing ticket is recorded as failed and
// the run moves on. Only fetch and export failures are returned as errors.
func (s *TriageService) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	logger := s.logger.With(zap.String("run_id", report.RunID))

	tickets, err := s.helpdesk.FetchOpenTickets(ctx, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch open tickets: %w", err)
	}
	logger.Info("Fetched open tickets", zap.Int("count", len(tickets)))

	recorder := NewHistoryRecorder(s.store, logger)

	// The whole batch is classified before any reply is sent
	outputs := make([]*Completion, len(tickets))
	classifyErrs := make([]error, len(tickets))
	for i, ticket := range tickets {
		outputs[i], classifyErrs[i] = s.classifier.Classify(ctx, ticket)
		if classifyErrs[i] != nil {
			logger.Error("Failed to classify ticket",
				zap.Int64("ticket_id", ticket.ID),
				zap.Error(classifyErrs[i]))
		}
	}

	for i, ticket := range tickets {
		result := s.respond(ctx, logger, ticket, classifyErrs[i])
		report.Results = append(report.Results, result)
		recorder.Record(ticket, outputs[i], result.Outcome, result.MacroID, result.Err)
	}

	report.FinishedAt = time.Now()

	// Replies already sent must be recorded even when the run was interrupted
	if err := recorder.Export(context.WithoutCancel(ctx), report.RunID); err != nil {
		return report, err
	}

	counts := report.Counts()
	logger.Info("Triage run complete",
		zap.Int("tickets", len(report.Results)),
		zap.Int("replied", counts[OutcomeReplied]),
		zap.Int("unhandled", counts[OutcomeUnhandled]),
		zap.Int("excluded", counts[OutcomeExcluded]),
		zap.Int("failed", counts[OutcomeFailed]),
		zap.Duration("duration", report.Duration()))

	return report, nil
}

func (s *TriageService) respond(ctx context.Context, logger *zap.Logger, ticket *Ticket, classifyErr error) TicketResult {
	if classifyErr != nil {
		return TicketResult{Ticket: ticket, Outcome: OutcomeFailed, Err: classifyErr}
	}

	if s.exclusions != nil && s.exclusions.IsExcluded(ticket.CustomerEmail) {
		logger.Info("Skipping reply for excluded customer domain",
			zap.Int64("ticket_id", ticket.ID),
			zap.String("outcome", string(OutcomeExcluded)))
		return TicketResult{Ticket: ticket, Outcome: OutcomeExcluded}
	}

	outcome, macroID, err := s.responder.Respond(ctx, ticket)
	if err != nil {
		logger.Error("Failed to respond to ticket",
			zap.Int64("ticket_id", ticket.ID),
			zap.String("classification", ticket.ClassificationLabel()),
			zap.Int64("macro_id", macroID),
			zap.Error(err))
	}

	return TicketResult{Ticket: ticket, Outcome: outcome, MacroID: macroID, Err: err}
}
