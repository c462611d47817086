package core

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const macroHTMLBodyPath = "result.ticket.comment.html_body"

// ReplyComment is the comment part of a ticket update
type ReplyComment struct {
	HTMLBody string `json:"html_body"`
	Public   bool   `json:"public"`
}

// ReplyTicket wraps the comment of a ticket update
type ReplyTicket struct {
	Comment ReplyComment `json:"comment"`
}

// ReplyPayload is the body sent to the helpdesk to answer a ticket
type ReplyPayload struct {
	Ticket ReplyTicket `json:"ticket"`
}

// BuildReplyPayload turns an applied macro body into an internal reply.
// The reply is never public, whatever the macro says.
func BuildReplyPayload(macroBody []byte) (*ReplyPayload, error) {
	if !gjson.ValidBytes(macroBody) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedMacro)
	}

	htmlBody := gjson.GetBytes(macroBody, macroHTMLBodyPath)
	if !htmlBody.Exists() {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedMacro, macroHTMLBodyPath)
	}
	if htmlBody.Type != gjson.String {
		return nil, fmt.Errorf("%w: %s is %s, not a string", ErrMalformedMacro, macroHTMLBodyPath, htmlBody.Type)
	}

	return &ReplyPayload{
		Ticket: ReplyTicket{
			Comment: ReplyComment{
				HTMLBody: htmlBody.String(),
				Public:   false,
			},
		},
	}, nil
}

// Responder answers classified tickets with canned macro replies
type Responder struct {
	helpdesk Helpdesk
	macros   MacroTable
	logger   *zap.Logger
	dryRun   bool
}

// NewResponder creates a new responder. In dry-run mode the reply is built
// but not submitted.
func NewResponder(helpdesk Helpdesk, macros MacroTable, logger *zap.Logger, dryRun bool) *Responder {
	return &Responder{
		helpdesk: helpdesk,
		macros:   macros,
		logger:   logger,
		dryRun:   dryRun,
	}
}

// Respond sends the macro reply matching the ticket's classification.
// Tickets with no known classification are left alone and reported as unhandled.
func (r *Responder) Respond(ctx context.Context, ticket *Ticket) (Outcome, int64, error) {
	macroID, ok := r.macros.Lookup(ticket.ClassificationLabel())
	if !ok {
		r.logger.Info("No macro for classification",
			zap.Int64("ticket_id", ticket.ID),
			zap.String("classification", ticket.ClassificationLabel()),
			zap.String("outcome", string(OutcomeUnhandled)))
		return OutcomeUnhandled, 0, nil
	}

	body, err := r.helpdesk.ApplyMacro(ctx, macroID)
	if err != nil {
		return OutcomeFailed, macroID, fmt.Errorf("failed to apply macro %d: %w", macroID, err)
	}

	payload, err := BuildReplyPayload(body)
	if err != nil {
		return OutcomeFailed, macroID, fmt.Errorf("failed to build reply from macro %d: %w", macroID, err)
	}

	if r.dryRun {
		r.logger.Info("Dry run, reply not submitted",
			zap.Int64("ticket_id", ticket.ID),
			zap.Int64("macro_id", macroID))
		return OutcomeReplied, macroID, nil
	}

	status, err := r.helpdesk.UpdateTicket(ctx, ticket.ID, payload)
	if err != nil {
		return OutcomeFailed, macroID, fmt.Errorf("failed to reply to ticket %d: %w", ticket.ID, err)
	}

	r.logger.Info("Reply submitted",
		zap.Int64("ticket_id", ticket.ID),
		zap.Int64("macro_id", macroID),
		zap.Int("status", status))

	return OutcomeReplied, macroID, nil
}
