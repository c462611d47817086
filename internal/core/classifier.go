package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// TextProcessor prepares ticket text before it is embedded in a prompt
type TextProcessor interface {
	ProcessText(text string, maxSize int) string
}

// Classifier assigns a category label to tickets using a completion model
type Classifier struct {
	llmClient          LLMClient
	textProcessor      TextProcessor
	logger             *zap.Logger
	maxDescriptionSize int
	promptFormat       string
}

// NewClassifier creates a new classifier. textProcessor may be nil, in which
// case descriptions are embedded as they are.
func NewClassifier(
	llmClient LLMClient,
	textProcessor TextProcessor,
	logger *zap.Logger,
	maxDescriptionSize int,
) *Classifier {
	return &Classifier{
		llmClient:          llmClient,
		textProcessor:      textProcessor,
		logger:             logger,
		maxDescriptionSize: maxDescriptionSize,
		promptFormat:       classificationPrompt,
	}
}

// RenderPrompt embeds a ticket description into the classification prompt
func (c *Classifier) RenderPrompt(description string) string {
	if c.textProcessor != nil {
		description = c.textProcessor.ProcessText(description, c.maxDescriptionSize)
	}
	return fmt.Sprintf(c.promptFormat, description)
}

// Classify runs one ticket through the model and stores the trimmed output
// as its classification. The label is not checked against the known categories.
func (c *Classifier) Classify(ctx context.Context, ticket *Ticket) (*Completion, error) {
	prompt := c.RenderPrompt(ticket.Description)

	completion, err := c.llmClient.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to classify ticket %d: %w", ticket.ID, err)
	}

	ticket.Classify(strings.TrimSpace(completion.Text()))

	c.logger.Debug("Ticket classified",
		zap.Int64("ticket_id", ticket.ID),
		zap.String("classification", ticket.ClassificationLabel()),
		zap.String("model", completion.Model))

	return completion, nil
}

// ClassifyTickets classifies tickets one at a time in order and returns the
// same slice. The first model error stops processing and is returned.
// TriageService calls Classify per ticket instead so that one failure only
// marks that ticket as failed.
func (c *Classifier) ClassifyTickets(ctx context.Context, tickets []*Ticket) ([]*Ticket, error) {
	for _, ticket := range tickets {
		if _, err := c.Classify(ctx, ticket); err != nil {
			return tickets, err
		}
	}
	return tickets, nil
}
