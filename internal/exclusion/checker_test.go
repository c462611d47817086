package exclusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestIsExcluded(t *testing.T) {
	c := NewChecker([]string{" Ticket.IO ", "", "partner.de"}, zaptest.NewLogger(t))

	assert.True(t, c.IsExcluded("support@ticket.io"))
	assert.True(t, c.IsExcluded("Jane@TICKET.IO"))
	assert.True(t, c.IsExcluded("x@partner.de"))
	assert.False(t, c.IsExcluded("kunde@example.com"))
	assert.False(t, c.IsExcluded(""))
	assert.False(t, c.IsExcluded("no-at-sign"))
	assert.False(t, c.IsExcluded("trailing@"))
}

func TestEmptyCheckerExcludesNothing(t *testing.T) {
	c := NewChecker(nil, nil)

	assert.False(t, c.IsExcluded("support@ticket.io"))
}
