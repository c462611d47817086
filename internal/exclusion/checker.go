package exclusion

import (
	"strings"

	"go.uber.org/zap"
)

// Checker tells whether a customer's email domain is excluded from automatic replies
type Checker struct {
	domains map[string]struct{}
	logger  *zap.Logger
}

// NewChecker creates a new exclusion checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := make(map[string]struct{}, len(domains))
	for _, domain := range domains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain != "" {
			normalized[domain] = struct{}{}
		}
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized exclusion checker", zap.Strings("domains", domains))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// IsExcluded reports whether the address belongs to an excluded domain.
// Tickets without an email contact are never excluded.
func (c *Checker) IsExcluded(email string) bool {
	if len(c.domains) == 0 {
		return false
	}

	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	domain := strings.ToLower(strings.TrimSpace(email[at+1:]))

	if _, ok := c.domains[domain]; ok {
		if c.logger != nil {
			c.logger.Debug("Domain is excluded",
				zap.String("domain", domain),
				zap.String("email", email))
		}
		return true
	}

	return false
}
