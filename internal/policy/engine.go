// Package policy decides which postings are relevant to a category.
package policy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"jobherald/internal/domain"
)

// Oracle answers a natural-language relevance question. Implementations are
// expected to be unreliable: any error or malformed answer is normalized to
// rejection by the engine, never propagated.
type Oracle interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Engine evaluates postings against category policies. The company blacklist
// and role denylist are global and loaded once at startup; everything except
// the oracle consultation is deterministic.
type Engine struct {
	deniedCompanies map[string]struct{}
	deniedRoleTerms []string
	oracle          Oracle
	logger          *slog.Logger
}

func NewEngine(deniedCompanies, deniedRoleTerms []string, oracle Oracle, logger *slog.Logger) *Engine {
	denied := make(map[string]struct{}, len(deniedCompanies))
	for _, c := range deniedCompanies {
		denied[c] = struct{}{}
	}
	return &Engine{
		deniedCompanies: denied,
		deniedRoleTerms: deniedRoleTerms,
		oracle:          oracle,
		logger:          logger,
	}
}

// Evaluate applies the rules in order; the first failing rule wins.
func (e *Engine) Evaluate(ctx context.Context, p domain.Posting, policy domain.CategoryPolicy) domain.Decision {
	if _, ok := e.deniedCompanies[p.Company]; ok {
		return domain.Reject(domain.ReasonBlacklistedCompany)
	}

	if len(policy.RequiredTerms) > 0 && !containsAny(p.Title, policy.RequiredTerms) {
		return domain.Reject(domain.ReasonMissingRequiredTerm)
	}

	if containsAny(p.Title, policy.QuarantinedTerms) {
		return domain.Reject(domain.ReasonQuarantinedTerm)
	}

	if containsAny(p.Title, e.deniedRoleTerms) {
		return domain.Reject(domain.ReasonSeniorRoleExcluded)
	}

	if policy.UseExternalOracle {
		if !e.consultOracle(ctx, p, policy) {
			return domain.Reject(domain.ReasonOracleRejected)
		}
	}

	return domain.Accept()
}

// consultOracle asks whether the posting is relevant and accepts only on an
// exact affirmative. Errors fail toward rejection.
func (e *Engine) consultOracle(ctx context.Context, p domain.Posting, policy domain.CategoryPolicy) bool {
	question := fmt.Sprintf(
		"A job board lists the role %q at the company %q. Is this a relevant posting for the %q category? Answer yes or no.",
		p.Title, p.Company, policy.Name,
	)

	answer, err := e.oracle.Ask(ctx, question)
	if err != nil {
		e.logger.Warn("oracle call failed, rejecting posting",
			"category", policy.Name,
			"identity", p.Identity,
			"title", p.Title,
			"error", err,
		)
		return false
	}

	return NormalizeAnswer(answer) == "yes"
}

// NormalizeAnswer strips an oracle response down to its lowercase alphabetic
// characters, so "Yes.", "YES" and "yes  " all compare equal to "yes".
func NormalizeAnswer(answer string) string {
	var b strings.Builder
	for _, r := range answer {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// containsAny reports whether any term occurs in title, case-insensitively.
func containsAny(title string, terms []string) bool {
	lowered := strings.ToLower(title)
	for _, term := range terms {
		if term == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
