// Package router turns category configuration into the ordered category list
// the scheduler drives. All structural validation happens here, at startup,
// so a bad category can never fail mid-cycle.
package router

import (
	"fmt"
	"regexp"

	"jobherald/internal/config"
	"jobherald/internal/domain"
)

var validName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

type Router struct {
	categories []*domain.Category
}

// New builds and validates the category list in config order.
func New(cfg *config.Config) (*Router, error) {
	categories := make([]*domain.Category, 0, len(cfg.Categories))
	names := make(map[string]struct{}, len(cfg.Categories))

	for _, cc := range cfg.Categories {
		if !validName.MatchString(cc.Name) {
			return nil, fmt.Errorf("category name %q must match %s", cc.Name, validName)
		}
		if _, dup := names[cc.Name]; dup {
			return nil, fmt.Errorf("duplicate category name %q", cc.Name)
		}
		names[cc.Name] = struct{}{}

		if cc.ChatID == 0 {
			return nil, fmt.Errorf("category %q: chat_id is required", cc.Name)
		}
		if len(cc.SearchTerms) == 0 {
			return nil, fmt.Errorf("category %q: at least one search term is required", cc.Name)
		}

		mode := domain.CommitMode(cc.CommitMode)
		if !mode.Valid() {
			return nil, fmt.Errorf("category %q: unknown commit_mode %q", cc.Name, cc.CommitMode)
		}

		categories = append(categories, &domain.Category{
			Name:      cc.Name,
			ChannelID: cc.ChatID,
			Policy: domain.CategoryPolicy{
				Name:              cc.Name,
				RequiredTerms:     cc.RequiredTerms,
				QuarantinedTerms:  cc.QuarantinedTerms,
				UseExternalOracle: cc.UseOracle,
			},
			SearchTerms:  cc.SearchTerms,
			ResultCap:    cc.ResultCap,
			RecencyHours: cc.RecencyHours,
			CommitMode:   mode,
		})
	}

	return &Router{categories: categories}, nil
}

// Categories returns the configured categories in order.
func (r *Router) Categories() []*domain.Category {
	return r.categories
}

// Names returns the category names in order, for schema bootstrap.
func (r *Router) Names() []string {
	names := make([]string, len(r.categories))
	for i, cat := range r.categories {
		names[i] = cat.Name
	}
	return names
}
