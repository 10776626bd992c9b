package services

import (
	"context"
	"fmt"

	"cassa/internal/core"
)

// CategoryResolver maps free-text labels to persisted categories, creating
// the ones that do not exist yet.
type CategoryResolver struct {
	store Store
}

func NewCategoryResolver(store Store) *CategoryResolver {
	return &CategoryResolver{store: store}
}

// Resolve returns every label mapped to its category. Labels are matched on
// exact title; at most one category is created per distinct unknown label,
// no matter how many times it appears in the input.
func (r *CategoryResolver) Resolve(ctx context.Context, labels []string) (map[string]core.Category, error) {
	existing, err := r.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	byTitle := make(map[string]core.Category, len(existing))
	for _, c := range existing {
		byTitle[c.Title] = c
	}

	var missing []string
	seen := make(map[string]bool)
	for _, label := range labels {
		if _, ok := byTitle[label]; ok {
			continue
		}
		if seen[label] {
			continue
		}
		seen[label] = true
		missing = append(missing, label)
	}

	if len(missing) > 0 {
		created, err := r.store.CreateCategories(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("create categories: %w", err)
		}
		for _, c := range created {
			byTitle[c.Title] = c
		}
	}

	resolved := make(map[string]core.Category, len(labels))
	for _, label := range labels {
		c, ok := byTitle[label]
		if !ok {
			return nil, fmt.Errorf("category %q not resolved after create", label)
		}
		resolved[label] = c
	}

	return resolved, nil
}
