package items

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ssth/ssth-inventory/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// DescriptionKey is the match key purchase order lines use to find items.
// Matching is exact after trimming.
func DescriptionKey(desc string) string {
	return strings.TrimSpace(desc)
}

// FindByCode returns the item with the given code, or found=false.
func (s *Service) FindByCode(ctx context.Context, code string) (Item, bool, error) {
	it, err := s.repo.GetByCode(ctx, strings.TrimSpace(code))
	if errors.Is(err, shared.ErrNotFound) {
		return Item{}, false, nil
	}
	if err != nil {
		return Item{}, false, fmt.Errorf("items: get %q: %w", code, err)
	}
	return it, true, nil
}

func (s *Service) Create(ctx context.Context, item Item) (Item, error) {
	item.Code = strings.TrimSpace(item.Code)
	if item.Code == "" {
		return Item{}, fmt.Errorf("items: %w: item_code", shared.ErrRequiredField)
	}
	if item.BaseUOM == "" {
		item.BaseUOM = DefaultUOM
	}
	item.IsActive = true
	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return Item{}, fmt.Errorf("items: create %q: %w", item.Code, err)
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, changes Changes) error {
	if changes.BaseUOM == "" {
		changes.BaseUOM = DefaultUOM
	}
	if err := s.repo.Update(ctx, id, changes); err != nil {
		return fmt.Errorf("items: update %s: %w", id, err)
	}
	return nil
}

// DescriptionIndex returns item ids keyed by DescriptionKey.
func (s *Service) DescriptionIndex(ctx context.Context) (map[string]uuid.UUID, error) {
	idx, err := s.repo.ListDescriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("items: list descriptions: %w", err)
	}
	return idx, nil
}
