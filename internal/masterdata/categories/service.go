package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ssth/ssth-inventory/internal/masterdata/shared"
)

type Service struct {
	repo  Repository
	codes shared.CodeGenerator
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, codes: shared.CodeGenerator{Prefix: "CAT", Now: time.Now}}
}

// WithClock overrides the clock used for generated category codes.
func (s *Service) WithClock(now shared.Clock) *Service {
	s.codes.Now = now
	return s
}

// Resolve returns the id of the category named name, creating it when no
// category matches case-insensitively. A blank name resolves to uuid.Nil.
func (s *Service) Resolve(ctx context.Context, name string) (uuid.UUID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return uuid.Nil, nil
	}
	existing, err := s.repo.FindByName(ctx, name)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return uuid.Nil, fmt.Errorf("categories: lookup %q: %w", name, err)
	}
	base := s.codes.Next()
	for attempt := 0; attempt < shared.MaxCodeAttempts; attempt++ {
		created, err := s.repo.Upsert(ctx, Category{Code: shared.WithAttempt(base, attempt), Name: name})
		if errors.Is(err, shared.ErrDuplicateCode) {
			continue
		}
		if err != nil {
			return uuid.Nil, fmt.Errorf("categories: create %q: %w", name, err)
		}
		return created.ID, nil
	}
	return uuid.Nil, fmt.Errorf("categories: create %q: %w", name, shared.ErrDuplicateCode)
}

func (s *Service) List(ctx context.Context) ([]Category, error) {
	return s.repo.List(ctx)
}
