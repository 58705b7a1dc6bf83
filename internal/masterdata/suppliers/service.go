package suppliers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ssth/ssth-inventory/internal/masterdata/shared"
)

// ErrBlankName is returned when a supplier name is empty after trimming.
var ErrBlankName = fmt.Errorf("suppliers: %w: supplier name", shared.ErrRequiredField)

type Service struct {
	repo  Repository
	codes shared.CodeGenerator
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, codes: shared.CodeGenerator{Prefix: "SUP", Now: time.Now}}
}

// WithClock overrides the clock used for generated supplier codes.
func (s *Service) WithClock(now shared.Clock) *Service {
	s.codes.Now = now
	return s
}

// Resolve returns the id of the supplier named name, creating it when absent.
func (s *Service) Resolve(ctx context.Context, name string) (uuid.UUID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return uuid.Nil, ErrBlankName
	}
	existing, err := s.repo.FindByName(ctx, name)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return uuid.Nil, fmt.Errorf("suppliers: lookup %q: %w", name, err)
	}
	base := s.codes.Next()
	for attempt := 0; attempt < shared.MaxCodeAttempts; attempt++ {
		created, err := s.repo.Upsert(ctx, Supplier{Code: shared.WithAttempt(base, attempt), Name: name})
		if errors.Is(err, shared.ErrDuplicateCode) {
			continue
		}
		if err != nil {
			return uuid.Nil, fmt.Errorf("suppliers: create %q: %w", name, err)
		}
		return created.ID, nil
	}
	return uuid.Nil, fmt.Errorf("suppliers: create %q: %w", name, shared.ErrDuplicateCode)
}

// Index returns every supplier id keyed by shared.NameKey.
func (s *Service) Index(ctx context.Context) (map[string]uuid.UUID, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("suppliers: list: %w", err)
	}
	out := make(map[string]uuid.UUID, len(list))
	for _, sup := range list {
		out[shared.NameKey(sup.Name)] = sup.ID
	}
	return out, nil
}
