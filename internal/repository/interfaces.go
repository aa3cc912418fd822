package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/slotwise/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// RunRepo stores scheduling runs so features can be replayed against them.
type RunRepo interface {
	Create(ctx context.Context, run *domain.ScheduleRun) error
	GetByID(ctx context.Context, id string) (*domain.ScheduleRun, error)
	Latest(ctx context.Context) (*domain.ScheduleRun, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.ScheduleRun, error)
}
