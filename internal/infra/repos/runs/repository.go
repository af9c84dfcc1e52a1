package runs

import (
	"errors"

	"github.com/mmrzaf/costgen/internal/domain"
)

var ErrNotFound = errors.New("run not found")

// Repository stores run history.
type Repository interface {
	Init() error
	Create(run *domain.Run) error
	Update(run *domain.Run) error
	Get(id string) (*domain.Run, error)
	List(limit int, status string) ([]*domain.Run, error)
	Close() error
}
