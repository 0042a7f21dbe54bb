package reservation

import (
	"context"
	"sync"
	"time"

	"github.com/allbirds/storefront/internal/domain/models"
)

// MemoryStore keeps reservations in process memory. It is the default store
// for single-node deployments and the one unit tests run against.
type MemoryStore struct {
	mu   sync.Mutex
	byID map[int64]*models.Reservation
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[int64]*models.Reservation),
		now:  time.Now,
	}
}

func (s *MemoryStore) Reserve(ctx context.Context, res *models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[res.OrderID] = res
	return nil
}

func (s *MemoryStore) GetActive(ctx context.Context, orderID int64) (*models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.byID[orderID]
	if !ok {
		return nil, nil
	}
	if res.Expired(s.now()) {
		delete(s.byID, orderID)
		return nil, nil
	}
	return res, nil
}

func (s *MemoryStore) Clear(ctx context.Context, orderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, orderID)
	return nil
}

func (s *MemoryStore) Sweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Expiry is re-checked here; a concurrent Reserve may have replaced the
	// entry since the sweep was scheduled.
	now := s.now()
	removed := 0
	for orderID, res := range s.byID {
		if res.Expired(now) {
			delete(s.byID, orderID)
			removed++
		}
	}
	return removed, nil
}
