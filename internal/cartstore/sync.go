package cartstore

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/rivermart/storefront-backend/internal/logger"
)

// PlaceholderName is shown for a light item until a full navigation
// re-hydrates its display fields.
const PlaceholderName = "Loading product..."

// SyncService reconciles the client store with server truth. It runs once
// when the cart view mounts and again after every mutation that round-tripped
// to the server, replacing local state wholesale with the fetched cart.
//
// The server's cart fetch is light (identifiers and quantity only), so
// display fields are filled with placeholders rather than fetched; quantity
// is the only trustworthy field until hydration. A snapshot that raced with
// a newer local mutation is dropped instead of applied.
type SyncService struct {
	log   *logger.Logger
	api   CartAPI
	store *Store
	group singleflight.Group

	mu      sync.Mutex
	lastErr string
}

func NewSyncService(api CartAPI, store *Store, baseLog *logger.Logger) *SyncService {
	return &SyncService{
		api:   api,
		store: store,
		log:   baseLog.With("service", "CartSyncService"),
	}
}

// Err returns the message of the last failed resync, empty after a
// successful one.
func (s *SyncService) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Resync fetches the authoritative cart and overwrites client state.
// Concurrent callers are coalesced into one fetch. Failures are recorded and
// returned but never panic; the cart view degrades to its loading/empty
// state.
func (s *SyncService) Resync(ctx context.Context) error {
	_, err, _ := s.group.Do("resync", func() (interface{}, error) {
		return nil, s.resync(ctx)
	})
	return err
}

func (s *SyncService) resync(ctx context.Context) error {
	s.store.SetLoading(true)
	defer s.store.SetLoading(false)

	before := s.store.Seq()

	cart, err := s.api.GetOrCreateCart(ctx)
	if err != nil {
		s.log.Error("cart sync failed", "error", err)
		s.setErr(err.Error())
		return err
	}
	s.setErr("")

	if cart == nil {
		// guest session: the local cache is the only cart state
		return nil
	}

	items := make([]ClientCartItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, ClientCartItem{
			ID:               item.ID,
			ProductVariantID: item.ProductVariantID,
			Name:             PlaceholderName,
			Quantity:         item.Quantity,
			Detailed:         false,
		})
	}

	if !s.store.ReplaceIfSeq(before, items) {
		s.log.Debug("dropping stale cart snapshot, local mutations advanced during fetch", "seq", before)
	}
	return nil
}

func (s *SyncService) setErr(msg string) {
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
}
