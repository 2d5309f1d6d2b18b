package dashboard

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"portal_dashboard/backend/internal/reqstate"
	"portal_dashboard/backend/internal/session"
	"portal_dashboard/backend/internal/shared"
)

// SlotKey identifies one user's dashboard for one role.
type SlotKey struct {
	UserID string
	Role   shared.Role
}

func (k SlotKey) String() string {
	return k.UserID + ":" + string(k.Role)
}

// Store persists the last good bundle of each slot.
type Store interface {
	Load(ctx context.Context, key SlotKey) (Bundle, bool, error)
	Save(ctx context.Context, key SlotKey, bundle Bundle) error
	Forget(ctx context.Context, userID string) error
}

// Service keeps one request state per slot so a failed cycle still has the
// previous bundle to show.
type Service struct {
	builder  *Builder
	store    Store
	notifier reqstate.Notifier
	log      logrus.FieldLogger

	mu    sync.Mutex
	slots map[SlotKey]*reqstate.State[Bundle]

	// persistMu orders saves against Forget: a save holds it shared, Forget
	// exclusively.
	persistMu sync.RWMutex
}

// NewService returns a Service. store and notifier may be nil.
func NewService(builder *Builder, store Store, notifier reqstate.Notifier, log logrus.FieldLogger) *Service {
	if log == nil {
		log = builder.log
	}
	return &Service{
		builder:  builder,
		store:    store,
		notifier: notifier,
		log:      log,
		slots:    make(map[SlotKey]*reqstate.State[Bundle]),
	}
}

// Refresh runs a cycle for the slot and returns the slot afterwards. On
// failure the returned view still holds the previous bundle, if any.
func (s *Service) Refresh(ctx context.Context, sess session.Context, role shared.Role) (reqstate.View[Bundle], error) {
	key, err := slotKey(sess, role)
	if err != nil {
		return reqstate.View[Bundle]{}, err
	}

	st := s.slot(ctx, key)
	bundle, err := st.Execute(ctx, sess)
	if err == nil && s.store != nil {
		s.persist(ctx, key, st, bundle)
	}
	return st.Snapshot(), err
}

// persist saves bundle unless the slot was forgotten while it was built.
func (s *Service) persist(ctx context.Context, key SlotKey, st *reqstate.State[Bundle], bundle Bundle) {
	s.persistMu.RLock()
	defer s.persistMu.RUnlock()

	s.mu.Lock()
	current := s.slots[key] == st
	s.mu.Unlock()
	if !current {
		s.log.WithField("slot", key.String()).Debug("Slot forgotten during refresh, not persisting")
		return
	}

	if err := s.store.Save(ctx, key, bundle); err != nil {
		s.log.WithError(err).WithField("slot", key.String()).Warn("Failed to persist dashboard bundle")
	}
}

// State returns the slot without fetching.
func (s *Service) State(ctx context.Context, sess session.Context, role shared.Role) (reqstate.View[Bundle], error) {
	key, err := slotKey(sess, role)
	if err != nil {
		return reqstate.View[Bundle]{}, err
	}
	return s.slot(ctx, key).Snapshot(), nil
}

// Forget discards every slot of userID, in memory and in the store.
func (s *Service) Forget(ctx context.Context, userID string) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	for key := range s.slots {
		if key.UserID == userID {
			delete(s.slots, key)
		}
	}
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	return s.store.Forget(ctx, userID)
}

// slot returns the state for key, restoring a persisted bundle the first
// time the slot is used.
func (s *Service) slot(ctx context.Context, key SlotKey) *reqstate.State[Bundle] {
	s.mu.Lock()
	st, ok := s.slots[key]
	if !ok {
		st = reqstate.New(s.fetcher(key.Role), s.notifier)
		s.slots[key] = st
	}
	s.mu.Unlock()

	if ok || s.store == nil {
		return st
	}

	bundle, found, err := s.store.Load(ctx, key)
	switch {
	case err != nil:
		s.log.WithError(err).WithField("slot", key.String()).Warn("Failed to restore dashboard bundle")
	case found:
		if st.Seed(bundle) {
			s.log.WithField("slot", key.String()).Debug("Restored dashboard bundle from store")
		}
	}
	return st
}

func (s *Service) fetcher(role shared.Role) reqstate.Fetcher[Bundle] {
	return func(ctx context.Context, args ...any) (Bundle, error) {
		if len(args) == 0 {
			return Bundle{}, status.Error(codes.Unauthenticated, "missing session")
		}
		sess, ok := args[0].(session.Context)
		if !ok || !sess.Valid() {
			return Bundle{}, status.Error(codes.Unauthenticated, "missing session")
		}
		return s.builder.Build(ctx, sess, role)
	}
}

func slotKey(sess session.Context, role shared.Role) (SlotKey, error) {
	if !sess.Valid() {
		return SlotKey{}, status.Error(codes.Unauthenticated, "missing session")
	}
	r, ok := shared.ParseRole(string(role))
	if !ok {
		return SlotKey{}, status.Errorf(codes.InvalidArgument, "unknown dashboard role %q", role)
	}
	return SlotKey{UserID: sess.User().ID, Role: r}, nil
}
