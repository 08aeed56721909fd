package testhelpers

import (
	"context"
	"errors"
	"sort"
	"sync"

	"gambler/wagering/domain/apperrors"
	"gambler/wagering/domain/entities"
	"gambler/wagering/domain/events"
	"gambler/wagering/domain/interfaces"
)

// MemoryStore is an in-memory UnitOfWorkFactory. LockByID holds a per-bet
// mutex until the unit of work commits or rolls back, and writes only become
// visible to other units of work on commit.
type MemoryStore struct {
	mu             sync.Mutex
	betLocks       map[int64]*sync.Mutex
	bets           map[int64]entities.Bet
	participations map[int64]entities.Participation
	offers         map[int64]entities.Offer
	acceptances    map[int64]entities.Acceptance
	audit          []entities.AuditEntry
	nextID         int64

	commitErrs []error
	lockErrs   []error
	commits    int

	Recorder *EventRecorder
}

// NewMemoryStore creates an empty store with its own event recorder
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		betLocks:       make(map[int64]*sync.Mutex),
		bets:           make(map[int64]entities.Bet),
		participations: make(map[int64]entities.Participation),
		offers:         make(map[int64]entities.Offer),
		acceptances:    make(map[int64]entities.Acceptance),
		Recorder:       NewEventRecorder(),
	}
}

// Create implements interfaces.UnitOfWorkFactory
func (s *MemoryStore) Create() interfaces.UnitOfWork {
	return &memoryUnitOfWork{store: s}
}

// FailNextCommit makes the next commit return err without applying anything
func (s *MemoryStore) FailNextCommit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitErrs = append(s.commitErrs, err)
}

// FailNextLock makes the next LockByID return err, such as a conflict
func (s *MemoryStore) FailNextLock(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockErrs = append(s.lockErrs, err)
}

// Commits returns the number of successful commits
func (s *MemoryStore) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// Bet returns a copy of the committed bet, or nil
func (s *MemoryStore) Bet(id int64) *entities.Bet {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bets[id]
	if !ok {
		return nil
	}
	return &b
}

// Participations returns copies of the committed participations of a bet
func (s *MemoryStore) Participations(betID int64) []*entities.Participation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterParticipations(s.participations, nil, betID)
}

// Offers returns copies of the committed offers of a bet
func (s *MemoryStore) Offers(betID int64) []*entities.Offer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterOffers(s.offers, nil, betID)
}

// Acceptances returns copies of the committed acceptances of a bet
func (s *MemoryStore) Acceptances(betID int64) []*entities.Acceptance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterAcceptances(s.acceptances, nil, betID)
}

// AuditEntries returns copies of the committed audit trail of a bet
func (s *MemoryStore) AuditEntries(betID int64) []*entities.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entities.AuditEntry
	for _, e := range s.audit {
		if e.BetID == betID {
			entry := e
			out = append(out, &entry)
		}
	}
	return out
}

func (s *MemoryStore) allocateID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return s.nextID
}

func (s *MemoryStore) betLock(id int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.betLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.betLocks[id] = l
	}
	return l
}

func (s *MemoryStore) popErr(list *[]error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(*list) == 0 {
		return nil
	}
	err := (*list)[0]
	*list = (*list)[1:]
	return err
}

type memoryUnitOfWork struct {
	store  *MemoryStore
	ctx    context.Context
	active bool
	locked []int64

	bets           map[int64]entities.Bet
	participations map[int64]entities.Participation
	offers         map[int64]entities.Offer
	acceptances    map[int64]entities.Acceptance
	audit          []entities.AuditEntry
	pending        []events.Event
}

func (u *memoryUnitOfWork) Begin(ctx context.Context) error {
	if u.active {
		return errors.New("transaction already started")
	}
	u.ctx = ctx
	u.active = true
	u.bets = make(map[int64]entities.Bet)
	u.participations = make(map[int64]entities.Participation)
	u.offers = make(map[int64]entities.Offer)
	u.acceptances = make(map[int64]entities.Acceptance)
	u.audit = nil
	u.pending = nil
	return nil
}

func (u *memoryUnitOfWork) Commit() error {
	if !u.active {
		return errors.New("no transaction to commit")
	}
	if err := u.store.popErr(&u.store.commitErrs); err != nil {
		return err
	}

	s := u.store
	s.mu.Lock()
	for _, p := range u.participations {
		for _, existing := range s.participations {
			if existing.ID != p.ID && existing.BetID == p.BetID && existing.UserID == p.UserID {
				s.mu.Unlock()
				return apperrors.Validation("user %d has already staked on bet %d", p.UserID, p.BetID)
			}
		}
	}
	for id, b := range u.bets {
		s.bets[id] = b
	}
	for id, p := range u.participations {
		s.participations[id] = p
	}
	for id, o := range u.offers {
		s.offers[id] = o
	}
	for id, a := range u.acceptances {
		s.acceptances[id] = a
	}
	s.audit = append(s.audit, u.audit...)
	s.commits++
	s.mu.Unlock()

	pending := u.pending
	u.finish()

	for _, ev := range pending {
		_ = s.Recorder.Publish(ev)
	}
	return nil
}

func (u *memoryUnitOfWork) Rollback() error {
	if !u.active {
		return nil
	}
	u.finish()
	return nil
}

func (u *memoryUnitOfWork) finish() {
	u.active = false
	u.pending = nil
	for i := len(u.locked) - 1; i >= 0; i-- {
		u.store.betLock(u.locked[i]).Unlock()
	}
	u.locked = nil
}

func (u *memoryUnitOfWork) mustBeActive() {
	if !u.active {
		panic("unit of work not started - call Begin() first")
	}
}

func (u *memoryUnitOfWork) BetRepository() interfaces.BetRepository {
	u.mustBeActive()
	return &memoryBetRepository{uow: u}
}

func (u *memoryUnitOfWork) OfferRepository() interfaces.OfferRepository {
	u.mustBeActive()
	return &memoryOfferRepository{uow: u}
}

func (u *memoryUnitOfWork) AuditRepository() interfaces.AuditRepository {
	u.mustBeActive()
	return &memoryAuditRepository{uow: u}
}

func (u *memoryUnitOfWork) EventBus() interfaces.EventPublisher {
	u.mustBeActive()
	return publisherFunc(func(ev events.Event) error {
		u.pending = append(u.pending, ev)
		return nil
	})
}

type publisherFunc func(events.Event) error

func (f publisherFunc) Publish(ev events.Event) error {
	return f(ev)
}

func (u *memoryUnitOfWork) isLocked(id int64) bool {
	for _, l := range u.locked {
		if l == id {
			return true
		}
	}
	return false
}

func (u *memoryUnitOfWork) lookupBet(id int64) (entities.Bet, bool) {
	if b, ok := u.bets[id]; ok {
		return b, true
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	b, ok := u.store.bets[id]
	return b, ok
}

type memoryBetRepository struct {
	uow *memoryUnitOfWork
}

func (r *memoryBetRepository) Create(ctx context.Context, bet *entities.Bet) error {
	bet.ID = r.uow.store.allocateID()
	r.uow.bets[bet.ID] = *bet
	return nil
}

func (r *memoryBetRepository) GetByID(ctx context.Context, id int64) (*entities.Bet, error) {
	b, ok := r.uow.lookupBet(id)
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *memoryBetRepository) LockByID(ctx context.Context, id int64) (*entities.Bet, error) {
	if err := r.uow.store.popErr(&r.uow.store.lockErrs); err != nil {
		return nil, err
	}
	if !r.uow.isLocked(id) {
		r.uow.store.betLock(id).Lock()
		r.uow.locked = append(r.uow.locked, id)
	}
	return r.GetByID(ctx, id)
}

func (r *memoryBetRepository) GetByMatchID(ctx context.Context, matchID string) ([]*entities.Bet, error) {
	r.uow.store.mu.Lock()
	ids := make([]int64, 0)
	for id, b := range r.uow.store.bets {
		if b.Contest.MatchID == matchID {
			ids = append(ids, id)
		}
	}
	r.uow.store.mu.Unlock()
	for id, b := range r.uow.bets {
		if b.Contest.MatchID == matchID && !containsID(ids, id) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*entities.Bet, 0, len(ids))
	for _, id := range ids {
		if b, ok := r.uow.lookupBet(id); ok {
			out = append(out, &b)
		}
	}
	return out, nil
}

func (r *memoryBetRepository) Update(ctx context.Context, bet *entities.Bet) error {
	if _, ok := r.uow.lookupBet(bet.ID); !ok {
		return apperrors.NotFound("bet %d not found", bet.ID)
	}
	r.uow.bets[bet.ID] = *bet
	return nil
}

func (r *memoryBetRepository) CreateParticipation(ctx context.Context, participation *entities.Participation) error {
	existing, _ := r.GetParticipationsByBet(ctx, participation.BetID)
	for _, p := range existing {
		if p.UserID == participation.UserID {
			return apperrors.Validation("user %d has already staked on bet %d", participation.UserID, participation.BetID)
		}
	}
	participation.ID = r.uow.store.allocateID()
	r.uow.participations[participation.ID] = *participation
	return nil
}

func (r *memoryBetRepository) GetParticipationsByBet(ctx context.Context, betID int64) ([]*entities.Participation, error) {
	r.uow.store.mu.Lock()
	defer r.uow.store.mu.Unlock()
	return filterParticipations(r.uow.store.participations, r.uow.participations, betID), nil
}

func (r *memoryBetRepository) UpdateParticipation(ctx context.Context, participation *entities.Participation) error {
	r.uow.participations[participation.ID] = *participation
	return nil
}

type memoryOfferRepository struct {
	uow *memoryUnitOfWork
}

func (r *memoryOfferRepository) Create(ctx context.Context, offer *entities.Offer) error {
	offer.ID = r.uow.store.allocateID()
	r.uow.offers[offer.ID] = *offer
	return nil
}

func (r *memoryOfferRepository) GetByBet(ctx context.Context, betID int64) ([]*entities.Offer, error) {
	r.uow.store.mu.Lock()
	defer r.uow.store.mu.Unlock()
	return filterOffers(r.uow.store.offers, r.uow.offers, betID), nil
}

func (r *memoryOfferRepository) Update(ctx context.Context, offer *entities.Offer) error {
	r.uow.offers[offer.ID] = *offer
	return nil
}

func (r *memoryOfferRepository) CreateAcceptance(ctx context.Context, acceptance *entities.Acceptance) error {
	acceptance.ID = r.uow.store.allocateID()
	r.uow.acceptances[acceptance.ID] = *acceptance
	return nil
}

func (r *memoryOfferRepository) GetAcceptancesByBet(ctx context.Context, betID int64) ([]*entities.Acceptance, error) {
	r.uow.store.mu.Lock()
	defer r.uow.store.mu.Unlock()
	return filterAcceptances(r.uow.store.acceptances, r.uow.acceptances, betID), nil
}

func (r *memoryOfferRepository) UpdateAcceptance(ctx context.Context, acceptance *entities.Acceptance) error {
	r.uow.acceptances[acceptance.ID] = *acceptance
	return nil
}

type memoryAuditRepository struct {
	uow *memoryUnitOfWork
}

func (r *memoryAuditRepository) Record(ctx context.Context, entry *entities.AuditEntry) error {
	entry.ID = r.uow.store.allocateID()
	r.uow.audit = append(r.uow.audit, *entry)
	return nil
}

func (r *memoryAuditRepository) GetByBet(ctx context.Context, betID int64) ([]*entities.AuditEntry, error) {
	out := r.uow.store.AuditEntries(betID)
	for _, e := range r.uow.audit {
		if e.BetID == betID {
			entry := e
			out = append(out, &entry)
		}
	}
	return out, nil
}

// The filter helpers merge committed rows with rows staged by a unit of work.
// Staged rows win. Results are ordered by ID.

func filterParticipations(committed, staged map[int64]entities.Participation, betID int64) []*entities.Participation {
	merged := make(map[int64]entities.Participation)
	for id, p := range committed {
		merged[id] = p
	}
	for id, p := range staged {
		merged[id] = p
	}
	out := make([]*entities.Participation, 0)
	for _, p := range merged {
		if p.BetID == betID {
			row := p
			out = append(out, &row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func filterOffers(committed, staged map[int64]entities.Offer, betID int64) []*entities.Offer {
	merged := make(map[int64]entities.Offer)
	for id, o := range committed {
		merged[id] = o
	}
	for id, o := range staged {
		merged[id] = o
	}
	out := make([]*entities.Offer, 0)
	for _, o := range merged {
		if o.BetID == betID {
			row := o
			out = append(out, &row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func filterAcceptances(committed, staged map[int64]entities.Acceptance, betID int64) []*entities.Acceptance {
	merged := make(map[int64]entities.Acceptance)
	for id, a := range committed {
		merged[id] = a
	}
	for id, a := range staged {
		merged[id] = a
	}
	out := make([]*entities.Acceptance, 0)
	for _, a := range merged {
		if a.BetID == betID {
			row := a
			out = append(out, &row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
