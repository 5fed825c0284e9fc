package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/center2055/CoinflipXD/internal/domain"
	"github.com/center2055/CoinflipXD/internal/ports"
)

// Config holds the lifecycle policy knobs.
type Config struct {
	Economy domain.EconomySettings
	Tax     domain.TaxSettings

	// OneActivePerParticipant limits each creator to a single
	// pending/resolving wager at a time.
	OneActivePerParticipant bool

	PublicTTL     time.Duration
	PrivateTTL    time.Duration
	SweepInterval time.Duration
}

// DefaultConfig returns a config with the stock policy.
func DefaultConfig() Config {
	return Config{
		Economy: domain.EconomySettings{
			MinBet:              100,
			MaxBet:              1_000_000,
			MaxBalancePercent:   0,
			RequireWholeNumbers: true,
		},
		OneActivePerParticipant: true,
		PublicTTL:               5 * time.Minute,
		PrivateTTL:              time.Minute,
		SweepInterval:           time.Second,
	}
}

// Engine is the wager lifecycle state machine. It owns the registry of
// in-flight wagers and guarantees each is resolved exactly once, with
// funds for both legs held by the engine while a wager is pending or
// resolving. All fund movement goes through the ledger port under the
// wager's lock.
type Engine struct {
	cfg      Config
	ledger   ports.Ledger
	notifier ports.Notifier
	stats    ports.StatsCollector
	recon    ports.Reconciler
	presence ports.Presence
	exempt   ports.Exemptions
	clock    ports.Clock
	rng      ports.RandomSource
	log      *slog.Logger

	reg  *registry
	busy *busySet

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// Option overrides an optional collaborator.
type Option func(*Engine)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c ports.Clock) Option { return func(e *Engine) { e.clock = c } }

// WithRandomSource replaces the coinflip source, mainly for tests.
func WithRandomSource(r ports.RandomSource) Option { return func(e *Engine) { e.rng = r } }

// WithReconciler records refunds the engine could not deliver.
func WithReconciler(r ports.Reconciler) Option { return func(e *Engine) { e.recon = r } }

// WithPresence enables the creator-reachability check during acceptance.
func WithPresence(p ports.Presence) Option { return func(e *Engine) { e.presence = p } }

// WithExemptions marks participants that bypass stake limits.
func WithExemptions(x ports.Exemptions) Option { return func(e *Engine) { e.exempt = x } }

// WithLogger replaces the default slog logger.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.log = l } }

// New wires an engine. ledger, notifier and stats are required; clock
// and randomness default to the system clock and crypto/rand.
func New(cfg Config, ledger ports.Ledger, notifier ports.Notifier, stats ports.StatsCollector, opts ...Option) *Engine {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Second
	}
	e := &Engine{
		cfg:      cfg,
		ledger:   ledger,
		notifier: notifier,
		stats:    stats,
		clock:    systemClock{},
		rng:      cryptoRand{},
		log:      slog.Default(),
		reg:      newRegistry(),
		busy:     newBusySet(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreatePublic stakes amount from creator and opens a wager anyone can
// accept. No ledger mutation happens on any validation failure.
func (e *Engine) CreatePublic(ctx context.Context, creator uuid.UUID, amount float64) (*domain.Wager, error) {
	return e.create(ctx, creator, uuid.Nil, domain.KindPublic, amount)
}

// CreatePrivate stakes amount from creator and invites target only.
func (e *Engine) CreatePrivate(ctx context.Context, creator, target uuid.UUID, amount float64) (*domain.Wager, error) {
	if target == creator || target == uuid.Nil {
		e.notify(ctx, domain.Event{Kind: domain.EventSelfAccept, To: creator, Amount: amount})
		return nil, domain.ErrSelfAccept
	}
	return e.create(ctx, creator, target, domain.KindPrivate, amount)
}

func (e *Engine) create(ctx context.Context, creator, target uuid.UUID, kind domain.Kind, amount float64) (*domain.Wager, error) {
	bypass := e.isExempt(creator)
	if err := domain.ValidateAmount(amount, e.cfg.Economy, bypass); err != nil {
		return nil, err
	}
	if e.cfg.OneActivePerParticipant && e.reg.getByCreator(creator) != nil {
		e.notify(ctx, domain.Event{Kind: domain.EventAlreadyActive, To: creator, Amount: amount})
		return nil, domain.ErrAlreadyActive
	}
	if kind == domain.KindPrivate && e.reg.getByTarget(target) != nil {
		e.notify(ctx, domain.Event{Kind: domain.EventTargetBusy, To: creator, Other: target, Amount: amount})
		return nil, domain.ErrTargetBusy
	}
	if err := e.checkFunds(ctx, creator, amount, bypass); err != nil {
		e.notifyFundsFailure(ctx, err, creator, amount)
		return nil, err
	}
	if err := e.ledger.Withdraw(ctx, creator, amount); err != nil {
		e.notify(ctx, domain.Event{Kind: domain.EventInsufficientFunds, To: creator, Amount: amount})
		return nil, fmt.Errorf("%w: withdraw stake: %v", domain.ErrInsufficientFunds, err)
	}

	now := e.clock.Now()
	ttl := e.cfg.PublicTTL
	if kind == domain.KindPrivate {
		ttl = e.cfg.PrivateTTL
	}
	w := domain.NewWager(creator, kind, target, amount, now, now.Add(ttl))

	if err := e.reg.put(w, e.cfg.OneActivePerParticipant); err != nil {
		// Lost the index race to a concurrent create. Undo the hold.
		if derr := e.ledger.Deposit(ctx, creator, amount); derr != nil {
			e.log.Error("refund after create conflict failed",
				"wager", w.ID, "participant", creator, "amount", amount, "err", derr)
			e.owedRefund(ctx, creator, amount, w.ID, "create-conflict refund failed")
		}
		kind := domain.EventAlreadyActive
		if err == domain.ErrTargetBusy {
			kind = domain.EventTargetBusy
		}
		e.notify(ctx, domain.Event{Kind: kind, To: creator, Other: target, Amount: amount})
		return nil, err
	}

	switch kind {
	case domain.KindPrivate:
		e.notify(ctx, domain.Event{Kind: domain.EventPrivateSent, WagerID: w.ID, To: creator, Other: target, Amount: amount})
		e.notify(ctx, domain.Event{Kind: domain.EventPrivateReceived, WagerID: w.ID, To: target, Other: creator, Amount: amount})
	default:
		e.notify(ctx, domain.Event{Kind: domain.EventCreated, WagerID: w.ID, To: creator, Amount: amount})
	}
	e.log.Info("wager created",
		"wager", w.ID, "kind", w.Kind, "creator", creator, "amount", amount, "expires_at", w.ExpiresAt)
	return w, nil
}

// AcceptByID accepts a public wager by its id.
func (e *Engine) AcceptByID(ctx context.Context, acceptor uuid.UUID, id uuid.UUID) error {
	w := e.reg.get(id)
	if w == nil || w.Kind != domain.KindPublic {
		e.notify(ctx, domain.Event{Kind: domain.EventNotFound, To: acceptor})
		return domain.ErrNotFound
	}
	return e.accept(ctx, acceptor, w)
}

// AcceptFromCreator accepts the private wager creator addressed to
// acceptor.
func (e *Engine) AcceptFromCreator(ctx context.Context, acceptor, creator uuid.UUID) error {
	w := e.reg.getByTarget(acceptor)
	if w == nil || w.Creator != creator {
		e.notify(ctx, domain.Event{Kind: domain.EventNotFound, To: acceptor})
		return domain.ErrNotFound
	}
	return e.accept(ctx, acceptor, w)
}

func (e *Engine) accept(ctx context.Context, acceptor uuid.UUID, w *domain.Wager) error {
	if w.Creator == acceptor {
		e.notify(ctx, domain.Event{Kind: domain.EventSelfAccept, WagerID: w.ID, To: acceptor, Amount: w.Amount})
		return domain.ErrSelfAccept
	}

	// Claim both identities before going further: failing fast here
	// beats deadlocking two accepts that share a participant.
	if !e.busy.tryAcquire(w.Creator, acceptor) {
		e.notify(ctx, domain.Event{Kind: domain.EventBusy, WagerID: w.ID, To: acceptor, Amount: w.Amount})
		return domain.ErrBusy
	}
	defer e.busy.release(w.Creator, acceptor)

	w.Lock()
	defer w.Unlock()

	if w.State() != domain.StatePending || e.reg.get(w.ID) == nil {
		e.notify(ctx, domain.Event{Kind: domain.EventNotFound, To: acceptor})
		return domain.ErrNotFound
	}
	if w.IsExpired(e.clock.Now()) {
		e.cancelLocked(ctx, w, domain.ReasonExpired)
		e.notify(ctx, domain.Event{Kind: domain.EventNotFound, To: acceptor})
		return domain.ErrNotFound
	}
	if e.presence != nil && !e.presence.IsOnline(w.Creator) {
		e.cancelLocked(ctx, w, domain.ReasonCreatorOffline)
		e.notify(ctx, domain.Event{Kind: domain.EventNotFound, To: acceptor})
		return domain.ErrNotFound
	}

	if err := e.checkFunds(ctx, acceptor, w.Amount, e.isExempt(acceptor)); err != nil {
		e.notifyFundsFailure(ctx, err, acceptor, w.Amount)
		return err
	}
	if err := e.ledger.Withdraw(ctx, acceptor, w.Amount); err != nil {
		e.notify(ctx, domain.Event{Kind: domain.EventInsufficientFunds, To: acceptor, Amount: w.Amount})
		return fmt.Errorf("%w: withdraw stake: %v", domain.ErrInsufficientFunds, err)
	}

	w.SetAcceptor(acceptor)
	w.SetState(domain.StateResolving)

	e.notify(ctx, domain.Event{Kind: domain.EventAccepted, WagerID: w.ID, To: w.Creator, Other: acceptor, Amount: w.Amount})
	e.notify(ctx, domain.Event{Kind: domain.EventAccepted, WagerID: w.ID, To: acceptor, Other: w.Creator, Amount: w.Amount})

	e.resolveLocked(ctx, w, acceptor)
	return nil
}

// resolveLocked decides and pays out the winner. Called from accept
// only, with the wager lock held and both identities in the busy set.
func (e *Engine) resolveLocked(ctx context.Context, w *domain.Wager, acceptor uuid.UUID) {
	winner, loser := w.Creator, acceptor
	if !e.rng.Bool() {
		winner, loser = acceptor, w.Creator
	}

	payout := domain.CalculatePayout(w.Amount, e.cfg.Tax)

	if err := e.ledger.Deposit(ctx, winner, payout.Winnings); err != nil {
		// The only path where RESOLVING does not reach COMPLETED:
		// give both legs back and cancel.
		e.log.Error("winnings deposit failed, refunding both legs",
			"wager", w.ID, "winner", winner, "winnings", payout.Winnings, "err", err)
		e.refundLeg(ctx, w, w.Creator)
		e.refundLeg(ctx, w, acceptor)
		w.SetState(domain.StateCanceled)
		e.reg.remove(w)
		e.notify(ctx, domain.Event{Kind: domain.EventCanceled, WagerID: w.ID, To: w.Creator, Amount: w.Amount})
		e.notify(ctx, domain.Event{Kind: domain.EventCanceled, WagerID: w.ID, To: acceptor, Amount: w.Amount})
		return
	}

	e.routeTax(ctx, w, payout.Tax)

	w.SetState(domain.StateCompleted)
	w.SetResolvedAt(e.clock.Now())
	e.reg.remove(w)

	e.notify(ctx, domain.Event{
		Kind: domain.EventResolvedWin, WagerID: w.ID, To: winner, Other: loser,
		Amount: w.Amount, Winnings: payout.Winnings, Tax: payout.Tax,
	})
	e.notify(ctx, domain.Event{
		Kind: domain.EventResolvedLose, WagerID: w.ID, To: loser, Other: winner,
		Amount: w.Amount,
	})

	e.stats.RecordResult(ctx, winner, loser, payout.Winnings, w.Amount)

	e.log.Info("wager resolved",
		"wager", w.ID, "creator", w.Creator, "acceptor", acceptor,
		"winner", winner, "amount", w.Amount, "winnings", payout.Winnings, "tax", payout.Tax)
}

func (e *Engine) refundLeg(ctx context.Context, w *domain.Wager, participant uuid.UUID) {
	if err := e.ledger.Deposit(ctx, participant, w.Amount); err != nil {
		e.log.Error("refund deposit failed",
			"wager", w.ID, "participant", participant, "amount", w.Amount, "err", err)
		e.owedRefund(ctx, participant, w.Amount, w.ID, "refund deposit failed")
	}
}

// routeTax moves the house cut to the configured sink. A nil recipient
// means the house keeps it: the amount simply never re-enters the
// ledger.
func (e *Engine) routeTax(ctx context.Context, w *domain.Wager, tax float64) {
	if tax <= 0 || e.cfg.Tax.Recipient == uuid.Nil {
		return
	}
	if err := e.ledger.Deposit(ctx, e.cfg.Tax.Recipient, tax); err != nil {
		e.log.Error("tax deposit failed",
			"wager", w.ID, "recipient", e.cfg.Tax.Recipient, "tax", tax, "err", err)
		e.owedRefund(ctx, e.cfg.Tax.Recipient, tax, w.ID, "tax deposit failed")
	}
}

// cancel takes the wager lock and delegates. Safe to call concurrently
// with accepts and other cancels; a wager already gone is a no-op.
func (e *Engine) cancel(ctx context.Context, w *domain.Wager, reason domain.CancelReason) {
	w.Lock()
	defer w.Unlock()
	e.cancelLocked(ctx, w, reason)
}

// cancelLocked removes the wager and refunds the creator's held stake
// when it was still PENDING. Idempotent: the registry removal is the
// single decision point, so concurrent cancels collapse to one refund.
func (e *Engine) cancelLocked(ctx context.Context, w *domain.Wager, reason domain.CancelReason) {
	if !e.reg.remove(w) {
		return
	}

	if w.State() == domain.StatePending {
		e.refundLeg(ctx, w, w.Creator)
	}

	out := reason.Outcome()
	w.SetState(out.State)

	e.notify(ctx, domain.Event{Kind: out.Event, WagerID: w.ID, To: w.Creator, Amount: w.Amount})
	if out.NotifyTarget && w.Kind == domain.KindPrivate {
		e.notify(ctx, domain.Event{Kind: out.Event, WagerID: w.ID, To: w.Target, Amount: w.Amount})
	}

	e.log.Info("wager canceled",
		"wager", w.ID, "creator", w.Creator, "amount", w.Amount, "reason", reason.String(), "state", out.State.String())
}

// DenyPrivate declines the private wager creator addressed to target.
func (e *Engine) DenyPrivate(ctx context.Context, target, creator uuid.UUID) error {
	w := e.reg.getByTarget(target)
	if w == nil || w.Creator != creator {
		e.notify(ctx, domain.Event{Kind: domain.EventNotFound, To: target})
		return domain.ErrNotFound
	}
	e.cancel(ctx, w, domain.ReasonDenied)
	return nil
}

// CancelOwn withdraws the participant's own pending wager.
func (e *Engine) CancelOwn(ctx context.Context, participant uuid.UUID) error {
	w := e.reg.getByCreator(participant)
	if w == nil {
		e.notify(ctx, domain.Event{Kind: domain.EventNotFound, To: participant})
		return domain.ErrNotFound
	}
	e.cancel(ctx, w, domain.ReasonCanceled)
	return nil
}

// ForceCancel is the administrative cancel; it bypasses ownership.
func (e *Engine) ForceCancel(ctx context.Context, id uuid.UUID) error {
	w := e.reg.get(id)
	if w == nil {
		return domain.ErrNotFound
	}
	e.cancel(ctx, w, domain.ReasonCanceled)
	return nil
}

// OnParticipantDisconnect cancels any wager the identity is involved
// in. The presence tracker must call this whenever a participant
// becomes unreachable.
func (e *Engine) OnParticipantDisconnect(ctx context.Context, participant uuid.UUID) {
	if w := e.reg.getByCreator(participant); w != nil {
		e.cancel(ctx, w, domain.ReasonCreatorQuit)
	}
	if w := e.reg.getByTarget(participant); w != nil {
		e.cancel(ctx, w, domain.ReasonTargetQuit)
	}
}

// FindByCreator returns the creator's live wager, if any.
func (e *Engine) FindByCreator(creator uuid.UUID) (*domain.Wager, bool) {
	w := e.reg.getByCreator(creator)
	return w, w != nil
}

// FindByTarget returns the private wager addressed to target, if any.
func (e *Engine) FindByTarget(target uuid.UUID) (*domain.Wager, bool) {
	w := e.reg.getByTarget(target)
	return w, w != nil
}

// ListPendingPublic returns browsable public wagers, oldest first.
func (e *Engine) ListPendingPublic() []*domain.Wager {
	return e.reg.listPendingPublic()
}

// Shutdown stops the sweeper, then cancels and refunds every wager
// still in the registry. A restart never resurrects in-flight wagers.
func (e *Engine) Shutdown(ctx context.Context) {
	e.stopOnce.Do(func() { close(e.done) })
	e.wg.Wait()

	for _, w := range e.reg.snapshot() {
		e.cancel(ctx, w, domain.ReasonShutdown)
	}
	e.log.Info("engine shut down", "remaining", e.reg.size())
}

func (e *Engine) checkFunds(ctx context.Context, participant uuid.UUID, amount float64, bypass bool) error {
	balance, err := e.ledger.Balance(ctx, participant)
	if err != nil {
		return fmt.Errorf("%w: balance query: %v", domain.ErrLedgerFailure, err)
	}
	if balance < amount {
		return domain.ErrInsufficientFunds
	}
	if !bypass && amount > domain.MaxBalanceBet(balance, e.cfg.Economy) {
		return domain.ErrLimitExceeded
	}
	return nil
}

func (e *Engine) notifyFundsFailure(ctx context.Context, err error, participant uuid.UUID, amount float64) {
	switch {
	case err == domain.ErrInsufficientFunds:
		e.notify(ctx, domain.Event{Kind: domain.EventInsufficientFunds, To: participant, Amount: amount})
	case err == domain.ErrLimitExceeded:
		e.notify(ctx, domain.Event{Kind: domain.EventLimitExceeded, To: participant, Amount: amount})
	}
}

func (e *Engine) isExempt(participant uuid.UUID) bool {
	return e.exempt != nil && e.exempt.IsExempt(participant)
}

func (e *Engine) owedRefund(ctx context.Context, participant uuid.UUID, amount float64, wagerID uuid.UUID, cause string) {
	if e.recon == nil {
		return
	}
	e.recon.RecordOwedRefund(ctx, participant, amount, wagerID, cause)
}

func (e *Engine) notify(ctx context.Context, ev domain.Event) {
	if e.notifier == nil {
		return
	}
	e.notifier.Notify(ctx, ev)
}
