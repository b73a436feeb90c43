package activation

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/cardlink-labs/cardlink-middleware/internal/metrics"
	"github.com/cardlink-labs/cardlink-middleware/pkg/account"
	"github.com/cardlink-labs/cardlink-middleware/pkg/identity"
	"github.com/cardlink-labs/cardlink-middleware/pkg/wallet"
)

// Snapshot is the presentation-facing view of the workflow.
type Snapshot struct {
	Stage           Stage
	IsLoading       bool
	Err             error
	StatusMessage   string
	DelegatedChains []string
}

// attempt tracks one in-flight activation run. ok is written before done is
// closed, so waiters reading after <-done observe it.
type attempt struct {
	done chan struct{}
	ok   bool
}

// Workflow orchestrates account activation for one authenticated session:
// sync stage, then delegation stage, with a single idempotent entry point.
//
// All workflow state is owned here; the stages are pure functions over their
// inputs plus calls to external collaborators.
type Workflow struct {
	syncer    *Syncer
	delegator *Delegator
	provider  wallet.Provider
	logger    *zap.Logger

	mu            sync.Mutex
	stage         Stage
	statusMessage string
	err           error
	record        *account.Record
	delegated     map[account.Chain]struct{}
	inflight      *attempt

	// generation invalidates in-flight attempts when the session is reset
	// for a new principal: results from a stale generation are discarded,
	// never merged into the new session's state.
	generation uint64
}

// NewWorkflow creates a workflow over the given collaborators.
func NewWorkflow(
	tokens identity.Source,
	backend SyncClient,
	provider wallet.Provider,
	logger *zap.Logger,
) *Workflow {
	return &Workflow{
		syncer:    NewSyncer(tokens, backend, logger),
		delegator: NewDelegator(provider, logger),
		provider:  provider,
		logger:    logger,
		stage:     StageInitializing,
		delegated: make(map[account.Chain]struct{}),
	}
}

// CompleteAuthentication drives one activation attempt to a terminal state
// and reports success.
//
// Idempotent on success: once the workflow is Completed, it returns true
// without any network calls. While an attempt is in flight, concurrent calls
// wait for that attempt's result instead of starting a second one.
func (w *Workflow) CompleteAuthentication(ctx context.Context) bool {
	w.mu.Lock()
	if w.stage == StageCompleted && w.err == nil {
		w.mu.Unlock()
		return true
	}
	if w.inflight != nil {
		att := w.inflight
		w.mu.Unlock()
		<-att.done
		return att.ok
	}

	att := &attempt{done: make(chan struct{})}
	w.inflight = att
	gen := w.generation
	w.stage = StageCreatingUser
	w.statusMessage = msgCreatingUser
	w.err = nil
	w.mu.Unlock()

	att.ok = w.run(ctx, gen)

	w.mu.Lock()
	if w.inflight == att {
		w.inflight = nil
	}
	w.mu.Unlock()
	close(att.done)

	return att.ok
}

// Retry re-runs a failed activation attempt. Chains that already delegated
// in this session are not re-delegated.
func (w *Workflow) Retry(ctx context.Context) bool {
	w.mu.Lock()
	if w.stage == StageError {
		w.stage = StageInitializing
		w.statusMessage = ""
		w.err = nil
	}
	w.mu.Unlock()
	return w.CompleteAuthentication(ctx)
}

// Reset invalidates all session state, including any in-flight attempt,
// for a new login. In-flight results for the previous principal are
// discarded when they land.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.generation++
	w.stage = StageInitializing
	w.statusMessage = ""
	w.err = nil
	w.record = nil
	w.delegated = make(map[account.Chain]struct{})
	w.inflight = nil
}

// Snapshot returns the current presentation-facing state.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	chains := make([]string, 0, len(w.delegated))
	for chain := range w.delegated {
		chains = append(chains, chain.String())
	}
	sort.Strings(chains)

	return Snapshot{
		Stage:           w.stage,
		IsLoading:       w.inflight != nil,
		Err:             w.err,
		StatusMessage:   w.statusMessage,
		DelegatedChains: chains,
	}
}

// Record returns the synced account record, nil until the sync stage has
// succeeded in this session.
func (w *Workflow) Record() *account.Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.record
}

// run executes the two stages for generation gen. Any state mutation first
// re-checks gen so a Reset during the run discards the attempt's results.
func (w *Workflow) run(ctx context.Context, gen uint64) bool {
	// Wallet enumeration happens up front so the sync call can report the
	// provider's addresses to the backend. Enumeration failure is tolerated:
	// a principal with no visible wallets may still activate.
	wallets, err := w.provider.Wallets(ctx)
	if err != nil {
		w.logger.Warn("Wallet enumeration failed, proceeding without wallets", zap.Error(err))
		wallets = nil
	}

	record, err := w.syncer.Run(ctx, syncRequest(wallets))
	if err != nil {
		return w.fail(gen, err)
	}

	if !w.advance(gen, record) {
		return false
	}

	skip := w.delegatedSet(gen)
	if skip == nil {
		return false
	}

	result := w.delegator.Run(ctx, wallets, skip, func(chain account.Chain) {
		w.markDelegated(gen, chain)
	})

	if !result.OK() {
		return w.fail(gen, ErrDelegationFailed)
	}
	return w.complete(gen, result)
}

// syncRequest builds the optional sync body from the provider's wallets.
func syncRequest(wallets []wallet.Wallet) *account.SyncRequest {
	if len(wallets) == 0 {
		return nil
	}
	addrs := make(map[string]string, len(wallets))
	for _, wlt := range wallets {
		addrs[wlt.Chain.String()] = wlt.Address
	}
	return &account.SyncRequest{WalletAddresses: addrs}
}

// advance records the synced account and moves to the delegation stage.
// Returns false when the attempt is stale.
func (w *Workflow) advance(gen uint64, record *account.Record) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if gen != w.generation {
		w.logger.Debug("Discarding sync result for stale session")
		return false
	}

	w.record = record
	w.stage = StageDelegatingWallets
	w.statusMessage = msgDelegatingWallets
	return true
}

// delegatedSet copies the chains already delegated in this session, or nil
// when the attempt is stale.
func (w *Workflow) delegatedSet(gen uint64) map[account.Chain]bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if gen != w.generation {
		return nil
	}
	skip := make(map[account.Chain]bool, len(w.delegated))
	for chain := range w.delegated {
		skip[chain] = true
	}
	return skip
}

// markDelegated adds a chain to the session's delegated set as soon as its
// delegation call succeeds. The set never shrinks within a session.
func (w *Workflow) markDelegated(gen uint64, chain account.Chain) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if gen != w.generation {
		return
	}
	w.delegated[chain] = struct{}{}
}

func (w *Workflow) complete(gen uint64, result Result) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if gen != w.generation {
		return false
	}

	w.stage = StageCompleted
	w.statusMessage = msgCompleted
	w.err = nil

	metrics.ActivationAttempts.WithLabelValues("completed").Inc()
	w.logger.Info("Account activation completed",
		zap.Int("delegated", len(result.Succeeded)),
		zap.Int("failed", len(result.Failed)),
	)
	return true
}

func (w *Workflow) fail(gen uint64, err error) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if gen != w.generation {
		w.logger.Debug("Discarding failure for stale session", zap.Error(err))
		return false
	}

	w.stage = StageError
	w.statusMessage = msgFailed
	w.err = err

	kind := Classify(err)
	metrics.ActivationAttempts.WithLabelValues(string(kind)).Inc()
	w.logger.Error("Account activation failed",
		zap.String("reason", string(kind)),
		zap.Error(err),
	)
	return false
}
