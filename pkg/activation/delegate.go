package activation

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/cardlink-labs/cardlink-middleware/internal/metrics"
	"github.com/cardlink-labs/cardlink-middleware/pkg/account"
	"github.com/cardlink-labs/cardlink-middleware/pkg/wallet"
)

// Result aggregates per-chain delegation outcomes for one stage run.
type Result struct {
	Succeeded []account.Chain
	Failed    []account.Chain
}

// OK reports stage success: at least one chain delegated, or there was
// nothing to delegate in the first place.
func (r Result) OK() bool {
	if len(r.Succeeded) == 0 && len(r.Failed) == 0 {
		return true
	}
	return len(r.Succeeded) > 0
}

// Delegator runs the wallet delegation stage. One delegation call is issued
// per undelegated chain, all chains concurrently; a failure on one chain
// never aborts the others.
type Delegator struct {
	provider wallet.Provider
	logger   *zap.Logger
}

// NewDelegator creates the delegation stage over the given provider.
func NewDelegator(provider wallet.Provider, logger *zap.Logger) *Delegator {
	return &Delegator{
		provider: provider,
		logger:   logger,
	}
}

// Run delegates every wallet whose chain is not in skip. onDelegated fires
// as each chain succeeds, before Run returns, so the caller can record
// progress incrementally and a later retry skips chains that already made it.
func (d *Delegator) Run(
	ctx context.Context,
	wallets []wallet.Wallet,
	skip map[account.Chain]bool,
	onDelegated func(account.Chain),
) Result {
	pending := make([]wallet.Wallet, 0, len(wallets))
	for _, w := range wallets {
		if w.Address == "" || skip[w.Chain] {
			continue
		}
		pending = append(pending, w)
	}

	if len(pending) == 0 {
		return Result{}
	}

	var (
		mu     sync.Mutex
		result Result
		wg     sync.WaitGroup
	)

	for _, w := range pending {
		wg.Add(1)
		go func(w wallet.Wallet) {
			defer wg.Done()

			err := d.provider.Delegate(ctx, wallet.DelegateRequest{
				Address:   w.Address,
				ChainType: w.Chain,
			})
			if err != nil {
				d.logger.Warn("Wallet delegation failed",
					zap.String("chain", w.Chain.String()),
					zap.Error(err),
				)
				metrics.DelegationsTotal.WithLabelValues(w.Chain.String(), "failure").Inc()

				mu.Lock()
				result.Failed = append(result.Failed, w.Chain)
				mu.Unlock()
				return
			}

			d.logger.Info("Wallet delegated", zap.String("chain", w.Chain.String()))
			metrics.DelegationsTotal.WithLabelValues(w.Chain.String(), "success").Inc()

			if onDelegated != nil {
				onDelegated(w.Chain)
			}

			mu.Lock()
			result.Succeeded = append(result.Succeeded, w.Chain)
			mu.Unlock()
		}(w)
	}

	wg.Wait()
	return result
}
