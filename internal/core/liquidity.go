package core

import "otcledger/internal/domain"

type poolKey struct {
	provider domain.Identity
	asset    domain.Asset
}

// LiquidityRegistry stores pools keyed by (provider, asset). Position
// ids come from a sequence shared across all pairs, owned by the
// engine, so two positions never share an id; the id itself is never
// a lookup key.
type LiquidityRegistry struct {
	pools map[poolKey]*domain.LiquidityPosition
	seq   *Sequence
}

func NewLiquidityRegistry(seq *Sequence) *LiquidityRegistry {
	return &LiquidityRegistry{pools: make(map[poolKey]*domain.LiquidityPosition), seq: seq}
}

// Upsert merges amount into the provider's pool for the asset,
// creating the position on first contribution. It reports whether a
// new position was created. Balance debiting happens before this call;
// the registry itself never touches the account ledger.
func (r *LiquidityRegistry) Upsert(provider domain.Identity, asset domain.Asset, amount uint64) (*domain.LiquidityPosition, bool) {
	k := poolKey{provider: provider, asset: asset}
	if p, ok := r.pools[k]; ok {
		p.Amount = domain.SatAdd(p.Amount, amount)
		return p, false
	}
	p := &domain.LiquidityPosition{
		ID:       r.seq.Next(),
		Asset:    asset,
		Provider: provider,
		Amount:   amount,
	}
	r.pools[k] = p
	return p, true
}

// Position is a pure lookup.
func (r *LiquidityRegistry) Position(provider domain.Identity, asset domain.Asset) (*domain.LiquidityPosition, bool) {
	p, ok := r.pools[poolKey{provider: provider, asset: asset}]
	return p, ok
}

// Restore installs a position read back from a repository and advances
// the shared id sequence past it.
func (r *LiquidityRegistry) Restore(p *domain.LiquidityPosition) {
	r.pools[poolKey{provider: p.Provider, asset: p.Asset}] = p
	r.seq.Observe(p.ID)
}
