package core

import (
	"sort"

	"otcledger/internal/domain"
)

type balanceKey struct {
	owner domain.Identity
	asset domain.Asset
}

// AccountLedger stores per-(owner, asset) balances. It uses identity
// only as a lookup key; authorization is the caller's responsibility.
type AccountLedger struct {
	balances map[balanceKey]uint64
}

func NewAccountLedger() *AccountLedger {
	return &AccountLedger{balances: make(map[balanceKey]uint64)}
}

// Balance returns the owner's balance of the asset, 0 for unknown
// entries. It never fails.
func (l *AccountLedger) Balance(asset domain.Asset, owner domain.Identity) uint64 {
	return l.balances[balanceKey{owner: owner, asset: asset}]
}

// Credit adds delta to the balance, saturating at the maximum
// representable value, and returns the new balance.
func (l *AccountLedger) Credit(asset domain.Asset, owner domain.Identity, delta uint64) uint64 {
	k := balanceKey{owner: owner, asset: asset}
	next := domain.SatAdd(l.balances[k], delta)
	l.balances[k] = next
	return next
}

// Debit subtracts delta from the balance. The sufficiency check makes
// the subtraction itself unable to underflow.
func (l *AccountLedger) Debit(asset domain.Asset, owner domain.Identity, delta uint64) error {
	k := balanceKey{owner: owner, asset: asset}
	cur := l.balances[k]
	if cur < delta {
		return domain.ErrInsufficientFunds
	}
	l.balances[k] = cur - delta
	return nil
}

// Restore installs a balance read back from a repository.
func (l *AccountLedger) Restore(owner domain.Identity, asset domain.Asset, amount uint64) {
	l.balances[balanceKey{owner: owner, asset: asset}] = amount
}

// Entries returns every non-zero balance in a stable order.
func (l *AccountLedger) Entries() []domain.BalanceEntry {
	out := make([]domain.BalanceEntry, 0, len(l.balances))
	for k, v := range l.balances {
		if v == 0 {
			continue
		}
		out = append(out, domain.BalanceEntry{Owner: k.owner, Asset: k.asset, Amount: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Owner != out[j].Owner {
			return out[i].Owner < out[j].Owner
		}
		return out[i].Asset < out[j].Asset
	})
	return out
}
