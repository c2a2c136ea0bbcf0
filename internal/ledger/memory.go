package ledger

import (
	"context"
	"fmt"
	"sync"

	"cosmossdk.io/math"
)

// Ledger is an in-memory TokenLedger used in tests and dev mode.
type Ledger struct {
	mu sync.RWMutex

	// account the ledger acts as on Transfer, usually the engine's.
	account string

	balances   map[string]math.Int
	allowances map[string]map[string]math.Int // owner -> spender -> amount
}

func NewLedger(account string) *Ledger {
	return &Ledger{
		account:    account,
		balances:   make(map[string]math.Int),
		allowances: make(map[string]map[string]math.Int),
	}
}

// Mint credits an account out of thin air. Test/dev helper, not part of
// TokenLedger.
func (l *Ledger) Mint(account string, amount math.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances[account] = l.balanceLocked(account).Add(amount)
}

// Approve grants spender an allowance over owner's balance.
func (l *Ledger) Approve(owner, spender string, amount math.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.allowances[owner] == nil {
		l.allowances[owner] = make(map[string]math.Int)
	}
	l.allowances[owner][spender] = amount
}

func (l *Ledger) TransferFrom(ctx context.Context, from, to string, amount math.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	allowance := l.allowanceLocked(from, l.account)
	if allowance.LT(amount) {
		return fmt.Errorf("allowance of %s for %s is %s, need %s", from, l.account, allowance, amount)
	}

	if err := l.moveLocked(from, to, amount); err != nil {
		return err
	}
	l.allowances[from][l.account] = allowance.Sub(amount)

	return nil
}

func (l *Ledger) Transfer(ctx context.Context, to string, amount math.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.moveLocked(l.account, to, amount)
}

func (l *Ledger) BalanceOf(ctx context.Context, account string) (math.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.balanceLocked(account), nil
}

func (l *Ledger) moveLocked(from, to string, amount math.Int) error {
	balance := l.balanceLocked(from)
	if balance.LT(amount) {
		return fmt.Errorf("balance of %s is %s, need %s", from, balance, amount)
	}

	l.balances[from] = balance.Sub(amount)
	l.balances[to] = l.balanceLocked(to).Add(amount)

	return nil
}

func (l *Ledger) balanceLocked(account string) math.Int {
	if b, ok := l.balances[account]; ok {
		return b
	}
	return math.ZeroInt()
}

func (l *Ledger) allowanceLocked(owner, spender string) math.Int {
	if a, ok := l.allowances[owner][spender]; ok {
		return a
	}
	return math.ZeroInt()
}

// Collection is an in-memory CollectionOracle.
type Collection struct {
	mu     sync.RWMutex
	owners map[string]uint64
}

func NewCollection() *Collection {
	return &Collection{owners: make(map[string]uint64)}
}

func (c *Collection) Mint(owner string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.owners[owner]++
}

func (c *Collection) Burn(owner string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.owners[owner] > 0 {
		c.owners[owner]--
	}
}

func (c *Collection) BalanceOf(ctx context.Context, owner string) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.owners[owner], nil
}
