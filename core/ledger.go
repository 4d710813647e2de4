//   Copyright (C) 2018 ZVChain
//
//   This program is free software: you can redistribute it and/or modify
//   it under the terms of the GNU General Public License as published by
//   the Free Software Foundation, either version 3 of the License, or
//   (at your option) any later version.
//
//   This program is distributed in the hope that it will be useful,
//   but WITHOUT ANY WARRANTY; without even the implied warranty of
//   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//   GNU General Public License for more details.
//
//   You should have received a copy of the GNU General Public License
//   along with this program.  If not, see <https://www.gnu.org/licenses/>.

package core

import (
	"fmt"
	"math/big"

	"github.com/zvchain/zvsale/common"
	"github.com/zvchain/zvsale/middleware/types"
)

// ledgerMeta holds the supply counters of the token.
// Invariant: sum of balances + Reserve == TotalSupply, Committed <= Reserve
type ledgerMeta struct {
	TotalSupply   *types.BigInt  `msgpack:"ts"`
	Reserve       *types.BigInt  `msgpack:"rp"`
	Committed     *types.BigInt  `msgpack:"rc"` // granted to vesting or timelock entries but not released yet
	MintingClosed bool           `msgpack:"mc"`
	Owner         common.Address `msgpack:"o"`
}

// LedgerInfo is the read-only view of the ledger meta
type LedgerInfo struct {
	TotalSupply      *big.Int       `json:"totalSupply"`
	ReservePool      *big.Int       `json:"reservePool"`
	ReserveCommitted *big.Int       `json:"reserveCommitted"`
	AvailableReserve *big.Int       `json:"availableReserve"`
	MintingClosed    bool           `json:"mintingClosed"`
	TokenOwner       common.Address `json:"tokenOwner"`
}

// Ledger maps accounts to token balances and keeps the reserved pool
type Ledger struct {
	recordStore
}

func newLedger(db types.AccountDB) *Ledger {
	return &Ledger{recordStore{db: db, addr: common.LedgerStoreAddr}}
}

// init writes the empty meta owned by owner, called once at genesis
func (l *Ledger) init(owner common.Address) error {
	return l.setMeta(&ledgerMeta{
		TotalSupply: types.NewBigInt(0),
		Reserve:     types.NewBigInt(0),
		Committed:   types.NewBigInt(0),
		Owner:       owner,
	})
}

func (l *Ledger) meta() (*ledgerMeta, error) {
	m := &ledgerMeta{}
	ok, err := l.getRecord(keyMeta, m)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("ledger meta not found")
	}
	return m, nil
}

func (l *Ledger) setMeta(m *ledgerMeta) error {
	return l.setRecord(keyMeta, m)
}

func (l *Ledger) setBalance(account common.Address, v *big.Int) {
	l.setBig(getAccountKey(prefixBalance, account), v)
}

// BalanceOf returns the token balance of account
func (l *Ledger) BalanceOf(account common.Address) *big.Int {
	return l.getBig(getAccountKey(prefixBalance, account))
}

// TotalSupply returns the minted supply, reserved pool included
func (l *Ledger) TotalSupply() (*big.Int, error) {
	m, err := l.meta()
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(m.TotalSupply.Value()), nil
}

// AvailableReserve returns the part of the reserved pool not committed to any grant
func (l *Ledger) AvailableReserve() (*big.Int, error) {
	m, err := l.meta()
	if err != nil {
		return nil, err
	}
	return new(big.Int).Sub(m.Reserve.Value(), m.Committed.Value()), nil
}

// Info returns a copy of the ledger counters
func (l *Ledger) Info() (*LedgerInfo, error) {
	m, err := l.meta()
	if err != nil {
		return nil, err
	}
	return &LedgerInfo{
		TotalSupply:      new(big.Int).Set(m.TotalSupply.Value()),
		ReservePool:      new(big.Int).Set(m.Reserve.Value()),
		ReserveCommitted: new(big.Int).Set(m.Committed.Value()),
		AvailableReserve: new(big.Int).Sub(m.Reserve.Value(), m.Committed.Value()),
		MintingClosed:    m.MintingClosed,
		TokenOwner:       m.Owner,
	}, nil
}

func (l *Ledger) checkMint(m *ledgerMeta, caller common.Address, amount *big.Int) error {
	if caller != m.Owner {
		return fmt.Errorf("%w: %v is not the token owner", ErrUnauthorized, caller)
	}
	if m.MintingClosed {
		return ErrMintingClosed
	}
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("%w: mint amount must be positive", ErrInvalidArgument)
	}
	return nil
}

// Mint credits amount new tokens to the account. Only the token owner can mint, and only before minting is closed
func (l *Ledger) Mint(caller, to common.Address, amount *big.Int) error {
	m, err := l.meta()
	if err != nil {
		return err
	}
	if err := l.checkMint(m, caller, amount); err != nil {
		return err
	}
	l.setBalance(to, new(big.Int).Add(l.BalanceOf(to), amount))
	m.TotalSupply = types.BigIntFrom(new(big.Int).Add(m.TotalSupply.Value(), amount))
	return l.setMeta(m)
}

// MintReserve mints amount new tokens into the reserved pool
func (l *Ledger) MintReserve(caller common.Address, amount *big.Int) error {
	m, err := l.meta()
	if err != nil {
		return err
	}
	if err := l.checkMint(m, caller, amount); err != nil {
		return err
	}
	m.Reserve = types.BigIntFrom(new(big.Int).Add(m.Reserve.Value(), amount))
	m.TotalSupply = types.BigIntFrom(new(big.Int).Add(m.TotalSupply.Value(), amount))
	return l.setMeta(m)
}

// CloseMinting disables minting permanently
func (l *Ledger) CloseMinting() error {
	m, err := l.meta()
	if err != nil {
		return err
	}
	m.MintingClosed = true
	return l.setMeta(m)
}

// TransferOwnership hands the token administration to newOwner
func (l *Ledger) TransferOwnership(newOwner common.Address) error {
	m, err := l.meta()
	if err != nil {
		return err
	}
	m.Owner = newOwner
	return l.setMeta(m)
}

// Transfer moves amount tokens between two accounts
func (l *Ledger) Transfer(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("%w: transfer amount must be positive", ErrInvalidArgument)
	}
	if to.IsZero() || common.IsStoreAddress(to) {
		return fmt.Errorf("%w: bad receiver %v", ErrInvalidArgument, to)
	}
	balance := l.BalanceOf(from)
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: balance %v, need %v", ErrInsufficientBalance, balance, amount)
	}
	if from == to {
		return nil
	}
	l.setBalance(from, balance.Sub(balance, amount))
	l.setBalance(to, new(big.Int).Add(l.BalanceOf(to), amount))
	return nil
}

// Reserve commits amount of the reserved pool to a grant
func (l *Ledger) Reserve(amount *big.Int) error {
	m, err := l.meta()
	if err != nil {
		return err
	}
	available := new(big.Int).Sub(m.Reserve.Value(), m.Committed.Value())
	if available.Cmp(amount) < 0 {
		return fmt.Errorf("%w: available %v, need %v", ErrInsufficientReserve, available, amount)
	}
	m.Committed = types.BigIntFrom(new(big.Int).Add(m.Committed.Value(), amount))
	return l.setMeta(m)
}

// ReleaseReserved moves committed tokens out of the pool to the account. Total supply does not change
func (l *Ledger) ReleaseReserved(to common.Address, amount *big.Int) error {
	m, err := l.meta()
	if err != nil {
		return err
	}
	if m.Committed.Value().Cmp(amount) < 0 || m.Reserve.Value().Cmp(amount) < 0 {
		panic(fmt.Errorf("release %v exceeds committed reserve %v", amount, m.Committed.Value()))
	}
	m.Committed = types.BigIntFrom(new(big.Int).Sub(m.Committed.Value(), amount))
	m.Reserve = types.BigIntFrom(new(big.Int).Sub(m.Reserve.Value(), amount))
	l.setBalance(to, new(big.Int).Add(l.BalanceOf(to), amount))
	return l.setMeta(m)
}
