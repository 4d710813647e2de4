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

// TimelockEntry releases Amount at once when ReleaseTime is reached
type TimelockEntry struct {
	Beneficiary common.Address `msgpack:"b" json:"beneficiary"`
	Amount      *types.BigInt  `msgpack:"a" json:"amount"`
	ReleaseTime int64          `msgpack:"rt" json:"releaseTime"`
	Released    bool           `msgpack:"r" json:"released"`
}

// TimelockBook keeps one single date release per beneficiary, funded from the reserved pool
type TimelockBook struct {
	recordStore
	owner  common.Address
	ledger *Ledger
}

func newTimelockBook(db types.AccountDB, cfg *SaleConfig, ledger *Ledger) *TimelockBook {
	return &TimelockBook{
		recordStore: recordStore{db: db, addr: common.TimelockStoreAddr},
		owner:       cfg.Owner,
		ledger:      ledger,
	}
}

// EntryOf returns the entry of beneficiary, nil if none was granted
func (tb *TimelockBook) EntryOf(beneficiary common.Address) (*TimelockEntry, error) {
	te := &TimelockEntry{}
	ok, err := tb.getRecord(getAccountKey(prefixTimelock, beneficiary), te)
	if err != nil || !ok {
		return nil, err
	}
	return te, nil
}

// Grant reserves amount tokens for beneficiary until releaseTime
func (tb *TimelockBook) Grant(caller, beneficiary common.Address, amount *big.Int, releaseTime int64) (*TimelockEntry, error) {
	if caller != tb.owner {
		return nil, fmt.Errorf("%w: %v is not the owner", ErrUnauthorized, caller)
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: timelock amount must be positive", ErrInvalidArgument)
	}
	if beneficiary.IsZero() || common.IsStoreAddress(beneficiary) {
		return nil, fmt.Errorf("%w: bad beneficiary %v", ErrInvalidArgument, beneficiary)
	}
	if err := checkTimestamp("release time", releaseTime); err != nil {
		return nil, err
	}
	old, err := tb.EntryOf(beneficiary)
	if err != nil {
		return nil, err
	}
	if old != nil {
		return nil, fmt.Errorf("%w: timelock of %v", ErrAlreadyGranted, beneficiary)
	}
	if err := tb.ledger.Reserve(amount); err != nil {
		return nil, err
	}
	te := &TimelockEntry{
		Beneficiary: beneficiary,
		Amount:      types.BigIntFrom(amount),
		ReleaseTime: releaseTime,
	}
	if err := tb.setRecord(getAccountKey(prefixTimelock, beneficiary), te); err != nil {
		return nil, err
	}
	return te, nil
}

// Release credits the locked amount to receiver once the release time is reached
func (tb *TimelockBook) Release(beneficiary, receiver common.Address, now int64) (*big.Int, error) {
	te, err := tb.EntryOf(beneficiary)
	if err != nil {
		return nil, err
	}
	if te == nil {
		return nil, fmt.Errorf("%w: no timelock for %v", ErrNothingToRelease, beneficiary)
	}
	if now < te.ReleaseTime {
		return nil, fmt.Errorf("%w: %d < %d", ErrTooEarly, now, te.ReleaseTime)
	}
	if te.Released {
		return nil, fmt.Errorf("%w: timelock of %v", ErrAlreadyReleased, beneficiary)
	}
	amount := new(big.Int).Set(te.Amount.Value())
	if err := tb.ledger.ReleaseReserved(receiver, amount); err != nil {
		return nil, err
	}
	te.Released = true
	if err := tb.setRecord(getAccountKey(prefixTimelock, beneficiary), te); err != nil {
		return nil, err
	}
	return amount, nil
}
