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

// VestingSchedule releases Total linearly from Start over Duration seconds
type VestingSchedule struct {
	Beneficiary common.Address `msgpack:"b" json:"beneficiary"`
	Total       *types.BigInt  `msgpack:"t" json:"total"`
	Start       int64          `msgpack:"s" json:"start"`
	Duration    uint64         `msgpack:"d" json:"duration"`
	Released    *types.BigInt  `msgpack:"r" json:"released"`
}

// vestedAt returns the cumulative amount vested at now
func (vs *VestingSchedule) vestedAt(now int64) *big.Int {
	if now < vs.Start {
		return new(big.Int)
	}
	elapsed := uint64(now - vs.Start)
	if elapsed >= vs.Duration {
		return new(big.Int).Set(vs.Total.Value())
	}
	vested := new(big.Int).Mul(vs.Total.Value(), new(big.Int).SetUint64(elapsed))
	return vested.Div(vested, new(big.Int).SetUint64(vs.Duration))
}

// releasable returns the vested amount not released yet
func (vs *VestingSchedule) releasable(now int64) *big.Int {
	return new(big.Int).Sub(vs.vestedAt(now), vs.Released.Value())
}

// VestingBook keeps one linear schedule per beneficiary, funded from the reserved pool
type VestingBook struct {
	recordStore
	owner  common.Address
	ledger *Ledger
}

func newVestingBook(db types.AccountDB, cfg *SaleConfig, ledger *Ledger) *VestingBook {
	return &VestingBook{
		recordStore: recordStore{db: db, addr: common.VestingStoreAddr},
		owner:       cfg.Owner,
		ledger:      ledger,
	}
}

// ScheduleOf returns the schedule of beneficiary, nil if none was granted
func (vb *VestingBook) ScheduleOf(beneficiary common.Address) (*VestingSchedule, error) {
	vs := &VestingSchedule{}
	ok, err := vb.getRecord(getAccountKey(prefixVesting, beneficiary), vs)
	if err != nil || !ok {
		return nil, err
	}
	return vs, nil
}

// Grant reserves total tokens for beneficiary, vesting from start over duration seconds
func (vb *VestingBook) Grant(caller, beneficiary common.Address, total *big.Int, start int64, duration uint64) (*VestingSchedule, error) {
	if caller != vb.owner {
		return nil, fmt.Errorf("%w: %v is not the owner", ErrUnauthorized, caller)
	}
	if total == nil || total.Sign() <= 0 {
		return nil, fmt.Errorf("%w: vesting amount must be positive", ErrInvalidArgument)
	}
	if err := checkTimestamp("vesting start", start); err != nil {
		return nil, err
	}
	if err := checkPeriod("vesting duration", duration); err != nil {
		return nil, err
	}
	if beneficiary.IsZero() || common.IsStoreAddress(beneficiary) {
		return nil, fmt.Errorf("%w: bad beneficiary %v", ErrInvalidArgument, beneficiary)
	}
	old, err := vb.ScheduleOf(beneficiary)
	if err != nil {
		return nil, err
	}
	if old != nil {
		return nil, fmt.Errorf("%w: vesting of %v", ErrAlreadyGranted, beneficiary)
	}
	if err := vb.ledger.Reserve(total); err != nil {
		return nil, err
	}
	vs := &VestingSchedule{
		Beneficiary: beneficiary,
		Total:       types.BigIntFrom(total),
		Start:       start,
		Duration:    duration,
		Released:    types.NewBigInt(0),
	}
	if err := vb.setRecord(getAccountKey(prefixVesting, beneficiary), vs); err != nil {
		return nil, err
	}
	return vs, nil
}

// Releasable returns what Release would deliver at now
func (vb *VestingBook) Releasable(beneficiary common.Address, now int64) (*big.Int, error) {
	vs, err := vb.ScheduleOf(beneficiary)
	if err != nil {
		return nil, err
	}
	if vs == nil {
		return new(big.Int), nil
	}
	return vs.releasable(now), nil
}

// Release credits the vested but unreleased tokens to receiver.
// Each call either delivers a positive amount or fails
func (vb *VestingBook) Release(beneficiary, receiver common.Address, now int64) (*big.Int, error) {
	vs, err := vb.ScheduleOf(beneficiary)
	if err != nil {
		return nil, err
	}
	if vs == nil {
		return nil, fmt.Errorf("%w: no vesting for %v", ErrNothingToRelease, beneficiary)
	}
	deliverable := vs.releasable(now)
	if deliverable.Sign() <= 0 {
		return nil, fmt.Errorf("%w: released %v of %v", ErrNothingToRelease, vs.Released.Value(), vs.Total.Value())
	}
	if err := vb.ledger.ReleaseReserved(receiver, deliverable); err != nil {
		return nil, err
	}
	vs.Released = types.BigIntFrom(vs.vestedAt(now))
	if err := vb.setRecord(getAccountKey(prefixVesting, beneficiary), vs); err != nil {
		return nil, err
	}
	return deliverable, nil
}
