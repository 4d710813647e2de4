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
	"math/big"
	"testing"

	"github.com/zvchain/zvsale/middleware/types"
)

func TestVesting_Linear(t *testing.T) {
	chain, clean := newTestChain(t, newTestConfig())
	defer clean()

	const start, duration = 1000, 400
	r, err := chain.GrantVesting(alice, bob, big.NewInt(1000), start, duration, 0)
	mustReject(t, r, err, ErrUnauthorized)
	mustAccept(t)(chain.GrantVesting(ownerAddr, bob, big.NewInt(1000), start, duration, 0))

	r, err = chain.ReleaseVested(bob, start-1)
	mustReject(t, r, err, ErrNothingToRelease)

	steps := []struct {
		now      int64
		released int64
		balance  int64
	}{
		{start + 100, 250, 250},
		{start + 200, 250, 500},
		{start + 500, 500, 1000},
	}
	for _, s := range steps {
		_, releasable, _ := chain.Vesting(bob, s.now)
		if releasable.Int64() != s.released {
			t.Errorf("releasable at %d wanted: %d, got: %v", s.now, s.released, releasable)
		}
		r := mustAccept(t)(chain.ReleaseVested(bob, s.now))
		if r.Events[0].Amount.Value().Int64() != s.released {
			t.Errorf("release at %d wanted: %d, got: %v", s.now, s.released, r.Events[0].Amount.Value())
		}
		if b := chain.BalanceOf(bob); b.Int64() != s.balance {
			t.Errorf("balance at %d wanted: %d, got: %v", s.now, s.balance, b)
		}
	}

	r, err = chain.ReleaseVested(bob, start+600)
	mustReject(t, r, err, ErrNothingToRelease)
	vs, releasable, _ := chain.Vesting(bob, start+600)
	if vs.Released.Value().Int64() != 1000 || releasable.Sign() != 0 {
		t.Errorf("unexpected schedule %+v", vs)
	}
	info, _ := chain.LedgerInfo()
	if info.ReservePool.Int64() != 9000 || info.ReserveCommitted.Sign() != 0 || info.TotalSupply.Int64() != 10000 {
		t.Errorf("unexpected ledger %+v", info)
	}
}

func TestVesting_Grant(t *testing.T) {
	chain, clean := newTestChain(t, newTestConfig())
	defer clean()

	r, err := chain.GrantVesting(ownerAddr, bob, big.NewInt(1000), 0, 0, 0)
	mustReject(t, r, err, ErrInvalidArgument)
	r, err = chain.GrantVesting(ownerAddr, bob, big.NewInt(20000), 0, 100, 0)
	mustReject(t, r, err, ErrInsufficientReserve)

	// out of range times would wrap the elapsed time
	r, err = chain.GrantVesting(ownerAddr, bob, big.NewInt(1000), -1, 100, 0)
	mustReject(t, r, err, ErrInvalidArgument)
	r, err = chain.GrantVesting(ownerAddr, bob, big.NewInt(1000), MaxTimestamp+1, 100, 0)
	mustReject(t, r, err, ErrInvalidArgument)
	r, err = chain.GrantVesting(ownerAddr, bob, big.NewInt(1000), 0, MaxPeriod+1, 0)
	mustReject(t, r, err, ErrInvalidArgument)

	mustAccept(t)(chain.GrantVesting(ownerAddr, bob, big.NewInt(6000), 0, 100, 0))
	r, err = chain.GrantVesting(ownerAddr, bob, big.NewInt(1), 0, 100, 0)
	mustReject(t, r, err, ErrAlreadyGranted)

	// vesting and timelocks draw on the same pool
	r, err = chain.GrantTimelock(ownerAddr, carol, big.NewInt(5000), 100, 0)
	mustReject(t, r, err, ErrInsufficientReserve)
	mustAccept(t)(chain.GrantTimelock(ownerAddr, carol, big.NewInt(4000), 100, 0))
	info, _ := chain.LedgerInfo()
	if info.AvailableReserve.Sign() != 0 {
		t.Errorf("wanted: 0, got: %v", info.AvailableReserve)
	}
}

func TestVesting_ReleaseToTarget(t *testing.T) {
	chain, clean := newTestChain(t, newTestConfig())
	defer clean()

	mustAccept(t)(chain.GrantVesting(ownerAddr, bob, big.NewInt(100), 0, 10, 0))
	r, err := chain.ReleaseVested(alice, 20)
	mustReject(t, r, err, ErrNothingToRelease)

	src, target := bob, eve
	tx, err := chain.newTx(types.TransactionTypeReleaseVested, src, &target, nil, nil, 20)
	if err != nil {
		t.Fatal(err)
	}
	mustAccept(t)(chain.Execute(tx))
	checkBalance(t, chain, eve, big.NewInt(100))
	checkBalance(t, chain, bob, big.NewInt(0))
}
