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
	"errors"
	"math/big"
	"testing"

	"github.com/zvchain/zvsale/common"
)

// checkSupply verifies that balances plus the reserved pool add up to the total supply
func checkSupply(t *testing.T, l *Ledger, holders ...common.Address) {
	t.Helper()
	info, err := l.Info()
	if err != nil {
		t.Fatal(err)
	}
	sum := new(big.Int).Set(info.ReservePool)
	for _, h := range holders {
		sum.Add(sum, l.BalanceOf(h))
	}
	if sum.Cmp(info.TotalSupply) != 0 {
		t.Errorf("wanted supply: %v, got: %v", info.TotalSupply, sum)
	}
	if info.ReserveCommitted.Cmp(info.ReservePool) > 0 {
		t.Errorf("committed %v above pool %v", info.ReserveCommitted, info.ReservePool)
	}
}

func TestLedger_Mint(t *testing.T) {
	chain, clean := newTestChain(t, newTestConfig())
	defer clean()
	l := chain.comps.ledger

	if err := l.Mint(alice, alice, big.NewInt(5)); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("wanted: %v, got: %v", ErrUnauthorized, err)
	}
	if err := l.Mint(common.SaleStoreAddr, alice, big.NewInt(0)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("wanted: %v, got: %v", ErrInvalidArgument, err)
	}
	if err := l.Mint(common.SaleStoreAddr, alice, big.NewInt(5)); err != nil {
		t.Fatal(err)
	}
	if supply, _ := l.TotalSupply(); supply.Int64() != 10005 {
		t.Errorf("wanted: 10005, got: %v", supply)
	}
	checkSupply(t, l, alice)

	if err := l.CloseMinting(); err != nil {
		t.Fatal(err)
	}
	if err := l.Mint(common.SaleStoreAddr, alice, big.NewInt(5)); !errors.Is(err, ErrMintingClosed) {
		t.Errorf("wanted: %v, got: %v", ErrMintingClosed, err)
	}
	if err := l.MintReserve(common.SaleStoreAddr, big.NewInt(5)); !errors.Is(err, ErrMintingClosed) {
		t.Errorf("wanted: %v, got: %v", ErrMintingClosed, err)
	}
}

func TestLedger_Reserve(t *testing.T) {
	chain, clean := newTestChain(t, newTestConfig())
	defer clean()
	l := chain.comps.ledger

	if err := l.Reserve(big.NewInt(6000)); err != nil {
		t.Fatal(err)
	}
	if err := l.Reserve(big.NewInt(5000)); !errors.Is(err, ErrInsufficientReserve) {
		t.Errorf("wanted: %v, got: %v", ErrInsufficientReserve, err)
	}
	if err := l.ReleaseReserved(bob, big.NewInt(1000)); err != nil {
		t.Fatal(err)
	}
	info, _ := l.Info()
	if info.ReservePool.Int64() != 9000 || info.ReserveCommitted.Int64() != 5000 || info.AvailableReserve.Int64() != 4000 {
		t.Errorf("unexpected ledger %+v", info)
	}
	if info.TotalSupply.Int64() != 10000 || l.BalanceOf(bob).Int64() != 1000 {
		t.Errorf("release should not change supply %+v", info)
	}
	checkSupply(t, l, bob)

	defer func() {
		if recover() == nil {
			t.Errorf("releasing more than committed should panic")
		}
	}()
	l.ReleaseReserved(bob, big.NewInt(5001))
}

func TestLedger_Transfer(t *testing.T) {
	chain, clean := newTestChain(t, newTestConfig())
	defer clean()

	r, err := chain.Transfer(alice, bob, big.NewInt(1), testStart)
	mustReject(t, r, err, ErrInsufficientBalance)

	mustAccept(t)(chain.Contribute(alice, ether(100), testStart))
	r, err = chain.Transfer(alice, common.LedgerStoreAddr, big.NewInt(1), testStart)
	mustReject(t, r, err, ErrInvalidArgument)
	r, err = chain.Transfer(alice, bob, big.NewInt(0), testStart)
	mustReject(t, r, err, ErrInvalidArgument)

	mustAccept(t)(chain.Transfer(alice, bob, tokens(40), testStart))
	checkBalance(t, chain, alice, tokens(60))
	checkBalance(t, chain, bob, tokens(40))
	checkSupply(t, chain.comps.ledger, alice, bob)
}

func TestLedger_MintReserve(t *testing.T) {
	chain, clean := newTestChain(t, newTestConfig())
	defer clean()

	r, err := chain.MintReserve(alice, big.NewInt(500), testStart)
	mustReject(t, r, err, ErrUnauthorized)
	mustAccept(t)(chain.MintReserve(ownerAddr, big.NewInt(500), testStart))
	info, _ := chain.LedgerInfo()
	if info.ReservePool.Int64() != 10500 || info.TotalSupply.Int64() != 10500 {
		t.Errorf("unexpected ledger %+v", info)
	}
}
