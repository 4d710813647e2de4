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
)

func TestTimelock_Release(t *testing.T) {
	chain, clean := newTestChain(t, newTestConfig())
	defer clean()

	const releaseTime = 5000
	r, err := chain.GrantTimelock(bob, bob, big.NewInt(300), releaseTime, 0)
	mustReject(t, r, err, ErrUnauthorized)
	r, err = chain.GrantTimelock(ownerAddr, bob, big.NewInt(0), releaseTime, 0)
	mustReject(t, r, err, ErrInvalidArgument)
	r, err = chain.GrantTimelock(ownerAddr, bob, big.NewInt(300), -1, 0)
	mustReject(t, r, err, ErrInvalidArgument)
	r, err = chain.GrantTimelock(ownerAddr, bob, big.NewInt(300), MaxTimestamp+1, 0)
	mustReject(t, r, err, ErrInvalidArgument)
	mustAccept(t)(chain.GrantTimelock(ownerAddr, bob, big.NewInt(300), releaseTime, 0))
	r, err = chain.GrantTimelock(ownerAddr, bob, big.NewInt(300), releaseTime, 0)
	mustReject(t, r, err, ErrAlreadyGranted)

	r, err = chain.ReleaseTimelocked(alice, releaseTime)
	mustReject(t, r, err, ErrNothingToRelease)
	r, err = chain.ReleaseTimelocked(bob, releaseTime-1)
	mustReject(t, r, err, ErrTooEarly)

	mustAccept(t)(chain.ReleaseTimelocked(bob, releaseTime))
	checkBalance(t, chain, bob, big.NewInt(300))
	te, _ := chain.Timelock(bob)
	if te == nil || !te.Released {
		t.Errorf("unexpected entry %+v", te)
	}
	r, err = chain.ReleaseTimelocked(bob, releaseTime+1)
	mustReject(t, r, err, ErrAlreadyReleased)

	info, _ := chain.LedgerInfo()
	if info.ReservePool.Int64() != 9700 || info.ReserveCommitted.Sign() != 0 || info.TotalSupply.Int64() != 10000 {
		t.Errorf("unexpected ledger %+v", info)
	}
	checkSupply(t, chain.comps.ledger, bob)
}
