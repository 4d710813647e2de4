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

	"github.com/zvchain/zvsale/common"
)

func checkBalance(t *testing.T, chain *SaleChain, addr common.Address, want *big.Int) {
	t.Helper()
	if got := chain.BalanceOf(addr); got.Cmp(want) != 0 {
		t.Errorf("balance of %v wanted: %v, got: %v", addr.AddrPrefixString(), want, got)
	}
}

func TestSale_ExchangeRates(t *testing.T) {
	chain, clean := newTestChain(t, newTestConfig())
	defer clean()

	mustAccept(t)(chain.Contribute(alice, ether(1000), testStart+day))
	checkBalance(t, chain, alice, tokens(1000))

	mustAccept(t)(chain.AdvanceStage(ownerAddr, stageOneEnd+day))
	stage, _ := chain.ActiveStage(stageTwoStart + day)
	if stage.Index != 1 || stage.Start != stageTwoStart || !stage.Active {
		t.Fatalf("unexpected second stage %+v", stage)
	}
	mustAccept(t)(chain.Contribute(bob, ether(500), stageTwoStart+day))
	checkBalance(t, chain, bob, tokens(375))

	mustAccept(t)(chain.AdvanceStage(ownerAddr, stageTwoEnd+day))
	mustAccept(t)(chain.Contribute(carol, ether(200), stageThreeStart+day))
	checkBalance(t, chain, carol, tokens(100))

	stage, _ = chain.ActiveStage(stageThreeStart + day)
	if !stage.Last || stage.Rate != 500 {
		t.Errorf("unexpected last stage %+v", stage)
	}
	r, err := chain.AdvanceStage(ownerAddr, testEnd+day)
	mustReject(t, r, err, ErrInvalidTransition)
}

func TestSale_AdvanceStage(t *testing.T) {
	chain, clean := newTestChain(t, newTestConfig())
	defer clean()

	r, err := chain.AdvanceStage(ownerAddr, stageOneEnd)
	mustReject(t, r, err, ErrInvalidTransition)
	r, err = chain.AdvanceStage(alice, stageOneEnd+1)
	mustReject(t, r, err, ErrUnauthorized)

	r = mustAccept(t)(chain.AdvanceStage(ownerAddr, stageOneEnd+1))
	if len(r.Events) != 1 || r.Events[0].Extra["stage"] != "1" {
		t.Errorf("unexpected events %v", r.Events)
	}
	// contributions during the break go nowhere
	r, err = chain.Contribute(alice, ether(1000), stageOneEnd+day)
	mustReject(t, r, err, ErrStageInactive)
	mustAccept(t)(chain.Contribute(alice, ether(1000), stageTwoStart))

	// advancing early in the break still opens the whole stage
	stage, _ := chain.ActiveStage(stageTwoStart + 3*day)
	if stage.Start != stageTwoStart || stage.Deadline != stageTwoEnd || !stage.Active {
		t.Fatalf("unexpected second stage %+v", stage)
	}
	mustAccept(t)(chain.Contribute(bob, ether(500), stageTwoStart+3*day))
	checkBalance(t, chain, bob, tokens(375))
}

func TestSale_AdvanceAfterBreak(t *testing.T) {
	chain, clean := newTestChain(t, newTestConfig())
	defer clean()

	advanced := stageTwoStart + 2*day
	mustAccept(t)(chain.AdvanceStage(ownerAddr, advanced))
	stage, _ := chain.ActiveStage(advanced)
	if stage.Start != stageTwoStart || stage.Deadline != advanced+week {
		t.Fatalf("unexpected second stage %+v", stage)
	}
	mustAccept(t)(chain.Contribute(alice, ether(500), stageTwoEnd+day))
	r, err := chain.Contribute(alice, ether(500), advanced+week+1)
	mustReject(t, r, err, ErrStageInactive)
}

func TestSale_BreakLongerThanStage(t *testing.T) {
	cfg := newTestConfig()
	cfg.Stages = cfg.Stages[:2]
	cfg.Breaks = []uint64{uint64(2 * week)}
	chain, clean := newTestChain(t, cfg)
	defer clean()

	mustAccept(t)(chain.AdvanceStage(ownerAddr, stageOneEnd+1))
	start := stageOneEnd + 2*week
	stage, _ := chain.ActiveStage(start + 3*day)
	if stage.Start != start || stage.Deadline != start+week || !stage.Active {
		t.Fatalf("unexpected second stage %+v", stage)
	}
	r, err := chain.Contribute(alice, ether(500), start-1)
	mustReject(t, r, err, ErrStageInactive)
	mustAccept(t)(chain.Contribute(alice, ether(500), start+3*day))
	checkBalance(t, chain, alice, tokens(375))
	mustAccept(t)(chain.Contribute(bob, ether(500), start+week))
}

func TestSale_StartAndEnd(t *testing.T) {
	chain, clean := newTestChain(t, newTestConfig())
	defer clean()

	r, err := chain.Contribute(alice, ether(1000), testStart-1)
	mustReject(t, r, err, ErrNotStarted)
	r, err = chain.Contribute(alice, ether(1000), testEnd+1)
	mustReject(t, r, err, ErrSaleEnded)
	// the first stage is still current, so the end time itself falls outside it
	r, err = chain.Contribute(alice, ether(1000), testEnd)
	mustReject(t, r, err, ErrStageInactive)
	if state, _ := chain.SaleState(testStart); state.Phase != PhaseActive {
		t.Errorf("wanted: %v, got: %v", PhaseActive, state.Phase)
	}
}

func TestSale_Minimum(t *testing.T) {
	chain, clean := newTestChain(t, newTestConfig())
	defer clean()

	r, err := chain.Contribute(alice, ether(10), testStart)
	mustReject(t, r, err, ErrBelowMinimum)
	r, err = chain.Contribute(alice, big.NewInt(0), testStart)
	mustReject(t, r, err, ErrBelowMinimum)
	mustAccept(t)(chain.Contribute(alice, ether(100), testStart))
	checkBalance(t, chain, alice, tokens(100))
}

func TestSale_HardCap(t *testing.T) {
	chain, clean := newTestChain(t, newTestConfig())
	defer clean()

	mustAccept(t)(chain.Contribute(alice, ether(1000), testStart))
	mustAccept(t)(chain.Contribute(bob, ether(1000), testStart))
	r, err := chain.Contribute(carol, ether(1000), testStart)
	mustReject(t, r, err, ErrHardCapExceeded)

	// reaching the hard cap allows an early finalization
	mustAccept(t)(chain.Finalize(ownerAddr, testStart+1))
	if chain.FundsOf(walletAddr).Cmp(ether(2000)) != 0 {
		t.Errorf("wanted: %v, got: %v", ether(2000), chain.FundsOf(walletAddr))
	}
}

func TestSale_Referral(t *testing.T) {
	chain, clean := newTestChain(t, newTestConfig())
	defer clean()

	r := mustAccept(t)(chain.SetReferralBatch(ownerAddr,
		[]common.Address{alice, bob, carol},
		[]common.Address{carol, alice, bob}, testStart-day))
	if len(r.Events) != 3 {
		t.Errorf("wanted: 3, got: %d", len(r.Events))
	}
	if ref, ok := chain.Referrer(alice); !ok || ref != carol {
		t.Errorf("wanted: %v, got: %v", carol, ref)
	}

	r = mustAccept(t)(chain.Contribute(alice, ether(1000), testStart))
	checkBalance(t, chain, alice, tokens(1000))
	checkBalance(t, chain, carol, tokens(100))
	if r.Events[0].Extra["bonus"] != tokens(100).String() {
		t.Errorf("unexpected event extra %v", r.Events[0].Extra)
	}

	r, err := chain.SetReferral(ownerAddr, alice, eve, testStart)
	mustReject(t, r, err, ErrAlreadySet)
	r, err = chain.SetReferral(eve, eve, alice, testStart)
	mustReject(t, r, err, ErrUnauthorized)
	r, err = chain.SetReferral(ownerAddr, eve, eve, testStart)
	mustReject(t, r, err, ErrSelfReferral)

	// no bonus once the first stage is over, and no new referrals either
	mustAccept(t)(chain.AdvanceStage(ownerAddr, stageOneEnd+1))
	mustAccept(t)(chain.Contribute(bob, ether(1000), stageTwoStart))
	checkBalance(t, chain, bob, tokens(750))
	checkBalance(t, chain, alice, tokens(1000))
	r, err = chain.SetReferral(ownerAddr, eve, alice, stageTwoStart)
	mustReject(t, r, err, ErrStageIneligible)
}

func TestSale_ReferralBatchPartial(t *testing.T) {
	chain, clean := newTestChain(t, newTestConfig())
	defer clean()

	mustAccept(t)(chain.SetReferral(ownerAddr, alice, bob, testStart))
	r := mustAccept(t)(chain.SetReferralBatch(ownerAddr,
		[]common.Address{alice, carol, eve},
		[]common.Address{carol, bob, eve}, testStart))
	if len(r.Results) != 3 || r.Results[0] == "" || r.Results[1] != "" || r.Results[2] == "" {
		t.Errorf("unexpected batch results %q", r.Results)
	}
	if ref, _ := chain.Referrer(alice); ref != bob {
		t.Errorf("wanted: %v, got: %v", bob, ref)
	}
	if ref, ok := chain.Referrer(carol); !ok || ref != bob {
		t.Errorf("wanted: %v, got: %v", bob, ref)
	}

	r, err := chain.SetReferralBatch(ownerAddr, []common.Address{alice}, nil, testStart)
	mustReject(t, r, err, ErrInvalidArgument)
	r, err = chain.SetReferralBatch(ownerAddr, nil, nil, testStart)
	mustReject(t, r, err, ErrInvalidArgument)
}

func TestSale_Finalize(t *testing.T) {
	chain, clean := newTestChain(t, newTestConfig())
	defer clean()

	mustAccept(t)(chain.Contribute(alice, ether(1000), testStart))
	mustAccept(t)(chain.Contribute(bob, ether(500), testStart))

	r, err := chain.Finalize(ownerAddr, testEnd)
	mustReject(t, r, err, ErrNotYetEligible)
	r, err = chain.Finalize(alice, testEnd+1)
	mustReject(t, r, err, ErrUnauthorized)

	r = mustAccept(t)(chain.Finalize(ownerAddr, testEnd+1))
	if r.Events[0].Extra["outcome"] != OutcomeSuccess.String() {
		t.Errorf("unexpected finalize event %v", r.Events[0])
	}
	if chain.FundsOf(walletAddr).Cmp(ether(1500)) != 0 {
		t.Errorf("wanted: %v, got: %v", ether(1500), chain.FundsOf(walletAddr))
	}
	state, _ := chain.SaleState(testEnd + 1)
	if state.Phase != PhaseFinalizedSuccess || state.Escrow.Sign() != 0 {
		t.Errorf("unexpected sale state %+v", state)
	}
	info, _ := chain.LedgerInfo()
	if info.TokenOwner != ownerAddr || !info.MintingClosed {
		t.Errorf("unexpected ledger %+v", info)
	}

	r, err = chain.Finalize(ownerAddr, testEnd+2)
	mustReject(t, r, err, ErrAlreadyFinalized)
	r, err = chain.ClaimRefund(alice, testEnd+2)
	mustReject(t, r, err, ErrNotRefundable)
	r, err = chain.MintReserve(ownerAddr, big.NewInt(1), testEnd+2)
	mustReject(t, r, err, ErrMintingClosed)

	// tokens stay transferable after the sale
	mustAccept(t)(chain.Transfer(alice, eve, tokens(400), testEnd+2))
	checkBalance(t, chain, alice, tokens(600))
	checkBalance(t, chain, eve, tokens(400))
}

func TestSale_ContributeAfterFinalize(t *testing.T) {
	chain, clean := newTestChain(t, newTestConfig())
	defer clean()

	mustAccept(t)(chain.Contribute(alice, ether(2000), testStart))
	mustAccept(t)(chain.Finalize(ownerAddr, testStart+1))
	r, err := chain.Contribute(bob, ether(100), testStart+2)
	mustReject(t, r, err, ErrAlreadyFinalized)

	// finalized after the end time, the late contribution is still AlreadyFinalized
	late, cleanLate := newTestChain(t, newTestConfig())
	defer cleanLate()

	mustAccept(t)(late.Contribute(alice, ether(1000), testStart))
	mustAccept(t)(late.Finalize(ownerAddr, testEnd+1))
	r, err = late.Contribute(bob, ether(100), testEnd+2)
	mustReject(t, r, err, ErrAlreadyFinalized)
}

func TestSale_Refund(t *testing.T) {
	chain, clean := newTestChain(t, newTestConfig())
	defer clean()

	mustAccept(t)(chain.Contribute(alice, ether(500), testStart))
	r, err := chain.ClaimRefund(alice, testStart+1)
	mustReject(t, r, err, ErrNotRefundable)

	r = mustAccept(t)(chain.Finalize(ownerAddr, testEnd+1))
	if r.Events[0].Extra["outcome"] != OutcomeRefunding.String() {
		t.Errorf("unexpected finalize event %v", r.Events[0])
	}
	if chain.FundsOf(walletAddr).Sign() != 0 {
		t.Errorf("wallet should get nothing, got %v", chain.FundsOf(walletAddr))
	}

	r = mustAccept(t)(chain.ClaimRefund(alice, testEnd+2))
	if r.Events[0].Amount.Value().Cmp(ether(500)) != 0 {
		t.Errorf("wanted: %v, got: %v", ether(500), r.Events[0].Amount.Value())
	}
	if chain.FundsOf(alice).Cmp(ether(500)) != 0 {
		t.Errorf("wanted: %v, got: %v", ether(500), chain.FundsOf(alice))
	}
	r, err = chain.ClaimRefund(alice, testEnd+3)
	mustReject(t, r, err, ErrNothingContributed)
	r, err = chain.ClaimRefund(bob, testEnd+3)
	mustReject(t, r, err, ErrNothingContributed)

	state, _ := chain.SaleState(testEnd + 3)
	if state.Phase != PhaseFinalizedRefunding || state.TotalRefunded.Cmp(ether(500)) != 0 || state.Escrow.Sign() != 0 {
		t.Errorf("unexpected sale state %+v", state)
	}
	// tokens bought are kept
	checkBalance(t, chain, alice, tokens(500))
}

func TestSale_SmallCaps(t *testing.T) {
	cfg := newTestConfig()
	cfg.Stages = []StageConfig{{Rate: 1000, Duration: 100}, {Rate: 750, Duration: 100}}
	cfg.Breaks = []uint64{50}
	cfg.SoftCap = big.NewInt(300)
	cfg.HardCap = big.NewInt(800)
	cfg.MinContribution = big.NewInt(1)
	chain, clean := newTestChain(t, cfg)
	defer clean()

	mustAccept(t)(chain.Contribute(alice, big.NewInt(200), testStart+10))
	checkBalance(t, chain, alice, big.NewInt(200000))
	if end := cfg.EndTime(); end != testStart+250 {
		t.Fatalf("wanted: %d, got: %d", testStart+250, end)
	}
	mustAccept(t)(chain.Finalize(ownerAddr, testStart+251))
	mustAccept(t)(chain.ClaimRefund(alice, testStart+252))
	if chain.FundsOf(alice).Int64() != 200 {
		t.Errorf("wanted: 200, got: %v", chain.FundsOf(alice))
	}
	r, err := chain.ClaimRefund(alice, testStart+253)
	mustReject(t, r, err, ErrNothingContributed)
}
