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

	"github.com/zvchain/zvsale/common"
	"github.com/zvchain/zvsale/middleware/types"
)

// Contribute buys tokens for participant with value
func (chain *SaleChain) Contribute(participant common.Address, value *big.Int, now int64) (*types.Receipt, error) {
	return chain.execute(types.TransactionTypeContribute, participant, nil, value, nil, now)
}

func (chain *SaleChain) AdvanceStage(caller common.Address, now int64) (*types.Receipt, error) {
	return chain.execute(types.TransactionTypeAdvanceStage, caller, nil, nil, nil, now)
}

func (chain *SaleChain) SetReferral(caller, participant, referrer common.Address, now int64) (*types.Receipt, error) {
	payload := &types.ReferralPayload{Participant: participant, Referrer: referrer}
	return chain.execute(types.TransactionTypeSetReferral, caller, nil, nil, payload, now)
}

// SetReferralBatch returns a receipt whose Results hold one entry per pair, empty on success
func (chain *SaleChain) SetReferralBatch(caller common.Address, participants, referrers []common.Address, now int64) (*types.Receipt, error) {
	payload := &types.ReferralBatchPayload{Participants: participants, Referrers: referrers}
	return chain.execute(types.TransactionTypeSetReferralBatch, caller, nil, nil, payload, now)
}

func (chain *SaleChain) Finalize(caller common.Address, now int64) (*types.Receipt, error) {
	return chain.execute(types.TransactionTypeFinalize, caller, nil, nil, nil, now)
}

func (chain *SaleChain) ClaimRefund(participant common.Address, now int64) (*types.Receipt, error) {
	return chain.execute(types.TransactionTypeClaimRefund, participant, nil, nil, nil, now)
}

func (chain *SaleChain) GrantVesting(caller, beneficiary common.Address, amount *big.Int, start int64, duration uint64, now int64) (*types.Receipt, error) {
	payload := &types.VestingPayload{Start: start, Duration: duration}
	return chain.execute(types.TransactionTypeGrantVesting, caller, &beneficiary, amount, payload, now)
}

func (chain *SaleChain) ReleaseVested(beneficiary common.Address, now int64) (*types.Receipt, error) {
	return chain.execute(types.TransactionTypeReleaseVested, beneficiary, nil, nil, nil, now)
}

func (chain *SaleChain) GrantTimelock(caller, beneficiary common.Address, amount *big.Int, releaseTime int64, now int64) (*types.Receipt, error) {
	payload := &types.TimelockPayload{ReleaseTime: releaseTime}
	return chain.execute(types.TransactionTypeGrantTimelock, caller, &beneficiary, amount, payload, now)
}

func (chain *SaleChain) ReleaseTimelocked(beneficiary common.Address, now int64) (*types.Receipt, error) {
	return chain.execute(types.TransactionTypeReleaseTimelocked, beneficiary, nil, nil, nil, now)
}

func (chain *SaleChain) Transfer(from, to common.Address, amount *big.Int, now int64) (*types.Receipt, error) {
	return chain.execute(types.TransactionTypeTransfer, from, &to, amount, nil, now)
}

func (chain *SaleChain) MintReserve(caller common.Address, amount *big.Int, now int64) (*types.Receipt, error) {
	return chain.execute(types.TransactionTypeMintReserve, caller, nil, amount, nil, now)
}

// BalanceOf returns the token balance of the account
func (chain *SaleChain) BalanceOf(addr common.Address) *big.Int {
	chain.lock.Lock()
	defer chain.lock.Unlock()
	return chain.comps.ledger.BalanceOf(addr)
}

// FundsOf returns the native fund balance of the account
func (chain *SaleChain) FundsOf(addr common.Address) *big.Int {
	chain.lock.Lock()
	defer chain.lock.Unlock()
	return chain.stateDB.GetBalance(addr)
}

func (chain *SaleChain) ActiveStage(now int64) (*StageInfo, error) {
	chain.lock.Lock()
	defer chain.lock.Unlock()
	return chain.comps.schedule.Info(now)
}

func (chain *SaleChain) SaleState(now int64) (*SaleSnapshot, error) {
	chain.lock.Lock()
	defer chain.lock.Unlock()
	return chain.comps.sale.State(now)
}

func (chain *SaleChain) LedgerInfo() (*LedgerInfo, error) {
	chain.lock.Lock()
	defer chain.lock.Unlock()
	return chain.comps.ledger.Info()
}

func (chain *SaleChain) TotalSupply() (*big.Int, error) {
	chain.lock.Lock()
	defer chain.lock.Unlock()
	return chain.comps.ledger.TotalSupply()
}

// Vesting returns the schedule of the beneficiary and what is releasable at now, nil if none
func (chain *SaleChain) Vesting(beneficiary common.Address, now int64) (*VestingSchedule, *big.Int, error) {
	chain.lock.Lock()
	defer chain.lock.Unlock()
	vs, err := chain.comps.vesting.ScheduleOf(beneficiary)
	if err != nil || vs == nil {
		return nil, nil, err
	}
	return vs, vs.releasable(now), nil
}

func (chain *SaleChain) Timelock(beneficiary common.Address) (*TimelockEntry, error) {
	chain.lock.Lock()
	defer chain.lock.Unlock()
	return chain.comps.timelocks.EntryOf(beneficiary)
}

func (chain *SaleChain) Referrer(participant common.Address) (common.Address, bool) {
	chain.lock.Lock()
	defer chain.lock.Unlock()
	return chain.comps.referrals.BonusFor(participant)
}

func (chain *SaleChain) Contribution(participant common.Address) *big.Int {
	chain.lock.Lock()
	defer chain.lock.Unlock()
	return chain.comps.sale.ContributionOf(participant)
}

// StateRoot returns the digest of the last committed state
func (chain *SaleChain) StateRoot() common.Hash {
	chain.lock.Lock()
	defer chain.lock.Unlock()
	return chain.stateDB.Root()
}

// Receipts returns at most limit receipts starting at index from
func (chain *SaleChain) Receipts(from uint64, limit int) ([]*types.Receipt, error) {
	return chain.receipts.Range(from, limit)
}

func (chain *SaleChain) ReceiptByTx(h common.Hash) (*types.Receipt, error) {
	return chain.receipts.GetByTxHash(h)
}

func (chain *SaleChain) ReceiptCount() uint64 {
	return chain.receipts.Count()
}
