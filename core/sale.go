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

type Outcome uint8

const (
	OutcomeNone Outcome = iota
	OutcomeSuccess
	OutcomeRefunding
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRefunding:
		return "refunding"
	default:
		return "none"
	}
}

// Phases of the sale, pending and active are derived from the time
const (
	PhasePending            = "pending"
	PhaseActive             = "active"
	PhaseFinalizedSuccess   = "finalized-success"
	PhaseFinalizedRefunding = "finalized-refunding"
)

type saleState struct {
	TotalRaised   *types.BigInt `msgpack:"tr"`
	TotalRefunded *types.BigInt `msgpack:"rf"`
	Contributors  uint64        `msgpack:"cn"`
	Finalized     bool          `msgpack:"f"`
	Outcome       Outcome       `msgpack:"o"`
	FinalizedAt   int64         `msgpack:"fa"`
}

// SaleSnapshot is the read-only view of the sale at a given time
type SaleSnapshot struct {
	Phase           string         `json:"phase"`
	StartTime       int64          `json:"startTime"`
	EndTime         int64          `json:"endTime"`
	TotalRaised     *big.Int       `json:"totalRaised"`
	TotalRefunded   *big.Int       `json:"totalRefunded"`
	Escrow          *big.Int       `json:"escrow"`
	SoftCap         *big.Int       `json:"softCap"`
	HardCap         *big.Int       `json:"hardCap"`
	MinContribution *big.Int       `json:"minContribution"`
	Contributors    uint64         `json:"contributors"`
	Finalized       bool           `json:"finalized"`
	Outcome         string         `json:"outcome"`
	FinalizedAt     int64          `json:"finalizedAt,omitempty"`
	Wallet          common.Address `json:"wallet"`
	Owner           common.Address `json:"owner"`
}

// ContributionResult describes the tokens minted by an accepted contribution
type ContributionResult struct {
	Stage    int
	Rate     uint64
	Tokens   *big.Int
	Referrer *common.Address // set only when a bonus was minted
	Bonus    *big.Int
}

// FinalizeResult describes the outcome of the finalization
type FinalizeResult struct {
	Outcome     Outcome
	TotalRaised *big.Int
	Paid        *big.Int // funds sent to the wallet, zero when refunding
}

// Sale accepts contributions, keeps the contributed funds in escrow under its store
// address and routes them to the wallet or back to the contributors at finalization
type Sale struct {
	recordStore
	cfg       *SaleConfig
	ledger    *Ledger
	schedule  *StageSchedule
	referrals *ReferralRegistry
}

func newSale(db types.AccountDB, cfg *SaleConfig, ledger *Ledger, schedule *StageSchedule, referrals *ReferralRegistry) *Sale {
	return &Sale{
		recordStore: recordStore{db: db, addr: common.SaleStoreAddr},
		cfg:         cfg,
		ledger:      ledger,
		schedule:    schedule,
		referrals:   referrals,
	}
}

func (s *Sale) init() error {
	return s.setState(&saleState{
		TotalRaised:   types.NewBigInt(0),
		TotalRefunded: types.NewBigInt(0),
	})
}

func (s *Sale) state() (*saleState, error) {
	st := &saleState{}
	ok, err := s.getRecord(keyState, st)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("sale state not found")
	}
	return st, nil
}

func (s *Sale) setState(st *saleState) error {
	return s.setRecord(keyState, st)
}

// ContributionOf returns the funds contributed by participant and not refunded
func (s *Sale) ContributionOf(participant common.Address) *big.Int {
	return s.getBig(getAccountKey(prefixContribution, participant))
}

// Escrow returns the funds held by the sale
func (s *Sale) Escrow() *big.Int {
	return s.db.GetBalance(s.addr)
}

// Contribute accepts value from participant at the rate of the active stage.
// A participant with a referrer also earns the referrer a bonus while in the first stage
func (s *Sale) Contribute(participant common.Address, value *big.Int, now int64) (*ContributionResult, error) {
	if value == nil {
		value = new(big.Int)
	}
	st, err := s.state()
	if err != nil {
		return nil, err
	}
	if st.Finalized {
		return nil, ErrAlreadyFinalized
	}
	if now < s.cfg.StartTime {
		return nil, fmt.Errorf("%w: starts at %d", ErrNotStarted, s.cfg.StartTime)
	}
	if now > s.cfg.EndTime() {
		return nil, fmt.Errorf("%w: ended at %d", ErrSaleEnded, s.cfg.EndTime())
	}
	if value.Sign() <= 0 || value.Cmp(s.cfg.minContribution()) < 0 {
		return nil, fmt.Errorf("%w: %v < %v", ErrBelowMinimum, value, s.cfg.minContribution())
	}
	index, rate, ok, err := s.schedule.ActiveStage(now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: stage %d not open at %d", ErrStageInactive, index, now)
	}
	raised := new(big.Int).Add(st.TotalRaised.Value(), value)
	if raised.Cmp(s.cfg.HardCap) > 0 {
		return nil, fmt.Errorf("%w: %v > %v", ErrHardCapExceeded, raised, s.cfg.HardCap)
	}

	result := &ContributionResult{
		Stage:  index,
		Rate:   rate,
		Tokens: new(big.Int).Mul(value, new(big.Int).SetUint64(rate)),
	}
	if err := s.ledger.Mint(s.addr, participant, result.Tokens); err != nil {
		return nil, err
	}
	if referrer, ok := s.referrals.BonusFor(participant); ok && index == 0 {
		bonus := new(big.Int).Mul(result.Tokens, new(big.Int).SetUint64(s.cfg.ReferralBonusPercent))
		bonus.Div(bonus, common.Big100)
		if bonus.Sign() > 0 {
			if err := s.ledger.Mint(s.addr, referrer, bonus); err != nil {
				return nil, err
			}
			result.Referrer = &referrer
			result.Bonus = bonus
		}
	}

	contributed := s.ContributionOf(participant)
	if contributed.Sign() == 0 {
		st.Contributors++
	}
	s.setBig(getAccountKey(prefixContribution, participant), contributed.Add(contributed, value))
	st.TotalRaised = types.BigIntFrom(raised)
	if err := s.setState(st); err != nil {
		return nil, err
	}
	s.db.AddBalance(s.addr, value)
	return result, nil
}

// Finalize closes the sale once it has ended or reached the hard cap.
// Funds go to the wallet if the soft cap is reached, otherwise they stay for refunds
func (s *Sale) Finalize(caller common.Address, now int64) (*FinalizeResult, error) {
	if caller != s.cfg.Owner {
		return nil, fmt.Errorf("%w: %v is not the owner", ErrUnauthorized, caller)
	}
	st, err := s.state()
	if err != nil {
		return nil, err
	}
	if st.Finalized {
		return nil, ErrAlreadyFinalized
	}
	raised := st.TotalRaised.Value()
	if now <= s.cfg.EndTime() && raised.Cmp(s.cfg.HardCap) < 0 {
		return nil, fmt.Errorf("%w: ends at %d, raised %v of %v", ErrNotYetEligible, s.cfg.EndTime(), raised, s.cfg.HardCap)
	}

	result := &FinalizeResult{TotalRaised: new(big.Int).Set(raised), Paid: new(big.Int)}
	if raised.Cmp(s.cfg.SoftCap) >= 0 {
		result.Outcome = OutcomeSuccess
		result.Paid = s.Escrow()
		s.db.Transfer(s.addr, s.cfg.Wallet, result.Paid)
	} else {
		result.Outcome = OutcomeRefunding
	}
	st.Finalized = true
	st.Outcome = result.Outcome
	st.FinalizedAt = now
	if err := s.setState(st); err != nil {
		return nil, err
	}
	if err := s.ledger.CloseMinting(); err != nil {
		return nil, err
	}
	if err := s.ledger.TransferOwnership(s.cfg.Owner); err != nil {
		return nil, err
	}
	return result, nil
}

// ClaimRefund pays the contribution of participant back from escrow, once
func (s *Sale) ClaimRefund(participant common.Address, now int64) (*big.Int, error) {
	st, err := s.state()
	if err != nil {
		return nil, err
	}
	if !st.Finalized || st.Outcome != OutcomeRefunding {
		return nil, ErrNotRefundable
	}
	amount := s.ContributionOf(participant)
	if amount.Sign() == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNothingContributed, participant)
	}
	if !s.db.CanTransfer(s.addr, amount) {
		panic(fmt.Errorf("escrow %v below refund %v", s.Escrow(), amount))
	}
	s.setBig(getAccountKey(prefixContribution, participant), new(big.Int))
	st.TotalRefunded = types.BigIntFrom(new(big.Int).Add(st.TotalRefunded.Value(), amount))
	if err := s.setState(st); err != nil {
		return nil, err
	}
	s.db.Transfer(s.addr, participant, amount)
	return amount, nil
}

// State returns the sale as seen at now
func (s *Sale) State(now int64) (*SaleSnapshot, error) {
	st, err := s.state()
	if err != nil {
		return nil, err
	}
	snap := &SaleSnapshot{
		StartTime:       s.cfg.StartTime,
		EndTime:         s.cfg.EndTime(),
		TotalRaised:     new(big.Int).Set(st.TotalRaised.Value()),
		TotalRefunded:   new(big.Int).Set(st.TotalRefunded.Value()),
		Escrow:          s.Escrow(),
		SoftCap:         new(big.Int).Set(s.cfg.SoftCap),
		HardCap:         new(big.Int).Set(s.cfg.HardCap),
		MinContribution: new(big.Int).Set(s.cfg.minContribution()),
		Contributors:    st.Contributors,
		Finalized:       st.Finalized,
		Outcome:         st.Outcome.String(),
		FinalizedAt:     st.FinalizedAt,
		Wallet:          s.cfg.Wallet,
		Owner:           s.cfg.Owner,
	}
	switch {
	case st.Finalized && st.Outcome == OutcomeSuccess:
		snap.Phase = PhaseFinalizedSuccess
	case st.Finalized:
		snap.Phase = PhaseFinalizedRefunding
	case now < s.cfg.StartTime:
		snap.Phase = PhasePending
	default:
		snap.Phase = PhaseActive
	}
	return snap, nil
}
