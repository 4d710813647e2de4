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

	"github.com/zvchain/zvsale/common"
	"github.com/zvchain/zvsale/middleware/types"
)

// ReferralRegistry links participants to the referrer receiving their first stage bonus.
// A link is set once and never changes
type ReferralRegistry struct {
	recordStore
	owner     common.Address
	ownerOnly bool
}

func newReferralRegistry(db types.AccountDB, cfg *SaleConfig) *ReferralRegistry {
	return &ReferralRegistry{
		recordStore: recordStore{db: db, addr: common.ReferralStoreAddr},
		owner:       cfg.Owner,
		ownerOnly:   cfg.ReferralOwnerOnly,
	}
}

func (r *ReferralRegistry) checkCaller(caller common.Address) error {
	if r.ownerOnly && caller != r.owner {
		return fmt.Errorf("%w: %v is not the owner", ErrUnauthorized, caller)
	}
	return nil
}

func (r *ReferralRegistry) setReferral(participant, referrer common.Address, stageIndex int) error {
	if participant.IsZero() || referrer.IsZero() || common.IsStoreAddress(participant) || common.IsStoreAddress(referrer) {
		return fmt.Errorf("%w: bad referral %v -> %v", ErrInvalidArgument, participant, referrer)
	}
	if _, ok := r.BonusFor(participant); ok {
		return fmt.Errorf("%w: %v", ErrAlreadySet, participant)
	}
	if stageIndex != 0 {
		return fmt.Errorf("%w: current stage %d", ErrStageIneligible, stageIndex)
	}
	if referrer == participant {
		return fmt.Errorf("%w: %v", ErrSelfReferral, participant)
	}
	r.db.SetData(r.addr, getAccountKey(prefixReferral, participant), referrer.Bytes())
	return nil
}

// SetReferral records referrer for participant while the schedule is at the first stage
func (r *ReferralRegistry) SetReferral(caller, participant, referrer common.Address, stageIndex int) error {
	if err := r.checkCaller(caller); err != nil {
		return err
	}
	return r.setReferral(participant, referrer, stageIndex)
}

// SetReferralBatch applies SetReferral pairwise and returns one result per pair.
// A failing pair does not affect the others
func (r *ReferralRegistry) SetReferralBatch(caller common.Address, participants, referrers []common.Address, stageIndex int) ([]error, error) {
	if err := r.checkCaller(caller); err != nil {
		return nil, err
	}
	if len(participants) != len(referrers) {
		return nil, fmt.Errorf("%w: %d participants for %d referrers", ErrInvalidArgument, len(participants), len(referrers))
	}
	if len(participants) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrInvalidArgument)
	}
	results := make([]error, len(participants))
	for i := range participants {
		results[i] = r.setReferral(participants[i], referrers[i], stageIndex)
	}
	return results, nil
}

// BonusFor returns the referrer of participant
func (r *ReferralRegistry) BonusFor(participant common.Address) (common.Address, bool) {
	data := r.db.GetData(r.addr, getAccountKey(prefixReferral, participant))
	if len(data) == 0 {
		return common.Address{}, false
	}
	return common.BytesToAddress(data), true
}
