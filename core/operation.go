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
	"strconv"

	"github.com/zvchain/zvsale/common"
	"github.com/zvchain/zvsale/middleware/notify"
	"github.com/zvchain/zvsale/middleware/types"
)

// saleOperation define the steps of every operation executed on the sale state
type saleOperation interface {
	ParseTransaction() error // Parse the input transaction
	Validate() error         // Validate the input args
	Operation() error        // Do the operation
}

// outputs is implemented by operations that report events and per item results
type outputs interface {
	Events() []*types.Event
	Results() []string
}

type baseOperation struct {
	*components
	tx      *types.Transaction
	source  common.Address
	value   *big.Int
	events  []*types.Event
	results []string
}

func newBaseOperation(c *components, tx *types.Transaction) *baseOperation {
	return &baseOperation{
		components: c,
		tx:         tx,
		source:     *tx.Source,
		value:      new(big.Int).Set(tx.Value.Value()),
	}
}

func newOperation(c *components, tx *types.Transaction) saleOperation {
	baseOp := newBaseOperation(c, tx)
	var operation saleOperation
	switch tx.Type {
	case types.TransactionTypeContribute:
		operation = &contributeOp{baseOperation: baseOp}
	case types.TransactionTypeAdvanceStage:
		operation = &advanceStageOp{baseOperation: baseOp}
	case types.TransactionTypeSetReferral:
		operation = &setReferralOp{baseOperation: baseOp}
	case types.TransactionTypeSetReferralBatch:
		operation = &setReferralBatchOp{baseOperation: baseOp}
	case types.TransactionTypeFinalize:
		operation = &finalizeOp{baseOperation: baseOp}
	case types.TransactionTypeClaimRefund:
		operation = &claimRefundOp{baseOperation: baseOp}
	case types.TransactionTypeGrantVesting:
		operation = &grantVestingOp{baseOperation: baseOp}
	case types.TransactionTypeReleaseVested:
		operation = &releaseVestedOp{baseOperation: baseOp}
	case types.TransactionTypeGrantTimelock:
		operation = &grantTimelockOp{baseOperation: baseOp}
	case types.TransactionTypeReleaseTimelocked:
		operation = &releaseTimelockedOp{baseOperation: baseOp}
	case types.TransactionTypeTransfer:
		operation = &transferOp{baseOperation: baseOp}
	case types.TransactionTypeMintReserve:
		operation = &mintReserveOp{baseOperation: baseOp}
	default:
		operation = &unSupportedOp{typ: tx.Type}
	}
	return operation
}

func (op *baseOperation) Events() []*types.Event {
	return op.events
}

func (op *baseOperation) Results() []string {
	return op.results
}

func (op *baseOperation) emit(name string, account common.Address, amount *big.Int, extra map[string]string) {
	ev := &types.Event{Name: name, Account: account, Extra: extra}
	if amount != nil {
		ev.Amount = types.BigIntFrom(amount)
	}
	op.events = append(op.events, ev)
}

// receiver returns the target of the transaction, the source if not set
func (op *baseOperation) receiver() common.Address {
	if op.tx.Target != nil {
		return *op.tx.Target
	}
	return op.source
}

func (op *baseOperation) requireTarget() (common.Address, error) {
	if op.tx.Target == nil || op.tx.Target.IsZero() {
		return common.Address{}, fmt.Errorf("%w: target is nil", ErrInvalidArgument)
	}
	if common.IsStoreAddress(*op.tx.Target) {
		return common.Address{}, fmt.Errorf("%w: target %v is reserved", ErrInvalidArgument, *op.tx.Target)
	}
	return *op.tx.Target, nil
}

func (op *baseOperation) requireValue() error {
	if op.value.Sign() <= 0 {
		return fmt.Errorf("%w: value must be positive", ErrInvalidArgument)
	}
	return nil
}

// unSupportedOp encounters an unknown type
type unSupportedOp struct {
	typ int8
}

func (op *unSupportedOp) ParseTransaction() error {
	return fmt.Errorf("%w: type %v", ErrUnknownOperation, op.typ)
}

func (op *unSupportedOp) Validate() error {
	return fmt.Errorf("%w: type %v", ErrUnknownOperation, op.typ)
}

func (op *unSupportedOp) Operation() error {
	return fmt.Errorf("%w: type %v", ErrUnknownOperation, op.typ)
}

// contributeOp buys tokens with the transaction value
type contributeOp struct {
	*baseOperation
}

func (op *contributeOp) ParseTransaction() error { return nil }
func (op *contributeOp) Validate() error         { return nil }

func (op *contributeOp) Operation() error {
	r, err := op.sale.Contribute(op.source, op.value, op.tx.Time)
	if err != nil {
		return err
	}
	extra := map[string]string{
		"value": op.value.String(),
		"stage": strconv.Itoa(r.Stage),
		"rate":  strconv.FormatUint(r.Rate, 10),
	}
	if r.Referrer != nil {
		extra["referrer"] = r.Referrer.AddrPrefixString()
		extra["bonus"] = r.Bonus.String()
	}
	op.emit(notify.TokenPurchase, op.source, r.Tokens, extra)
	return nil
}

// advanceStageOp moves the schedule to the next stage
type advanceStageOp struct {
	*baseOperation
}

func (op *advanceStageOp) ParseTransaction() error { return nil }
func (op *advanceStageOp) Validate() error         { return nil }

func (op *advanceStageOp) Operation() error {
	st, err := op.schedule.AdvanceStage(op.source, op.tx.Time)
	if err != nil {
		return err
	}
	op.emit(notify.StageAdvanced, op.source, nil, map[string]string{
		"stage":    strconv.Itoa(st.Index),
		"start":    strconv.FormatInt(st.Start, 10),
		"deadline": strconv.FormatInt(st.Deadline, 10),
	})
	return nil
}

// setReferralOp links one participant to its referrer
type setReferralOp struct {
	*baseOperation
	payload types.ReferralPayload
}

func (op *setReferralOp) ParseTransaction() error {
	return types.DecodePayload(op.tx.Data, &op.payload)
}

func (op *setReferralOp) Validate() error { return nil }

func (op *setReferralOp) Operation() error {
	stage, err := op.schedule.CurrentIndex()
	if err != nil {
		return err
	}
	if err := op.referrals.SetReferral(op.source, op.payload.Participant, op.payload.Referrer, stage); err != nil {
		return err
	}
	op.emit(notify.ReferralSet, op.payload.Participant, nil, map[string]string{
		"referrer": op.payload.Referrer.AddrPrefixString(),
	})
	return nil
}

// setReferralBatchOp links many participants, each pair succeeds or fails on its own
type setReferralBatchOp struct {
	*baseOperation
	payload types.ReferralBatchPayload
}

func (op *setReferralBatchOp) ParseTransaction() error {
	return types.DecodePayload(op.tx.Data, &op.payload)
}

func (op *setReferralBatchOp) Validate() error {
	if len(op.payload.Participants) != len(op.payload.Referrers) {
		return fmt.Errorf("%w: %d participants for %d referrers", ErrInvalidArgument, len(op.payload.Participants), len(op.payload.Referrers))
	}
	return nil
}

func (op *setReferralBatchOp) Operation() error {
	stage, err := op.schedule.CurrentIndex()
	if err != nil {
		return err
	}
	errs, err := op.referrals.SetReferralBatch(op.source, op.payload.Participants, op.payload.Referrers, stage)
	if err != nil {
		return err
	}
	op.results = make([]string, len(errs))
	for i, e := range errs {
		if e != nil {
			op.results[i] = e.Error()
			continue
		}
		op.emit(notify.ReferralSet, op.payload.Participants[i], nil, map[string]string{
			"referrer": op.payload.Referrers[i].AddrPrefixString(),
		})
	}
	return nil
}

// finalizeOp closes the sale
type finalizeOp struct {
	*baseOperation
}

func (op *finalizeOp) ParseTransaction() error { return nil }
func (op *finalizeOp) Validate() error         { return nil }

func (op *finalizeOp) Operation() error {
	r, err := op.sale.Finalize(op.source, op.tx.Time)
	if err != nil {
		return err
	}
	op.emit(notify.SaleFinalized, op.cfg.Wallet, r.Paid, map[string]string{
		"outcome": r.Outcome.String(),
		"raised":  r.TotalRaised.String(),
	})
	return nil
}

// claimRefundOp pays back the contribution of the source
type claimRefundOp struct {
	*baseOperation
}

func (op *claimRefundOp) ParseTransaction() error { return nil }
func (op *claimRefundOp) Validate() error         { return nil }

func (op *claimRefundOp) Operation() error {
	amount, err := op.sale.ClaimRefund(op.source, op.tx.Time)
	if err != nil {
		return err
	}
	op.emit(notify.RefundClaimed, op.source, amount, nil)
	return nil
}

// grantVestingOp grants the transaction value to the target as a linear vesting
type grantVestingOp struct {
	*baseOperation
	payload     types.VestingPayload
	beneficiary common.Address
}

func (op *grantVestingOp) ParseTransaction() error {
	if err := types.DecodePayload(op.tx.Data, &op.payload); err != nil {
		return err
	}
	target, err := op.requireTarget()
	if err != nil {
		return err
	}
	op.beneficiary = target
	return nil
}

func (op *grantVestingOp) Validate() error {
	return op.requireValue()
}

func (op *grantVestingOp) Operation() error {
	vs, err := op.vesting.Grant(op.source, op.beneficiary, op.value, op.payload.Start, op.payload.Duration)
	if err != nil {
		return err
	}
	op.emit(notify.VestingGranted, op.beneficiary, vs.Total.Value(), map[string]string{
		"start":    strconv.FormatInt(vs.Start, 10),
		"duration": strconv.FormatUint(vs.Duration, 10),
	})
	return nil
}

// releaseVestedOp releases the vested tokens of the source
type releaseVestedOp struct {
	*baseOperation
}

func (op *releaseVestedOp) ParseTransaction() error { return nil }

func (op *releaseVestedOp) Validate() error {
	if common.IsStoreAddress(op.receiver()) {
		return fmt.Errorf("%w: receiver %v is reserved", ErrInvalidArgument, op.receiver())
	}
	return nil
}

func (op *releaseVestedOp) Operation() error {
	amount, err := op.vesting.Release(op.source, op.receiver(), op.tx.Time)
	if err != nil {
		return err
	}
	op.emit(notify.VestingReleased, op.receiver(), amount, map[string]string{
		"beneficiary": op.source.AddrPrefixString(),
	})
	return nil
}

// grantTimelockOp locks the transaction value for the target until a date
type grantTimelockOp struct {
	*baseOperation
	payload     types.TimelockPayload
	beneficiary common.Address
}

func (op *grantTimelockOp) ParseTransaction() error {
	if err := types.DecodePayload(op.tx.Data, &op.payload); err != nil {
		return err
	}
	target, err := op.requireTarget()
	if err != nil {
		return err
	}
	op.beneficiary = target
	return nil
}

func (op *grantTimelockOp) Validate() error {
	return op.requireValue()
}

func (op *grantTimelockOp) Operation() error {
	te, err := op.timelocks.Grant(op.source, op.beneficiary, op.value, op.payload.ReleaseTime)
	if err != nil {
		return err
	}
	op.emit(notify.TimelockGranted, op.beneficiary, te.Amount.Value(), map[string]string{
		"releaseTime": strconv.FormatInt(te.ReleaseTime, 10),
	})
	return nil
}

// releaseTimelockedOp releases the locked tokens of the source
type releaseTimelockedOp struct {
	*baseOperation
}

func (op *releaseTimelockedOp) ParseTransaction() error { return nil }

func (op *releaseTimelockedOp) Validate() error {
	if common.IsStoreAddress(op.receiver()) {
		return fmt.Errorf("%w: receiver %v is reserved", ErrInvalidArgument, op.receiver())
	}
	return nil
}

func (op *releaseTimelockedOp) Operation() error {
	amount, err := op.timelocks.Release(op.source, op.receiver(), op.tx.Time)
	if err != nil {
		return err
	}
	op.emit(notify.TimelockReleased, op.receiver(), amount, map[string]string{
		"beneficiary": op.source.AddrPrefixString(),
	})
	return nil
}

// transferOp moves tokens from the source to the target
type transferOp struct {
	*baseOperation
	to common.Address
}

func (op *transferOp) ParseTransaction() error {
	target, err := op.requireTarget()
	if err != nil {
		return err
	}
	op.to = target
	return nil
}

func (op *transferOp) Validate() error {
	return op.requireValue()
}

func (op *transferOp) Operation() error {
	if err := op.ledger.Transfer(op.source, op.to, op.value); err != nil {
		return err
	}
	op.emit(notify.TokensTransfered, op.to, op.value, map[string]string{
		"from": op.source.AddrPrefixString(),
	})
	return nil
}

// mintReserveOp adds the transaction value to the reserved pool
type mintReserveOp struct {
	*baseOperation
}

func (op *mintReserveOp) ParseTransaction() error { return nil }

func (op *mintReserveOp) Validate() error {
	if op.source != op.cfg.Owner {
		return fmt.Errorf("%w: %v is not the owner", ErrUnauthorized, op.source)
	}
	return op.requireValue()
}

func (op *mintReserveOp) Operation() error {
	info, err := op.ledger.Info()
	if err != nil {
		return err
	}
	if err := op.ledger.MintReserve(info.TokenOwner, op.value); err != nil {
		return err
	}
	op.emit(notify.ReserveMinted, op.source, op.value, nil)
	return nil
}
