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
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/zvchain/zvsale/common"
	"github.com/zvchain/zvsale/log"
	"github.com/zvchain/zvsale/middleware/notify"
	"github.com/zvchain/zvsale/middleware/types"
	"github.com/zvchain/zvsale/storage/account"
	"github.com/zvchain/zvsale/storage/receipt"
	"github.com/zvchain/zvsale/storage/tasdb"
)

const statePrefix = "state"

// ChainConfig locates the databases of a sale chain
type ChainConfig struct {
	Database string // leveldb directory of the state
	Receipts string // bolt file of the receipts
	CacheMB  int    // read cache in front of the state database
}

// components are the sale components sharing one account state
type components struct {
	cfg       *SaleConfig
	db        types.AccountDB
	ledger    *Ledger
	schedule  *StageSchedule
	referrals *ReferralRegistry
	sale      *Sale
	vesting   *VestingBook
	timelocks *TimelockBook
}

func newComponents(cfg *SaleConfig, db types.AccountDB) *components {
	ledger := newLedger(db)
	schedule := newStageSchedule(db, cfg)
	referrals := newReferralRegistry(db, cfg)
	return &components{
		cfg:       cfg,
		db:        db,
		ledger:    ledger,
		schedule:  schedule,
		referrals: referrals,
		sale:      newSale(db, cfg, ledger, schedule, referrals),
		vesting:   newVestingBook(db, cfg, ledger),
		timelocks: newTimelockBook(db, cfg, ledger),
	}
}

// SaleChain executes sale transactions one at a time against the account state.
// Each transaction is applied atomically, then recorded in the receipt log
type SaleChain struct {
	lock sync.Mutex

	cfg      *SaleConfig
	comps    *components
	stateDB  *account.AccountDB
	receipts *receipt.Store
	ds       *tasdb.TasDataSource
	nonce    uint64
}

// OpenSaleChain opens or creates the databases described by cc
func OpenSaleChain(cfg *SaleConfig, cc *ChainConfig) (*SaleChain, error) {
	ds, err := tasdb.NewDataSource(cc.Database, nil)
	if err != nil {
		return nil, fmt.Errorf("open state database %v: %v", cc.Database, err)
	}
	db, err := ds.NewPrefixDatabase(statePrefix)
	if err != nil {
		ds.Close()
		return nil, err
	}
	receipts, err := receipt.NewStore(cc.Receipts)
	if err != nil {
		ds.Close()
		return nil, err
	}
	chain, err := NewSaleChain(cfg, tasdb.NewCachedDatabase(db, cc.CacheMB), receipts)
	if err != nil {
		receipts.Close()
		ds.Close()
		return nil, err
	}
	chain.ds = ds
	return chain, nil
}

// NewSaleChain restores the sale from db, or writes the genesis state if db is empty.
// A database created with another config is refused
func NewSaleChain(cfg *SaleConfig, db tasdb.Database, receipts *receipt.Store) (*SaleChain, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stateDB, err := account.NewAccountDB(account.NewDatabase(db))
	if err != nil {
		return nil, err
	}
	chain := &SaleChain{
		cfg:      cfg,
		stateDB:  stateDB,
		receipts: receipts,
		comps:    newComponents(cfg, stateDB),
		nonce:    receipts.Count(),
	}
	if err := chain.genesis(); err != nil {
		return nil, err
	}
	return chain, nil
}

func (chain *SaleChain) genesis() error {
	stored := chain.stateDB.GetData(common.ConfigStoreAddr, keyConfig)
	if len(stored) > 0 {
		same, err := chain.cfg.sameAs(stored)
		if err != nil {
			return err
		}
		if !same {
			return ErrConfigMismatch
		}
		log.CoreLogger.Infof("sale restored, state root %v", chain.stateDB.Root().Hex())
		return nil
	}

	enc, err := chain.cfg.encode()
	if err != nil {
		return err
	}
	chain.stateDB.SetData(common.ConfigStoreAddr, keyConfig, enc)
	if err := chain.comps.ledger.init(common.SaleStoreAddr); err != nil {
		return err
	}
	if err := chain.comps.schedule.init(); err != nil {
		return err
	}
	if err := chain.comps.sale.init(); err != nil {
		return err
	}
	if reserve := chain.cfg.reserveSupply(); reserve.Sign() > 0 {
		if err := chain.comps.ledger.MintReserve(common.SaleStoreAddr, reserve); err != nil {
			return err
		}
	}
	root, err := chain.stateDB.Commit()
	if err != nil {
		return err
	}
	log.CoreLogger.WithFields(logrus.Fields{
		"start":  chain.cfg.StartTime,
		"end":    chain.cfg.EndTime(),
		"stages": len(chain.cfg.Stages),
		"root":   root.Hex(),
	}).Info("sale genesis written")
	return nil
}

// Close releases the databases
func (chain *SaleChain) Close() {
	chain.lock.Lock()
	defer chain.lock.Unlock()

	if err := chain.receipts.Close(); err != nil {
		log.CoreLogger.Errorf("close receipts error: %v", err)
	}
	if chain.ds != nil {
		chain.ds.Close()
	}
}

// Config returns the sale config
func (chain *SaleChain) Config() *SaleConfig {
	return chain.cfg
}

// Execute applies tx and records its receipt. A rejected transaction changes nothing
// but still gets a failed receipt, returned together with the rejection error
func (chain *SaleChain) Execute(tx *types.Transaction) (*types.Receipt, error) {
	if tx == nil {
		return nil, fmt.Errorf("%w: nil transaction", ErrInvalidArgument)
	}
	chain.lock.Lock()
	defer chain.lock.Unlock()

	if tx.Hash == (common.Hash{}) {
		if tx.Nonce == 0 {
			tx.Nonce = atomic.AddUint64(&chain.nonce, 1)
		}
		tx.Hash = tx.GenHash()
	}
	r := types.NewReceipt(tx)
	out, err := chain.apply(tx)
	if err != nil {
		r.Status = types.RSFail
		r.Error = err.Error()
	} else if out != nil {
		r.Events = out.Events()
		r.Results = out.Results()
	}
	r.StateRoot = chain.stateDB.Root()

	if _, serr := chain.receipts.Append(r); serr != nil {
		log.CoreLogger.Errorf("append receipt of %v error: %v", tx.Hash.Hex(), serr)
		if err == nil {
			err = serr
		}
	}
	chain.logReceipt(tx, r)
	chain.publish(r)
	return r, err
}

func checkSource(tx *types.Transaction) error {
	if tx.Source == nil || tx.Source.IsZero() {
		return fmt.Errorf("%w: source is nil", ErrInvalidArgument)
	}
	if common.IsStoreAddress(*tx.Source) {
		return fmt.Errorf("%w: source %v is reserved", ErrInvalidArgument, *tx.Source)
	}
	if tx.Value != nil && tx.Value.IsNegative() {
		return fmt.Errorf("%w: negative value", ErrInvalidArgument)
	}
	return nil
}

func (chain *SaleChain) apply(tx *types.Transaction) (outputs, error) {
	if err := checkSource(tx); err != nil {
		return nil, err
	}
	snapshot := chain.stateDB.Snapshot()
	operation := newOperation(chain.comps, tx)
	err := runOperation(operation)
	if err != nil {
		chain.stateDB.RevertToSnapshot(snapshot)
		return nil, err
	}
	if _, err := chain.stateDB.Commit(); err != nil {
		if rerr := chain.stateDB.Reset(); rerr != nil {
			log.CoreLogger.Errorf("reset state error: %v", rerr)
		}
		return nil, fmt.Errorf("commit state: %v", err)
	}
	out, _ := operation.(outputs)
	return out, nil
}

func runOperation(op saleOperation) error {
	if err := op.ParseTransaction(); err != nil {
		if errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrUnknownOperation) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if err := op.Validate(); err != nil {
		return err
	}
	return op.Operation()
}

func (chain *SaleChain) logReceipt(tx *types.Transaction, r *types.Receipt) {
	entry := log.CoreLogger.WithFields(logrus.Fields{
		"index":  r.Index,
		"type":   types.TxTypeName(tx.Type),
		"source": r.Source.AddrPrefixString(),
		"value":  tx.Value.Value().String(),
		"time":   tx.Time,
	})
	if r.Success() {
		entry.WithField("root", r.StateRoot.Hex()).Info("operation accepted")
	} else {
		entry.WithField("error", r.Error).Warn("operation rejected")
	}
}

func (chain *SaleChain) publish(r *types.Receipt) {
	if notify.BUS == nil {
		return
	}
	if !r.Success() {
		notify.BUS.PublishWithRecover(notify.OperationRejected, &notify.RejectedMessage{Receipt: r})
		return
	}
	for _, ev := range r.Events {
		notify.BUS.PublishWithRecover(ev.Name, &notify.SaleEventMessage{Receipt: r, Event: ev})
	}
}

func (chain *SaleChain) newTx(typ int8, source common.Address, target *common.Address, value *big.Int, payload interface{}, now int64) (*types.Transaction, error) {
	tx := &types.Transaction{
		Type:   typ,
		Source: &source,
		Target: target,
		Value:  types.BigIntFrom(value),
		Time:   now,
		Nonce:  atomic.AddUint64(&chain.nonce, 1),
	}
	if payload != nil {
		data, err := types.EncodePayload(payload)
		if err != nil {
			return nil, err
		}
		tx.Data = data
	}
	tx.Hash = tx.GenHash()
	return tx, nil
}

func (chain *SaleChain) execute(typ int8, source common.Address, target *common.Address, value *big.Int, payload interface{}, now int64) (*types.Receipt, error) {
	tx, err := chain.newTx(typ, source, target, value, payload, now)
	if err != nil {
		return nil, err
	}
	return chain.Execute(tx)
}
