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

package account

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/zvchain/zvsale/common"
	"github.com/zvchain/zvsale/log"
	"gopkg.in/fatih/set.v0"
)

type revision struct {
	id           int
	journalIndex int
}

// AccountDB holds the native fund balance and the key value data of every address.
// Changes are journaled so that a failed operation can be reverted, and Commit writes
// all of them to the underlying database in one batch
type AccountDB struct {
	db   AccountDatabase
	root common.Hash

	accountObjects      *sync.Map
	accountObjectsDirty set.Interface

	// DB error.
	// Account objects are used by the sale components which are
	// unable to deal with database-level errors. Any error that occurs
	// during a database read is memoized here and will eventually be returned
	// by AccountDB.Commit.
	dbErr error

	transitions    transition
	validRevisions []revision
	nextRevisionID int
}

// NewAccountDB opens the state at the last committed root
func NewAccountDB(db AccountDatabase) (*AccountDB, error) {
	root, err := db.LatestRoot()
	if err != nil {
		return nil, err
	}
	return &AccountDB{
		db:                  db,
		root:                root,
		accountObjects:      new(sync.Map),
		accountObjectsDirty: set.New(set.ThreadSafe),
	}, nil
}

// setError remembers the first non-nil error it is called with.
func (adb *AccountDB) setError(err error) {
	if adb.dbErr == nil {
		adb.dbErr = err
	}
}

// Error get the first non-nil error it is called with.
func (adb *AccountDB) Error() error {
	return adb.dbErr
}

// Root returns the digest of the last committed state
func (adb *AccountDB) Root() common.Hash {
	return adb.root
}

// Reset drops every uncommitted change and reloads the state from the database
func (adb *AccountDB) Reset() error {
	adb.db.Purge()
	root, err := adb.db.LatestRoot()
	if err != nil {
		return err
	}
	adb.root = root
	adb.accountObjects = new(sync.Map)
	adb.accountObjectsDirty.Clear()
	adb.dbErr = nil
	adb.clearJournal()
	return nil
}

// Exist reports whether the given account address exists in the state.
func (adb *AccountDB) Exist(addr common.Address) bool {
	return adb.getAccountObject(addr) != nil
}

// GetBalance Retrieve the balance from the given address or 0 if object not found
func (adb *AccountDB) GetBalance(addr common.Address) *big.Int {
	accountObject := adb.getAccountObject(addr)
	if accountObject != nil {
		return new(big.Int).Set(accountObject.Balance())
	}
	return new(big.Int)
}

// GetData retrieves a value from the account storage.
func (adb *AccountDB) GetData(a common.Address, key []byte) []byte {
	accountObject := adb.getAccountObject(a)
	if accountObject != nil {
		return common.CopyBytes(accountObject.GetData(adb.db, key))
	}
	return nil
}

// AddBalance adds amount to the account associated with addr.
func (adb *AccountDB) AddBalance(addr common.Address, amount *big.Int) {
	adb.getOrNewAccountObject(addr).AddBalance(amount)
}

// SubBalance subtracts amount from the account associated with addr.
func (adb *AccountDB) SubBalance(addr common.Address, amount *big.Int) {
	adb.getOrNewAccountObject(addr).SubBalance(amount)
}

func (adb *AccountDB) SetBalance(addr common.Address, amount *big.Int) {
	adb.getOrNewAccountObject(addr).SetBalance(amount)
}

func (adb *AccountDB) SetData(addr common.Address, key []byte, value []byte) {
	adb.getOrNewAccountObject(addr).SetData(adb.db, key, value)
}

// RemoveData set data nil
func (adb *AccountDB) RemoveData(addr common.Address, key []byte) {
	adb.SetData(addr, key, nil)
}

func (adb *AccountDB) Transfer(sender, recipient common.Address, amount *big.Int) {
	// Escape if amount is zero
	if amount.Sign() <= 0 {
		return
	}
	adb.SubBalance(sender, amount)
	adb.AddBalance(recipient, amount)
}

func (adb *AccountDB) CanTransfer(addr common.Address, amount *big.Int) bool {
	if amount.Sign() == -1 {
		return false
	}
	return adb.GetBalance(addr).Cmp(amount) >= 0
}

// Retrieve a account object from the database. Returns nil if not found.
func (adb *AccountDB) getAccountObjectFromDB(addr common.Address) *accountObject {
	enc, err := adb.db.TryGetAccount(addr)
	if err != nil {
		adb.setError(err)
		return nil
	}
	if len(enc) == 0 {
		return nil
	}
	data, err := decodeAccount(enc)
	if err != nil {
		log.StorageLogger.Errorf("failed to decode account %v: %v", addr, err)
		adb.setError(err)
		return nil
	}
	return newAccountObject(adb, addr, *data, adb.MarkAccountObjectDirty)
}

// Retrieve a account object given by the address. Returns nil if not found.
func (adb *AccountDB) getAccountObject(addr common.Address) *accountObject {
	if obj, ok := adb.accountObjects.Load(addr); ok {
		return obj.(*accountObject)
	}
	obj := adb.getAccountObjectFromDB(addr)
	if obj != nil {
		adb.setAccountObject(obj)
	}
	return obj
}

func (adb *AccountDB) setAccountObject(object *accountObject) {
	adb.accountObjects.LoadOrStore(object.Address(), object)
}

func (adb *AccountDB) getOrNewAccountObject(addr common.Address) *accountObject {
	accountObject := adb.getAccountObject(addr)
	if accountObject == nil {
		accountObject = adb.createObject(addr)
	}
	return accountObject
}

// MarkAccountObjectDirty Record the modified accounts
func (adb *AccountDB) MarkAccountObjectDirty(addr common.Address) {
	adb.accountObjectsDirty.Add(addr)
}

// cleanDirty unmarks an object whose changes were all reverted
func (adb *AccountDB) cleanDirty(obj *accountObject) {
	if !obj.dirty() {
		adb.accountObjectsDirty.Remove(obj.Address())
	}
}

func (adb *AccountDB) createObject(addr common.Address) *accountObject {
	newobj := newAccountObject(adb, addr, Account{}, adb.MarkAccountObjectDirty)
	newobj.dirtyAccount = true
	adb.transitions = append(adb.transitions, createObjectChange{account: &addr})
	adb.setAccountObject(newobj)
	return newobj
}

// Snapshot returns an identifier for the current revision of the state.
func (adb *AccountDB) Snapshot() int {
	id := adb.nextRevisionID
	adb.nextRevisionID++
	adb.validRevisions = append(adb.validRevisions, revision{id, len(adb.transitions)})
	return id
}

// RevertToSnapshot reverts all state changes made since the given revision.
func (adb *AccountDB) RevertToSnapshot(revid int) {
	// Find the snapshot in the stack of valid snapshots.
	idx := sort.Search(len(adb.validRevisions), func(i int) bool {
		return adb.validRevisions[i].id >= revid
	})
	if idx == len(adb.validRevisions) || adb.validRevisions[idx].id != revid {
		panic(fmt.Errorf("revision id %v cannot be reverted", revid))
	}
	snapshot := adb.validRevisions[idx].journalIndex
	for i := len(adb.transitions) - 1; i >= snapshot; i-- {
		adb.transitions[i].undo(adb)
	}
	adb.transitions = adb.transitions[:snapshot]
	adb.validRevisions = adb.validRevisions[:idx]
}

func (adb *AccountDB) clearJournal() {
	adb.transitions = nil
	adb.validRevisions = adb.validRevisions[:0]
}

type stateChange struct {
	key, value []byte
}

// Commit writes the dirty accounts to the database in one batch and returns the new root.
// The root chains the previous root with the sorted list of changed keys and values.
// On a write failure the uncommitted changes are dropped and the state is reloaded.
func (adb *AccountDB) Commit() (root common.Hash, err error) {
	defer adb.clearJournal()

	if adb.dbErr != nil {
		return adb.root, adb.dbErr
	}
	dirty := adb.dirtyAddresses()
	if len(dirty) == 0 {
		return adb.root, nil
	}

	batch := adb.db.NewBatch()
	changes := make([]stateChange, 0, len(dirty))
	objects := make([]*accountObject, 0, len(dirty))
	encoded := make([][]byte, 0, len(dirty))

	for _, addr := range dirty {
		obj := adb.getAccountObject(addr)
		if obj == nil {
			continue
		}
		enc, err := obj.encode()
		if err != nil {
			return adb.root, fmt.Errorf("encode account %v: %v", addr, err)
		}
		key := accountKey(addr)
		if err := batch.Put(key, enc); err != nil {
			return adb.root, err
		}
		changes = append(changes, stateChange{key: key, value: enc})

		for k, v := range obj.dirtyStorage {
			dk := dataKey(addr, []byte(k))
			if v == nil {
				err = batch.Delete(dk)
			} else {
				err = batch.Put(dk, v)
			}
			if err != nil {
				return adb.root, err
			}
			changes = append(changes, stateChange{key: dk, value: v})
		}
		objects = append(objects, obj)
		encoded = append(encoded, enc)
	}

	root = digest(adb.root, changes)
	if err := batch.Put(rootKey, root.Bytes()); err != nil {
		return adb.root, err
	}
	if err := batch.Write(); err != nil {
		log.StorageLogger.Errorf("commit state error: %v", err)
		if rerr := adb.Reset(); rerr != nil {
			log.StorageLogger.Errorf("reset state error: %v", rerr)
		}
		return adb.root, err
	}

	for i, obj := range objects {
		obj.flush()
		adb.db.CacheAccount(obj.Address(), encoded[i])
	}
	adb.accountObjectsDirty.Clear()
	adb.root = root
	return root, nil
}

func (adb *AccountDB) dirtyAddresses() []common.Address {
	addrs := make([]common.Address, 0, adb.accountObjectsDirty.Size())
	adb.accountObjectsDirty.Each(func(item interface{}) bool {
		addrs = append(addrs, item.(common.Address))
		return true
	})
	sort.Slice(addrs, func(i, j int) bool {
		return bytes.Compare(addrs[i][:], addrs[j][:]) < 0
	})
	return addrs
}

// digest hashes the previous root followed by every change in key order.
// Deleted keys are tagged so they differ from empty values
func digest(prev common.Hash, changes []stateChange) common.Hash {
	sort.Slice(changes, func(i, j int) bool {
		return bytes.Compare(changes[i].key, changes[j].key) < 0
	})
	parts := make([][]byte, 0, 1+3*len(changes))
	parts = append(parts, prev.Bytes())
	for _, c := range changes {
		tag := []byte{1}
		if c.value == nil {
			tag = []byte{0}
		}
		parts = append(parts, common.UInt64ToByte(uint64(len(c.key))), c.key, tag, c.value)
	}
	return common.BytesToHash(common.Sha3(parts...))
}
