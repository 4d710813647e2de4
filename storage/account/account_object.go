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
	"fmt"
	"math/big"

	"github.com/vmihailenco/msgpack"
	"github.com/zvchain/zvsale/common"
	"github.com/zvchain/zvsale/log"
	"github.com/zvchain/zvsale/middleware/types"
)

// Account is the stored record of an address
type Account struct {
	Balance *types.BigInt `msgpack:"b"`
}

func decodeAccount(enc []byte) (*Account, error) {
	var data Account
	if err := msgpack.Unmarshal(enc, &data); err != nil {
		return nil, err
	}
	if data.Balance == nil {
		data.Balance = types.NewBigInt(0)
	}
	return &data, nil
}

// accountObject represents an account which is being modified.
//
// The usage pattern is as follows:
// First you need to obtain a account object.
// Account values can be accessed and modified through the object.
// Finally, call Commit to write the changes to the database.
type accountObject struct {
	address common.Address
	data    Account
	db      *AccountDB

	// committed values read so far, nil entries are known to be absent
	cachedStorage map[string][]byte
	// values changed since the last commit, nil entries are deletions
	dirtyStorage map[string][]byte

	dirtyAccount bool
	onDirty      func(addr common.Address)
}

func newAccountObject(db *AccountDB, address common.Address, data Account, onDirty func(addr common.Address)) *accountObject {
	if data.Balance == nil {
		data.Balance = types.NewBigInt(0)
	}
	return &accountObject{
		db:            db,
		address:       address,
		data:          data,
		cachedStorage: make(map[string][]byte),
		dirtyStorage:  make(map[string][]byte),
		onDirty:       onDirty,
	}
}

func (ao *accountObject) String() string {
	return fmt.Sprintf("{address:%v balance:%v dirtyKeys:%d}", ao.address, ao.Balance(), len(ao.dirtyStorage))
}

func (ao *accountObject) touch() {
	if ao.onDirty != nil {
		ao.onDirty(ao.Address())
	}
}

// GetData retrieves a value from the account storage
func (ao *accountObject) GetData(db AccountDatabase, key []byte) []byte {
	k := string(key)
	if value, dirty := ao.dirtyStorage[k]; dirty {
		return value
	}
	if value, cached := ao.cachedStorage[k]; cached {
		return value
	}
	value, err := db.TryGetData(ao.address, key)
	if err != nil {
		log.StorageLogger.Errorf("get data of %v error: %v", ao.address, err)
		ao.db.setError(err)
		return nil
	}
	ao.cachedStorage[k] = value
	return value
}

// SetData updates a value in account storage, a nil value removes the key
func (ao *accountObject) SetData(db AccountDatabase, key []byte, value []byte) {
	prev := ao.GetData(db, key)
	_, prevDirty := ao.dirtyStorage[string(key)]
	ao.db.transitions = append(ao.db.transitions, storageChange{
		account:   &ao.address,
		key:       string(key),
		prevalue:  prev,
		prevDirty: prevDirty,
	})
	ao.setData(string(key), common.CopyBytes(value))
}

func (ao *accountObject) setData(key string, value []byte) {
	ao.dirtyStorage[key] = value
	ao.touch()
}

// AddBalance is used to add funds to the destination account of a transfer.
func (ao *accountObject) AddBalance(amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}
	ao.SetBalance(new(big.Int).Add(ao.Balance(), amount))
}

// SubBalance is used to remove funds from the origin account of a transfer.
// The operations check the balance before calling it, a negative result is a bug
func (ao *accountObject) SubBalance(amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}
	left := new(big.Int).Sub(ao.Balance(), amount)
	if left.Sign() < 0 {
		panic(fmt.Errorf("balance of %v goes negative: %v - %v", ao.address, ao.Balance(), amount))
	}
	ao.SetBalance(left)
}

func (ao *accountObject) SetBalance(amount *big.Int) {
	ao.db.transitions = append(ao.db.transitions, balanceChange{
		account:   &ao.address,
		prev:      new(big.Int).Set(ao.Balance()),
		prevDirty: ao.dirtyAccount,
	})
	ao.setBalance(amount)
}

func (ao *accountObject) setBalance(amount *big.Int) {
	ao.data.Balance = types.BigIntFrom(amount)
	ao.dirtyAccount = true
	ao.touch()
}

// dirty reports whether the object has anything to commit
func (ao *accountObject) dirty() bool {
	return ao.dirtyAccount || len(ao.dirtyStorage) > 0
}

func (ao *accountObject) Address() common.Address {
	return ao.address
}

func (ao *accountObject) Balance() *big.Int {
	return ao.data.Balance.Value()
}

func (ao *accountObject) encode() ([]byte, error) {
	return msgpack.Marshal(&ao.data)
}

// flush moves the dirty values into the committed cache once they are written
func (ao *accountObject) flush() {
	for k, v := range ao.dirtyStorage {
		ao.cachedStorage[k] = v
	}
	ao.dirtyStorage = make(map[string][]byte)
	ao.dirtyAccount = false
}
