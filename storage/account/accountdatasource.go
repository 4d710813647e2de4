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
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/zvchain/zvsale/common"
	"github.com/zvchain/zvsale/storage/tasdb"
)

const (
	// Number of committed account records to keep in memory.
	accountCacheSize = 10000

	accountKeyPrefix = "a"
	dataKeyPrefix    = "d"
)

var rootKey = []byte("root")

// AccountDatabase is the committed layer under an AccountDB
type AccountDatabase interface {
	// TryGetAccount returns the encoded account record, nil if it does not exist
	TryGetAccount(addr common.Address) ([]byte, error)

	// TryGetData returns the committed value of an account data key, nil if it does not exist
	TryGetData(addr common.Address, key []byte) ([]byte, error)

	// LatestRoot returns the state digest written by the last commit
	LatestRoot() (common.Hash, error)

	// NewBatch returns a batch for a commit
	NewBatch() tasdb.Batch

	// CacheAccount refreshes the cached record after a successful commit
	CacheAccount(addr common.Address, enc []byte)

	// Purge drops every cached record, used after a failed write
	Purge()
}

// NewDatabase creates a backing store for state. The returned database
// is safe for concurrent use and keeps recently used account records in memory.
func NewDatabase(db tasdb.Database) AccountDatabase {
	return &storageDB{
		db:           db,
		accountCache: newAccountCache(accountCacheSize),
	}
}

// newAccountCache panics on a non-positive size, which is a programming error
func newAccountCache(size int) *lru.Cache {
	cache, err := lru.New(size)
	if err != nil {
		panic(fmt.Errorf("new account cache of size %d: %v", size, err))
	}
	return cache
}

type storageDB struct {
	db           tasdb.Database
	mu           sync.Mutex
	accountCache *lru.Cache
}

func accountKey(addr common.Address) []byte {
	return common.BytesCombine([]byte(accountKeyPrefix), addr.Bytes())
}

func dataKey(addr common.Address, key []byte) []byte {
	return common.BytesCombine([]byte(dataKeyPrefix), addr.Bytes(), key)
}

func (db *storageDB) TryGetAccount(addr common.Address) ([]byte, error) {
	if cached, ok := db.accountCache.Get(addr); ok {
		return cached.([]byte), nil
	}
	enc, err := db.get(accountKey(addr))
	if err != nil {
		return nil, err
	}
	if enc != nil {
		db.accountCache.Add(addr, enc)
	}
	return enc, nil
}

func (db *storageDB) TryGetData(addr common.Address, key []byte) ([]byte, error) {
	return db.get(dataKey(addr, key))
}

func (db *storageDB) LatestRoot() (common.Hash, error) {
	v, err := db.get(rootKey)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(v), nil
}

func (db *storageDB) get(key []byte) ([]byte, error) {
	v, err := db.db.Get(key)
	if err == tasdb.ErrNotFound {
		return nil, nil
	}
	return v, err
}

func (db *storageDB) NewBatch() tasdb.Batch {
	return db.db.NewBatch()
}

func (db *storageDB) Purge() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.accountCache.Purge()
}

func (db *storageDB) CacheAccount(addr common.Address, enc []byte) {
	db.accountCache.Add(addr, enc)
}
