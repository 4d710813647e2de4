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

package tasdb

import (
	"github.com/syndtr/goleveldb/leveldb/comparer"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/memdb"
	"github.com/syndtr/goleveldb/leveldb/util"
	"github.com/zvchain/zvsale/common"
)

const defaultMemCapacity = 4 * 1024

// MemDatabase is an ordered in-memory Database, used by tests and the ephemeral mode
type MemDatabase struct {
	db *memdb.DB
}

func NewMemDatabase() (*MemDatabase, error) {
	return &MemDatabase{
		db: memdb.New(comparer.DefaultComparer, defaultMemCapacity),
	}, nil
}

func (db *MemDatabase) Clear() error {
	db.db.Reset()
	return nil
}

func (db *MemDatabase) Put(key []byte, value []byte) error {
	return db.db.Put(key, value)
}

func (db *MemDatabase) Has(key []byte) (bool, error) {
	return db.db.Contains(key), nil
}

func (db *MemDatabase) Get(key []byte) ([]byte, error) {
	v, err := db.db.Get(key)
	if err != nil {
		return nil, err
	}
	return common.CopyBytes(v), nil
}

func (db *MemDatabase) Delete(key []byte) error {
	err := db.db.Delete(key)
	if err == ErrNotFound {
		return nil
	}
	return err
}

func (db *MemDatabase) NewIterator() iterator.Iterator {
	return db.db.NewIterator(nil)
}

func (db *MemDatabase) NewIteratorWithPrefix(prefix []byte) iterator.Iterator {
	if len(prefix) == 0 {
		return db.db.NewIterator(nil)
	}
	return db.db.NewIterator(util.BytesPrefix(prefix))
}

func (db *MemDatabase) Close() {}

func (db *MemDatabase) NewBatch() Batch {
	return &memBatch{db: db}
}

func (db *MemDatabase) Len() int { return db.db.Len() }

type kv struct {
	k, v []byte
	del  bool
}

type memBatch struct {
	db     *MemDatabase
	writes []kv
	size   int
}

func (b *memBatch) Put(key, value []byte) error {
	b.writes = append(b.writes, kv{common.CopyBytes(key), common.CopyBytes(value), false})
	b.size += len(value)
	return nil
}

func (b *memBatch) Delete(key []byte) error {
	b.writes = append(b.writes, kv{common.CopyBytes(key), nil, true})
	b.size++
	return nil
}

// Write applies the buffered changes in order
func (b *memBatch) Write() error {
	for _, kv := range b.writes {
		if kv.del {
			if err := b.db.Delete(kv.k); err != nil {
				return err
			}
			continue
		}
		if err := b.db.Put(kv.k, kv.v); err != nil {
			return err
		}
	}
	return nil
}

// ValueSize retrieves the amount of data queued up for writing.
func (b *memBatch) ValueSize() int {
	return b.size
}

func (b *memBatch) Reset() {
	b.writes = b.writes[:0]
	b.size = 0
}
