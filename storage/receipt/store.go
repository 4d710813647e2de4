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

// Package receipt keeps the append-only log of executed sale operations
package receipt

import (
	"errors"
	"fmt"

	"github.com/boltdb/bolt"
	"github.com/vmihailenco/msgpack"
	"github.com/zvchain/zvsale/common"
	"github.com/zvchain/zvsale/log"
	"github.com/zvchain/zvsale/middleware/types"
)

const (
	receiptBucket = "receipts"
	txIndexBucket = "txindex"

	DefaultFile = "d_receipts.db"
)

var ErrReceiptNotFound = errors.New("receipt not found")

// Store is a receipt log backed by a bolt file.
// Receipts are numbered from 1 in the order they are appended
type Store struct {
	file string
	db   *bolt.DB
}

func NewStore(file string) (*Store, error) {
	db, err := bolt.Open(file, 0666, nil)
	if err != nil {
		return nil, fmt.Errorf("open receipt db fail:%v in %v", err, file)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, e := tx.CreateBucketIfNotExists([]byte(receiptBucket)); e != nil {
			return e
		}
		_, e := tx.CreateBucketIfNotExists([]byte(txIndexBucket))
		return e
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{file: file, db: db}, nil
}

// Append assigns the next index to the receipt and stores it
func (store *Store) Append(r *types.Receipt) (uint64, error) {
	err := store.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(receiptBucket))
		seq, e := b.NextSequence()
		if e != nil {
			return e
		}
		r.Index = seq
		bs, e := msgpack.Marshal(r)
		if e != nil {
			return e
		}
		key := common.UInt64ToByte(seq)
		if e = b.Put(key, bs); e != nil {
			return e
		}
		return tx.Bucket([]byte(txIndexBucket)).Put(r.TxHash.Bytes(), key)
	})
	if err != nil {
		return 0, fmt.Errorf("store receipt error %v", err)
	}
	return r.Index, nil
}

// Get returns the receipt at index
func (store *Store) Get(index uint64) (*types.Receipt, error) {
	var r *types.Receipt
	err := store.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(receiptBucket)).Get(common.UInt64ToByte(index))
		if v == nil {
			return ErrReceiptNotFound
		}
		r = &types.Receipt{}
		return msgpack.Unmarshal(v, r)
	})
	return r, err
}

// GetByTxHash returns the latest receipt of the transaction
func (store *Store) GetByTxHash(h common.Hash) (*types.Receipt, error) {
	var idx uint64
	store.db.View(func(tx *bolt.Tx) error {
		idx = common.ByteToUInt64(tx.Bucket([]byte(txIndexBucket)).Get(h.Bytes()))
		return nil
	})
	if idx == 0 {
		return nil, ErrReceiptNotFound
	}
	return store.Get(idx)
}

// Range returns at most limit receipts starting at index from
func (store *Store) Range(from uint64, limit int) ([]*types.Receipt, error) {
	result := make([]*types.Receipt, 0)
	if limit <= 0 {
		return result, nil
	}
	err := store.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(receiptBucket)).Cursor()
		for k, v := c.Seek(common.UInt64ToByte(from)); k != nil && len(result) < limit; k, v = c.Next() {
			r := &types.Receipt{}
			if e := msgpack.Unmarshal(v, r); e != nil {
				return fmt.Errorf("decode receipt %v error %v", common.ByteToUInt64(k), e)
			}
			result = append(result, r)
		}
		return nil
	})
	return result, err
}

// Count returns the number of stored receipts
func (store *Store) Count() uint64 {
	var n uint64
	store.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(receiptBucket)).Sequence()
		return nil
	})
	return n
}

// Clear drops every stored receipt
func (store *Store) Clear() error {
	return store.db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{receiptBucket, txIndexBucket} {
			if e := tx.DeleteBucket([]byte(name)); e != nil && e != bolt.ErrBucketNotFound {
				return e
			}
			if _, e := tx.CreateBucket([]byte(name)); e != nil {
				return e
			}
		}
		return nil
	})
}

func (store *Store) Close() error {
	log.StorageLogger.Debugf("closing receipt db file %v", store.db.Path())
	return store.db.Close()
}
