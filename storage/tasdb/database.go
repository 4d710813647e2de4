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

/*
	Package tasdb provides the key value stores backing the sale state
*/
package tasdb

import (
	"bytes"
	"errors"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
	"github.com/zvchain/zvsale/log"
)

const (
	ConfigSec   = "chain"
	DefaultFile = "d_sale"
)

var (
	ErrLDBInit = errors.New("LDB instance not inited")
)

type PrefixedDatabase struct {
	db     *LDBDatabase
	prefix string
}

// Close close db connection
func (db *PrefixedDatabase) Close() {
	db.db.Close()
}

func (db *PrefixedDatabase) Put(key []byte, value []byte) error {
	return db.db.Put(generateKey(key, db.prefix), value)
}

func (db *PrefixedDatabase) Get(key []byte) ([]byte, error) {
	return db.db.Get(generateKey(key, db.prefix))
}

func (db *PrefixedDatabase) Has(key []byte) (bool, error) {
	return db.db.Has(generateKey(key, db.prefix))
}

func (db *PrefixedDatabase) Delete(key []byte) error {
	return db.db.Delete(generateKey(key, db.prefix))
}

func (db *PrefixedDatabase) NewIterator() iterator.Iterator {
	return db.NewIteratorWithPrefix(nil)
}

func (db *PrefixedDatabase) NewIteratorWithPrefix(prefix []byte) iterator.Iterator {
	iterPrefix := generateKey(prefix, db.prefix)
	return &prefixIter{
		prefix: []byte(db.prefix),
		iter:   db.db.NewIteratorWithPrefix(iterPrefix),
	}
}

func (db *PrefixedDatabase) NewBatch() Batch {
	return &ldbBatch{db: db.db.db, b: new(leveldb.Batch), prefix: db.prefix}
}

// LogStats dumps the leveldb statistics at debug level
func (db *PrefixedDatabase) LogStats(logger *logrus.Logger) {
	s := &leveldb.DBStats{}
	if err := db.db.db.Stats(s); err != nil {
		logger.Errorf("failed to get leveldb stats: %v", err)
		return
	}
	logger.WithFields(logrus.Fields{
		"prefix":          db.prefix,
		"writeDelayCount": s.WriteDelayCount,
		"aliveSnapshots":  s.AliveSnapshots,
		"aliveIterators":  s.AliveIterators,
		"ioWrite":         s.IOWrite,
		"ioRead":          s.IORead,
		"blockCacheSize":  s.BlockCacheSize,
		"openedTables":    s.OpenedTablesCount,
	}).Debug("leveldb stats")
}

// prefixIter strips the table prefix from the keys of the underlying iterator
type prefixIter struct {
	prefix []byte
	iter   iterator.Iterator
}

func (iter *prefixIter) First() bool {
	return iter.iter.First()
}

func (iter *prefixIter) Last() bool {
	return iter.iter.Last()
}

func (iter *prefixIter) Seek(key []byte) bool {
	return iter.iter.Seek(generateKey(key, string(iter.prefix)))
}

func (iter *prefixIter) Next() bool {
	return iter.iter.Next()
}

func (iter *prefixIter) Prev() bool {
	return iter.iter.Prev()
}

func (iter *prefixIter) Release() {
	iter.iter.Release()
}

func (iter *prefixIter) SetReleaser(releaser util.Releaser) {
	iter.iter.SetReleaser(releaser)
}

func (iter *prefixIter) Valid() bool {
	return iter.iter.Valid()
}

func (iter *prefixIter) Error() error {
	return iter.iter.Error()
}

func (iter *prefixIter) Key() []byte {
	key := iter.iter.Key()
	if key == nil {
		return nil
	}
	return key[len(iter.prefix):]
}

func (iter *prefixIter) Value() []byte {
	return iter.iter.Value()
}

// generateKey generate a prefixed key
func generateKey(raw []byte, prefix string) []byte {
	bytesBuffer := bytes.NewBuffer([]byte(prefix))
	if raw != nil {
		bytesBuffer.Write(raw)
	}
	return bytesBuffer.Bytes()
}

type LDBDatabase struct {
	db *leveldb.DB

	lock     sync.RWMutex
	filename string
	inited   bool
}

// NewLDBDatabase create level db instance by file
func NewLDBDatabase(file string, options *opt.Options) (*LDBDatabase, error) {
	db, err := newLevelDBInstance(file, options)
	if err != nil {
		return nil, err
	}
	return &LDBDatabase{
		filename: file,
		db:       db,
		inited:   true,
	}, nil
}

// newLevelDBInstance generate a leveldb instance, recovering the files if they are corrupted
func newLevelDBInstance(file string, options *opt.Options) (*leveldb.DB, error) {
	db, err := leveldb.OpenFile(file, options)

	if _, corrupted := err.(*lerrors.ErrCorrupted); corrupted {
		log.StorageLogger.Warnf("leveldb %v corrupted, recovering", file)
		db, err = leveldb.RecoverFile(file, nil)
	}
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Clear drops every file of the database and reopens it empty
func (ldb *LDBDatabase) Clear() error {
	ldb.lock.Lock()
	defer ldb.lock.Unlock()

	ldb.inited = false
	ldb.db.Close()

	if err := os.RemoveAll(ldb.Path()); err != nil {
		return err
	}
	db, err := newLevelDBInstance(ldb.Path(), nil)
	if err != nil {
		return err
	}
	ldb.db = db
	ldb.inited = true
	return nil
}

// Path returns the path to the database directory.
func (ldb *LDBDatabase) Path() string {
	return ldb.filename
}

// Put puts the given key / value to the queue
func (ldb *LDBDatabase) Put(key []byte, value []byte) error {
	ldb.lock.RLock()
	defer ldb.lock.RUnlock()
	if !ldb.inited {
		return ErrLDBInit
	}
	return ldb.db.Put(key, value, nil)
}

func (ldb *LDBDatabase) Has(key []byte) (bool, error) {
	ldb.lock.RLock()
	defer ldb.lock.RUnlock()
	if !ldb.inited {
		return false, ErrLDBInit
	}
	return ldb.db.Has(key, nil)
}

// Get returns the given key if it's present.
func (ldb *LDBDatabase) Get(key []byte) ([]byte, error) {
	ldb.lock.RLock()
	defer ldb.lock.RUnlock()
	if !ldb.inited {
		return nil, ErrLDBInit
	}
	return ldb.db.Get(key, nil)
}

// Delete deletes the key from the queue and database
func (ldb *LDBDatabase) Delete(key []byte) error {
	ldb.lock.RLock()
	defer ldb.lock.RUnlock()
	if !ldb.inited {
		return ErrLDBInit
	}
	return ldb.db.Delete(key, nil)
}

func (ldb *LDBDatabase) NewIterator() iterator.Iterator {
	return ldb.NewIteratorWithPrefix(nil)
}

// NewIteratorWithPrefix returns a iterator to iterate over subset of database content with a particular prefix.
func (ldb *LDBDatabase) NewIteratorWithPrefix(prefix []byte) iterator.Iterator {
	ldb.lock.RLock()
	defer ldb.lock.RUnlock()
	if len(prefix) == 0 {
		return ldb.db.NewIterator(nil, nil)
	}
	return ldb.db.NewIterator(util.BytesPrefix(prefix), nil)
}

func (ldb *LDBDatabase) Close() {
	ldb.lock.Lock()
	defer ldb.lock.Unlock()
	if !ldb.inited {
		return
	}
	ldb.inited = false
	if err := ldb.db.Close(); err != nil {
		log.StorageLogger.Errorf("close leveldb %v error: %v", ldb.filename, err)
	}
}

func (ldb *LDBDatabase) NewBatch() Batch {
	return &ldbBatch{db: ldb.db, b: new(leveldb.Batch)}
}

// ldbBatch buffers writes to a leveldb instance, keys are prefixed when prefix is set
type ldbBatch struct {
	db     *leveldb.DB
	b      *leveldb.Batch
	size   int
	prefix string
}

func (b *ldbBatch) Put(key, value []byte) error {
	b.b.Put(generateKey(key, b.prefix), value)
	b.size += len(value)
	return nil
}

func (b *ldbBatch) Delete(key []byte) error {
	b.b.Delete(generateKey(key, b.prefix))
	b.size++
	return nil
}

func (b *ldbBatch) Write() error {
	return b.db.Write(b.b, nil)
}

func (b *ldbBatch) ValueSize() int {
	return b.size
}

func (b *ldbBatch) Reset() {
	b.b.Reset()
	b.size = 0
}
