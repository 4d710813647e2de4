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
	"github.com/VictoriaMetrics/fastcache"
)

// CachedDatabase puts a fastcache read cache in front of a Database.
// Writes go through to the underlying database and refresh the cache
type CachedDatabase struct {
	Database
	cache *fastcache.Cache
}

// NewCachedDatabase wraps db with a cache of cacheMB megabytes
func NewCachedDatabase(db Database, cacheMB int) *CachedDatabase {
	if cacheMB <= 0 {
		cacheMB = 16
	}
	return &CachedDatabase{
		Database: db,
		cache:    fastcache.New(cacheMB * 1024 * 1024),
	}
}

func (db *CachedDatabase) Get(key []byte) ([]byte, error) {
	if v := db.cache.Get(nil, key); v != nil {
		return v, nil
	}
	v, err := db.Database.Get(key)
	if err != nil {
		return nil, err
	}
	if len(v) > 0 {
		db.cache.Set(key, v)
	}
	return v, nil
}

func (db *CachedDatabase) Has(key []byte) (bool, error) {
	if v := db.cache.Get(nil, key); v != nil {
		return true, nil
	}
	return db.Database.Has(key)
}

func (db *CachedDatabase) Put(key []byte, value []byte) error {
	if err := db.Database.Put(key, value); err != nil {
		return err
	}
	db.cache.Set(key, value)
	return nil
}

func (db *CachedDatabase) Delete(key []byte) error {
	db.cache.Del(key)
	return db.Database.Delete(key)
}

func (db *CachedDatabase) NewBatch() Batch {
	return &cachedBatch{Batch: db.Database.NewBatch(), db: db}
}

// CacheStats returns the number of cache hits and misses so far
func (db *CachedDatabase) CacheStats() (hits uint64, misses uint64) {
	s := &fastcache.Stats{}
	db.cache.UpdateStats(s)
	return s.GetCalls - s.Misses, s.Misses
}

// cachedBatch evicts the touched keys once the batch is written
type cachedBatch struct {
	Batch
	db   *CachedDatabase
	keys [][]byte
}

func (b *cachedBatch) Put(key, value []byte) error {
	b.keys = append(b.keys, append([]byte{}, key...))
	return b.Batch.Put(key, value)
}

func (b *cachedBatch) Delete(key []byte) error {
	b.keys = append(b.keys, append([]byte{}, key...))
	return b.Batch.Delete(key)
}

func (b *cachedBatch) Write() error {
	for _, k := range b.keys {
		b.db.cache.Del(k)
	}
	return b.Batch.Write()
}

func (b *cachedBatch) Reset() {
	b.keys = b.keys[:0]
	b.Batch.Reset()
}
