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
	"bytes"
	"fmt"
	"math/big"

	"github.com/vmihailenco/msgpack"
	"github.com/zvchain/zvsale/common"
	"github.com/zvchain/zvsale/middleware/types"
)

var (
	prefixBalance      = []byte("b")
	prefixContribution = []byte("c")
	prefixReferral     = []byte("r")
	prefixVesting      = []byte("v")
	prefixTimelock     = []byte("t")

	keyMeta   = []byte("meta")
	keyState  = []byte("state")
	keyConfig = []byte("config")
)

// recordStore reads and writes the msgpack records of one component under its store address
type recordStore struct {
	db   types.AccountDB
	addr common.Address
}

func getAccountKey(prefix []byte, address common.Address) []byte {
	buf := bytes.NewBuffer(common.CopyBytes(prefix))
	buf.Write(address.Bytes())
	return buf.Bytes()
}

// getRecord decodes the record under key into v, returning false if it does not exist
func (s *recordStore) getRecord(key []byte, v interface{}) (bool, error) {
	data := s.db.GetData(s.addr, key)
	if len(data) == 0 {
		return false, nil
	}
	if err := msgpack.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode record %s of %v: %v", key, s.addr, err)
	}
	return true, nil
}

func (s *recordStore) setRecord(key []byte, v interface{}) error {
	bs, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}
	s.db.SetData(s.addr, key, bs)
	return nil
}

func (s *recordStore) getBig(key []byte) *big.Int {
	data := s.db.GetData(s.addr, key)
	if len(data) == 0 {
		return new(big.Int)
	}
	return new(big.Int).SetBytes(data)
}

// setBig stores a non-negative amount, zero removes the key
func (s *recordStore) setBig(key []byte, v *big.Int) {
	if v.Sign() < 0 {
		panic(fmt.Errorf("negative amount %v under %s of %v", v, key, s.addr))
	}
	if v.Sign() == 0 {
		s.db.RemoveData(s.addr, key)
		return
	}
	s.db.SetData(s.addr, key, v.Bytes())
}
