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

// Package types defines the data structures exchanged between the sale engine,
// its storage and the rpc layer
package types

import (
	"bytes"
	"fmt"

	"github.com/zvchain/zvsale/common"
)

// Supported transaction types
const (
	TransactionTypeContribute        = 1
	TransactionTypeAdvanceStage      = 2
	TransactionTypeSetReferral       = 3
	TransactionTypeSetReferralBatch  = 4
	TransactionTypeFinalize          = 5
	TransactionTypeClaimRefund       = 6
	TransactionTypeGrantVesting      = 7
	TransactionTypeReleaseVested     = 8
	TransactionTypeGrantTimelock     = 9
	TransactionTypeReleaseTimelocked = 10
	TransactionTypeTransfer          = 11
	TransactionTypeMintReserve       = 12
)

var txTypeNames = map[int8]string{
	TransactionTypeContribute:        "contribute",
	TransactionTypeAdvanceStage:      "advanceStage",
	TransactionTypeSetReferral:       "setReferral",
	TransactionTypeSetReferralBatch:  "setReferralBatch",
	TransactionTypeFinalize:          "finalize",
	TransactionTypeClaimRefund:       "claimRefund",
	TransactionTypeGrantVesting:      "grantVesting",
	TransactionTypeReleaseVested:     "releaseVested",
	TransactionTypeGrantTimelock:     "grantTimelock",
	TransactionTypeReleaseTimelocked: "releaseTimelocked",
	TransactionTypeTransfer:          "transfer",
	TransactionTypeMintReserve:       "mintReserve",
}

// TxTypeName returns the readable name of the transaction type
func TxTypeName(typ int8) string {
	if n, ok := txTypeNames[typ]; ok {
		return n
	}
	return fmt.Sprintf("unknown(%d)", typ)
}

// ParseTxType returns the type of the readable name
func ParseTxType(name string) (int8, bool) {
	for typ, n := range txTypeNames {
		if n == name {
			return typ, true
		}
	}
	return 0, false
}

// ValidTxType checks if the type is supported
func ValidTxType(typ int8) bool {
	_, ok := txTypeNames[typ]
	return ok
}

// Transaction is one request to the sale engine.
// Time is the moment the request is evaluated at, supplied by the caller
type Transaction struct {
	Data   []byte          `msgpack:"dt,omitempty"` // msgpack encoded payload of the operation
	Value  *BigInt         `msgpack:"v"`            // contributed funds or token amount, depending on the type
	Target *common.Address `msgpack:"tg,omitempty"` // beneficiary or receiver
	Type   int8            `msgpack:"tp"`
	Time   int64           `msgpack:"tm"`
	Nonce  uint64          `msgpack:"nc"`
	Hash   common.Hash     `msgpack:"h"`
	Source *common.Address `msgpack:"src"` // the caller
}

func (tx *Transaction) GetType() int8 {
	return tx.Type
}

// GenHash generate unique hash of the transaction
func (tx *Transaction) GenHash() common.Hash {
	if nil == tx {
		return common.Hash{}
	}
	buffer := bytes.Buffer{}
	if tx.Data != nil {
		buffer.Write(tx.Data)
	}
	buffer.Write(tx.Value.GetBytesWithSign())
	if tx.Target != nil {
		buffer.Write(tx.Target.Bytes())
	}
	if tx.Source != nil {
		buffer.Write(tx.Source.Bytes())
	}
	buffer.WriteByte(byte(tx.Type))
	buffer.Write(common.Int64ToByte(tx.Time))
	buffer.Write(common.UInt64ToByte(tx.Nonce))

	return common.BytesToHash(common.Sha3(buffer.Bytes()))
}

func (tx *Transaction) String() string {
	return fmt.Sprintf("tx{type=%v src=%v target=%v value=%v time=%v hash=%v}", TxTypeName(tx.Type), tx.Source, tx.Target, tx.Value.Value(), tx.Time, tx.Hash)
}
