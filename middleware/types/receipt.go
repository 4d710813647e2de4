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

package types

import (
	"fmt"

	"github.com/zvchain/zvsale/common"
)

type ReceiptStatus int

const (
	RSSuccess ReceiptStatus = iota
	RSFail
)

// Event is one observable effect of an executed operation
type Event struct {
	Name    string            `msgpack:"n" json:"name"`
	Account common.Address    `msgpack:"a" json:"account"`
	Amount  *BigInt           `msgpack:"v,omitempty" json:"amount,omitempty"`
	Extra   map[string]string `msgpack:"e,omitempty" json:"extra,omitempty"`
}

func (e *Event) String() string {
	return fmt.Sprintf("event{%v account=%v amount=%v extra=%v}", e.Name, e.Account, e.Amount.Value(), e.Extra)
}

// Receipt records the outcome of one transaction.
// Results holds one entry per pair of a batch operation, empty for success
type Receipt struct {
	Index     uint64         `msgpack:"i" json:"index"`
	TxHash    common.Hash    `msgpack:"h" json:"transactionHash"`
	Type      int8           `msgpack:"tp" json:"type"`
	Source    common.Address `msgpack:"src" json:"source"`
	Status    ReceiptStatus  `msgpack:"st" json:"status"`
	Error     string         `msgpack:"err,omitempty" json:"error,omitempty"`
	Time      int64          `msgpack:"tm" json:"time"`
	Events    []*Event       `msgpack:"ev,omitempty" json:"events,omitempty"`
	Results   []string       `msgpack:"rs,omitempty" json:"results,omitempty"`
	StateRoot common.Hash    `msgpack:"root" json:"stateRoot"`
}

func NewReceipt(tx *Transaction) *Receipt {
	r := &Receipt{
		TxHash: tx.Hash,
		Type:   tx.Type,
		Time:   tx.Time,
	}
	if tx.Source != nil {
		r.Source = *tx.Source
	}
	return r
}

func (r *Receipt) String() string {
	return fmt.Sprintf("receipt{idx=%v type=%v status=%d err=%v events=%d tx=%v root=%v}", r.Index, TxTypeName(r.Type), r.Status, r.Error, len(r.Events), r.TxHash.Hex(), r.StateRoot.Hex())
}

func (r *Receipt) Success() bool {
	return r.Status == RSSuccess
}
