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

package monitor

import (
	"errors"
	"io/ioutil"
	"math/big"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/zvchain/zvsale/core"
	"github.com/zvchain/zvsale/middleware/notify"
	"github.com/zvchain/zvsale/middleware/time"
	"github.com/zvchain/zvsale/middleware/types"
)

type fakeSource struct {
	fail  bool
	stage *core.StageInfo
}

func (fs *fakeSource) SaleState(now int64) (*core.SaleSnapshot, error) {
	if fs.fail {
		return nil, errors.New("closed")
	}
	return &core.SaleSnapshot{
		Phase:        core.PhaseActive,
		TotalRaised:  big.NewInt(1500),
		Escrow:       big.NewInt(1500),
		Contributors: 3,
	}, nil
}

func (fs *fakeSource) LedgerInfo() (*core.LedgerInfo, error) {
	return &core.LedgerInfo{
		TotalSupply:      big.NewInt(90000),
		ReservePool:      big.NewInt(10000),
		ReserveCommitted: big.NewInt(2500),
	}, nil
}

func (fs *fakeSource) ActiveStage(now int64) (*core.StageInfo, error) {
	return fs.stage, nil
}

func (fs *fakeSource) ReceiptCount() uint64 {
	return 7
}

func TestMonitorService_Refresh(t *testing.T) {
	source := &fakeSource{stage: &core.StageInfo{Index: 1, Active: true}}
	ms := NewMonitorService(source, time.NewStaticTime(1000))

	if !ms.Refresh() {
		t.Fatal("refresh failed")
	}
	checks := map[string]float64{
		"raised":       testutil.ToFloat64(ms.raised),
		"supply":       testutil.ToFloat64(ms.supply),
		"committed":    testutil.ToFloat64(ms.committed),
		"stage":        testutil.ToFloat64(ms.stage),
		"stageActive":  testutil.ToFloat64(ms.stageActive),
		"receipts":     testutil.ToFloat64(ms.receipts),
		"contributors": testutil.ToFloat64(ms.contributors),
	}
	want := map[string]float64{
		"raised": 1500, "supply": 90000, "committed": 2500, "stage": 1,
		"stageActive": 1, "receipts": 7, "contributors": 3,
	}
	for k, v := range want {
		if checks[k] != v {
			t.Errorf("%v wanted: %v, got: %v", k, v, checks[k])
		}
	}

	source.fail = true
	if ms.Refresh() {
		t.Errorf("refresh should report the read failure")
	}
}

func TestMonitorService_Events(t *testing.T) {
	ms := NewMonitorService(&fakeSource{stage: &core.StageInfo{}}, time.NewStaticTime(1000))

	r := &types.Receipt{Type: types.TransactionTypeContribute}
	ms.onMessage(&notify.SaleEventMessage{Receipt: r, Event: &types.Event{Name: notify.TokenPurchase, Amount: types.NewBigInt(1000)}})
	ms.onMessage(&notify.SaleEventMessage{Receipt: r, Event: &types.Event{Name: notify.TokenPurchase, Amount: types.NewBigInt(500)}})
	ms.onMessage(&notify.RejectedMessage{Receipt: &types.Receipt{Type: types.TransactionTypeFinalize, Status: types.RSFail}})

	if v := testutil.ToFloat64(ms.events.WithLabelValues(notify.TokenPurchase)); v != 2 {
		t.Errorf("wanted: 2, got: %v", v)
	}
	if v := testutil.ToFloat64(ms.tokensSold); v != 1500 {
		t.Errorf("wanted: 1500, got: %v", v)
	}
	if v := testutil.ToFloat64(ms.rejected.WithLabelValues("finalize")); v != 1 {
		t.Errorf("wanted: 1, got: %v", v)
	}
}

func TestMonitorService_Handler(t *testing.T) {
	ms := NewMonitorService(&fakeSource{stage: &core.StageInfo{}}, time.NewStaticTime(1000))
	ms.Refresh()

	srv := httptest.NewServer(ms.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := ioutil.ReadAll(resp.Body)
	if !strings.Contains(string(body), "zvsale_raised 1500") {
		t.Errorf("metric missing from output:\n%s", body)
	}
}
