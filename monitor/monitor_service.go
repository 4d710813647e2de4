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

// Package monitor exports the sale as prometheus metrics. Counters follow the
// events published on the bus, gauges are refreshed from the chain periodically.
package monitor

import (
	"math/big"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/zvchain/zvsale/core"
	"github.com/zvchain/zvsale/log"
	"github.com/zvchain/zvsale/middleware/notify"
	"github.com/zvchain/zvsale/middleware/ticker"
	"github.com/zvchain/zvsale/middleware/time"
	"github.com/zvchain/zvsale/middleware/types"
)

const (
	namespace      = "zvsale"
	refreshRoutine = "monitor_refresh"

	// RefreshInterval is the gauge refresh period, in ticker heartbeats
	RefreshInterval = 5
)

// SaleSource is the read side of the chain the monitor samples
type SaleSource interface {
	SaleState(now int64) (*core.SaleSnapshot, error)
	LedgerInfo() (*core.LedgerInfo, error)
	ActiveStage(now int64) (*core.StageInfo, error)
	ReceiptCount() uint64
}

type MonitorService struct {
	source   SaleSource
	clock    time.TimeService
	registry *prometheus.Registry
	ticker   *ticker.GlobalTicker
	mu       sync.Mutex

	events       *prometheus.CounterVec
	rejected     *prometheus.CounterVec
	tokensSold   prometheus.Counter
	raised       prometheus.Gauge
	escrow       prometheus.Gauge
	supply       prometheus.Gauge
	reserve      prometheus.Gauge
	committed    prometheus.Gauge
	stage        prometheus.Gauge
	stageActive  prometheus.Gauge
	receipts     prometheus.Gauge
	contributors prometheus.Gauge
}

var Instance *MonitorService

// NewMonitorService builds the metrics on a private registry
func NewMonitorService(source SaleSource, clock time.TimeService) *MonitorService {
	ms := &MonitorService{
		source:   source,
		clock:    clock,
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "events_total", Help: "Events emitted by accepted operations.",
		}, []string{"event"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "rejected_total", Help: "Rejected operations by type.",
		}, []string{"type"}),
		tokensSold: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "tokens_sold_total", Help: "Tokens minted to contributors, smallest unit.",
		}),
		raised:       newGauge("raised", "Total value raised."),
		escrow:       newGauge("escrow", "Value held in escrow."),
		supply:       newGauge("token_supply", "Total token supply."),
		reserve:      newGauge("reserve_pool", "Tokens in the reserved pool."),
		committed:    newGauge("reserve_committed", "Reserved tokens granted but not released."),
		stage:        newGauge("stage_index", "Index of the current stage."),
		stageActive:  newGauge("stage_active", "1 while the current stage accepts contributions."),
		receipts:     newGauge("receipts", "Receipts recorded."),
		contributors: newGauge("contributors", "Distinct contributors."),
	}
	ms.registry.MustRegister(ms.events, ms.rejected, ms.tokensSold, ms.raised, ms.escrow, ms.supply,
		ms.reserve, ms.committed, ms.stage, ms.stageActive, ms.receipts, ms.contributors)
	return ms
}

func newGauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
}

// InitMonitorService creates the global instance, subscribes it to the bus
// and starts the periodic refresh on gt
func InitMonitorService(source SaleSource, bus *notify.Bus, gt *ticker.GlobalTicker) *MonitorService {
	clock := time.TSInstance
	if clock == nil {
		clock = time.NewLocalTime()
	}
	Instance = NewMonitorService(source, clock)
	if bus != nil {
		for _, id := range notify.AllEvents {
			bus.Subscribe(id, Instance.onMessage)
		}
	}
	if gt != nil {
		Instance.ticker = gt
		gt.RegisterPeriodicRoutine(refreshRoutine, Instance.Refresh, RefreshInterval)
		gt.StartTickerRoutine(refreshRoutine, true)
	}
	return Instance
}

// Handler serves the registry in the prometheus exposition format
func (ms *MonitorService) Handler() http.Handler {
	return promhttp.HandlerFor(ms.registry, promhttp.HandlerOpts{})
}

func (ms *MonitorService) onMessage(message notify.Message) {
	switch msg := message.(type) {
	case *notify.SaleEventMessage:
		ms.events.WithLabelValues(msg.Event.Name).Inc()
		if msg.Event.Name == notify.TokenPurchase {
			ms.tokensSold.Add(toFloat(msg.Event.Amount.Value()))
		}
	case *notify.RejectedMessage:
		ms.rejected.WithLabelValues(types.TxTypeName(msg.Receipt.Type)).Inc()
	}
}

// Refresh samples the chain into the gauges. It returns false on a read
// failure so the ticker retries on the next heartbeat
func (ms *MonitorService) Refresh() bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.clock.Now().Unix()
	sale, err := ms.source.SaleState(now)
	if err != nil {
		log.MonitorLogger.Errorf("read sale state error: %v", err)
		return false
	}
	ledger, err := ms.source.LedgerInfo()
	if err != nil {
		log.MonitorLogger.Errorf("read ledger error: %v", err)
		return false
	}
	stage, err := ms.source.ActiveStage(now)
	if err != nil {
		log.MonitorLogger.Errorf("read stage error: %v", err)
		return false
	}

	ms.raised.Set(toFloat(sale.TotalRaised))
	ms.escrow.Set(toFloat(sale.Escrow))
	ms.contributors.Set(float64(sale.Contributors))
	ms.supply.Set(toFloat(ledger.TotalSupply))
	ms.reserve.Set(toFloat(ledger.ReservePool))
	ms.committed.Set(toFloat(ledger.ReserveCommitted))
	ms.stage.Set(float64(stage.Index))
	if stage.Active {
		ms.stageActive.Set(1)
	} else {
		ms.stageActive.Set(0)
	}
	ms.receipts.Set(float64(ms.source.ReceiptCount()))

	log.MonitorLogger.WithFields(logrus.Fields{
		"phase":  sale.Phase,
		"raised": sale.TotalRaised.String(),
		"stage":  stage.Index,
	}).Debug("metrics refreshed")
	return true
}

// Stop removes the refresh routine from the ticker
func (ms *MonitorService) Stop() {
	if ms.ticker != nil {
		ms.ticker.RemoveRoutine(refreshRoutine)
	}
}

func toFloat(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
