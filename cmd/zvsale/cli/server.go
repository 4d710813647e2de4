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

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/zvchain/zvsale/common"
	"github.com/zvchain/zvsale/core"
	"github.com/zvchain/zvsale/log"
	"github.com/zvchain/zvsale/middleware/time"
	"github.com/zvchain/zvsale/middleware/types"
	"github.com/zvchain/zvsale/storage/receipt"
)

const (
	defaultReceiptLimit = 20
	maxReceiptLimit     = 100
)

// SaleServer serves the sale chain over http
type SaleServer struct {
	chain   *core.SaleChain
	clock   time.TimeService
	metrics http.Handler
	server  *http.Server

	// lets POST /tx carry its own evaluation time, for test deployments only
	allowTimeOverride bool
}

// NewSaleServer creates the server, metrics is mounted on /metrics if not nil
func NewSaleServer(chain *core.SaleChain, clock time.TimeService, metrics http.Handler) *SaleServer {
	return &SaleServer{
		chain:   chain,
		clock:   clock,
		metrics: metrics,
	}
}

// AllowTimeOverride makes the server accept the now field of transaction requests
func (s *SaleServer) AllowTimeOverride(allow bool) {
	s.allowTimeOverride = allow
}

// Router returns the routes of the api
func (s *SaleServer) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(logRequests)
	r.HandleFunc("/tx", s.sendTx).Methods(http.MethodPost)
	r.HandleFunc("/balance/{addr}", s.balance).Methods(http.MethodGet)
	r.HandleFunc("/funds/{addr}", s.funds).Methods(http.MethodGet)
	r.HandleFunc("/contribution/{addr}", s.contribution).Methods(http.MethodGet)
	r.HandleFunc("/referral/{addr}", s.referral).Methods(http.MethodGet)
	r.HandleFunc("/vesting/{addr}", s.vesting).Methods(http.MethodGet)
	r.HandleFunc("/timelock/{addr}", s.timelock).Methods(http.MethodGet)
	r.HandleFunc("/stage", s.stage).Methods(http.MethodGet)
	r.HandleFunc("/sale", s.sale).Methods(http.MethodGet)
	r.HandleFunc("/ledger", s.ledger).Methods(http.MethodGet)
	r.HandleFunc("/receipts", s.receipts).Methods(http.MethodGet)
	r.HandleFunc("/receipt/{hash}", s.receiptByHash).Methods(http.MethodGet)
	r.HandleFunc("/root", s.root).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics).Methods(http.MethodGet)
	}
	return r
}

// Start listens on host:port and serves in the background
func (s *SaleServer) Start(host string, port int, origins []string) error {
	endpoint := fmt.Sprintf("%s:%d", host, port)
	listener, err := net.Listen("tcp", endpoint)
	if err != nil {
		return err
	}
	s.server = &http.Server{Handler: newCorsHandler(s.Router(), origins)}
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.RPCLogger.Errorf("rpc server stopped: %v", err)
		}
	}()
	log.RPCLogger.Infof("rpc serving on http://%s", endpoint)
	return nil
}

// Stop shuts the server down gracefully
func (s *SaleServer) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func newCorsHandler(h http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		return h
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"*"},
		MaxAge:         600,
	})
	return c.Handler(h)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.RPCLogger.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"remote": r.RemoteAddr,
		}).Debug("rpc request")
		next.ServeHTTP(w, r)
	})
}

func writeResult(w http.ResponseWriter, code int, res *Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.RPCLogger.Errorf("write response error: %v", err)
	}
}

func (s *SaleServer) now(r *http.Request) (int64, error) {
	if v := r.URL.Query().Get("now"); v != "" {
		return strconv.ParseInt(v, 10, 64)
	}
	return s.clock.Now().Unix(), nil
}

func pathAddress(w http.ResponseWriter, r *http.Request) (common.Address, bool) {
	addr, err := parseAddress(mux.Vars(r)["addr"])
	if err != nil {
		writeResult(w, http.StatusBadRequest, failResult(err.Error()))
		return addr, false
	}
	return addr, true
}

// toTransaction converts the request at the server time now. The request time
// replaces it only if allowOverride is set
func (req *TxRequest) toTransaction(now int64, allowOverride bool) (*types.Transaction, error) {
	typ, ok := types.ParseTxType(req.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, req.Type)
	}
	source, err := parseAddress(req.Source)
	if err != nil {
		return nil, fmt.Errorf("source: %v", err)
	}
	value, err := parseAmount(req.Value)
	if err != nil {
		return nil, fmt.Errorf("value: %v", err)
	}
	tx := &types.Transaction{
		Type:   typ,
		Source: &source,
		Value:  types.BigIntFrom(value),
		Time:   now,
	}
	if req.Now != 0 {
		if !allowOverride {
			return nil, ErrTimeOverride
		}
		tx.Time = req.Now
	}
	if req.Target != "" {
		target, err := parseAddress(req.Target)
		if err != nil {
			return nil, fmt.Errorf("target: %v", err)
		}
		tx.Target = &target
	}

	var payload interface{}
	switch typ {
	case types.TransactionTypeSetReferral:
		p := &types.ReferralPayload{}
		if p.Participant, err = parseAddress(req.Participant); err != nil {
			return nil, fmt.Errorf("participant: %v", err)
		}
		if p.Referrer, err = parseAddress(req.Referrer); err != nil {
			return nil, fmt.Errorf("referrer: %v", err)
		}
		payload = p
	case types.TransactionTypeSetReferralBatch:
		p := &types.ReferralBatchPayload{}
		if p.Participants, err = parseAddresses(req.Participants); err != nil {
			return nil, fmt.Errorf("participants: %v", err)
		}
		if p.Referrers, err = parseAddresses(req.Referrers); err != nil {
			return nil, fmt.Errorf("referrers: %v", err)
		}
		payload = p
	case types.TransactionTypeGrantVesting:
		payload = &types.VestingPayload{Start: req.Start, Duration: req.Duration}
	case types.TransactionTypeGrantTimelock:
		payload = &types.TimelockPayload{ReleaseTime: req.ReleaseTime}
	}
	if payload != nil {
		if tx.Data, err = types.EncodePayload(payload); err != nil {
			return nil, err
		}
	}
	return tx, nil
}

func parseAddresses(list []string) ([]common.Address, error) {
	addrs := make([]common.Address, len(list))
	for i, s := range list {
		a, err := parseAddress(s)
		if err != nil {
			return nil, err
		}
		addrs[i] = a
	}
	return addrs, nil
}

func (s *SaleServer) sendTx(w http.ResponseWriter, r *http.Request) {
	req := &TxRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeResult(w, http.StatusBadRequest, failResult(err.Error()))
		return
	}
	tx, err := req.toTransaction(s.clock.Now().Unix(), s.allowTimeOverride)
	if err != nil {
		writeResult(w, http.StatusBadRequest, failResult(err.Error()))
		return
	}
	rc, err := s.chain.Execute(tx)
	switch {
	case rc == nil:
		writeResult(w, http.StatusBadRequest, failResult(err.Error()))
	case !rc.Success():
		writeResult(w, http.StatusOK, rejectedResult(rc))
	case err != nil:
		writeResult(w, http.StatusInternalServerError, failResult(err.Error()))
	default:
		writeResult(w, http.StatusOK, successResult(rc))
	}
}

func (s *SaleServer) balance(w http.ResponseWriter, r *http.Request) {
	if addr, ok := pathAddress(w, r); ok {
		writeResult(w, http.StatusOK, successResult(&AmountView{addr.AddrPrefixString(), s.chain.BalanceOf(addr).String()}))
	}
}

func (s *SaleServer) funds(w http.ResponseWriter, r *http.Request) {
	if addr, ok := pathAddress(w, r); ok {
		writeResult(w, http.StatusOK, successResult(&AmountView{addr.AddrPrefixString(), s.chain.FundsOf(addr).String()}))
	}
}

func (s *SaleServer) contribution(w http.ResponseWriter, r *http.Request) {
	if addr, ok := pathAddress(w, r); ok {
		writeResult(w, http.StatusOK, successResult(&AmountView{addr.AddrPrefixString(), s.chain.Contribution(addr).String()}))
	}
}

func (s *SaleServer) referral(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathAddress(w, r)
	if !ok {
		return
	}
	ref, ok := s.chain.Referrer(addr)
	if !ok {
		writeResult(w, http.StatusNotFound, failResult("no referrer"))
		return
	}
	writeResult(w, http.StatusOK, successResult(&ReferralView{addr.AddrPrefixString(), ref.AddrPrefixString()}))
}

func (s *SaleServer) vesting(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathAddress(w, r)
	if !ok {
		return
	}
	now, err := s.now(r)
	if err != nil {
		writeResult(w, http.StatusBadRequest, failResult(err.Error()))
		return
	}
	vs, releasable, err := s.chain.Vesting(addr, now)
	if err != nil {
		writeResult(w, http.StatusInternalServerError, failResult(err.Error()))
		return
	}
	if vs == nil {
		writeResult(w, http.StatusNotFound, failResult("no vesting schedule"))
		return
	}
	writeResult(w, http.StatusOK, successResult(&VestingView{vs, releasable.String()}))
}

func (s *SaleServer) timelock(w http.ResponseWriter, r *http.Request) {
	addr, ok := pathAddress(w, r)
	if !ok {
		return
	}
	te, err := s.chain.Timelock(addr)
	if err != nil {
		writeResult(w, http.StatusInternalServerError, failResult(err.Error()))
		return
	}
	if te == nil {
		writeResult(w, http.StatusNotFound, failResult("no timelock"))
		return
	}
	writeResult(w, http.StatusOK, successResult(te))
}

func (s *SaleServer) stage(w http.ResponseWriter, r *http.Request) {
	now, err := s.now(r)
	if err != nil {
		writeResult(w, http.StatusBadRequest, failResult(err.Error()))
		return
	}
	info, err := s.chain.ActiveStage(now)
	if err != nil {
		writeResult(w, http.StatusInternalServerError, failResult(err.Error()))
		return
	}
	writeResult(w, http.StatusOK, successResult(info))
}

func (s *SaleServer) sale(w http.ResponseWriter, r *http.Request) {
	now, err := s.now(r)
	if err != nil {
		writeResult(w, http.StatusBadRequest, failResult(err.Error()))
		return
	}
	snap, err := s.chain.SaleState(now)
	if err != nil {
		writeResult(w, http.StatusInternalServerError, failResult(err.Error()))
		return
	}
	writeResult(w, http.StatusOK, successResult(snap))
}

func (s *SaleServer) ledger(w http.ResponseWriter, r *http.Request) {
	info, err := s.chain.LedgerInfo()
	if err != nil {
		writeResult(w, http.StatusInternalServerError, failResult(err.Error()))
		return
	}
	writeResult(w, http.StatusOK, successResult(info))
}

func (s *SaleServer) receipts(w http.ResponseWriter, r *http.Request) {
	from, limit := uint64(1), defaultReceiptLimit
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		f, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeResult(w, http.StatusBadRequest, failResult(err.Error()))
			return
		}
		from = f
	}
	if v := q.Get("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l <= 0 {
			writeResult(w, http.StatusBadRequest, failResult("bad limit "+v))
			return
		}
		limit = l
	}
	if limit > maxReceiptLimit {
		limit = maxReceiptLimit
	}
	rs, err := s.chain.Receipts(from, limit)
	if err != nil {
		writeResult(w, http.StatusInternalServerError, failResult(err.Error()))
		return
	}
	writeResult(w, http.StatusOK, successResult(rs))
}

func (s *SaleServer) receiptByHash(w http.ResponseWriter, r *http.Request) {
	h := mux.Vars(r)["hash"]
	if !common.IsHex(h) {
		writeResult(w, http.StatusBadRequest, failResult("wrong hash format"))
		return
	}
	rc, err := s.chain.ReceiptByTx(common.HexToHash(h))
	if errors.Is(err, receipt.ErrReceiptNotFound) {
		writeResult(w, http.StatusNotFound, failResult(err.Error()))
		return
	}
	if err != nil {
		writeResult(w, http.StatusInternalServerError, failResult(err.Error()))
		return
	}
	writeResult(w, http.StatusOK, successResult(rc))
}

func (s *SaleServer) root(w http.ResponseWriter, r *http.Request) {
	writeResult(w, http.StatusOK, successResult(map[string]interface{}{
		"root":     s.chain.StateRoot().Hex(),
		"receipts": s.chain.ReceiptCount(),
	}))
}
