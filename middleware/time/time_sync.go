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

// Package time provides time-zone and local-machine independent time service
package time

import (
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/beevik/ntp"
	"github.com/zvchain/zvsale/common"
	"github.com/zvchain/zvsale/log"
	"github.com/zvchain/zvsale/middleware/ticker"
)

// TimeStamp in seconds
type TimeStamp int64

func Int64ToTimeStamp(sec int64) TimeStamp {
	return TimeStamp(sec)
}

func TimeToTimeStamp(t time.Time) TimeStamp {
	return TimeStamp(t.Unix())
}

func (ts TimeStamp) Bytes() []byte {
	return common.Int64ToByte(int64(ts))
}

func (ts TimeStamp) UTC() time.Time {
	return time.Unix(ts.Unix(), 0).UTC()
}

func (ts TimeStamp) Unix() int64 {
	return int64(ts)
}

func (ts TimeStamp) After(t TimeStamp) bool {
	return ts > t
}

func (ts TimeStamp) Since(t TimeStamp) int64 {
	return int64(ts - t)
}

func (ts TimeStamp) Add(sec int64) TimeStamp {
	return ts + Int64ToTimeStamp(sec)
}

func (ts TimeStamp) String() string {
	return ts.UTC().Format(time.RFC3339)
}

// DefaultNtpServers are the servers used when the configuration names none
var DefaultNtpServers = []string{"pool.ntp.org", "time.google.com", "time.cloudflare.com", "ntp.aliyun.com"}

// TimeService is a time service, it return a timestamp in seconds
type TimeService interface {
	// Now returns the current timestamp calibrated with ntp server
	Now() TimeStamp

	// NowTime returns the current time calibrated with ntp server
	NowTime() time.Time

	// Since returns the time duration from the given timestamp to current moment
	Since(t TimeStamp) int64

	// NowAfter checks if current timestamp greater than the given one
	NowAfter(t TimeStamp) bool
}

var TSInstance TimeService

// TimeSync implements time synchronization from ntp servers
type TimeSync struct {
	servers       []string
	currentOffset int64 // The offset of the local time to the ntp server, in nanoseconds
	ticker        *ticker.GlobalTicker
	query         func(server string) (time.Duration, error)
}

func ntpOffset(server string) (time.Duration, error) {
	rsp, err := ntp.QueryWithOptions(server, ntp.QueryOptions{Timeout: 500 * time.Millisecond})
	if err != nil {
		return 0, err
	}
	return rsp.ClockOffset, nil
}

// InitTimeSync starts a calibrated time service as the global instance, syncing every minute
func InitTimeSync(servers []string) {
	ts := newTimeSync(servers, ntpOffset)
	ts.ticker = ticker.NewGlobalTicker("time_sync")
	ts.ticker.RegisterPeriodicRoutine("time_sync", ts.syncRoutine, 60)
	ts.ticker.StartTickerRoutine("time_sync", false)
	ts.syncRoutine()
	TSInstance = ts
}

func newTimeSync(servers []string, query func(string) (time.Duration, error)) *TimeSync {
	if len(servers) == 0 {
		servers = DefaultNtpServers
	}
	return &TimeSync{servers: servers, query: query}
}

func (ts *TimeSync) syncRoutine() bool {
	server := ts.servers[rand.Intn(len(ts.servers))]
	offset, err := ts.query(server)
	if err != nil {
		log.DefaultLogger.Warnf("time sync from %v err: %v", server, err)
		return false
	}
	atomic.StoreInt64(&ts.currentOffset, int64(offset))
	log.DefaultLogger.Infof("time offset from %v is %v", server, offset)
	return true
}

func (ts *TimeSync) offset() time.Duration {
	return time.Duration(atomic.LoadInt64(&ts.currentOffset))
}

// Now returns the current timestamp calibrated with ntp server
func (ts *TimeSync) Now() TimeStamp {
	return TimeToTimeStamp(ts.NowTime())
}

// NowTime returns the current timestamp calibrated with ntp server( with nano)
func (ts *TimeSync) NowTime() time.Time {
	return time.Now().Add(ts.offset()).UTC()
}

// Since returns the time duration from the given timestamp to current moment
func (ts *TimeSync) Since(t TimeStamp) int64 {
	return ts.Now().Since(t)
}

// NowAfter checks if current timestamp greater than the given one
func (ts *TimeSync) NowAfter(t TimeStamp) bool {
	return ts.Now().After(t)
}

// Stop ends the periodic calibration
func (ts *TimeSync) Stop() {
	if ts.ticker != nil {
		ts.ticker.Stop()
	}
}

// NewLocalTime returns a time service backed by the uncalibrated local clock
func NewLocalTime() TimeService {
	return newTimeSync(nil, nil)
}

// StaticTime always reports the same moment. It drives deterministic clients and tests
type StaticTime struct {
	now int64
}

func NewStaticTime(now TimeStamp) *StaticTime {
	return &StaticTime{now: int64(now)}
}

// Set moves the clock to now
func (st *StaticTime) Set(now TimeStamp) {
	atomic.StoreInt64(&st.now, int64(now))
}

func (st *StaticTime) Now() TimeStamp {
	return TimeStamp(atomic.LoadInt64(&st.now))
}

func (st *StaticTime) NowTime() time.Time {
	return st.Now().UTC()
}

func (st *StaticTime) Since(t TimeStamp) int64 {
	return st.Now().Since(t)
}

func (st *StaticTime) NowAfter(t TimeStamp) bool {
	return st.Now().After(t)
}
