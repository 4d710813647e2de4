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

// Package ticker implements a heartbeat based scheduler for the periodic jobs of the node
package ticker

import (
	"sync"
	"sync/atomic"
	"time"
)

// RoutineFunc is the routine function which will be called at specified moment.
// A false return retries the routine on the next heartbeat
type RoutineFunc func() bool

// the routine status
const (
	stopped = int32(0)
	running = int32(1)
)

// TickerRoutine define the infos of the scheduled task
type TickerRoutine struct {
	id              string
	handler         RoutineFunc // Executive function
	interval        uint64      // Triggered heartbeat interval
	lastTicker      uint64      // Last executed heartbeat
	status          int32       // The current state : stopped, running
	triggerNextTick int32       // Should be executed in next heartbeat
	executing       int32
}

// GlobalTicker is the schedule tool structure
type GlobalTicker struct {
	id       string
	timer    *time.Ticker
	ticker   uint64
	routines sync.Map // key: string, value: *TickerRoutine
	quit     chan struct{}
	once     sync.Once
}

// NewGlobalTicker creates a ticker beating every second
func NewGlobalTicker(id string) *GlobalTicker {
	return NewGlobalTickerWithHeartbeat(id, time.Second)
}

// NewGlobalTickerWithHeartbeat creates a ticker with the given heartbeat
func NewGlobalTickerWithHeartbeat(id string, heartbeat time.Duration) *GlobalTicker {
	ticker := &GlobalTicker{
		id:    id,
		timer: time.NewTicker(heartbeat),
		quit:  make(chan struct{}),
	}

	go ticker.routine()

	return ticker
}

func (gt *GlobalTicker) getRoutine(name string) *TickerRoutine {
	if v, ok := gt.routines.Load(name); ok {
		return v.(*TickerRoutine)
	}
	return nil
}

func (gt *GlobalTicker) routine() {
	for {
		select {
		case <-gt.quit:
			return
		case <-gt.timer.C:
			current := atomic.AddUint64(&gt.ticker, 1)
			gt.routines.Range(func(key, value interface{}) bool {
				rt := value.(*TickerRoutine)
				due := atomic.LoadInt32(&rt.status) == running && current-atomic.LoadUint64(&rt.lastTicker) >= rt.interval
				if due || atomic.CompareAndSwapInt32(&rt.triggerNextTick, 1, 0) {
					go gt.trigger(rt, current)
				}
				return true
			})
		}
	}
}

func (gt *GlobalTicker) trigger(rt *TickerRoutine, current uint64) {
	if !atomic.CompareAndSwapInt32(&rt.executing, 0, 1) {
		if atomic.LoadInt32(&rt.status) == running {
			atomic.StoreInt32(&rt.triggerNextTick, 1)
		}
		return
	}
	defer atomic.StoreInt32(&rt.executing, 0)

	if rt.handler() {
		atomic.StoreUint64(&rt.lastTicker, current)
	} else {
		atomic.StoreInt32(&rt.triggerNextTick, 1)
	}
}

// RegisterPeriodicRoutine registers a specified periodic task to the scheduler instance.
// The task denoted by the routine param will be executed every interval heartbeats
func (gt *GlobalTicker) RegisterPeriodicRoutine(name string, routine RoutineFunc, interval uint64) {
	if rt := gt.getRoutine(name); rt != nil {
		return
	}
	r := &TickerRoutine{
		interval:   interval,
		handler:    routine,
		lastTicker: atomic.LoadUint64(&gt.ticker),
		id:         name,
		status:     stopped,
	}
	gt.routines.Store(name, r)
}

func (gt *GlobalTicker) RemoveRoutine(name string) {
	gt.routines.Delete(name)
}

// StartTickerRoutine starts the specified routine.
// Note that, the task won't work if this function wasn't called after registered
func (gt *GlobalTicker) StartTickerRoutine(name string, triggerNextTicker bool) {
	routine := gt.getRoutine(name)
	if routine == nil {
		return
	}
	if triggerNextTicker {
		atomic.StoreInt32(&routine.triggerNextTick, 1)
	}
	atomic.StoreInt32(&routine.status, running)
}

// StopTickerRoutine stops the specified task
func (gt *GlobalTicker) StopTickerRoutine(name string) {
	routine := gt.getRoutine(name)
	if routine == nil {
		return
	}

	atomic.StoreInt32(&routine.status, stopped)
}

// Stop terminates the heartbeat, registered routines are never triggered again
func (gt *GlobalTicker) Stop() {
	gt.once.Do(func() {
		gt.timer.Stop()
		close(gt.quit)
	})
}
