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

package notify

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func waitTimeout(wg *sync.WaitGroup, t *testing.T) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handlers not called in time")
	}
}

func TestBus_Publish(t *testing.T) {
	bus := NewBus()
	var wg sync.WaitGroup
	var count int32

	handler := func(message Message) {
		atomic.AddInt32(&count, 1)
		wg.Done()
	}
	bus.Subscribe(TokenPurchase, handler)
	bus.Subscribe(TokenPurchase, handler)
	bus.Subscribe(SaleFinalized, handler)

	wg.Add(2)
	bus.Publish(TokenPurchase, &DummyMessage{})
	waitTimeout(&wg, t)
	if c := atomic.LoadInt32(&count); c != 2 {
		t.Errorf("wanted: 2, got: %d", c)
	}

	// nobody listens to this topic
	bus.Publish(RefundClaimed, &DummyMessage{})
}

func TestTopic_UnSubscribe(t *testing.T) {
	topic := &Topic{ID: "test"}
	var wg sync.WaitGroup
	var first, second int32

	h1 := func(message Message) {
		atomic.AddInt32(&first, 1)
		wg.Done()
	}
	h2 := func(message Message) {
		atomic.AddInt32(&second, 1)
		wg.Done()
	}
	topic.Subscribe(h1)
	topic.Subscribe(h2)
	topic.UnSubscribe(h1)

	wg.Add(1)
	topic.Handle(&DummyMessage{}, false)
	waitTimeout(&wg, t)
	if atomic.LoadInt32(&first) != 0 || atomic.LoadInt32(&second) != 1 {
		t.Errorf("wanted: 0/1, got: %d/%d", first, second)
	}
}

func TestBus_PublishWithRecover(t *testing.T) {
	bus := NewBus()
	var wg sync.WaitGroup

	bus.Subscribe(StageAdvanced, func(message Message) {
		defer wg.Done()
		panic("handler panic")
	})
	bus.Subscribe(StageAdvanced, func(message Message) {
		wg.Done()
	})

	wg.Add(2)
	bus.PublishWithRecover(StageAdvanced, &DummyMessage{})
	waitTimeout(&wg, t)
}
