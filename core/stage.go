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
	"fmt"

	"github.com/zvchain/zvsale/common"
	"github.com/zvchain/zvsale/middleware/types"
)

type scheduleState struct {
	Index    int   `msgpack:"i"`
	Start    int64 `msgpack:"s"`
	Deadline int64 `msgpack:"d"`
}

// StageInfo describes the current stage of the schedule
type StageInfo struct {
	Index    int    `json:"index"`
	Rate     uint64 `json:"rate"`
	Start    int64  `json:"start"`
	Deadline int64  `json:"deadline"`
	Active   bool   `json:"active"`
	Last     bool   `json:"last"`
}

// StageSchedule tracks the pricing stages. The stage only moves on an explicit AdvanceStage call
type StageSchedule struct {
	recordStore
	cfg *SaleConfig
}

func newStageSchedule(db types.AccountDB, cfg *SaleConfig) *StageSchedule {
	return &StageSchedule{
		recordStore: recordStore{db: db, addr: common.ScheduleStoreAddr},
		cfg:         cfg,
	}
}

// init opens the first stage at the sale start
func (s *StageSchedule) init() error {
	return s.setState(&scheduleState{
		Index:    0,
		Start:    s.cfg.StartTime,
		Deadline: s.cfg.StartTime + int64(s.cfg.Stages[0].Duration),
	})
}

func (s *StageSchedule) state() (*scheduleState, error) {
	st := &scheduleState{}
	ok, err := s.getRecord(keyState, st)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("schedule state not found")
	}
	return st, nil
}

func (s *StageSchedule) setState(st *scheduleState) error {
	return s.setRecord(keyState, st)
}

// ActiveStage returns the current stage and its rate if now falls within [start, deadline]
func (s *StageSchedule) ActiveStage(now int64) (index int, rate uint64, ok bool, err error) {
	st, err := s.state()
	if err != nil {
		return 0, 0, false, err
	}
	if now < st.Start || now > st.Deadline {
		return st.Index, 0, false, nil
	}
	return st.Index, s.cfg.Stages[st.Index].Rate, true, nil
}

// CurrentIndex returns the index of the current stage
func (s *StageSchedule) CurrentIndex() (int, error) {
	st, err := s.state()
	if err != nil {
		return 0, err
	}
	return st.Index, nil
}

// Info returns the current stage as seen at now
func (s *StageSchedule) Info(now int64) (*StageInfo, error) {
	st, err := s.state()
	if err != nil {
		return nil, err
	}
	return &StageInfo{
		Index:    st.Index,
		Rate:     s.cfg.Stages[st.Index].Rate,
		Start:    st.Start,
		Deadline: st.Deadline,
		Active:   now >= st.Start && now <= st.Deadline,
		Last:     st.Index == len(s.cfg.Stages)-1,
	}, nil
}

// AdvanceStage moves exactly one stage forward once the current deadline has passed.
// The new stage starts after the break following the previous deadline. It lasts its full
// duration from that start, or from now when the owner advances after the break
func (s *StageSchedule) AdvanceStage(caller common.Address, now int64) (*scheduleState, error) {
	if caller != s.cfg.Owner {
		return nil, fmt.Errorf("%w: %v is not the owner", ErrUnauthorized, caller)
	}
	st, err := s.state()
	if err != nil {
		return nil, err
	}
	if st.Index >= len(s.cfg.Stages)-1 {
		return nil, fmt.Errorf("%w: already at the last stage %d", ErrInvalidTransition, st.Index)
	}
	if now <= st.Deadline {
		return nil, fmt.Errorf("%w: stage %d deadline %d not passed at %d", ErrInvalidTransition, st.Index, st.Deadline, now)
	}
	start := st.Deadline + int64(s.cfg.Breaks[st.Index])
	opened := start
	if now > opened {
		opened = now
	}
	next := &scheduleState{
		Index:    st.Index + 1,
		Start:    start,
		Deadline: opened + int64(s.cfg.Stages[st.Index+1].Duration),
	}
	if err := s.setState(next); err != nil {
		return nil, err
	}
	return next, nil
}
