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

package time

import (
	"errors"
	"testing"
	"time"
)

func TestTimeSync_Offset(t *testing.T) {
	ts := newTimeSync([]string{"a", "b"}, func(server string) (time.Duration, error) {
		return time.Hour, nil
	})
	if !ts.syncRoutine() {
		t.Fatal("sync should succeed")
	}
	diff := ts.Now().Since(TimeToTimeStamp(time.Now()))
	if diff < 3599 || diff > 3601 {
		t.Errorf("wanted offset about 3600s, got: %d", diff)
	}
}

func TestTimeSync_QueryError(t *testing.T) {
	ts := newTimeSync(nil, func(server string) (time.Duration, error) {
		return 0, errors.New("unreachable")
	})
	if ts.syncRoutine() {
		t.Errorf("sync should fail")
	}
	if ts.offset() != 0 {
		t.Errorf("offset should stay zero, got: %v", ts.offset())
	}
}

func TestStaticTime(t *testing.T) {
	st := NewStaticTime(1000)
	if st.Now() != 1000 {
		t.Errorf("wanted: 1000, got: %d", st.Now())
	}
	st.Set(1500)
	if st.Since(1000) != 500 {
		t.Errorf("wanted: 500, got: %d", st.Since(1000))
	}
	if !st.NowAfter(1499) || st.NowAfter(1500) {
		t.Errorf("NowAfter mismatch")
	}
}

func TestTimeStamp(t *testing.T) {
	ts := Int64ToTimeStamp(1500000000)
	if ts.Add(10).Unix() != 1500000010 {
		t.Errorf("wanted: 1500000010, got: %d", ts.Add(10).Unix())
	}
	if ts.String() != "2017-07-14T02:40:00Z" {
		t.Errorf("wanted: 2017-07-14T02:40:00Z, got: %v", ts.String())
	}
}
