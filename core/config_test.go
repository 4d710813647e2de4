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
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/zvchain/zvsale/common"
)

func TestParseStages(t *testing.T) {
	stages, err := ParseStages("1000:604800, 750:604800,500:3600")
	if err != nil {
		t.Fatal(err)
	}
	if len(stages) != 3 || stages[1].Rate != 750 || stages[2].Duration != 3600 {
		t.Errorf("unexpected stages %v", stages)
	}
	for _, bad := range []string{"1000", "x:10", "10:y", "1:2:3"} {
		if _, err := ParseStages(bad); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%q: wanted: %v, got: %v", bad, ErrInvalidArgument, err)
		}
	}
}

func TestParseBreaks(t *testing.T) {
	breaks, err := ParseBreaks("60, 120")
	if err != nil {
		t.Fatal(err)
	}
	if len(breaks) != 2 || breaks[0] != 60 || breaks[1] != 120 {
		t.Errorf("unexpected breaks %v", breaks)
	}
	if breaks, _ := ParseBreaks(""); len(breaks) != 0 {
		t.Errorf("wanted no breaks, got %v", breaks)
	}
	if _, err := ParseBreaks("-1"); err == nil {
		t.Errorf("negative break should fail")
	}
}

func TestSaleConfig_Validate(t *testing.T) {
	if err := newTestConfig().Validate(); err != nil {
		t.Fatal(err)
	}
	cases := map[string]func(cfg *SaleConfig){
		"no stages":      func(cfg *SaleConfig) { cfg.Stages = nil; cfg.Breaks = nil },
		"zero rate":      func(cfg *SaleConfig) { cfg.Stages[1].Rate = 0 },
		"breaks":         func(cfg *SaleConfig) { cfg.Breaks = cfg.Breaks[:1] },
		"soft over hard": func(cfg *SaleConfig) { cfg.SoftCap = ether(3000) },
		"no hard cap":    func(cfg *SaleConfig) { cfg.HardCap = nil },
		"zero wallet":    func(cfg *SaleConfig) { cfg.Wallet = common.Address{} },
		"store owner":    func(cfg *SaleConfig) { cfg.Owner = common.SaleStoreAddr },
		"bonus":          func(cfg *SaleConfig) { cfg.ReferralBonusPercent = 101 },
		"negative min":   func(cfg *SaleConfig) { cfg.MinContribution = big.NewInt(-1) },
		"zero duration":  func(cfg *SaleConfig) { cfg.Stages[0].Duration = 0 },
		"long stage":     func(cfg *SaleConfig) { cfg.Stages[2].Duration = MaxPeriod + 1 },
		"wrapping stage": func(cfg *SaleConfig) { cfg.Stages[0].Duration = math.MaxUint64 },
		"long break":     func(cfg *SaleConfig) { cfg.Breaks[1] = MaxPeriod + 1 },
		"negative start": func(cfg *SaleConfig) { cfg.StartTime = -1 },
		"late start":     func(cfg *SaleConfig) { cfg.StartTime = MaxTimestamp },
	}
	for name, mutate := range cases {
		cfg := newTestConfig()
		mutate(cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%v: wanted: %v, got: %v", name, ErrInvalidArgument, err)
		}
	}
}

func TestSaleConfig_SameAs(t *testing.T) {
	cfg := newTestConfig()
	enc, err := cfg.encode()
	if err != nil {
		t.Fatal(err)
	}
	if same, _ := newTestConfig().sameAs(enc); !same {
		t.Errorf("equal configs should match")
	}
	other := newTestConfig()
	other.Stages[2].Rate = 499
	if same, _ := other.sameAs(enc); same {
		t.Errorf("different configs should not match")
	}
}
