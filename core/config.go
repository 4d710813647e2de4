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
	"bytes"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack"
	"github.com/zvchain/zvsale/common"
	"github.com/zvchain/zvsale/middleware/types"
)

const DefaultReferralBonusPercent = 10

// Bounds on configured times, keeping every sum of them inside int64
const (
	// MaxTimestamp is the latest accepted start, release or end time (about year 36800)
	MaxTimestamp = int64(1) << 40

	// MaxPeriod is the longest accepted stage, break or vesting duration (100 years)
	MaxPeriod = uint64(100 * 365 * 86400)
)

// checkTimestamp accepts a time in [0, MaxTimestamp]
func checkTimestamp(name string, ts int64) error {
	if ts < 0 || ts > MaxTimestamp {
		return fmt.Errorf("%w: %v %d out of [0, %d]", ErrInvalidArgument, name, ts, MaxTimestamp)
	}
	return nil
}

// checkPeriod accepts a duration in [1, MaxPeriod]
func checkPeriod(name string, d uint64) error {
	if d == 0 || d > MaxPeriod {
		return fmt.Errorf("%w: %v %d out of [1, %d]", ErrInvalidArgument, name, d, MaxPeriod)
	}
	return nil
}

// StageConfig is one pricing stage of the sale
type StageConfig struct {
	Rate     uint64 `msgpack:"r" json:"rate"`     // tokens per unit of contributed value
	Duration uint64 `msgpack:"d" json:"duration"` // in seconds
}

// SaleConfig is supplied once at construction and never changes afterwards
type SaleConfig struct {
	StartTime       int64
	Stages          []StageConfig
	Breaks          []uint64 // gaps between consecutive stages, in seconds
	SoftCap         *big.Int
	HardCap         *big.Int
	MinContribution *big.Int
	Wallet          common.Address
	Owner           common.Address

	// ReserveSupply is minted into the reserved pool at genesis
	ReserveSupply *big.Int

	ReferralOwnerOnly    bool
	ReferralBonusPercent uint64
}

// Validate checks the config invariants
func (cfg *SaleConfig) Validate() error {
	if len(cfg.Stages) == 0 {
		return fmt.Errorf("%w: no stages", ErrInvalidArgument)
	}
	if len(cfg.Breaks) != len(cfg.Stages)-1 {
		return fmt.Errorf("%w: %d breaks for %d stages", ErrInvalidArgument, len(cfg.Breaks), len(cfg.Stages))
	}
	if err := checkTimestamp("start time", cfg.StartTime); err != nil {
		return err
	}
	end := cfg.StartTime
	for i, s := range cfg.Stages {
		if s.Rate == 0 {
			return fmt.Errorf("%w: stage %d has zero rate", ErrInvalidArgument, i)
		}
		if err := checkPeriod(fmt.Sprintf("stage %d duration", i), s.Duration); err != nil {
			return err
		}
		end += int64(s.Duration)
		if i < len(cfg.Breaks) {
			if cfg.Breaks[i] > MaxPeriod {
				return fmt.Errorf("%w: break %d of %d longer than %d", ErrInvalidArgument, i, cfg.Breaks[i], MaxPeriod)
			}
			end += int64(cfg.Breaks[i])
		}
		if end > MaxTimestamp {
			return fmt.Errorf("%w: sale ends after %d", ErrInvalidArgument, MaxTimestamp)
		}
	}
	if cfg.HardCap == nil || cfg.HardCap.Sign() <= 0 {
		return fmt.Errorf("%w: hard cap must be positive", ErrInvalidArgument)
	}
	if cfg.SoftCap == nil || cfg.SoftCap.Sign() < 0 || cfg.SoftCap.Cmp(cfg.HardCap) > 0 {
		return fmt.Errorf("%w: soft cap must be within [0, hard cap]", ErrInvalidArgument)
	}
	if cfg.MinContribution != nil && cfg.MinContribution.Sign() < 0 {
		return fmt.Errorf("%w: negative minimum contribution", ErrInvalidArgument)
	}
	if cfg.ReserveSupply != nil && cfg.ReserveSupply.Sign() < 0 {
		return fmt.Errorf("%w: negative reserve supply", ErrInvalidArgument)
	}
	for name, addr := range map[string]common.Address{"wallet": cfg.Wallet, "owner": cfg.Owner} {
		if addr.IsZero() || common.IsStoreAddress(addr) {
			return fmt.Errorf("%w: %v address %v", ErrInvalidArgument, name, addr)
		}
	}
	if cfg.ReferralBonusPercent > 100 {
		return fmt.Errorf("%w: referral bonus %d%%", ErrInvalidArgument, cfg.ReferralBonusPercent)
	}
	return nil
}

// EndTime is the start time plus every stage duration and every break
func (cfg *SaleConfig) EndTime() int64 {
	end := cfg.StartTime
	for _, s := range cfg.Stages {
		end += int64(s.Duration)
	}
	for _, b := range cfg.Breaks {
		end += int64(b)
	}
	return end
}

func (cfg *SaleConfig) minContribution() *big.Int {
	if cfg.MinContribution == nil {
		return common.Big0
	}
	return cfg.MinContribution
}

func (cfg *SaleConfig) reserveSupply() *big.Int {
	if cfg.ReserveSupply == nil {
		return common.Big0
	}
	return cfg.ReserveSupply
}

type configRecord struct {
	StartTime            int64          `msgpack:"st"`
	Stages               []StageConfig  `msgpack:"sg"`
	Breaks               []uint64       `msgpack:"br"`
	SoftCap              *types.BigInt  `msgpack:"sc"`
	HardCap              *types.BigInt  `msgpack:"hc"`
	MinContribution      *types.BigInt  `msgpack:"min"`
	Wallet               common.Address `msgpack:"w"`
	Owner                common.Address `msgpack:"o"`
	ReserveSupply        *types.BigInt  `msgpack:"rs"`
	ReferralOwnerOnly    bool           `msgpack:"roo"`
	ReferralBonusPercent uint64         `msgpack:"rbp"`
}

func (cfg *SaleConfig) encode() ([]byte, error) {
	breaks := cfg.Breaks
	if breaks == nil {
		breaks = []uint64{}
	}
	return msgpack.Marshal(&configRecord{
		StartTime:            cfg.StartTime,
		Stages:               cfg.Stages,
		Breaks:               breaks,
		SoftCap:              types.BigIntFrom(cfg.SoftCap),
		HardCap:              types.BigIntFrom(cfg.HardCap),
		MinContribution:      types.BigIntFrom(cfg.MinContribution),
		Wallet:               cfg.Wallet,
		Owner:                cfg.Owner,
		ReserveSupply:        types.BigIntFrom(cfg.ReserveSupply),
		ReferralOwnerOnly:    cfg.ReferralOwnerOnly,
		ReferralBonusPercent: cfg.ReferralBonusPercent,
	})
}

// sameAs reports whether the stored genesis record describes this config
func (cfg *SaleConfig) sameAs(stored []byte) (bool, error) {
	enc, err := cfg.encode()
	if err != nil {
		return false, err
	}
	return bytes.Equal(enc, stored), nil
}

// ParseStages parses "rate:duration,rate:duration,..."
func ParseStages(s string) ([]StageConfig, error) {
	stages := make([]StageConfig, 0)
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.Split(item, ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: bad stage %q", ErrInvalidArgument, item)
		}
		rate, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad stage rate %q", ErrInvalidArgument, item)
		}
		dur, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad stage duration %q", ErrInvalidArgument, item)
		}
		stages = append(stages, StageConfig{Rate: rate, Duration: dur})
	}
	return stages, nil
}

// ParseBreaks parses a comma separated list of break durations in seconds
func ParseBreaks(s string) ([]uint64, error) {
	breaks := make([]uint64, 0)
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		b, err := strconv.ParseUint(item, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad break %q", ErrInvalidArgument, item)
		}
		breaks = append(breaks, b)
	}
	return breaks, nil
}
