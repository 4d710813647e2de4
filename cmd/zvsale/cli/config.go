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
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/zvchain/zvsale/common"
	"github.com/zvchain/zvsale/core"
	"github.com/zvchain/zvsale/storage/receipt"
	"github.com/zvchain/zvsale/storage/tasdb"
)

// config sections
const (
	saleSection  = "sale"
	chainSection = "chain"
	logSection   = "log"
	rpcSection   = "rpc"
	ntpSection   = "ntp"
)

type rpcConfig struct {
	host              string
	port              int
	cors              []string
	allowTimeOverride bool
}

type logConfig struct {
	dir   string
	level string
}

func parseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.ValidateAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", common.ErrInvalidAddress, s)
	}
	return common.StringToAddress(s), nil
}

func parseAmount(s string) (*big.Int, error) {
	if strings.TrimSpace(s) == "" {
		return new(big.Int), nil
	}
	v, err := common.ParseCoin(s)
	if err != nil {
		return nil, fmt.Errorf("%v: %q, correct example: 100RA,100kRA,1mRA,1ZVC", err, s)
	}
	return v, nil
}

// loadSaleConfig reads the [sale] section
func loadSaleConfig(cm common.ConfManager) (*core.SaleConfig, error) {
	sec := cm.GetSectionManager(saleSection)

	start, err := strconv.ParseInt(sec.GetString("start_time", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("start_time: %v", err)
	}
	stages, err := core.ParseStages(sec.GetString("stages", ""))
	if err != nil {
		return nil, err
	}
	breaks, err := core.ParseBreaks(sec.GetString("breaks", ""))
	if err != nil {
		return nil, err
	}
	cfg := &core.SaleConfig{
		StartTime:            start,
		Stages:               stages,
		Breaks:               breaks,
		ReferralOwnerOnly:    sec.GetBool("referral_owner_only", true),
		ReferralBonusPercent: uint64(sec.GetInt("referral_bonus_percent", core.DefaultReferralBonusPercent)),
	}
	amounts := []struct {
		key string
		dst **big.Int
	}{
		{"soft_cap", &cfg.SoftCap},
		{"hard_cap", &cfg.HardCap},
		{"min_contribution", &cfg.MinContribution},
		{"reserve_supply", &cfg.ReserveSupply},
	}
	for _, a := range amounts {
		v, err := parseAmount(sec.GetString(a.key, ""))
		if err != nil {
			return nil, fmt.Errorf("%v: %v", a.key, err)
		}
		*a.dst = v
	}
	if cfg.Wallet, err = parseAddress(sec.GetString("wallet", "")); err != nil {
		return nil, fmt.Errorf("wallet: %v", err)
	}
	if cfg.Owner, err = parseAddress(sec.GetString("owner", "")); err != nil {
		return nil, fmt.Errorf("owner: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadChainConfig(cm common.ConfManager) *core.ChainConfig {
	sec := cm.GetSectionManager(chainSection)
	return &core.ChainConfig{
		Database: sec.GetString("database", tasdb.DefaultFile),
		Receipts: sec.GetString("receipts", receipt.DefaultFile),
		CacheMB:  sec.GetInt("cache", 16),
	}
}

func loadLogConfig(cm common.ConfManager) *logConfig {
	sec := cm.GetSectionManager(logSection)
	return &logConfig{
		dir:   sec.GetString("dir", "logs"),
		level: sec.GetString("level", "info"),
	}
}

// loadRPCConfig reads the [rpc] section, cors "all" allows any origin
func loadRPCConfig(cm common.ConfManager) *rpcConfig {
	sec := cm.GetSectionManager(rpcSection)
	return &rpcConfig{
		host: sec.GetString("host", "127.0.0.1"),
		port: sec.GetInt("port", 8102),
		cors: parseCors(sec.GetString("cors", "")),

		allowTimeOverride: sec.GetBool("allow_time_override", false),
	}
}

func parseCors(s string) []string {
	switch s {
	case "":
		return []string{}
	case "all":
		return []string{"*"}
	default:
		return splitList(s)
	}
}

// loadNTPServers returns the servers of the [ntp] section, or nil if calibration is disabled
func loadNTPServers(cm common.ConfManager) []string {
	sec := cm.GetSectionManager(ntpSection)
	if !sec.GetBool("enable", false) {
		return nil
	}
	return splitList(sec.GetString("servers", "pool.ntp.org"))
}

func splitList(s string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
