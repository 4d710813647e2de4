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
	"fmt"
	"os"
	"runtime/debug"
	gotime "time"

	"github.com/zvchain/zvsale/common"
	"github.com/zvchain/zvsale/core"
	"github.com/zvchain/zvsale/log"
	"github.com/zvchain/zvsale/middleware"
	"github.com/zvchain/zvsale/middleware/notify"
	"github.com/zvchain/zvsale/middleware/ticker"
	"github.com/zvchain/zvsale/middleware/time"
	"github.com/zvchain/zvsale/monitor"
	"github.com/zvchain/zvsale/storage/receipt"
	"github.com/zvchain/zvsale/storage/tasdb"
	"gopkg.in/alecthomas/kingpin.v2"
)

const shutdownTimeout = 5 * gotime.Second

type serveConfig struct {
	host          string
	port          int
	cors          string
	enableMonitor bool
}

// Zvsale is the command line application
type Zvsale struct {
	chain  *core.SaleChain
	server *SaleServer
	ticker *ticker.GlobalTicker
}

func NewZvsale() *Zvsale {
	return &Zvsale{}
}

func (z *Zvsale) runtimeInit() {
	debug.SetGCPercent(100)
	log.DefaultLogger.Info("setting gc 100%")
}

func (z *Zvsale) serve(cfg *serveConfig) error {
	cm := common.GlobalConf
	lc := loadLogConfig(cm)
	if err := log.Init(lc.dir, lc.level); err != nil {
		return err
	}
	z.runtimeInit()

	if err := middleware.InitMiddleware(loadNTPServers(cm)); err != nil {
		return err
	}
	saleCfg, err := loadSaleConfig(cm)
	if err != nil {
		return err
	}
	chain, err := core.OpenSaleChain(saleCfg, loadChainConfig(cm))
	if err != nil {
		return err
	}
	z.chain = chain
	z.ticker = ticker.NewGlobalTicker("zvsale")

	var metrics *monitor.MonitorService
	if cfg.enableMonitor {
		metrics = monitor.InitMonitorService(chain, notify.BUS, z.ticker)
	}

	rc := loadRPCConfig(cm)
	if cfg.host != "" {
		rc.host = cfg.host
	}
	if cfg.port != 0 {
		rc.port = cfg.port
	}
	if cfg.cors != "" {
		rc.cors = parseCors(cfg.cors)
	}
	z.server = NewSaleServer(chain, time.TSInstance, nil)
	if metrics != nil {
		z.server.metrics = metrics.Handler()
	}
	if rc.allowTimeOverride {
		log.RPCLogger.Warn("transaction requests may set their own time")
		z.server.AllowTimeOverride(true)
	}
	if err := z.server.Start(rc.host, rc.port, rc.cors); err != nil {
		return err
	}
	log.DefaultLogger.Infof("zvsale %v started, state root %v", common.SaleVersion, chain.StateRoot().Hex())
	fmt.Printf("zvsale serving on %v:%v\n", rc.host, rc.port)
	return nil
}

func (z *Zvsale) stop() {
	if z.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := z.server.Stop(ctx); err != nil {
			log.DefaultLogger.Errorf("stop rpc server error: %v", err)
		}
		cancel()
	}
	if monitor.Instance != nil {
		monitor.Instance.Stop()
	}
	if z.ticker != nil {
		z.ticker.Stop()
	}
	if z.chain != nil {
		z.chain.Close()
	}
}

// Run parses the command line and runs the command
func (z *Zvsale) Run() {
	app := kingpin.New("zvsale", "A staged token sale ledger.")
	app.HelpFlag.Short('h')
	configFile := app.Flag("config", "Config file").Default("zvsale.ini").String()

	// Serve
	serveCmd := app.Command("serve", "open the sale and serve the http api")
	serveHost := serveCmd.Flag("host", "rpc host, overrides the config").Short('o').String()
	servePort := serveCmd.Flag("port", "rpc port, overrides the config").Short('p').Int()
	serveCors := serveCmd.Flag("cors", "set cors host, set 'all' allow any host").Default("").String()
	enableMonitor := serveCmd.Flag("monitor", "serve the prometheus metrics on /metrics").Default("false").Bool()

	// Console
	consoleCmd := app.Command("console", "start zvsale console")
	showRequest := consoleCmd.Flag("show", "show the request json").Short('v').Bool()
	remoteURL := consoleCmd.Flag("url", "the server url to connect").Short('u').Default("127.0.0.1:8102").String()

	// Query
	queryCmd := app.Command("query", "query a running server")
	queryURL := queryCmd.Flag("url", "the server url to connect").Short('u').Default("127.0.0.1:8102").String()
	queryWhat := queryCmd.Arg("what", "balance, funds, contribution, referral, vesting, timelock, stage, sale, ledger, root, receipts, receipt").Required().String()
	queryArg := queryCmd.Arg("arg", "the address, or the hash of receipt").String()

	// Send
	sendTxCmd := app.Command("send", "send one operation to a running server")
	sendURL := sendTxCmd.Flag("url", "the server url to connect").Short('u').Default("127.0.0.1:8102").String()
	req := &TxRequest{}
	var participants, referrers string
	sendTxCmd.Flag("type", "the operation").Required().StringVar(&req.Type)
	sendTxCmd.Flag("source", "the caller address").Required().StringVar(&req.Source)
	sendTxCmd.Flag("target", "beneficiary or receiver address").StringVar(&req.Target)
	sendTxCmd.Flag("value", "amount, correct example: 100RA,100kRA,1mRA,1ZVC").StringVar(&req.Value)
	sendTxCmd.Flag("now", "evaluation time, only accepted by servers with allow_time_override").Int64Var(&req.Now)
	sendTxCmd.Flag("participant", "referral participant").StringVar(&req.Participant)
	sendTxCmd.Flag("referrer", "referrer of the participant").StringVar(&req.Referrer)
	sendTxCmd.Flag("participants", "comma separated participants of a referral batch").StringVar(&participants)
	sendTxCmd.Flag("referrers", "comma separated referrers of a referral batch").StringVar(&referrers)
	sendTxCmd.Flag("start", "vesting start time").Int64Var(&req.Start)
	sendTxCmd.Flag("duration", "vesting duration in seconds").Uint64Var(&req.Duration)
	sendTxCmd.Flag("release", "timelock release time").Int64Var(&req.ReleaseTime)

	// Version
	versionCmd := app.Command("version", "show zvsale version")

	clearCmd := app.Command("clear", "Clear the data of the sale")

	command, err := app.Parse(os.Args[1:])
	if err != nil {
		kingpin.Fatalf("%s, try --help", err)
	}

	switch command {
	case versionCmd.FullCommand():
		fmt.Println("zvsale Version:", common.SaleVersion)
	case consoleCmd.FullCommand():
		if err := ConsoleInit(*remoteURL, *showRequest); err != nil {
			fmt.Println(err.Error())
		}
	case queryCmd.FullCommand():
		printResult(Query(NewRemoteClient(*queryURL, false), *queryWhat, *queryArg))
	case sendTxCmd.FullCommand():
		req.Participants = splitList(participants)
		req.Referrers = splitList(referrers)
		printResult(NewRemoteClient(*sendURL, false).Send(req))
	case serveCmd.FullCommand():
		if err := common.InitConf(*configFile); err != nil {
			kingpin.Fatalf("load config %v: %v", *configFile, err)
		}
		cfg := &serveConfig{
			host:          *serveHost,
			port:          *servePort,
			cors:          *serveCors,
			enableMonitor: *enableMonitor,
		}
		if err := z.serve(cfg); err != nil {
			output("initialize fail:", err)
			log.DefaultLogger.Errorf("initialize fail:%v", err)
			z.stop()
			os.Exit(-1)
		}
		<-Signals()
		fmt.Println("exiting...")
		z.stop()
	case clearCmd.FullCommand():
		if err := common.InitConf(*configFile); err != nil {
			kingpin.Fatalf("load config %v: %v", *configFile, err)
		}
		if err := ClearSale(loadChainConfig(common.GlobalConf)); err != nil {
			fmt.Println(err.Error())
		} else {
			fmt.Println("clear sale data successfully")
		}
	}
}

// Query runs one named query on the client
func Query(rc *RemoteClient, what string, arg string) *Result {
	byAddr := map[string]func(string) *Result{
		"balance":      rc.Balance,
		"funds":        rc.Funds,
		"contribution": rc.Contribution,
		"referral":     rc.Referral,
		"vesting":      rc.Vesting,
		"timelock":     rc.Timelock,
		"receipt":      rc.Receipt,
	}
	if f, ok := byAddr[what]; ok {
		if arg == "" {
			return failResult(fmt.Sprintf("%v needs an argument", what))
		}
		return f(arg)
	}
	switch what {
	case "stage":
		return rc.Stage()
	case "sale":
		return rc.Sale()
	case "ledger":
		return rc.Ledger()
	case "root":
		return rc.Root()
	case "receipts":
		return rc.Receipts(1, defaultReceiptLimit)
	}
	return failResult(fmt.Sprintf("unknown query %v", what))
}

func printResult(ret *Result) {
	bs, err := json.MarshalIndent(ret, "", "\t")
	if err != nil {
		output(err.Error())
		return
	}
	output(string(bs))
	if ret.Status == StatusFailed {
		os.Exit(1)
	}
}

// ClearSale deletes the local sale state and receipts
func ClearSale(cc *core.ChainConfig) error {
	ds, err := tasdb.NewDataSource(cc.Database, nil)
	if err != nil {
		return err
	}
	if err := ds.Clear(); err != nil {
		ds.Close()
		return err
	}
	ds.Close()

	store, err := receipt.NewStore(cc.Receipts)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Clear()
}
