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
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/zvchain/zvsale/common"
)

type baseCmd struct {
	name string
	help string
	fs   *flag.FlagSet
}

func genBaseCmd(n string, h string) *baseCmd {
	return &baseCmd{
		name: n,
		help: h,
		fs:   flag.NewFlagSet(n, flag.ContinueOnError),
	}
}

func output(msg ...interface{}) {
	fmt.Println(msg...)
}

func checkAddress(addr string) bool {
	if strings.TrimSpace(addr) == "" {
		output("please input the address")
		return false
	}
	if !common.ValidateAddress(addr) {
		output("Wrong address format")
		return false
	}
	return true
}

// addrCmd is shared by the queries on one account, the selected account is the default
type addrCmd struct {
	baseCmd
	addr string
}

func genAddrCmd(n string, h string) *addrCmd {
	c := &addrCmd{
		baseCmd: *genBaseCmd(n, h),
	}
	c.fs.StringVar(&c.addr, "addr", "", "the account address, default is the selected account")
	return c
}

func (c *addrCmd) parse(args []string, current string) bool {
	if err := c.fs.Parse(args); err != nil {
		output(err.Error())
		return false
	}
	if c.addr == "" {
		c.addr = current
	}
	return checkAddress(c.addr)
}

type connectCmd struct {
	baseCmd
	url string
}

func genConnectCmd() *connectCmd {
	c := &connectCmd{
		baseCmd: *genBaseCmd("connect", "connect to one sale server"),
	}
	c.fs.StringVar(&c.url, "url", "", "the server endpoint, host:port")
	return c
}

func (c *connectCmd) parse(args []string) bool {
	if err := c.fs.Parse(args); err != nil {
		output(err.Error())
		return false
	}
	if strings.TrimSpace(c.url) == "" {
		output("please input the url")
		c.fs.PrintDefaults()
		return false
	}
	return true
}

type receiptsCmd struct {
	baseCmd
	from  uint64
	limit int
}

func genReceiptsCmd() *receiptsCmd {
	c := &receiptsCmd{
		baseCmd: *genBaseCmd("receipts", "list receipts"),
	}
	c.fs.Uint64Var(&c.from, "from", 1, "the first receipt index")
	c.fs.IntVar(&c.limit, "limit", defaultReceiptLimit, "max number of receipts")
	return c
}

func (c *receiptsCmd) parse(args []string) bool {
	if err := c.fs.Parse(args); err != nil {
		output(err.Error())
		return false
	}
	if c.limit <= 0 {
		output("limit should be positive")
		return false
	}
	return true
}

type receiptCmd struct {
	baseCmd
	hash string
}

func genReceiptCmd() *receiptCmd {
	c := &receiptCmd{
		baseCmd: *genBaseCmd("receipt", "get the receipt of a transaction"),
	}
	c.fs.StringVar(&c.hash, "hash", "", "the hex transaction hash")
	return c
}

func (c *receiptCmd) parse(args []string) bool {
	if err := c.fs.Parse(args); err != nil {
		output(err.Error())
		return false
	}
	if !common.IsHex(c.hash) {
		output("Wrong hash format")
		return false
	}
	return true
}

type sendCmd struct {
	baseCmd
	txType       string
	target       string
	value        string
	participant  string
	referrer     string
	participants string
	referrers    string
	start        int64
	duration     uint64
	releaseTime  int64
	now          int64
}

func genSendCmd() *sendCmd {
	c := &sendCmd{
		baseCmd: *genBaseCmd("send", "send an operation from the selected account"),
	}
	c.fs.StringVar(&c.txType, "type", "", "operation: contribute, advanceStage, setReferral, setReferralBatch, finalize, claimRefund, grantVesting, releaseVested, grantTimelock, releaseTimelocked, transfer, mintReserve")
	c.fs.StringVar(&c.target, "target", "", "beneficiary or receiver address")
	c.fs.StringVar(&c.value, "value", "", "amount, correct example: 100RA,100kRA,1mRA,1ZVC")
	c.fs.StringVar(&c.participant, "participant", "", "referral participant")
	c.fs.StringVar(&c.referrer, "referrer", "", "referrer of the participant")
	c.fs.StringVar(&c.participants, "participants", "", "comma separated participants of a referral batch")
	c.fs.StringVar(&c.referrers, "referrers", "", "comma separated referrers of a referral batch")
	c.fs.Int64Var(&c.start, "start", 0, "vesting start time")
	c.fs.Uint64Var(&c.duration, "duration", 0, "vesting duration in seconds")
	c.fs.Int64Var(&c.releaseTime, "release", 0, "timelock release time")
	c.fs.Int64Var(&c.now, "now", 0, "evaluation time, only accepted by servers with allow_time_override")
	return c
}

func (c *sendCmd) parse(args []string) bool {
	if err := c.fs.Parse(args); err != nil {
		output(err.Error())
		return false
	}
	if c.txType == "" {
		output("please input the type")
		c.fs.PrintDefaults()
		return false
	}
	if c.target != "" && !checkAddress(c.target) {
		return false
	}
	return true
}

func (c *sendCmd) toTxRequest(source string) *TxRequest {
	return &TxRequest{
		Type:         c.txType,
		Source:       source,
		Target:       c.target,
		Value:        c.value,
		Now:          c.now,
		Participant:  c.participant,
		Referrer:     c.referrer,
		Participants: splitList(c.participants),
		Referrers:    splitList(c.referrers),
		Start:        c.start,
		Duration:     c.duration,
		ReleaseTime:  c.releaseTime,
	}
}

var cmdHelp = genBaseCmd("help", "show help info")
var cmdExit = genBaseCmd("exit", "quit the console")
var cmdUse = genBaseCmd("use", "select the account used by send and the account queries, use <address>")
var cmdConnect = genConnectCmd()
var cmdBalance = genAddrCmd("balance", "get the token balance")
var cmdFunds = genAddrCmd("funds", "get the fund balance")
var cmdContribution = genAddrCmd("contribution", "get the recorded contribution")
var cmdReferral = genAddrCmd("referral", "get the referrer")
var cmdVesting = genAddrCmd("vesting", "get the vesting schedule")
var cmdTimelock = genAddrCmd("timelock", "get the timelock entry")
var cmdStage = genBaseCmd("stage", "get the current stage")
var cmdSale = genBaseCmd("sale", "get the sale state")
var cmdLedger = genBaseCmd("ledger", "get the token ledger")
var cmdRoot = genBaseCmd("root", "get the state root")
var cmdReceipts = genReceiptsCmd()
var cmdReceipt = genReceiptCmd()
var cmdSend = genSendCmd()

var list = []*baseCmd{
	cmdHelp, &cmdConnect.baseCmd, cmdUse, &cmdBalance.baseCmd, &cmdFunds.baseCmd, &cmdContribution.baseCmd,
	&cmdReferral.baseCmd, &cmdVesting.baseCmd, &cmdTimelock.baseCmd, cmdStage, cmdSale, cmdLedger, cmdRoot,
	&cmdReceipts.baseCmd, &cmdReceipt.baseCmd, &cmdSend.baseCmd, cmdExit,
}

func Usage() {
	output("Usage:")
	for _, cmd := range list {
		output(" " + cmd.name + ":\t" + cmd.help)
		cmd.fs.PrintDefaults()
		fmt.Print("\n")
	}
}

func handleCmd(handle func() *Result) {
	ret := handle()
	if ret.Status == StatusFailed {
		output(ret.Message)
		return
	}
	bs, err := json.MarshalIndent(ret, "", "\t")
	if err != nil {
		output(err.Error())
		return
	}
	output(string(bs))
}

type console struct {
	client  *RemoteClient
	account string
}

// ConsoleInit runs the interactive console against the server at url
func ConsoleInit(url string, show bool) error {
	c := &console{client: NewRemoteClient(url, show)}
	c.loop()
	return nil
}

// execute runs one input line and reports whether the console should quit
func (c *console) execute(input string) bool {
	inputArr, err := parseCommandLine(input)
	if err != nil {
		output(err.Error())
		return false
	}
	if len(inputArr) == 0 {
		return false
	}
	cmdStr := inputArr[0]
	args := inputArr[1:]

	switch cmdStr {
	case cmdExit.name, "quit":
		output("thank you, bye")
		return true
	case cmdHelp.name:
		Usage()
	case cmdConnect.name:
		cmd := genConnectCmd()
		if cmd.parse(args) {
			c.client.Connect(cmd.url)
		}
	case cmdUse.name:
		if len(args) != 1 || !checkAddress(args[0]) {
			return false
		}
		c.account = args[0]
		output("use account", c.account)
	case cmdBalance.name, cmdFunds.name, cmdContribution.name, cmdReferral.name, cmdVesting.name, cmdTimelock.name:
		cmd := genAddrCmd(cmdStr, "")
		if !cmd.parse(args, c.account) {
			return false
		}
		queries := map[string]func(string) *Result{
			cmdBalance.name:      c.client.Balance,
			cmdFunds.name:        c.client.Funds,
			cmdContribution.name: c.client.Contribution,
			cmdReferral.name:     c.client.Referral,
			cmdVesting.name:      c.client.Vesting,
			cmdTimelock.name:     c.client.Timelock,
		}
		handleCmd(func() *Result {
			return queries[cmdStr](cmd.addr)
		})
	case cmdStage.name:
		handleCmd(c.client.Stage)
	case cmdSale.name:
		handleCmd(c.client.Sale)
	case cmdLedger.name:
		handleCmd(c.client.Ledger)
	case cmdRoot.name:
		handleCmd(c.client.Root)
	case cmdReceipts.name:
		cmd := genReceiptsCmd()
		if cmd.parse(args) {
			handleCmd(func() *Result {
				return c.client.Receipts(cmd.from, cmd.limit)
			})
		}
	case cmdReceipt.name:
		cmd := genReceiptCmd()
		if cmd.parse(args) {
			handleCmd(func() *Result {
				return c.client.Receipt(cmd.hash)
			})
		}
	case cmdSend.name:
		if c.account == "" {
			output(ErrNoAccount.Error())
			return false
		}
		cmd := genSendCmd()
		if cmd.parse(args) {
			handleCmd(func() *Result {
				return c.client.Send(cmd.toTxRequest(c.account))
			})
		}
	default:
		fmt.Printf("not supported command %v\n", cmdStr)
		Usage()
	}
	return false
}

func (c *console) prompt() string {
	ep := c.client.Endpoint()
	if ep == "" {
		ep = "not connected"
	}
	if c.account != "" {
		return fmt.Sprintf("zvsale:%v %v > ", ep, common.ShortHex(c.account))
	}
	return fmt.Sprintf("zvsale:%v > ", ep)
}

func (c *console) loop() {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	items := make([]string, len(list))
	for idx, cmd := range list {
		items[idx] = cmd.name
	}
	line.SetCompleter(func(line string) (ret []string) {
		for _, n := range items {
			if strings.HasPrefix(n, strings.ToLower(line)) {
				ret = append(ret, n)
			}
		}
		return
	})

	for {
		input, err := line.Prompt(c.prompt())
		if err != nil {
			if err == liner.ErrPromptAborted {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			return
		}
		line.AppendHistory(input)
		if c.execute(input) {
			return
		}
	}
}

func parseCommandLine(command string) ([]string, error) {
	var args []string
	state := "start"
	current := ""
	quote := "\""
	escapeNext := false
	for i := 0; i < len(command); i++ {
		c := command[i]

		if state == "quotes" {
			if string(c) != quote {
				current += string(c)
			} else {
				args = append(args, current)
				current = ""
				state = "start"
			}
			continue
		}

		if escapeNext {
			current += string(c)
			escapeNext = false
			continue
		}

		if c == '\\' {
			escapeNext = true
			continue
		}

		if c == '"' || c == '\'' {
			state = "quotes"
			quote = string(c)
			continue
		}

		if state == "arg" {
			if c == ' ' || c == '\t' {
				args = append(args, current)
				current = ""
				state = "start"
			} else {
				current += string(c)
			}
			continue
		}

		if c != ' ' && c != '\t' {
			state = "arg"
			current += string(c)
		}
	}

	if state == "quotes" {
		return []string{}, fmt.Errorf("unclosed quote in command line: %s", command)
	}

	if current != "" {
		args = append(args, current)
	}

	return args, nil
}
