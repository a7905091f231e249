// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/zintix-labs/quantro/demo"
	"github.com/zintix-labs/quantro/server"
	"github.com/zintix-labs/quantro/server/logger"
	"github.com/zintix-labs/quantro/server/svrcfg"
)

// 內建 demo 模式的實驗用 server。
// 正式部署請在自己的專案以 quantro.NewAuto 組裝設定檔，再交給 server.Run。
func main() {
	sCfg, err := loadConfigFromFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	server.Run(sCfg)
}

type config struct {
	LogMode     string
	Addr        string
	BoardPoolSz int
	MaxSimTicks int
}

func loadConfigFromFlags() (*svrcfg.SvrCfg, error) {
	cfg := new(config)
	flag.StringVar(&cfg.LogMode, "log-mode", "dev", "log mode: dev|prod|silence|trace")
	flag.StringVar(&cfg.Addr, "addr", svrcfg.DefaultAddr, "listen address")
	flag.IntVar(&cfg.BoardPoolSz, "pool", 4, "number of pooled boards per mode")
	flag.IntVar(&cfg.MaxSimTicks, "max-sim", 0, "max ticks*workers per /v1/sim request (0: default)")
	flag.Parse()

	lm, err := logger.ParseLogMode(cfg.LogMode)
	if err != nil {
		return nil, err
	}
	sCfg, err := demo.NewServerConfig()
	if err != nil {
		return nil, err
	}
	log, _ := logger.NewAsync(4096, lm)
	sCfg.Log = log
	sCfg.Quantro.SetLogger(log)
	sCfg.Addr = cfg.Addr
	sCfg.BoardPoolSz = cfg.BoardPoolSz
	sCfg.MaxSimTicks = cfg.MaxSimTicks
	return sCfg, nil
}
