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

package server

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/server/api"
	"github.com/zintix-labs/quantro/server/app"
	"github.com/zintix-labs/quantro/server/netsvr"
	"github.com/zintix-labs/quantro/server/svrcfg"
)

// Run 以 ChiAdapter 監聽 sCfg.Addr，阻塞到收到訊號或 server 停止。
func Run(sCfg *svrcfg.SvrCfg) {
	if sCfg == nil {
		fmt.Fprintln(os.Stderr, errs.NewFatal("server config is required"))
		return
	}
	RunWithSvr(sCfg, netsvr.NewChiServer(sCfg.Addr))
}

// RunWithSvr 與 Run 相同，但使用呼叫端提供的 NetSvr（自訂位址、timeout 或其他框架）。
//
// 流程：驗證 sCfg -> 註冊 middleware 與 /v1 路由 -> app 依序啟動 server，
// 關機時反向關閉（先停 server，再關閉各模式的 BoardPool）。
// 設定驗證失敗時 logger 可能不可用，錯誤改寫到 stderr。
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) {
	if err := sCfg.Valid(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	if err := checkSvr(svr); err != nil {
		sCfg.Log.Error("server not ready", slog.Any("err", err))
		return
	}
	closeRoutes, err := api.RegisterRoutes(svr, sCfg)
	if err != nil {
		sCfg.Log.Error("register routes failed", slog.Any("err", err))
		return
	}

	a := app.NewWith(app.OnClose(closeRoutes), svr).SetLogger(sCfg.Log)
	sCfg.Log.Info("[quantro] listening",
		slog.String("addr", svr.Address()),
		slog.Int("pool", sCfg.BoardPoolSz),
		slog.Int("max_sim_ticks", sCfg.MaxSimTicks),
	)
	if err := a.Run(); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
	}
}

func checkSvr(svr netsvr.NetSvr) error {
	if svr == nil {
		return errs.NewFatal("svr is required")
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		return errs.NewFatal("chi server is not ready")
	}
	return nil
}
