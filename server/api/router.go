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

package api

import (
	"log/slog"

	v1 "github.com/zintix-labs/quantro/server/api/v1"
	"github.com/zintix-labs/quantro/server/netsvr"
	"github.com/zintix-labs/quantro/server/netsvr/middleware"
	"github.com/zintix-labs/quantro/server/svrcfg"
)

// RegisterRoutes 註冊；回傳的 close 用來在關機時關閉各模式的 BoardPool
func RegisterRoutes(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) (close func(), err error) {
	registerMiddleware(svr, sCfg.Log) // 1. 註冊 middleware
	return registerV1API(svr, sCfg)   // 2. 註冊 v1 api
}

// 註冊 middleware
func registerMiddleware(svr netsvr.NetSvr, log *slog.Logger) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover(log))
	svr.Use(middleware.Compression)
}

// 註冊 v1 api
func registerV1API(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) (func(), error) {
	t, err := v1.NewTickHandler(sCfg)
	if err != nil {
		return nil, err
	}
	s, err := v1.NewSimHandler(sCfg.Quantro, sCfg.MaxSimTicks)
	if err != nil {
		t.Close()
		return nil, err
	}
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Get("/modes", s.Modes)
		vOne.Get("/tick", t.Tick)
		vOne.Get("/candidates", t.Candidates)
		vOne.Get("/sim", s.Sim)
		vOne.Get("/replay", s.Replay)
		vOne.Get("/decode", v1.Decode)
		vOne.Get("/metrics", t.Metrics)

		vOne.Post("/tick", t.Tick)
		vOne.Post("/sim", s.Sim)
		vOne.Post("/simbycfg", s.SetByJson)
		vOne.Post("/replay", s.Replay)
		vOne.Post("/decode", v1.Decode)
		vOne.Post("/stat", v1.Stat)
	})
	return t.Close, nil
}
