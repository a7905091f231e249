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

// Package demo 內建的 standard / retro 兩個模式，給 cmd 與測試直接使用。
package demo

import (
	"github.com/zintix-labs/quantro"
	"github.com/zintix-labs/quantro/catalog"
	"github.com/zintix-labs/quantro/demo/demo_configs"
	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/core"
	"github.com/zintix-labs/quantro/sdk/policy"
	"github.com/zintix-labs/quantro/server/logger"
	"github.com/zintix-labs/quantro/server/svrcfg"
)

const (
	ModeStandard = 1
	ModeRetro    = 2
)

func New() (*catalog.Catalog, error) {
	return catalog.New(demo_configs.FS)
}

func NewServerConfig() (*svrcfg.SvrCfg, error) {
	q, err := NewQuantro()
	if err != nil {
		return nil, errs.NewFatal("new quantro failed:" + err.Error())
	}
	log := logger.NewDefaultAsyncLogger(logger.ModeDev)
	q.SetLogger(log)
	return &svrcfg.SvrCfg{
		Log:         log,
		BoardPoolSz: 1,
		Quantro:     q,
	}, nil
}

func NewQuantro() (*quantro.Quantro, error) {
	return quantro.NewAuto(
		core.Default(),
		quantro.Configs(demo_configs.FS),
		quantro.Policies(policy.DefaultRegistry()),
	)
}
