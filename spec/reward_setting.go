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
package spec

import (
	"fmt"

	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/grid"
	"github.com/zintix-labs/quantro/sdk/place"
	"github.com/zintix-labs/quantro/sdk/qo"
)

// RewardSetting 獎勵掉落（放置引擎）設定。
//
// Fields:
//   - Kinds: 分類器名稱，依序嘗試（valley / junction / peak / corner）
//   - Every: 每幾個 tick 觸發一次獎勵；0 代表不觸發
//   - MinBlocks / MaxBlocks: 一次掉落的數量上下限
//   - Orientations: 每個平面可用的方向碼名稱；留空使用預設
type RewardSetting struct {
	KindsStr     []string               `yaml:"kinds"        json:"kinds"`
	Every        int                    `yaml:"every"        json:"every"`
	MinBlocks    int                    `yaml:"min_blocks"   json:"min_blocks"`
	MaxBlocks    int                    `yaml:"max_blocks"   json:"max_blocks"`
	Orientations [][]string             `yaml:"orientations" json:"orientations"`
	Kinds        []place.Kind           `yaml:"-"            json:"-"`
	Orient       [grid.Planes][]qo.Code `yaml:"-"            json:"-"`
	initFlag     bool
}

// Init 解析分類器與方向碼名稱
func (rs *RewardSetting) Init() error {
	if rs.initFlag {
		return nil
	}
	if rs.Every < 0 {
		return errs.NewFatal("reward every must not be negative")
	}
	if rs.MinBlocks < 0 || rs.MaxBlocks < rs.MinBlocks {
		return errs.NewFatal(fmt.Sprintf("invalid reward block range [%d,%d]", rs.MinBlocks, rs.MaxBlocks))
	}
	if rs.Every > 0 && len(rs.KindsStr) == 0 {
		return errs.NewFatal("reward enabled without kinds")
	}
	rs.Kinds = make([]place.Kind, 0, len(rs.KindsStr))
	for _, s := range rs.KindsStr {
		k, ok := place.ParseKind(s)
		if !ok {
			return errs.NewFatal(fmt.Sprintf("unknown reward kind %s", s))
		}
		rs.Kinds = append(rs.Kinds, k)
	}
	if len(rs.Orientations) > grid.Planes {
		return errs.NewFatal("too many orientation planes")
	}
	for qp, names := range rs.Orientations {
		for _, n := range names {
			c, ok := qo.ParseName(n)
			if !ok || c == qo.NO {
				return errs.NewFatal(fmt.Sprintf("unknown orientation %s", n))
			}
			rs.Orient[qp] = append(rs.Orient[qp], c)
		}
	}
	rs.initFlag = true
	return nil
}

// Enabled 是否會觸發獎勵
func (rs *RewardSetting) Enabled() bool { return rs.Every > 0 && rs.MaxBlocks > 0 }

// PlaceSettings 轉成放置引擎的設定
func (rs *RewardSetting) PlaceSettings(planesInteract bool) place.Settings {
	return place.Settings{
		MinBlocks:      rs.MinBlocks,
		MaxBlocks:      rs.MaxBlocks,
		PlanesInteract: planesInteract,
		Orientations:   rs.Orient,
	}
}
