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
)

// BoardSetting 描述盤面與 lock 引擎的設定。
//
// Fields:
//   - Columns: 盤面欄數
//   - Rows: 盤面列數（row 0 在底部）
//   - FloorSupport: 地板是否支撐方塊；留空代表 true
//   - FragmentTypes: 拆解後的 chunk 一律標成碎塊型別
//   - ChunkHint: 單次 unlock 預期的 chunk 數，只影響預先配置
type BoardSetting struct {
	Columns       int   `yaml:"columns"        json:"columns"`
	Rows          int   `yaml:"rows"           json:"rows"`
	FloorSupport  *bool `yaml:"floor_support"  json:"floor_support"`
	FragmentTypes bool  `yaml:"fragment_types" json:"fragment_types"`
	ChunkHint     int   `yaml:"chunk_hint"     json:"chunk_hint"`
	BoardSize     int   `yaml:"-"              json:"-"`
	initFlag      bool
}

// Init 檢查不合法的設定
func (bs *BoardSetting) Init() error {
	// 檢查初始化旗標
	if bs.initFlag {
		return nil
	}
	if bs.Columns <= 0 || bs.Rows <= 0 {
		return errs.NewFatal(fmt.Sprintf("invalid board dimensions: cols=%d rows=%d", bs.Columns, bs.Rows))
	}
	if bs.ChunkHint < 0 {
		return errs.NewFatal("negative chunk_hint")
	}
	bs.BoardSize = bs.Rows * bs.Columns
	bs.initFlag = true
	return nil
}

// RestOnFloor 地板是否作為接地種子
func (bs *BoardSetting) RestOnFloor() bool {
	return bs.FloorSupport == nil || *bs.FloorSupport
}
