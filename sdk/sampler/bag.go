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
package sampler

import (
	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/core"
	"github.com/zintix-labs/quantro/sdk/ptype"
)

// Bag 依權重抽 piece type
type Bag struct {
	types []int
	table *AliasTable
}

// NewBag types 與 weights 一一對應；type 必須是合法的 piece type
func NewBag(types []int, weights []int) (*Bag, error) {
	if len(types) != len(weights) {
		return nil, errs.Warnf("piece bag: %d types, %d weights", len(types), len(weights))
	}
	if len(types) == 0 {
		return nil, errs.NewWarn("piece bag: empty")
	}
	for _, t := range types {
		if !ptype.Valid(t) {
			return nil, errs.Warnf("piece bag: invalid piece type %d", t)
		}
	}
	at, err := BuildAliasTable(weights)
	if err != nil {
		return nil, errs.Wrap(err, "piece bag")
	}
	return &Bag{types: append([]int(nil), types...), table: at}, nil
}

// Draw 抽一個 piece type
func (b *Bag) Draw(c *core.Core) int {
	return b.types[b.table.Pick(c)]
}

func (b *Bag) Types() []int { return b.types }
