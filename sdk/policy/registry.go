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

package policy

import (
	"fmt"
	"sort"

	"github.com/zintix-labs/quantro/errs"
)

// Key 規則鍵，對應設定檔的 policy_key
type Key string

const (
	KeyStandard Key = "standard"
	KeyRetro    Key = "retro"
)

// Builder 依模式設定建立 Policy。每個 Board 建立時呼叫一次。
type Builder func(planesInteract bool) (Policy, error)

// Registry 規則鍵 -> Builder
type Registry struct {
	builders map[Key]Builder
}

func NewRegistry() *Registry {
	return &Registry{builders: make(map[Key]Builder, 8)}
}

// DefaultRegistry 內建的 standard / retro 規則
func DefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(KeyStandard, func(planesInteract bool) (Policy, error) {
		return NewStandard(planesInteract), nil
	})
	_ = r.Register(KeyRetro, func(bool) (Policy, error) {
		return NewStandard(true), nil
	})
	return r
}

func (r *Registry) Register(key Key, b Builder) error {
	if b == nil {
		return errs.NewFatal("nil policy builder")
	}
	if _, ok := r.builders[key]; ok {
		return errs.NewFatal(fmt.Sprintf("duplicate policy builder: %s", key))
	}
	r.builders[key] = b
	return nil
}

func (r *Registry) Build(key Key, planesInteract bool) (Policy, error) {
	b, ok := r.builders[key]
	if !ok {
		return nil, errs.NewFatal(fmt.Sprintf("policy is not exist: %s", key))
	}
	return b(planesInteract)
}

func (r *Registry) IsExist(key Key) bool {
	_, ok := r.builders[key]
	return ok
}

// Keys 已註冊的鍵（排序後）
func (r *Registry) Keys() []Key {
	out := make([]Key, 0, len(r.builders))
	for k := range r.builders {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MergeRegistry 合併多個 Registry；重複的鍵一律視為錯誤（function 無法比較，不做「後者覆蓋」）。
func MergeRegistry(regs ...*Registry) (*Registry, error) {
	out := NewRegistry()
	origin := make(map[Key]int, 8)
	for i, r := range regs {
		if r == nil {
			continue
		}
		for k, b := range r.builders {
			if _, ok := out.builders[k]; ok {
				return nil, errs.NewFatal(fmt.Sprintf("duplicate policy key %s (registry #%d and #%d)", k, origin[k], i))
			}
			out.builders[k] = b
			origin[k] = i
		}
	}
	return out, nil
}
