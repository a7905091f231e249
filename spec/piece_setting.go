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
	"github.com/zintix-labs/quantro/sdk/ptype"
	"github.com/zintix-labs/quantro/sdk/qo"
)

// PieceSetting 模擬器可抽出的一種方塊。
//
// Shape 由上而下逐列書寫，每個字元是一個 qo.Code.Byte()（'.' 為空）。
// S0/F0 寫在平面 0、S1/F1 寫在平面 1、ST 兩個平面都寫；
// SL/UL 不屬於任何平面，寫在 Plane 指定的平面。
type PieceSetting struct {
	Name     string      `yaml:"name"     json:"name"`
	Category string      `yaml:"category" json:"category"`
	Sub      string      `yaml:"sub"      json:"sub"`
	Weight   int         `yaml:"weight"   json:"weight"`
	Plane    int         `yaml:"plane"    json:"plane"`
	Shape    []string    `yaml:"shape"    json:"shape"`
	Type     int         `yaml:"-"        json:"-"`
	Proto    *grid.Piece `yaml:"-"        json:"-"`
	initFlag bool
}

// Init 解析 Shape 並推導型別碼
func (ps *PieceSetting) Init() error {
	if ps.initFlag {
		return nil
	}
	if ps.Name == "" {
		return errs.NewFatal("empty piece name")
	}
	if ps.Weight <= 0 {
		return errs.NewFatal(fmt.Sprintf("piece %s: weight must be positive", ps.Name))
	}
	if ps.Plane < 0 || ps.Plane >= grid.Planes {
		return errs.NewFatal(fmt.Sprintf("piece %s: invalid plane %d", ps.Name, ps.Plane))
	}
	cat, ok := ptype.ParseCategory(ps.Category)
	if !ok {
		return errs.NewFatal(fmt.Sprintf("piece %s: unknown category %q", ps.Name, ps.Category))
	}
	sub, ok := ptype.ParseSubcategory(cat, ps.Sub)
	if !ok {
		return errs.NewFatal(fmt.Sprintf("piece %s: unknown sub %q", ps.Name, ps.Sub))
	}

	p, codes, err := ps.parseShape()
	if err != nil {
		return err
	}
	if n := ptype.NumBlocks(cat); cat != ptype.Special && n != len(codes) {
		return errs.NewFatal(fmt.Sprintf("piece %s: %s needs %d blocks, shape has %d", ps.Name, cat, n, len(codes)))
	}
	comb, err := ptype.EncodeCombination(codes)
	if err != nil {
		return errs.Wrap(err, fmt.Sprintf("piece %s", ps.Name))
	}
	ps.Type = ptype.Encode(cat, sub, comb)
	p.Type = ps.Type
	ps.Proto = p
	ps.initFlag = true
	return nil
}

// parseShape 回傳收緊邊界後的 Piece，以及由下而上、由左而右每個位置的方向碼
func (ps *PieceSetting) parseShape() (*grid.Piece, []qo.Code, error) {
	rows := len(ps.Shape)
	if rows == 0 {
		return nil, nil, errs.NewFatal(fmt.Sprintf("piece %s: empty shape", ps.Name))
	}
	cols := len(ps.Shape[0])
	for _, line := range ps.Shape {
		if len(line) != cols || cols == 0 {
			return nil, nil, errs.NewFatal(fmt.Sprintf("piece %s: ragged shape", ps.Name))
		}
	}
	p := grid.NewPiece(rows, cols)
	codes := make([]qo.Code, 0, ptype.MaxDigits)
	for r := 0; r < rows; r++ {
		line := ps.Shape[rows-1-r]
		for c := 0; c < cols; c++ {
			code, ok := qo.Parse(line[c])
			if !ok {
				return nil, nil, errs.NewFatal(fmt.Sprintf("piece %s: unknown cell %q", ps.Name, line[c]))
			}
			if code == qo.NO {
				continue
			}
			for qp := 0; qp < grid.Planes; qp++ {
				if planeOf(code, ps.Plane, qp) {
					p.Blocks.Set(qp, r, c, code)
				}
			}
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		return nil, nil, errs.NewFatal(fmt.Sprintf("piece %s: shape has no blocks", ps.Name))
	}
	p.TightenBounds()
	return p, codes, nil
}

// planeOf code 是否寫在平面 qp
func planeOf(code qo.Code, neutral int, qp int) bool {
	switch code {
	case qo.ST:
		return true
	case qo.S0, qo.F0:
		return qp == 0
	case qo.S1, qo.F1:
		return qp == 1
	}
	return qp == neutral
}
