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

package grid

import (
	"strconv"
	"strings"

	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/qo"
)

// Piece literal 版本與欄位。
//
//	P1:type:rot:defRot:rows:cols:llx:lly:urx:ury:plane0:plane1
//
// plane 字串長度為 rows*cols，row-major（row 0 在前），每格一個 qo.Code.Byte()。
const (
	literalVersion = "P1"
	literalFields  = 12
	// maxLiteralCells 解碼上限，避免不可信輸入造成大量配置
	maxLiteralCells = 1 << 20
)

// Encode 將 Piece 序列化成文字 literal。所有欄位皆可無損還原。
// Blocks 為 nil 時編成 0x0，解碼後是空陣列（Equal 視兩者相同）。
func (p *Piece) Encode() string {
	rows, cols := 0, 0
	if p.Blocks != nil {
		rows, cols = p.Blocks.Rows(), p.Blocks.Cols()
	}
	var sb strings.Builder
	sb.Grow(48 + 2*rows*cols)
	sb.WriteString(literalVersion)
	for _, v := range [...]int{p.Type, p.Rotation, p.DefaultRotation, rows, cols, p.LL.X, p.LL.Y, p.UR.X, p.UR.Y} {
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(v))
	}
	for qp := 0; qp < Planes; qp++ {
		sb.WriteByte(':')
		if p.Blocks == nil {
			continue
		}
		for _, v := range p.Blocks.Plane(qp) {
			sb.WriteByte(v.Byte())
		}
	}
	return sb.String()
}

// DecodePiece 由 literal 建立新的 Piece。
func DecodePiece(s string) (*Piece, error) {
	p := &Piece{}
	if err := p.Decode(s); err != nil {
		return nil, err
	}
	return p, nil
}

// Decode 解碼 literal 到 p（重用 p 的陣列容量）。
//
// 任何不合法輸入都回傳可被 errors.Is(err, errs.ErrParse) 命中的錯誤，
// 解碼失敗時 p 保持原狀；不會用預設值填補缺漏欄位。
func (p *Piece) Decode(s string) error {
	fs := strings.Split(s, ":")
	if len(fs) == 0 || fs[0] != literalVersion {
		return errs.Parsef("piece literal: unknown version %q", fs[0])
	}
	if len(fs) != literalFields {
		return errs.Parsef("piece literal: want %d fields, got %d", literalFields, len(fs))
	}
	var nums [9]int
	for i := range nums {
		v, err := strconv.Atoi(fs[i+1])
		if err != nil {
			return errs.Parsef("piece literal: field %d not numeric: %q", i+1, fs[i+1])
		}
		nums[i] = v
	}
	typ, rot, defRot := nums[0], nums[1], nums[2]
	rows, cols := nums[3], nums[4]
	ll := Offset{X: nums[5], Y: nums[6]}
	ur := Offset{X: nums[7], Y: nums[8]}

	if rows < 0 || cols < 0 || rows > maxLiteralCells || cols > maxLiteralCells ||
		(cols > 0 && rows > maxLiteralCells/cols) {
		return errs.Parsef("piece literal: bad dimension %dx%d", rows, cols)
	}
	if ll.X < 0 || ll.Y < 0 || ll.X > ur.X || ll.Y > ur.Y || ur.X > cols || ur.Y > rows {
		return errs.Parsef("piece literal: bounds (%d,%d)-(%d,%d) outside %dx%d", ll.X, ll.Y, ur.X, ur.Y, rows, cols)
	}
	n := rows * cols
	var planes [Planes][]qo.Code
	for qp := 0; qp < Planes; qp++ {
		raw := fs[10+qp]
		if len(raw) != n {
			return errs.Parsef("piece literal: plane %d has %d cells, want %d", qp, len(raw), n)
		}
		cells := make([]qo.Code, n)
		for i := 0; i < n; i++ {
			v, ok := qo.Parse(raw[i])
			if !ok {
				return errs.Parsef("piece literal: plane %d cell %d bad character %q", qp, i, raw[i])
			}
			if v != qo.NO {
				r, c := i/cols, i%cols
				if r < ll.Y || r >= ur.Y || c < ll.X || c >= ur.X {
					return errs.Parsef("piece literal: plane %d cell (%d,%d) outside bounds", qp, r, c)
				}
			}
			cells[i] = v
		}
		planes[qp] = cells
	}

	if p.Blocks == nil {
		p.Blocks = &Grid{}
	}
	p.Blocks.Resize(rows, cols)
	for qp := 0; qp < Planes; qp++ {
		copy(p.Blocks.Plane(qp), planes[qp])
	}
	p.Type, p.Rotation, p.DefaultRotation = typ, rot, defRot
	p.LL, p.UR = ll, ur
	return nil
}
