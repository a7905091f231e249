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
package corefmt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/grid"
	"github.com/zintix-labs/quantro/sdk/qo"
)

// Grid snapshot frame:
//
//	"QG" || version(1 byte) || uvarint(rows) || uvarint(cols) || blobframe(zstd(plane0 || plane1))
//
// 每格一個 byte（qo.Code）。盤面大多是空格，zstd 壓縮後通常只剩幾十 bytes。
const (
	gridMagic   = "QG"
	gridVersion = 1
	// maxGridCells 解碼上限，避免不可信輸入造成大量配置
	maxGridCells = 1 << 20
)

// EncodeAll / DecodeAll 可並行呼叫，共用一組即可
var (
	zenc, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	zdec, _ = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(2*maxGridCells))
)

// EncodeGrid 將盤面編成 snapshot frame
func EncodeGrid(g *grid.Grid) []byte {
	rows, cols := g.Rows(), g.Cols()
	raw := make([]byte, 0, grid.Planes*rows*cols)
	for qp := 0; qp < grid.Planes; qp++ {
		for _, v := range g.Plane(qp) {
			raw = append(raw, byte(v))
		}
	}
	out := make([]byte, 0, len(gridMagic)+1+2*binary.MaxVarintLen64+64)
	out = append(out, gridMagic...)
	out = append(out, gridVersion)
	out = binary.AppendUvarint(out, uint64(rows))
	out = binary.AppendUvarint(out, uint64(cols))
	return AppendFrame(out, zenc.EncodeAll(raw, nil))
}

// DecodeGrid 由 snapshot frame 建立新的盤面
func DecodeGrid(b []byte) (*grid.Grid, error) {
	g := grid.NewGrid(0, 0)
	if err := DecodeGridInto(b, g); err != nil {
		return nil, err
	}
	return g, nil
}

// DecodeGridInto 解碼到既有盤面（尺寸不同時 Resize）。失敗時 dst 內容不保證。
func DecodeGridInto(b []byte, dst *grid.Grid) error {
	if len(b) < len(gridMagic)+1 || string(b[:len(gridMagic)]) != gridMagic {
		return errs.WrapWithExtra(errs.ErrParse, "grid frame", "bad magic")
	}
	if v := b[len(gridMagic)]; v != gridVersion {
		return errs.WrapWithExtra(errs.ErrParse, "grid frame", fmt.Sprintf("unsupported version %d", v))
	}
	r := bytes.NewReader(b[len(gridMagic)+1:])
	rows, err := binary.ReadUvarint(r)
	if err != nil {
		return errs.WrapWithExtra(errs.ErrParse, "grid frame", "rows")
	}
	cols, err := binary.ReadUvarint(r)
	if err != nil {
		return errs.WrapWithExtra(errs.ErrParse, "grid frame", "cols")
	}
	if rows > maxGridCells || cols > maxGridCells || rows*cols > maxGridCells {
		return errs.WrapWithExtra(errs.ErrOutOfRange, "grid frame", fmt.Sprintf("%dx%d", rows, cols))
	}
	comp, _, err := SplitFrame(b[len(b)-r.Len():])
	if err != nil {
		return err
	}
	if len(comp) > 2*maxGridCells {
		return errs.WrapWithExtra(errs.ErrOutOfRange, "grid frame", "payload too large")
	}
	size := int(rows * cols)
	raw, err := zdec.DecodeAll(comp, make([]byte, 0, grid.Planes*size))
	if err != nil {
		return errs.WrapWithExtra(errs.ErrParse, "grid frame", err.Error())
	}
	if len(raw) != grid.Planes*size {
		return errs.WrapWithExtra(errs.ErrParse, "grid frame", fmt.Sprintf("payload %d bytes, want %d", len(raw), grid.Planes*size))
	}
	dst.Resize(int(rows), int(cols))
	for qp := 0; qp < grid.Planes; qp++ {
		plane := dst.Plane(qp)
		for i, v := range raw[qp*size : (qp+1)*size] {
			c := qo.Code(v)
			if !c.Valid() {
				return errs.WrapWithExtra(errs.ErrParse, "grid frame", fmt.Sprintf("invalid code %d", v))
			}
			plane[i] = c
		}
	}
	return nil
}

// WriteGrid 寫入一個 snapshot frame（外層再包一層長度，方便串接多個盤面）
func WriteGrid(w io.Writer, g *grid.Grid) error {
	return WriteFrame(w, EncodeGrid(g))
}

// ReadGrid 讀取 WriteGrid 寫入的 frame
func ReadGrid(r io.Reader) (*grid.Grid, error) {
	b, err := ReadFrame(r, 4*maxGridCells)
	if err != nil {
		return nil, err
	}
	return DecodeGrid(b)
}
