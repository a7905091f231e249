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

package place

import (
	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/grid"
)

// permTable 固定的 0..255 排列。
//
// 網路上各個 replica 不交換放置結果，只靠「相同盤面 + 相同 seed => 相同選擇」保持一致，
// 所以表格內容與雜湊步驟必須逐位元固定，不能換成一般用途的 PRNG。
var permTable = [256]uint8{
	0x17, 0x8e, 0xd0, 0xa0, 0x81, 0xe3, 0x57, 0xf5, 0x9a, 0xb6, 0x53, 0x45, 0x6c, 0x2f, 0x8f, 0x80,
	0x22, 0x59, 0xa3, 0x33, 0x56, 0x0c, 0x7b, 0x8b, 0xb5, 0x03, 0xf9, 0xbc, 0xfd, 0x84, 0xa8, 0xba,
	0x0b, 0xee, 0x86, 0x31, 0x0f, 0x27, 0xc8, 0x51, 0x15, 0x18, 0x35, 0xbd, 0x37, 0x6d, 0x5e, 0x60,
	0x07, 0xf3, 0x21, 0xe4, 0xc4, 0xb0, 0x01, 0xc2, 0x64, 0xae, 0xb7, 0xc3, 0x7e, 0x2e, 0xcd, 0xfa,
	0x1c, 0x7a, 0x5d, 0x87, 0x67, 0x1e, 0xeb, 0x97, 0x99, 0x41, 0x95, 0x2c, 0xda, 0x73, 0x58, 0x11,
	0x06, 0xa6, 0x46, 0x1b, 0xe5, 0xcc, 0x74, 0x88, 0x1a, 0x72, 0xb9, 0xd1, 0x00, 0x30, 0x08, 0x16,
	0x76, 0x36, 0xa2, 0x28, 0xa4, 0x96, 0x8c, 0x7d, 0x9b, 0x5b, 0xca, 0xdb, 0x92, 0xf7, 0x62, 0xbe,
	0x4f, 0x29, 0x04, 0x10, 0x3a, 0x2b, 0xa9, 0xe7, 0x1f, 0x20, 0xd2, 0x43, 0xe8, 0x8a, 0xaa, 0xf1,
	0x70, 0xe0, 0x66, 0x44, 0x5a, 0x79, 0x63, 0x68, 0xef, 0x39, 0x8d, 0x0d, 0xf2, 0x4d, 0x83, 0xc5,
	0xc0, 0xd9, 0xdd, 0xb1, 0x94, 0xf0, 0xe1, 0x77, 0x54, 0xed, 0xfb, 0x47, 0xce, 0x25, 0x0e, 0xb4,
	0xd4, 0x5f, 0x2d, 0x19, 0xac, 0x6a, 0xd8, 0x6b, 0x71, 0x2a, 0xd7, 0xdf, 0x89, 0x3b, 0x3e, 0xe2,
	0x49, 0x48, 0x3f, 0x55, 0xde, 0x4c, 0x9f, 0xfe, 0x9d, 0x61, 0xe9, 0xc9, 0xea, 0x13, 0x93, 0x12,
	0xff, 0xa7, 0xcb, 0xc7, 0x09, 0x6e, 0xa1, 0x1d, 0xb2, 0x38, 0xdc, 0xd6, 0x23, 0x4a, 0xb3, 0x5c,
	0xb8, 0x7c, 0x4b, 0x4e, 0xd5, 0x14, 0x42, 0x85, 0xf6, 0x6f, 0x50, 0x98, 0x26, 0x0a, 0x24, 0xec,
	0x40, 0x75, 0xf8, 0xc6, 0xab, 0xfc, 0x32, 0x90, 0xa5, 0x34, 0x78, 0xcf, 0x91, 0x9c, 0x05, 0x52,
	0xad, 0xaf, 0xc1, 0xf4, 0x02, 0xd3, 0x3d, 0xbf, 0x65, 0x3c, 0xbb, 0x69, 0x9e, 0x82, 0xe6, 0x7f,
}

const (
	hashMul  uint32 = 0x9E3779B1
	hashMul2 uint32 = 0x85EBCA6B
)

// Pseudo 決定性的選擇器：表格 + 乘法雜湊。不是密碼學亂數。
type Pseudo struct {
	seed   uint32
	seeded bool
}

// Set 設定 session seed；第一次使用前必須呼叫
func (p *Pseudo) Set(seed uint32) {
	p.seed = seed
	p.seeded = true
}

func (p *Pseudo) Seeded() bool { return p.seeded }

// Hash 將 seed、每一欄高度、方塊序號與種類混合成一個 32-bit 值
func (p *Pseudo) Hash(heights *[grid.Planes][]int, ordinal int, salt int) uint32 {
	if !p.seeded {
		panic(errs.WrapWithExtra(errs.ErrNotFinalized, "placement", "pseudorandom seed not set"))
	}
	h := p.seed*hashMul + 1
	for qp := 0; qp < grid.Planes; qp++ {
		for _, v := range heights[qp] {
			h = (h ^ uint32(v+1)) * hashMul
		}
	}
	h = (h ^ uint32(ordinal)) * hashMul2
	h = (h ^ uint32(salt)) * hashMul
	return h ^ (h >> 16)
}

// Index 由雜湊值經排列表取得 [0,n) 的索引；n <= 0 回傳 -1
func Index(h uint32, n int) int {
	if n <= 0 {
		return -1
	}
	b0 := permTable[uint8(h)^uint8(h>>24)]
	b1 := permTable[b0^uint8(h>>8)]
	b2 := permTable[b1^uint8(h>>16)]
	v := uint32(b0)<<16 | uint32(b1)<<8 | uint32(b2)
	return int(v % uint32(n))
}

// Pick 便利方法：Hash + Index
func (p *Pseudo) Pick(heights *[grid.Planes][]int, ordinal int, salt int, n int) int {
	return Index(p.Hash(heights, ordinal, salt), n)
}
