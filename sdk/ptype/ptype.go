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

// Package ptype 方塊型別碼（piece type code）的純數值編碼。
//
// 型別碼是一個 int：
//
//	code = category*CatUnit + subcategory*SubUnit + combination
//
// combination 以十進位逐位記錄每個方塊的方向碼（第 0 個方塊在個位數）。
// 所有判斷都是整數範圍檢查，不查表、不配置記憶體。
package ptype

import (
	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/qo"
)

const (
	CatUnit = 10_000_000
	SubUnit = 100_000
	// MaxDigits combination 最多可容納的方塊數
	MaxDigits = 5

	maxSub = CatUnit / SubUnit // 100
)

// Category 形狀家族
type Category int

const (
	Tetromino Category = iota + 1
	Pentomino
	Tromino
	Domino
	Monomino
	Special

	catEnd
)

var catNames = [...]string{"", "tetromino", "pentomino", "tromino", "domino", "monomino", "special"}

func (c Category) Valid() bool { return c >= Tetromino && c < catEnd }

func (c Category) String() string {
	if !c.Valid() {
		return "unknown"
	}
	return catNames[c]
}

// 各家族的子分類
const (
	TetrominoLine = iota
	TetrominoSquare
	TetrominoT
	TetrominoS
	TetrominoZ
	TetrominoJ
	TetrominoL
)

const (
	PentominoF = iota
	PentominoI
	PentominoL
	PentominoN
	PentominoP
	PentominoT
	PentominoU
	PentominoV
	PentominoW
	PentominoX
	PentominoY
	PentominoZ
)

const (
	TrominoLine = iota
	TrominoCorner
)

const (
	DominoLine = iota
)

const (
	MonominoSingle = iota
)

const (
	// SpecialDrop 放置引擎投下的單格獎勵方塊
	SpecialDrop = iota
	// SpecialFragment 拆解後形狀不屬於任何家族的碎塊
	SpecialFragment
)

var catBlocks = [...]int{0, 4, 5, 3, 2, 1, 1}

// NumBlocks 家族固定的方塊數；未知家族回傳 0
func NumBlocks(cat Category) int {
	if !cat.Valid() {
		return 0
	}
	return catBlocks[cat]
}

// Encode 組合型別碼。超出欄位範圍時 panic（呼叫端以常數組合，屬於程式錯誤）。
func Encode(cat Category, sub int, comb int) int {
	if !cat.Valid() || sub < 0 || sub >= maxSub || comb < 0 || comb >= SubUnit {
		panic(errs.WrapWithExtra(errs.ErrOutOfRange, "ptype encode", "field out of range"))
	}
	return int(cat)*CatUnit + sub*SubUnit + comb
}

// CategoryOf 取出家族
func CategoryOf(t int) Category { return Category(t / CatUnit) }

// Subcategory 取出子分類
func Subcategory(t int) int { return (t % CatUnit) / SubUnit }

// Combination 取出方向組合
func Combination(t int) int { return t % SubUnit }

// Valid 型別碼落在任一已知家族的範圍內
func Valid(t int) bool {
	return t >= 0 && CategoryOf(t).Valid()
}

func inCat(t int, cat Category) bool {
	lo := int(cat) * CatUnit
	return t >= lo && t < lo+CatUnit
}

func IsTetromino(t int) bool { return inCat(t, Tetromino) }
func IsPentomino(t int) bool { return inCat(t, Pentomino) }
func IsTromino(t int) bool   { return inCat(t, Tromino) }
func IsDomino(t int) bool    { return inCat(t, Domino) }
func IsMonomino(t int) bool  { return inCat(t, Monomino) }
func IsSpecial(t int) bool   { return inCat(t, Special) }

// Is 是否為指定家族的指定子分類
func Is(t int, cat Category, sub int) bool {
	lo := int(cat)*CatUnit + sub*SubUnit
	return t >= lo && t < lo+SubUnit
}

// EncodeCombination 把每個方塊的方向碼編成十進位位數（第 0 個方塊在個位數）。
func EncodeCombination(codes []qo.Code) (int, error) {
	if len(codes) > MaxDigits {
		return 0, errs.WrapWithExtra(errs.ErrOutOfRange, "ptype combination", "too many blocks")
	}
	comb := 0
	for i := len(codes) - 1; i >= 0; i-- {
		c := codes[i]
		if !c.Valid() || int(c) > 9 {
			return 0, errs.WrapWithExtra(errs.ErrOutOfRange, "ptype combination", "orientation code "+c.String())
		}
		comb = comb*10 + int(c)
	}
	return comb, nil
}

// AppendCombination 將 comb 的前 n 位解碼後 append 到 dst（重用呼叫端的切片）。
func AppendCombination(dst []qo.Code, comb int, n int) []qo.Code {
	for i := 0; i < n; i++ {
		dst = append(dst, qo.Code(comb%10))
		comb /= 10
	}
	return dst
}

// 舊版（v1）型別碼：cat*10_000 + sub*100 + idx；idx 代表所有方塊共用的單一方向碼 qo.Code(idx+1)。
const (
	v1CatUnit = 10_000
	v1SubUnit = 100
)

// UpconvertV1 將 v1 型別碼改寫成目前的逐位組合編碼。純函式；存檔遷移由呼叫端負責。
func UpconvertV1(t int) (int, error) {
	if t < 0 {
		return 0, errs.WrapWithExtra(errs.ErrOutOfRange, "ptype upconvert", "negative code")
	}
	cat := Category(t / v1CatUnit)
	sub := (t % v1CatUnit) / v1SubUnit
	idx := t % v1SubUnit
	if !cat.Valid() {
		return 0, errs.WrapWithExtra(errs.ErrOutOfRange, "ptype upconvert", "unknown category")
	}
	code := qo.Code(idx + 1)
	if idx+1 >= qo.Count || code.Empty() {
		return 0, errs.WrapWithExtra(errs.ErrOutOfRange, "ptype upconvert", "orientation index")
	}
	comb := 0
	for i := 0; i < NumBlocks(cat); i++ {
		comb = comb*10 + int(code)
	}
	return Encode(cat, sub, comb), nil
}

// Drop 放置引擎投下單格方塊使用的型別碼
func Drop(code qo.Code) int {
	return Encode(Special, SpecialDrop, int(code))
}
