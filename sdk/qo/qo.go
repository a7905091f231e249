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

// Package qo 定義單一格子在單一平面上的方向碼（orientation code）。
//
// 方向碼是稠密的小整數，策略層（policy）可以直接用二維表查詢兩兩關係。
package qo

// Code 單格內容。NO 代表空格。
type Code uint8

const (
	NO Code = iota // 空
	S0             // 一般方塊（平面 0 色）
	S1             // 一般方塊（平面 1 色）
	ST             // 疊合方塊：同一格同時填滿兩個平面，兩個平面存同一個碼
	SL             // 黏性方塊：與任何非空鄰居都不分離
	UL             // 不穩定方塊：與所有方向都分離
	F0             // 固定方塊（平面 0）：永遠不與支撐分離
	F1             // 固定方塊（平面 1）

	Count int = iota
)

var codeBytes = [Count]byte{'.', 'a', 'b', 't', 's', 'u', 'f', 'g'}

var codeNames = [Count]string{"NO", "S0", "S1", "ST", "SL", "UL", "F0", "F1"}

// Valid 是否為已知方向碼
func (c Code) Valid() bool { return int(c) < Count }

// Empty 是否為空格
func (c Code) Empty() bool { return c == NO }

// Byte 單字元文字表示，供 piece literal / 除錯畫面使用。
func (c Code) Byte() byte {
	if !c.Valid() {
		return '?'
	}
	return codeBytes[c]
}

func (c Code) String() string {
	if !c.Valid() {
		return "??"
	}
	return codeNames[c]
}

// Parse 由單字元還原方向碼；未知字元回傳 ok=false。
func Parse(b byte) (Code, bool) {
	for i, cb := range codeBytes {
		if cb == b {
			return Code(i), true
		}
	}
	return NO, false
}

// ParseName 由名稱（"S0"、"UL"…）還原方向碼，設定檔使用。
func ParseName(s string) (Code, bool) {
	for i, n := range codeNames {
		if n == s {
			return Code(i), true
		}
	}
	return NO, false
}

// Spans 是否為跨兩平面的碼（放置時兩個平面都要寫入）
func (c Code) Spans() bool { return c == ST }
