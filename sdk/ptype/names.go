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
package ptype

import "strings"

// 子分類名稱，索引即子分類編號
var subNames = [...][]string{
	Tetromino: {"line", "square", "t", "s", "z", "j", "l"},
	Pentomino: {"f", "i", "l", "n", "p", "t", "u", "v", "w", "x", "y", "z"},
	Tromino:   {"line", "corner"},
	Domino:    {"line"},
	Monomino:  {"single"},
	Special:   {"drop", "fragment"},
}

// ParseCategory 家族名稱（不分大小寫）
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i := int(Tetromino); i < int(catEnd); i++ {
		if catNames[i] == s {
			return Category(i), true
		}
	}
	return 0, false
}

// ParseSubcategory 家族內的子分類名稱（不分大小寫）
func ParseSubcategory(cat Category, s string) (int, bool) {
	if !cat.Valid() {
		return 0, false
	}
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range subNames[cat] {
		if n == s {
			return i, true
		}
	}
	return 0, false
}

// Name 型別碼的可讀名稱，例如 "tetromino/t"；未知回傳空字串
func Name(t int) string {
	cat := CategoryOf(t)
	if !Valid(t) {
		return ""
	}
	sub := Subcategory(t)
	if sub >= len(subNames[cat]) {
		return cat.String()
	}
	return cat.String() + "/" + subNames[cat][sub]
}
