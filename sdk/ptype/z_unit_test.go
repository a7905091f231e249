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

import (
	"errors"
	"testing"

	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/qo"
)

func TestEncodeSplit(t *testing.T) {
	code := Encode(Tetromino, TetrominoT, 1231)
	if code != 10_201_231 {
		t.Fatalf("unexpected code %d", code)
	}
	if CategoryOf(code) != Tetromino || Subcategory(code) != TetrominoT || Combination(code) != 1231 {
		t.Fatalf("split mismatch for %d", code)
	}
	if !IsTetromino(code) || IsPentomino(code) || !Is(code, Tetromino, TetrominoT) || Is(code, Tetromino, TetrominoS) {
		t.Fatalf("predicates disagree for %d", code)
	}
	if !Valid(code) || Valid(-1) || Valid(99*CatUnit) {
		t.Fatalf("validity checks wrong")
	}
}

func TestCombinationDigits(t *testing.T) {
	codes := []qo.Code{qo.S0, qo.S1, qo.ST, qo.UL}
	comb, err := EncodeCombination(codes)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if comb != 5321 {
		t.Fatalf("block 0 must be the lowest digit, got %d", comb)
	}
	back := AppendCombination(nil, comb, len(codes))
	for i := range codes {
		if back[i] != codes[i] {
			t.Fatalf("digit %d: got %s want %s", i, back[i], codes[i])
		}
	}
	if _, err := EncodeCombination(make([]qo.Code, MaxDigits+1)); !errors.Is(err, errs.ErrOutOfRange) {
		t.Fatalf("expected out of range for too many blocks")
	}
}

func TestUpconvertV1(t *testing.T) {
	// tetromino, subcategory 3 (S), idx 1 => qo.S1 on every block
	v1 := int(Tetromino)*10_000 + TetrominoS*100 + 1
	v2, err := UpconvertV1(v1)
	if err != nil {
		t.Fatalf("upconvert: %v", err)
	}
	if v2 != Encode(Tetromino, TetrominoS, 2222) {
		t.Fatalf("unexpected v2 code %d", v2)
	}
	mono := int(Monomino)*10_000 + 0*100 + 2
	v2, err = UpconvertV1(mono)
	if err != nil || Combination(v2) != int(qo.ST) || !IsMonomino(v2) {
		t.Fatalf("monomino upconvert failed: %d %v", v2, err)
	}
	for _, bad := range []int{-5, 99 * 10_000, int(Domino)*10_000 + 99} {
		if _, err := UpconvertV1(bad); !errors.Is(err, errs.ErrOutOfRange) {
			t.Fatalf("expected out of range for %d", bad)
		}
	}
}

func TestDropCode(t *testing.T) {
	c := Drop(qo.UL)
	if !IsSpecial(c) || !Is(c, Special, SpecialDrop) || qo.Code(Combination(c)) != qo.UL {
		t.Fatalf("drop code %d", c)
	}
	if NumBlocks(Pentomino) != 5 || NumBlocks(Category(42)) != 0 {
		t.Fatalf("block counts wrong")
	}
}

func TestNames(t *testing.T) {
	cat, ok := ParseCategory(" Tetromino ")
	if !ok || cat != Tetromino {
		t.Fatalf("parse category failed")
	}
	sub, ok := ParseSubcategory(cat, "T")
	if !ok || sub != TetrominoT {
		t.Fatalf("parse subcategory failed")
	}
	if got := Name(Encode(Tetromino, TetrominoT, 1111)); got != "tetromino/t" {
		t.Fatalf("unexpected name %q", got)
	}
	if _, ok := ParseSubcategory(Domino, "corner"); ok {
		t.Fatalf("domino has no corner")
	}
	if _, ok := ParseCategory("hexomino"); ok {
		t.Fatalf("unknown category accepted")
	}
	if Name(-1) != "" {
		t.Fatalf("invalid code should have no name")
	}
}
