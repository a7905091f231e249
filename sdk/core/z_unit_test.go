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

package core

import (
	"testing"
)

func TestCoreDeterminism(t *testing.T) {
	c1 := New(Default().New(7))
	c2 := New(Default().New(7))
	for i := 0; i < 5; i++ {
		if c1.Uint64() != c2.Uint64() {
			t.Fatalf("Uint64 mismatch at %d", i)
		}
	}
	if c1.IntN(10) != c2.IntN(10) {
		t.Fatalf("IntN mismatch")
	}
	if c1.UintN(10) != c2.UintN(10) {
		t.Fatalf("UintN mismatch")
	}
}

func TestSpawnColumn(t *testing.T) {
	c := New(Default().New(9))
	if got := c.SpawnColumn(4, 5); got != -1 {
		t.Fatalf("expected -1 for a piece wider than the board, got %d", got)
	}
	if got := c.SpawnColumn(4, 0); got != -1 {
		t.Fatalf("expected -1 for zero width, got %d", got)
	}
	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		v := c.SpawnColumn(10, 4)
		if v < 0 || v > 6 {
			t.Fatalf("spawn column %d outside [0,6]", v)
		}
		seen[v] = true
	}
	if len(seen) != 7 {
		t.Fatalf("expected every column to appear, got %v", seen)
	}
	if got := c.SpawnColumn(3, 3); got != 0 {
		t.Fatalf("full-width piece must spawn at 0, got %d", got)
	}
}

func TestSession(t *testing.T) {
	a := New(Default().New(5))
	b := New(Default().New(5))
	if a.Session() != b.Session() {
		t.Fatalf("session seeds differ")
	}
}

func TestSnapshotRestore(t *testing.T) {
	c := New(Default().New(3))
	_ = c.Uint64()
	snap, err := c.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	want := c.Uint64()
	if err := c.Restore(snap); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := c.Uint64(); got != want {
		t.Fatalf("restore mismatch: %d != %d", got, want)
	}
	seed, err := RandomSeed()
	if err != nil || seed < 0 {
		t.Fatalf("random seed: %d %v", seed, err)
	}
}
