package sampler

import (
	"math"
	"math/bits"

	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/core"
)

// AliasTable O(1) 加權抽樣表。
//
// Prob 以 weight*Size 整數 scaling 保存，抽樣時與 IntN(Total) 比較，不經過浮點數。
type AliasTable struct {
	Prob    []int
	Aliases []int
	Size    int
	Total   int
}

// BuildAliasTable 依非負權重建表；空權重回傳空表。
// 負權重、全為零、或 weight*n 溢位時回傳錯誤。
func BuildAliasTable(weights []int) (*AliasTable, error) {
	n := len(weights)
	if n == 0 {
		return &AliasTable{}, nil
	}
	total := uint64(0)
	for i, w := range weights {
		if w < 0 {
			return nil, errs.Warnf("alias table: negative weight %d at %d", w, i)
		}
		if total > uint64(math.MaxInt)-uint64(w) {
			return nil, errs.NewWarn("alias table: total weight overflow")
		}
		total += uint64(w)
	}
	if total == 0 {
		return nil, errs.NewWarn("alias table: all weights are zero")
	}
	if hi, lo := bits.Mul64(total, uint64(n)); hi != 0 || lo > math.MaxInt64 {
		return nil, errs.NewWarn("alias table: weights too large")
	}

	t := int(total)
	prob := make([]int, n)
	aliases := make([]int, n)
	small := make([]int, 0, n)
	large := make([]int, 0, n)
	for i, w := range weights {
		prob[i] = w * n
		aliases[i] = i
		if prob[i] < t {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}
	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		// s 的剩餘機率由 l 補足；sum(prob) = total*n 維持不變
		aliases[s] = l
		prob[l] += prob[s] - t
		if prob[l] < t {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}
	return &AliasTable{Prob: prob, Aliases: aliases, Size: n, Total: t}, nil
}

// Pick 抽一個索引；空表回傳 -1
func (at *AliasTable) Pick(c *core.Core) int {
	if at.Size == 0 {
		return -1
	}
	idx := c.IntN(at.Size)
	if c.IntN(at.Total) < at.Prob[idx] {
		return idx
	}
	return at.Aliases[idx]
}
