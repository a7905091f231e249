package stats

import "strconv"

// Buckets 將非負整數快速定位到統計區間 O(1)
//
// 區間為 [b0,b1), [b1,b2), ..., [bn,+inf)；小於 b0 的值歸入第一個區間。
// 長度為 1 的區間標籤只寫單一數字。
type Buckets struct {
	bounds []int
	labels []string
	lut    []int
}

// SizeBuckets chunk 大小（格數）
var SizeBuckets = NewBuckets([]int{1, 2, 3, 4, 5, 6, 10, 20, 50})

// CascadeBuckets 單一 tick 內的連鎖次數
var CascadeBuckets = NewBuckets([]int{0, 1, 2, 3, 4, 5, 8})

// NewBuckets bounds 必須嚴格遞增且非負，否則 panic（只以常數呼叫）
func NewBuckets(bounds []int) *Buckets {
	if len(bounds) == 0 {
		panic("stats: empty bucket bounds")
	}
	for i := 1; i < len(bounds); i++ {
		if bounds[i] <= bounds[i-1] || bounds[i-1] < 0 {
			panic("stats: bucket bounds must be increasing")
		}
	}
	last := len(bounds) - 1
	b := &Buckets{
		bounds: append([]int(nil), bounds...),
		labels: make([]string, len(bounds)),
		lut:    make([]int, bounds[last]),
	}
	for i := 0; i < last; i++ {
		lo, hi := bounds[i], bounds[i+1]
		if hi-lo == 1 {
			b.labels[i] = strconv.Itoa(lo)
		} else {
			b.labels[i] = "[" + strconv.Itoa(lo) + "," + strconv.Itoa(hi) + ")"
		}
	}
	b.labels[last] = "[" + strconv.Itoa(bounds[last]) + ",+inf)"

	// 建立LUT反查表
	idx := 0
	for v := range b.lut {
		for idx < last && v >= bounds[idx+1] {
			idx++
		}
		b.lut[v] = idx
	}
	return b
}

// Labels 區間標籤
func (b *Buckets) Labels() []string { return b.labels }

// Len 區間數量
func (b *Buckets) Len() int { return len(b.bounds) }

// Index 值所在的區間
func (b *Buckets) Index(v int) int {
	if v < 0 {
		return 0
	}
	if v >= len(b.lut) {
		return len(b.bounds) - 1
	}
	return b.lut[v]
}

// Collect 將精確直方圖（索引即值）彙整成區間計數
func (b *Buckets) Collect(hist []int) []int {
	out := make([]int, len(b.bounds))
	for v, n := range hist {
		out[b.Index(v)] += n
	}
	return out
}
