package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/quantro/spec"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// StatReport 模擬統計報告
type StatReport struct {
	Summary *SummaryReport `json:"Summary"`
	Chunk   *MomentReport  `json:"Chunk"`
	Cascade *MomentReport  `json:"Cascade"`
	Dist    *DistReport    `json:"Dist"`
	isDone  bool
}

type SummaryReport struct {
	ModeName      string      `json:"ModeName"`
	ModeID        spec.ModeID `json:"ModeID"`
	Ticks         int         `json:"Ticks"`
	Locks         int         `json:"Locks"`
	Conflicts     int         `json:"Conflicts"`
	TopOuts       int         `json:"TopOuts"`
	RowsCleared   int         `json:"RowsCleared"`
	Cascades      int         `json:"Cascades"`
	MaxCascade    int         `json:"MaxCascade"`
	Chunks        int         `json:"Chunks"`
	ChunkCells    int         `json:"ChunkCells"`
	Rewards       int         `json:"Rewards"`
	Placed        int         `json:"Placed"`
	LineRate      float64     `json:"LineRate"`
	ChunksPerTick float64     `json:"ChunksPerTick"`
}

// MomentReport 由精確直方圖計算的動差與分位數
//
// 紀錄時只累加直方圖，Done() 時一次計算。
type MomentReport struct {
	Count  int     `json:"Count"`
	Mean   float64 `json:"Mean"`
	Std    float64 `json:"Std"`
	MeanCI CI      `json:"MeanCI"`
	P50    float64 `json:"P50"`
	P90    float64 `json:"P90"`
	P99    float64 `json:"P99"`
	Max    int     `json:"Max"`
}

// DistReport 區間落點統計
type DistReport struct {
	SizeHist       []int     `json:"SizeHist"`
	CascadeHist    []int     `json:"CascadeHist"`
	SizeBucket     []string  `json:"SizeBucket"`
	SizeCollect    []int     `json:"SizeCollect"`
	SizeDist       []float64 `json:"SizeDist"`
	CascadeBucket  []string  `json:"CascadeBucket"`
	CascadeCollect []int     `json:"CascadeCollect"`
	CascadeDist    []float64 `json:"CascadeDist"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 將累積計數轉換為最終統計結果並鎖定 isDone 標記。
//
// 模擬過程因為性能原因只處理 int 的紀錄，所以統計完成後
//
// 請使用 Done 一次性計算統計結果
func (s *StatReport) Done() {
	if s.isDone {
		return
	}
	if s.Dist == nil {
		s.Dist = &DistReport{}
	}
	d := s.Dist
	s.Chunk = Moments(d.SizeHist)
	s.Cascade = Moments(d.CascadeHist)

	d.SizeBucket = SizeBuckets.Labels()
	d.SizeCollect = SizeBuckets.Collect(d.SizeHist)
	d.SizeDist = fractions(d.SizeCollect)
	d.CascadeBucket = CascadeBuckets.Labels()
	d.CascadeCollect = CascadeBuckets.Collect(d.CascadeHist)
	d.CascadeDist = fractions(d.CascadeCollect)

	if s.Summary != nil && s.Summary.Ticks > 0 {
		t := float64(s.Summary.Ticks)
		s.Summary.LineRate = float64(s.Summary.RowsCleared) / t
		s.Summary.ChunksPerTick = float64(s.Summary.Chunks) / t
	}
	s.isDone = true
}

// Moments 由直方圖（索引即值）計算平均、標準差、95% 信賴區間與分位數
func Moments(hist []int) *MomentReport {
	m := &MomentReport{}
	x := make([]float64, 0, len(hist))
	w := make([]float64, 0, len(hist))
	for v, n := range hist {
		if n <= 0 {
			continue
		}
		x = append(x, float64(v))
		w = append(w, float64(n))
		m.Count += n
		m.Max = v
	}
	if m.Count == 0 {
		return m
	}
	if m.Count == 1 {
		m.Mean = x[0]
	} else {
		m.Mean, m.Std = stat.MeanStdDev(x, w)
	}
	se := m.Std / math.Sqrt(float64(m.Count))
	z := distuv.UnitNormal.Quantile(0.975)
	m.MeanCI = CI{Lo: max(m.Mean-z*se, 0), Hi: m.Mean + z*se}
	m.P50 = stat.Quantile(0.50, stat.Empirical, x, w)
	m.P90 = stat.Quantile(0.90, stat.Empirical, x, w)
	m.P99 = stat.Quantile(0.99, stat.Empirical, x, w)
	return m
}

func (s *StatReport) WriteWith(w io.Writer, rep StatReportRender) error {
	s.Done()
	return rep.Write(w, s)
}

func (s *StatReport) StdOut(ut time.Duration) {
	s.Done()
	formatDuration(ut, s.Summary.Ticks)
	sk, sm := s.fmtBasic()
	str := fmtTable(s.Summary.ModeName, sk, sm)
	fmt.Println(str)
}

// ============================================================
// ** 內部方法 **
// ============================================================

func fractions(collect []int) []float64 {
	total := 0
	for _, n := range collect {
		total += n
	}
	out := make([]float64, len(collect))
	if total == 0 {
		return out
	}
	for i, n := range collect {
		out[i] = float64(n) / float64(total)
	}
	return out
}

func formatDuration(d time.Duration, ticks int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	tps := int(float64(ticks) / sec)
	if sec < 60.0 {
		p.Printf("used: %.2f seconds\ntps : %d ticks/sec\n", sec, tps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		p.Printf("used: %dm %ds\ntps : %d ticks/sec\n", m, s, tps)
		return
	}
	p.Printf("used: %dh:%dm:%ds\ntps : %d ticks/sec\n", h, m, s, tps)
}

// StdOut

func (s *StatReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	c, k := s.Chunk, s.Cascade
	basic := map[string]string{
		"Mode Name":      p.Sprintf("%s", s.Summary.ModeName),
		"Mode ID":        fmt.Sprintf("%d", s.Summary.ModeID),
		"Total Ticks":    p.Sprintf("%d", s.Summary.Ticks),
		"Locks":          p.Sprintf("%d", s.Summary.Locks),
		"Conflicts":      p.Sprintf("%d", s.Summary.Conflicts),
		"Top Outs":       p.Sprintf("%d", s.Summary.TopOuts),
		"Rows Cleared":   p.Sprintf("%d", s.Summary.RowsCleared),
		"Line Rate":      p.Sprintf("%.4f", s.Summary.LineRate),
		"Rewards":        p.Sprintf("%d", s.Summary.Rewards),
		"Blocks Placed":  p.Sprintf("%d", s.Summary.Placed),
		"Chunks":         p.Sprintf("%d", s.Summary.Chunks),
		"Chunks/Tick":    p.Sprintf("%.4f", s.Summary.ChunksPerTick),
		"Chunk Size":     p.Sprintf("%.3f ± %.3f", c.Mean, c.Std),
		"Size 95% CI":    p.Sprintf("[%.3f,%.3f]", c.MeanCI.Lo, c.MeanCI.Hi),
		"Size P50/90/99": p.Sprintf("%.0f / %.0f / %.0f", c.P50, c.P90, c.P99),
		"Cascade":        p.Sprintf("%.3f ± %.3f", k.Mean, k.Std),
		"Max Cascade":    p.Sprintf("%d", s.Summary.MaxCascade),
	}
	keys := []string{"Mode Name", "Mode ID", "Total Ticks", "Locks", "Conflicts", "Top Outs", "Rows Cleared", "Line Rate",
		"Rewards", "Blocks Placed", "Chunks", "Chunks/Tick", "Chunk Size", "Size 95% CI", "Size P50/90/99", "Cascade", "Max Cascade"}
	return keys, basic
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	fmtStr := top
	fmtStr += p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right))
	fmtStr += divider
	for _, k := range keys {
		fmtStr += p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	fmtStr += divider

	return fmtStr
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
