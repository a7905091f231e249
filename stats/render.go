package stats

import (
	"encoding/json"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// StatReportRender 把完成的報告寫到 w
type StatReportRender interface {
	Write(w io.Writer, r *StatReport) error
}

var renders = map[string]StatReportRender{
	"table": &TableStatReportRender{},
	"yaml":  &YAMLStatReportRender{},
	"json":  &JsonStatReportRender{},
}

// RenderFor 依名稱取得輸出格式（table / yaml / json）
func RenderFor(name string) (StatReportRender, bool) {
	r, ok := renders[name]
	return r, ok
}

// RenderNames 可用的輸出格式名稱（排序）
func RenderNames() []string {
	out := make([]string, 0, len(renders))
	for k := range renders {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// TableStatReportRender 與 StdOut 相同的表格，不含用時
type TableStatReportRender struct{}

func (tr *TableStatReportRender) Write(w io.Writer, r *StatReport) error {
	keys, msg := r.fmtBasic()
	_, err := io.WriteString(w, fmtTable(r.Summary.ModeName, keys, msg))
	return err
}

type JsonStatReportRender struct{}

func (jr *JsonStatReportRender) Write(w io.Writer, r *StatReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// YAMLStatReportRender 直方圖與分布這類純量陣列輸出成一行 [a, b, c]
type YAMLStatReportRender struct{}

func (yr *YAMLStatReportRender) Write(w io.Writer, r *StatReport) error {
	var doc yaml.Node
	if err := doc.Encode(r); err != nil {
		return err
	}
	flowScalarLists(&doc)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(&doc)
}

// flowScalarLists 只含純量的 sequence 改成 flow style，其餘維持 block
func flowScalarLists(n *yaml.Node) {
	if n == nil {
		return
	}
	scalars := n.Kind == yaml.SequenceNode
	for _, c := range n.Content {
		flowScalarLists(c)
		if c == nil || c.Kind != yaml.ScalarNode {
			scalars = false
		}
	}
	if scalars {
		n.Style = yaml.FlowStyle
	}
}
