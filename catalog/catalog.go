// Package catalog 管理模式設定檔：一個 mode_id / mode_name 對應一個平的 fs 內的設定檔。
package catalog

import (
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/policy"
	"github.com/zintix-labs/quantro/spec"
)

var (
	ErrDupID   = errs.NewFatal("duplicate mode id")
	ErrDupName = errs.NewFatal("duplicate mode name")
	ErrDupFile = errs.NewFatal("duplicate config file")
)

type Entry struct {
	ModeID     spec.ModeID
	Name       string
	ConfigName string
}

// Found Scan 找到的設定檔與解析結果
type Found struct {
	Entry
	Setting *spec.ModeSetting
}

type Summary struct {
	ModeID         spec.ModeID `json:"mode_id"`
	Name           string      `json:"name"`
	Policy         policy.Key  `json:"policy"`
	PlanesInteract bool        `json:"planes_interact"`
	Rows           int         `json:"rows"`
	Cols           int         `json:"cols"`
	Pieces         []string    `json:"pieces"`
}

func NewSummary(ms *spec.ModeSetting) Summary {
	sum := Summary{
		ModeID:         ms.ModeID,
		Name:           ms.ModeName,
		Policy:         ms.PolicyKey,
		PlanesInteract: ms.PlanesInteract,
		Rows:           ms.BoardSetting.Rows,
		Cols:           ms.BoardSetting.Columns,
		Pieces:         make([]string, len(ms.PieceSettings)),
	}
	for i, ps := range ms.PieceSettings {
		sum.Pieces[i] = ps.Name
	}
	return sum
}

// Catalog 註冊階段可 Register，Freeze 之後唯讀
type Catalog struct {
	files  *configFS
	byID   map[spec.ModeID]Entry
	byName map[string]Entry
	used   map[string]spec.ModeID // config 檔名 -> 使用它的模式
	ids    []spec.ModeID          // 已排序
	frozen bool
}

func New(cfg ...fs.FS) (*Catalog, error) {
	files, err := newConfigFS(cfg...)
	if err != nil {
		return nil, errs.Wrap(err, "can not create catalog")
	}
	return &Catalog{
		files:  files,
		byID:   map[spec.ModeID]Entry{},
		byName: map[string]Entry{},
		used:   map[string]spec.ModeID{},
	}, nil
}

func normName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register 全部通過檢查才寫入；任一筆失敗時 catalog 不變
func (c *Catalog) Register(ents ...Entry) error {
	if c.frozen {
		return errs.NewWarn("can not register when catalog already frozen")
	}
	batch := &Catalog{
		files:  c.files,
		byID:   map[spec.ModeID]Entry{},
		byName: map[string]Entry{},
		used:   map[string]spec.ModeID{},
	}
	for i := range ents {
		ents[i].Name = normName(ents[i].Name)
		e := ents[i]
		if e.Name == "" {
			return errs.NewFatal("mode name required")
		}
		if err := validFileName(e.ConfigName); err != nil {
			return err
		}
		if !c.files.has(e.ConfigName) {
			return errs.NewFatal(fmt.Sprintf("config file not found: %s", e.ConfigName))
		}
		for _, reg := range []*Catalog{c, batch} {
			if err := reg.conflict(e); err != nil {
				return err
			}
		}
		batch.add(e)
	}
	for _, e := range ents {
		c.add(e)
	}
	slices.Sort(c.ids)
	return nil
}

func (c *Catalog) conflict(e Entry) error {
	if _, ok := c.byID[e.ModeID]; ok {
		return errs.WrapWithExtra(ErrDupID, "register", fmt.Sprintf("mode_id=%d", e.ModeID))
	}
	if _, ok := c.byName[e.Name]; ok {
		return errs.WrapWithExtra(ErrDupName, "register", e.Name)
	}
	if id, ok := c.used[e.ConfigName]; ok {
		return errs.WrapWithExtra(ErrDupFile, "register", fmt.Sprintf("%s already used by mode_id=%d", e.ConfigName, id))
	}
	return nil
}

func (c *Catalog) add(e Entry) {
	c.byID[e.ModeID] = e
	c.byName[e.Name] = e
	c.used[e.ConfigName] = e.ModeID
	c.ids = append(c.ids, e.ModeID)
}

// Scan 解析所有尚未註冊的設定檔（檔名排序），不寫入 catalog
func (c *Catalog) Scan() ([]Found, error) {
	out := make([]Found, 0, len(c.files.index))
	for _, name := range c.files.names() {
		if _, ok := c.used[name]; ok {
			continue
		}
		ms, err := c.parse(name)
		if err != nil {
			return nil, err
		}
		out = append(out, Found{
			Entry:   Entry{ModeID: ms.ModeID, Name: normName(ms.ModeName), ConfigName: name},
			Setting: ms,
		})
	}
	return out, nil
}

func (c *Catalog) GetByID(id spec.ModeID) (Entry, bool) {
	e, ok := c.byID[id]
	return e, ok
}

func (c *Catalog) GetByName(name string) (Entry, bool) {
	e, ok := c.byName[normName(name)]
	return e, ok
}

func (c *Catalog) IDs() []spec.ModeID {
	if len(c.ids) == 0 {
		return nil
	}
	return slices.Clone(c.ids)
}

func (c *Catalog) All() []Entry {
	out := make([]Entry, len(c.ids))
	for i, id := range c.ids {
		out[i] = c.byID[id]
	}
	return out
}

func (c *Catalog) Freeze() { c.frozen = true }

func (c *Catalog) IsFrozen() bool { return c.frozen }

// ModeSettingByID 每次都重新讀檔解析，回傳的設定呼叫端可自由修改
func (c *Catalog) ModeSettingByID(id spec.ModeID) (*spec.ModeSetting, error) {
	e, ok := c.GetByID(id)
	if !ok {
		return nil, errs.NewWarn(fmt.Sprintf("mode id %d does not exist in catalog", id))
	}
	return c.load(e)
}

func (c *Catalog) ModeSettingByName(name string) (*spec.ModeSetting, error) {
	e, ok := c.GetByName(name)
	if !ok {
		return nil, errs.NewWarn(fmt.Sprintf("mode name %q does not exist in catalog", name))
	}
	return c.load(e)
}

func (c *Catalog) load(e Entry) (*spec.ModeSetting, error) {
	ms, err := c.parse(e.ConfigName)
	if err != nil {
		return nil, err
	}
	if ms.ModeID != e.ModeID {
		return nil, errs.NewFatal(fmt.Sprintf("config %s declares mode_id %d, registered as %d", e.ConfigName, ms.ModeID, e.ModeID))
	}
	return ms, nil
}

func (c *Catalog) parse(name string) (*spec.ModeSetting, error) {
	raw, err := c.files.read(name)
	if err != nil {
		return nil, err
	}
	var ms *spec.ModeSetting
	if configExt(name) == ".json" {
		ms, err = spec.GetModeSettingByJSON(raw)
	} else {
		ms, err = spec.GetModeSettingByYAML(raw)
	}
	if err != nil {
		return nil, errs.Wrap(err, name)
	}
	return ms, nil
}

// configExt 回傳小寫副檔名；不是設定檔時回傳空字串
func configExt(name string) string {
	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".yaml", ".yml", ".json":
		return ext
	}
	return ""
}

// validFileName 檔名必須是 basename、不以 . 開頭、副檔名為 yaml/yml/json
func validFileName(name string) error {
	switch {
	case name == "":
		return errs.NewFatal("empty config filename")
	case strings.ContainsAny(name, `/\:`):
		return errs.NewFatal(fmt.Sprintf("invalid config filename %q: must be a basename", name))
	case strings.HasPrefix(name, "."):
		return errs.NewFatal(fmt.Sprintf("invalid config filename %q: cannot start with '.'", name))
	case configExt(name) == "":
		return errs.NewFatal(fmt.Sprintf("invalid config filename %q: must end with .yaml, .yml or .json", name))
	}
	return nil
}

// configFS 多個平的 fs 合併成一個檔名索引；同名檔案出現在兩個來源時報錯
type configFS struct {
	src   []fs.FS
	index map[string]int // 檔名 -> src 位置
}

func newConfigFS(src ...fs.FS) (*configFS, error) {
	if len(src) == 0 {
		return nil, errs.NewFatal("no fs provided")
	}
	m := &configFS{src: src, index: map[string]int{}}
	for i, s := range src {
		if s == nil {
			return nil, errs.NewFatal(fmt.Sprintf("fs[%d] is nil", i))
		}
		ents, err := fs.ReadDir(s, ".")
		if err != nil {
			return nil, errs.Wrap(err, fmt.Sprintf("read fs[%d]", i))
		}
		for _, d := range ents {
			name := d.Name()
			if d.IsDir() {
				return nil, errs.NewFatal(fmt.Sprintf("config fs must be flat, found directory %q in fs[%d]", name, i))
			}
			if strings.HasPrefix(name, ".") || configExt(name) == "" {
				continue
			}
			if prev, ok := m.index[name]; ok {
				return nil, errs.WrapWithExtra(ErrDupFile, name, fmt.Sprintf("fs[%d] and fs[%d]", prev, i))
			}
			m.index[name] = i
		}
	}
	return m, nil
}

func (m *configFS) has(name string) bool {
	_, ok := m.index[name]
	return ok
}

func (m *configFS) names() []string {
	out := make([]string, 0, len(m.index))
	for name := range m.index {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func (m *configFS) read(name string) ([]byte, error) {
	i, ok := m.index[name]
	if !ok {
		return nil, errs.NewWarn(fmt.Sprintf("config file not found: %s", name))
	}
	raw, err := fs.ReadFile(m.src[i], name)
	if err != nil {
		return nil, errs.Wrap(err, "catalog read file error")
	}
	return raw, nil
}
