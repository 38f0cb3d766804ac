package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/obslint/obslint/internal/domain"
	"github.com/obslint/obslint/internal/store"
)

// label_values(label) or label_values(metric, label)
var labelValuesRe = regexp.MustCompile(`label_values\(\s*(?:[^,()]+,\s*)?([a-zA-Z_][a-zA-Z0-9_]*)\s*\)`)

// DashboardExtractor parses dashboard JSON trees. Panels may nest inside
// "row" containers to unbounded depth, and datasource references can appear
// on any object node, so extraction walks the whole tree rather than a flat
// top-level panels array.
type DashboardExtractor struct {
	Dir    string
	Logger *zap.Logger
}

func (e *DashboardExtractor) Name() string { return "dashboards" }

func (e *DashboardExtractor) Extract(root string, b *store.Builder) error {
	files, present, err := listFiles(root, e.Dir, ".json")
	if err != nil {
		return err
	}
	if !present {
		e.Logger.Info("skip: dashboards directory not found", zap.String("dir", e.Dir))
		return nil
	}
	for _, file := range files {
		data, err := os.ReadFile(filepath.Join(root, file))
		if err != nil {
			return err
		}
		if !gjson.ValidBytes(data) {
			return fmt.Errorf("dashboard %s: invalid JSON", file)
		}
		doc := gjson.ParseBytes(data)
		seen := map[string]bool{}
		e.walkPanels(doc.Get("panels"), file, b, seen)
		e.walkTemplating(doc, file, b)
		walkDatasourceNodes(doc, file, b, seen)
	}
	e.Logger.Debug("dashboard scan complete", zap.Int("files", len(files)))
	return nil
}

// walkPanels visits every panel, descending into row containers, and emits
// one DashboardQuery per target.
func (e *DashboardExtractor) walkPanels(panels gjson.Result, file string, b *store.Builder, seen map[string]bool) {
	panels.ForEach(func(_, panel gjson.Result) bool {
		if nested := panel.Get("panels"); nested.Exists() {
			e.walkPanels(nested, file, b, seen)
		}
		if panel.Get("type").String() == "row" {
			return true
		}
		panelType, panelUID := parseDatasource(panel.Get("datasource"))
		panelID := panel.Get("id").Int()
		panelTitle := panel.Get("title").String()
		panel.Get("targets").ForEach(func(_, target gjson.Result) bool {
			dsType, dsUID := parseDatasource(target.Get("datasource"))
			if dsType == "" {
				dsType = panelType
			}
			if dsUID == "" {
				dsUID = panelUID
			}
			expr := target.Get("expr").String()
			seen[file+"\x00"+expr+"\x00"+dsUID] = true
			b.AddQuery(domain.DashboardQuery{
				Expr:           expr,
				DatasourceType: dsType,
				DatasourceUID:  dsUID,
				PanelID:        panelID,
				PanelTitle:     panelTitle,
				DashboardFile:  file,
				FromTarget:     true,
				EditorMode:     target.Get("editorMode").String(),
				HasRange:       target.Get("range").Exists(),
				HasInstant:     target.Get("instant").Exists(),
			})
			return true
		})
		return true
	})
}

// walkTemplating emits template variables backed by the log backend.
func (e *DashboardExtractor) walkTemplating(doc gjson.Result, file string, b *store.Builder) {
	doc.Get("templating.list").ForEach(func(_, item gjson.Result) bool {
		dsType, _ := parseDatasource(item.Get("datasource"))
		if dsType != "loki" {
			return true
		}
		b.AddTemplateVariable(domain.TemplateVariable{
			Name:          item.Get("name").String(),
			QueriedLabel:  queriedLabel(item.Get("query")),
			DashboardFile: file,
		})
		return true
	})
}

// queriedLabel extracts the label a template variable queries, from either
// the structured object form or the label_values(...) string form.
func queriedLabel(query gjson.Result) string {
	if query.IsObject() {
		return query.Get("label").String()
	}
	if m := labelValuesRe.FindStringSubmatch(query.String()); m != nil {
		return m[1]
	}
	return ""
}

// walkDatasourceNodes recursively visits all object nodes reachable from the
// root, recording every datasource reference and any query expression not
// already captured through the panel walk (annotations, alerts, templating).
func walkDatasourceNodes(node gjson.Result, file string, b *store.Builder, seen map[string]bool) {
	if node.IsObject() {
		ds := node.Get("datasource")
		if ds.Exists() {
			dsType, dsUID := parseDatasource(ds)
			if dsType != "" || dsUID != "" {
				b.AddDatasourceRef(domain.DatasourceRef{
					UID:           dsUID,
					Type:          dsType,
					DashboardFile: file,
				})
			}
			if expr := node.Get("expr"); expr.Exists() {
				key := file + "\x00" + expr.String() + "\x00" + dsUID
				if !seen[key] {
					seen[key] = true
					b.AddQuery(domain.DashboardQuery{
						Expr:           expr.String(),
						DatasourceType: dsType,
						DatasourceUID:  dsUID,
						DashboardFile:  file,
					})
				}
			}
		}
	}
	if node.IsObject() || node.IsArray() {
		node.ForEach(func(_, child gjson.Result) bool {
			walkDatasourceNodes(child, file, b, seen)
			return true
		})
	}
}

// parseDatasource handles both datasource forms: a bare UID string and the
// structured {"type": ..., "uid": ...} object.
func parseDatasource(ds gjson.Result) (dsType, uid string) {
	if !ds.Exists() {
		return "", ""
	}
	if ds.IsObject() {
		return ds.Get("type").String(), ds.Get("uid").String()
	}
	return "", ds.String()
}
