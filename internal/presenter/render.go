package presenter

import (
	"html/template"
	"strings"

	"github.com/RecoveryAshes/linkcounter/internal/i18n"
	"github.com/RecoveryAshes/linkcounter/internal/models"
	"github.com/rs/zerolog/log"
)

var summaryTemplate = template.Must(template.New("summary").Parse(
	`<div class="box anchor">{{.Labels.Total}} (<span id="total">{{.Snapshot.Total}}</span>)</div>` +
		`<div class="row">` +
		`<div class="box internal">{{.Labels.Internal}} (<span id="internal">{{.Snapshot.InternalCount}}</span>)</div>` +
		`<div class="box external">{{.Labels.External}} (<span id="external">{{.Snapshot.ExternalCount}}</span>)</div>` +
		`</div>` +
		`{{if gt .Snapshot.Total 0}}` +
		`<div class="row">` +
		`<div class="export" id="export"><span id="text">{{.Labels.ExportTXT}}</span> <span id="csv">{{.Labels.ExportCSV}}</span></div>` +
		`<div class="search" id="search">{{.Labels.Search}} <small>&gt;&gt;&gt;</small></div>` +
		`</div>` +
		`{{end}}`))

var searchTemplate = template.Must(template.New("search").Parse(
	`<input type="text" placeholder="{{.Labels.Search}}" id="searchInput" />` +
		`<table id="linkTable">` +
		`<tr><th>{{.Labels.URL}}</th><th>{{.Labels.Text}}</th></tr>` +
		`{{range .Snapshot.Links}}` +
		`<tr class="{{if .IsLocal}}int{{else}}ext{{end}}"><td>{{.URL}}</td><td>{{.Text}}</td></tr>` +
		`{{end}}` +
		`</table>`))

type labels struct {
	Total, Internal, External string
	ExportTXT, ExportCSV      string
	Search, URL, Text         string
}

type viewData struct {
	Labels   labels
	Snapshot *models.PageSnapshot
}

func (p *Presenter) viewData(snapshot *models.PageSnapshot) viewData {
	return viewData{
		Labels: labels{
			Total:     p.msg(i18n.KeyTotal),
			Internal:  p.msg(i18n.KeyInternal),
			External:  p.msg(i18n.KeyExternal),
			ExportTXT: p.msg(i18n.KeyExportTXT),
			ExportCSV: p.msg(i18n.KeyExportCSV),
			Search:    p.msg(i18n.KeySearch),
			URL:       p.msg(i18n.KeyURL),
			Text:      p.msg(i18n.KeyText),
		},
		Snapshot: snapshot,
	}
}

// RenderSummary 渲染统计视图
// 链接总数为0时不包含导出和搜索入口
func (p *Presenter) RenderSummary(snapshot *models.PageSnapshot) string {
	return p.execute(summaryTemplate, snapshot)
}

// RenderSearch 渲染搜索视图: 搜索框和链接表格
// 外部链接的行使用 "ext" 类,内部链接使用 "int" 类
func (p *Presenter) RenderSearch(snapshot *models.PageSnapshot) string {
	return p.execute(searchTemplate, snapshot)
}

func (p *Presenter) execute(tmpl *template.Template, snapshot *models.PageSnapshot) string {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, p.viewData(snapshot)); err != nil {
		log.Error().Err(err).Str("template", tmpl.Name()).Msg("渲染模板失败")
		return ""
	}
	return sb.String()
}
