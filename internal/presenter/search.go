package presenter

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

const hiddenStyle = "display: none"

// ShowSearch 从统计视图切换到搜索视图,切换后不可返回
func (p *Presenter) ShowSearch() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if p.view == ViewSearch {
		return nil
	}
	if p.snapshot == nil {
		return ErrNoSnapshot
	}
	if p.snapshot.Total == 0 {
		return ErrSearchUnavailable
	}

	markup := p.RenderSearch(p.snapshot)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return fmt.Errorf("解析搜索视图失败: %w", err)
	}

	p.searchDoc = doc
	p.body = markup
	p.view = ViewSearch
	return nil
}

// FilterRows 按第一列文本过滤表格行(区分大小写的子串匹配)
// 空查询显示所有行,每次输入都重新计算
func (p *Presenter) FilterRows(query string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.searchDoc == nil {
		return
	}

	visible := 0
	p.rows().Each(func(i int, row *goquery.Selection) {
		if strings.Contains(row.Find("td").First().Text(), query) {
			row.RemoveAttr("style")
			visible++
		} else {
			row.SetAttr("style", hiddenStyle)
		}
	})

	if body, err := p.searchDoc.Find("body").Html(); err == nil {
		p.body = body
	} else {
		log.Warn().Err(err).Msg("渲染搜索结果失败")
	}

	log.Debug().Str("query", query).Int("visible", visible).Msg("过滤链接表格")
}

// VisibleRows 返回当前可见行的URL
func (p *Presenter) VisibleRows() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.searchDoc == nil {
		return nil
	}

	urls := make([]string, 0)
	p.rows().Each(func(i int, row *goquery.Selection) {
		if style, _ := row.Attr("style"); style != hiddenStyle {
			urls = append(urls, row.Find("td").First().Text())
		}
	})
	return urls
}

// rows 返回含数据单元格的行,表头行不参与过滤
func (p *Presenter) rows() *goquery.Selection {
	return p.searchDoc.Find("#linkTable tr").FilterFunction(func(i int, row *goquery.Selection) bool {
		return row.Find("td").Length() > 0
	})
}
