package extractor

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/RecoveryAshes/linkcounter/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// CollectLinks 按文档顺序收集页面中的所有超链接并分类
// 与浏览器的 document.links 一致: 带href属性的<a>和<area>元素
func CollectLinks(doc *goquery.Document, pageURL string) (*models.PageSnapshot, error) {
	page, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("解析页面URL失败: %w", err)
	}

	base := documentBase(doc, page)
	pageHost := strings.ToLower(page.Hostname())

	links := make([]models.LinkRecord, 0)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		// 只看HTML命名空间: SVG等命名空间的<a>不属于document.links
		if n.Type == html.ElementNode && n.Namespace == "" {
			switch n.DataAtom {
			case atom.A, atom.Area:
				if href, ok := attr(n, "href"); ok {
					resolved, host := resolveHref(base, href)
					links = append(links, models.LinkRecord{
						URL:     resolved,
						Text:    textContent(n),
						IsLocal: host == pageHost,
					})
				}
			case atom.Template:
				// 模板内容属于独立的DocumentFragment
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, root := range doc.Nodes {
		walk(root)
	}

	snapshot := models.NewPageSnapshot(page.String(), links)
	log.Debug().
		Str("url", snapshot.SourceURL).
		Int("total", snapshot.Total).
		Int("internal", snapshot.InternalCount).
		Int("external", snapshot.ExternalCount).
		Msg("链接收集完成")

	return snapshot, nil
}

// CollectLinksFromHTML 解析HTML后收集链接
func CollectLinksFromHTML(r io.Reader, pageURL string) (*models.PageSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("解析HTML失败: %w", err)
	}
	return CollectLinks(doc, pageURL)
}

// documentBase 返回文档的基准URL,第一个<base href>优先
func documentBase(doc *goquery.Document, page *url.URL) *url.URL {
	href, ok := doc.Find("base[href]").First().Attr("href")
	if !ok {
		return page
	}

	ref, err := url.Parse(cleanHref(href))
	if err != nil {
		log.Debug().Str("href", href).Err(err).Msg("忽略无效的base元素")
		return page
	}
	return page.ResolveReference(ref)
}

// resolveHref 将href解析为绝对URL,返回URL和小写主机名
// 主机名转为小写,有主机名但路径为空时补"/",与浏览器的 a.href 相同
// 无法解析的href保留原值,主机名为空
func resolveHref(base *url.URL, href string) (string, string) {
	href = cleanHref(href)

	ref, err := url.Parse(href)
	if err != nil {
		log.Debug().Str("href", href).Err(err).Msg("无法解析链接地址")
		return href, ""
	}

	abs := base.ResolveReference(ref)
	abs.Host = strings.ToLower(abs.Host)
	if abs.Host != "" && abs.Path == "" && abs.Opaque == "" {
		abs.Path = "/"
		abs.RawPath = ""
	}
	return abs.String(), abs.Hostname()
}

// cleanHref 去掉首尾的C0控制字符和空格,删除所有制表符和换行符
// 浏览器解析URL前做同样的处理
func cleanHref(href string) string {
	href = strings.TrimFunc(href, func(r rune) bool { return r <= 0x20 })
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, href)
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// textContent 拼接所有后代文本节点,与DOM的textContent相同
func textContent(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return sb.String()
}
