package extractor

import (
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/RecoveryAshes/linkcounter/internal/models"
	"github.com/rs/zerolog/log"
)

// PageScript 在浏览器页面内执行的提取脚本
// 参数为请求消息,非 get-data 请求返回 undefined(不响应)
const PageScript = `(request) => {
	if (!request || request.action !== 'get-data') {
		return undefined;
	}

	var data = {
		url: document.location.href,
		links: [],
		total: 0,
		internal: 0,
		external: 0
	};

	for (var i = 0, count = document.links.length; i < count; i++) {
		var link = document.links[i];
		var isLocal = link.hostname === document.location.hostname;

		if (isLocal) {
			data.internal++;
		} else {
			data.external++;
		}

		data.links.push({ url: link.href, text: link.textContent, local: isLocal });
	}

	data.total = data.links.length;
	return data;
}`

// Handler 页面侧的消息处理器
// 持有已解析的文档,对 get-data 请求同步返回快照
type Handler struct {
	doc     *goquery.Document
	pageURL string
}

// NewHandler 创建消息处理器
func NewHandler(doc *goquery.Document, pageURL string) (*Handler, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	if _, err := url.Parse(pageURL); err != nil {
		return nil, fmt.Errorf("解析页面URL失败: %w", err)
	}

	return &Handler{
		doc:     doc,
		pageURL: pageURL,
	}, nil
}

// HandleMessage 处理请求
// 返回false表示不响应(未知动作),这不是错误
func (h *Handler) HandleMessage(req models.Request) (*models.PageSnapshot, bool) {
	if req.Action != models.ActionGetData {
		log.Debug().Str("request_id", req.ID).Str("action", string(req.Action)).Msg("忽略未知动作")
		return nil, false
	}

	snapshot, err := CollectLinks(h.doc, h.pageURL)
	if err != nil {
		// NewHandler已验证URL,这里不会发生
		log.Error().Err(err).Str("request_id", req.ID).Msg("收集链接失败")
		return nil, false
	}

	return snapshot, true
}
