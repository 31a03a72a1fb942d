package browser

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/RecoveryAshes/linkcounter/internal/extractor"
	"github.com/RecoveryAshes/linkcounter/internal/i18n"
	"github.com/RecoveryAshes/linkcounter/internal/models"
	"github.com/andybalholm/brotli"
	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog/log"
)

// StaticOptions 静态宿主选项
type StaticOptions struct {
	WaitTime       int                   // 请求超时(秒),0表示不限制
	HeaderProvider models.HeaderProvider // 可选
	Catalog        *i18n.Catalog
}

// StaticHost 静态宿主(使用Colly)
// 页面不执行脚本,消息由进程内的 extractor.Handler 应答
type StaticHost struct {
	messages
	opts StaticOptions

	mu      sync.Mutex
	tab     *models.Tab
	handler *extractor.Handler
}

// NewStaticHost 创建静态宿主
func NewStaticHost(opts StaticOptions) *StaticHost {
	return &StaticHost{
		messages: messages{catalog: opts.Catalog},
		opts:     opts,
	}
}

// newCollector 每次打开页面创建新的collector,避免colly的已访问记录阻止重复打开
func (h *StaticHost) newCollector() *colly.Collector {
	httpClient := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // 允许自签名证书
			},
		},
	}

	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
	)
	c.SetClient(httpClient)
	if h.opts.WaitTime > 0 {
		c.SetRequestTimeout(time.Duration(h.opts.WaitTime) * time.Second)
	}
	return c
}

// Open 获取页面并将其注册为活动标签页
func (h *StaticHost) Open(ctx context.Context, targetURL string) error {
	if err := models.ValidateURL(targetURL); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	c := h.newCollector()

	var (
		body     []byte
		finalURL string
		fetchErr error
	)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}

		if h.opts.HeaderProvider != nil {
			headers, err := h.opts.HeaderProvider.GetHeaders()
			if err != nil {
				log.Warn().Err(err).Msg("获取HTTP头部失败")
			} else {
				for name, values := range headers {
					if len(values) > 0 {
						r.Headers.Set(name, values[0])
					}
				}
			}
		}

		log.Debug().Str("url", r.URL.String()).Msg("访问页面")
	})

	c.OnResponse(func(r *colly.Response) {
		finalURL = r.Request.URL.String()
		if r.StatusCode >= 400 {
			log.Warn().Int("status", r.StatusCode).Str("url", finalURL).Msg("页面返回错误状态码,仍然统计其中的链接")
		}

		decoded, err := decodeBody(r.Headers.Get("Content-Encoding"), r.Body)
		if err != nil {
			log.Warn().Err(err).Str("url", finalURL).Msg("解压响应失败,使用原始内容")
			decoded = r.Body
		}
		body = decoded
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(targetURL); err != nil {
		return fmt.Errorf("获取页面失败 [%s]: %w", targetURL, err)
	}
	if fetchErr != nil {
		return fmt.Errorf("获取页面失败 [%s]: %w", targetURL, fetchErr)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if finalURL == "" {
		return fmt.Errorf("获取页面失败 [%s]: 没有响应", targetURL)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("解析页面失败 [%s]: %w", finalURL, err)
	}

	handler, err := extractor.NewHandler(doc, finalURL)
	if err != nil {
		return err
	}

	tab := &models.Tab{
		ID:     models.NewTabID(),
		URL:    finalURL,
		Title:  strings.TrimSpace(doc.Find("title").First().Text()),
		Active: true,
	}

	h.mu.Lock()
	h.tab = tab
	h.handler = handler
	h.mu.Unlock()

	log.Info().Str("tab", tab.ID).Str("url", tab.URL).Int("size", len(body)).Msg("页面已打开")
	return nil
}

// QueryActiveTab 返回当前打开的页面
func (h *StaticHost) QueryActiveTab(ctx context.Context) (models.Tab, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.tab == nil {
		return models.Tab{}, ErrNoActiveTab
	}
	return *h.tab, nil
}

// SendMessage 将请求交给页面侧处理器,不响应时返回nil
func (h *StaticHost) SendMessage(ctx context.Context, tabID string, req models.Request) (json.RawMessage, error) {
	h.mu.Lock()
	tab, handler := h.tab, h.handler
	h.mu.Unlock()

	if tab == nil {
		return nil, ErrNoActiveTab
	}
	if tab.ID != tabID {
		return nil, fmt.Errorf("%w: %s", ErrNoActiveTab, tabID)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snapshot, ok := handler.HandleMessage(req)
	if !ok {
		return nil, nil
	}

	data, err := snapshot.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("序列化页面数据失败: %w", err)
	}
	return data, nil
}

// Close 关闭标签页
func (h *StaticHost) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.tab = nil
	h.handler = nil
	return nil
}

// decodeBody 根据Content-Encoding解压响应体
// colly已处理过的gzip内容不再重复解压
func decodeBody(contentEncoding string, body []byte) ([]byte, error) {
	encoding := strings.ToLower(strings.TrimSpace(contentEncoding))

	switch encoding {
	case "gzip":
		if len(body) < 2 || body[0] != 0x1f || body[1] != 0x8b {
			return body, nil
		}
		reader, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gzip解压失败: %w", err)
		}
		defer reader.Close()
		return readAll(reader, "gzip")

	case "deflate":
		reader := flate.NewReader(bytes.NewReader(body))
		defer reader.Close()
		return readAll(reader, "deflate")

	case "br":
		return readAll(brotli.NewReader(bytes.NewReader(body)), "brotli")

	case "", "identity":
		return body, nil

	default:
		log.Warn().Str("encoding", contentEncoding).Msg("未知的Content-Encoding")
		return body, nil
	}
}

func readAll(r io.Reader, name string) ([]byte, error) {
	decoded, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s读取失败: %w", name, err)
	}
	return decoded, nil
}
