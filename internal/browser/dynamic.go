package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/RecoveryAshes/linkcounter/internal/extractor"
	"github.com/RecoveryAshes/linkcounter/internal/i18n"
	"github.com/RecoveryAshes/linkcounter/internal/models"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog/log"
)

// ErrLaunchFailed 无法启动或连接浏览器
var ErrLaunchFailed = errors.New("启动浏览器失败")

// DynamicOptions 动态宿主选项
type DynamicOptions struct {
	Headless        bool
	WaitTime        int // 页面加载后的额外等待(秒)
	SafetyThreshold int // 启动浏览器所需的最小可用内存(MB)
	HeaderProvider  models.HeaderProvider
	Catalog         *i18n.Catalog
}

// DynamicHost 动态宿主(使用go-rod)
// 每个宿主只持有一个标签页,消息通过在页面内执行提取脚本应答
type DynamicHost struct {
	messages
	opts DynamicOptions

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	tab      *models.Tab
}

// NewDynamicHost 创建动态宿主
func NewDynamicHost(opts DynamicOptions) *DynamicHost {
	return &DynamicHost{
		messages: messages{catalog: opts.Catalog},
		opts:     opts,
	}
}

// Open 启动浏览器并在新标签页中打开URL
func (h *DynamicHost) Open(ctx context.Context, targetURL string) (err error) {
	if err := models.ValidateURL(targetURL); err != nil {
		return err
	}

	if err := CheckMemory(h.opts.SafetyThreshold); err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("打开页面panic: %v", r)
			log.Error().Str("url", targetURL).Interface("panic", r).Msg("捕获panic")
		}
		if err != nil {
			h.Close()
		}
	}()

	if err := h.launchBrowser(); err != nil {
		return err
	}

	page, err := h.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return fmt.Errorf("创建标签页失败: %w", err)
	}
	h.page = page

	if err := h.applyHeaders(page); err != nil {
		log.Warn().Err(err).Msg("设置HTTP头部失败")
	}

	if err := page.Navigate(targetURL); err != nil {
		return fmt.Errorf("导航失败 [%s]: %w", targetURL, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("等待页面加载失败 [%s]: %w", targetURL, err)
	}

	// 额外等待动态内容
	if h.opts.WaitTime > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(h.opts.WaitTime) * time.Second):
		}
	}

	info, err := page.Info()
	if err != nil {
		return fmt.Errorf("获取标签页信息失败: %w", err)
	}

	h.mu.Lock()
	h.tab = &models.Tab{
		ID:     string(page.TargetID),
		URL:    info.URL,
		Title:  info.Title,
		Active: true,
	}
	h.mu.Unlock()

	log.Info().Str("tab", string(page.TargetID)).Str("url", info.URL).Msg("页面加载完成")
	return nil
}

// launchBrowser 启动浏览器
func (h *DynamicHost) launchBrowser() error {
	l := launcher.New().Headless(h.opts.Headless)

	// 优先使用本地浏览器,找不到时由rod下载
	if path, found := launcher.LookPath(); found {
		l = l.Bin(path)
	}

	// 允许访问自签名、过期或主机名不匹配的HTTPS站点
	l = l.Set("ignore-certificate-errors")

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLaunchFailed, err)
	}
	h.launcher = l

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("%w: 连接失败: %v", ErrLaunchFailed, err)
	}
	h.browser = browser

	log.Debug().Str("control_url", controlURL).Bool("headless", h.opts.Headless).Msg("浏览器已启动")
	return nil
}

// applyHeaders 将自定义头部附加到标签页的所有请求
func (h *DynamicHost) applyHeaders(page *rod.Page) error {
	if h.opts.HeaderProvider == nil {
		return nil
	}

	headers, err := h.opts.HeaderProvider.GetHeaders()
	if err != nil {
		return err
	}

	dict := make([]string, 0, len(headers)*2)
	for name, values := range headers {
		// 压缩协商由浏览器处理
		if len(values) == 0 || name == "Accept-Encoding" {
			continue
		}
		dict = append(dict, name, values[0])
	}
	if len(dict) == 0 {
		return nil
	}

	_, err = page.SetExtraHeaders(dict)
	return err
}

// QueryActiveTab 返回当前标签页
func (h *DynamicHost) QueryActiveTab(ctx context.Context) (models.Tab, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.tab == nil {
		return models.Tab{}, ErrNoActiveTab
	}
	return *h.tab, nil
}

// SendMessage 在页面内执行提取脚本,脚本返回undefined表示不响应
func (h *DynamicHost) SendMessage(ctx context.Context, tabID string, req models.Request) (json.RawMessage, error) {
	h.mu.Lock()
	tab, page := h.tab, h.page
	h.mu.Unlock()

	if tab == nil || page == nil {
		return nil, ErrNoActiveTab
	}
	if tab.ID != tabID {
		return nil, fmt.Errorf("%w: %s", ErrNoActiveTab, tabID)
	}

	result, err := page.Context(ctx).Evaluate(rod.Eval(extractor.PageScript, req))
	if err != nil {
		log.Error().Err(err).Str("tab", tabID).Msg("页面脚本执行失败")
		return nil, fmt.Errorf("执行页面脚本失败: %w", err)
	}

	if result.Type == proto.RuntimeRemoteObjectTypeUndefined {
		log.Debug().Str("request_id", req.ID).Msg("页面未响应")
		return nil, nil
	}

	raw, err := result.Value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("序列化脚本结果失败: %w", err)
	}
	return raw, nil
}

// Close 关闭标签页和浏览器
func (h *DynamicHost) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.tab = nil
	h.page = nil

	var err error
	if h.browser != nil {
		err = h.browser.Close()
		h.browser = nil
		log.Debug().Msg("浏览器已关闭")
	}
	if h.launcher != nil {
		h.launcher.Cleanup()
		h.launcher = nil
	}
	return err
}
