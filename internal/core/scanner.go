package core

import (
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"time"

	"github.com/RecoveryAshes/linkcounter/internal/browser"
	"github.com/RecoveryAshes/linkcounter/internal/i18n"
	"github.com/RecoveryAshes/linkcounter/internal/models"
	"github.com/RecoveryAshes/linkcounter/internal/presenter"
	"github.com/RecoveryAshes/linkcounter/internal/utils"
)

// Host 可以打开页面的宿主环境
type Host interface {
	presenter.Host
	Open(ctx context.Context, targetURL string) error
	Close() error
}

// ScanOptions 单次扫描的输出选项
type ScanOptions struct {
	Exports          []string // txt, csv
	HTML             bool     // 保存最终视图
	DomainSeparation bool     // 报告按主机名分目录
	Search           bool     // 切换到搜索视图
	Query            string   // 搜索关键字,空值显示全部
}

// ScanResult 单个URL的扫描结果
type ScanResult struct {
	URL         string               `json:"url"`
	Tab         models.Tab           `json:"tab"`
	Snapshot    *models.PageSnapshot `json:"-"`
	Total       int                  `json:"total"`
	Internal    int                  `json:"internal"`
	External    int                  `json:"external"`
	View        string               `json:"view"`
	VisibleRows []string             `json:"visible_rows,omitempty"`
	Reports     []string             `json:"reports,omitempty"`
	HTMLPath    string               `json:"html_path,omitempty"`
	Duration    float64              `json:"duration"`
}

// Scanner 打开页面、请求数据并输出报告
type Scanner struct {
	config         models.ScanConfig
	opts           ScanOptions
	headerProvider models.HeaderProvider
	catalog        *i18n.Catalog

	// newHost 测试中可替换
	newHost func() Host
}

// NewScanner 创建扫描器
func NewScanner(config models.ScanConfig, opts ScanOptions, headerProvider models.HeaderProvider) (*Scanner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	catalog, err := i18n.Load(config.Locale)
	if err != nil {
		return nil, err
	}

	s := &Scanner{
		config:         config,
		opts:           opts,
		headerProvider: headerProvider,
		catalog:        catalog,
	}
	s.newHost = s.defaultHost
	return s, nil
}

func (s *Scanner) defaultHost() Host {
	if s.config.Mode == models.ModeDynamic {
		return browser.NewDynamicHost(browser.DynamicOptions{
			Headless:        s.config.Headless,
			WaitTime:        s.config.WaitTime,
			SafetyThreshold: s.config.SafetyThreshold,
			HeaderProvider:  s.headerProvider,
			Catalog:         s.catalog,
		})
	}

	return browser.NewStaticHost(browser.StaticOptions{
		WaitTime:       s.config.WaitTime,
		HeaderProvider: s.headerProvider,
		Catalog:        s.catalog,
	})
}

// Scan 扫描单个URL
//
// 执行流程:
//  1. 打开页面作为活动标签页
//  2. 创建弹出层并请求页面数据
//  3. 导出报告
//  4. 可选: 切换到搜索视图并过滤
//  5. 可选: 保存最终视图
func (s *Scanner) Scan(ctx context.Context, targetURL string) (*ScanResult, error) {
	startTime := time.Now()
	utils.Infof("开始扫描: %s (模式: %s)", targetURL, s.config.Mode)

	host := s.newHost()
	defer host.Close()

	if err := host.Open(ctx, targetURL); err != nil {
		return nil, fmt.Errorf("打开页面失败: %w", err)
	}

	downloadDir := s.config.DownloadDir
	if s.opts.DomainSeparation {
		downloadDir = filepath.Join(downloadDir, utils.HostDir(targetURL))
	}

	p := presenter.New(host, presenter.Options{DownloadDir: downloadDir})
	defer p.Close()

	if err := p.Load(ctx); err != nil {
		return nil, err
	}

	snapshot := p.Snapshot()
	if snapshot == nil {
		return nil, fmt.Errorf("%w: 页面没有响应", presenter.ErrNoSnapshot)
	}

	result := &ScanResult{
		URL:      targetURL,
		Snapshot: snapshot,
		Total:    snapshot.Total,
		Internal: snapshot.InternalCount,
		External: snapshot.ExternalCount,
	}
	if tab, err := host.QueryActiveTab(ctx); err == nil {
		result.Tab = tab
	}

	reports, err := s.export(p, snapshot)
	if err != nil {
		return nil, err
	}
	result.Reports = reports

	if s.opts.Search {
		if err := p.ShowSearch(); err != nil {
			utils.Warnf("无法切换到搜索视图: %v", err)
		} else {
			p.FilterRows(s.opts.Query)
			result.VisibleRows = p.VisibleRows()
			utils.Infof("搜索 %q: %d/%d 个链接匹配", s.opts.Query, len(result.VisibleRows), snapshot.Total)
		}
	}
	result.View = p.View().String()

	if s.opts.HTML {
		path, err := s.saveHTML(p, downloadDir, snapshot.SourceURL)
		if err != nil {
			return nil, err
		}
		result.HTMLPath = path
	}

	result.Duration = time.Since(startTime).Seconds()
	utils.Infof("扫描完成: %s (全部 %d, 内部 %d, 外部 %d, 耗时 %.2f秒)",
		targetURL, result.Total, result.Internal, result.External, result.Duration)
	return result, nil
}

// export 按配置的格式导出报告; 没有链接时不导出
func (s *Scanner) export(p *presenter.Presenter, snapshot *models.PageSnapshot) ([]string, error) {
	if snapshot.Total == 0 {
		if len(s.opts.Exports) > 0 {
			utils.Warn("页面没有链接,跳过导出")
		}
		return nil, nil
	}

	reports := make([]string, 0, len(s.opts.Exports))
	for _, format := range s.opts.Exports {
		var ok bool
		asCSV := format == ExportCSV

		switch format {
		case ExportTXT:
			ok = p.ExportText()
		case ExportCSV:
			ok = p.ExportCSV()
		default:
			return reports, fmt.Errorf("无效的导出格式: %s", format)
		}

		if !ok {
			return reports, fmt.Errorf("保存报告失败: %s", p.ReportPath(asCSV))
		}
		reports = append(reports, p.ReportPath(asCSV))
	}
	return reports, nil
}

const htmlPage = `<!DOCTYPE html>
<html lang="%s">
<head><meta charset="utf-8"><title>%s</title></head>
<body>
%s
</body>
</html>
`

// saveHTML 保存弹出层当前视图
func (s *Scanner) saveHTML(p *presenter.Presenter, dir, sourceURL string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("创建输出目录失败: %w", err)
	}

	path := filepath.Join(dir, s.catalog.GetMessage(i18n.KeyReportName)+".html")
	content := fmt.Sprintf(htmlPage, s.catalog.Tag(), html.EscapeString(sourceURL), p.Body())
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("保存视图失败: %w", err)
	}

	utils.Infof("视图已保存: %s", path)
	return path, nil
}
