package core

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/RecoveryAshes/linkcounter/internal/utils"
)

// BatchReportFile 批量扫描摘要文件名
const BatchReportFile = "batch_report.json"

// BatchScanner 批量扫描器,按顺序逐个扫描
type BatchScanner struct {
	scanner       *Scanner
	outputDir     string
	batchDelay    time.Duration
	continueOnErr bool
	progress      io.Writer
}

// BatchResult 单个URL的结果
type BatchResult struct {
	URL         string      `json:"url"`
	Success     bool        `json:"success"`
	Error       string      `json:"error,omitempty"`
	Result      *ScanResult `json:"result,omitempty"`
	ProcessedAt time.Time   `json:"processed_at"`
}

// BatchSummary 批量扫描摘要
type BatchSummary struct {
	TotalURLs     int           `json:"total_urls"`
	SuccessCount  int           `json:"success_count"`
	FailCount     int           `json:"fail_count"`
	TotalLinks    int           `json:"total_links"`
	TotalInternal int           `json:"total_internal"`
	TotalExternal int           `json:"total_external"`
	TotalDuration float64       `json:"total_duration"`
	Results       []BatchResult `json:"results"`
	ReportPath    string        `json:"-"`
}

// NewBatchScanner 创建批量扫描器
// batchDelay 为两个URL之间的等待秒数
func NewBatchScanner(scanner *Scanner, outputDir string, batchDelay int, continueOnErr bool) *BatchScanner {
	return &BatchScanner{
		scanner:       scanner,
		outputDir:     outputDir,
		batchDelay:    time.Duration(batchDelay) * time.Second,
		continueOnErr: continueOnErr,
		progress:      os.Stderr,
	}
}

// SetProgressWriter 设置进度条输出位置
func (bs *BatchScanner) SetProgressWriter(w io.Writer) {
	bs.progress = w
}

// ScanBatch 批量扫描URL列表,摘要保存到输出目录
func (bs *BatchScanner) ScanBatch(ctx context.Context, urls []string) (*BatchSummary, error) {
	utils.Infof("开始批量扫描: %d个URL", len(urls))

	summary := &BatchSummary{
		TotalURLs: len(urls),
		Results:   make([]BatchResult, 0, len(urls)),
	}

	bar := utils.NewProgressBar(len(urls), "扫描中", bs.progress)
	startTime := time.Now()

	for i, targetURL := range urls {
		if err := ctx.Err(); err != nil {
			utils.Warnf("批量扫描被取消: %v", err)
			break
		}

		result := BatchResult{URL: targetURL, ProcessedAt: time.Now()}
		scanResult, err := bs.scanner.Scan(ctx, targetURL)
		if err != nil {
			result.Error = err.Error()
			summary.FailCount++
			utils.Errorf("扫描失败 [%s]: %v", targetURL, err)
		} else {
			result.Success = true
			result.Result = scanResult
			summary.SuccessCount++
			summary.TotalLinks += scanResult.Total
			summary.TotalInternal += scanResult.Internal
			summary.TotalExternal += scanResult.External
		}
		summary.Results = append(summary.Results, result)
		bar.Add(1)

		if err != nil && !bs.continueOnErr {
			utils.Warn("批量扫描中止 (--continue-on-error=false)")
			break
		}

		// 最后一个URL不需要延迟
		if i < len(urls)-1 && bs.batchDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(bs.batchDelay):
			}
		}
	}
	bar.Finish()

	summary.TotalDuration = time.Since(startTime).Seconds()

	path, err := utils.NewReporter(bs.outputDir).SaveJSON(BatchReportFile, summary)
	if err != nil {
		return summary, err
	}
	summary.ReportPath = path

	bs.printSummary(summary)
	return summary, nil
}

// printSummary 打印批量扫描摘要
func (bs *BatchScanner) printSummary(summary *BatchSummary) {
	utils.Info("==================================================")
	utils.Info("批量扫描摘要")
	utils.Info("==================================================")
	utils.Infof("总URL数: %d", summary.TotalURLs)
	utils.Infof("成功: %d", summary.SuccessCount)
	utils.Infof("失败: %d", summary.FailCount)
	utils.Infof("链接总数: %d (内部 %d, 外部 %d)", summary.TotalLinks, summary.TotalInternal, summary.TotalExternal)
	utils.Infof("总耗时: %.2f秒", summary.TotalDuration)
	utils.Infof("摘要文件: %s", summary.ReportPath)

	if summary.FailCount > 0 {
		utils.Warn("失败的URL:")
		for _, result := range summary.Results {
			if !result.Success {
				utils.Warnf("  - %s: %s", result.URL, result.Error)
			}
		}
	}
}
