package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/RecoveryAshes/linkcounter/internal/browser"
	"github.com/RecoveryAshes/linkcounter/internal/core"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/spf13/cobra"
)

// checkResult 单项环境检查结果
type checkResult struct {
	Name   string
	OK     bool
	Detail string
	Fatal  bool // 失败时整体检查不通过
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "检查运行环境(浏览器、内存、输出目录)",
	RunE: func(cmd *cobra.Command, args []string) error {
		results := runChecks(appConfig)

		fmt.Println("==============================================")
		fmt.Println("  linkcounter 环境检查")
		fmt.Println("==============================================")

		allOK := true
		for _, r := range results {
			mark := "✅"
			if !r.OK {
				mark = "⚠️ "
				if r.Fatal {
					mark = "❌"
					allOK = false
				}
			}
			fmt.Printf("%s %s: %s\n", mark, r.Name, r.Detail)
		}

		fmt.Println("==============================================")
		if !allOK {
			return fmt.Errorf("环境检查未通过")
		}
		fmt.Println("✅ 环境检查通过")
		return nil
	},
}

func runChecks(config *core.Config) []checkResult {
	results := []checkResult{{
		Name:   "Go运行时",
		OK:     true,
		Detail: fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
	}}

	// 动态模式依赖本地浏览器; 找不到时rod会尝试下载
	if path, found := launcher.LookPath(); found {
		results = append(results, checkResult{Name: "浏览器", OK: true, Detail: path})
	} else {
		results = append(results, checkResult{Name: "浏览器", Detail: "未找到Chrome/Chromium,动态模式首次运行时将自动下载"})
	}

	results = append(results, checkMemory(config.Scan.SafetyThreshold))
	results = append(results, checkWritable(config.Scan.DownloadDir))
	return results
}

func checkMemory(thresholdMB int) checkResult {
	status, err := browser.ReadMemoryStatus()
	if err != nil {
		return checkResult{Name: "内存", Detail: err.Error()}
	}

	detail := fmt.Sprintf("可用 %d MB / 总计 %d MB (阈值 %d MB)", status.Available>>20, status.Total>>20, thresholdMB)
	return checkResult{
		Name:   "内存",
		OK:     browser.CheckMemory(thresholdMB) == nil,
		Detail: detail,
	}
}

func checkWritable(dir string) checkResult {
	result := checkResult{Name: "输出目录", Detail: dir, Fatal: true}

	if err := os.MkdirAll(dir, 0755); err != nil {
		result.Detail = fmt.Sprintf("%s (无法创建: %v)", dir, err)
		return result
	}

	probe, err := os.CreateTemp(dir, ".linkcounter-*")
	if err != nil {
		result.Detail = fmt.Sprintf("%s (不可写: %v)", dir, err)
		return result
	}
	probe.Close()
	os.Remove(probe.Name())

	if abs, err := filepath.Abs(dir); err == nil {
		result.Detail = abs
	}
	result.OK = true
	return result
}
