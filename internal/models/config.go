package models

import "fmt"

// ScanMode 页面获取模式
type ScanMode string

const (
	ModeStatic  ScanMode = "static"  // 静态获取(Colly)
	ModeDynamic ScanMode = "dynamic" // 浏览器渲染(Rod)
)

// ScanConfig 扫描配置
type ScanConfig struct {
	Mode            ScanMode `json:"mode" mapstructure:"mode"`                         // 获取模式 (默认:static)
	WaitTime        int      `json:"wait_time" mapstructure:"wait_time"`               // 页面等待时间(秒) (默认:3)
	Headless        bool     `json:"headless" mapstructure:"headless"`                 // 无头模式 (默认:true)
	Locale          string   `json:"locale" mapstructure:"locale"`                     // 界面语言 (默认:en)
	DownloadDir     string   `json:"download_dir" mapstructure:"download_dir"`         // 报告保存目录
	SafetyThreshold int      `json:"safety_threshold" mapstructure:"safety_threshold"` // 启动浏览器所需可用内存(MB)
}

// Validate 验证配置
func (c *ScanConfig) Validate() error {
	if c.Mode != ModeStatic && c.Mode != ModeDynamic {
		return fmt.Errorf("无效的获取模式: %s (有效值: static, dynamic)", c.Mode)
	}
	if c.WaitTime < 0 || c.WaitTime > 60 {
		return fmt.Errorf("等待时间必须在0-60秒之间")
	}
	if c.SafetyThreshold < 0 {
		return fmt.Errorf("内存阈值不能为负数")
	}
	return nil
}
