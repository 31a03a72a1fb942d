package browser

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/mem"
)

// ErrLowMemory 可用内存低于安全阈值,不启动浏览器
var ErrLowMemory = errors.New("可用内存不足")

// MemoryStatus 系统内存状态
type MemoryStatus struct {
	Total       uint64
	Available   uint64
	UsedPercent float64
}

// virtualMemory 测试中可替换
var virtualMemory = mem.VirtualMemory

// ReadMemoryStatus 读取系统内存状态(使用gopsutil)
func ReadMemoryStatus() (MemoryStatus, error) {
	vm, err := virtualMemory()
	if err != nil {
		return MemoryStatus{}, fmt.Errorf("获取系统内存失败: %w", err)
	}

	return MemoryStatus{
		Total:       vm.Total,
		Available:   vm.Available,
		UsedPercent: vm.UsedPercent,
	}, nil
}

// CheckMemory 检查可用内存是否达到阈值(MB)
// 阈值<=0时不检查; 无法读取内存时只记录警告
func CheckMemory(thresholdMB int) error {
	if thresholdMB <= 0 {
		return nil
	}

	status, err := ReadMemoryStatus()
	if err != nil {
		log.Warn().Err(err).Msg("无法检查可用内存,继续启动浏览器")
		return nil
	}

	required := uint64(thresholdMB) << 20
	availableMB := status.Available >> 20

	log.Debug().
		Uint64("available_mb", availableMB).
		Int("threshold_mb", thresholdMB).
		Float64("used_percent", status.UsedPercent).
		Msg("内存检查")

	if status.Available < required {
		return fmt.Errorf("%w: 可用 %d MB, 需要 %d MB", ErrLowMemory, availableMB, thresholdMB)
	}
	return nil
}
