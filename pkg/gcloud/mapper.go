package gcloud

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jimyag/clouddesk/pkg/apierror"
)

// 资源映射：把抽象的桌面配置翻译为云厂商的原生标识
// 全部是纯函数，无 I/O，不做上下限校验（约束由调用方负责）

// zoneByRegion 逻辑区域到厂商可用区的固定映射表
var zoneByRegion = map[string]string{
	"us-central":     "us-central1-a",
	"us-east":        "us-east1-b",
	"europe-west":    "europe-west4-b",
	"asia-southeast": "asia-southeast1-b",
}

// imageFamilyByPreset 操作系统预设到厂商镜像族的固定映射表
var imageFamilyByPreset = map[string]string{
	"windows-server-2022": "windows-2022",
	"windows-server-2019": "windows-2019",
	"ubuntu-desktop":      "ubuntu-2204-lts",
	"debian-desktop":      "debian-12",
}

// acceleratorByGPU 逻辑 GPU 名到厂商加速器标识的映射表
var acceleratorByGPU = map[string]string{
	"t4":   "nvidia-tesla-t4",
	"l4":   "nvidia-l4",
	"a100": "nvidia-tesla-a100",
}

// MachineType 把 CPU 核数和内存 GB 编码为自定义机型字符串
// custom 机型族要求偶数核，奇数核向上取整一核；内存以 MB 表示
func MachineType(cpuCores, ramGB int) string {
	if cpuCores%2 != 0 {
		cpuCores++
	}
	return fmt.Sprintf("custom-%d-%d", cpuCores, ramGB*1024)
}

// Zone 把逻辑区域映射为厂商可用区
// 不在表中的区域返回 INVALID_CONFIG 错误，错误消息包含输入和支持的区域集合
func Zone(region string) (string, error) {
	zone, ok := zoneByRegion[region]
	if !ok {
		return "", apierror.NewErrorWithStatus(
			apierror.ErrInvalidConfig.Code,
			fmt.Sprintf("unsupported region %q (supported: %s)", region, strings.Join(SupportedRegions(), ", ")),
			400,
		)
	}
	return zone, nil
}

// ImageFamily 把操作系统预设映射为厂商镜像族
// 未知预设返回 INVALID_CONFIG 错误，错误消息包含输入
func ImageFamily(preset string) (string, error) {
	family, ok := imageFamilyByPreset[preset]
	if !ok {
		return "", apierror.NewErrorWithStatus(
			apierror.ErrInvalidConfig.Code,
			fmt.Sprintf("unsupported preset %q (supported: %s)", preset, strings.Join(SupportedPresets(), ", ")),
			400,
		)
	}
	return family, nil
}

// Accelerator 把逻辑 GPU 名映射为厂商加速器标识
// 未知 GPU 名原样透传而不报错，与区域、镜像映射的严格失败不一致
// 这是沿用至今的历史行为，改为严格失败前需要和计费侧确认
func Accelerator(gpu string) string {
	if accelerator, ok := acceleratorByGPU[gpu]; ok {
		return accelerator
	}
	return gpu
}

// SupportedRegions 返回支持的逻辑区域列表（升序）
func SupportedRegions() []string {
	regions := make([]string, 0, len(zoneByRegion))
	for region := range zoneByRegion {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	return regions
}

// SupportedPresets 返回支持的操作系统预设列表（升序）
func SupportedPresets() []string {
	presets := make([]string, 0, len(imageFamilyByPreset))
	for preset := range imageFamilyByPreset {
		presets = append(presets, preset)
	}
	sort.Strings(presets)
	return presets
}
