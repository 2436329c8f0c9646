// Package config 提供服务配置
package config

import (
	"os"
	"path/filepath"
)

type Config struct {
	// Address 是 HTTP 服务的监听地址
	// 可以通过环境变量 CLOUDDESK_ADDRESS 配置
	Address string

	// DBPath 是 SQLite 数据库文件路径
	// 可以通过环境变量 CLOUDDESK_DB_PATH 配置
	// 默认：~/.local/share/clouddesk/clouddesk.db
	DBPath string

	// Project 是云厂商项目 ID
	// 可以通过环境变量 CLOUDDESK_PROJECT 配置
	Project string

	// GcloudPath 是云厂商 CLI 二进制路径
	// 可以通过环境变量 CLOUDDESK_GCLOUD_PATH 配置，默认从 PATH 查找
	GcloudPath string

	// BaseTemplate 是所有桌面实例派生自的基础实例模板名
	// 可以通过环境变量 CLOUDDESK_BASE_TEMPLATE 配置
	BaseTemplate string

	// PricingFile 是价格表 YAML 文件路径，为空时使用内置默认价格
	// 可以通过环境变量 CLOUDDESK_PRICING_FILE 配置
	PricingFile string

	// SentryDSN 非空时启用 Sentry 错误上报
	// 可以通过环境变量 CLOUDDESK_SENTRY_DSN 配置
	SentryDSN string
}

func New() (*Config, error) {
	cfg := &Config{
		Address:      getEnv("CLOUDDESK_ADDRESS", "0.0.0.0:7780"),
		DBPath:       getDBPath(),
		Project:      os.Getenv("CLOUDDESK_PROJECT"),
		GcloudPath:   os.Getenv("CLOUDDESK_GCLOUD_PATH"),
		BaseTemplate: getEnv("CLOUDDESK_BASE_TEMPLATE", "desktop-base"),
		PricingFile:  os.Getenv("CLOUDDESK_PRICING_FILE"),
		SentryDSN:    os.Getenv("CLOUDDESK_SENTRY_DSN"),
	}
	return cfg, nil
}

// getEnv 读取环境变量，为空时使用默认值
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getDBPath 获取数据库路径，优先使用环境变量
func getDBPath() string {
	if path := os.Getenv("CLOUDDESK_DB_PATH"); path != "" {
		return path
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "clouddesk", "clouddesk.db")
	}
	return filepath.Join(".", "data", "clouddesk.db")
}
