package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig 应用配置
type AppConfig struct {
	Server  ServerConfig  `toml:"server"`
	Service ServiceConfig `toml:"service"`
	Data    DataConfig    `toml:"data"`
	Grid    GridConfig    `toml:"grid"`
}

// ServerConfig 本地服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// ServiceConfig 远端数据服务配置
type ServiceConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	UserID         string `toml:"user_id"` // 提交调整/注释时使用的用户标识
}

// DataConfig 本地数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// GridConfig 网格默认值
type GridConfig struct {
	DefaultStartPeriod string   `toml:"default_start_period"`
	DefaultEndPeriod   string   `toml:"default_end_period"`
	DefaultSources     []string `toml:"default_sources"`
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20318,
			DevMode: false,
		},
		Service: ServiceConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 30,
			UserID:         "00000000-0000-0000-0000-000000000001",
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Grid: GridConfig{
			DefaultStartPeriod: "2023-01-01",
			DefaultEndPeriod:   "2024-12-31",
			DefaultSources:     []string{"sales"},
		},
	}
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfig 从可执行文件同目录的 config.toml 加载配置
// 配置文件不存在时使用默认配置；环境变量覆盖本地运行参数
func LoadConfig() (*AppConfig, error) {
	config := DefaultConfig()

	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	configPath := filepath.Join(exeDir, "config.toml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(config)
			return config, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	applyEnvOverrides(config)
	return config, nil
}

// applyEnvOverrides 环境变量覆盖（用于 E2E / 本地运行）
func applyEnvOverrides(config *AppConfig) {
	if v := os.Getenv("WIREBI_SERVICE_BASE_URL"); v != "" {
		config.Service.BaseURL = v
	}
	if v := os.Getenv("WIREBI_USER_ID"); v != "" {
		config.Service.UserID = v
	}
}

// SaveConfig 保存配置到 config.toml
func SaveConfig(config *AppConfig) error {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	configPath := filepath.Join(exeDir, "config.toml")

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0644)
}

// EnsureDataDir 确保数据目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	dataDir := filepath.Join(exeDir, config.Data.DataDir)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	for _, subdir := range []string{"exports"} {
		if err := os.MkdirAll(filepath.Join(dataDir, subdir), 0755); err != nil {
			return "", err
		}
	}
	return dataDir, nil
}
