package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/skalibog/signalfeed/internal/core"
	"github.com/skalibog/signalfeed/pkg/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v2"
)

// Config представляет полную конфигурацию приложения
type Config struct {
	API       APIConfig       `yaml:"api"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	UI        UIConfig        `yaml:"ui"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// APIConfig содержит настройки подключения к серверу сигналов
type APIConfig struct {
	BaseURL     string `yaml:"base_url"`
	SignalsPath string `yaml:"signals_path"`
	// 0 - без собственного таймаута, используется поведение транспорта
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// DashboardConfig настройки обновления ленты
type DashboardConfig struct {
	RefreshIntervalMs int `yaml:"refresh_interval_ms"`
	NewMarkerMs       int `yaml:"new_marker_ms"`
}

// UIConfig настройки пользовательского интерфейса
type UIConfig struct {
	RefreshRate int  `yaml:"refresh_rate_ms"` // период перечитывания лога
	ShowLogs    bool `yaml:"show_logs"`
	LogLines    int  `yaml:"log_lines"`
}

// LoggingConfig настройки файловых логов
type LoggingConfig struct {
	File     string `yaml:"file"`
	JSONFile string `yaml:"json_file"`
	Level    string `yaml:"level"`
	Truncate bool   `yaml:"truncate"`
}

// MetricsConfig настройки экспорта метрик Prometheus
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
	Path    string `yaml:"path"`
}

// Defaults возвращает конфигурацию по умолчанию
func Defaults() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:     "http://localhost:5000",
			SignalsPath: "/api/signals",
		},
		Dashboard: DashboardConfig{
			RefreshIntervalMs: 3000,
			NewMarkerMs:       2000,
		},
		UI: UIConfig{
			RefreshRate: 1000,
			ShowLogs:    true,
			LogLines:    8,
		},
		Logging: LoggingConfig{
			File:     "app.log",
			JSONFile: "app.json.log",
			Level:    "info",
			Truncate: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  ":9108",
			Path:    "/metrics",
		},
	}
}

// Load загружает конфигурацию из файла поверх значений по умолчанию.
// Отсутствующий файл не считается ошибкой.
func Load(path string) (*Config, error) {
	config := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("Файл конфигурации не найден, используются значения по умолчанию", zap.String("path", path))
			return config, config.Validate()
		}
		return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("ошибка разбора файла конфигурации: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("Загружена конфигурация", zap.String("path", path), zap.Any("config", config))
	return config, nil
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("api.base_url должен быть http(s) адресом, получено %q", c.API.BaseURL))
	}
	if !strings.HasPrefix(c.API.SignalsPath, "/") {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("api.signals_path должен начинаться с '/', получено %q", c.API.SignalsPath))
	}
	if c.API.TimeoutSeconds < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("api.timeout_seconds не может быть отрицательным: %d", c.API.TimeoutSeconds))
	}

	// Планировщик работает с секундной точностью
	if c.Dashboard.RefreshIntervalMs < 1000 || c.Dashboard.RefreshIntervalMs%1000 != 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("dashboard.refresh_interval_ms должен быть кратен 1000 и не меньше 1000: %d", c.Dashboard.RefreshIntervalMs))
	}
	if c.Dashboard.NewMarkerMs <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("dashboard.new_marker_ms должен быть положительным: %d", c.Dashboard.NewMarkerMs))
	}

	if c.UI.RefreshRate <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("ui.refresh_rate_ms должен быть положительным: %d", c.UI.RefreshRate))
	}

	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("logging.level: %w", err))
	}

	if c.Metrics.Enabled && (c.Metrics.Listen == "" || !strings.HasPrefix(c.Metrics.Path, "/")) {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("metrics.listen и metrics.path обязательны при metrics.enabled"))
	}

	return nil
}

// SignalsURL полный адрес эндпоинта сигналов
func (c APIConfig) SignalsURL() string {
	return strings.TrimRight(c.BaseURL, "/") + c.SignalsPath
}

// Timeout таймаут HTTP клиента
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RefreshInterval период автообновления
func (c DashboardConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMs) * time.Millisecond
}

// NewMarkerDelay через сколько снимается отметка NEW
func (c DashboardConfig) NewMarkerDelay() time.Duration {
	return time.Duration(c.NewMarkerMs) * time.Millisecond
}

// LogLevel уровень логирования
func (c LoggingConfig) LogLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// Options параметры для pkg/logger
func (c LoggingConfig) Options() logger.Options {
	return logger.Options{
		File:     c.File,
		JSONFile: c.JSONFile,
		Level:    c.LogLevel(),
		Truncate: c.Truncate,
	}
}
