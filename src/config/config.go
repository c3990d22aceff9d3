package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config 结构体定义了应用程序的配置结构
type Config struct {
	DataDir    string `json:"data_dir"`    // 数据文件目录
	DailyFile  string `json:"daily_file"`  // 日数据文件名(csv或xlsx)
	HourlyFile string `json:"hourly_file"` // 小时数据文件名(csv或xlsx)
	SheetName  string `json:"sheet_name"`  // xlsx输入使用的工作表，为空取第一个
	HeaderRow  int    `json:"header_row"`  // xlsx标题行(从0开始)
	Charset    string `json:"charset"`     // csv编码: utf-8, gbk, windows-1252
	LogName    string `json:"log_name"`
	LogMaxSize string `json:"log_max_size"` // 例如 "10 * 1024 * 1024"
	ListenAddr string `json:"listen_addr"`
	WatchData  bool   `json:"watch_data"` // 数据文件变化后自动重新加载

	Snapshot struct {
		Interval  Duration `json:"interval"`   // 定时导出间隔，为0不启用
		OutputDir string   `json:"output_dir"` // 导出目录
	} `json:"snapshot"`

	SendEmail struct {
		Enabled  bool     `json:"enabled"`
		Server   string   `json:"server"`   // SMTP服务器地址
		Username string   `json:"username"` // 发件邮箱
		Password string   `json:"password"` // 密码/授权码
		To       []string `json:"to"`       // 收件人
		Subject  string   `json:"subject"`
	} `json:"send_email"`

	Webhook struct {
		Enabled    bool   `json:"enabled"`
		URL        string `json:"url"`
		RetryTimes int    `json:"retry_times"`
	} `json:"webhook"`
}

// DataConfig 数据相关配置：列名映射、季节映射、页面文案
type DataConfig struct {
	DailyColumns  map[string]string `json:"daily_columns"`  // 源列名 -> 标准列名
	HourlyColumns map[string]string `json:"hourly_columns"` // 源列名 -> 标准列名
	SeasonLabels  map[string]string `json:"season_labels"`  // 源季节标签 -> 标准季节
	Dashboard     Narrative         `json:"dashboard"`
}

// Narrative 页面标题与说明文字(markdown)
type Narrative struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
	Summary  Section   `json:"summary"`
}

// Section 一个图表区块的标题与说明
type Section struct {
	Heading string `json:"heading"`
	Insight string `json:"insight"`
}

// EnvOverrides 可以用环境变量覆盖的配置项
type EnvOverrides struct {
	DataDir    string `env:"BIKE_DATA_DIR"`
	ListenAddr string `env:"BIKE_LISTEN_ADDR"`
	LogName    string `env:"BIKE_LOG_NAME"`
	WebhookURL string `env:"BIKE_WEBHOOK_URL"`
	MailPass   string `env:"BIKE_MAIL_PASSWORD"`
	OutputDir  string `env:"BIKE_SNAPSHOT_DIR"`
}

// mu 保护运行时可修改的配置项(环境变量覆盖、季节映射)
var mu sync.RWMutex

// Load 读取并解析两个配置文件，填充默认值
func Load(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	cfg, dcfg, err := loadConfigs(jsonFolder, jsonFile, dataJsonFile)
	if err != nil {
		return nil, nil, err
	}
	return cfg, dcfg, nil
}

func loadConfigs(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	configFile := filepath.Join(jsonFolder, jsonFile)
	dataConfigFile := filepath.Join(jsonFolder, dataJsonFile)

	configData, err := readFile(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	dataConfigData, err := readFile(dataConfigFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取数据配置文件失败: %w", err)
	}

	cfgChan := make(chan *Config, 1)
	dcfgChan := make(chan *DataConfig, 1)
	errChan := make(chan error, 2)

	go parseConfig(configData, cfgChan, errChan)
	go parseDataConfig(dataConfigData, dcfgChan, errChan)

	cfg, dcfg, err := waitForResults(cfgChan, dcfgChan, errChan)
	if err != nil {
		return nil, nil, err
	}

	cfg.ApplyDefaults()
	dcfg.ApplyDefaults()
	return cfg, dcfg, nil
}

func readFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("无法读取文件 %s: %w", filePath, err)
	}
	return data, nil
}

func parseConfig(data []byte, resultChan chan<- *Config, errChan chan<- error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		errChan <- fmt.Errorf("解析Config失败: %w", err)
		return
	}
	resultChan <- &cfg
}

func parseDataConfig(data []byte, resultChan chan<- *DataConfig, errChan chan<- error) {
	var dcfg DataConfig
	if err := json.Unmarshal(data, &dcfg); err != nil {
		errChan <- fmt.Errorf("解析DataConfig失败: %w", err)
		return
	}
	resultChan <- &dcfg
}

func waitForResults(
	cfgChan <-chan *Config,
	dcfgChan <-chan *DataConfig,
	errChan <-chan error,
) (*Config, *DataConfig, error) {
	var (
		cfg    *Config
		dcfg   *DataConfig
		errors []error
	)

	for i := 0; i < 2; i++ {
		select {
		case c := <-cfgChan:
			cfg = c
		case d := <-dcfgChan:
			dcfg = d
		case err := <-errChan:
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return nil, nil, combineErrors(errors)
	}

	if cfg == nil || dcfg == nil {
		return nil, nil, fmt.Errorf("部分配置未加载成功")
	}

	return cfg, dcfg, nil
}

func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	msg := "配置加载遇到多个错误:"
	for _, err := range errs {
		msg = fmt.Sprintf("%s\n- %v", msg, err)
	}
	return fmt.Errorf("%s", msg)
}

// ApplyEnv 用环境变量覆盖配置，未设置的变量保留json中的值
func ApplyEnv(ctx context.Context, cfg *Config, lookuper envconfig.Lookuper) error {
	var env EnvOverrides
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &env,
		Lookuper: lookuper,
	}); err != nil {
		return fmt.Errorf("读取环境变量失败: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if env.DataDir != "" {
		cfg.DataDir = env.DataDir
	}
	if env.ListenAddr != "" {
		cfg.ListenAddr = env.ListenAddr
	}
	if env.LogName != "" {
		cfg.LogName = env.LogName
	}
	if env.WebhookURL != "" {
		cfg.Webhook.URL = env.WebhookURL
	}
	if env.MailPass != "" {
		cfg.SendEmail.Password = env.MailPass
	}
	if env.OutputDir != "" {
		cfg.Snapshot.OutputDir = env.OutputDir
	}
	return nil
}

// ApplyDefaults 填充未配置的字段
func (c *Config) ApplyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.DailyFile == "" {
		c.DailyFile = "day_clean.csv"
	}
	if c.HourlyFile == "" {
		c.HourlyFile = "hour_clean.csv"
	}
	if c.LogName == "" {
		c.LogName = "app.log"
	}
	if c.LogMaxSize == "" {
		c.LogMaxSize = "10 * 1024 * 1024"
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.Snapshot.OutputDir == "" {
		c.Snapshot.OutputDir = "./snapshots"
	}
	if c.Webhook.RetryTimes <= 0 {
		c.Webhook.RetryTimes = 5
	}
	if c.SendEmail.Subject == "" {
		c.SendEmail.Subject = "Bike sharing snapshot"
	}
}

// DailyPath 日数据文件完整路径
func (c *Config) DailyPath() string {
	return filepath.Join(c.DataDir, c.DailyFile)
}

// HourlyPath 小时数据文件完整路径
func (c *Config) HourlyPath() string {
	return filepath.Join(c.DataDir, c.HourlyFile)
}

// ApplyDefaults 列名映射为空时使用清洗后单车数据集的默认列名
func (dc *DataConfig) ApplyDefaults() {
	if len(dc.DailyColumns) == 0 {
		dc.DailyColumns = map[string]string{
			"dateday":    "date",
			"year":       "year",
			"season":     "season",
			"casual":     "casual",
			"registered": "registered",
			"count_cr":   "total",
		}
	}
	if len(dc.HourlyColumns) == 0 {
		dc.HourlyColumns = map[string]string{
			"dateday":  "date",
			"year":     "year",
			"hour":     "hour",
			"count_cr": "count",
		}
	}
	if dc.SeasonLabels == nil {
		dc.SeasonLabels = map[string]string{}
	}
	dc.Dashboard.applyDefaults()
}

// Column 查询源列名对应的标准列名，没有映射时返回原列名
func (dc *DataConfig) Column(mapping map[string]string, source string) string {
	mu.RLock()
	defer mu.RUnlock()
	if target, ok := mapping[source]; ok {
		return target
	}
	return source
}

// SeasonOf 查询季节标签映射，没有映射时返回原标签
func (dc *DataConfig) SeasonOf(label string) string {
	mu.RLock()
	defer mu.RUnlock()
	if target, ok := dc.SeasonLabels[label]; ok {
		return target
	}
	return label
}

// SetSeasonLabel 运行时补充季节映射
func (dc *DataConfig) SetSeasonLabel(label, season string) {
	mu.Lock()
	defer mu.Unlock()
	dc.SeasonLabels[label] = season
}

// Duration 是time.Duration的自定义包装类型
// 用于支持JSON序列化和反序列化
type Duration time.Duration

// UnmarshalJSON 实现json.Unmarshaler接口
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalJSON 实现json.Marshaler接口
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
