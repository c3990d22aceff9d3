package main

import (
	"BikeSharingDashboard/src/config"
	"BikeSharingDashboard/src/dashboard"
	"BikeSharingDashboard/src/processor"
	"BikeSharingDashboard/src/storage"
	"context"
	"fmt"
	"os"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
)

var (
	configDir  string
	startDate  string
	endDate    string
	configFile = "config.json"
	dataFile   = "dataconfig.json"
)

var rootCmd = &cobra.Command{
	Use:   "bikedash",
	Short: "Bike sharing usage dashboard",
	Long: `bikedash 读取单车租赁的日数据和小时数据，按日期区间汇总
散客/注册用户、小时分布、季节合计三张图表，并提供网页、xlsx导出和定时推送。`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "./config", "配置目录(config.json, dataconfig.json)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig 读取配置文件并用环境变量覆盖
func loadConfig(ctx context.Context) (*config.Config, *config.DataConfig, error) {
	cfg, dcfg, err := config.Load(configDir, configFile, dataFile)
	if err != nil {
		return nil, nil, err
	}
	if err := config.ApplyEnv(ctx, cfg, envconfig.OsLookuper()); err != nil {
		return nil, nil, err
	}
	return cfg, dcfg, nil
}

// openSession 加载数据集并解析命令行给定的区间
func openSession(cmd *cobra.Command) (*dashboard.Session, processor.DateRange, error) {
	cfg, dcfg, err := loadConfig(cmd.Context())
	if err != nil {
		return nil, processor.DateRange{}, err
	}
	logger := storage.NewWriterLogger(cmd.ErrOrStderr())
	logger.SetLevel(storage.WARNING)

	s, err := dashboard.Open(cfg, dcfg, logger)
	if err != nil {
		return nil, processor.DateRange{}, fmt.Errorf("加载数据失败: %w", err)
	}
	r, err := dashboard.ResolveRange(startDate, endDate, s.Bounds())
	if err != nil {
		return nil, processor.DateRange{}, err
	}
	return s, r, nil
}

func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&startDate, "start", "", "开始日期 YYYY-MM-DD (默认数据最早日期)")
	cmd.Flags().StringVar(&endDate, "end", "", "结束日期 YYYY-MM-DD (默认数据最晚日期)")
}
