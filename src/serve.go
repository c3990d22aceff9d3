package main

import (
	"BikeSharingDashboard/src/dashboard"
	"BikeSharingDashboard/src/datasource/file"
	"BikeSharingDashboard/src/server"
	"BikeSharingDashboard/src/snapshot"
	"BikeSharingDashboard/src/storage"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron"
	"github.com/spf13/cobra"
)

var (
	serveAddr  string
	serveDebug bool
	snapPNG    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard web server",
	Long: `启动网页看板。数据文件变化后自动重新加载，按配置定时导出快照。
SIGHUP 重新打开日志文件，SIGINT/SIGTERM 优雅退出。`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "监听地址 (默认取配置 listen_addr)")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "gin调试模式并输出DEBUG日志")
	serveCmd.Flags().BoolVar(&snapPNG, "snapshot-png", true, "快照同时导出PNG图表")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, dcfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.ListenAddr = serveAddr
	}

	// 初始化日志系统
	logger, err := storage.NewLogger(cfg.LogName)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer logger.Close()
	if serveDebug {
		logger.SetLevel(storage.DEBUG)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	session, err := dashboard.Open(cfg, dcfg, logger)
	if err != nil {
		var le *file.LoadError
		if errors.As(err, &le) {
			logger.Fatal(fmt.Sprintf("无法加载数据集 %s: %v", le.Source, le.Err))
		} else {
			logger.Fatal(fmt.Sprintf("无法加载数据集: %v", err))
		}
		return err
	}
	store := dashboard.NewStore(session)
	logger.Info(fmt.Sprintf("数据已加载，默认区间 %s", session.Bounds()))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for range hup {
			if err := logger.Reopen(""); err != nil {
				logger.Error("重新打开日志失败: " + err.Error())
				continue
			}
			logger.Info("收到SIGHUP，日志文件已重新打开")
		}
	}()

	if cfg.WatchData {
		monitor, err := file.NewFileMonitor(cfg.DataDir, cfg.DailyFile, cfg.HourlyFile)
		if err != nil {
			logger.Warning(fmt.Sprintf("无法监听数据目录 %s: %v", cfg.DataDir, err))
		} else {
			defer monitor.Close()
			go func() {
				err := monitor.Watch(func(path string) {
					logger.Info("数据文件已更新: " + path)
					_ = store.Reload(cfg, dcfg, logger)
				})
				if err != nil {
					logger.Error("数据目录监听出错: " + err.Error())
				}
			}()
		}
	}

	// 设置定时任务
	c := cron.New()
	job := snapshot.NewJob(cfg, store, logger).WithPNG(snapPNG)
	interval := time.Duration(cfg.Snapshot.Interval)
	if err := snapshot.Schedule(c, interval, job); err != nil {
		logger.Error("创建定时任务失败: " + err.Error())
		return err
	}
	if err := c.AddFunc("@every 1m", func() {
		if err := logger.CheckRotate(cfg); err != nil {
			logger.Error("日志轮转失败: " + err.Error())
		}
	}); err != nil {
		return err
	}
	c.Start()
	defer c.Stop()
	if interval > 0 {
		logger.Info(fmt.Sprintf("快照任务已启动(间隔: %v)", interval))
	}

	err = server.Run(ctx, cfg.ListenAddr, server.NewRouter(store, logger), logger)
	logger.Info("服务已退出")
	return err
}
