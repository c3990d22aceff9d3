package main

import (
	"BikeSharingDashboard/src/processor"
	"BikeSharingDashboard/src/render"
	"BikeSharingDashboard/src/utils"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var (
	exportOut    string
	exportPNGDir string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the range summaries to xlsx",
	Long:  `把区间内三张汇总表写成一个xlsx，每张表一个工作表；可选同时导出PNG图表。`,
	RunE:  runExport,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the range summaries",
	RunE:  runSummary,
}

func init() {
	addRangeFlags(exportCmd)
	exportCmd.Flags().StringVar(&exportOut, "out", "summary.xlsx", "输出xlsx文件")
	exportCmd.Flags().StringVar(&exportPNGDir, "png", "", "PNG图表输出目录，为空不导出")
	rootCmd.AddCommand(exportCmd)

	addRangeFlags(summaryCmd)
	rootCmd.AddCommand(summaryCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	s, r, err := openSession(cmd)
	if err != nil {
		return err
	}
	sums := s.Summaries(r)

	if err := utils.SaveToExcel(sums.Sheets(), exportOut); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "已导出 %s (%s)\n", exportOut, r)

	if exportPNGDir != "" {
		files, err := render.SavePNGs(exportPNGDir, sums)
		if err != nil {
			return fmt.Errorf("导出图表失败: %w", err)
		}
		for _, f := range files {
			fmt.Fprintf(cmd.OutOrStdout(), "已导出 %s\n", f)
		}
	}
	return nil
}

func runSummary(cmd *cobra.Command, args []string) error {
	s, r, err := openSession(cmd)
	if err != nil {
		return err
	}
	printSummaries(cmd.OutOrStdout(), s.Summaries(r))
	return nil
}

func printSummaries(w io.Writer, sums *processor.Summaries) {
	const rule = "----------------------------------------"
	fmt.Fprintf(w, "区间: %s (日数据 %d 行, 小时数据 %d 行)\n", sums.Range, sums.DayRows, sums.HourRows)
	if sums.Empty() {
		fmt.Fprintln(w, "区间内没有数据")
		return
	}

	fmt.Fprintf(w, "\n散客 vs 注册用户\n%s\n", rule)
	fmt.Fprintf(w, "%-6s  %10s  %10s\n", "Year", "Casual", "Registered")
	for _, r := range sums.ByYear {
		fmt.Fprintf(w, "%-6d  %10d  %10d\n", r.Year, r.Casual, r.Registered)
	}

	fmt.Fprintf(w, "\n小时分布\n%s\n", rule)
	fmt.Fprintf(w, "%-6s  %-6s  %10s\n", "Hour", "Year", "Count")
	for _, r := range sums.Hourly {
		fmt.Fprintf(w, "%-6d  %-6d  %10d\n", r.Hour, r.Year, r.Count)
	}

	fmt.Fprintf(w, "\n季节合计\n%s\n", rule)
	fmt.Fprintf(w, "%-8s  %-6s  %10s\n", "Season", "Year", "Total")
	for _, r := range sums.Seasonal {
		fmt.Fprintf(w, "%-8s  %-6d  %10d\n", r.Season, r.Year, r.Total)
	}

	t := sums.Totals()
	fmt.Fprintf(w, "%s\nTotal: %d (casual %d, registered %d)\n", rule, t.Total, t.Casual, t.Registered)
}
