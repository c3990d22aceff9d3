// reader.go
package file

import (
	"BikeSharingDashboard/src/config"
	"BikeSharingDashboard/src/schema"
	"BikeSharingDashboard/src/storage"
	"BikeSharingDashboard/src/utils"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/tealeg/xlsx"
)

const Number string = `^[0-9]+(\.[0-9]+)?$`

var numberRe = regexp.MustCompile(Number)

// 支持的原始日期格式，月份在前
var dateLayouts = []string{
	schema.DateLayout,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"1/2/2006",
	"1/2/06",
	time.RFC3339,
}

// Options 读取表格的选项
type Options struct {
	SheetName string // xlsx工作表名，为空取第一个
	HeaderRow int    // xlsx标题行
	Charset   string // csv编码
}

// OptionsFromConfig 从配置生成读取选项
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{SheetName: cfg.SheetName, HeaderRow: cfg.HeaderRow, Charset: cfg.Charset}
}

// Dataset 一次会话加载的两份数据，加载后只读
type Dataset struct {
	Day      dataframe.DataFrame
	Hour     dataframe.DataFrame
	LoadedAt time.Time
}

// LoadDataset 加载日数据与小时数据，任何一份失败都返回LoadError
func LoadDataset(cfg *config.Config, dcfg *config.DataConfig, logger *storage.Logger) (*Dataset, error) {
	opts := OptionsFromConfig(cfg)
	t1 := time.Now()

	day, err := LoadDaily(cfg.DailyPath(), opts, dcfg, logger)
	if err != nil {
		return nil, err
	}
	hour, err := LoadHourly(cfg.HourlyPath(), opts, dcfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Info(fmt.Sprintf("数据集加载完成: 日数据%d行, 小时数据%d行, 耗时%v",
		day.Nrow(), hour.Nrow(), time.Since(t1)))
	return &Dataset{Day: day, Hour: hour, LoadedAt: time.Now()}, nil
}

// LoadDaily 读取并规范化日数据
func LoadDaily(path string, opts Options, dcfg *config.DataConfig, logger *storage.Logger) (dataframe.DataFrame, error) {
	df, err := ReadTable(path, opts)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	df, err = prepare(path, df, dcfg, dcfg.DailyColumns, schema.DailyColumns)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	// 季节标签统一，缺失的标签(空、NA、NaN)记为Unknown，避免成为NA元素
	labels := df.Col(schema.ColSeason).Records()
	seasons := make([]string, len(labels))
	missing := 0
	for i, label := range labels {
		season := schema.ParseSeason(dcfg.SeasonOf(strings.TrimSpace(label)))
		if season == schema.Unknown {
			missing++
		}
		seasons[i] = string(season)
	}
	if missing > 0 {
		logger.Warning(fmt.Sprintf("日数据有%d行季节缺失，记为%s", missing, schema.Unknown))
	}
	df = df.Mutate(series.New(seasons, series.String, schema.ColSeason))
	if df.Err != nil {
		return dataframe.DataFrame{}, loadErr(path, df.Err)
	}

	checkDailyTotals(df, logger)
	return df, nil
}

// LoadHourly 读取并规范化小时数据
func LoadHourly(path string, opts Options, dcfg *config.DataConfig, logger *storage.Logger) (dataframe.DataFrame, error) {
	df, err := ReadTable(path, opts)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	df, err = prepare(path, df, dcfg, dcfg.HourlyColumns, schema.HourlyColumns)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	hours, _ := df.Col(schema.ColHour).Int()
	for i, h := range hours {
		if h < 0 || h > 23 {
			return dataframe.DataFrame{}, loadErr(path, fmt.Errorf("%w: 第%d行小时超出范围: %d", ErrMalformedValue, i+1, h))
		}
	}

	checkHourlyUnique(df, logger)
	return df, nil
}

// prepare 列名映射、必需列检查、日期与整数列规范化
func prepare(path string, df dataframe.DataFrame, dcfg *config.DataConfig, mapping map[string]string, required []string) (dataframe.DataFrame, error) {
	for _, name := range df.Names() {
		if target := dcfg.Column(mapping, name); target != name {
			df = df.Rename(target, name)
		}
	}
	if df.Err != nil {
		return dataframe.DataFrame{}, loadErr(path, fmt.Errorf("重命名列失败: %w", df.Err))
	}

	for _, col := range required {
		if !utils.HasColumn(df, col) {
			return dataframe.DataFrame{}, loadErr(path, fmt.Errorf("%w: %s", ErrColumnMissing, col))
		}
	}
	df = df.Select(required)

	df, err := NormalizeDates(df, schema.ColDate)
	if err != nil {
		return dataframe.DataFrame{}, loadErr(path, err)
	}

	for _, col := range required {
		if col == schema.ColDate || col == schema.ColSeason {
			continue
		}
		df, err = normalizeCounts(df, col)
		if err != nil {
			return dataframe.DataFrame{}, loadErr(path, err)
		}
	}
	return df, nil
}

// ReadTable 按扩展名读取csv或xlsx，所有列先按字符串读入
func ReadTable(path string, opts Options) (dataframe.DataFrame, error) {
	info, err := os.Stat(path)
	if err != nil {
		return dataframe.DataFrame{}, loadErr(path, fmt.Errorf("%w: %v", ErrSourceMissing, err))
	}
	if info.IsDir() {
		return dataframe.DataFrame{}, loadErr(path, fmt.Errorf("%w: 是目录", ErrSourceMissing))
	}

	var records [][]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		records, err = readCSVRecords(path, opts.Charset)
	case ".xlsx":
		records, err = readXLSXRecords(path, opts.SheetName, opts.HeaderRow)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
	if err != nil {
		return dataframe.DataFrame{}, loadErr(path, err)
	}
	if len(records) < 2 {
		return dataframe.DataFrame{}, loadErr(path, ErrSourceEmpty)
	}

	for i := range records[0] {
		records[0][i] = strings.TrimSpace(records[0][i])
	}
	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, loadErr(path, df.Err)
	}
	return df, nil
}

func readCSVRecords(path, charset string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceMissing, err)
	}
	defer f.Close()

	r, err := charsetReader(charset, f)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedValue, err)
		}
		if isBlank(rec) {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func readXLSXRecords(path, sheetName string, headerRow int) ([][]string, error) {
	xlFile, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("xlsx open file false: %w", err)
	}
	if len(xlFile.Sheets) == 0 {
		return nil, fmt.Errorf("%w: excel文件中没有工作表", ErrSourceEmpty)
	}

	sheet := xlFile.Sheets[0]
	if sheetName != "" {
		s, ok := xlFile.Sheet[sheetName]
		if !ok {
			return nil, fmt.Errorf("%w: 工作表 %s 不存在", ErrSourceMissing, sheetName)
		}
		sheet = s
	}
	return convertSheetToRecords(sheet, headerRow), nil
}

// convertSheetToRecords 将xlsx.Sheet转换为二维字符串，标题行之前的行忽略
func convertSheetToRecords(sheet *xlsx.Sheet, headerRow int) [][]string {
	if headerRow < 0 || len(sheet.Rows) <= headerRow {
		return nil
	}

	var headers []string
	for _, cell := range sheet.Rows[headerRow].Cells {
		headers = append(headers, cell.String())
	}

	records := [][]string{headers}
	for _, row := range sheet.Rows[headerRow+1:] {
		if row == nil {
			continue
		}
		rec := make([]string, len(headers))
		for i, cell := range row.Cells {
			if i < len(headers) {
				rec[i] = cell.String()
			}
		}
		if isBlank(rec) {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// NormalizeDates 把日期列解析并统一格式化为 2006-01-02，任何一行无法解析都返回错误
func NormalizeDates(df dataframe.DataFrame, col string) (dataframe.DataFrame, error) {
	raw := df.Col(col).Records()
	dates := make([]string, len(raw))
	for i, s := range raw {
		t, err := ParseDate(s)
		if err != nil {
			return df, fmt.Errorf("%w: 第%d行 %q", ErrMalformedDate, i+1, s)
		}
		dates[i] = t.Format(schema.DateLayout)
	}
	out := df.Mutate(series.New(dates, series.String, col))
	return out, out.Err
}

// ParseDate 尝试多种日期格式，也接受Excel日期序列号
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	if numberRe.MatchString(s) {
		v, err := strconv.ParseFloat(s, 64)
		if err == nil && v >= 1 && v < 2958466 {
			return excelToTime(v), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// excelToTime Excel日期序列号转日期(1900日期系统)
func excelToTime(serial float64) time.Time {
	days := int(serial)
	// Excel把1900年当作闰年，60号之前的日期需要向后挪一天
	base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	if days < 60 {
		base = base.AddDate(0, 0, 1)
	}
	return base.AddDate(0, 0, days)
}

func normalizeCounts(df dataframe.DataFrame, col string) (dataframe.DataFrame, error) {
	raw := df.Col(col).Records()
	values := make([]int, len(raw))
	for i, s := range raw {
		v, err := parseCount(s)
		if err != nil {
			return df, fmt.Errorf("%w: 列%s第%d行 %q", ErrMalformedValue, col, i+1, s)
		}
		values[i] = v
	}
	out := df.Mutate(series.New(values, series.Int, col))
	return out, out.Err
}

// parseCount 非负整数，xlsx中的"12.0"也接受
func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		if v < 0 {
			return 0, fmt.Errorf("negative value %d", v)
		}
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f != float64(int(f)) {
		return 0, fmt.Errorf("not a non-negative integer: %q", s)
	}
	return int(f), nil
}

// checkDailyTotals 检查 total == casual + registered，不一致只记录警告
func checkDailyTotals(df dataframe.DataFrame, logger *storage.Logger) {
	records, err := schema.DailyRecords(df)
	if err != nil {
		logger.Warning(fmt.Sprintf("日数据校验跳过: %v", err))
		return
	}

	bad, first := 0, ""
	for _, r := range records {
		if r.Casual+r.Registered != r.Total {
			if bad == 0 {
				first = r.Date.Format(schema.DateLayout)
			}
			bad++
		}
	}
	if bad > 0 {
		logger.Warning(fmt.Sprintf("日数据有%d行 total != casual + registered，第一行日期 %s", bad, first))
	}
}

// checkHourlyUnique 检查同一天内小时是否重复，重复只记录警告
func checkHourlyUnique(df dataframe.DataFrame, logger *storage.Logger) {
	records, err := schema.HourlyRecords(df)
	if err != nil {
		logger.Warning(fmt.Sprintf("小时数据校验跳过: %v", err))
		return
	}

	type key struct {
		date string
		hour int
	}
	seen := make(map[key]struct{}, len(records))
	dup := 0
	for _, r := range records {
		k := key{r.Date.Format(schema.DateLayout), r.Hour}
		if _, ok := seen[k]; ok {
			dup++
			continue
		}
		seen[k] = struct{}{}
	}
	if dup > 0 {
		logger.Warning(fmt.Sprintf("小时数据有%d个重复的(日期, 小时)", dup))
	}
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
