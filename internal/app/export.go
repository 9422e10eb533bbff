package app

import (
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	chart "github.com/wcharczuk/go-chart/v2"

	"trigger-alerts/internal/storage"
)

// Export renders historical alerts as CSV and/or PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot export")
	}
	if closeStore != nil {
		defer closeStore()
	}

	to := time.Now().UTC()
	if opts.To != nil {
		to = opts.To.UTC()
	}

	from := to.Add(-30 * 24 * time.Hour)
	if opts.From != nil {
		from = opts.From.UTC()
	}

	if !from.Before(to) {
		return errors.New("from must be before to")
	}

	alerts, err := store.ListAlertsBetween(ctx, from, to)
	if err != nil {
		return err
	}
	if len(alerts) == 0 {
		a.Logger.Info().Msg("no alerts found for export window")
		return nil
	}

	downsampled := downsampleAlerts(alerts, opts.MaxPoints)
	a.Logger.Info().Int("total", len(alerts)).Int("exported", len(downsampled)).Msg("exporting alerts")

	if opts.CSVPath != "" {
		if err := writeAlertsCSV(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeAlertsPNG(opts.PNGPath, alerts); err != nil {
			return err
		}
	}

	return nil
}

func downsampleAlerts(alerts []storage.StrategicAlert, max int) []storage.StrategicAlert {
	if max <= 0 || len(alerts) <= max {
		return alerts
	}

	result := make([]storage.StrategicAlert, 0, max)
	step := float64(len(alerts)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(alerts) {
			idx = len(alerts) - 1
		}
		result = append(result, alerts[idx])
	}
	return result
}

func writeAlertsCSV(path string, alerts []storage.StrategicAlert) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"created_at", "organization_id", "trigger_id", "classification", "severity", "ai_confidence", "action_required", "status", "title"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, alert := range alerts {
		record := []string{
			alert.CreatedAt.UTC().Format(time.RFC3339),
			strconv.FormatInt(alert.OrganizationID, 10),
			strconv.FormatInt(alert.TriggerID, 10),
			alert.Classification,
			alert.Severity,
			strconv.Itoa(alert.AIConfidence),
			strconv.FormatBool(alert.ActionRequired),
			alert.Status,
			alert.Title,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

// dailyAggregate groups alerts per UTC day for charting.
type dailyAggregate struct {
	day           time.Time
	count         int
	avgConfidence decimal.Decimal
}

func aggregateByDay(alerts []storage.StrategicAlert) []dailyAggregate {
	type bucket struct {
		count int
		sum   decimal.Decimal
	}
	buckets := make(map[time.Time]*bucket)
	for _, alert := range alerts {
		day := alert.CreatedAt.UTC().Truncate(24 * time.Hour)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
		}
		b.count++
		b.sum = b.sum.Add(decimal.NewFromInt(int64(alert.AIConfidence)))
	}

	aggregates := make([]dailyAggregate, 0, len(buckets))
	for day, b := range buckets {
		aggregates = append(aggregates, dailyAggregate{
			day:           day,
			count:         b.count,
			avgConfidence: b.sum.Div(decimal.NewFromInt(int64(b.count))),
		})
	}
	sort.Slice(aggregates, func(i, j int) bool { return aggregates[i].day.Before(aggregates[j].day) })
	return aggregates
}

func writeAlertsPNG(path string, alerts []storage.StrategicAlert) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	aggregates := aggregateByDay(alerts)
	if len(aggregates) < 2 {
		return errors.New("not enough data points to chart; need alerts on at least two days")
	}

	x := make([]time.Time, len(aggregates))
	counts := make([]float64, len(aggregates))
	confidence := make([]float64, len(aggregates))
	for i, agg := range aggregates {
		x[i] = agg.day
		counts[i] = float64(agg.count)
		confidence[i] = agg.avgConfidence.InexactFloat64()
	}

	valueFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.1f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Alerts per day",
			ValueFormatter: valueFormatter,
		},
		YAxisSecondary: chart.YAxis{
			Name:           "Avg combined confidence",
			ValueFormatter: valueFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Alert volume",
				XValues: x,
				YValues: counts,
			},
			chart.TimeSeries{
				Name:    "Avg confidence",
				XValues: x,
				YValues: confidence,
				YAxis:   chart.YAxisSecondary,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
