package app

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"trigger-alerts/internal/storage"
)

func alertAt(ts time.Time, confidence int) storage.StrategicAlert {
	return storage.StrategicAlert{
		OrganizationID: 1,
		TriggerID:      1,
		Classification: "risk",
		Severity:       "high",
		AIConfidence:   confidence,
		Status:         "new",
		Title:          "test alert",
		CreatedAt:      ts,
	}
}

func TestDownsampleAlertsKeepsEndpoints(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	alerts := make([]storage.StrategicAlert, 100)
	for i := range alerts {
		alerts[i] = alertAt(base.Add(time.Duration(i)*time.Hour), i)
	}

	down := downsampleAlerts(alerts, 10)
	if len(down) != 10 {
		t.Fatalf("expected 10 points, got %d", len(down))
	}
	if !down[0].CreatedAt.Equal(alerts[0].CreatedAt) {
		t.Fatal("first point should survive downsampling")
	}
	if !down[len(down)-1].CreatedAt.Equal(alerts[len(alerts)-1].CreatedAt) {
		t.Fatal("last point should survive downsampling")
	}
}

func TestDownsampleAlertsNoop(t *testing.T) {
	alerts := []storage.StrategicAlert{alertAt(time.Now(), 50)}
	if got := downsampleAlerts(alerts, 100); len(got) != 1 {
		t.Fatalf("small sets should pass through, got %d", len(got))
	}
	if got := downsampleAlerts(alerts, 0); len(got) != 1 {
		t.Fatalf("non-positive max should pass through, got %d", len(got))
	}
}

func TestAggregateByDay(t *testing.T) {
	day1 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)
	alerts := []storage.StrategicAlert{
		alertAt(day1, 60),
		alertAt(day1.Add(2*time.Hour), 80),
		alertAt(day2, 90),
	}

	aggregates := aggregateByDay(alerts)
	if len(aggregates) != 2 {
		t.Fatalf("expected 2 days, got %d", len(aggregates))
	}
	if aggregates[0].day.After(aggregates[1].day) {
		t.Fatal("aggregates should be sorted by day")
	}
	if aggregates[0].count != 2 {
		t.Fatalf("day one should have 2 alerts, got %d", aggregates[0].count)
	}
	if !aggregates[0].avgConfidence.Equal(aggregates[0].avgConfidence.Round(0)) || aggregates[0].avgConfidence.IntPart() != 70 {
		t.Fatalf("day one average should be 70, got %s", aggregates[0].avgConfidence)
	}
	if aggregates[1].count != 1 || aggregates[1].avgConfidence.IntPart() != 90 {
		t.Fatalf("day two aggregate wrong: %+v", aggregates[1])
	}
}

func TestWriteAlertsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "alerts.csv")
	alerts := []storage.StrategicAlert{
		alertAt(time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC), 72),
	}

	if err := writeAlertsCSV(path, alerts); err != nil {
		t.Fatalf("write should succeed: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus one row, got %d rows", len(rows))
	}
	if rows[0][0] != "created_at" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][5] != "72" {
		t.Fatalf("confidence column wrong: %v", rows[1])
	}
}

func TestWriteAlertsPNGNeedsTwoDays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.png")
	alerts := []storage.StrategicAlert{alertAt(time.Now().UTC(), 60)}

	if err := writeAlertsPNG(path, alerts); err == nil {
		t.Fatal("a single day of data should refuse to chart")
	}
}

func TestWriteAlertsPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.png")
	day1 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	alerts := []storage.StrategicAlert{
		alertAt(day1, 60),
		alertAt(day1.AddDate(0, 0, 1), 80),
		alertAt(day1.AddDate(0, 0, 2), 70),
	}

	if err := writeAlertsPNG(path, alerts); err != nil {
		t.Fatalf("render should succeed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("png should exist: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("png should not be empty")
	}
}
