package analytics

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"chat-translator/internal/history"
)

func TestAnalyzeDay(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	entries := []history.SessionEntry{
		{UserID: "u1", Timestamp: day.Add(2 * time.Hour), SourceText: "Hello", SourceLanguage: "en", TargetLanguage: "es"},
		{UserID: "u1", Timestamp: day.Add(4 * time.Hour), SourceText: "Привет", SourceLanguage: "ru", TargetLanguage: "es"},
		{UserID: "u2", Timestamp: day.Add(6 * time.Hour), SourceText: "Hi", SourceLanguage: "en", TargetLanguage: "es"},
		// 23:30 on the 14th in UTC-1 is 00:30 on the 15th in UTC
		{UserID: "u3", Timestamp: time.Date(2024, 1, 14, 23, 30, 0, 0, time.FixedZone("", -3600)), SourceText: "Hallo"},
		// next day
		{UserID: "u4", Timestamp: day.AddDate(0, 0, 1), SourceText: "Tomorrow", SourceLanguage: "en", TargetLanguage: "de"},
		// previous day
		{UserID: "u5", Timestamp: day.Add(-time.Second), SourceText: "Yesterday", SourceLanguage: "en", TargetLanguage: "de"},
	}

	stats := AnalyzeDay(entries, day)

	if stats.Date != "2024-01-15" {
		t.Errorf("Expected date '2024-01-15', got '%s'", stats.Date)
	}
	if stats.TotalTurns != 4 {
		t.Errorf("Expected 4 turns, got %d", stats.TotalTurns)
	}
	if stats.UniqueUsers != 3 {
		t.Errorf("Expected 3 unique users, got %d", stats.UniqueUsers)
	}
	if stats.SourceChars != 5+6+2+5 {
		t.Errorf("Expected 18 chars, got %d", stats.SourceChars)
	}

	expectedPairs := map[string]int{"en->es": 2, "ru->es": 1, "?->?": 1}
	for pair, want := range expectedPairs {
		if got := stats.LanguagePairs[pair]; got != want {
			t.Errorf("Expected %s=%d, got %d", pair, want, got)
		}
	}
	if len(stats.LanguagePairs) != len(expectedPairs) {
		t.Errorf("Unexpected pairs: %v", stats.LanguagePairs)
	}

	u1 := stats.UserStats["u1"]
	if u1.Turns != 2 || u1.SourceChars != 11 {
		t.Errorf("Unexpected stats for u1: %+v", u1)
	}
}

func TestDailyStatsSummary(t *testing.T) {
	day := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	stats := AnalyzeDay([]history.SessionEntry{
		{UserID: "u1", Timestamp: day, SourceText: "a", SourceLanguage: "en", TargetLanguage: "es"},
		{UserID: "u1", Timestamp: day, SourceText: "b", SourceLanguage: "en", TargetLanguage: "es"},
		{UserID: "u2", Timestamp: day, SourceText: "c", SourceLanguage: "de", TargetLanguage: "es"},
	}, day)

	summary := stats.Summary()
	for _, want := range []string{"2024-01-15", "Turns: 3", "Users: 2", "- en->es: 2", "- de->es: 1", "- u1: 2 turns"} {
		if !strings.Contains(summary, want) {
			t.Errorf("Summary missing %q:\n%s", want, summary)
		}
	}
	if strings.Index(summary, "en->es") > strings.Index(summary, "de->es") {
		t.Errorf("Pairs not sorted by count:\n%s", summary)
	}
}

func TestDailyStatsEmptyDay(t *testing.T) {
	stats := AnalyzeDay(nil, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	if stats.TotalTurns != 0 || stats.UniqueUsers != 0 {
		t.Errorf("Expected empty stats, got %+v", stats)
	}
	if strings.Contains(stats.Summary(), "Language pairs") {
		t.Errorf("Empty day should not list pairs")
	}
}

func TestDailyStatsToJSON(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	stats := AnalyzeDay([]history.SessionEntry{
		{UserID: "u1", Timestamp: day, SourceText: "Hello", SourceLanguage: "en", TargetLanguage: "es"},
	}, day)

	out, err := stats.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	var back DailyStats
	if err := json.Unmarshal([]byte(out), &back); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if back.TotalTurns != 1 || back.UserStats["u1"].Turns != 1 {
		t.Errorf("Unexpected decoded stats: %+v", back)
	}
}
