package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"chat-translator/internal/history"
)

// DailyStats aggregates the turns logged on one calendar day.
type DailyStats struct {
	Date          string               `json:"date"`
	TotalTurns    int                  `json:"total_turns"`
	UniqueUsers   int                  `json:"unique_users"`
	SourceChars   int                  `json:"source_chars"`
	LanguagePairs map[string]int       `json:"language_pairs"`
	UserStats     map[string]UserStats `json:"user_stats"`
}

type UserStats struct {
	UserID      string `json:"user_id"`
	Turns       int    `json:"turns"`
	SourceChars int    `json:"source_chars"`
}

// AnalyzeDay counts entries whose timestamp falls on day, in day's location.
func AnalyzeDay(entries []history.SessionEntry, day time.Time) *DailyStats {
	startOfDay := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	stats := &DailyStats{
		Date:          startOfDay.Format("2006-01-02"),
		LanguagePairs: make(map[string]int),
		UserStats:     make(map[string]UserStats),
	}

	for _, e := range entries {
		if e.Timestamp.Before(startOfDay) || !e.Timestamp.Before(endOfDay) {
			continue
		}
		chars := len([]rune(e.SourceText))
		stats.TotalTurns++
		stats.SourceChars += chars
		stats.LanguagePairs[pairKey(e)]++

		us, ok := stats.UserStats[e.UserID]
		if !ok {
			us = UserStats{UserID: e.UserID}
		}
		us.Turns++
		us.SourceChars += chars
		stats.UserStats[e.UserID] = us
	}

	stats.UniqueUsers = len(stats.UserStats)
	return stats
}

func pairKey(e history.SessionEntry) string {
	src, tgt := e.SourceLanguage, e.TargetLanguage
	if src == "" {
		src = "?"
	}
	if tgt == "" {
		tgt = "?"
	}
	return src + "->" + tgt
}

// Summary renders a plain-text report, most used pairs and users first.
func (ds *DailyStats) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Translation usage for %s\n\n", ds.Date)
	fmt.Fprintf(&b, "Turns: %d\nUsers: %d\nCharacters translated: %d\n", ds.TotalTurns, ds.UniqueUsers, ds.SourceChars)

	if len(ds.LanguagePairs) > 0 {
		b.WriteString("\nLanguage pairs:\n")
		for _, kv := range sortedCounts(ds.LanguagePairs) {
			fmt.Fprintf(&b, "- %s: %d\n", kv.key, kv.count)
		}
	}

	if len(ds.UserStats) > 0 {
		users := make(map[string]int, len(ds.UserStats))
		for id, us := range ds.UserStats {
			users[id] = us.Turns
		}
		b.WriteString("\nUsers:\n")
		for _, kv := range sortedCounts(users) {
			fmt.Fprintf(&b, "- %s: %d turns\n", kv.key, kv.count)
		}
	}
	return b.String()
}

func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type keyCount struct {
	key   string
	count int
}

func sortedCounts(m map[string]int) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, v := range m {
		out = append(out, keyCount{k, v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}
