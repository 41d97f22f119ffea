package Controllers

import (
	"bufio"
	"encoding/json"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"RestroManage/middleware"

	"github.com/gofiber/fiber/v2"
)

// LogController reads back the JSON request log written by the logging
// middleware so an operator can inspect traffic without shell access.
type LogController struct {
	LogFilePath string
}

func NewLogController() *LogController {
	return &LogController{LogFilePath: middleware.DefaultLogConfig().LogFilePath}
}

func (lc *LogController) readEntries() ([]middleware.LogData, error) {
	f, err := os.Open(lc.LogFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []middleware.LogData{}, nil
		}
		return nil, err
	}
	defer f.Close()

	var entries []middleware.LogData
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var entry middleware.LogData
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			// Torn or legacy lines are skipped, the rest of the file is
			// still usable.
			continue
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}

// GetLogs returns recent request log entries, newest first, with optional
// path and status filters.
// GET /api/logs?path=/api/tasks&status=500&limit=100
func (lc *LogController) GetLogs(c *fiber.Ctx) error {
	entries, err := lc.readEntries()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to read logs",
			"error":   err.Error(),
		})
	}

	pathFilter := c.Query("path")
	statusFilter := c.QueryInt("status", 0)

	filtered := make([]middleware.LogData, 0, len(entries))
	for _, entry := range entries {
		if pathFilter != "" && !strings.HasPrefix(entry.Path, pathFilter) {
			continue
		}
		if statusFilter != 0 && entry.Status != statusFilter {
			continue
		}
		filtered = append(filtered, entry)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.After(filtered[j].Timestamp)
	})

	limit := c.QueryInt("limit", 100)
	if limit < 1 || limit > 1000 {
		limit = 100
	}
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"logs":  filtered,
		"total": len(filtered),
	})
}

type pathStats struct {
	Path         string        `json:"path"`
	Count        int           `json:"count"`
	ErrorCount   int           `json:"error_count"`
	TotalLatency time.Duration `json:"-"`
	AvgLatencyMs float64       `json:"avg_latency_ms"`
}

// GetLogStats aggregates the request log per path: hit count, error count
// and average latency.
// GET /api/logs/stats
func (lc *LogController) GetLogStats(c *fiber.Ctx) error {
	entries, err := lc.readEntries()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to read logs",
			"error":   err.Error(),
		})
	}

	byPath := map[string]*pathStats{}
	var errorCount int
	for _, entry := range entries {
		stats, ok := byPath[entry.Path]
		if !ok {
			stats = &pathStats{Path: entry.Path}
			byPath[entry.Path] = stats
		}
		stats.Count++
		stats.TotalLatency += entry.Latency
		if entry.Status >= 400 {
			stats.ErrorCount++
			errorCount++
		}
	}

	paths := make([]*pathStats, 0, len(byPath))
	for _, stats := range byPath {
		stats.AvgLatencyMs = float64(stats.TotalLatency.Milliseconds()) / float64(stats.Count)
		paths = append(paths, stats)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i].Count > paths[j].Count })

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"total_requests": len(entries),
		"total_errors":   errorCount,
		"paths":          paths,
	})
}
