package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/aristath/folio/internal/database"
	"github.com/aristath/folio/internal/scheduler"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// JobRunner exposes registered background jobs
type JobRunner interface {
	Trigger(name string) error
	Has(name string) bool
	Status() []scheduler.JobStatus
}

// SessionCounter reports live simulation sessions
type SessionCounter interface {
	Len() int
}

// SystemHandlers serves host, database and job status
type SystemHandlers struct {
	log         zerolog.Logger
	dataDir     string
	priceSource string
	startupTime time.Time
	databases   []*database.DB
	jobs        JobRunner
	sessions    SessionCounter
}

// NewSystemHandlers creates system handlers. jobs and sessions may be nil.
func NewSystemHandlers(
	log zerolog.Logger,
	dataDir string,
	priceSource string,
	databases []*database.DB,
	jobs JobRunner,
	sessions SessionCounter,
) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("component", "system_handlers").Logger(),
		dataDir:     dataDir,
		priceSource: priceSource,
		startupTime: time.Now(),
		databases:   databases,
		jobs:        jobs,
		sessions:    sessions,
	}
}

// DBInfo describes one database file
type DBInfo struct {
	Name    string          `json:"name"`
	Path    string          `json:"path"`
	Profile string          `json:"profile"`
	Stats   *database.Stats `json:"stats,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	Status        string   `json:"status"`
	Version       string   `json:"version"`
	Uptime        string   `json:"uptime"`
	UptimeSeconds float64  `json:"uptime_seconds"`
	PriceSource   string   `json:"price_source"`
	CPUPercent    float64  `json:"cpu_percent"`
	RAMPercent    float64  `json:"ram_percent"`
	Goroutines    int      `json:"goroutines"`
	Sessions      int      `json:"sessions"`
	DataDirMB     float64  `json:"data_dir_mb"`
	Databases     []DBInfo `json:"databases"`
}

// RegisterRoutes registers system routes
func (h *SystemHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/system", func(r chi.Router) {
		r.Get("/status", h.HandleSystemStatus)
		r.Get("/database", h.HandleDatabaseStats)
	})
	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", h.HandleJobsStatus)
		r.Post("/{name}", h.HandleTriggerJob)
	})
}

// GetSystemStatusSnapshot collects the current status. A database that
// cannot be inspected marks the status degraded.
func (h *SystemHandlers) GetSystemStatusSnapshot() SystemStatusResponse {
	cpuPercent, ramPercent := h.getSystemStats()
	uptime := time.Since(h.startupTime)

	response := SystemStatusResponse{
		Status:        "healthy",
		Version:       Version,
		Uptime:        uptime.Round(time.Second).String(),
		UptimeSeconds: uptime.Seconds(),
		PriceSource:   h.priceSource,
		CPUPercent:    cpuPercent,
		RAMPercent:    ramPercent,
		Goroutines:    runtime.NumGoroutine(),
		DataDirMB:     h.getDirSize(h.dataDir),
		Databases:     h.databaseInfo(),
	}
	if h.sessions != nil {
		response.Sessions = h.sessions.Len()
	}
	for _, db := range response.Databases {
		if db.Error != "" {
			response.Status = "degraded"
		}
	}

	return response
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")
	h.writeJSON(w, http.StatusOK, h.GetSystemStatusSnapshot())
}

// HandleDatabaseStats handles GET /api/system/database
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting database stats")
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"databases":    h.databaseInfo(),
		"last_checked": time.Now().Format(time.RFC3339),
	})
}

// HandleJobsStatus handles GET /api/jobs
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	jobs := []scheduler.JobStatus{}
	if h.jobs != nil {
		jobs = h.jobs.Status()
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// HandleTriggerJob handles POST /api/jobs/{name}. The job runs in the
// background; its outcome shows up in GET /api/jobs.
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.jobs == nil || !h.jobs.Has(name) {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	h.log.Info().Str("job", name).Msg("Manual job run triggered")
	go func() {
		if err := h.jobs.Trigger(name); err != nil && !errors.Is(err, scheduler.ErrUnknownJob) {
			h.log.Warn().Err(err).Str("job", name).Msg("Manual job run failed")
		}
	}()

	h.writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "success",
		"message": "Job " + name + " triggered",
	})
}

func (h *SystemHandlers) databaseInfo() []DBInfo {
	out := make([]DBInfo, 0, len(h.databases))
	for _, db := range h.databases {
		if db == nil {
			continue
		}
		info := DBInfo{Name: db.Name(), Path: db.Path(), Profile: string(db.Profile())}
		stats, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to get database stats")
			info.Error = err.Error()
		} else {
			info.Stats = stats
		}
		out = append(out, info)
	}
	return out
}

// getDirSize calculates total size of a directory in MB
func (h *SystemHandlers) getDirSize(dirPath string) float64 {
	if dirPath == "" {
		return 0
	}

	var totalSize int64
	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})
	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0
	}

	return float64(totalSize) / 1024 / 1024
}

// getSystemStats returns CPU and RAM usage percentages. CPU is sampled
// over 100ms to keep the endpoint responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
