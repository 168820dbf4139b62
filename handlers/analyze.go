// Package handlers wires the consolidation pipeline to the HTTP surface.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jalad-shrimali/lead-consolidator/config"
	"github.com/jalad-shrimali/lead-consolidator/consolidate"
	"github.com/jalad-shrimali/lead-consolidator/preset"
)

// Server bundles config and the preset store behind the HTTP handlers.
type Server struct {
	cfg     config.Config
	presets *preset.Store
}

func New(cfg config.Config, presets *preset.Store) *Server {
	return &Server{cfg: cfg, presets: presets}
}

// Routes registers every endpoint on the mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/analyze", s.HandleAnalyze)
	mux.HandleFunc("/providers", s.HandleProviders)
	mux.HandleFunc("/presets", s.HandlePresets)
	mux.Handle("/download/",
		http.StripPrefix("/download/", http.FileServer(http.Dir(s.cfg.ReportsDir))))
}

type analyzeResponse struct {
	Metrics      consolidate.Metrics            `json:"metrics"`
	Dispositions []consolidate.DispositionCount `json:"dispositions"`
	Download     string                         `json:"download"`
}

// HandleAnalyze accepts a multipart upload of the MIS and CDR files plus a
// provider selection (inline or by preset name) and responds with the run
// metrics and a download link for the consolidated report.
func (s *Server) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Only POST allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(s.cfg.MaxUploadMB << 20); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	mode, err := consolidate.ParseMode(r.FormValue("mode"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	providers := splitProviders(r.FormValue("providers"))
	if name := strings.TrimSpace(r.FormValue("preset")); name != "" && len(providers) == 0 {
		providers, err = s.presets.Get(name)
		if errors.Is(err, preset.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	mis, err := formTable(r, "mis_file", "MIS")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cdr, err := formTable(r, "cdr_file", "CDR")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := consolidate.Analyze(mis, cdr, providers, mode)
	if err != nil {
		http.Error(w, err.Error(), analysisStatus(err))
		return
	}

	name, err := s.saveReport(report, r.FormValue("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	log.Printf("analyze: %d leads, %d matched, %d cdr rows dropped -> %s",
		report.Metrics.TotalLeads, report.Metrics.MatchedLeads,
		report.Metrics.DroppedCDRRows, name)

	writeJSON(w, analyzeResponse{
		Metrics:      report.Metrics,
		Dispositions: report.Dispositions,
		Download:     "/download/" + name,
	})
}

// HandleProviders reads an uploaded MIS file and returns the distinct
// provider names, the source list for the caller's filter selection.
func (s *Server) HandleProviders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Only POST allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(s.cfg.MaxUploadMB << 20); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	mis, err := formTable(r, "mis_file", "MIS")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	providers, err := consolidate.Providers(mis)
	if err != nil {
		http.Error(w, err.Error(), analysisStatus(err))
		return
	}
	writeJSON(w, map[string][]string{"providers": providers})
}

// HandlePresets lists (GET), saves (POST, JSON body) or deletes (DELETE,
// ?name=) provider presets.
func (s *Server) HandlePresets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		presets, err := s.presets.List()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if presets == nil {
			presets = []preset.Preset{}
		}
		writeJSON(w, presets)

	case http.MethodPost:
		var p preset.Preset
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.presets.Save(p.Name, p.Providers); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, p)

	case http.MethodDelete:
		name := r.URL.Query().Get("name")
		err := s.presets.Delete(name)
		if errors.Is(err, preset.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) saveReport(report *consolidate.Report, format string) (string, error) {
	if err := os.MkdirAll(s.cfg.ReportsDir, 0755); err != nil {
		return "", err
	}
	stamp := uuid.New().String()[:8]

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "csv":
		name := fmt.Sprintf("consolidated_%s.csv", stamp)
		f, err := os.Create(filepath.Join(s.cfg.ReportsDir, name))
		if err != nil {
			return "", err
		}
		defer f.Close()
		if err := report.WriteCSV(f); err != nil {
			return "", err
		}
		return name, nil
	case "xlsx":
		name := fmt.Sprintf("consolidated_%s.xlsx", stamp)
		if err := report.WriteWorkbook(filepath.Join(s.cfg.ReportsDir, name)); err != nil {
			return "", err
		}
		return name, nil
	default:
		return "", fmt.Errorf("unknown report format %q", format)
	}
}

func formTable(r *http.Request, field, label string) (*consolidate.Table, error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%s file (%s) is required: %w", label, field, err)
	}
	defer f.Close()
	return consolidate.ReadTable(label, hdr.Filename, f)
}

func splitProviders(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// analysisStatus maps pipeline errors to HTTP codes: user-fixable input
// problems are 400, everything else 500.
func analysisStatus(err error) int {
	var schemaErr *consolidate.SchemaError
	if errors.As(err, &schemaErr) || errors.Is(err, consolidate.ErrNoProviders) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}
