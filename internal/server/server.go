// Package server is the development recognition and analytics API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder.
	_ "image/png"  // PNG decoder.
	"log"
	"mime"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/verte-zerg/signtutor/internal/catalog"
	"github.com/verte-zerg/signtutor/internal/generator"
	"github.com/verte-zerg/signtutor/internal/model"
	"github.com/verte-zerg/signtutor/internal/settings"
	"github.com/verte-zerg/signtutor/internal/signs"
	"github.com/verte-zerg/signtutor/internal/stats"
	"github.com/verte-zerg/signtutor/internal/store"
)

const maxUpload = 10 << 20

// Server answers the endpoints the client consumes, backed by the attempt store.
type Server struct {
	store   *store.Store
	gen     *generator.Generator
	modules []model.Module
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]int64
}

// New returns a server over st.
func New(st *store.Store, gen *generator.Generator, modules []model.Module) *Server {
	return &Server{
		store:    st,
		gen:      gen,
		modules:  modules,
		now:      time.Now,
		sessions: map[string]int64{},
	}
}

// Router wires every endpoint.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter().StrictSlash(true)
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.HandleFunc("/predict", s.predictFrame).Methods(http.MethodPost)
	r.HandleFunc("/predict/frame", s.predictFrame).Methods(http.MethodPost)
	r.HandleFunc("/predict/log", s.logPerformance).Methods(http.MethodPost)
	r.HandleFunc("/dashboard", s.dashboard).Methods(http.MethodGet)
	r.HandleFunc("/dashboard/students", s.students).Methods(http.MethodGet)
	r.HandleFunc("/dashboard/student/{id}", s.student).Methods(http.MethodGet)
	r.HandleFunc("/dashboard/performance/{id}", s.studentPerformance).Methods(http.MethodGet)
	r.HandleFunc("/dashboard/signs/{sign}", s.signStatistics).Methods(http.MethodGet)
	r.HandleFunc("/tutor", s.tutor).Methods(http.MethodPost)
	r.HandleFunc("/tutor/modules", s.listModules).Methods(http.MethodGet)
	r.HandleFunc("/tutor/module/{id}", s.moduleDetail).Methods(http.MethodGet)
	r.HandleFunc("/settings", s.getSettings).Methods(http.MethodGet)
	r.HandleFunc("/settings", s.updateSettings).Methods(http.MethodPost)
	r.Use(logRequests)
	return r
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// errorPrediction is returned with status 200 for unusable frames.
func errorPrediction(err error) map[string]any {
	return map[string]any{
		"error":      err.Error(),
		"label":      signs.ErrorLabel,
		"confidence": 0.0,
		"all":        map[string]float64{},
	}
}

func (s *Server) predictUpload(r *http.Request) (model.PredictionResult, error) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		return model.PredictionResult{}, fmt.Errorf("failed to parse form: %w", err)
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return model.PredictionResult{}, fmt.Errorf("no file provided: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close of the upload.
			_ = cerr
		}
	}()
	img, _, err := image.Decode(file)
	if err != nil {
		return model.PredictionResult{}, fmt.Errorf("invalid image: %w", err)
	}
	res, err := s.gen.Predict(generator.Preprocess(img))
	if err != nil {
		return model.PredictionResult{}, err
	}
	if err := s.store.InsertPrediction(r.Context(), model.PredictionEvent{Label: res.Label, Confidence: res.Confidence, CreatedAt: s.now()}); err != nil {
		log.Printf("failed to record prediction: %v", err)
	}
	return res, nil
}

func (s *Server) predictFrame(w http.ResponseWriter, r *http.Request) {
	res, err := s.predictUpload(r)
	if err != nil {
		log.Printf("predict: %v", err)
		writeJSON(w, http.StatusOK, errorPrediction(err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) logPerformance(w http.ResponseWriter, r *http.Request) {
	entry, err := decodePerformanceLog(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ctx := r.Context()
	sessionID, err := s.sessionFor(ctx, entry.StudentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	rec := model.AttemptRecord{
		SessionID:     sessionID,
		StudentID:     entry.StudentID,
		TargetSign:    entry.TargetSign,
		PredictedSign: entry.PredictedSign,
		Confidence:    entry.Confidence,
		IsCorrect:     entry.IsCorrect,
		CreatedAt:     entry.Timestamp,
	}
	if _, err := s.store.InsertAttempt(ctx, rec); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := s.store.InsertPrediction(ctx, model.PredictionEvent{Label: entry.PredictedSign, Confidence: entry.Confidence, CreatedAt: entry.Timestamp}); err != nil {
		log.Printf("failed to record prediction: %v", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "logged", "data": entry})
}

// decodePerformanceLog accepts a JSON body or form fields.
func decodePerformanceLog(r *http.Request) (model.PerformanceLog, error) {
	var entry model.PerformanceLog
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return entry, err
		}
		conf, err := strconv.ParseFloat(r.FormValue("confidence"), 64)
		if err != nil {
			return entry, fmt.Errorf("invalid confidence: %w", err)
		}
		correct, err := strconv.ParseBool(r.FormValue("isCorrect"))
		if err != nil {
			return entry, fmt.Errorf("invalid isCorrect: %w", err)
		}
		entry = model.PerformanceLog{
			StudentID:     r.FormValue("studentId"),
			TargetSign:    model.Sign(r.FormValue("targetSign")),
			PredictedSign: model.Sign(r.FormValue("predictedSign")),
			Confidence:    conf,
			IsCorrect:     correct,
		}
		if ts := r.FormValue("timestamp"); ts != "" {
			parsed, err := time.Parse(time.RFC3339, ts)
			if err != nil {
				return entry, fmt.Errorf("invalid timestamp: %w", err)
			}
			entry.Timestamp = parsed
		}
	} else if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		return entry, fmt.Errorf("invalid JSON: %w", err)
	}
	if entry.StudentID == "" {
		return entry, fmt.Errorf("studentId is required")
	}
	return entry, nil
}

// sessionFor returns the session that collects a student's logged attempts
// for the lifetime of the server.
func (s *Server) sessionFor(ctx context.Context, studentID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.sessions[studentID]; ok {
		return id, nil
	}
	id, err := s.store.OpenSession(ctx, studentID, s.now())
	if err != nil {
		return 0, err
	}
	s.sessions[studentID] = id
	return id, nil
}

// Close stamps the end of every session the server opened.
func (s *Server) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for student, id := range s.sessions {
		if err := s.store.CloseSession(ctx, id, s.now()); err != nil {
			return err
		}
		delete(s.sessions, student)
	}
	return nil
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.store.DashboardMetrics(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

func (s *Server) students(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListStudents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if list == nil {
		list = []model.StudentSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"students": list})
}

func (s *Server) student(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	out, err := s.store.StudentStats(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	out.Summary = stats.ProgressSummary(out.Accuracy, out.TotalAttempts)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) studentPerformance(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var sign model.Sign
	if raw := r.URL.Query().Get("sign"); raw != "" {
		parsed, err := signs.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		sign = parsed
	}
	out, err := s.store.SignStats(r.Context(), sign, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) signStatistics(w http.ResponseWriter, r *http.Request) {
	sign, err := signs.Parse(mux.Vars(r)["sign"])
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	out, err := s.store.SignStats(r.Context(), sign, "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listModules(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"modules": s.modules})
}

// moduleDetail reports one module. With ?student= the progress reflects
// that student's correct attempts.
func (s *Server) moduleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid module id: %w", err))
		return
	}
	m, ok := catalog.Find(s.modules, id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown module %d", id))
		return
	}
	out := model.ModuleDetail{Module: m, ModuleID: m.ID}
	if student := r.URL.Query().Get("student"); student != "" && len(m.Signs) > 0 {
		st, err := s.store.StudentStats(r.Context(), student)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		done := 0
		for _, sign := range m.Signs {
			if st.SignPerformance[sign].Correct > 0 {
				done++
			}
		}
		out.Progress = float64(done) / float64(len(m.Signs)) * 100
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) tutor(w http.ResponseWriter, r *http.Request) {
	res, err := s.predictUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	target := model.Sign(r.FormValue("target"))
	correct := res.Label == target
	next := "Try again with better hand positioning"
	if correct {
		next = "Excellent progress!"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"target":            target,
		"prediction":        res,
		"feedback":          Coach(res.Confidence),
		"correct":           correct,
		"suggestedNextStep": next,
	})
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	out, err := s.store.LoadSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	in := model.DefaultSettings()
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return
	}
	if err := settings.Validate(in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.store.SaveSettings(r.Context(), in); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "updated", "settings": in})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
