package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/verte-zerg/signtutor/internal/model"
)

func TestPredictUploadsMultipartFrame(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/predict/frame" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			http.Error(w, "bad", http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(file)
		if header.Filename != "frame.jpg" || string(data) != "jpeg-bytes" {
			t.Errorf("unexpected upload %q %q", header.Filename, data)
		}
		_, _ = w.Write([]byte(`{"label":"hello","confidence":0.95,"all":{"hello":0.95,"help":0.05}}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL).Predict(context.Background(), []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if res.Label != "hello" || res.Confidence != 0.95 || res.Distribution["help"] != 0.05 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestPredictErrorKinds(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "server status", status: http.StatusInternalServerError, body: `boom`, want: ErrServer},
		{name: "bad json", status: http.StatusOK, body: `not json`, want: ErrServer},
		{name: "invalid frame", status: http.StatusOK, body: `{"label":"error","confidence":0,"all":{},"error":"cannot decode"}`, want: ErrInvalidFrame},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).Predict(context.Background(), []byte("x"))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestPredictNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := New(base).Predict(context.Background(), []byte("x"))
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	if errors.Is(err, ErrServer) {
		t.Fatalf("network error must not match server error")
	}
}

func TestLogPerformanceAndDashboard(t *testing.T) {
	var got model.PerformanceLog
	mux := http.NewServeMux()
	mux.HandleFunc("/predict/log", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"status":"logged"}`))
	})
	mux.HandleFunc("/dashboard", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"total_predictions":3,"usage_by_label":{"hello":2,"help":1}}`))
	})
	mux.HandleFunc("/dashboard/students", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"students":[{"id":"s1","name":"Student s1"}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL)
	entry := model.PerformanceLog{StudentID: "s1", TargetSign: "hello", PredictedSign: "hello", Confidence: 0.9, IsCorrect: true}
	if err := c.LogPerformance(context.Background(), entry); err != nil {
		t.Fatalf("log: %v", err)
	}
	if got.StudentID != "s1" || !got.IsCorrect {
		t.Fatalf("unexpected logged entry %+v", got)
	}

	metrics, err := c.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if metrics.TotalPredictions != 3 || metrics.UsageByLabel["hello"] != 2 {
		t.Fatalf("unexpected metrics %+v", metrics)
	}

	students, err := c.Students(context.Background())
	if err != nil {
		t.Fatalf("students: %v", err)
	}
	if len(students) != 1 || students[0].ID != "s1" {
		t.Fatalf("unexpected students %+v", students)
	}
}

func TestStudentPerformanceQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dashboard/performance/s1" || r.URL.Query().Get("sign") != "good_morning" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`{"sign":"good_morning","totalAttempts":4,"successfulAttempts":3,"successRate":75}`))
	}))
	defer srv.Close()

	out, err := New(srv.URL).StudentPerformance(context.Background(), "s1", "good_morning")
	if err != nil {
		t.Fatalf("performance: %v", err)
	}
	if out.TotalAttempts != 4 || out.SuccessRate != 75 {
		t.Fatalf("unexpected stats %+v", out)
	}
}

func TestModuleDetailRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tutor/module/3" || r.URL.Query().Get("student") != "s 1" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`{"moduleId":3,"id":3,"name":"Common Phrases","difficulty":"intermediate","signs":["help","meet","nice"],"progress":66.7}`))
	}))
	defer srv.Close()

	out, err := New(srv.URL).Module(context.Background(), 3, "s 1")
	if err != nil {
		t.Fatalf("module: %v", err)
	}
	if out.ModuleID != 3 || out.Name != "Common Phrases" || len(out.Signs) != 3 || out.Progress != 66.7 {
		t.Fatalf("unexpected module %+v", out)
	}
}

func TestNonPredictCallsReturnTypedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Students(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusInternalServerError {
		t.Fatalf("expected *Error with status 500, got %v", err)
	}
	if !errors.Is(err, ErrServer) {
		t.Fatalf("expected server kind, got %v", err)
	}
}
