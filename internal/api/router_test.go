// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

package api

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/dailypuzzlepost/puzzlebank/internal/audit"
	"github.com/dailypuzzlepost/puzzlebank/internal/backup"
	"github.com/dailypuzzlepost/puzzlebank/internal/bank"
	"github.com/dailypuzzlepost/puzzlebank/internal/config"
	"github.com/dailypuzzlepost/puzzlebank/internal/injection"
	"github.com/dailypuzzlepost/puzzlebank/internal/middleware"
	"github.com/dailypuzzlepost/puzzlebank/internal/models"
	"github.com/dailypuzzlepost/puzzlebank/internal/rotation"
	"github.com/dailypuzzlepost/puzzlebank/internal/serving"
)

const cycleLength = 30

var launch = time.Date(2025, 8, 19, 0, 0, 0, 0, time.UTC)

type testEnv struct {
	router *Router
	server http.Handler
	store  bank.Store
}

func newTestEnv(t *testing.T, now time.Time, security config.SecurityConfig) *testEnv {
	t.Helper()

	store, err := bank.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}

	clocks := map[models.PuzzleType]*rotation.Clock{}
	cycles := map[models.PuzzleType]int{}
	for _, pt := range models.AllPuzzleTypes {
		clock, err := rotation.New(launch, cycleLength)
		if err != nil {
			t.Fatalf("rotation.New: %v", err)
		}
		clocks[pt] = clock
		cycles[pt] = cycleLength
	}

	backups, err := backup.NewManager(t.TempDir(), store, cycles, nil)
	if err != nil {
		t.Fatalf("backup.NewManager: %v", err)
	}
	auditLog := audit.NewMemoryStore(0)

	nowFn := func() time.Time { return now }
	engine, err := injection.NewEngine(injection.Config{
		Store:    store,
		Backups:  backups,
		AuditLog: auditLog,
		Clocks:   clocks,
		Now:      nowFn,
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	facade, err := serving.NewFacade(store, clocks, nowFn)
	if err != nil {
		t.Fatalf("NewFacade: %v", err)
	}

	health := serving.NewHealthChecker(store, auditLog, cycles)
	auth := middleware.NewAuthenticator(security)

	router := NewRouter(facade, engine, backups, auditLog, health, auth, security)
	return &testEnv{router: router, server: router.Handler(), store: store}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding envelope from %q: %v", rec.Body.String(), err)
	}
	return resp
}

func validHangman(word string) map[string]interface{} {
	return map[string]interface{}{
		"id":         "word_api",
		"word":       word,
		"hint":       "routing fixture",
		"category":   "Testing",
		"length":     len(word),
		"difficulty": 3,
	}
}

func TestTodayEndpoint(t *testing.T) {
	env := newTestEnv(t, launch, config.SecurityConfig{})

	rec := env.do(t, http.MethodPost, "/api/v1/hangman/inject", map[string]interface{}{
		"payload":  validHangman("ROUTER"),
		"strategy": "replace_specific",
		"slot_id":  1,
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("inject status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/v1/hangman/today", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("today status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	if resp.Status != "success" {
		t.Errorf("envelope status = %q", resp.Status)
	}
	if !strings.Contains(rec.Body.String(), "word_01") {
		t.Errorf("body missing content id: %s", rec.Body.String())
	}
}

func TestTodayMarksRepeatReadsCached(t *testing.T) {
	env := newTestEnv(t, launch, config.SecurityConfig{})

	rec := env.do(t, http.MethodPost, "/api/v1/hangman/inject", map[string]interface{}{
		"payload":  validHangman("POINTER"),
		"strategy": "replace_specific",
		"slot_id":  1,
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("inject status = %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/hangman/today", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("first today: %d", rec.Code)
	}
	if resp := decodeEnvelope(t, rec); resp.Metadata.Cached {
		t.Error("first read should not be marked cached")
	}

	rec = env.do(t, http.MethodGet, "/api/v1/hangman/today", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("second today: %d", rec.Code)
	}
	if resp := decodeEnvelope(t, rec); !resp.Metadata.Cached {
		t.Errorf("repeat read not marked cached: %s", rec.Body.String())
	}
}

func TestTodayUnseededIs404(t *testing.T) {
	env := newTestEnv(t, launch, config.SecurityConfig{})

	rec := env.do(t, http.MethodGet, "/api/v1/sudoku/today", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error == nil || resp.Error.Code != CodeNotFound {
		t.Errorf("error envelope = %+v", resp.Error)
	}
}

func TestUnknownPuzzleTypeIs404(t *testing.T) {
	env := newTestEnv(t, launch, config.SecurityConfig{})

	rec := env.do(t, http.MethodGet, "/api/v1/mahjong/today", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDateEndpointErrors(t *testing.T) {
	env := newTestEnv(t, launch.AddDate(0, 0, 5), config.SecurityConfig{})

	cases := []struct {
		date     string
		wantCode int
		wantErr  string
	}{
		{"2025-08-18", http.StatusBadRequest, CodeDateBeforeLaunch},
		{"18-08-2025", http.StatusBadRequest, CodeInvalidDate},
		{"2025-08-20", http.StatusNotFound, CodeNotFound}, // valid date, unseeded slot
	}
	for _, tc := range cases {
		rec := env.do(t, http.MethodGet, "/api/v1/crossword/date/"+tc.date, nil, nil)
		if rec.Code != tc.wantCode {
			t.Errorf("date %q: status = %d, want %d", tc.date, rec.Code, tc.wantCode)
			continue
		}
		resp := decodeEnvelope(t, rec)
		if resp.Error == nil || resp.Error.Code != tc.wantErr {
			t.Errorf("date %q: error = %+v, want code %s", tc.date, resp.Error, tc.wantErr)
		}
	}
}

func TestInjectValidationError(t *testing.T) {
	env := newTestEnv(t, launch, config.SecurityConfig{})

	rec := env.do(t, http.MethodPost, "/api/v1/hangman/inject", map[string]interface{}{
		"payload": map[string]interface{}{"id": "word_bad", "word": "nope!"},
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error == nil || resp.Error.Code != CodeValidationError {
		t.Fatalf("error envelope = %+v", resp.Error)
	}
	if resp.Error.Details["errors"] == nil {
		t.Error("validation errors missing from details")
	}
}

func TestInjectInvalidSlot(t *testing.T) {
	env := newTestEnv(t, launch, config.SecurityConfig{})

	rec := env.do(t, http.MethodPost, "/api/v1/hangman/inject", map[string]interface{}{
		"payload":  validHangman("VALID"),
		"strategy": "replace_specific",
		"slot_id":  31,
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error == nil || resp.Error.Code != CodeInvalidSlot {
		t.Errorf("error envelope = %+v", resp.Error)
	}
}

func TestInjectRequiresAuthWhenEnabled(t *testing.T) {
	security := config.SecurityConfig{
		AuthEnabled: true,
		JWTSecret:   strings.Repeat("k", 32),
	}
	env := newTestEnv(t, launch, security)

	body := map[string]interface{}{"payload": validHangman("SECRET")}

	rec := env.do(t, http.MethodPost, "/api/v1/hangman/inject", body, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", rec.Code)
	}

	auth := middleware.NewAuthenticator(security)
	token, err := auth.IssueToken("ops", time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	rec = env.do(t, http.MethodPost, "/api/v1/hangman/inject", body, map[string]string{
		"Authorization": "Bearer " + token,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("authenticated status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Reads stay public.
	rec = env.do(t, http.MethodGet, "/api/v1/hangman/today", nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("public read status = %d, want 200", rec.Code)
	}
}

func TestValidateEndpointDryRun(t *testing.T) {
	env := newTestEnv(t, launch, config.SecurityConfig{})

	raw, _ := json.Marshal(validHangman("PREVIEW"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/hangman/validate", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"is_valid":true`) {
		t.Errorf("body = %s, want is_valid true", rec.Body.String())
	}

	// A dry run never seeds the bank.
	rec = env.do(t, http.MethodGet, "/api/v1/hangman/today", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("bank should stay empty after validate, status = %d", rec.Code)
	}
}

func TestBankListing(t *testing.T) {
	env := newTestEnv(t, launch, config.SecurityConfig{})

	for slot := 1; slot <= 3; slot++ {
		rec := env.do(t, http.MethodPost, "/api/v1/anagram/inject", map[string]interface{}{
			"payload": map[string]interface{}{
				"id":            fmt.Sprintf("anagram_fx_%d", slot),
				"originalWord":  "LISTEN",
				"scrambledWord": "SILENT",
				"definition":    "attending closely to sound",
				"difficulty":    2,
			},
			"strategy": "replace_specific",
			"slot_id":  slot,
		}, nil)
		if rec.Code != http.StatusCreated {
			t.Fatalf("inject slot %d: %d %s", slot, rec.Code, rec.Body.String())
		}
	}

	rec := env.do(t, http.MethodGet, "/api/v1/anagram/bank", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Data bankListing `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.SeededSlots != 3 || resp.Data.TotalSlots != cycleLength {
		t.Errorf("seeded/total = %d/%d, want 3/%d", resp.Data.SeededSlots, resp.Data.TotalSlots, cycleLength)
	}
}

func TestRotationStatusEndpoint(t *testing.T) {
	env := newTestEnv(t, launch.AddDate(0, 0, 45), config.SecurityConfig{})

	rec := env.do(t, http.MethodGet, "/api/v1/wordsearch/rotation/status", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Data models.RotationState `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.SlotIndex != 16 || resp.Data.CycleNumber != 2 {
		t.Errorf("slot/cycle = %d/%d, want 16/2", resp.Data.SlotIndex, resp.Data.CycleNumber)
	}
}

func TestBackupAndRestoreEndpoints(t *testing.T) {
	env := newTestEnv(t, launch, config.SecurityConfig{})

	rec := env.do(t, http.MethodPost, "/api/v1/hangman/inject", map[string]interface{}{
		"payload":  validHangman("ORIGINAL"),
		"strategy": "replace_specific",
		"slot_id":  1,
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("inject: %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/hangman/backup", map[string]interface{}{
		"description": "before overwrite",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("backup status = %d, body %s", rec.Code, rec.Body.String())
	}
	var snapResp struct {
		Data backup.Snapshot `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &snapResp); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snapResp.Data.ID == "" {
		t.Fatal("snapshot id missing")
	}

	rec = env.do(t, http.MethodPost, "/api/v1/hangman/inject", map[string]interface{}{
		"payload":  validHangman("CLOBBERED"),
		"strategy": "replace_specific",
		"slot_id":  1,
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("overwrite: %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/backups/"+snapResp.Data.ID+"/restore", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("restore status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/v1/hangman/today", nil, nil)
	if !strings.Contains(rec.Body.String(), "ORIGINAL") {
		t.Errorf("restored content missing: %s", rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/v1/backups", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list backups status = %d", rec.Code)
	}
}

func TestRestoreUnknownSnapshot(t *testing.T) {
	env := newTestEnv(t, launch, config.SecurityConfig{})

	rec := env.do(t, http.MethodPost, "/api/v1/backups/no-such-id/restore", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAuditEndpoint(t *testing.T) {
	env := newTestEnv(t, launch, config.SecurityConfig{})

	env.do(t, http.MethodPost, "/api/v1/hangman/inject", map[string]interface{}{
		"payload": validHangman("AUDITED"),
	}, nil)
	env.do(t, http.MethodPost, "/api/v1/hangman/inject", map[string]interface{}{
		"payload": map[string]interface{}{"id": "word_bad"},
	}, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/audit", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Data []audit.InjectionRecord `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("audit entries = %d, want 2", len(resp.Data))
	}

	rec = env.do(t, http.MethodGet, "/api/v1/audit?success=false", nil, nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode filtered: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Success {
		t.Errorf("success=false filter returned %+v", resp.Data)
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, launch, config.SecurityConfig{})

	rec := env.do(t, http.MethodGet, "/api/v1/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	// Empty banks report degraded but still 200.
	if !strings.Contains(rec.Body.String(), "degraded") {
		t.Errorf("body = %s, want degraded banks", rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, launch, config.SecurityConfig{})

	rec := env.do(t, http.MethodGet, "/metrics", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("prometheus exposition missing runtime metrics")
	}
}

func TestRequestIDHeaderOnResponses(t *testing.T) {
	env := newTestEnv(t, launch, config.SecurityConfig{})

	rec := env.do(t, http.MethodGet, "/api/v1/health", nil, nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}
