package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dental-clinic-server/internal/cache"
	"dental-clinic-server/internal/config"
	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/repository"
	"dental-clinic-server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	store  *repository.GormStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := testutil.NewStore(t)
	cfg := &config.Config{
		Environment:               "test",
		JWTSecret:                 "access-secret",
		JWTRefreshSecret:          "refresh-secret",
		JWTExpirationMinutes:      5,
		JWTRefreshExpirationHours: 1,
	}

	router := gin.New()
	SetupRoutes(router, store.DB(), cfg, cache.NewMemory())
	return &testServer{t: t, router: router, store: store}
}

func (s *testServer) do(method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func (s *testServer) decode(raw json.RawMessage, v interface{}) {
	s.t.Helper()
	require.NoError(s.t, json.Unmarshal(raw, v))
}

func (s *testServer) login() string {
	s.t.Helper()
	user := &models.User{Username: "frontdesk", IsSuperuser: true, IsStaff: true, IsActive: true}
	require.NoError(s.t, user.SetPassword("s3cret"))
	require.NoError(s.t, s.store.CreateUser(context.Background(), user))

	w, env := s.do(http.MethodPost, "/api/admin/login", gin.H{"username": "frontdesk", "password": "s3cret"}, "")
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	s.decode(env.Data, &resp)
	require.NotEmpty(s.t, resp.AccessToken)
	return resp.AccessToken
}

func (s *testServer) book(doctorID, clock string) (*httptest.ResponseRecorder, envelope) {
	return s.do(http.MethodPost, "/api/appointments", gin.H{
		"name":             "Ann",
		"phone":            "(555) 010-0000",
		"doctor_id":        doctorID,
		"appointment_date": "2024-06-01",
		"appointment_time": clock,
		"status":           "APPROVED",
	}, "")
}

func TestCreateAppointment_ForcesPending(t *testing.T) {
	s := newTestServer(t)
	_, doc := testutil.SeedCatalog(t, s.store, "Cleaning", 30)

	w, env := s.book(doc.ID, "09:00")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var appt models.Appointment
	s.decode(env.Data, &appt)
	assert.Equal(t, models.StatusPending, appt.Status)
	assert.NotEmpty(t, appt.ID)
}

func TestCreateAppointment_ValidationErrors(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(http.MethodPost, "/api/appointments", gin.H{"name": "Ann"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "phone is required")

	w, _ = s.do(http.MethodPost, "/api/appointments", gin.H{
		"name": "Ann", "phone": "555", "appointment_date": "tomorrow", "appointment_time": "09:00",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAppointment_CapacityExceeded(t *testing.T) {
	s := newTestServer(t)
	_, doc := testutil.SeedCatalog(t, s.store, "Cleaning", 30)

	for _, clock := range []string{"09:00", "09:20", "09:40"} {
		w, _ := s.book(doc.ID, clock)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w, env := s.book(doc.ID, "09:50")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Doctor already has 3 appointments in this hour. Please choose another time.", env.Error)
}

func TestUpdateAppointment_ApproveArchives(t *testing.T) {
	s := newTestServer(t)
	token := s.login()
	_, doc := testutil.SeedCatalog(t, s.store, "Cleaning", 30)

	_, env := s.book(doc.ID, "09:00")
	var appt models.Appointment
	s.decode(env.Data, &appt)

	w, env := s.do(http.MethodPatch, "/api/appointments/"+appt.ID, gin.H{"status": "approved"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var archived struct {
		ID             string `json:"id"`
		Name           string `json:"name"`
		Status         string `json:"status"`
		Deleted        bool   `json:"deleted"`
		MovedToHistory bool   `json:"moved_to_history"`
		HistoryID      string `json:"history_id"`
		Message        string `json:"message"`
	}
	s.decode(env.Data, &archived)
	assert.Equal(t, appt.ID, archived.ID)
	assert.Equal(t, "Ann", archived.Name)
	assert.Equal(t, "APPROVED", archived.Status)
	assert.True(t, archived.Deleted)
	assert.True(t, archived.MovedToHistory)
	assert.NotEmpty(t, archived.HistoryID)
	assert.Equal(t, "Appointment approved and moved to history", archived.Message)

	w, _ = s.do(http.MethodGet, "/api/appointments/"+appt.ID, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(http.MethodGet, "/api/history", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var history []models.AppointmentHistory
	s.decode(env.Data, &history)
	require.Len(t, history, 1)
	assert.Equal(t, "frontdesk", history[0].ChangedBy)
	assert.Equal(t, doc.Name, history[0].DoctorName)

	for i := 0; i < 2; i++ {
		w, env = s.do(http.MethodPost, "/api/history/"+archived.HistoryID+"/mark_visited", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		var entry models.AppointmentHistory
		s.decode(env.Data, &entry)
		assert.True(t, entry.Visited)
	}
}

func TestUpdateAppointment_AnonymousActorAndBadStatus(t *testing.T) {
	s := newTestServer(t)
	_, env := s.book("", "09:00")
	var appt models.Appointment
	s.decode(env.Data, &appt)

	w, _ := s.do(http.MethodPatch, "/api/appointments/"+appt.ID, gin.H{"status": "CANCELLED"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodPut, "/api/appointments/"+appt.ID, gin.H{"message": "moved", "status": "PENDING"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.Appointment
	s.decode(env.Data, &updated)
	assert.Equal(t, "moved", updated.Message)

	w, _ = s.do(http.MethodPatch, "/api/appointments/"+appt.ID, gin.H{"status": "REJECTED"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	history, err := s.store.ListHistory(context.Background(), repository.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "api", history[0].ChangedBy)

	w, _ = s.do(http.MethodPatch, "/api/appointments/"+appt.ID, gin.H{"status": "APPROVED"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLookupByPhone(t *testing.T) {
	s := newTestServer(t)
	s.book("", "09:00")

	w, env := s.do(http.MethodGet, "/api/appointments/by_phone?phone=555-0100", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var matches []struct {
		Source      string              `json:"_source"`
		Appointment *models.Appointment `json:"appointment"`
	}
	s.decode(env.Data, &matches)
	require.Len(t, matches, 1)
	assert.Equal(t, "active", matches[0].Source)
	assert.Equal(t, "Ann", matches[0].Appointment.Name)

	w, _ = s.do(http.MethodGet, "/api/appointments/by_phone", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStaffEndpointsRequireToken(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/appointments", "/api/history", "/api/calendar", "/api/admin/verify"} {
		w, _ := s.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w, _ := s.do(http.MethodPost, "/api/services", gin.H{"name": "Cleaning"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCalendar(t *testing.T) {
	s := newTestServer(t)
	token := s.login()
	_, doc := testutil.SeedCatalog(t, s.store, "Cleaning", 30)
	s.book(doc.ID, "09:15")

	w, _ := s.do(http.MethodGet, "/api/calendar?end_date=2024-06-30", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := s.do(http.MethodGet, "/api/calendar?start_date=2024-06-01&end_date=2024-06-30", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []struct {
		ID        string `json:"id"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	}
	s.decode(env.Data, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "2024-06-01T09:15:00", entries[0].StartTime)
	assert.Equal(t, "2024-06-01T09:45:00", entries[0].EndTime)
}

func TestCatalogEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.login()

	w, env := s.do(http.MethodPost, "/api/services", gin.H{"name": "Cleaning", "duration_minutes": 30}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var svc models.Service
	s.decode(env.Data, &svc)

	w, _ = s.do(http.MethodPost, "/api/services", gin.H{"name": "Cleaning"}, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = s.do(http.MethodPost, "/api/doctors", gin.H{"name": "Dr. Who", "service_id": svc.ID}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env = s.do(http.MethodGet, "/api/doctors?service_id="+svc.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var doctors []models.Doctor
	s.decode(env.Data, &doctors)
	require.Len(t, doctors, 1)
	assert.Equal(t, "Dr. Who", doctors[0].Name)

	w, _ = s.do(http.MethodDelete, "/api/services/"+svc.ID, nil, token)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestFeedback_RateLimitAndDedupe(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(http.MethodPost, "/api/feedback", gin.H{"name": "Ann", "phone": "555-0100", "message": "Great"}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, _ = s.do(http.MethodPost, "/api/feedback", gin.H{"name": "Ann", "phone": "555-0100", "message": "  great "}, "")
	assert.Equal(t, http.StatusAccepted, w.Code)

	for i := 0; i < 3; i++ {
		w, _ = s.do(http.MethodPost, "/api/feedback", gin.H{"message": fmt.Sprintf("note %d", i)}, "")
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w, _ = s.do(http.MethodPost, "/api/feedback", gin.H{"message": "one too many"}, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w, env := s.do(http.MethodGet, "/api/feedback?phone=0100", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var items []models.Feedback
	s.decode(env.Data, &items)
	assert.Len(t, items, 1)
}

func TestAdminRefreshVerifyLogout(t *testing.T) {
	s := newTestServer(t)
	user := &models.User{Username: "frontdesk", IsSuperuser: true, IsActive: true}
	require.NoError(t, user.SetPassword("s3cret"))
	require.NoError(t, s.store.CreateUser(context.Background(), user))

	w, _ := s.do(http.MethodPost, "/api/admin/login", gin.H{"username": "frontdesk", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := s.do(http.MethodPost, "/api/admin/login", gin.H{"username": "frontdesk", "password": "s3cret"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	s.decode(env.Data, &tokens)

	w, env = s.do(http.MethodGet, "/api/admin/verify", nil, tokens.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	var me models.UserSanitized
	s.decode(env.Data, &me)
	assert.Equal(t, "frontdesk", me.Username)

	w, env = s.do(http.MethodPost, "/api/admin/refresh", gin.H{"refresh_token": tokens.RefreshToken}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rotated struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	s.decode(env.Data, &rotated)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	w, _ = s.do(http.MethodPost, "/api/admin/refresh", gin.H{"refresh_token": tokens.RefreshToken}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "used refresh tokens are revoked")

	w, _ = s.do(http.MethodPost, "/api/admin/logout", nil, rotated.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodPost, "/api/admin/refresh", gin.H{"refresh_token": rotated.RefreshToken}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminLogin_NonSuperuserForbidden(t *testing.T) {
	s := newTestServer(t)
	user := &models.User{Username: "nurse", IsStaff: true, IsActive: true}
	require.NoError(t, user.SetPassword("s3cret"))
	require.NoError(t, s.store.CreateUser(context.Background(), user))

	w, _ := s.do(http.MethodPost, "/api/admin/login", gin.H{"username": "nurse", "password": "s3cret"}, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"UP"}`, w.Body.String())
}
