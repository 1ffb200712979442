package httpapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/attachments"
	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/domain"
	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/events"
	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/intake"
	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/review"
	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/store"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")

type fixture struct {
	router http.Handler
	dir    string
	hub    *events.Hub
}

type envelope struct {
	Success   bool               `json:"success"`
	Applicant domain.Application `json:"applicant"`
	Error     struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
	} `json:"error"`
}

func newFixture(t *testing.T, policy attachments.Policy, limiter *KeyLimiter) *fixture {
	t.Helper()
	dir := t.TempDir()
	disk, err := attachments.NewDisk(dir)
	require.NoError(t, err)

	st := store.NewMemory()
	files := attachments.NewManager(disk, policy)
	log, _ := test.NewNullLogger()
	hub := events.NewHub()

	r := NewRouter(Deps{
		Intake:         intake.NewService(st, files, log),
		Review:         review.NewService(st, log),
		Files:          files,
		Hub:            hub,
		Log:            log,
		SubmitLimiter:  limiter,
		MaxUploadBytes: policy.MaxBytes,
	})
	return &fixture{router: r, dir: dir, hub: hub}
}

func ashaForm() map[string]string {
	return map[string]string{
		"firstName":    "Asha",
		"lastName":     "Rao",
		"email":        "asha@example.org",
		"phone":        "9000000000",
		"role":         "volunteer",
		"education":    "BSc",
		"motivation":   "help kids",
		"availability": "weekends",
	}
}

func multipartRequest(t *testing.T, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile(resumeField, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/register", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) list(t *testing.T, query string) []domain.Application {
	t.Helper()
	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/applicants"+query, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var apps []domain.Application
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apps))
	return apps
}

func (f *fixture) submit(t *testing.T, fields map[string]string) domain.Application {
	t.Helper()
	rec := f.do(multipartRequest(t, fields, "", nil))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Applicant
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func putStatus(id, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPut, "/api/applicants/"+id+"/status", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRegisterThenListEndToEnd(t *testing.T) {
	f := newFixture(t, attachments.DefaultPolicy(), nil)

	fields := ashaForm()
	fields["status"] = "approved"
	rec := f.do(multipartRequest(t, fields, "", nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	env := decode(t, rec)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Applicant.ID)
	assert.Equal(t, "Asha", env.Applicant.FirstName)
	assert.Equal(t, domain.RoleVolunteer, env.Applicant.Role)
	assert.Equal(t, domain.StatusPending, env.Applicant.Status)
	assert.Nil(t, env.Applicant.ResumeReference)
	assert.False(t, env.Applicant.AppliedAt.IsZero())

	apps := f.list(t, "")
	require.Len(t, apps, 1)
	assert.Equal(t, env.Applicant.ID, apps[0].ID)
	assert.Equal(t, domain.StatusPending, apps[0].Status)
}

func TestRegisterStoresTextVerbatim(t *testing.T) {
	f := newFixture(t, attachments.DefaultPolicy(), nil)

	fields := ashaForm()
	fields["skills"] = "Java: Map<String, Integer>, C++ templates"
	fields["motivation"] = "I can help with <html> tutorials"
	f.submit(t, fields)

	apps := f.list(t, "")
	require.Len(t, apps, 1)
	assert.Equal(t, fields["skills"], apps[0].Skills)
	assert.Equal(t, fields["motivation"], apps[0].Motivation)
}

func TestListEmptyIsArray(t *testing.T) {
	f := newFixture(t, attachments.DefaultPolicy(), nil)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/applicants", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestRegisterWithResumeServesFile(t *testing.T) {
	f := newFixture(t, attachments.DefaultPolicy(), nil)

	rec := f.do(multipartRequest(t, ashaForm(), "Asha CV.pdf", pdfBytes))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env := decode(t, rec)
	require.NotNil(t, env.Applicant.ResumeReference)
	ref := *env.Applicant.ResumeReference
	assert.True(t, strings.HasPrefix(ref, attachments.RefPrefix))

	got := f.do(httptest.NewRequest(http.MethodGet, ref, nil))
	require.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, "application/pdf", got.Header().Get("Content-Type"))
	assert.Equal(t, pdfBytes, got.Body.Bytes())
}

func TestRegisterMissingFields(t *testing.T) {
	f := newFixture(t, attachments.DefaultPolicy(), nil)

	fields := ashaForm()
	delete(fields, "email")
	fields["motivation"] = "   "
	rec := f.do(multipartRequest(t, fields, "", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	env := decode(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "submission_error", env.Error.Code)
	assert.Contains(t, env.Error.Message, "email")
	assert.Contains(t, env.Error.Message, "motivation")
	assert.Empty(t, f.list(t, ""))
}

func TestRegisterUnknownRole(t *testing.T) {
	f := newFixture(t, attachments.DefaultPolicy(), nil)
	fields := ashaForm()
	fields["role"] = "astronaut"
	rec := f.do(multipartRequest(t, fields, "", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.list(t, ""))
}

func TestRegisterRejectedAttachmentAppendsNothing(t *testing.T) {
	f := newFixture(t, attachments.DefaultPolicy(), nil)

	rec := f.do(multipartRequest(t, ashaForm(), "tool.exe", []byte("MZ\x90\x00")))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "submission_error", decode(t, rec).Error.Code)

	assert.Empty(t, f.list(t, ""))
	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRegisterAttachmentTooLarge(t *testing.T) {
	f := newFixture(t, attachments.Policy{MaxBytes: 64, AllowedExtensions: []string{".pdf"}}, nil)

	big := append(append([]byte{}, pdfBytes...), bytes.Repeat([]byte("x"), 128)...)
	rec := f.do(multipartRequest(t, ashaForm(), "cv.pdf", big))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, f.list(t, ""))
}

func TestRegisterURLEncodedAndJSON(t *testing.T) {
	f := newFixture(t, attachments.DefaultPolicy(), nil)

	form := url.Values{}
	for k, v := range ashaForm() {
		form.Set(k, v)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := f.do(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body, err := json.Marshal(ashaForm())
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = f.do(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	apps := f.list(t, "")
	require.Len(t, apps, 2)
	assert.NotEqual(t, apps[0].ID, apps[1].ID)
}

func TestRegisterMalformedJSON(t *testing.T) {
	f := newFixture(t, attachments.DefaultPolicy(), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := f.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "submission_error", decode(t, rec).Error.Code)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t, attachments.DefaultPolicy(), nil)
	a := f.submit(t, ashaForm())
	other := ashaForm()
	other["firstName"] = "Ravi"
	b := f.submit(t, other)

	rec := f.do(putStatus(a.ID, `{"status":"approved"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decode(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, domain.StatusApproved, env.Applicant.Status)
	assert.Equal(t, a.AppliedAt.UTC(), env.Applicant.AppliedAt.UTC())

	apps := f.list(t, "")
	require.Len(t, apps, 2)
	assert.Equal(t, domain.StatusApproved, apps[0].Status)
	assert.Equal(t, b.ID, apps[1].ID)
	assert.Equal(t, domain.StatusPending, apps[1].Status)
}

func TestUpdateStatusErrors(t *testing.T) {
	f := newFixture(t, attachments.DefaultPolicy(), nil)
	a := f.submit(t, ashaForm())

	cases := []struct {
		name   string
		id     string
		body   string
		status int
		code   string
	}{
		{"unknown id", "nope", `{"status":"approved"}`, http.StatusNotFound, "not_found"},
		{"invalid status", a.ID, `{"status":"archived"}`, http.StatusBadRequest, "invalid_status"},
		{"missing status", a.ID, `{}`, http.StatusBadRequest, "invalid_status"},
		{"not json", a.ID, `status=approved`, http.StatusBadRequest, "bad_request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := f.list(t, "")
			rec := f.do(putStatus(tc.id, tc.body))
			assert.Equal(t, tc.status, rec.Code)
			env := decode(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tc.code, env.Error.Code)
			assert.Equal(t, before, f.list(t, ""))
		})
	}
}

func TestListFiltersAndStats(t *testing.T) {
	f := newFixture(t, attachments.DefaultPolicy(), nil)
	a := f.submit(t, ashaForm())
	other := ashaForm()
	other["firstName"] = "Ravi"
	other["email"] = "ravi@example.org"
	other["role"] = "Intern"
	b := f.submit(t, other)

	require.Equal(t, http.StatusOK, f.do(putStatus(b.ID, `{"status":"contacted"}`)).Code)

	got := f.list(t, "?status=contacted")
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)

	got = f.list(t, "?q=ASHA")
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)

	got = f.list(t, "?status=all&q=intern")
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)

	assert.Empty(t, f.list(t, "?status=pending&q=ravi"))

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/applicants/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var st review.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, review.Stats{Total: 2, Pending: 1, Contacted: 1}, st)
}

func TestGetApplicant(t *testing.T) {
	f := newFixture(t, attachments.DefaultPolicy(), nil)
	a := f.submit(t, ashaForm())

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/applicants/"+a.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, a.ID, decode(t, rec).Applicant.ID)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/applicants/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode(t, rec).Error.Code)
}

func TestImagesUnknownOrInvalidKey(t *testing.T) {
	f := newFixture(t, attachments.DefaultPolicy(), nil)
	for _, p := range []string{"/images/01J000000000000000000000AA-cv.pdf", "/images/..%2Fsecret"} {
		rec := f.do(httptest.NewRequest(http.MethodGet, p, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, p)
	}
}

func TestRegisterRateLimited(t *testing.T) {
	f := newFixture(t, attachments.DefaultPolicy(), NewKeyLimiter(1, 1))

	f.submit(t, ashaForm())
	rec := f.do(multipartRequest(t, ashaForm(), "", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limited", decode(t, rec).Error.Code)
	assert.Len(t, f.list(t, ""), 1)
}

func TestRequestIDPropagates(t *testing.T) {
	f := newFixture(t, attachments.DefaultPolicy(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/applicants/missing", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := f.do(req)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "req-123", decode(t, rec).Error.RequestID)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestCorsPreflight(t *testing.T) {
	f := newFixture(t, attachments.DefaultPolicy(), nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/register", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := f.do(req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCorsRestrictedOrigins(t *testing.T) {
	h := Cors([]string{"https://ngo.example.org/"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://ngo.example.org")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://ngo.example.org", rec.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoverWritesEnvelope(t *testing.T) {
	log, hook := test.NewNullLogger()
	h := RequestID(Recover(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", decode(t, rec).Error.Code)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "panic", hook.LastEntry().Message)
}

func TestHealth(t *testing.T) {
	f := newFixture(t, attachments.DefaultPolicy(), nil)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, attachments.DefaultPolicy(), nil)
	f.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	rec := f.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "intake_http_requests_total")
}

func TestEventsStreamSubmission(t *testing.T) {
	f := newFixture(t, attachments.DefaultPolicy(), nil)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	rd := bufio.NewReader(resp.Body)
	nextData := func() string {
		for {
			line, err := rd.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "data: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			}
		}
	}

	var ping events.Event
	require.NoError(t, json.Unmarshal([]byte(nextData()), &ping))
	assert.Equal(t, events.TypePing, ping.Type)

	body, err := json.Marshal(ashaForm())
	require.NoError(t, err)
	post, err := srv.Client().Post(srv.URL+"/api/register", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, post.Body)
	post.Body.Close()
	require.Equal(t, http.StatusCreated, post.StatusCode)

	var evt events.Event
	require.NoError(t, json.Unmarshal([]byte(nextData()), &evt))
	assert.Equal(t, events.TypeApplicationSubmitted, evt.Type)
	assert.Contains(t, string(evt.Data), `"role":"volunteer"`)
}
