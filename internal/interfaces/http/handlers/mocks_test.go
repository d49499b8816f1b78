package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"github.com/turtacn/legajos-penal/internal/application/upload"
	"github.com/turtacn/legajos-penal/internal/domain/caseno"
	"github.com/turtacn/legajos-penal/internal/domain/casefile"
	"github.com/turtacn/legajos-penal/internal/domain/user"
	"github.com/turtacn/legajos-penal/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ─────────────────────────────────────────────────────────────────────────────
// casefile.Service
// ─────────────────────────────────────────────────────────────────────────────

type mockCaseService struct {
	mock.Mock
}

func (m *mockCaseService) GetByNumbers(ctx context.Context, numbers []string) ([]casefile.CaseRecord, error) {
	args := m.Called(ctx, numbers)
	if v := args.Get(0); v != nil {
		return v.([]casefile.CaseRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCaseService) Update(ctx context.Context, actor *user.Session, number string, data map[string]any, cf *caseno.CourtFile) error {
	return m.Called(ctx, actor, number, data, cf).Error(0)
}

func (m *mockCaseService) History(ctx context.Context, number string) (*casefile.History, error) {
	args := m.Called(ctx, number)
	if v := args.Get(0); v != nil {
		return v.(*casefile.History), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCaseService) ListNumbers(ctx context.Context, kind caseno.ListingKind, year string) ([]string, error) {
	args := m.Called(ctx, kind, year)
	if v := args.Get(0); v != nil {
		return v.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCaseService) Deadlines(ctx context.Context, now time.Time) ([]casefile.DeadlineRow, error) {
	args := m.Called(ctx, now)
	if v := args.Get(0); v != nil {
		return v.([]casefile.DeadlineRow), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCaseService) Search(ctx context.Context, actor *user.Session, req casefile.SearchRequest) (*casefile.SearchPage, error) {
	args := m.Called(ctx, actor, req)
	if v := args.Get(0); v != nil {
		return v.(*casefile.SearchPage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCaseService) Years(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCaseService) NextConsultation(ctx context.Context, req casefile.ConsultationRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// ─────────────────────────────────────────────────────────────────────────────
// upload.Service and FilingLibrary
// ─────────────────────────────────────────────────────────────────────────────

type mockUploadService struct {
	mock.Mock
}

func (m *mockUploadService) Process(ctx context.Context, files []upload.IncomingFile) (*upload.Report, error) {
	args := m.Called(ctx, files)
	if v := args.Get(0); v != nil {
		return v.(*upload.Report), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUploadService) Dedupe(ctx context.Context, dir string) (*upload.DryRunReport, error) {
	args := m.Called(ctx, dir)
	if v := args.Get(0); v != nil {
		return v.(*upload.DryRunReport), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockLibrary struct {
	mock.Mock
}

func (m *mockLibrary) DeleteMatching(ctx context.Context, number string) ([]string, error) {
	args := m.Called(ctx, number)
	if v := args.Get(0); v != nil {
		return v.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLibrary) DeleteMatchingAny(ctx context.Context, numbers []string) ([]string, error) {
	args := m.Called(ctx, numbers)
	if v := args.Get(0); v != nil {
		return v.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLibrary) Resolve(p string) (string, error) {
	args := m.Called(p)
	return args.String(0), args.Error(1)
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

// withSession injects sess as if RequireSession had run.
func withSession(sess *user.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sess != nil {
			middleware.SetSession(c, sess)
		}
		c.Next()
	}
}

func adminSession() *user.Session {
	return &user.Session{Token: "t-admin", Username: "agarcia", Role: user.RoleAdmin, ExpiresAt: time.Now().Add(time.Hour)}
}

func userSession() *user.Session {
	return &user.Session{Token: "t-user", Username: "jpolo", Role: user.RoleUser, ExpiresAt: time.Now().Add(time.Hour)}
}

type counter struct {
	ok, failed int
}

func (c *counter) RecordLogin(success bool)      { c.record(success) }
func (c *counter) RecordCaseUpdate(success bool) { c.record(success) }

func (c *counter) record(success bool) {
	if success {
		c.ok++
	} else {
		c.failed++
	}
}
