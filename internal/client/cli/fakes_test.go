package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/expensesheets/internal/client/config"
	"github.com/dmitrijs2005/expensesheets/internal/client/models"
	"github.com/dmitrijs2005/expensesheets/internal/client/remote"
	"github.com/dmitrijs2005/expensesheets/internal/common"
	"github.com/shopspring/decimal"
)

const anaUserID = "0b7e2c44-5a3f-4d8e-9b61-2f3c4d5e6a7b"

type memAuth struct {
	mu      sync.Mutex
	session *models.Session
	signIn  error
	events  chan remote.SessionEvent
}

func newMemAuth() *memAuth { return &memAuth{events: make(chan remote.SessionEvent)} }

func (m *memAuth) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.signIn != nil {
		return nil, m.signIn
	}
	m.session = &models.Session{AccessToken: "at", RefreshToken: "rt", User: models.User{ID: anaUserID, Email: email}}
	return m.session, nil
}

func (m *memAuth) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	return nil, nil
}

func (m *memAuth) SignOut(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

func (m *memAuth) GetSession(ctx context.Context) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, nil
}

func (m *memAuth) Refresh(ctx context.Context) (*models.Session, error) { return m.GetSession(ctx) }

func (m *memAuth) SetSession(s *models.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = s
}

func (m *memAuth) Events() <-chan remote.SessionEvent { return m.events }

type memCache struct{}

func (memCache) Load(context.Context) (*models.Session, *models.Employee, error) { return nil, nil, nil }
func (memCache) SaveSession(context.Context, *models.Session) error             { return nil }
func (memCache) SaveProfile(context.Context, *models.Employee) error            { return nil }
func (memCache) Clear(context.Context) error                                    { return nil }

// memData is a tiny in-memory stand-in for the hosted rows. It enforces the
// pending-only rule on lines the way the database trigger does.
type memData struct {
	mu sync.Mutex

	org       models.Organization
	employees map[string]models.Employee
	sheets    []models.Sheet
	lines     []models.Line
	nextSheet int64
	nextLine  int64
}

func newMemData() *memData {
	return &memData{
		org:       models.Organization{ID: "org-1", Name: "Acme", VATNumber: "B87654321", City: "Madrid"},
		employees: map[string]models.Employee{},
		nextSheet: 1,
		nextLine:  1,
	}
}

func (m *memData) withEmployee(name string, admin bool) *memData {
	m.employees[anaUserID] = models.Employee{ID: "emp-1", Name: name, IsAdmin: admin, OrganizationID: m.org.ID, UserID: anaUserID}
	return m
}

func (m *memData) OrganizationByCode(ctx context.Context, code string) (*models.Organization, error) {
	if code != m.org.VATNumber {
		return nil, common.ErrNotFound
	}
	o := m.org
	return &o, nil
}

func (m *memData) EmployeeByUser(ctx context.Context, userID string) (*models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.employees[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &e, nil
}

func (m *memData) CreateEmployee(ctx context.Context, ne *models.NewEmployee) (*models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := models.Employee{ID: "emp-1", Name: ne.Name, OrganizationID: ne.OrganizationID, UserID: ne.UserID}
	m.employees[ne.UserID] = e
	return &e, nil
}

func (m *memData) EmployeesByIDs(ctx context.Context, ids []string) ([]models.Employee, error) {
	return nil, nil
}

func statusName(s models.SheetStatus) string {
	switch s {
	case models.StatusApproved:
		return "Aprobado"
	case models.StatusRejected:
		return "Rechazado"
	default:
		return "Pendiente"
	}
}

func (m *memData) ListSheets(ctx context.Context, ownerID string) ([]models.Sheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Sheet
	for _, s := range m.sheets {
		if s.UserID != ownerID {
			continue
		}
		total := decimal.Zero
		for _, l := range m.lines {
			if l.SheetID == s.ID && l.Amount != nil {
				total = total.Add(*l.Amount)
			}
		}
		s.TotalAmount = total
		out = append(out, s)
	}
	return out, nil
}

func (m *memData) CreateSheet(ctx context.Context, ns *models.NewSheet) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSheet
	m.nextSheet++
	m.sheets = append(m.sheets, models.Sheet{
		ID:          id,
		Title:       ns.Title,
		Description: ns.Description,
		Project:     ns.Project,
		CreateDate:  time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC),
		UserID:      ns.UserID,
		Status:      models.StatusRef{ID: ns.StatusID, Name: statusName(ns.StatusID)},
	})
	return id, nil
}

func (m *memData) UpdateSheetStatus(ctx context.Context, id int64, status models.SheetStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sheets {
		if m.sheets[i].ID == id {
			m.sheets[i].Status = models.StatusRef{ID: status, Name: statusName(status)}
			return nil
		}
	}
	return common.ErrNotFound
}

func (m *memData) DeleteSheet(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sheets {
		if m.sheets[i].ID == id {
			m.sheets = append(m.sheets[:i], m.sheets[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memData) pending(sheetID int64) bool {
	for _, s := range m.sheets {
		if s.ID == sheetID {
			return s.Status.ID == models.StatusPending
		}
	}
	return false
}

func (m *memData) ListLines(ctx context.Context, sheetID int64) ([]models.Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Line
	for _, l := range m.lines {
		if l.SheetID == sheetID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memData) CreateLine(ctx context.Context, nl *models.NewLine) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.pending(nl.SheetID) {
		return 0, common.ErrSheetLocked
	}
	id := m.nextLine
	m.nextLine++
	m.lines = append(m.lines, models.Line{
		ID: id, Title: nl.Title, Amount: nl.Amount, Date: nl.Date, Tax: nl.Tax, Foto: nl.Foto,
		PaymentTypeID: nl.PaymentTypeID, CategoryID: nl.CategoryID, SheetID: nl.SheetID,
	})
	return id, nil
}

func (m *memData) DeleteLine(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, l := range m.lines {
		if l.ID == id {
			if !m.pending(l.SheetID) {
				return common.ErrSheetLocked
			}
			m.lines = append(m.lines[:i], m.lines[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memData) ListReference(ctx context.Context, table models.ReferenceTable) ([]models.RefItem, error) {
	switch table {
	case models.TableSheetStatus:
		return []models.RefItem{{ID: 2, Name: "Aprobado"}, {ID: 1, Name: "Pendiente"}, {ID: 3, Name: "Rechazado"}}, nil
	case models.TablePaymentType:
		return []models.RefItem{{ID: 1, Name: "Efectivo"}, {ID: 2, Name: "Tarjeta"}}, nil
	default:
		return []models.RefItem{{ID: 1, Name: "Dietas"}, {ID: 2, Name: "Transporte"}}, nil
	}
}

func (m *memData) DashboardStats(ctx context.Context, employeeID string) (*models.DashboardStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := &models.DashboardStats{UserID: employeeID}
	for _, s := range m.sheets {
		if s.UserID != employeeID {
			continue
		}
		st.TotalExpenseSheets++
		switch s.Status.ID {
		case models.StatusPending:
			st.PendingSheets++
		case models.StatusApproved:
			st.ApprovedSheets++
		case models.StatusRejected:
			st.DeniedSheets++
		}
		for _, l := range m.lines {
			if l.SheetID == s.ID {
				st.TotalExpenseLines++
				if l.Amount != nil {
					st.TotalAmount = st.TotalAmount.Add(*l.Amount)
				}
			}
		}
	}
	if st.TotalExpenseSheets == 0 {
		return nil, common.ErrNotFound
	}
	return st, nil
}

func (m *memData) TeamStats(ctx context.Context, adminID string) ([]models.DashboardStats, error) {
	return nil, nil
}

func (m *memData) Close() error { return nil }

var _ remote.Data = (*memData)(nil)

// testApp wires an App on in-memory backends; every prompt reads from input.
func testApp(t *testing.T, data *memData, input ...string) (*App, *memAuth, *bytes.Buffer) {
	t.Helper()

	origPassword := getPassword
	getPassword = func(io.Writer) ([]byte, error) { return []byte("s3cret"), nil }
	t.Cleanup(func() { getPassword = origPassword })

	auth := newMemAuth()
	out := &bytes.Buffer{}
	cfg := &config.Config{RequestTimeout: time.Second, DownloadDir: t.TempDir()}
	a := newApp(cfg, Backends{Auth: auth, Data: data, Cache: memCache{}}, nil,
		strings.NewReader(strings.Join(input, "\n")+"\n"), out)
	return a, auth, out
}
