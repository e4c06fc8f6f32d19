package services

import (
	"context"
	"io"
	"sync"

	"github.com/dmitrijs2005/expensesheets/internal/client/models"
	"github.com/dmitrijs2005/expensesheets/internal/client/remote"
	"github.com/dmitrijs2005/expensesheets/internal/common"
)

const testUserID = "6f1c2a1e-0d7b-4c55-9b1e-3f0a2d6c8e77"

func testSession(token string) *models.Session {
	return &models.Session{AccessToken: token, RefreshToken: "rt", User: models.User{ID: testUserID, Email: "ana@example.com"}}
}

func testProfile(id string, admin bool) *models.Employee {
	return &models.Employee{ID: id, Name: "Ana", IsAdmin: admin, OrganizationID: "org-1", UserID: testUserID}
}

// ---- auth ----

type fakeAuth struct {
	mu sync.Mutex

	SignInRet  *models.Session
	SignInErr  error
	SignUpRet  *models.Session
	SignUpErr  error
	SignOutErr error
	GetRet     *models.Session
	GetErr     error

	SetSessionArg *models.Session
	SignOutCalls  int
	GetCalls      int

	events chan remote.SessionEvent
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{events: make(chan remote.SessionEvent, 8)}
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	return f.SignInRet, f.SignInErr
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	return f.SignUpRet, f.SignUpErr
}

func (f *fakeAuth) SignOut(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SignOutCalls++
	return f.SignOutErr
}

func (f *fakeAuth) GetSession(ctx context.Context) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetCalls++
	return f.GetRet, f.GetErr
}

func (f *fakeAuth) Refresh(ctx context.Context) (*models.Session, error) {
	return f.GetRet, f.GetErr
}

func (f *fakeAuth) SetSession(s *models.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SetSessionArg = s
}

func (f *fakeAuth) Events() <-chan remote.SessionEvent { return f.events }

// ---- session cache ----

type fakeCache struct {
	mu sync.Mutex

	Session *models.Session
	Profile *models.Employee
	LoadErr error
	Cleared int
}

func (f *fakeCache) Load(ctx context.Context) (*models.Session, *models.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Session, f.Profile, f.LoadErr
}

func (f *fakeCache) SaveSession(ctx context.Context, s *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Session = s
	return nil
}

func (f *fakeCache) SaveProfile(ctx context.Context, e *models.Employee) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Profile = e
	return nil
}

func (f *fakeCache) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Session, f.Profile = nil, nil
	f.Cleared++
	return nil
}

func (f *fakeCache) snapshot() (*models.Session, *models.Employee) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Session, f.Profile
}

// ---- cache repository ----

type memRepo struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMemRepo() *memRepo { return &memRepo{m: map[string][]byte{}} }

func (r *memRepo) Get(ctx context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.m[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (r *memRepo) Set(ctx context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[key] = append([]byte(nil), value...)
	return nil
}

func (r *memRepo) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, key)
	return nil
}

func (r *memRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.m {
		if k != "salt" {
			delete(r.m, k)
		}
	}
	return nil
}

// ---- row store ----

// fakeData implements every remote row interface and records calls.
type fakeData struct {
	mu sync.Mutex

	Org    *models.Organization
	OrgErr error

	Employee      *models.Employee
	EmployeeErr   error
	EmployeeCalls int
	Created       *models.NewEmployee
	CreateEmpErr  error
	Employees     []models.Employee
	EmployeesArgs []string

	Sheets         []models.Sheet
	SheetsErr      error
	SheetsCalls    int
	SheetsOwner    string
	NewSheet       *models.NewSheet
	CreateSheetErr error
	StatusUpdates  []models.SheetStatus
	UpdateErr      error
	DeletedSheets  []int64
	DeleteSheetErr error

	Lines         map[int64][]models.Line
	LinesErr      error
	LinesCalls    int
	NewLine       *models.NewLine
	CreateLineErr error
	DeletedLines  []int64

	Refs      map[models.ReferenceTable][]models.RefItem
	RefErrs   map[models.ReferenceTable]error
	RefCalls  int
	Dash      *models.DashboardStats
	DashErr   error
	Team      []models.DashboardStats
	TeamCalls int
}

func (f *fakeData) OrganizationByCode(ctx context.Context, code string) (*models.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.OrgErr != nil {
		return nil, f.OrgErr
	}
	if f.Org == nil || f.Org.VATNumber != code {
		return nil, common.ErrNotFound
	}
	return f.Org, nil
}

func (f *fakeData) EmployeeByUser(ctx context.Context, userID string) (*models.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.EmployeeCalls++
	if f.EmployeeErr != nil {
		return nil, f.EmployeeErr
	}
	if f.Employee == nil {
		return nil, common.ErrNotFound
	}
	return f.Employee, nil
}

func (f *fakeData) CreateEmployee(ctx context.Context, ne *models.NewEmployee) (*models.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Created = ne
	if f.CreateEmpErr != nil {
		return nil, f.CreateEmpErr
	}
	return &models.Employee{ID: "emp-new", Name: ne.Name, OrganizationID: ne.OrganizationID, UserID: ne.UserID}, nil
}

func (f *fakeData) EmployeesByIDs(ctx context.Context, ids []string) ([]models.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.EmployeesArgs = append([]string(nil), ids...)
	return f.Employees, nil
}

func (f *fakeData) ListSheets(ctx context.Context, ownerID string) ([]models.Sheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SheetsCalls++
	f.SheetsOwner = ownerID
	if f.SheetsErr != nil {
		return nil, f.SheetsErr
	}
	return append([]models.Sheet(nil), f.Sheets...), nil
}

func (f *fakeData) CreateSheet(ctx context.Context, ns *models.NewSheet) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.NewSheet = ns
	if f.CreateSheetErr != nil {
		return 0, f.CreateSheetErr
	}
	return 99, nil
}

func (f *fakeData) UpdateSheetStatus(ctx context.Context, id int64, status models.SheetStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	f.StatusUpdates = append(f.StatusUpdates, status)
	return nil
}

func (f *fakeData) DeleteSheet(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteSheetErr != nil {
		return f.DeleteSheetErr
	}
	f.DeletedSheets = append(f.DeletedSheets, id)
	return nil
}

func (f *fakeData) ListLines(ctx context.Context, sheetID int64) ([]models.Line, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LinesCalls++
	if f.LinesErr != nil {
		return nil, f.LinesErr
	}
	return append([]models.Line(nil), f.Lines[sheetID]...), nil
}

func (f *fakeData) CreateLine(ctx context.Context, nl *models.NewLine) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.NewLine = nl
	if f.CreateLineErr != nil {
		return 0, f.CreateLineErr
	}
	return 500, nil
}

func (f *fakeData) DeleteLine(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DeletedLines = append(f.DeletedLines, id)
	return nil
}

func (f *fakeData) ListReference(ctx context.Context, table models.ReferenceTable) ([]models.RefItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RefCalls++
	if err := f.RefErrs[table]; err != nil {
		return nil, err
	}
	return f.Refs[table], nil
}

func (f *fakeData) DashboardStats(ctx context.Context, employeeID string) (*models.DashboardStats, error) {
	if f.DashErr != nil {
		return nil, f.DashErr
	}
	return f.Dash, nil
}

func (f *fakeData) TeamStats(ctx context.Context, adminID string) ([]models.DashboardStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.TeamCalls++
	var out []models.DashboardStats
	for _, r := range f.Team {
		if r.AdminID != nil && *r.AdminID == adminID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeData) Close() error { return nil }

var _ remote.Data = (*fakeData)(nil)

// ---- objects ----

type fakeObjects struct {
	PutErr  error
	Bucket  string
	Key     string
	Body    []byte
	Type    string
	BaseURL string
}

func (f *fakeObjects) Put(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error {
	if f.PutErr != nil {
		return f.PutErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.Bucket, f.Key, f.Body, f.Type = bucket, key, b, contentType
	return nil
}

func (f *fakeObjects) PublicURL(bucket, key string) string {
	return f.BaseURL + "/storage/v1/object/public/" + bucket + "/" + key
}

// staticProfile is a fixed ProfileSource.
type staticProfile struct{ p *models.Employee }

func (s staticProfile) Profile() *models.Employee { return s.p }
