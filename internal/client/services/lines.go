package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/expensesheets/internal/client/models"
	"github.com/dmitrijs2005/expensesheets/internal/client/remote"
	"github.com/dmitrijs2005/expensesheets/internal/common"
	"github.com/dmitrijs2005/expensesheets/internal/filex"
	"github.com/dmitrijs2005/expensesheets/internal/logging"
	"github.com/dmitrijs2005/expensesheets/internal/netx"
)

// DefaultBucket holds line attachments.
const DefaultBucket = "tickets"

// AttachmentKey is the object key of an attachment uploaded for a line of
// sheetID at the given time.
func AttachmentKey(sheetID int64, at time.Time, filename string) string {
	return fmt.Sprintf("expense-lines/%d/%d_%s", sheetID, at.UnixMilli(), filename)
}

// StatusNamer resolves status display names.
type StatusNamer interface {
	StatusName(id int64) string
}

// Progress wraps a transfer of size bytes (-1 when unknown).
type Progress func(r io.Reader, size int64, label string) io.Reader

type LineOption func(*LineManager)

func WithBucket(bucket string) LineOption {
	return func(m *LineManager) { m.bucket = bucket }
}

func WithProgress(p Progress) LineOption {
	return func(m *LineManager) { m.progress = p }
}

func WithStatusNames(n StatusNamer) LineOption {
	return func(m *LineManager) { m.names = n }
}

func WithDownloadClient(c *http.Client) LineOption {
	return func(m *LineManager) { m.http = c }
}

// OnStatusChange is called after a successful approve or reject.
func OnStatusChange(fn func(sheetID int64, status models.StatusRef)) LineOption {
	return func(m *LineManager) { m.onStatus = fn }
}

// LineManager manages the lines of the sheet open on the board.
type LineManager struct {
	lines    remote.Lines
	sheets   remote.Sheets
	objects  remote.Objects
	logger   logging.Logger
	bucket   string
	progress Progress
	names    StatusNamer
	http     *http.Client
	onStatus func(int64, models.StatusRef)
	now      func() time.Time

	mu      sync.RWMutex
	sheet   *models.Sheet
	list    []models.Line
	loaded  bool
	loadErr error
}

func NewLineManager(lines remote.Lines, sheets remote.Sheets, objects remote.Objects, logger logging.Logger, opts ...LineOption) *LineManager {
	if logger == nil {
		logger = logging.Discard()
	}
	m := &LineManager{
		lines:   lines,
		sheets:  sheets,
		objects: objects,
		logger:  logger,
		bucket:  DefaultBucket,
		now:     time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Activate scopes the manager to sheet and loads its lines. Activating the
// already loaded sheet only refreshes the header copy.
func (m *LineManager) Activate(ctx context.Context, sheet models.Sheet) error {
	m.mu.Lock()
	same := m.sheet != nil && m.sheet.ID == sheet.ID && m.loaded
	m.sheet = &sheet
	if !same {
		m.list, m.loaded, m.loadErr = nil, false, nil
	}
	m.mu.Unlock()

	if same {
		return nil
	}
	return m.Reload(ctx)
}

func (m *LineManager) Deactivate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sheet, m.list, m.loaded, m.loadErr = nil, nil, false, nil
}

// Sheet returns a copy of the active sheet.
func (m *LineManager) Sheet() (*models.Sheet, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sheet == nil {
		return nil, false
	}
	s := *m.sheet
	return &s, true
}

func (m *LineManager) Lines() []models.Line {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.list)
}

func (m *LineManager) Loaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}

func (m *LineManager) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loadErr
}

// Actions reports the affordances of the active sheet; none without one.
func (m *LineManager) Actions() models.Actions {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sheet == nil {
		return models.Actions{}
	}
	return m.sheet.Actions()
}

func (m *LineManager) active() (models.Sheet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sheet == nil {
		return models.Sheet{}, common.ErrNoSheetSelected
	}
	return *m.sheet, nil
}

func (m *LineManager) Reload(ctx context.Context) error {
	sheet, err := m.active()
	if err != nil {
		return err
	}

	list, err := m.lines.ListLines(ctx, sheet.ID)
	if err != nil {
		m.logger.Warn(ctx, "line list load failed", "sheet", sheet.ID, "error", err)
		list = []models.Line{}
	} else if list == nil {
		list = []models.Line{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sheet == nil || m.sheet.ID != sheet.ID {
		return nil
	}
	m.list, m.loaded, m.loadErr = list, err == nil, err
	return err
}

// CreateResult reports the new line id and, separately, an attachment
// upload failure that did not prevent the line from being created.
type CreateResult struct {
	ID        int64
	UploadErr error
}

// Create adds a line to the active sheet while it is pending.
func (m *LineManager) Create(ctx context.Context, form models.LineForm) (*CreateResult, error) {
	sheet, err := m.active()
	if err != nil {
		return nil, err
	}
	if !sheet.Actions().CanAddLine {
		return nil, fmt.Errorf("%w: sheet %d is %s", common.ErrSheetLocked, sheet.ID, sheet.Status.ID)
	}

	nl, err := form.Build(sheet.ID)
	if err != nil {
		return nil, err
	}

	res := &CreateResult{}
	if form.AttachmentPath != "" {
		url, err := m.upload(ctx, sheet.ID, form.AttachmentPath)
		if err != nil {
			m.logger.Warn(ctx, "attachment upload failed", "sheet", sheet.ID, "error", err)
			res.UploadErr = fmt.Errorf("%w: %v", common.ErrAttachment, err)
		} else {
			nl.Foto = &url
		}
	}

	id, err := m.lines.CreateLine(ctx, nl)
	if err != nil {
		return nil, err
	}
	res.ID = id

	return res, m.Reload(ctx)
}

func (m *LineManager) upload(ctx context.Context, sheetID int64, path string) (string, error) {
	if m.objects == nil {
		return "", fmt.Errorf("object storage not configured")
	}

	att, err := filex.ReadAttachment(path)
	if err != nil {
		return "", err
	}

	key := AttachmentKey(sheetID, m.now(), att.Name)
	size := int64(len(att.Data))
	raw := bytes.NewReader(att.Data)
	var body io.Reader = raw
	if m.progress != nil {
		body = rewindable{Reader: m.progress(raw, size, "uploading "+att.Name), Seeker: raw}
	}

	if err := m.objects.Put(ctx, m.bucket, key, body, size, att.ContentType); err != nil {
		return "", err
	}
	return m.objects.PublicURL(m.bucket, key), nil
}

// rewindable keeps a wrapped upload body seekable for request signing.
type rewindable struct {
	io.Reader
	io.Seeker
}

func (m *LineManager) Approve(ctx context.Context) error {
	return m.setStatus(ctx, models.StatusApproved)
}

func (m *LineManager) Reject(ctx context.Context) error {
	return m.setStatus(ctx, models.StatusRejected)
}

func (m *LineManager) setStatus(ctx context.Context, target models.SheetStatus) error {
	sheet, err := m.active()
	if err != nil {
		return err
	}

	next, err := sheet.Status.ID.Transition(target)
	if err != nil {
		return err
	}

	if err := m.sheets.UpdateSheetStatus(ctx, sheet.ID, next); err != nil {
		m.logger.Warn(ctx, "sheet status update failed", "sheet", sheet.ID, "error", err)
		return err
	}

	ref := models.StatusRef{ID: next}
	if m.names != nil {
		ref.Name = m.names.StatusName(int64(next))
	}

	m.mu.Lock()
	if m.sheet != nil && m.sheet.ID == sheet.ID {
		m.sheet.Status = ref
	}
	m.mu.Unlock()

	if m.onStatus != nil {
		m.onStatus(sheet.ID, ref)
	}
	return nil
}

// Delete removes a line of the active sheet and reloads.
func (m *LineManager) Delete(ctx context.Context, id int64) error {
	sheet, err := m.active()
	if err != nil {
		return err
	}
	if !sheet.Actions().CanAddLine {
		return fmt.Errorf("%w: sheet %d is %s", common.ErrSheetLocked, sheet.ID, sheet.Status.ID)
	}

	if err := m.lines.DeleteLine(ctx, id); err != nil {
		m.logger.Warn(ctx, "line delete failed", "line", id, "error", err)
		return err
	}
	return m.Reload(ctx)
}

// Download saves the attachment of a loaded line into dir and returns the
// written file path.
func (m *LineManager) Download(ctx context.Context, lineID int64, dir string) (string, error) {
	m.mu.RLock()
	i := slices.IndexFunc(m.list, func(l models.Line) bool { return l.ID == lineID })
	var url string
	if i >= 0 {
		url = m.list[i].Attachment()
	}
	m.mu.RUnlock()

	if i < 0 {
		return "", fmt.Errorf("line %d: %w", lineID, common.ErrNotFound)
	}
	if url == "" {
		return "", common.ErrNoAttachment
	}

	dir, err := filex.EnsureDir(dir)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(dir, netx.FileNameFromURL(url))

	body, size, err := netx.Open(ctx, m.http, url)
	if err != nil {
		return "", err
	}
	defer body.Close()

	var src io.Reader = body
	if m.progress != nil {
		src = m.progress(body, size, "downloading "+filepath.Base(dest))
	}

	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, src); err != nil {
		_ = f.Close()
		_ = os.Remove(dest)
		return "", err
	}
	return dest, f.Close()
}
