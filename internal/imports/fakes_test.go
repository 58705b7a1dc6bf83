package imports

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ssth/ssth-inventory/internal/masterdata/categories"
	"github.com/ssth/ssth-inventory/internal/masterdata/items"
	mdshared "github.com/ssth/ssth-inventory/internal/masterdata/shared"
	"github.com/ssth/ssth-inventory/internal/masterdata/suppliers"
	"github.com/ssth/ssth-inventory/internal/procurement"
)

type memoryCategories struct {
	mu   sync.Mutex
	rows []categories.Category
}

func (m *memoryCategories) FindByName(_ context.Context, name string) (categories.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.rows {
		if mdshared.NameKey(c.Name) == mdshared.NameKey(name) {
			return c, nil
		}
	}
	return categories.Category{}, mdshared.ErrNotFound
}

func (m *memoryCategories) Upsert(_ context.Context, c categories.Category) (categories.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rows {
		if mdshared.NameKey(existing.Name) == mdshared.NameKey(c.Name) {
			return existing, nil
		}
	}
	c.ID = uuid.New()
	c.IsActive = true
	m.rows = append(m.rows, c)
	return c, nil
}

func (m *memoryCategories) List(context.Context) ([]categories.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]categories.Category(nil), m.rows...), nil
}

type memoryItems struct {
	mu        sync.Mutex
	rows      []items.Item
	getErr    error
	createErr error
}

func (m *memoryItems) GetByCode(_ context.Context, code string) (items.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return items.Item{}, m.getErr
	}
	for _, it := range m.rows {
		if it.Code == code {
			return it, nil
		}
	}
	return items.Item{}, mdshared.ErrNotFound
}

func (m *memoryItems) Create(_ context.Context, it items.Item) (items.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return items.Item{}, m.createErr
	}
	it.ID = uuid.New()
	m.rows = append(m.rows, it)
	return it, nil
}

func (m *memoryItems) Update(_ context.Context, id uuid.UUID, c items.Changes) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, it := range m.rows {
		if it.ID != id {
			continue
		}
		it.Description = c.Description
		it.CategoryID = c.CategoryID
		it.BaseUOM = c.BaseUOM
		it.UnitCost = c.UnitCost
		it.ReorderLevel = c.ReorderLevel
		it.IsActive = true
		if c.ImagePath != nil {
			it.ImagePath = c.ImagePath
		}
		if c.ImageURL != nil {
			it.ImageURL = c.ImageURL
		}
		m.rows[i] = it
		return nil
	}
	return mdshared.ErrNotFound
}

func (m *memoryItems) ListDescriptions(context.Context) (map[string]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]uuid.UUID{}
	for _, it := range m.rows {
		key := items.DescriptionKey(it.Description)
		if _, ok := out[key]; !ok {
			out[key] = it.ID
		}
	}
	return out, nil
}

func (m *memoryItems) byCode(code string) (items.Item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.rows {
		if it.Code == code {
			return it, true
		}
	}
	return items.Item{}, false
}

type memorySuppliers struct {
	mu      sync.Mutex
	rows    []suppliers.Supplier
	listErr error
}

func (m *memorySuppliers) FindByName(_ context.Context, name string) (suppliers.Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.rows {
		if mdshared.NameKey(s.Name) == mdshared.NameKey(name) {
			return s, nil
		}
	}
	return suppliers.Supplier{}, mdshared.ErrNotFound
}

func (m *memorySuppliers) Upsert(_ context.Context, s suppliers.Supplier) (suppliers.Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = uuid.New()
	s.IsActive = true
	m.rows = append(m.rows, s)
	return s, nil
}

func (m *memorySuppliers) List(context.Context) ([]suppliers.Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]suppliers.Supplier(nil), m.rows...), nil
}

type memoryOrders struct {
	mu        sync.Mutex
	pos       map[uuid.UUID]procurement.PurchaseOrder
	lines     map[uuid.UUID][]procurement.POLine
	failLines map[string]bool
}

type memoryOrdersTx struct {
	repo  *memoryOrders
	pos   []procurement.PurchaseOrder
	lines []procurement.POLine
}

func newMemoryOrders() *memoryOrders {
	return &memoryOrders{
		pos:       map[uuid.UUID]procurement.PurchaseOrder{},
		lines:     map[uuid.UUID][]procurement.POLine{},
		failLines: map[string]bool{},
	}
}

func (m *memoryOrders) WithTx(ctx context.Context, fn func(context.Context, procurement.TxRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &memoryOrdersTx{repo: m}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for _, po := range tx.pos {
		m.pos[po.ID] = po
	}
	for _, l := range tx.lines {
		m.lines[l.POID] = append(m.lines[l.POID], l)
	}
	return nil
}

func (m *memoryOrders) GetPO(_ context.Context, id uuid.UUID) (procurement.PurchaseOrder, []procurement.POLine, error) {
	po, ok := m.pos[id]
	if !ok {
		return procurement.PurchaseOrder{}, nil, procurement.ErrNotFound
	}
	return po, m.lines[id], nil
}

func (m *memoryOrders) byNumber(number string) (procurement.PurchaseOrder, []procurement.POLine, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, po := range m.pos {
		if po.Number == number {
			return po, m.lines[id], true
		}
	}
	return procurement.PurchaseOrder{}, nil, false
}

func (t *memoryOrdersTx) CreatePO(_ context.Context, po procurement.PurchaseOrder) (uuid.UUID, error) {
	for _, existing := range t.repo.pos {
		if existing.Number == po.Number {
			return uuid.Nil, procurement.ErrDuplicateNumber
		}
	}
	po.ID = uuid.New()
	t.pos = append(t.pos, po)
	return po.ID, nil
}

func (t *memoryOrdersTx) InsertPOLine(_ context.Context, line procurement.POLine) error {
	for _, po := range t.pos {
		if po.ID == line.POID && t.repo.failLines[po.Number] {
			return errors.New("insert into purchase_order_line failed")
		}
	}
	line.ID = uuid.New()
	t.lines = append(t.lines, line)
	return nil
}

type recordedThumb struct {
	ItemCode, Key string
}

type fakeThumbnails struct {
	mu   sync.Mutex
	jobs []recordedThumb
	err  error
}

func (f *fakeThumbnails) EnqueueThumbnail(_ context.Context, itemCode, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, recordedThumb{ItemCode: itemCode, Key: key})
	return nil
}

// workbook builds an .xlsx with the given header row and data rows.
func workbook(t *testing.T, headers []string, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, h))
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

type zipEntry struct {
	Name string
	Data []byte
}

func zipArchive(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		require.NoError(t, err)
		_, err = w.Write(e.Data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// multipartBody wraps data in a single file part and returns the body and
// its content type.
func multipartBody(t *testing.T, filename string, data []byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "upload"))
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}
