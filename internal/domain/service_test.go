package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItsEgzix/Tasto-backend/internal/core/apperror"
	"github.com/ItsEgzix/Tasto-backend/internal/core/entity"
	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
)

type testEntry struct {
	entity.Directory
}

func newTestEntry(tenantID id.ID, name string) *testEntry {
	return &testEntry{Directory: entity.NewDirectory(tenantID, name)}
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeDirectoryRepo struct {
	byID map[id.ID]*testEntry
}

func newFakeDirectoryRepo() *fakeDirectoryRepo {
	return &fakeDirectoryRepo{byID: make(map[id.ID]*testEntry)}
}

func (f *fakeDirectoryRepo) Create(ctx context.Context, e *testEntry) error {
	f.byID[e.ID] = e
	return nil
}

func (f *fakeDirectoryRepo) GetByID(ctx context.Context, tenantID, entityID id.ID) (*testEntry, error) {
	e, ok := f.byID[entityID]
	if !ok || e.TenantID != tenantID {
		return nil, apperror.NewNotFound("entry", entityID.String())
	}
	return e, nil
}

func (f *fakeDirectoryRepo) FindByName(ctx context.Context, tenantID id.ID, name string) (*testEntry, error) {
	for _, e := range f.byID {
		if e.TenantID == tenantID && e.Name == name {
			return e, nil
		}
	}
	return nil, apperror.NewNotFound("entry", name)
}

func (f *fakeDirectoryRepo) Exists(ctx context.Context, tenantID, entityID id.ID) (bool, error) {
	e, ok := f.byID[entityID]
	return ok && e.TenantID == tenantID, nil
}

func (f *fakeDirectoryRepo) List(ctx context.Context, tenantID id.ID, filter ListFilter) (ListResult[*testEntry], error) {
	var items []*testEntry
	for _, e := range f.byID {
		if e.TenantID == tenantID {
			items = append(items, e)
		}
	}
	return ListResult[*testEntry]{
		Items:      items,
		TotalCount: int64(len(items)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

func (f *fakeDirectoryRepo) Update(ctx context.Context, e *testEntry) error {
	if _, ok := f.byID[e.ID]; !ok {
		return apperror.NewNotFound("entry", e.ID.String())
	}
	f.byID[e.ID] = e
	return nil
}

func (f *fakeDirectoryRepo) Delete(ctx context.Context, tenantID, entityID id.ID) error {
	e, ok := f.byID[entityID]
	if !ok || e.TenantID != tenantID {
		return apperror.NewNotFound("entry", entityID.String())
	}
	delete(f.byID, entityID)
	return nil
}

func newTestService(repo *fakeDirectoryRepo) *DirectoryService[*testEntry] {
	return NewDirectoryService[*testEntry](repo, passthroughTx{}, "entry")
}

func TestDirectoryServiceCreate(t *testing.T) {
	repo := newFakeDirectoryRepo()
	svc := newTestService(repo)

	e := newTestEntry(id.New(), "Dairy")
	err := svc.Create(context.Background(), e)

	require.NoError(t, err)
	assert.Contains(t, repo.byID, e.ID)
}

func TestDirectoryServiceCreate_DuplicateName(t *testing.T) {
	repo := newFakeDirectoryRepo()
	svc := newTestService(repo)
	tenantID := id.New()

	require.NoError(t, svc.Create(context.Background(), newTestEntry(tenantID, "Dairy")))
	err := svc.Create(context.Background(), newTestEntry(tenantID, "Dairy"))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestDirectoryServiceCreate_SameNameOtherTenant(t *testing.T) {
	repo := newFakeDirectoryRepo()
	svc := newTestService(repo)

	require.NoError(t, svc.Create(context.Background(), newTestEntry(id.New(), "Dairy")))
	err := svc.Create(context.Background(), newTestEntry(id.New(), "Dairy"))

	assert.NoError(t, err, "name uniqueness is per tenant")
}

func TestDirectoryServiceCreate_EmptyName(t *testing.T) {
	svc := newTestService(newFakeDirectoryRepo())

	err := svc.Create(context.Background(), newTestEntry(id.New(), ""))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestDirectoryServiceGetByID_NotFoundNamesEntity(t *testing.T) {
	svc := newTestService(newFakeDirectoryRepo())

	_, err := svc.GetByID(context.Background(), id.New(), id.New())

	require.True(t, apperror.IsNotFound(err))
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "entry", appErr.Details["entity"])
}

func TestDirectoryServiceGetByID_TenantIsolation(t *testing.T) {
	repo := newFakeDirectoryRepo()
	svc := newTestService(repo)

	e := newTestEntry(id.New(), "Dairy")
	require.NoError(t, svc.Create(context.Background(), e))

	_, err := svc.GetByID(context.Background(), id.New(), e.ID)

	assert.True(t, apperror.IsNotFound(err))
}

func TestDirectoryServiceUpdate_KeepOwnName(t *testing.T) {
	repo := newFakeDirectoryRepo()
	svc := newTestService(repo)

	e := newTestEntry(id.New(), "Dairy")
	require.NoError(t, svc.Create(context.Background(), e))

	err := svc.Update(context.Background(), e)

	assert.NoError(t, err, "updating without a rename must not trip the duplicate check")
}

func TestDirectoryServiceUpdate_RenameToTakenName(t *testing.T) {
	repo := newFakeDirectoryRepo()
	svc := newTestService(repo)
	tenantID := id.New()

	require.NoError(t, svc.Create(context.Background(), newTestEntry(tenantID, "Dairy")))
	other := newTestEntry(tenantID, "Meat")
	require.NoError(t, svc.Create(context.Background(), other))

	other.Name = "Dairy"
	err := svc.Update(context.Background(), other)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestDirectoryServiceList_LimitClamped(t *testing.T) {
	repo := newFakeDirectoryRepo()
	svc := newTestService(repo)

	result, err := svc.List(context.Background(), id.New(), ListFilter{Limit: 10000})

	require.NoError(t, err)
	assert.Equal(t, 500, result.Limit)
}

func TestDirectoryServiceList_Defaults(t *testing.T) {
	repo := newFakeDirectoryRepo()
	svc := newTestService(repo)

	result, err := svc.List(context.Background(), id.New(), ListFilter{})

	require.NoError(t, err)
	assert.Equal(t, 50, result.Limit)
}

func TestDirectoryServiceDelete_NotFound(t *testing.T) {
	svc := newTestService(newFakeDirectoryRepo())

	err := svc.Delete(context.Background(), id.New(), id.New())

	assert.True(t, apperror.IsNotFound(err))
}
