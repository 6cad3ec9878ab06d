package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/models"
)

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func TestBuildingServiceCreateNormalisesCode(t *testing.T) {
	repo := &fakeBuildingRepo{}
	svc := NewBuildingService(repo, testValidator(), testLogger())

	created, err := svc.Create(context.Background(), dto.BuildingCreateRequest{
		Name: "  Biblioteca Central ",
		Code: " bc-01 ",
	})
	require.NoError(t, err)

	require.Equal(t, "Biblioteca Central", created.Name)
	require.Equal(t, "BC-01", created.Code)
	require.Equal(t, created.Code, repo.buildings[created.ID].Code)
}

func TestBuildingServiceCreateRejectsMissingName(t *testing.T) {
	svc := NewBuildingService(&fakeBuildingRepo{}, testValidator(), testLogger())

	_, err := svc.Create(context.Background(), dto.BuildingCreateRequest{Code: "BC-01"})
	require.Error(t, err)

	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
}

func TestBuildingServiceUpdateAppliesPartialFields(t *testing.T) {
	repo := &fakeBuildingRepo{buildings: map[uint]models.Building{
		1: {ID: 1, Name: "Biblioteca", Code: "BC-01", Description: "vieja"},
	}}
	svc := NewBuildingService(repo, testValidator(), testLogger())

	newName := "Biblioteca Central"
	updated, err := svc.Update(context.Background(), 1, dto.BuildingUpdateRequest{Name: &newName})
	require.NoError(t, err)

	require.Equal(t, "Biblioteca Central", updated.Name)
	require.Equal(t, "BC-01", updated.Code, "untouched fields survive")
	require.Equal(t, "vieja", updated.Description)
}

func TestBuildingServiceGetUnknownID(t *testing.T) {
	svc := NewBuildingService(&fakeBuildingRepo{}, testValidator(), testLogger())

	_, err := svc.Get(context.Background(), 44)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBuildingServiceDeleteUnknownID(t *testing.T) {
	svc := NewBuildingService(&fakeBuildingRepo{}, testValidator(), testLogger())

	err := svc.Delete(context.Background(), 44)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBuildingServiceListPagination(t *testing.T) {
	repo := &fakeBuildingRepo{buildings: map[uint]models.Building{
		1: {ID: 1, Name: "Biblioteca"},
		2: {ID: 2, Name: "Rectorado"},
		3: {ID: 3, Name: "Comedor"},
	}}
	svc := NewBuildingService(repo, testValidator(), testLogger())

	response, err := svc.List(context.Background(), dto.BuildingListRequest{Page: 1, PageSize: 2})
	require.NoError(t, err)

	require.Equal(t, int64(3), response.Pagination.TotalItems)
	require.Equal(t, 2, response.Pagination.TotalPages)
}

func TestEventServiceCreateRecordsActivity(t *testing.T) {
	repo := &fakeEventRepo{}
	recorder := &fakeRecorder{}
	svc := NewEventService(repo, recorder, testValidator(), testLogger())

	actor := Actor{ID: ptrUint(9), Email: "admin@campus.edu", Role: models.RoleAdministrador}
	created, err := svc.Create(context.Background(), actor, dto.EventCreateRequest{
		Title:    "Feria de ciencias",
		DateTime: time.Date(2026, time.April, 2, 14, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Equal(t, models.EventStatusScheduled, created.Status, "status defaults to programado")
	require.Len(t, recorder.entries, 1)
	require.Equal(t, models.ActionCreateEvent, recorder.entries[0].Action)
	require.Equal(t, models.ResourceEvent, recorder.entries[0].ResourceType)
	require.Equal(t, "admin@campus.edu", recorder.entries[0].UserEmail)
}

func TestEventServiceCreateRejectsUnknownStatus(t *testing.T) {
	svc := NewEventService(&fakeEventRepo{}, &fakeRecorder{}, testValidator(), testLogger())

	_, err := svc.Create(context.Background(), Actor{}, dto.EventCreateRequest{
		Title:    "Feria",
		DateTime: time.Now(),
		Status:   "pendiente",
	})
	require.Error(t, err)
}

func TestEventServiceMutationSurvivesRecorderFailure(t *testing.T) {
	repo := &fakeEventRepo{}
	recorder := &fakeRecorder{err: errors.New("trail unavailable")}
	svc := NewEventService(repo, recorder, testValidator(), testLogger())

	_, err := svc.Create(context.Background(), Actor{}, dto.EventCreateRequest{
		Title:    "Feria",
		DateTime: time.Now(),
	})
	require.NoError(t, err, "activity trail failures never fail the mutation")
	require.Len(t, repo.events, 1)
}

func TestEventServiceDeleteRecordsActivity(t *testing.T) {
	repo := &fakeEventRepo{events: map[uint]models.Event{5: {ID: 5, Title: "Feria"}}}
	recorder := &fakeRecorder{}
	svc := NewEventService(repo, recorder, testValidator(), testLogger())

	require.NoError(t, svc.Delete(context.Background(), Actor{}, 5))
	require.Empty(t, repo.events)
	require.Len(t, recorder.entries, 1)
	require.Equal(t, models.ActionDeleteEvent, recorder.entries[0].Action)
	require.Equal(t, "5", recorder.entries[0].ResourceID)
}

func TestEventServiceUpdateUnknownID(t *testing.T) {
	svc := NewEventService(&fakeEventRepo{}, &fakeRecorder{}, testValidator(), testLogger())

	title := "Nuevo"
	_, err := svc.Update(context.Background(), Actor{}, 77, dto.EventUpdateRequest{Title: &title})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCategoryServiceCreateAndList(t *testing.T) {
	repo := &fakeCategoryRepo{}
	svc := NewCategoryService(repo, testValidator(), testLogger())

	created, err := svc.Create(context.Background(), dto.CategoryCreateRequest{Name: " deportivo "})
	require.NoError(t, err)
	require.Equal(t, "deportivo", created.Name)

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestCategoryServiceCreateRejectsEmptyName(t *testing.T) {
	svc := NewCategoryService(&fakeCategoryRepo{}, testValidator(), testLogger())

	_, err := svc.Create(context.Background(), dto.CategoryCreateRequest{})
	require.Error(t, err)
}

func TestPaginationMeta(t *testing.T) {
	meta := paginationMeta(2, 10, 25)
	require.Equal(t, 2, meta.Page)
	require.Equal(t, int64(25), meta.TotalItems)
	require.Equal(t, 3, meta.TotalPages)

	meta = paginationMeta(0, 0, 5)
	require.Equal(t, 1, meta.Page)
	require.Equal(t, 1, meta.TotalPages)
}
