package event

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/eventstime/core/internal/database"
	"github.com/eventstime/core/internal/models"
	"github.com/eventstime/core/internal/pkg/apperr"
	"github.com/eventstime/core/internal/pkg/pagination"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(db), db
}

func TestCreateAndFind(t *testing.T) {
	svc, _ := newTestService(t)

	addr := "Av. Paulista 1000"
	ev, err := svc.Create(&CreateEventDTO{
		Name:                  "Festa Junina",
		Address:               &addr,
		IsPublic:              true,
		ProgrammedDateInitial: "2026-06-12",
		ProgrammedDateFinal:   "2026-06-14",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ev.ID == 0 {
		t.Fatal("expected an id")
	}

	got, err := svc.FindByID(ev.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	resp := ToResponse(got)
	if resp.ProgrammedDateInitial != "2026-06-12" || resp.ProgrammedDateFinal != "2026-06-14" {
		t.Fatalf("dates lost precision: %+v", resp)
	}
}

func TestCreateRejectsMalformedDate(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(&CreateEventDTO{
		Name:                  "Broken",
		ProgrammedDateInitial: "12/06/2026",
		ProgrammedDateFinal:   "2026-06-14",
	})
	if !apperr.IsKind(err, apperr.InvalidDate) {
		t.Fatalf("expected INVALID_DATE, got %v", err)
	}
}

func TestUpdatePartialFields(t *testing.T) {
	svc, _ := newTestService(t)

	ev, err := svc.Create(&CreateEventDTO{
		Name:                  "Old Name",
		ProgrammedDateInitial: "2026-06-12",
		ProgrammedDateFinal:   "2026-06-14",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "New Name"
	if _, err := svc.Update(ev.ID, &UpdateEventDTO{Name: &name}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := svc.FindByID(ev.ID)
	if got.Name != "New Name" {
		t.Fatalf("name not updated: %q", got.Name)
	}
	if got.ProgrammedDateInitial.Format(dateLayout) != "2026-06-12" {
		t.Fatal("untouched fields must survive a partial update")
	}
}

func TestFindMissingEvent(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.FindByID(999)
	if !apperr.IsKind(err, apperr.EventNotFound) {
		t.Fatalf("expected EVENT_NOT_FOUND, got %v", err)
	}
}

func TestDeleteIsSoft(t *testing.T) {
	svc, db := newTestService(t)

	ev, err := svc.Create(&CreateEventDTO{
		Name:                  "Temp",
		ProgrammedDateInitial: "2026-06-12",
		ProgrammedDateFinal:   "2026-06-14",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ev.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := svc.FindByID(ev.ID); !apperr.IsKind(err, apperr.EventNotFound) {
		t.Fatalf("deleted event must be invisible, got %v", err)
	}

	var raw models.EventModel
	if err := db.Unscoped().First(&raw, ev.ID).Error; err != nil {
		t.Fatalf("row should still exist unscoped: %v", err)
	}
	if !raw.DeletedAt.Valid {
		t.Fatal("expected deleted_at to be set")
	}
}

func TestListPaginates(t *testing.T) {
	svc, _ := newTestService(t)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(&CreateEventDTO{
			Name:                  "Event",
			ProgrammedDateInitial: "2026-06-12",
			ProgrammedDateFinal:   "2026-06-14",
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	items, pag, err := svc.List(pagination.Query{Page: 1, Size: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || pag.Total != 3 || !pag.HasNextPage {
		t.Fatalf("unexpected page: items=%d pag=%+v", len(items), pag)
	}
}
