package audit

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/decomp/ngsec/pkg/access"
)

var fixedTime = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func testLogger() *Logger {
	return &Logger{
		writer:   io.Discard,
		hostname: "loader-1",
		pid:      4242,
		now:      func() time.Time { return fixedTime },
	}
}

func TestStoreSave(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		facility int
		severity Severity
		msgID    string
		sdata    string
		message  string
	}{
		{
			name: "permission",
			event: PermissionEvent{
				Actor: "admin",
				Role:  "ng_decomp_ontology_read",
				Permission: access.Permission{
					Action:       access.ActionRead,
					ResourceType: access.ResourceNamedGraph,
					Resource:     `decomp\https://nasa.gov/ontology`,
				},
				Success: true,
			},
			facility: FacilityAuthPriv,
			severity: SeverityInfo,
			msgID:    "permission",
		},
		{
			name:     "graph drop",
			event:    GraphEvent{Actor: "admin", Database: "decomp", Graph: "urn:graphX_TS_1600000000", Operation: "drop", Success: true},
			facility: FacilityLocal0,
			severity: SeverityNotice,
			msgID:    "graph",
			message:  "admin dropped graph urn:graphX_TS_1600000000",
		},
		{
			name: "failed user roles",
			event: UserRolesEvent{
				Actor:        "admin",
				User:         "bob",
				Added:        []string{"ng_decomp_new_read"},
				ErrorMessage: "status 500",
			},
			facility: FacilityAuthPriv,
			severity: SeverityWarning,
			msgID:    "user-roles",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create sqlmock: %v", err)
			}
			defer db.Close()

			var message any = sqlmock.AnyArg()
			if tt.message != "" {
				message = tt.message
			}
			mock.ExpectExec(`INSERT INTO messages`).
				WithArgs(tt.facility, int(tt.severity), fixedTime, "loader-1", AppName, 4242, tt.msgID, sqlmock.AnyArg(), message).
				WillReturnResult(sqlmock.NewResult(1, 1))

			if err := NewStore(db).Save(testLogger().Record(tt.event)); err != nil {
				t.Errorf("Save() error = %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestStoreSaveError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	boom := errors.New("connection reset")
	mock.ExpectExec(`INSERT INTO messages`).WillReturnError(boom)

	rec := testLogger().Record(TransactionEvent{Actor: "admin", Database: "decomp", Transaction: "tx-1", Operation: "commit", Success: true})
	if err := NewStore(db).Save(rec); !errors.Is(err, boom) {
		t.Errorf("Save() error = %v, want %v", err, boom)
	}
}

func TestStoreWithoutDB(t *testing.T) {
	store := &Store{}
	if err := store.Save(testLogger().Record(RoleEvent{Actor: "admin", Operation: "create", Role: "db_decomp_read", Success: true})); err != nil {
		t.Errorf("Save() without db = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close() without db = %v", err)
	}
}

func TestStoreClose(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	mock.ExpectClose()

	if err := NewStore(db).Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestOpenStoreWithoutURL(t *testing.T) {
	store, err := OpenStore("")
	if err != nil || store != nil {
		t.Errorf("OpenStore(\"\") = %v, %v; want nil, nil", store, err)
	}
}

func TestUseStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	originalEnabled := auditEnabled
	originalWriter := DefaultLogger.writer
	DefaultLogger.SetWriter(io.Discard)
	UseStore(NewStore(db))
	defer func() {
		UseStore(nil)
		DefaultLogger.SetWriter(originalWriter)
		auditEnabled = originalEnabled
	}()
	SetEnabled(true)

	mock.ExpectExec(`INSERT INTO messages`).
		WithArgs(FacilityAuthPriv, int(SeverityInfo), sqlmock.AnyArg(), sqlmock.AnyArg(), AppName, sqlmock.AnyArg(),
			"role", sqlmock.AnyArg(), "admin removed role ng_decomp_ontology_read").
		WillReturnResult(sqlmock.NewResult(1, 1))

	Log(RoleEvent{Actor: "admin", Operation: "remove", Role: "ng_decomp_ontology_read", Success: true})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
