package audit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/decomp/ngsec/pkg/access"
)

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := testLogger()
	logger.SetWriter(&buf)

	logger.Log(RoleEvent{
		Actor:     "admin",
		Operation: "create",
		Role:      "db_decomp_read",
		Success:   true,
	})

	// PRI is facility*8 + severity: 10*8 + 6
	want := `<86>1 2024-03-01T09:30:00.000Z loader-1 ngsec 4242 role ` +
		`[action@32473 operation="create" result="success"][auth@32473 user="admin"][subject@32473 role="db_decomp_read"] ` +
		"admin created role db_decomp_read\n"
	if got := buf.String(); got != want {
		t.Errorf("Log() wrote\n%q\nwant\n%q", got, want)
	}
}

func TestRecordNilValues(t *testing.T) {
	rec := Record{Facility: FacilityLocal0, Severity: SeverityNotice, Time: fixedTime, ProcID: 1, MsgID: "graph", Message: "m"}
	if got := rec.String(); !strings.HasPrefix(got, "<133>1 2024-03-01T09:30:00.000Z - ngsec 1 graph - m") {
		t.Errorf("String() = %q", got)
	}
}

func TestRoleEvent(t *testing.T) {
	tests := []struct {
		name    string
		event   RoleEvent
		wantMsg string
		wantSev Severity
	}{
		{
			name:    "create",
			event:   RoleEvent{Actor: "admin", Operation: "create", Role: "ng_decomp_ontology_read", Success: true},
			wantMsg: "admin created role ng_decomp_ontology_read",
			wantSev: SeverityInfo,
		},
		{
			name:    "remove",
			event:   RoleEvent{Actor: "admin", Operation: "remove", Role: "ng_decomp_old_read", Success: true},
			wantMsg: "admin removed role ng_decomp_old_read",
			wantSev: SeverityInfo,
		},
		{
			name:    "failed remove",
			event:   RoleEvent{Actor: "admin", Operation: "remove", Role: "ng_decomp_old_read", ErrorMessage: "status 500"},
			wantMsg: "admin tried to remove role ng_decomp_old_read: status 500",
			wantSev: SeverityWarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Message(); got != tt.wantMsg {
				t.Errorf("Message() = %q, want %q", got, tt.wantMsg)
			}
			if tt.event.Severity() != tt.wantSev {
				t.Errorf("Severity() = %v, want %v", tt.event.Severity(), tt.wantSev)
			}
			if tt.event.Facility() != FacilityAuthPriv {
				t.Errorf("Facility() = %v, want FacilityAuthPriv", tt.event.Facility())
			}
		})
	}
}

func TestPermissionEvent(t *testing.T) {
	event := PermissionEvent{
		Actor: "admin",
		Role:  "db_decomp_read",
		Permission: access.Permission{
			Action:       access.ActionRead,
			ResourceType: access.ResourceDB,
			Resource:     "decomp",
		},
		Success: true,
	}

	if event.MessageID() != "permission" {
		t.Errorf("MessageID() = %v, want 'permission'", event.MessageID())
	}
	if got := event.Message(); got != "admin granted [READ, db:decomp] to role db_decomp_read" {
		t.Errorf("Message() = %q", got)
	}
	sd := event.StructuredData()
	if sd[SDIDSubject]["resource_type"] != "db" {
		t.Errorf("StructuredData subject.resource_type = %v, want 'db'", sd[SDIDSubject]["resource_type"])
	}
}

func TestUserRolesEvent(t *testing.T) {
	event := UserRolesEvent{
		Actor:   "admin",
		User:    "alice",
		Added:   []string{"ng_decomp_new_read", "db_decomp_read"},
		Removed: []string{"ng_decomp_old_read"},
		Success: true,
	}

	want := "admin set roles of alice (+db_decomp_read +ng_decomp_new_read -ng_decomp_old_read)"
	if got := event.Message(); got != want {
		t.Errorf("Message() = %q, want %q", got, want)
	}
	if got := event.StructuredData()[SDIDSubject]["added"]; got != "db_decomp_read,ng_decomp_new_read" {
		t.Errorf("StructuredData subject.added = %q", got)
	}

	unchanged := UserRolesEvent{Actor: "admin", User: "bob", Success: true}
	if !strings.Contains(unchanged.Message(), "(unchanged)") {
		t.Errorf("Message() = %q, want to contain '(unchanged)'", unchanged.Message())
	}
}

func TestAliasEvent(t *testing.T) {
	bind := AliasEvent{Actor: "admin", Database: "decomp", Alias: ":a-tosc", Graph: "urn:ABCD", Operation: "bind", Transaction: "tx-1", Success: true}
	if got := bind.Message(); got != "admin bound alias :a-tosc to urn:ABCD" {
		t.Errorf("Message() = %q", got)
	}
	if bind.StructuredData()[SDIDGraph]["transaction"] != "tx-1" {
		t.Error("Expected transaction in structured data")
	}

	unbind := AliasEvent{Actor: "admin", Database: "decomp", Alias: ":a-tosc", Graph: "urn:GLEIF", Operation: "unbind", Success: false, ErrorMessage: "boom"}
	if got := unbind.Message(); got != "admin tried to unbind alias :a-tosc from urn:GLEIF: boom" {
		t.Errorf("Message() = %q", got)
	}
	if _, ok := unbind.StructuredData()[SDIDGraph]["transaction"]; ok {
		t.Error("Expected no transaction outside a transaction")
	}
	if unbind.Facility() != FacilityLocal0 {
		t.Errorf("Facility() = %v, want FacilityLocal0", unbind.Facility())
	}
}

func TestGraphEvent(t *testing.T) {
	tests := []struct {
		name    string
		event   GraphEvent
		wantMsg string
		wantSev Severity
	}{
		{
			name:    "copy",
			event:   GraphEvent{Actor: "admin", Graph: "urn:ABCD", Source: "urn:GLEIF", Operation: "copy", Success: true},
			wantMsg: "admin copied urn:GLEIF into urn:ABCD",
			wantSev: SeverityInfo,
		},
		{
			name:    "drop",
			event:   GraphEvent{Actor: "admin", Graph: "urn:GLEIF", Operation: "drop", Success: true},
			wantMsg: "admin dropped graph urn:GLEIF",
			wantSev: SeverityNotice,
		},
		{
			name:    "failed drop",
			event:   GraphEvent{Actor: "admin", Graph: "urn:GLEIF", Operation: "drop", ErrorMessage: "locked"},
			wantMsg: "admin tried to drop graph urn:GLEIF: locked",
			wantSev: SeverityWarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Message(); got != tt.wantMsg {
				t.Errorf("Message() = %q, want %q", got, tt.wantMsg)
			}
			if tt.event.Severity() != tt.wantSev {
				t.Errorf("Severity() = %v, want %v", tt.event.Severity(), tt.wantSev)
			}
		})
	}
}

func TestTransactionEvent(t *testing.T) {
	commit := TransactionEvent{Actor: "admin", Database: "decomp", Transaction: "tx-1", Operation: "commit", Success: true}
	if got := commit.Message(); got != "admin committed transaction tx-1 on decomp" {
		t.Errorf("Message() = %q", got)
	}
	rollback := TransactionEvent{Actor: "admin", Database: "decomp", Transaction: "tx-1", Operation: "rollback", Success: true}
	if got := rollback.Message(); got != "admin rolled back transaction tx-1 on decomp" {
		t.Errorf("Message() = %q", got)
	}
}

func TestOptionsEvent(t *testing.T) {
	event := OptionsEvent{
		Actor:    "admin",
		Database: "decomp",
		Options:  map[string]any{"security.named.graphs": true, "graph.aliases": true},
		Success:  true,
	}
	if got := event.Message(); got != "admin set graph.aliases=true security.named.graphs=true on decomp" {
		t.Errorf("Message() = %q", got)
	}
	if event.Severity() != SeverityNotice {
		t.Errorf("Severity() = %v, want SeverityNotice", event.Severity())
	}
}

func TestAuditToggle(t *testing.T) {
	// Save original state
	originalEnabled := auditEnabled
	defer func() {
		auditEnabled = originalEnabled
	}()

	// Test with audit disabled
	SetEnabled(false)
	if IsEnabled() {
		t.Error("Expected audit to be disabled")
	}

	// Test with audit enabled
	SetEnabled(true)
	if !IsEnabled() {
		t.Error("Expected audit to be enabled")
	}
}

func TestEscapeSDValue(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"simple", `"simple"`},
		{`with"quote`, `"with\"quote"`},
		{`decomp\urn:GLEIF`, `"decomp\\urn:GLEIF"`},
		{`with]bracket`, `"with\]bracket"`},
		{`all"special\chars]`, `"all\"special\\chars\]"`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := escapeSDValue(tt.input)
			if got != tt.want {
				t.Errorf("escapeSDValue(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
