package audit

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Structured data IDs (RFC5424). 32473 is the enterprise number IANA
// reserves for documentation.
const (
	PEN         = 32473
	SDIDAuth    = "auth@32473"
	SDIDSubject = "subject@32473"
	SDIDAction  = "action@32473"
	SDIDGraph   = "graph@32473"
)

// Syslog facilities
const (
	FacilityAuthPriv = 10 // role, permission and user changes
	FacilityLocal0   = 16 // graph data and database changes
)

// Severity is a syslog severity (RFC5424 section 6.2.1).
type Severity int

const (
	SeverityEmergency Severity = iota
	SeverityAlert
	SeverityCritical
	SeverityError
	SeverityWarning
	SeverityNotice
	SeverityInfo
	SeverityDebug
)

// Event is anything that can be written to the audit trail.
type Event interface {
	MessageID() string
	Message() string
	Severity() Severity
	Facility() int
	StructuredData() map[string]map[string]string
}

// AppName is the RFC5424 APP-NAME of every audit record.
const AppName = "ngsec"

// Record is an event stamped with its origin, ready to be written or stored.
type Record struct {
	Facility       int
	Severity       Severity
	Time           time.Time
	Hostname       string
	ProcID         int
	MsgID          string
	StructuredData map[string]map[string]string
	Message        string
}

// Priority is the PRI value: facility * 8 + severity.
func (r Record) Priority() int {
	return r.Facility*8 + int(r.Severity)
}

// String renders r as one RFC5424 line without the trailing newline:
// <PRI>1 TIMESTAMP HOSTNAME APP-NAME PROCID MSGID SD MSG
func (r Record) String() string {
	return fmt.Sprintf("<%d>1 %s %s %s %d %s %s %s",
		r.Priority(),
		r.Time.UTC().Format("2006-01-02T15:04:05.000Z"),
		nilValue(r.Hostname),
		AppName,
		r.ProcID,
		r.MsgID,
		nilValue(formatStructuredData(r.StructuredData)),
		r.Message,
	)
}

// nilValue substitutes the RFC5424 NILVALUE for empty header fields.
func nilValue(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Logger writes audit records as syslog lines. It is safe for concurrent use.
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	hostname string
	pid      int
	now      func() time.Time
}

// NewLogger returns a logger writing to stdout.
func NewLogger() *Logger {
	hostname, _ := os.Hostname()
	return &Logger{
		writer:   os.Stdout,
		hostname: hostname,
		pid:      os.Getpid(),
		now:      time.Now,
	}
}

// SetWriter redirects the logger.
func (l *Logger) SetWriter(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

// Record stamps event with the logger's clock, host and process.
func (l *Logger) Record(event Event) Record {
	return Record{
		Facility:       event.Facility(),
		Severity:       event.Severity(),
		Time:           l.now().UTC(),
		Hostname:       l.hostname,
		ProcID:         l.pid,
		MsgID:          event.MessageID(),
		StructuredData: event.StructuredData(),
		Message:        event.Message(),
	}
}

// Log writes event as one line.
func (l *Logger) Log(event Event) {
	l.write(l.Record(event))
}

func (l *Logger) write(r Record) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.writer, r.String()+"\n")
}

// formatStructuredData renders SD-ELEMENTs with ids and params sorted:
// [sdid k1="v1" k2="v2"][sdid2 ...]
func formatStructuredData(sd map[string]map[string]string) string {
	var b strings.Builder
	for _, id := range sortedKeys(sd) {
		b.WriteString("[" + id)
		for _, key := range sortedKeys(sd[id]) {
			b.WriteString(" " + key + "=" + escapeSDValue(sd[id][key]))
		}
		b.WriteString("]")
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var sdValueEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `]`, `\]`)

// escapeSDValue quotes a PARAM-VALUE, escaping per RFC5424 section 6.3.3.
func escapeSDValue(value string) string {
	return `"` + sdValueEscaper.Replace(value) + `"`
}

// DefaultLogger receives every event passed to Log.
var DefaultLogger = NewLogger()

// DefaultStore persists events passed to Log. It is opened from
// AUDIT_DATABASE_URL on first use unless UseStore was called.
var DefaultStore *Store

var (
	auditEnabled     = true
	auditEnabledOnce sync.Once
	storeInitOnce    sync.Once
)

// IsEnabled reports whether Log records anything. NGSEC_AUDIT_ENABLED set to
// false, 0, no or off turns the trail off.
func IsEnabled() bool {
	auditEnabledOnce.Do(func() {
		switch strings.ToLower(os.Getenv("NGSEC_AUDIT_ENABLED")) {
		case "false", "0", "no", "off":
			auditEnabled = false
		}
	})
	return auditEnabled
}

// SetEnabled overrides NGSEC_AUDIT_ENABLED.
func SetEnabled(enabled bool) {
	auditEnabledOnce.Do(func() {})
	auditEnabled = enabled
}

// UseStore makes s the persistence target instead of the store configured
// by AUDIT_DATABASE_URL. A nil s disables persistence.
func UseStore(s *Store) {
	storeInitOnce.Do(func() {})
	DefaultStore = s
}

// Log writes event to DefaultLogger and saves it to DefaultStore. Store
// failures are reported on stderr; they never fail the caller.
func Log(event Event) {
	if !IsEnabled() {
		return
	}
	rec := DefaultLogger.Record(event)
	DefaultLogger.write(rec)

	storeInitOnce.Do(func() {
		var err error
		if DefaultStore, err = OpenStore(os.Getenv("AUDIT_DATABASE_URL")); err != nil {
			fmt.Fprintf(os.Stderr, "audit: failed to connect to audit database: %v\n", err)
		}
	})
	if DefaultStore != nil {
		if err := DefaultStore.Save(rec); err != nil {
			fmt.Fprintf(os.Stderr, "audit: failed to save event: %v\n", err)
		}
	}
}
