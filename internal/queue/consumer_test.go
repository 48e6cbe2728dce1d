package queue

import (
    "encoding/json"
    "os"
    "path/filepath"
    "strings"
    "testing"
)

func TestHandleMessageAppendsLines(t *testing.T) {
    dir := t.TempDir()
    events := []ClockEvent{
        {Type: EventClockIn, RecordID: 7, Token: "dev-1", EmployeeName: "Jo Ruiz", Worksite: "Harbor Yard", ClockInAt: "2026-10-16T07:00:00Z"},
        {Type: EventClockOut, RecordID: 7, Token: "dev-1", EmployeeName: "Jo Ruiz", Worksite: "Harbor Yard", ClockInAt: "2026-10-16T07:00:00Z", ClockOutAt: "2026-10-16T15:30:00Z", HasPhoto: true},
    }
    for _, ev := range events {
        body, err := json.Marshal(ev)
        if err != nil {
            t.Fatalf("marshal: %v", err)
        }
        if err := handleMessage(dir, body); err != nil {
            t.Fatalf("handle message: %v", err)
        }
    }

    raw, err := os.ReadFile(filepath.Join(dir, "timeclock.log"))
    if err != nil {
        t.Fatalf("read log: %v", err)
    }
    lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
    if len(lines) != 2 {
        t.Fatalf("expected 2 lines, got %d: %q", len(lines), raw)
    }
    if !strings.HasPrefix(lines[0], "[2026-10-16T07:00:00Z] Clocked in | record_id=7") {
        t.Errorf("unexpected clock-in line: %s", lines[0])
    }
    if !strings.HasPrefix(lines[1], "[2026-10-16T15:30:00Z] Clocked out") || !strings.Contains(lines[1], "photo=true") {
        t.Errorf("unexpected clock-out line: %s", lines[1])
    }
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
    if err := handleMessage(t.TempDir(), []byte("{not json")); err == nil {
        t.Fatal("expected unmarshal error")
    }
}
