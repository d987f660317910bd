package common

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Event kinds recorded by the converter.
const (
	EventOpen     = "open"
	EventRollover = "rollover"
	EventClose    = "close"
)

// SessionEvent captures a single change to the set of SEG-Y output files.
type SessionEvent struct {
	Kind       string    `json:"kind"`
	Path       string    `json:"path"`
	RecordSize int32     `json:"recordSize,omitempty"`
	FirstTrace uint32    `json:"firstTrace,omitempty"`
	Traces     int       `json:"traces"`
	Ts         time.Time `json:"ts"`
}

// EventLog provides append-only access to a JSONL event log.
type EventLog struct {
	path string
	mu   sync.Mutex
}

// NewEventLog returns an EventLog that writes to the provided path.
func NewEventLog(path string) *EventLog {
	return &EventLog{path: path}
}

// Path returns the backing file path for the log.
func (l *EventLog) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Append writes a new entry to the log, one JSON object per line.
func (l *EventLog) Append(ev SessionEvent) error {
	if l == nil {
		return errors.New("nil event log")
	}
	if ev.Kind == "" {
		return errors.New("session event missing kind")
	}
	if ev.Ts.IsZero() {
		ev.Ts = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	dir := filepath.Dir(l.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return err
	}
	return f.Sync()
}

// ReadEventLog loads every entry from the supplied JSONL file.
func ReadEventLog(path string) ([]SessionEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	var events []SessionEvent
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ev SessionEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			return nil, fmt.Errorf("decode session event: %w", err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
