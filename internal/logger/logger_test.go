package logger

import (
	"bytes"
	"io"
	"os"
	"sync"
	"testing"
)

func capture(t *testing.T, v bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(v)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)

	if IsVerbose() {
		t.Error("expected verbose to be false initially")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}
}

func TestLevels_WhenVerbose(t *testing.T) {
	tests := []struct {
		name     string
		log      func()
		expected string
	}{
		{"debug", func() { Debug("generation %d", 3) }, "[DEBUG] generation 3\n"},
		{"info", func() { Info("submitted %s", "genus=Glycine") }, "[INFO] submitted genus=Glycine\n"},
		{"warn", func() { Warn("slow response") }, "[WARN] slow response\n"},
		{"error", func() { Error("search failed: %v", "timeout") }, "[ERROR] search failed: timeout\n"},
		{"section", func() { Section("Search") }, "\n=== Search ===\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, true)
			tt.log()
			if got := buf.String(); got != tt.expected {
				t.Errorf("unexpected output: %q", got)
			}
		})
	}
}

func TestLevels_WhenNotVerbose(t *testing.T) {
	buf := capture(t, false)

	Debug("hidden")
	Info("hidden")
	Warn("hidden")
	Section("hidden")

	if buf.Len() > 0 {
		t.Errorf("expected no output when verbose is disabled, got %q", buf.String())
	}
}

func TestError_AlwaysPrinted(t *testing.T) {
	buf := capture(t, false)

	Error("boom")

	if got := buf.String(); got != "[ERROR] boom\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestFor_PrefixesComponent(t *testing.T) {
	buf := capture(t, true)
	log := For("search/genes")

	log.Debug("generation %d", 7)
	log.Warn("aborted")

	expected := "[DEBUG] search/genes: generation 7\n[WARN] search/genes: aborted\n"
	if got := buf.String(); got != expected {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestFor_ErrorIgnoresVerbosity(t *testing.T) {
	buf := capture(t, false)

	For("graphql").Info("hidden")
	For("graphql").Error("status %d", 502)

	if got := buf.String(); got != "[ERROR] graphql: status 502\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	capture(t, true)
	SetOutput(io.Discard)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			Debug("message %d", i)
		}()
		go func() {
			defer wg.Done()
			SetVerbose(i%2 == 0)
		}()
	}
	wg.Wait()
}
