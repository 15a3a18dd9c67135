package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestSpinner_NonTTYPrintsMessageOnce(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("Hashing files")
	s.SetWriter(&buf)

	s.Start()
	s.Stop()

	got := buf.String()
	if got != "Hashing files...\n" {
		t.Errorf("non-TTY spinner output = %q, want single message line", got)
	}
}

func TestSpinner_StopWithMessage(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("Scanning")
	s.SetWriter(&buf)

	s.Start()
	s.StopWithMessage("Scan complete")

	if !strings.Contains(buf.String(), "Scan complete") {
		t.Errorf("output missing final message: %q", buf.String())
	}
}

func TestSpinner_DoubleStopIsSafe(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("Working")
	s.SetWriter(&buf)

	s.Start()
	s.Stop()
	s.Stop() // must not panic or double-close
}

func TestSpinner_StopBeforeStartIsSafe(t *testing.T) {
	s := NewSpinner("Idle")
	s.SetWriter(&bytes.Buffer{})
	s.Stop()
}
