package cmd

import (
	"bytes"
	"testing"
)

func TestBarSink(t *testing.T) {
	var buf bytes.Buffer
	s := newBarSink(&buf, "Processing")

	s.Update(0, 0)
	if s.bar != nil {
		t.Fatal("Bar created before the total was known")
	}

	s.Update(1, 3)
	s.Update(3, 3)
	if s.bar == nil || s.max != 3 {
		t.Fatalf("Unexpected bar state: max %d", s.max)
	}

	s.Close()
	s.Close()
	if !s.Closed() {
		t.Error("Sink not closed")
	}
	s.Update(3, 3)
}
