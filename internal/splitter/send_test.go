// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package splitter

import (
	"errors"
	"strings"
	"testing"

	"github.com/jeranaias/relaybot/internal/util"
)

// fakeSender records sends and can reject the first N text sends as too long.
type fakeSender struct {
	texts       []string
	fileBatches [][]File
	rejectFirst int
	failWith    error
}

func (f *fakeSender) SendText(text string) error {
	if f.failWith != nil {
		return f.failWith
	}
	if f.rejectFirst > 0 {
		f.rejectFirst--
		return ErrTooLong
	}
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeSender) SendFiles(files []File) error {
	batch := make([]File, len(files))
	copy(batch, files)
	f.fileBatches = append(f.fileBatches, batch)
	return nil
}

// =============================================================================
// DELIVERY TESTS
// =============================================================================

func TestSendSplitEmptyIsNoOp(t *testing.T) {
	s := &fakeSender{}

	if err := SendSplit(s, "   \n\t "); err != nil {
		t.Fatalf("SendSplit(whitespace) = %v, want nil", err)
	}
	if len(s.texts) != 0 || len(s.fileBatches) != 0 {
		t.Errorf("whitespace input triggered sends: %d texts, %d batches", len(s.texts), len(s.fileBatches))
	}
}

func TestSendSplitSingleMessage(t *testing.T) {
	s := &fakeSender{}

	if err := SendSplit(s, "hello"); err != nil {
		t.Fatalf("SendSplit failed: %v", err)
	}
	if len(s.texts) != 1 || s.texts[0] != "hello" {
		t.Errorf("texts = %q, want [hello]", s.texts)
	}
}

func TestSendSplitTooLongFallback(t *testing.T) {
	s := &fakeSender{rejectFirst: 1}
	text := strings.Repeat("z", 1000)

	if err := SendSplit(s, text); err != nil {
		t.Fatalf("SendSplit failed: %v", err)
	}

	// The rejected part was re-sliced; everything still arrives.
	if strings.Join(s.texts, "") != text {
		t.Errorf("fallback lost content")
	}
	for i, sent := range s.texts {
		if util.RuneLen(sent) > MaxMessageLength {
			t.Errorf("fallback slice %d exceeds limit", i)
		}
	}
}

func TestSendSplitPropagatesHardFailure(t *testing.T) {
	boom := errors.New("gateway down")
	s := &fakeSender{failWith: boom}

	if err := SendSplit(s, "hello"); !errors.Is(err, boom) {
		t.Errorf("SendSplit error = %v, want %v", err, boom)
	}
}

func TestSendSplitFileBatching(t *testing.T) {
	// 12 oversized code blocks -> 12 files -> batches of 5, 5, 2.
	var sb strings.Builder
	for i := 0; i < 12; i++ {
		sb.WriteString("```\n")
		sb.WriteString(strings.Repeat("b", MaxMessageLength+10))
		sb.WriteString("\n```\n")
	}

	s := &fakeSender{}
	if err := SendSplit(s, sb.String()); err != nil {
		t.Fatalf("SendSplit failed: %v", err)
	}

	if len(s.fileBatches) != 3 {
		t.Fatalf("got %d batches, want 3", len(s.fileBatches))
	}
	wantSizes := []int{5, 5, 2}
	n := 0
	for i, batch := range s.fileBatches {
		if len(batch) != wantSizes[i] {
			t.Errorf("batch %d size = %d, want %d", i, len(batch), wantSizes[i])
		}
		for _, f := range batch {
			n++
			want := "code_block_" + itoa(n) + ".txt"
			if f.Name != want {
				t.Errorf("file %d name = %q, want %q (strict order)", n, f.Name, want)
			}
		}
	}
}

func itoa(n int) string {
	if n < 10 {
		return string(rune('0' + n))
	}
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}
