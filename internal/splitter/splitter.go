// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package splitter

import (
	"fmt"
	"log"
	"strings"

	"github.com/jeranaias/relaybot/internal/util"
)

// Delivery constants for the chat surface.
const (
	// MaxMessageLength is the chunk size budget, kept under Discord's 2000
	// character hard limit to leave headroom for surface overhead.
	MaxMessageLength = 1900

	// MaxFileSize is the attachment size cap (Discord's file limit).
	MaxFileSize = 8 * 1024 * 1024

	// FileBatchSize is how many attachments go out per send call.
	FileBatchSize = 5

	// fence delimits code blocks.
	fence = "```"
)

// File is a synthesized attachment for an oversized code block.
type File struct {
	Name string
	Data []byte
}

// Segments is the ordered output of Segment: text parts and file payloads.
type Segments struct {
	Parts []string
	Files []File
}

// =============================================================================
// SEGMENTATION
// =============================================================================

// Segment reflows text into parts of at most maxLen runes plus file payloads
// for code blocks that cannot fit in any part.
//
// The scan walks paired triple-backtick fences in order of appearance. Text
// between code blocks feeds a greedy packer in pre-sized pieces; a fitting
// code block is one atomic piece; an oversized one becomes a sequentially
// named file plus a placeholder line. A fence with no closing delimiter is
// plain text.
func Segment(text string, maxLen int) Segments {
	var seg Segments

	var buf strings.Builder
	bufRunes := 0

	flush := func() {
		if buf.Len() > 0 {
			seg.Parts = append(seg.Parts, buf.String())
			buf.Reset()
			bufRunes = 0
		}
	}

	// pack appends one piece, flushing first if the piece would overflow the
	// buffer. Pieces handed here never exceed maxLen themselves.
	pack := func(piece string) {
		n := util.RuneLen(piece)
		if bufRunes+n > maxLen {
			flush()
		}
		buf.WriteString(piece)
		bufRunes += n
	}

	packText := func(span string) {
		for _, piece := range util.SliceRunes(span, maxLen) {
			pack(piece)
		}
	}

	rest := text
	for {
		open := strings.Index(rest, fence)
		if open < 0 {
			break
		}
		closing := strings.Index(rest[open+len(fence):], fence)
		if closing < 0 {
			// Unterminated fence: the remainder is plain text.
			break
		}
		end := open + len(fence) + closing + len(fence)

		packText(rest[:open])

		block := rest[open:end]
		if util.RuneLen(block) > maxLen {
			name := fmt.Sprintf("code_block_%d.txt", len(seg.Files)+1)
			data := []byte(block)
			if len(data) > MaxFileSize {
				log.Printf("splitter: code block truncated to %d bytes for %s", MaxFileSize, name)
				data = data[:MaxFileSize]
			}
			seg.Files = append(seg.Files, File{Name: name, Data: data})
			pack(Placeholder(name))
		} else {
			pack(block)
		}

		rest = rest[end:]
	}

	packText(rest)
	flush()
	return seg
}

// Placeholder is the line inserted where an oversized code block was
// extracted into a file.
func Placeholder(name string) string {
	return "Large code block sent as file: " + name
}
