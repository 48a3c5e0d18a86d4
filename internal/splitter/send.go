// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package splitter

import (
	"errors"
	"log"
	"strings"

	"github.com/jeranaias/relaybot/internal/util"
)

// ErrTooLong is how a Sender reports that the surface rejected a chunk for
// exceeding its own hard limit. SendSplit recovers from it locally with a
// fixed-size re-slice; it is never surfaced to the user.
var ErrTooLong = errors.New("message too long for surface")

// Sender is the chat surface's send capability.
type Sender interface {
	SendText(text string) error
	SendFiles(files []File) error
}

// SendSplit segments text and delivers every part and file through the
// sender, in order. Empty or all-whitespace text is a logged no-op, not an
// error.
func SendSplit(sender Sender, text string) error {
	if strings.TrimSpace(text) == "" {
		log.Println("splitter: skipping delivery of empty message")
		return nil
	}

	seg := Segment(text, MaxMessageLength)

	for _, part := range seg.Parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		err := sender.SendText(part)
		if errors.Is(err, ErrTooLong) {
			// Safety net: surface overhead can still push a packed chunk
			// over the hard limit. Re-slice and send sequentially.
			log.Printf("splitter: surface rejected %d-rune part, re-slicing", util.RuneLen(part))
			for _, slice := range util.SliceRunes(part, MaxMessageLength) {
				if err := sender.SendText(slice); err != nil {
					return err
				}
			}
			continue
		}
		if err != nil {
			return err
		}
	}

	// Attachment-count limits cap how many files one send may carry.
	for start := 0; start < len(seg.Files); start += FileBatchSize {
		end := start + FileBatchSize
		if end > len(seg.Files) {
			end = len(seg.Files)
		}
		if err := sender.SendFiles(seg.Files[start:end]); err != nil {
			return err
		}
	}

	return nil
}
