// Text form of a received syslog message as it is queued and written
package message

import (
	"strings"
	"syslogsrv/internal/global"
	"time"
	"unicode/utf8"
)

// Builds the queued form of a received line, optionally prefixed with the receipt time
func New(text string, displayTimestamps bool, receivedAt time.Time) (msg string) {
	if !displayTimestamps {
		msg = text
		return
	}
	msg = receivedAt.Format(global.MessageTimestampLayout) + " " + text
	return
}

// Decodes raw bytes as UTF-8. Invalid sequences become U+FFFD, decoding never fails.
func Decode(raw []byte) (text string) {
	if utf8.Valid(raw) {
		text = string(raw)
		return
	}
	text = strings.ToValidUTF8(string(raw), string(utf8.RuneError))
	return
}

// Removes one trailing line terminator (\n or \r\n) and any trailing \r
func TrimLineEnding(line string) (trimmed string) {
	trimmed = strings.TrimSuffix(line, "\n")
	trimmed = strings.TrimRight(trimmed, "\r")
	return
}
