package stream

import "strings"

const (
	openTag  = "<think>"
	closeTag = "</think>"
)

// controlMarkers are chat-template tokens the engine may emit inside token
// text; they are stripped from both channels regardless of position.
var controlMarkers = []string{"<|im_start|>", "<|im_end|>", "<|endoftext|>"}

// Parsed is the two-channel view of the raw generation text.
type Parsed struct {
	Reasoning string
	Answer    string
}

// Split reclassifies the full raw text into reasoning and answer channels.
// It is pure and recomputed from scratch on every update, so repeated calls
// with the same input always agree.
//
// The split keys off the LAST occurrence of each marker: if the last open
// tag follows the last close tag (or no close tag exists yet) the model is
// inside an unclosed reasoning block and everything after that open tag is
// reasoning. Otherwise the text before the last close tag is reasoning and
// the text after it is the answer. The last-occurrence rule tolerates a
// model that re-emits marker pairs mid-stream.
func Split(raw string, thinking bool) Parsed {
	if !thinking {
		return Parsed{Answer: clean(raw)}
	}
	lastOpen := strings.LastIndex(raw, openTag)
	lastClose := strings.LastIndex(raw, closeTag)
	if lastClose < 0 || lastOpen > lastClose {
		start := 0
		if lastOpen >= 0 {
			start = lastOpen + len(openTag)
		}
		return Parsed{Reasoning: clean(raw[start:])}
	}
	return Parsed{
		Reasoning: clean(raw[:lastClose]),
		Answer:    clean(raw[lastClose+len(closeTag):]),
	}
}

// clean strips reasoning tags and control markers, then trims whitespace.
func clean(s string) string {
	s = strings.ReplaceAll(s, openTag, "")
	s = strings.ReplaceAll(s, closeTag, "")
	for _, m := range controlMarkers {
		s = strings.ReplaceAll(s, m, "")
	}
	return strings.TrimSpace(s)
}
