package transcript

import "strings"

// Normalize folds a word stream into per-speaker segments. Consecutive words
// sharing a speaker label accumulate into one segment; a speaker change
// closes the open segment with its end set to the incoming word's start so
// segment boundaries tile without gaps. The final segment ends at the last
// word's end timestamp.
func Normalize(words []Word) []Segment {
	var segments []Segment
	var open *Segment
	var parts []string

	flush := func(end float64) {
		if open == nil {
			return
		}
		open.Text = strings.TrimSpace(strings.Join(parts, " "))
		open.End = end
		segments = append(segments, *open)
		open = nil
		parts = parts[:0]
	}

	for _, word := range words {
		if open != nil && !sameSpeaker(open.Speaker, word.Speaker) {
			flush(word.Start)
		}
		if open == nil {
			open = &Segment{Speaker: word.Speaker, Start: word.Start}
		}
		parts = append(parts, word.Text)
	}
	if open != nil && len(words) > 0 {
		flush(words[len(words)-1].End)
	}
	return segments
}

func sameSpeaker(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
