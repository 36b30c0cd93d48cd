package merge3

import (
	"bytes"
	"strings"
)

// HunkType classifies a region of a textual three-way merge.
type HunkType int

const (
	HunkClean    HunkType = iota // Copied through without disagreement.
	HunkConflict                 // Base, ours and theirs disagree; markers were written.
)

// Hunk is one region of a textual merge result.
type Hunk struct {
	Type    HunkType
	Base    []byte
	Ours    []byte
	Theirs  []byte
	Merged  []byte
}

// LineResult is the outcome of a textual three-way line merge.
type LineResult struct {
	Merged      []byte
	HasConflict bool
	Hunks       []Hunk
}

// chunk is a contiguous run of base lines [baseStart,baseEnd) together with
// the lines one side replaces them with. changed is false for a chunk that
// is an untouched copy of the base line at baseStart.
//
// Grounded on the teacher's pkg/diff3/diff3.go chunk type and buildChunks/
// mergeChunks algorithm: the chunk-alignment approach is kept verbatim, the
// only change is that mergeLines below always passes the base slice
// through to writeConflict (spec §4.5: "Inclusion of the BASE section is
// mandatory"), where the teacher's writeConflict dropped it.
type chunk struct {
	baseStart, baseEnd int
	lines              []string
	changed            bool
}

func buildChunks(base, side []string) []chunk {
	ops := myersDiff(base, side)

	var chunks []chunk
	baseIdx := 0
	i := 0
	for i < len(ops) {
		op := ops[i]
		if op.Type == Equal {
			chunks = append(chunks, chunk{baseStart: baseIdx, baseEnd: baseIdx + 1, lines: []string{op.Line}, changed: false})
			baseIdx++
			i++
			continue
		}

		start := baseIdx
		var lines []string
		for i < len(ops) && ops[i].Type != Equal {
			if ops[i].Type == Delete {
				baseIdx++
			} else {
				lines = append(lines, ops[i].Line)
			}
			i++
		}
		chunks = append(chunks, chunk{baseStart: start, baseEnd: baseIdx, lines: lines, changed: true})
	}
	return chunks
}

// mergeLines merges base/ours/theirs, already split into lines, and returns
// the merged line-level result. The base section is always present in any
// written conflict marker block.
func mergeLines(baseLines, oursLines, theirsLines []string) LineResult {
	oursChunks := buildChunks(baseLines, oursLines)
	theirsChunks := buildChunks(baseLines, theirsLines)

	var buf bytes.Buffer
	var hunks []Hunk
	hasConflict := false

	oi, ti := 0, 0
	for oi < len(oursChunks) && ti < len(theirsChunks) {
		oc := oursChunks[oi]
		tc := theirsChunks[ti]

		if oc.baseStart == tc.baseStart && oc.baseEnd == tc.baseEnd {
			switch {
			case !oc.changed && !tc.changed:
				writeChunkLines(&buf, oc.lines)
				hunks = append(hunks, makeCleanHunk(baseLines[oc.baseStart:oc.baseEnd], oc.lines))
			case oc.changed && !tc.changed:
				writeChunkLines(&buf, oc.lines)
				hunks = append(hunks, makeCleanHunk(baseLines[oc.baseStart:oc.baseEnd], oc.lines))
			case !oc.changed && tc.changed:
				writeChunkLines(&buf, tc.lines)
				hunks = append(hunks, makeCleanHunk(baseLines[tc.baseStart:tc.baseEnd], tc.lines))
			case linesEqual(oc.lines, tc.lines):
				writeChunkLines(&buf, oc.lines)
				hunks = append(hunks, makeCleanHunk(baseLines[oc.baseStart:oc.baseEnd], oc.lines))
			default:
				base := baseLines[oc.baseStart:oc.baseEnd]
				writeConflict(&buf, base, oc.lines, tc.lines)
				hunks = append(hunks, makeConflictHunk(base, oc.lines, tc.lines))
				hasConflict = true
			}
			oi++
			ti++
			continue
		}

		// Misaligned chunk boundaries: widen to the smallest base range that
		// covers both sides' current chunk and reconcile as one region.
		regionStartIdx := min(oc.baseStart, tc.baseStart)
		regionEndIdx := max(oc.baseEnd, tc.baseEnd)

		oEnd, oLines, oChanged := assembleRegion(oursChunks, oi, regionStartIdx, regionEndIdx)
		tEnd, tLines, tChanged := assembleRegion(theirsChunks, ti, regionStartIdx, regionEndIdx)

		base := baseLines[regionStartIdx:regionEndIdx]
		switch {
		case !oChanged && !tChanged:
			writeChunkLines(&buf, base)
			hunks = append(hunks, makeCleanHunk(base, base))
		case oChanged && !tChanged:
			writeChunkLines(&buf, oLines)
			hunks = append(hunks, makeCleanHunk(base, oLines))
		case !oChanged && tChanged:
			writeChunkLines(&buf, tLines)
			hunks = append(hunks, makeCleanHunk(base, tLines))
		case linesEqual(oLines, tLines):
			writeChunkLines(&buf, oLines)
			hunks = append(hunks, makeCleanHunk(base, oLines))
		default:
			writeConflict(&buf, base, oLines, tLines)
			hunks = append(hunks, makeConflictHunk(base, oLines, tLines))
			hasConflict = true
		}

		oi = oEnd
		ti = tEnd
	}

	for oi < len(oursChunks) {
		writeChunkLines(&buf, oursChunks[oi].lines)
		hunks = append(hunks, makeCleanHunk(baseLines[oursChunks[oi].baseStart:oursChunks[oi].baseEnd], oursChunks[oi].lines))
		oi++
	}
	for ti < len(theirsChunks) {
		writeChunkLines(&buf, theirsChunks[ti].lines)
		hunks = append(hunks, makeCleanHunk(baseLines[theirsChunks[ti].baseStart:theirsChunks[ti].baseEnd], theirsChunks[ti].lines))
		ti++
	}

	return LineResult{Merged: buf.Bytes(), HasConflict: hasConflict, Hunks: hunks}
}

// assembleRegion gathers every chunk starting at idx whose base range falls
// within [regionStart,regionEnd), returning the index just past the last
// chunk consumed, the concatenated side lines, and whether any consumed
// chunk was a changed chunk.
func assembleRegion(chunks []chunk, idx, regionStart, regionEnd int) (nextIdx int, lines []string, changed bool) {
	i := idx
	for i < len(chunks) && chunks[i].baseStart < regionEnd {
		c := chunks[i]
		if c.baseStart < regionStart {
			break
		}
		lines = append(lines, c.lines...)
		if c.changed {
			changed = true
		}
		i++
	}
	if i == idx {
		// Nothing consumed (can happen at a boundary); take the one chunk.
		lines = append(lines, chunks[idx].lines...)
		changed = chunks[idx].changed
		i = idx + 1
	}
	return i, lines, changed
}

func writeChunkLines(buf *bytes.Buffer, lines []string) {
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
}

// writeConflict writes the mandatory three-section marker block spec §4.5
// requires. The teacher's pkg/diff3/diff3.go writeConflict omits the base
// section entirely; that omission is exactly what spec §4.5 forbids
// ("Inclusion of the BASE section is mandatory"), so this keeps the
// teacher's marker style but always emits it.
func writeConflict(buf *bytes.Buffer, baseLines, oursLines, theirsLines []string) {
	buf.WriteString("<<<<<<< HEAD\n")
	writeChunkLines(buf, oursLines)
	buf.WriteString("||||||| BASE\n")
	writeChunkLines(buf, baseLines)
	buf.WriteString("=======\n")
	writeChunkLines(buf, theirsLines)
	buf.WriteString(">>>>>>> MERGE_HEAD\n")
}

func makeCleanHunk(base, merged []string) Hunk {
	return Hunk{Type: HunkClean, Base: []byte(joinLines(base)), Merged: []byte(joinLines(merged))}
}

func makeConflictHunk(base, ours, theirs []string) Hunk {
	var buf bytes.Buffer
	writeConflict(&buf, base, ours, theirs)
	return Hunk{
		Type:   HunkConflict,
		Base:   []byte(joinLines(base)),
		Ours:   []byte(joinLines(ours)),
		Theirs: []byte(joinLines(theirs)),
		Merged: buf.Bytes(),
	}
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func linesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	s := string(data)
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// MergeText performs a textual three-way merge of base/ours/theirs line by
// line, writing conflict markers with a mandatory BASE section wherever the
// two sides disagree on the same base range (spec §4.5 step 7).
func MergeText(base, ours, theirs []byte) LineResult {
	return mergeLines(splitLines(base), splitLines(ours), splitLines(theirs))
}
