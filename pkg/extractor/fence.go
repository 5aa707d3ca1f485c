package extractor

import "strings"

// minFence is the shortest backtick run that opens or closes a block.
const minFence = 3

// fencedBlock is a closed Markdown code fence.
type fencedBlock struct {
	tag  string
	body string
}

// scanFences returns every closed fenced block in s in document order.
//
// An opener is a maximal run of at least minFence backticks followed by
// optional blanks and an optional info word. The block closes at the first
// later run that is at least as long as the opener, so shorter runs inside
// the body are content. Openers that never close are skipped.
func scanFences(s string) []fencedBlock {
	var blocks []fencedBlock

	i := 0
	for i < len(s) {
		open := strings.IndexByte(s[i:], '`')
		if open < 0 {
			break
		}
		open += i
		n := backtickRun(s, open)
		if n < minFence {
			i = open + n
			continue
		}

		b, end, ok := blockAt(s, open, n)
		if !ok {
			i = open + n
			continue
		}
		blocks = append(blocks, b)
		i = end
	}

	return blocks
}

// blockAt reads the block opened by the n-backtick run at open and returns
// it with the offset just past its closer.
func blockAt(s string, open, n int) (fencedBlock, int, bool) {
	bodyStart := open + n
	tagStart := skipBlanks(s, bodyStart)
	tagEnd := tagStart
	for tagEnd < len(s) && isInfoByte(s[tagEnd]) {
		tagEnd++
	}
	tag := s[tagStart:tagEnd]
	if tag != "" {
		bodyStart = tagEnd
	}

	closeAt, closeLen := findCloser(s, bodyStart, n)
	if closeAt < 0 {
		return fencedBlock{}, 0, false
	}
	return fencedBlock{tag: tag, body: s[bodyStart:closeAt]}, closeAt + closeLen, true
}

// htmlOpenerBlocks returns the closed blocks that start at every html
// tagged opener in s, including openers that scanFences consumed as the
// closer of an earlier run.
func htmlOpenerBlocks(s string) []fencedBlock {
	var blocks []fencedBlock

	i := 0
	for i < len(s) {
		open := strings.IndexByte(s[i:], '`')
		if open < 0 {
			break
		}
		open += i
		n := backtickRun(s, open)
		i = open + n
		if n < minFence {
			continue
		}
		if b, _, ok := blockAt(s, open, n); ok && isHTMLTag(b.tag) {
			blocks = append(blocks, b)
		}
	}

	return blocks
}

// findCloser returns the offset and length of the first backtick run at or
// after from whose length is at least n, or -1.
func findCloser(s string, from, n int) (int, int) {
	i := from
	for i < len(s) {
		j := strings.IndexByte(s[i:], '`')
		if j < 0 {
			return -1, 0
		}
		j += i
		run := backtickRun(s, j)
		if run >= n {
			return j, run
		}
		i = j + run
	}
	return -1, 0
}

func backtickRun(s string, at int) int {
	n := 0
	for at+n < len(s) && s[at+n] == '`' {
		n++
	}
	return n
}

func skipBlanks(s string, at int) int {
	for at < len(s) && (s[at] == ' ' || s[at] == '\t') {
		at++
	}
	return at
}

func isInfoByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_', c == '+', c == '-', c == '.':
		return true
	}
	return false
}

func isHTMLTag(tag string) bool {
	return strings.EqualFold(tag, "html")
}

// fencedHTML applies the fenced block rule: the first block tagged html
// wins, otherwise the first untagged block whose body looks like an HTML
// document. Blocks tagged with another language never match on content.
//
// A stray backtick run in prose can pair with a real html opener as its
// closer. When neither pass selects a block, the html openers are read
// again on their own so that block is still found.
func fencedHTML(s string) (string, bool) {
	blocks := scanFences(s)

	if body, ok := firstHTMLTagged(blocks); ok {
		return body, true
	}

	for _, b := range blocks {
		if b.tag != "" {
			continue
		}
		body := strings.TrimSpace(b.body)
		if body != "" && htmlMarker.MatchString(body) {
			return body, true
		}
	}

	return firstHTMLTagged(htmlOpenerBlocks(s))
}

func firstHTMLTagged(blocks []fencedBlock) (string, bool) {
	for _, b := range blocks {
		if !isHTMLTag(b.tag) {
			continue
		}
		if body := strings.TrimSpace(b.body); body != "" {
			return body, true
		}
	}
	return "", false
}
