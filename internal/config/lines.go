package config

import "bytes"

// normalizeLines prepares properties file content for the loader. Logical
// lines with an empty key are dropped along with their continuation lines,
// CRLF terminators become LF and a continuation backslash left dangling at
// EOF is removed. It returns the rewritten content and the number of logical
// lines dropped.
func normalizeLines(buf []byte) ([]byte, int) {
	out := make([]byte, 0, len(buf))
	skipped := 0
	skipping := false
	continued := false

	for len(buf) > 0 {
		body, eol, rest := cutLine(buf)
		buf = rest

		comment := false
		if !continued {
			comment = isCommentLine(body)
			skipping = !comment && hasEmptyKey(body)
			if skipping {
				skipped++
			}
		}
		// Comment lines never continue onto the next line.
		continued = !comment && oddTrailingBackslashes(body)

		if skipping {
			continue
		}
		out = append(out, body...)
		if eol {
			out = append(out, '\n')
		}
	}

	if continued && !skipping && len(out) > 0 && out[len(out)-1] == '\\' {
		out = out[:len(out)-1]
	}
	return out, skipped
}

// cutLine splits off the first physical line. eol reports whether a
// terminator (LF, CR or CRLF) followed it.
func cutLine(buf []byte) (body []byte, eol bool, rest []byte) {
	i := bytes.IndexAny(buf, "\r\n")
	if i < 0 {
		return buf, false, nil
	}
	next := i + 1
	if buf[i] == '\r' && next < len(buf) && buf[next] == '\n' {
		next++
	}
	return buf[:i], true, buf[next:]
}

func trimLeadingBlank(line []byte) []byte {
	return bytes.TrimLeft(line, " \t\f")
}

func isCommentLine(line []byte) bool {
	line = trimLeadingBlank(line)
	return len(line) > 0 && (line[0] == '#' || line[0] == '!')
}

func hasEmptyKey(line []byte) bool {
	line = trimLeadingBlank(line)
	return len(line) > 0 && (line[0] == '=' || line[0] == ':')
}

func oddTrailingBackslashes(line []byte) bool {
	n := 0
	for i := len(line) - 1; i >= 0 && line[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}
