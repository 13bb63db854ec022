package assistant

import "strings"

// parseInput splits a line into a lower-cased command and its arguments.
func parseInput(line string) (string, []string) {
	tokens := tokenize(line)
	if len(tokens) == 0 {
		return "", nil
	}
	return strings.ToLower(tokens[0]), tokens[1:]
}

// tokenize splits on blanks while honouring single and double quotes.
// A backslash escapes a quote or another backslash; elsewhere it is literal
// so that Windows paths survive.
func tokenize(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var (
		out    []string
		buf    strings.Builder
		inQ    bool
		qChar  byte
		quoted bool
	)
	flush := func() {
		if buf.Len() > 0 || quoted {
			out = append(out, buf.String())
			buf.Reset()
		}
		quoted = false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '\\' && i+1 < len(s) {
			if next := s[i+1]; next == '"' || next == '\'' || next == '\\' {
				buf.WriteByte(next)
				i++
				continue
			}
		}
		if inQ {
			if ch == qChar {
				inQ = false
				continue
			}
			buf.WriteByte(ch)
			continue
		}
		switch ch {
		case '"', '\'':
			inQ = true
			quoted = true
			qChar = ch
		case ' ', '\t', '\n', '\r':
			flush()
		default:
			buf.WriteByte(ch)
		}
	}
	flush()
	return out
}
