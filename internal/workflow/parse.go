package workflow

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Step is one parsed command line before it is bound to a Command
// implementation.
type Step struct {
	Name   string
	Params map[string]string
	Line   int
}

// ParseScript reads a workflow script: one command per line in the form
// CommandName(Param1="value1", Param2="value2"), blank lines and #-comments
// ignored.
func ParseScript(r io.Reader) ([]Step, error) {
	var steps []Step
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		step, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		step.Line = lineNo
		steps = append(steps, step)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return steps, nil
}

// ParseLine parses a single command string. Values are always quoted, with
// \" and \\ escapes; duplicate parameter names are an error.
func ParseLine(line string) (Step, error) {
	open := strings.IndexByte(line, '(')
	if open <= 0 {
		return Step{}, fmt.Errorf("expected CommandName(...), got %q", line)
	}
	name := strings.TrimSpace(line[:open])
	if !validCommandName(name) {
		return Step{}, fmt.Errorf("invalid command name %q", name)
	}
	if !strings.HasSuffix(line, ")") {
		return Step{}, fmt.Errorf("missing closing parenthesis in %q", line)
	}

	body := line[open+1 : len(line)-1]
	params, err := parseParams(body)
	if err != nil {
		return Step{}, fmt.Errorf("command %s: %w", name, err)
	}
	return Step{Name: name, Params: params}, nil
}

func validCommandName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		letter := r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z'
		digit := r >= '0' && r <= '9'
		if i == 0 && !letter {
			return false
		}
		if !letter && !digit {
			return false
		}
	}
	return true
}

func parseParams(body string) (map[string]string, error) {
	params := make(map[string]string)
	i := 0
	skipSpace := func() {
		for i < len(body) && (body[i] == ' ' || body[i] == '\t') {
			i++
		}
	}

	skipSpace()
	for i < len(body) {
		// Parameter name up to '='.
		start := i
		for i < len(body) && body[i] != '=' {
			i++
		}
		if i == len(body) {
			return nil, fmt.Errorf("expected = after parameter name near %q", body[start:])
		}
		name := strings.TrimSpace(body[start:i])
		if name == "" {
			return nil, fmt.Errorf("empty parameter name")
		}
		if _, dup := params[name]; dup {
			return nil, fmt.Errorf("duplicate parameter %q", name)
		}
		i++ // consume '='
		skipSpace()

		if i >= len(body) || body[i] != '"' {
			return nil, fmt.Errorf("parameter %q: value must be quoted", name)
		}
		i++ // consume opening quote

		var sb strings.Builder
		closed := false
		for i < len(body) {
			c := body[i]
			if c == '\\' && i+1 < len(body) && (body[i+1] == '"' || body[i+1] == '\\') {
				sb.WriteByte(body[i+1])
				i += 2
				continue
			}
			if c == '"' {
				closed = true
				i++
				break
			}
			sb.WriteByte(c)
			i++
		}
		if !closed {
			return nil, fmt.Errorf("parameter %q: unterminated value", name)
		}
		params[name] = sb.String()

		skipSpace()
		if i < len(body) {
			if body[i] != ',' {
				return nil, fmt.Errorf("expected , between parameters near %q", body[i:])
			}
			i++
			skipSpace()
			if i == len(body) {
				return nil, fmt.Errorf("trailing comma")
			}
		}
	}
	return params, nil
}

// RenderStep writes a step back to its canonical string form. Parameters are
// emitted in sorted name order so rendering is deterministic; render then
// parse yields the same parameter map.
func RenderStep(s Step) string {
	names := make([]string, 0, len(s.Params))
	for name := range s.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString(s.Name)
	sb.WriteByte('(')
	for i, name := range names {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(name)
		sb.WriteString(`="`)
		sb.WriteString(escapeValue(s.Params[name]))
		sb.WriteByte('"')
	}
	sb.WriteByte(')')
	return sb.String()
}

func escapeValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `"`, `\"`)
}
