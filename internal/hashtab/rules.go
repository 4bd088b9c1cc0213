// Hashtab-derivation rules: a small line-oriented sub-DSL that derives new
// hashtab entries from existing ones, grounded on the original hashrules.rs.
package hashtab

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/asivery/qmldiff/internal/hash"
)

type matchCheck struct {
	kind  byte // '-' any, 'H' hash-equals, 'E' string-equals
	hash  uint64
	value string
}

func (m matchCheck) matches(tab *Table, value string) bool {
	switch m.kind {
	case '-':
		return true
	case 'H':
		return hash.String(value) == m.hash
	case 'E':
		return value == m.value
	default:
		return false
	}
}

type matchCondition struct {
	regex  *regexp.Regexp
	checks []matchCheck
}

type rule struct {
	alwaysEmit bool
	cond       *matchCondition
	values     []string
}

// Rules is a compiled set of hashtab-derivation rules.
type Rules struct {
	rules []rule
}

// CompileRules parses the rule-file grammar: blocks separated by blank
// lines, each starting with 'A' (always emit) or 'M<regexp>' (match,
// followed by one condition line for the whole match and then one per
// capture group: '-' any, 'H<u64>'
// hash-equality, 'E<literal>' string-equality), then emission lines
// terminated by a bare '#'.
func CompileRules(contents string) (*Rules, error) {
	lines := strings.Split(contents, "\n")
	idx := 0
	next := func() (string, bool) {
		if idx >= len(lines) {
			return "", false
		}
		l := lines[idx]
		idx++
		return l, true
	}

	var out Rules
	for {
		instr, ok := next()
		if !ok {
			break
		}
		if instr == "" {
			continue
		}
		opcode := instr[0]
		rest := instr[1:]
		var r rule
		switch opcode {
		case 'A':
			r.alwaysEmit = true
		case 'M':
			re, err := regexp.Compile(rest)
			if err != nil {
				return nil, fmt.Errorf("hashrules: bad regexp %q: %w", rest, err)
			}
			cond := &matchCondition{regex: re}
			for i := 0; i < re.NumSubexp()+1; i++ {
				line, ok := next()
				if !ok || line == "" {
					return nil, fmt.Errorf("hashrules: missing match condition line")
				}
				check, err := parseMatchCheck(line)
				if err != nil {
					return nil, err
				}
				cond.checks = append(cond.checks, check)
			}
			r.cond = cond
		default:
			return nil, fmt.Errorf("hashrules: unknown condition opcode %q", opcode)
		}
		for {
			line, ok := next()
			if !ok || line == "#" {
				break
			}
			r.values = append(r.values, line)
		}
		out.rules = append(out.rules, r)
	}
	return &out, nil
}

func parseMatchCheck(line string) (matchCheck, error) {
	opcode := line[0]
	rest := line[1:]
	switch opcode {
	case '-':
		return matchCheck{kind: '-'}, nil
	case 'H':
		n, err := strconv.ParseUint(rest, 10, 64)
		if err != nil {
			return matchCheck{}, fmt.Errorf("hashrules: bad hash literal %q: %w", rest, err)
		}
		return matchCheck{kind: 'H', hash: n}, nil
	case 'E':
		return matchCheck{kind: 'E', value: rest}, nil
	default:
		return matchCheck{}, fmt.Errorf("hashrules: unknown match-condition opcode %q", opcode)
	}
}

var hashRefPattern = regexp.MustCompile(`\[\[([0-9]*)\]\]`)
var captureRefPattern = regexp.MustCompile(`\$([0-9]*)`)

// Process applies every rule against tab, inserting derived entries. Always
// rules emit their literal values (after [[hash]] substitution) directly
// into tab; match rules scan every current entry, and for each that matches
// every capture's condition, emit their values (after $N substitution using
// the match, then [[hash]] substitution) into a side table that is merged
// into tab once that rule has scanned every entry, so a match rule sees the
// table as it was before the rule ran and later rules see its output.
func (rs *Rules) Process(tab *Table, log func(string)) {
	for _, r := range rs.rules {
		if r.alwaysEmit {
			for _, v := range r.values {
				emit(tab, resolveHashRefs(tab, v, log), log)
			}
			continue
		}
		side := New()
		tab.Each(func(_ uint64, value string) {
			m := r.cond.regex.FindStringSubmatchIndex(value)
			if m == nil {
				return
			}
			groups := r.cond.regex.FindStringSubmatch(value)
			for i, check := range r.cond.checks {
				if i >= len(groups) || !check.matches(tab, groups[i]) {
					return
				}
			}
			for _, v := range r.values {
				substituted := captureRefPattern.ReplaceAllStringFunc(v, func(tok string) string {
					idxStr := captureRefPattern.FindStringSubmatch(tok)[1]
					i, err := strconv.Atoi(idxStr)
					if err != nil || i >= len(groups) {
						if log != nil {
							log(fmt.Sprintf("no capture %s present in parent!", idxStr))
						}
						return "INVALID!"
					}
					return groups[i]
				})
				emit(side, resolveHashRefs(tab, substituted, log), log)
			}
		})
		tab.Extend(side)
	}
}

func resolveHashRefs(tab *Table, v string, log func(string)) string {
	return hashRefPattern.ReplaceAllStringFunc(v, func(tok string) string {
		digits := hashRefPattern.FindStringSubmatch(tok)[1]
		n, err := strconv.ParseUint(digits, 10, 64)
		if err != nil {
			if log != nil {
				log(fmt.Sprintf("not a valid hash %s!", digits))
			}
			return "INVALID!"
		}
		if original, ok := tab.Get(n); ok {
			return original
		}
		if log != nil {
			log(fmt.Sprintf("no hash %d present in hashtab!", n))
		}
		return "INVALID!"
	})
}

func emit(tab *Table, value string, log func(string)) {
	h := hash.String(value)
	tab.Insert(h, value)
	if log != nil {
		log(fmt.Sprintf("[qmldiff] [Hashtab Rule Processor]: Hashed derived %q", value))
	}
}

// CompileRulesFromScanner is a convenience wrapper for reading a rules file
// from an io.Reader-like *bufio.Scanner source.
func CompileRulesFromScanner(sc *bufio.Scanner) (*Rules, error) {
	var sb strings.Builder
	for sc.Scan() {
		sb.WriteString(sc.Text())
		sb.WriteByte('\n')
	}
	return CompileRules(sb.String())
}
