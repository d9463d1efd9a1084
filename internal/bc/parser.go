package bc

import (
	"bufio"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/smoynes/rtsdemo/internal/log"
)

// Parser reads source text one line at a time and produces a Program: a
// label table and a flat instruction list, the way internal/asm's Parser
// accumulates a SymbolTable and SyntaxTable across one or more Parse calls.
//
//	p := NewParser(log.DefaultLogger())
//	p.Parse(src)
//	prog, err := p.Program()
type Parser struct {
	symbols SymbolTable
	instr   []SourceInfo
	errs    []error

	log *log.Logger
}

func NewParser(logger *log.Logger) *Parser {
	return &Parser{
		symbols: make(SymbolTable),
		log:     logger,
	}
}

var (
	space       = `[\pZ\p{Cc}]*`
	ident       = `(\pL[\pL\p{Nd}_]*)`
	commentLine = regexp.MustCompile(`;.*$`)
	labelPrefix = regexp.MustCompile(`^` + space + ident + space + `:`)
	instrLine   = regexp.MustCompile(`^` + space + ident + space + `(.*)$`)
)

// Parse reads every line of in, appending instructions and labels to the
// parser's accumulated program. It does not close in.
func (p *Parser) Parse(in io.Reader) {
	lines := bufio.NewScanner(in)
	pos := 0

	for lines.Scan() {
		pos++
		p.parseLine(pos, lines.Text())
	}
}

func (p *Parser) parseLine(pos int, line string) {
	remain := commentLine.ReplaceAllString(line, "")

	if matched := labelPrefix.FindStringSubmatchIndex(remain); len(matched) > 0 {
		label := strings.ToUpper(remain[matched[2]:matched[3]])
		if _, dup := p.symbols[label]; dup {
			p.errs = append(p.errs, &SyntaxError{Pos: pos, Line: line, Err: errors.New("duplicate label")})
			return
		}

		p.symbols.Add(label, len(p.instr))
		remain = remain[matched[1]:]
	}

	remain = strings.TrimSpace(remain)
	if remain == "" {
		return
	}

	matched := instrLine.FindStringSubmatch(remain)
	if matched == nil {
		p.errs = append(p.errs, &SyntaxError{Pos: pos, Line: line, Err: errors.New("expected instruction")})
		return
	}

	operator := strings.ToUpper(matched[1])
	operands := splitOperands(matched[2])

	newInstr, ok := instructionTable[operator]
	if !ok {
		p.errs = append(p.errs, &SyntaxError{Pos: pos, Line: line, Err: errors.New("unknown opcode " + operator)})
		return
	}

	inst := newInstr()
	if err := inst.Parse(operator, operands); err != nil {
		p.errs = append(p.errs, &SyntaxError{Pos: pos, Line: line, Err: err})
		return
	}

	p.instr = append(p.instr, SourceInfo{Pos: pos, Line: line, Instruction: inst})
}

// splitOperands splits a comma-separated operand list, trimming whitespace
// and the surrounding quotes off string literals.
func splitOperands(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if len(part) >= 2 && part[0] == '"' && part[len(part)-1] == '"' {
			part = part[1 : len(part)-1]
		}

		parts[i] = part
	}

	return parts
}

// Err returns every syntax error accumulated across all Parse calls,
// joined, or nil if there were none.
func (p *Parser) Err() error {
	return errors.Join(p.errs...)
}

// Program returns the parsed label table and instruction list. It returns
// an error if any syntax errors were collected.
func (p *Parser) Program() (*Program, error) {
	if err := p.Err(); err != nil {
		return nil, err
	}

	return &Program{Instr: p.instr, Symbols: p.symbols}, nil
}
