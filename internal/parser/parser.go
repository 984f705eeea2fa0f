package parser

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/conorfennell/flashreview/internal/domain"
)

const (
	questionPrefix = "Q:"
	answerPrefix   = "A:"
	contextPrefix  = "C:"
	separator      = "---"
)

type field int

const (
	fieldNone field = iota
	fieldQuestion
	fieldAnswer
	fieldContext
)

// ParseFile reads a markdown file and extracts all cards.
func ParseFile(path string) ([]domain.Pair, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse extracts cards from r. A "Q:" line starts a card, "A:" and "C:" start
// its answer and context, and "---" ends it. Other lines continue the field
// being read. Cards without a question are dropped.
func Parse(r io.Reader) ([]domain.Pair, error) {
	p := &cardParser{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.line(scanner.Text())
	}
	p.finishCard()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return p.cards, nil
}

type cardParser struct {
	cards   []domain.Pair
	current domain.Pair
	reading field
	block   []string
}

func (p *cardParser) line(line string) {
	if line == separator {
		p.finishCard()
		return
	}

	f, rest, ok := splitPrefix(line)
	if !ok {
		if p.reading != fieldNone {
			p.block = append(p.block, line)
		}
		return
	}

	if f == fieldQuestion && p.reading != fieldNone {
		p.finishCard()
	} else {
		p.flush()
	}
	p.reading = f
	p.block = append(p.block, rest)
}

// flush stores the lines read so far into the field being read.
func (p *cardParser) flush() {
	if len(p.block) == 0 {
		return
	}
	content := strings.Join(p.block, "\n")
	switch p.reading {
	case fieldQuestion:
		p.current.Question = content
	case fieldAnswer:
		p.current.Answer = content
	case fieldContext:
		p.current.Context = content
	}
	p.block = nil
}

func (p *cardParser) finishCard() {
	p.flush()
	if p.current.Question != "" {
		p.current.Question = strings.TrimRight(p.current.Question, "\n")
		p.current.Answer = strings.TrimRight(p.current.Answer, "\n")
		p.current.Context = strings.TrimRight(p.current.Context, "\n")
		p.cards = append(p.cards, p.current)
	}
	p.current = domain.Pair{}
	p.reading = fieldNone
}

func splitPrefix(line string) (field, string, bool) {
	for _, c := range []struct {
		prefix string
		f      field
	}{
		{questionPrefix, fieldQuestion},
		{answerPrefix, fieldAnswer},
		{contextPrefix, fieldContext},
	} {
		if rest, ok := strings.CutPrefix(line, c.prefix); ok {
			return c.f, strings.TrimPrefix(rest, " "), true
		}
	}
	return fieldNone, "", false
}
