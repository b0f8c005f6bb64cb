// Package captcha solves Moltbook "lobster challenge" captchas: obfuscated
// natural-language arithmetic word problems such as "ThIrTy TwO + FoUrTeEn"
// or "What is the product of six and seven? Reply with just the number."
//
// The pipeline is normalize → tokenize → assemble compound numbers →
// evaluate left to right. Integer division truncates toward zero.
package captcha

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/kitfox/den/internal/apperr"
)

// Op is a binary arithmetic operation.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	}
	return "?"
}

// Expression is a parsed challenge: operands joined by left-associative ops.
type Expression struct {
	Operands []int64
	Ops      []Op
}

func (e *Expression) String() string {
	if len(e.Operands) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d", e.Operands[0])
	for i, op := range e.Ops {
		fmt.Fprintf(&b, " %s %d", op, e.Operands[i+1])
	}
	return b.String()
}

// Eval computes the expression left to right, with no operator precedence.
// The challenges are single binary operations; chains evaluate sequentially.
func (e *Expression) Eval() (int64, error) {
	if len(e.Operands) == 0 {
		return 0, apperr.ErrNoOperands
	}
	if len(e.Ops) == 0 {
		return 0, apperr.ErrNoOperator
	}
	if len(e.Ops) != len(e.Operands)-1 {
		return 0, apperr.ErrNoOperands
	}
	acc := e.Operands[0]
	for i, op := range e.Ops {
		rhs := e.Operands[i+1]
		switch op {
		case OpAdd:
			acc += rhs
		case OpSub:
			acc -= rhs
		case OpMul:
			acc *= rhs
		case OpDiv:
			if rhs == 0 {
				return 0, apperr.ErrDivideByZero
			}
			acc /= rhs
		}
	}
	return acc, nil
}

// Solve parses and evaluates a challenge, returning the numeric answer.
func Solve(text string) (int64, error) {
	expr, err := Parse(text)
	if err != nil {
		return 0, err
	}
	return expr.Eval()
}

// Parse turns challenge text into an Expression.
func Parse(text string) (*Expression, error) {
	tokens := tokenize(normalize(text))

	expr := &Expression{}

	// In-flight compound number state.
	var current, value int64
	inFlight := false
	lastMagnitude := false // previous number token was hundred/thousand

	flush := func() {
		if inFlight {
			expr.Operands = append(expr.Operands, value+current)
			current, value = 0, 0
			inFlight = false
			lastMagnitude = false
		}
	}

	// "four subtracted from ten" and "take four from ten" mean 10-4: the
	// word "from" after a subtraction swaps that op's operands.
	swapSub := false

	for _, tok := range tokens {
		if op, ok := opSymbols[tok]; ok {
			flush()
			expr.Ops = append(expr.Ops, op)
			continue
		}
		if op, ok := opWords[tok]; ok {
			flush()
			// Prefix forms repeat the operator vocabulary ("the sum of",
			// "add") before any operand is seen twice; only record one op
			// between operands.
			if len(expr.Ops) == len(expr.Operands) && len(expr.Operands) > 0 {
				continue
			}
			if len(expr.Ops) > 0 && len(expr.Operands) == 0 {
				continue
			}
			expr.Ops = append(expr.Ops, op)
			continue
		}

		if v, ok := wordValue(tok); ok {
			if mag, isMag := magnitudeWords[tok]; isMag {
				switch mag {
				case 100:
					if current == 0 {
						current = 100
					} else {
						current *= 100
					}
				case 1000:
					if current == 0 {
						current = 1
					}
					value += current * 1000
					current = 0
				}
				inFlight = true
				lastMagnitude = true
				continue
			}
			if inFlight && !compoundable(current, v) {
				// "six seven" is two numbers, not one.
				flush()
			}
			current += v
			inFlight = true
			lastMagnitude = false
			continue
		}

		if isDigits(tok) {
			flush()
			n, err := strconv.ParseInt(tok, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", apperr.ErrUnknownToken, tok)
			}
			expr.Operands = append(expr.Operands, n)
			continue
		}

		switch tok {
		case "and":
			// Inside a compound only directly after hundred/thousand
			// ("four hundred and seven"); elsewhere it separates operands
			// ("the product of six and seven").
			if !lastMagnitude {
				flush()
			}
		case "from":
			if len(expr.Ops) > 0 && expr.Ops[len(expr.Ops)-1] == OpSub {
				swapSub = true
			}
			flush()
		default:
			if hasDigit(tok) {
				return nil, fmt.Errorf("%w: %q", apperr.ErrUnknownToken, tok)
			}
			// Plain words are story filler; the lobster narrates.
			flush()
		}
	}
	flush()

	if len(expr.Operands) == 0 {
		return nil, apperr.ErrNoOperands
	}
	if len(expr.Ops) == 0 {
		return nil, apperr.ErrNoOperator
	}
	if len(expr.Ops) != len(expr.Operands)-1 {
		return nil, apperr.ErrNoOperands
	}

	if swapSub && len(expr.Operands) == 2 {
		expr.Operands[0], expr.Operands[1] = expr.Operands[1], expr.Operands[0]
	}

	return expr, nil
}

// compoundable reports whether v can extend the in-flight value as part of
// one compound number ("thirty" + "two", "four hundred" + "seven").
func compoundable(current, v int64) bool {
	if current == 0 {
		return true
	}
	if current >= 100 {
		return v < 100
	}
	// tens word followed by a unit
	return current%10 == 0 && current >= 20 && v < 10
}

func wordValue(tok string) (int64, bool) {
	if v, ok := unitWords[tok]; ok {
		return v, true
	}
	if v, ok := teenWords[tok]; ok {
		return v, true
	}
	if v, ok := tenWords[tok]; ok {
		return v, true
	}
	if v, ok := altWords[tok]; ok {
		return v, true
	}
	if v, ok := magnitudeWords[tok]; ok {
		return v, true
	}
	return 0, false
}

// normalize lowercases the text, strips obfuscation (zero-width runes,
// combining marks, punctuation noise), splits hyphenated compounds, and
// spaces out operator symbols so they tokenize on their own.
func normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	runes := []rune(strings.ToLower(text))
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '+' || r == '*' || r == '/' || r == '×' || r == '÷' || r == '−':
			b.WriteRune(' ')
			b.WriteRune(r)
			b.WriteRune(' ')
		case r == '-':
			// Hyphen joining letters is a compound ("thirty-two");
			// anything else is subtraction.
			if i > 0 && i < len(runes)-1 && unicode.IsLetter(runes[i-1]) && unicode.IsLetter(runes[i+1]) {
				b.WriteRune(' ')
			} else {
				b.WriteString(" - ")
			}
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			// Punctuation, zero-width junk, emoji: separator.
			b.WriteRune(' ')
		}
	}
	return b.String()
}

func tokenize(s string) []string {
	return strings.Fields(s)
}

func isDigits(tok string) bool {
	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(tok) > 0
}

func hasDigit(tok string) bool {
	for _, r := range tok {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
