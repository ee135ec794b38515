// This file is part of uarchsim.
//
// uarchsim is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// uarchsim is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with uarchsim.  If not, see <https://www.gnu.org/licenses/>.

// Package trigger implements the trigger expression engine: a tokenizer, a
// hand-written recursive-descent parser over the §4.5 grammar, the leaf
// trigger kinds, and the Trigger runtime itself (ALL/ANY policy, waiting
// counter, reschedule, and the tagged cross-reference registry).
//
// The tokenizer and parser are grounded directly on the teacher's
// debugger/terminal/commandline/tokeniser.go Tokens walker
// (Get/Peek/Unget/Reset/IsEnd/Remainder) and debugger/terminal/commandline/
// parser.go's hand-written recursive descent, matching spec §9's explicit
// preference for a hand-rolled parser over a parser-combinator library.
package trigger

import (
	"strings"
	"unicode"

	"github.com/jetsetilly/uarchsim/sim/simerrors"
)

// Tokens walks a tokenized expression string one token at a time, with a
// one-token lookback (Unget) and full reset, exactly as the teacher's
// commandline tokeniser does for terminal input.
type Tokens struct {
	tok []string
	idx int
}

// Tokenize splits expr into the token stream the parser consumes: dotted
// identifiers and numbers (with an optional trailing unit suffix) as single
// tokens, and each of ( ) && || == != >= <= > < as its own token.
func Tokenize(expr string) (*Tokens, error) {
	var toks []string
	r := []rune(expr)
	n := len(r)

	isIdentRune := func(c rune) bool {
		return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '.' || c == '_'
	}

	for i := 0; i < n; {
		c := r[i]
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '(' || c == ')':
			toks = append(toks, string(c))
			i++
		case c == '&' && i+1 < n && r[i+1] == '&':
			toks = append(toks, "&&")
			i += 2
		case c == '|' && i+1 < n && r[i+1] == '|':
			toks = append(toks, "||")
			i += 2
		case strings.ContainsRune("=!><", c):
			if i+1 < n && r[i+1] == '=' {
				toks = append(toks, string(r[i:i+2]))
				i += 2
			} else if c == '>' || c == '<' {
				toks = append(toks, string(c))
				i++
			} else {
				return nil, simerrors.Errorf(simerrors.ParseError, "unexpected character %q at position %d", c, i)
			}
		case isIdentRune(c):
			start := i
			for i < n && isIdentRune(r[i]) {
				i++
			}
			toks = append(toks, string(r[start:i]))
		default:
			return nil, simerrors.Errorf(simerrors.ParseError, "unexpected character %q at position %d", c, i)
		}
	}
	return &Tokens{tok: toks}, nil
}

// Get returns the next token and advances the cursor, or ("", false) at the
// end of the stream.
func (t *Tokens) Get() (string, bool) {
	if t.idx >= len(t.tok) {
		return "", false
	}
	tok := t.tok[t.idx]
	t.idx++
	return tok, true
}

// Peek returns the next token without advancing, or ("", false) at the end.
func (t *Tokens) Peek() (string, bool) {
	if t.idx >= len(t.tok) {
		return "", false
	}
	return t.tok[t.idx], true
}

// Unget steps the cursor back by one, so the last token returned by Get will
// be returned again.
func (t *Tokens) Unget() {
	if t.idx > 0 {
		t.idx--
	}
}

// Reset moves the cursor back to the start of the stream.
func (t *Tokens) Reset() { t.idx = 0 }

// IsEnd reports whether every token has been consumed.
func (t *Tokens) IsEnd() bool { return t.idx >= len(t.tok) }

// Remainder returns every not-yet-consumed token, space-joined, for error
// messages.
func (t *Tokens) Remainder() string {
	return strings.Join(t.tok[t.idx:], " ")
}
