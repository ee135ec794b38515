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

package trigger

import (
	"strings"

	"github.com/jetsetilly/uarchsim/sim/notify"
	"github.com/jetsetilly/uarchsim/sim/scheduler"
	"github.com/jetsetilly/uarchsim/sim/simerrors"
)

// Context resolves every kind of leaf reference an expression can name.
type Context struct {
	Notify    *notify.Registry
	Manager   *Manager
	Stats     *StatRegistry
	Counters  *CounterRegistry
	Scheduler *scheduler.Scheduler

	// StatPollInterval is how often, in ticks, a stat_def leaf re-checks its
	// statistic while unsatisfied.
	StatPollInterval uint64
}

// Build parses expr and constructs its Trigger tree, attaching cb as the
// root's callback. The leaf construction order (notification, tag
// reference, statistic-def, counter) matches spec §4.5 step 4.
func Build(expr string, cb Callback, ctx *Context) (*Trigger, error) {
	tokens, err := Tokenize(expr)
	if err != nil {
		return nil, err
	}
	root, err := parseExpr(tokens, ctx)
	if err != nil {
		return nil, err
	}
	if !tokens.IsEnd() {
		return nil, simerrors.Errorf(simerrors.ParseError, "unexpected trailing tokens: %q", tokens.Remainder())
	}
	root.callback = cb
	return root, nil
}

// parseExpr parses a run of atoms joined by "&&" or "||" at a single
// nesting level. Mixing both operators at the same level without
// parentheses to disambiguate is a ParseError, not a precedence
// resolution: "a && b || c" must be written "(a && b) || c" or
// "a && (b || c)".
func parseExpr(tokens *Tokens, ctx *Context) (*Trigger, error) {
	first, err := parseAtom(tokens, ctx)
	if err != nil {
		return nil, err
	}
	children := []*Trigger{first}
	var op string
	for {
		tok, ok := tokens.Peek()
		if !ok || (tok != "&&" && tok != "||") {
			break
		}
		if op == "" {
			op = tok
		} else if tok != op {
			return nil, simerrors.Errorf(simerrors.ParseError, "cannot mix && and || without parentheses near %q", tokens.Remainder())
		}
		tokens.Get()
		next, err := parseAtom(tokens, ctx)
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	if op == "&&" {
		return composeChildren(All, children), nil
	}
	return composeChildren(Any, children), nil
}

func composeChildren(policy Policy, children []*Trigger) *Trigger {
	parent := newTrigger(policy, len(children), nil)
	parent.children = children
	for _, c := range children {
		c.addDependent(parent)
		parent.addRearmer(c.rearm)
	}
	return parent
}

func parseAtom(tokens *Tokens, ctx *Context) (*Trigger, error) {
	tok, ok := tokens.Peek()
	if ok && tok == "(" {
		tokens.Get()
		inner, err := parseExpr(tokens, ctx)
		if err != nil {
			return nil, err
		}
		closeTok, ok := tokens.Get()
		if !ok || closeTok != ")" {
			return nil, simerrors.Errorf(simerrors.ParseError, "expected closing parenthesis near %q", tokens.Remainder())
		}
		return inner, nil
	}
	return parseLeaf(tokens, ctx)
}

func isComparator(tok string) bool {
	switch tok {
	case "==", "!=", ">=", "<=", ">", "<":
		return true
	}
	return false
}

func parseLeaf(tokens *Tokens, ctx *Context) (*Trigger, error) {
	name, ok := tokens.Get()
	if !ok {
		return nil, simerrors.Errorf(simerrors.ParseError, "expected a leaf expression")
	}

	next, hasNext := tokens.Peek()
	if !hasNext || !isComparator(next) {
		// No trailing comparator: must be a tag reference, "tag.suffix".
		idx := strings.LastIndex(name, ".")
		if idx < 0 {
			return nil, simerrors.Errorf(simerrors.ParseError, "%q is not a valid tag reference", name)
		}
		return buildTagLeaf(name[:idx], name[idx+1:], ctx.Manager)
	}

	op, _ := tokens.Get()
	valTok, ok := tokens.Get()
	if !ok {
		return nil, simerrors.Errorf(simerrors.ParseError, "expected a value after %q", op)
	}
	target, err := parseValue(valTok)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.HasPrefix(name, "notif."):
		return buildNotificationLeaf(strings.TrimPrefix(name, "notif."), op, target, ctx.Notify)
	case strings.HasPrefix(name, "stat_def."):
		return buildStatDefLeaf(strings.TrimPrefix(name, "stat_def."), op, target, ctx.StatPollInterval, ctx.Stats, ctx.Scheduler)
	default:
		return buildCounterLeaf(name, op, target, ctx.Counters)
	}
}
