package maqui

import (
	"fmt"
	"io"
	"math"
)

// ParseProto is the emitter's mutable state during parsing: it owns the Lexer for the
// life of a parse and lowers the token stream directly into bytecode, with no
// intermediate AST. Reused at runtime by the VM as the "proto" a ExeState executes.
type ParseProto struct {
	// Constants is the ordered, deduplicated constant pool.
	Constants []Value
	// Bytecodes is the ordered instruction sequence.
	Bytecodes []ByteCode
	// Locals is the ordered local-name sequence; a local's index here is its stack
	// slot. Never shrinks in this core (no scopes yet) — shadowing is handled purely
	// by always resolving names against the rightmost match.
	Locals []string

	// sp is the next free scratch slot above all locals, used while lowering a single
	// expression (table constructors in particular). Always >= len(Locals).
	sp int

	lexer *Lexer
}

// NewParseProto constructs an emitter over lexer. Exported mainly for tests that want
// to feed a ParseProto a lexer built from an in-memory reader.
func NewParseProto(lexer *Lexer) *ParseProto {
	return &ParseProto{lexer: lexer}
}

// Load opens filename and drains its tokens into a finished ParseProto.
func Load(filename string) (*ParseProto, error) {
	lexer, err := NewLexer(filename)
	if err != nil {
		return nil, err
	}

	return loadLexer(lexer), nil
}

// LoadFromReader drains an arbitrary byte stream into a finished ParseProto. Used by
// tests and anything embedding the engine without a file on disk.
func LoadFromReader(r io.Reader) *ParseProto {
	return loadLexer(NewLexerFromReader(r))
}

func loadLexer(lexer *Lexer) *ParseProto {
	p := NewParseProto(lexer)
	p.chunk()
	return p
}

func (p *ParseProto) fatalf(format string, args ...interface{}) {
	panic(fmt.Sprintf(format, args...))
}

// u8 narrows an emitter-internal int to the u8 a ByteCode operand carries, failing
// fatally past the core's 256-stack-slot / 256-constant ceiling.
func u8(n int) uint8 {
	if n < 0 || n > 255 {
		panic(fmt.Sprintf("stack or constant index %d exceeds the 256-slot limit", n))
	}

	return uint8(n)
}

func (p *ParseProto) emit(bc ByteCode) {
	p.Bytecodes = append(p.Bytecodes, bc)
}

// addConst appends v to the constant pool, or returns the index of its first
// occurrence if an equal value is already present.
func (p *ParseProto) addConst(v Value) int {
	for i, c := range p.Constants {
		if c.Equal(v) {
			return i
		}
	}

	p.Constants = append(p.Constants, v)
	return len(p.Constants) - 1
}

// loadConst returns a LoadConst(dst, add_const(v)) instruction without appending it —
// callers decide whether/when to push it, per spec's load_const contract.
func (p *ParseProto) loadConst(dst int, v Value) ByteCode {
	return NewLoadConst(u8(dst), u8(p.addConst(v)))
}

// getLocal resolves name against Locals from the end, so a later `local x` shadows an
// earlier one without removing it (spec §9: name resolution is never a separate map).
func (p *ParseProto) getLocal(name string) (int, bool) {
	for i := len(p.Locals) - 1; i >= 0; i-- {
		if p.Locals[i] == name {
			return i, true
		}
	}

	return 0, false
}

// emitLoadVar emits the load for a bare variable reference: Move from a local's slot,
// or GetGlobal keyed by its name constant.
func (p *ParseProto) emitLoadVar(dst int, name string) {
	if idx, ok := p.getLocal(name); ok {
		p.emit(NewMove(u8(dst), u8(idx)))
		return
	}

	p.emit(NewGetGlobal(u8(dst), u8(p.addConst(String(name)))))
}

// chunk is the statement loop: on each iteration it reads one token and dispatches to
// an assignment, a function call, or a local binding, until Eos.
func (p *ParseProto) chunk() {
	for {
		p.sp = len(p.Locals)

		tok := p.lexer.next()
		switch tok.Typ {
		case TokenName:
			if p.lexer.peek().Typ == TokenAssign {
				p.assignment(tok.Str)
			} else {
				p.functionCall(tok.Str)
			}
		case TokenLocal:
			p.localBind()
		case TokenEos:
			return
		default:
			p.fatalf("unexpected token at start of statement: %s", tok)
		}
	}
}

// assignment lowers `n = rhs`. A local destination loads the RHS directly into its
// slot, except a table constructor, which is built in a scratch slot above the locals
// and moved into place. A global destination classifies the RHS's leading token: a
// literal or a name gets one of the specialized SetGlobal* opcodes without
// materializing the value on the stack, and anything else is lowered into a scratch
// slot above the locals and stored with SetGlobal.
func (p *ParseProto) assignment(name string) {
	p.lexer.expect(TokenAssign)

	if idx, ok := p.getLocal(name); ok {
		if p.lexer.peek().Typ == TokenCurlyL {
			// The constructor's entries occupy the slots above the table's own slot,
			// which for a local would be the slots of the locals declared after it.
			scratch := len(p.Locals)
			p.loadExpression(scratch)
			p.emit(NewMove(u8(idx), u8(scratch)))
			return
		}

		p.loadExpression(idx)
		return
	}

	nameIdx := u8(p.addConst(String(name)))

	tok := p.lexer.next()
	switch tok.Typ {
	case TokenNil:
		p.emit(NewSetGlobalConst(nameIdx, u8(p.addConst(Nil))))
	case TokenTrue:
		p.emit(NewSetGlobalConst(nameIdx, u8(p.addConst(Boolean(true)))))
	case TokenFalse:
		p.emit(NewSetGlobalConst(nameIdx, u8(p.addConst(Boolean(false)))))
	case TokenInteger:
		p.emit(NewSetGlobalConst(nameIdx, u8(p.addConst(Integer(tok.Int)))))
	case TokenFloat:
		p.emit(NewSetGlobalConst(nameIdx, u8(p.addConst(Float(tok.Flt)))))
	case TokenString:
		p.emit(NewSetGlobalConst(nameIdx, u8(p.addConst(String(tok.Str)))))
	case TokenName:
		if idx, ok := p.getLocal(tok.Str); ok {
			p.emit(NewSetGlobal(nameIdx, u8(idx)))
		} else {
			p.emit(NewSetGlobalGlobal(nameIdx, u8(p.addConst(String(tok.Str)))))
		}
	default:
		// Anything else (a table constructor, in practice) has no dedicated
		// SetGlobal* form: lower it into a scratch slot above the locals, same as a
		// local destination would, then move it into the global.
		scratch := len(p.Locals)
		p.loadExpressionTok(scratch, tok)
		p.emit(NewSetGlobal(nameIdx, u8(scratch)))
	}
}

// functionCall lowers `f(expr)` or `f "literal"`: it reserves two fresh slots — the
// function itself and its single argument — loads the callee, loads the argument, and
// emits Call with a fixed argument count of one.
func (p *ParseProto) functionCall(name string) {
	funcIdx := len(p.Locals)
	argIdx := funcIdx + 1

	p.emitLoadVar(funcIdx, name)

	tok := p.lexer.next()
	switch tok.Typ {
	case TokenParenL:
		p.loadExpression(argIdx)
		p.lexer.expect(TokenParenR)
	case TokenString:
		p.emit(p.loadConst(argIdx, String(tok.Str)))
	default:
		p.fatalf("expected '(' or a string literal after function name, got %s", tok)
	}

	p.emit(NewCall(u8(funcIdx), 1))
}

// localBind lowers `local n = expr`. The RHS is lowered into the new local's slot
// before n is pushed onto Locals, so `local x = x` reads whatever x meant beforehand.
func (p *ParseProto) localBind() {
	name := p.lexer.expect(TokenName)
	p.lexer.expect(TokenAssign)

	p.loadExpression(len(p.Locals))

	p.Locals = append(p.Locals, name.Str)
}

// loadExpression reads one token and emits the loader for the expression it starts,
// placing the result in stack slot dst.
func (p *ParseProto) loadExpression(dst int) {
	p.loadExpressionTok(dst, p.lexer.next())
}

// loadExpressionTok is loadExpression given an already-consumed leading token — needed
// by the table constructor, which must peek a Name one token further to disambiguate
// `Name = exp` (a record field) from a bare `Name` (an array-part value expression).
func (p *ParseProto) loadExpressionTok(dst int, tok Token) {
	if dst >= len(p.Locals) {
		p.sp = dst
	}

	switch tok.Typ {
	case TokenNil:
		p.emit(NewLoadNil(u8(dst)))
	case TokenTrue:
		p.emit(NewLoadBool(u8(dst), true))
	case TokenFalse:
		p.emit(NewLoadBool(u8(dst), false))
	case TokenInteger:
		if tok.Int >= math.MinInt16 && tok.Int <= math.MaxInt16 {
			p.emit(NewLoadInt(u8(dst), int16(tok.Int)))
		} else {
			p.emit(p.loadConst(dst, Integer(tok.Int)))
		}
	case TokenFloat:
		p.emit(p.loadConst(dst, Float(tok.Flt)))
	case TokenString:
		p.emit(p.loadConst(dst, String(tok.Str)))
	case TokenName:
		p.emitLoadVar(dst, tok.Str)
	case TokenCurlyL:
		p.tableConstructor(dst)
	default:
		p.fatalf("invalid expression: %s", tok)
	}
}

// tableConstructor lowers the body of a `{ ... }` expression already positioned at
// stack slot dst (the table's own slot, reserved by the caller via loadExpression).
//
// Array-part (bare) entries load into strictly increasing slots above the table, so
// they stay live and contiguous until the single trailing SetList flushes all of them
// at once. Record entries ([expr]=expr and Name=expr) borrow the two slots immediately
// above the current array high-water mark as scratch — never the slots already holding
// live array values — and that scratch is released (sp restored) as soon as the
// SetTable/SetField for that entry is emitted.
func (p *ParseProto) tableConstructor(dst int) {
	tableSlot := dst
	pos := len(p.Bytecodes)
	p.emit(NewNewTable(u8(tableSlot), 0, 0))

	arrayCount := 0
	mapCount := 0

entries:
	for {
		switch p.lexer.peek().Typ {
		case TokenCurlyR:
			p.lexer.next()
			break entries
		case TokenComma, TokenSemi:
			p.lexer.next()
			continue
		case TokenSquareL:
			p.lexer.next()
			keySlot := tableSlot + 1 + arrayCount
			valSlot := keySlot + 1
			p.loadExpression(keySlot)
			p.lexer.expect(TokenSquareR)
			p.lexer.expect(TokenAssign)
			p.loadExpression(valSlot)
			p.emit(NewSetTable(u8(tableSlot), u8(keySlot), u8(valSlot)))
			mapCount++
		case TokenName:
			nameTok := p.lexer.next()
			if p.lexer.peek().Typ == TokenAssign {
				p.lexer.next()
				keyConst := p.addConst(String(nameTok.Str))
				valSlot := tableSlot + 1 + arrayCount
				p.loadExpression(valSlot)
				p.emit(NewSetField(u8(tableSlot), u8(keyConst), u8(valSlot)))
				mapCount++
			} else {
				slot := tableSlot + 1 + arrayCount
				p.loadExpressionTok(slot, nameTok)
				arrayCount++
			}
		default:
			tok := p.lexer.next()
			slot := tableSlot + 1 + arrayCount
			p.loadExpressionTok(slot, tok)
			arrayCount++
		}

		p.sp = tableSlot + 1 + arrayCount
	}

	if arrayCount > 0 {
		p.emit(NewSetList(u8(tableSlot), u8(arrayCount)))
	}

	if arrayCount > 255 || mapCount > 255 {
		p.fatalf("table constructor exceeds 255 array or map entries")
	}

	p.Bytecodes[pos] = NewNewTable(u8(tableSlot), u8(arrayCount), u8(mapCount))

	p.sp = tableSlot + 1
}
