package extract

import (
	"strconv"
	"strings"
)

// Extract walks one module's source and returns its declaration records in
// source order. Recognized constructs: actor schemas, rule-action functions,
// role/spawn/camera/scene/rule statements, and advisory group blocks. Import
// lines ("use ...") are the module resolver's concern and are skipped here.
func Extract(module, source string) ([]Record, error) {
	p := &parser{
		module: module,
		lines:  strings.Split(source, "\n"),
	}
	if err := p.parseBlock(0, ""); err != nil {
		return nil, err
	}
	return p.recs, nil
}

type parser struct {
	module string
	lines  []string
	i      int
	recs   []Record
}

func indentOf(line string) int {
	n := 0
	for n < len(line) && (line[n] == ' ' || line[n] == '\t') {
		n++
	}
	return n
}

func blank(line string) bool {
	t := strings.TrimSpace(line)
	return t == "" || strings.HasPrefix(t, "#")
}

// parseBlock consumes statements whose indentation is exactly at or beyond
// min, until a line dedents past it. group is the enclosing group name.
func (p *parser) parseBlock(min int, group string) error {
	for p.i < len(p.lines) {
		line := p.lines[p.i]
		if blank(line) {
			p.i++
			continue
		}
		if indentOf(line) < min {
			return nil
		}
		if err := p.parseStatement(group); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) parseStatement(group string) error {
	lineNo := p.i + 1
	line := p.lines[p.i]
	toks := Tokenize(line)
	if len(toks) == 0 {
		p.i++
		return nil
	}

	head := toks[0]
	if head.Type != TokenSymbol {
		// A bare string (docstring) or stray literal carries no effect.
		if len(toks) == 1 {
			p.i++
			return nil
		}
		return p.unsupported(lineNo, line)
	}

	switch head.Literal {
	case "use":
		p.i++
		return nil
	case "actor":
		return p.parseActor(toks, group)
	case "def":
		return p.parseDef(toks, group)
	case "role":
		return p.parseRole(toks, group)
	case "spawn":
		return p.parseSpawn(toks, group)
	case "camera":
		return p.parseCamera(toks, group)
	case "scene":
		return p.parseScene(toks, group)
	case "rule":
		return p.parseRule(toks, group)
	case "group":
		return p.parseGroup(toks, group)
	default:
		// Single bare symbols are inert and ignored; anything with call or
		// assignment shape is an executable statement we refuse to compile.
		if len(toks) == 1 {
			p.i++
			return nil
		}
		return p.unsupported(lineNo, line)
	}
}

func (p *parser) unsupported(lineNo int, line string) error {
	return &UnsupportedConstructError{
		Module: p.module,
		Line:   lineNo,
		Text:   strings.TrimSpace(line),
	}
}

// parseActor handles "actor Name:" followed by an indented block of
// "field: type" declarations.
func (p *parser) parseActor(toks []Token, group string) error {
	lineNo := p.i + 1
	line := p.lines[p.i]
	if len(toks) != 3 || toks[1].Type != TokenSymbol || toks[2].Type != TokenColon {
		return p.unsupported(lineNo, line)
	}
	decl := &ActorDecl{Name: toks[1].Literal}
	base := indentOf(line)
	p.i++

	for p.i < len(p.lines) {
		body := p.lines[p.i]
		if blank(body) {
			p.i++
			continue
		}
		if indentOf(body) <= base {
			break
		}
		ft := Tokenize(body)
		if len(ft) != 3 || ft[0].Type != TokenSymbol || ft[1].Type != TokenColon || ft[2].Type != TokenSymbol {
			return p.unsupported(p.i+1, body)
		}
		typ := ft[2].Literal
		switch typ {
		case "int", "float", "bool", "string":
		default:
			return p.unsupported(p.i+1, body)
		}
		decl.Fields = append(decl.Fields, FieldDecl{Name: ft[0].Literal, Type: typ})
		p.i++
	}

	p.emit(Record{Kind: KindActor, Line: lineNo, Group: group, Actor: decl})
	return nil
}

// parseDef handles "def name(param: Schema):" with an optional "[uid]" actor
// binding on the schema, followed by an indented block of field mutations.
func (p *parser) parseDef(toks []Token, group string) error {
	lineNo := p.i + 1
	line := p.lines[p.i]

	// def name ( param : Schema [uid]? ) :
	ok := len(toks) >= 8 &&
		toks[1].Type == TokenSymbol &&
		toks[2].Type == TokenLParen &&
		toks[3].Type == TokenSymbol &&
		toks[4].Type == TokenColon &&
		toks[5].Type == TokenSymbol
	if !ok {
		return p.unsupported(lineNo, line)
	}
	decl := &ActionDecl{
		Name:   toks[1].Literal,
		Param:  toks[3].Literal,
		Schema: toks[5].Literal,
	}
	rest := toks[6:]
	if len(rest) >= 3 && rest[0].Type == TokenLBracket && rest[1].Type == TokenSymbol && rest[2].Type == TokenRBracket {
		decl.Target = rest[1].Literal
		rest = rest[3:]
	}
	if len(rest) != 2 || rest[0].Type != TokenRParen || rest[1].Type != TokenColon {
		return p.unsupported(lineNo, line)
	}

	base := indentOf(line)
	p.i++
	for p.i < len(p.lines) {
		body := p.lines[p.i]
		if blank(body) {
			p.i++
			continue
		}
		if indentOf(body) <= base {
			break
		}
		mut, err := p.parseMutation(body, decl.Param)
		if err != nil {
			return err
		}
		decl.Mutations = append(decl.Mutations, *mut)
		p.i++
	}

	p.emit(Record{Kind: KindAction, Line: lineNo, Group: group, Action: decl})
	return nil
}

// parseMutation handles one "param.field = expr" body line.
func (p *parser) parseMutation(line, param string) (*MutationDecl, error) {
	toks := Tokenize(line)
	ok := len(toks) >= 5 &&
		toks[0].Type == TokenSymbol && toks[0].Literal == param &&
		toks[1].Type == TokenDot &&
		toks[2].Type == TokenSymbol &&
		toks[3].Type == TokenAssign
	if !ok {
		return nil, p.unsupported(p.i+1, line)
	}
	ep := &exprParser{p: p, line: line, param: param, toks: toks[4:]}
	expr, err := ep.parse()
	if err != nil {
		return nil, err
	}
	return &MutationDecl{Field: toks[2].Literal, Expr: expr}, nil
}

func (p *parser) parseRole(toks []Token, group string) error {
	lineNo := p.i + 1
	line := p.lines[p.i]
	if len(toks) != 4 || toks[1].Type != TokenSymbol || toks[2].Type != TokenSymbol || toks[3].Type != TokenSymbol {
		return p.unsupported(lineNo, line)
	}
	decl := &RoleDecl{ID: toks[1].Literal}
	switch toks[2].Literal {
	case "required":
		decl.Required = true
	case "optional":
		decl.Required = false
	default:
		return p.unsupported(lineNo, line)
	}
	switch toks[3].Literal {
	case "human", "agent":
		decl.Kind = toks[3].Literal
	default:
		return p.unsupported(lineNo, line)
	}
	p.i++
	p.emit(Record{Kind: KindRole, Line: lineNo, Group: group, Role: decl})
	return nil
}

// parseSpawn handles "spawn Schema uid (field=value, ...)".
func (p *parser) parseSpawn(toks []Token, group string) error {
	lineNo := p.i + 1
	line := p.lines[p.i]
	ok := len(toks) >= 5 &&
		toks[1].Type == TokenSymbol &&
		toks[2].Type == TokenSymbol &&
		toks[3].Type == TokenLParen &&
		toks[len(toks)-1].Type == TokenRParen
	if !ok {
		return p.unsupported(lineNo, line)
	}
	decl := &SpawnDecl{Schema: toks[1].Literal, UID: toks[2].Literal}

	args := toks[4 : len(toks)-1]
	for len(args) > 0 {
		if args[0].Type == TokenComma {
			args = args[1:]
			continue
		}
		if len(args) < 3 || args[0].Type != TokenSymbol || args[1].Type != TokenAssign {
			return p.unsupported(lineNo, line)
		}
		val, rest, err := p.literalText(args[2:], lineNo, line)
		if err != nil {
			return err
		}
		decl.Init = append(decl.Init, InitDecl{Field: args[0].Literal, Value: val})
		args = rest
	}

	p.i++
	p.emit(Record{Kind: KindSpawn, Line: lineNo, Group: group, Spawn: decl})
	return nil
}

// literalText consumes one literal value (number, negative number, bool
// symbol, or quoted string) and returns its raw text plus remaining tokens.
func (p *parser) literalText(toks []Token, lineNo int, line string) (string, []Token, error) {
	if len(toks) == 0 {
		return "", nil, p.unsupported(lineNo, line)
	}
	switch toks[0].Type {
	case TokenNumber, TokenSymbol:
		return toks[0].Literal, toks[1:], nil
	case TokenString:
		return `"` + toks[0].Literal + `"`, toks[1:], nil
	case TokenMinus:
		if len(toks) >= 2 && toks[1].Type == TokenNumber {
			return "-" + toks[1].Literal, toks[2:], nil
		}
	}
	return "", nil, p.unsupported(lineNo, line)
}

func (p *parser) parseCamera(toks []Token, group string) error {
	lineNo := p.i + 1
	line := p.lines[p.i]
	decl := &CameraDecl{}
	switch {
	case len(toks) == 3 && toks[1].Type == TokenSymbol && toks[1].Literal == "follow" && toks[2].Type == TokenSymbol:
		decl.Mode = "follow"
		decl.Target = toks[2].Literal
	case len(toks) == 2 && toks[1].Type == TokenSymbol && toks[1].Literal == "fixed":
		decl.Mode = "fixed"
	default:
		return p.unsupported(lineNo, line)
	}
	p.i++
	p.emit(Record{Kind: KindCamera, Line: lineNo, Group: group, Camera: decl})
	return nil
}

func (p *parser) parseScene(toks []Token, group string) error {
	lineNo := p.i + 1
	line := p.lines[p.i]
	decl := &SceneDecl{}
	args := toks[1:]
	for len(args) > 0 {
		if len(args) < 3 || args[0].Type != TokenSymbol || args[1].Type != TokenAssign {
			return p.unsupported(lineNo, line)
		}
		val, rest, err := p.literalText(args[2:], lineNo, line)
		if err != nil {
			return err
		}
		decl.Settings = append(decl.Settings, SettingDecl{Key: args[0].Literal, Value: val})
		args = rest
	}
	if len(decl.Settings) == 0 {
		return p.unsupported(lineNo, line)
	}
	p.i++
	p.emit(Record{Kind: KindScene, Line: lineNo, Group: group, Scene: decl})
	return nil
}

// parseRule handles "rule key KeyName roleID -> action" and
// "rule timer periodMS -> action".
func (p *parser) parseRule(toks []Token, group string) error {
	lineNo := p.i + 1
	line := p.lines[p.i]
	if len(toks) < 2 || toks[1].Type != TokenSymbol {
		return p.unsupported(lineNo, line)
	}
	decl := &RuleDecl{}
	switch toks[1].Literal {
	case "key":
		ok := len(toks) == 6 &&
			toks[2].Type == TokenSymbol &&
			toks[3].Type == TokenSymbol &&
			toks[4].Type == TokenArrow &&
			toks[5].Type == TokenSymbol
		if !ok {
			return p.unsupported(lineNo, line)
		}
		decl.Cond = CondDecl{Kind: "keyboard", Key: toks[2].Literal, Role: toks[3].Literal}
		decl.Action = toks[5].Literal
	case "timer":
		ok := len(toks) == 5 &&
			toks[2].Type == TokenNumber &&
			toks[3].Type == TokenArrow &&
			toks[4].Type == TokenSymbol
		if !ok {
			return p.unsupported(lineNo, line)
		}
		ms, err := strconv.Atoi(toks[2].Literal)
		if err != nil || ms <= 0 {
			return p.unsupported(lineNo, line)
		}
		decl.Cond = CondDecl{Kind: "timer", EveryMS: ms}
		decl.Action = toks[4].Literal
	default:
		return p.unsupported(lineNo, line)
	}
	p.i++
	p.emit(Record{Kind: KindRule, Line: lineNo, Group: group, Rule: decl})
	return nil
}

// parseGroup handles "group name:" and recurses into the indented block.
// Groups are advisory; the nested statements are recorded with the group name
// and have identical semantics to top-level declarations.
func (p *parser) parseGroup(toks []Token, outer string) error {
	lineNo := p.i + 1
	line := p.lines[p.i]
	if len(toks) != 3 || toks[1].Type != TokenSymbol || toks[2].Type != TokenColon {
		return p.unsupported(lineNo, line)
	}
	name := toks[1].Literal
	if outer != "" {
		name = outer + "." + name
	}
	base := indentOf(line)
	p.i++
	return p.parseBlock(base+1, name)
}

func (p *parser) emit(r Record) {
	r.Module = p.module
	p.recs = append(p.recs, r)
}

// exprParser is a small precedence-climbing parser over the tokens to the
// right of a mutation assignment.
type exprParser struct {
	p     *parser
	line  string
	param string
	toks  []Token
	pos   int
}

func (e *exprParser) parse() (*Expr, error) {
	expr, err := e.additive()
	if err != nil {
		return nil, err
	}
	if e.pos != len(e.toks) {
		return nil, e.fail()
	}
	return expr, nil
}

func (e *exprParser) fail() error {
	return e.p.unsupported(e.p.i+1, e.line)
}

func (e *exprParser) peek() (Token, bool) {
	if e.pos >= len(e.toks) {
		return Token{}, false
	}
	return e.toks[e.pos], true
}

func (e *exprParser) additive() (*Expr, error) {
	left, err := e.multiplicative()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := e.peek()
		if !ok || (tok.Type != TokenPlus && tok.Type != TokenMinus) {
			return left, nil
		}
		e.pos++
		right, err := e.multiplicative()
		if err != nil {
			return nil, err
		}
		left = &Expr{Op: tok.Literal, Left: left, Right: right}
	}
}

func (e *exprParser) multiplicative() (*Expr, error) {
	left, err := e.factor()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := e.peek()
		if !ok || (tok.Type != TokenStar && tok.Type != TokenSlash) {
			return left, nil
		}
		e.pos++
		right, err := e.factor()
		if err != nil {
			return nil, err
		}
		left = &Expr{Op: tok.Literal, Left: left, Right: right}
	}
}

func (e *exprParser) factor() (*Expr, error) {
	tok, ok := e.peek()
	if !ok {
		return nil, e.fail()
	}
	switch tok.Type {
	case TokenNumber:
		e.pos++
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, e.fail()
		}
		return &Expr{Lit: &f}, nil
	case TokenMinus:
		e.pos++
		inner, err := e.factor()
		if err != nil {
			return nil, err
		}
		if inner.Lit != nil && inner.Op == "" {
			neg := -*inner.Lit
			return &Expr{Lit: &neg}, nil
		}
		zero := 0.0
		return &Expr{Op: "-", Left: &Expr{Lit: &zero}, Right: inner}, nil
	case TokenSymbol:
		switch tok.Literal {
		case "true":
			e.pos++
			one := 1.0
			return &Expr{Lit: &one}, nil
		case "false":
			e.pos++
			zero := 0.0
			return &Expr{Lit: &zero}, nil
		}
		// param.field reference
		if tok.Literal != e.param {
			return nil, e.fail()
		}
		if e.pos+2 >= len(e.toks) {
			return nil, e.fail()
		}
		if e.toks[e.pos+1].Type != TokenDot || e.toks[e.pos+2].Type != TokenSymbol {
			return nil, e.fail()
		}
		field := e.toks[e.pos+2].Literal
		e.pos += 3
		return &Expr{Field: field}, nil
	case TokenLParen:
		e.pos++
		inner, err := e.additive()
		if err != nil {
			return nil, err
		}
		tok, ok := e.peek()
		if !ok || tok.Type != TokenRParen {
			return nil, e.fail()
		}
		e.pos++
		return inner, nil
	}
	return nil, e.fail()
}
