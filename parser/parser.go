// Package parser reads DBML source into a schema.Database.
//
// It covers the parts of DBML that documentation needs: Project, Table
// (with aliases, notes, indexes and inline refs), Enum, Ref in short and
// block form, and TableGroup. Records and sticky notes are rejected.
//
// Unqualified table names resolve through aliases first and then to the
// public schema. Inside a TableGroup an unqualified member resolves to the
// group's own schema when such a table exists there.
package parser

import (
	"fmt"
	"os"
	"strings"

	"github.com/lucasefe/dbmldoc/schema"
)

// Parse parses DBML source and validates cross references.
func Parse(src string) (*schema.Database, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}

	p := newParser(tokens)
	if err := p.parseFile(); err != nil {
		return nil, err
	}
	if err := p.resolve(); err != nil {
		return nil, err
	}
	return p.database(), nil
}

// ParseFile reads and parses the DBML file at path.
func ParseFile(path string) (*schema.Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(string(data))
}

// rawName is a possibly schema-qualified name as written in the source.
type rawName struct {
	schema string
	name   string
	tok    token
}

func (n rawName) String() string {
	if n.schema == "" {
		return n.name
	}
	return n.schema + "." + n.name
}

// rawEndpoint is one side of a ref before table names are resolved.
type rawEndpoint struct {
	table    rawName
	fields   []string
	relation string
}

type pendingRef struct {
	name      string
	endpoints [2]rawEndpoint
	onDelete  string
	onUpdate  string
	tok       token
}

type pendingGroup struct {
	group   schema.TableGroup
	members []rawName
	tok     token
}

type tableEntry struct {
	schemaName string
	index      int
}

type parser struct {
	tokens []token
	pos    int

	name         string
	databaseType string
	note         *string

	schemaOrder []string
	schemas     map[string]*schema.Schema
	tables      map[schema.TableKey]tableEntry
	aliases     map[string]schema.TableKey
	refs        []pendingRef
	groups      []pendingGroup
}

func newParser(tokens []token) *parser {
	p := &parser{
		tokens:  tokens,
		schemas: make(map[string]*schema.Schema),
		tables:  make(map[schema.TableKey]tableEntry),
		aliases: make(map[string]schema.TableKey),
	}
	p.ensureSchema(schema.DefaultSchemaName)
	return p
}

func (p *parser) ensureSchema(name string) *schema.Schema {
	name = schema.NormalizeSchemaName(name)
	if s, ok := p.schemas[name]; ok {
		return s
	}
	s := &schema.Schema{Name: name}
	p.schemas[name] = s
	p.schemaOrder = append(p.schemaOrder, name)
	return s
}

// database assembles the result. An empty public schema is dropped when
// other schemas exist.
func (p *parser) database() *schema.Database {
	db := &schema.Database{
		Name:         p.name,
		DatabaseType: p.databaseType,
		Note:         p.note,
	}
	for _, name := range p.schemaOrder {
		s := p.schemas[name]
		if name == schema.DefaultSchemaName && len(p.schemaOrder) > 1 && isEmptySchema(s) {
			continue
		}
		db.Schemas = append(db.Schemas, *s)
	}
	return db
}

func isEmptySchema(s *schema.Schema) bool {
	return len(s.Enums) == 0 && len(s.Tables) == 0 && len(s.TableGroups) == 0 && len(s.Refs) == 0
}

// Token helpers.

func (p *parser) cur() token {
	return p.tokens[p.pos]
}

func (p *parser) peekAt(offset int) token {
	if p.pos+offset >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+offset]
}

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(tok token, format string, args ...any) error {
	return newError(tok.line, tok.column, format, args...)
}

func (p *parser) unexpected(want string) error {
	return p.errorf(p.cur(), "expected %s but got %s", want, p.cur().describe())
}

func isKeyword(tok token, keyword string) bool {
	return tok.kind == tokenIdent && strings.EqualFold(tok.text, keyword)
}

func isPunct(tok token, text string) bool {
	return tok.kind == tokenPunct && tok.text == text
}

func isName(tok token) bool {
	return tok.kind == tokenIdent || tok.kind == tokenQuotedIdent
}

func (p *parser) expectPunct(text string) (token, error) {
	if !isPunct(p.cur(), text) {
		return token{}, p.unexpected("'" + text + "'")
	}
	return p.advance(), nil
}

func (p *parser) expectName() (token, error) {
	if !isName(p.cur()) {
		return token{}, p.unexpected("a name")
	}
	return p.advance(), nil
}

func (p *parser) expectString() (string, error) {
	switch p.cur().kind {
	case tokenString, tokenQuotedIdent:
		return p.advance().text, nil
	default:
		return "", p.unexpected("a string")
	}
}

// isNoteStart reports whether the current token opens a Note element.
func (p *parser) isNoteStart() bool {
	return isKeyword(p.cur(), "note") && (isPunct(p.peekAt(1), ":") || isPunct(p.peekAt(1), "{"))
}

// parseNote parses `Note: 'text'` or `Note { 'text' }`.
func (p *parser) parseNote() (string, error) {
	p.advance()
	if isPunct(p.cur(), ":") {
		p.advance()
		return p.expectString()
	}
	if _, err := p.expectPunct("{"); err != nil {
		return "", err
	}
	text, err := p.expectString()
	if err != nil {
		return "", err
	}
	if _, err := p.expectPunct("}"); err != nil {
		return "", err
	}
	return text, nil
}

func (p *parser) parseQualifiedName() (rawName, error) {
	first, err := p.expectName()
	if err != nil {
		return rawName{}, err
	}
	if !isPunct(p.cur(), ".") {
		return rawName{name: first.text, tok: first}, nil
	}
	p.advance()
	second, err := p.expectName()
	if err != nil {
		return rawName{}, err
	}
	return rawName{schema: first.text, name: second.text, tok: first}, nil
}

// Elements.

func (p *parser) parseFile() error {
	for p.cur().kind != tokenEOF {
		tok := p.cur()
		var err error
		switch {
		case isKeyword(tok, "project"):
			err = p.parseProject()
		case isKeyword(tok, "table"):
			err = p.parseTable()
		case isKeyword(tok, "enum"):
			err = p.parseEnum()
		case isKeyword(tok, "ref"):
			err = p.parseRef()
		case isKeyword(tok, "tablegroup"):
			err = p.parseTableGroup()
		default:
			err = p.errorf(tok, "unexpected %s at top level", tok.describe())
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) parseProject() error {
	p.advance()
	if isName(p.cur()) {
		p.name = p.advance().text
	}
	if _, err := p.expectPunct("{"); err != nil {
		return err
	}

	for !isPunct(p.cur(), "}") {
		if p.isNoteStart() {
			note, err := p.parseNote()
			if err != nil {
				return err
			}
			p.note = &note
			continue
		}

		key, err := p.expectName()
		if err != nil {
			return err
		}
		if _, err := p.expectPunct(":"); err != nil {
			return err
		}
		value := p.cur()
		switch value.kind {
		case tokenString, tokenQuotedIdent, tokenIdent, tokenNumber:
			p.advance()
		default:
			return p.unexpected("a project setting value")
		}
		if strings.EqualFold(key.text, "database_type") {
			p.databaseType = value.text
		}
	}
	p.advance()
	return nil
}

func (p *parser) parseTable() error {
	p.advance()
	name, err := p.parseQualifiedName()
	if err != nil {
		return err
	}

	s := p.ensureSchema(name.schema)
	table := schema.Table{Name: name.name, Schema: s.Name}
	key := table.Key()

	if _, dup := p.tables[key]; dup {
		return p.errorf(name.tok, "duplicate table %s", key)
	}

	if isKeyword(p.cur(), "as") {
		p.advance()
		alias, err := p.expectName()
		if err != nil {
			return err
		}
		if _, dup := p.aliases[alias.text]; dup {
			return p.errorf(alias, "duplicate table alias %s", alias.text)
		}
		p.aliases[alias.text] = key
		table.Alias = schema.StringPtr(alias.text)
	}

	if isPunct(p.cur(), "[") {
		settings, err := p.parseSettings()
		if err != nil {
			return err
		}
		for _, st := range settings {
			if st.key == "note" {
				table.Note = schema.StringPtr(st.value)
			}
		}
	}

	if _, err := p.expectPunct("{"); err != nil {
		return err
	}

	for !isPunct(p.cur(), "}") {
		switch {
		case p.cur().kind == tokenEOF:
			return p.unexpected("'}'")
		case p.isNoteStart():
			note, err := p.parseNote()
			if err != nil {
				return err
			}
			table.Note = &note
		case isKeyword(p.cur(), "indexes") && isPunct(p.peekAt(1), "{"):
			indexes, err := p.parseIndexes()
			if err != nil {
				return err
			}
			table.Indexes = append(table.Indexes, indexes...)
		default:
			field, err := p.parseField(key)
			if err != nil {
				return err
			}
			table.Fields = append(table.Fields, field)
		}
	}
	p.advance()

	p.tables[key] = tableEntry{schemaName: s.Name, index: len(s.Tables)}
	s.Tables = append(s.Tables, table)
	return nil
}

func (p *parser) parseField(owner schema.TableKey) (schema.Field, error) {
	nameTok, err := p.expectName()
	if err != nil {
		return schema.Field{}, err
	}
	field := schema.Field{Name: nameTok.text}

	fieldType, err := p.parseFieldType()
	if err != nil {
		return schema.Field{}, err
	}
	field.Type = fieldType

	if !isPunct(p.cur(), "[") {
		return field, nil
	}

	settings, err := p.parseSettings()
	if err != nil {
		return schema.Field{}, err
	}
	for _, st := range settings {
		switch st.key {
		case "pk", "primary key":
			field.PrimaryKey = true
		case "unique":
			field.Unique = true
		case "not null":
			field.NotNull = true
		case "null":
			field.NotNull = false
		case "increment":
			field.Increment = true
		case "default":
			field.Default = schema.StringPtr(st.value)
		case "note":
			field.Note = schema.StringPtr(st.value)
		case "ref":
			self := rawEndpoint{
				table:  rawName{schema: owner.Schema, name: owner.Table, tok: nameTok},
				fields: []string{field.Name},
			}
			self.relation, st.ref.endpoint.relation = relations(st.ref.op)
			p.refs = append(p.refs, pendingRef{
				endpoints: [2]rawEndpoint{self, st.ref.endpoint},
				tok:       st.tok,
			})
		default:
			return schema.Field{}, p.errorf(st.tok, "unknown field setting %q", st.key)
		}
	}

	return field, nil
}

// parseFieldType reads [schema.]name, an optional argument list and any
// number of [] suffixes.
func (p *parser) parseFieldType() (schema.FieldType, error) {
	var typeTok token
	switch p.cur().kind {
	case tokenIdent, tokenQuotedIdent, tokenString:
		typeTok = p.advance()
	default:
		return schema.FieldType{}, p.unexpected("a field type")
	}

	fieldType := schema.FieldType{Name: typeTok.text}
	if isPunct(p.cur(), ".") && isName(p.peekAt(1)) {
		p.advance()
		fieldType.Schema = fieldType.Name
		fieldType.Name = p.advance().text
	}

	if isPunct(p.cur(), "(") {
		p.advance()
		var args []string
		for !isPunct(p.cur(), ")") {
			tok := p.advance()
			switch {
			case tok.kind == tokenEOF:
				return schema.FieldType{}, p.errorf(tok, "unterminated type arguments")
			case isPunct(tok, ","):
				continue
			case tok.kind == tokenString:
				args = append(args, "'"+tok.text+"'")
			default:
				args = append(args, tok.text)
			}
		}
		p.advance()
		fieldType.Name += "(" + strings.Join(args, ",") + ")"
	}

	for isPunct(p.cur(), "[") && isPunct(p.peekAt(1), "]") {
		p.advance()
		p.advance()
		fieldType.Name += "[]"
	}

	return fieldType, nil
}

func (p *parser) parseIndexes() ([]schema.Index, error) {
	p.advance()
	p.advance()

	var indexes []schema.Index
	for !isPunct(p.cur(), "}") {
		var index schema.Index

		switch {
		case p.cur().kind == tokenEOF:
			return nil, p.unexpected("'}'")
		case isPunct(p.cur(), "("):
			p.advance()
			for !isPunct(p.cur(), ")") {
				column, err := p.parseIndexColumn()
				if err != nil {
					return nil, err
				}
				index.Columns = append(index.Columns, column)
				if isPunct(p.cur(), ",") {
					p.advance()
				}
			}
			p.advance()
		default:
			column, err := p.parseIndexColumn()
			if err != nil {
				return nil, err
			}
			index.Columns = append(index.Columns, column)
		}

		if isPunct(p.cur(), "[") {
			settings, err := p.parseSettings()
			if err != nil {
				return nil, err
			}
			for _, st := range settings {
				switch st.key {
				case "pk":
					index.PrimaryKey = true
				case "unique":
					index.Unique = true
				case "type":
					index.Type = st.value
				case "name":
					index.Name = st.value
				case "note":
					index.Note = schema.StringPtr(st.value)
				default:
					return nil, p.errorf(st.tok, "unknown index setting %q", st.key)
				}
			}
		}

		indexes = append(indexes, index)
	}
	p.advance()

	return indexes, nil
}

func (p *parser) parseIndexColumn() (schema.IndexColumn, error) {
	switch p.cur().kind {
	case tokenIdent, tokenQuotedIdent:
		return schema.IndexColumn{Value: p.advance().text}, nil
	case tokenExpression:
		return schema.IndexColumn{Value: p.advance().text, Expression: true}, nil
	default:
		return schema.IndexColumn{}, p.unexpected("an index column")
	}
}

func (p *parser) parseEnum() error {
	p.advance()
	name, err := p.parseQualifiedName()
	if err != nil {
		return err
	}

	s := p.ensureSchema(name.schema)
	for _, e := range s.Enums {
		if e.Name == name.name {
			return p.errorf(name.tok, "duplicate enum %s", name)
		}
	}

	enum := schema.Enum{Name: name.name, Schema: s.Name}
	if _, err := p.expectPunct("{"); err != nil {
		return err
	}

	for !isPunct(p.cur(), "}") {
		if p.isNoteStart() {
			note, err := p.parseNote()
			if err != nil {
				return err
			}
			enum.Note = &note
			continue
		}

		var value schema.EnumValue
		switch p.cur().kind {
		case tokenIdent, tokenQuotedIdent, tokenString:
			value.Name = p.advance().text
		default:
			return p.unexpected("an enum value")
		}

		if isPunct(p.cur(), "[") {
			settings, err := p.parseSettings()
			if err != nil {
				return err
			}
			for _, st := range settings {
				if st.key == "note" {
					value.Note = schema.StringPtr(st.value)
				}
			}
		}
		enum.Values = append(enum.Values, value)
	}
	p.advance()

	s.Enums = append(s.Enums, enum)
	return nil
}

func (p *parser) parseRef() error {
	refTok := p.advance()

	var name string
	if isName(p.cur()) {
		name = p.advance().text
	}

	if isPunct(p.cur(), ":") {
		p.advance()
		return p.parseRefBody(name, refTok)
	}

	if _, err := p.expectPunct("{"); err != nil {
		return err
	}
	for !isPunct(p.cur(), "}") {
		if p.cur().kind == tokenEOF {
			return p.unexpected("'}'")
		}
		if err := p.parseRefBody(name, refTok); err != nil {
			return err
		}
	}
	p.advance()
	return nil
}

func (p *parser) parseRefBody(name string, refTok token) error {
	left, err := p.parseEndpoint()
	if err != nil {
		return err
	}

	opTok := p.cur()
	if opTok.kind != tokenPunct || !isRelationOperator(opTok.text) {
		return p.unexpected("a relation operator")
	}
	p.advance()

	right, err := p.parseEndpoint()
	if err != nil {
		return err
	}
	left.relation, right.relation = relations(opTok.text)

	ref := pendingRef{name: name, endpoints: [2]rawEndpoint{left, right}, tok: refTok}

	if isPunct(p.cur(), "[") {
		settings, err := p.parseSettings()
		if err != nil {
			return err
		}
		for _, st := range settings {
			switch st.key {
			case "delete":
				ref.onDelete = st.value
			case "update":
				ref.onUpdate = st.value
			case "color":
			default:
				return p.errorf(st.tok, "unknown ref setting %q", st.key)
			}
		}
	}

	p.refs = append(p.refs, ref)
	return nil
}

// parseEndpoint reads [schema.]table.field or [schema.]table.(f1, f2).
func (p *parser) parseEndpoint() (rawEndpoint, error) {
	first, err := p.expectName()
	if err != nil {
		return rawEndpoint{}, err
	}
	parts := []string{first.text}
	var fields []string

	for isPunct(p.cur(), ".") {
		p.advance()
		if isPunct(p.cur(), "(") {
			p.advance()
			for !isPunct(p.cur(), ")") {
				f, err := p.expectName()
				if err != nil {
					return rawEndpoint{}, err
				}
				fields = append(fields, f.text)
				if isPunct(p.cur(), ",") {
					p.advance()
				}
			}
			p.advance()
			break
		}
		part, err := p.expectName()
		if err != nil {
			return rawEndpoint{}, err
		}
		parts = append(parts, part.text)
	}

	if fields == nil {
		if len(parts) < 2 {
			return rawEndpoint{}, p.errorf(first, "ref endpoint %s has no field", first.text)
		}
		fields = []string{parts[len(parts)-1]}
		parts = parts[:len(parts)-1]
	}

	switch len(parts) {
	case 1:
		return rawEndpoint{table: rawName{name: parts[0], tok: first}, fields: fields}, nil
	case 2:
		return rawEndpoint{table: rawName{schema: parts[0], name: parts[1], tok: first}, fields: fields}, nil
	default:
		return rawEndpoint{}, p.errorf(first, "invalid ref endpoint %s", strings.Join(parts, "."))
	}
}

func (p *parser) parseTableGroup() error {
	p.advance()
	name, err := p.parseQualifiedName()
	if err != nil {
		return err
	}

	s := p.ensureSchema(name.schema)
	pending := pendingGroup{group: schema.TableGroup{Name: name.name, Schema: s.Name}, tok: name.tok}

	if isPunct(p.cur(), "[") {
		settings, err := p.parseSettings()
		if err != nil {
			return err
		}
		for _, st := range settings {
			if st.key == "note" {
				pending.group.Note = schema.StringPtr(st.value)
			}
		}
	}

	if _, err := p.expectPunct("{"); err != nil {
		return err
	}
	for !isPunct(p.cur(), "}") {
		if p.isNoteStart() {
			note, err := p.parseNote()
			if err != nil {
				return err
			}
			pending.group.Note = &note
			continue
		}
		member, err := p.parseQualifiedName()
		if err != nil {
			return err
		}
		pending.members = append(pending.members, member)
	}
	p.advance()

	p.groups = append(p.groups, pending)
	return nil
}

// Settings.

type inlineRef struct {
	op       string
	endpoint rawEndpoint
}

type setting struct {
	key   string
	value string
	ref   *inlineRef
	tok   token
}

// parseSettings reads a bracketed, comma separated settings list. Keys made
// of several words ("not null", "primary key") are joined by one space and
// lowercased.
func (p *parser) parseSettings() ([]setting, error) {
	if _, err := p.expectPunct("["); err != nil {
		return nil, err
	}

	var settings []setting
	for {
		st := setting{tok: p.cur()}

		var words []string
		for p.cur().kind == tokenIdent {
			words = append(words, strings.ToLower(p.advance().text))
		}
		if len(words) == 0 {
			return nil, p.unexpected("a setting")
		}
		st.key = strings.Join(words, " ")

		if isPunct(p.cur(), ":") {
			p.advance()
			var err error
			switch st.key {
			case "ref":
				st.ref, err = p.parseInlineRef()
			case "default":
				st.value, err = p.parseDefaultValue()
			default:
				st.value, err = p.parseSettingValue()
			}
			if err != nil {
				return nil, err
			}
		}
		settings = append(settings, st)

		if isPunct(p.cur(), ",") {
			p.advance()
			continue
		}
		if _, err := p.expectPunct("]"); err != nil {
			return nil, err
		}
		return settings, nil
	}
}

func (p *parser) parseInlineRef() (*inlineRef, error) {
	opTok := p.cur()
	if opTok.kind != tokenPunct || !isRelationOperator(opTok.text) {
		return nil, p.unexpected("a relation operator")
	}
	p.advance()

	endpoint, err := p.parseEndpoint()
	if err != nil {
		return nil, err
	}
	return &inlineRef{op: opTok.text, endpoint: endpoint}, nil
}

// parseDefaultValue keeps strings quoted so they stay distinct from
// keywords and expressions.
func (p *parser) parseDefaultValue() (string, error) {
	tok := p.cur()
	switch {
	case tok.kind == tokenString:
		p.advance()
		return "'" + tok.text + "'", nil
	case tok.kind == tokenNumber, tok.kind == tokenExpression, tok.kind == tokenIdent:
		p.advance()
		return tok.text, nil
	case isPunct(tok, "-") && p.peekAt(1).kind == tokenNumber:
		p.advance()
		return "-" + p.advance().text, nil
	default:
		return "", p.unexpected("a default value")
	}
}

func (p *parser) parseSettingValue() (string, error) {
	tok := p.cur()
	switch tok.kind {
	case tokenString, tokenQuotedIdent, tokenNumber, tokenColor, tokenExpression:
		p.advance()
		return tok.text, nil
	case tokenIdent:
		var words []string
		for p.cur().kind == tokenIdent {
			words = append(words, p.advance().text)
		}
		return strings.Join(words, " "), nil
	default:
		return "", p.unexpected("a setting value")
	}
}

func isRelationOperator(op string) bool {
	switch op {
	case "<", ">", "-", "<>":
		return true
	}
	return false
}

// relations returns the cardinality markers of the left and right side.
func relations(op string) (string, string) {
	switch op {
	case "<":
		return "1", "*"
	case ">":
		return "*", "1"
	case "<>":
		return "*", "*"
	default:
		return "1", "1"
	}
}

// Resolution.

// resolve validates refs and table groups against the declared tables and
// stores them in their schemas.
func (p *parser) resolve() error {
	for _, pending := range p.refs {
		ref, err := p.resolveRef(pending)
		if err != nil {
			return err
		}
		s := p.ensureSchema(ref.Endpoints[0].Schema)
		s.Refs = append(s.Refs, ref)
	}

	claimed := make(map[schema.TableKey]string)
	for _, pending := range p.groups {
		group := pending.group
		for _, member := range pending.members {
			key, ok := p.lookupGroupMember(group.Schema, member)
			if !ok {
				return p.errorf(member.tok, "table group %s references unknown table %s", group.Name, member)
			}
			if key.Schema != group.Schema {
				return p.errorf(member.tok, "table group %s in schema %s cannot contain table %s", group.Name, group.Schema, key)
			}
			if prev, dup := claimed[key]; dup {
				return p.errorf(member.tok, "table %s is already in table group %s", key, prev)
			}
			claimed[key] = group.Name
			group.Tables = append(group.Tables, key)
		}
		s := p.ensureSchema(group.Schema)
		s.TableGroups = append(s.TableGroups, group)
	}

	return nil
}

func (p *parser) resolveRef(pending pendingRef) (schema.Ref, error) {
	left, right := pending.endpoints[0], pending.endpoints[1]
	if len(left.fields) != len(right.fields) {
		return schema.Ref{}, p.errorf(pending.tok, "ref %s - %s joins %d fields to %d",
			left.table, right.table, len(left.fields), len(right.fields))
	}

	ref := schema.Ref{Name: pending.name, OnDelete: pending.onDelete, OnUpdate: pending.onUpdate}
	for _, raw := range pending.endpoints {
		key, ok := p.lookupTable(raw.table)
		if !ok {
			return schema.Ref{}, p.errorf(raw.table.tok, "ref references unknown table %s", raw.table)
		}
		table := p.table(key)
		for _, field := range raw.fields {
			if !hasField(table, field) {
				return schema.Ref{}, p.errorf(raw.table.tok, "ref references unknown field %s.%s", key, field)
			}
		}
		ref.Endpoints = append(ref.Endpoints, schema.Endpoint{
			Schema:   key.Schema,
			Table:    key.Table,
			Fields:   raw.fields,
			Relation: raw.relation,
		})
	}
	return ref, nil
}

// lookupTable resolves a name written in a ref.
func (p *parser) lookupTable(name rawName) (schema.TableKey, bool) {
	if name.schema == "" {
		if key, ok := p.aliases[name.name]; ok {
			return key, true
		}
	}
	key := schema.TableKey{Schema: schema.NormalizeSchemaName(name.schema), Table: name.name}
	_, ok := p.tables[key]
	return key, ok
}

// lookupGroupMember resolves a name written in a table group of groupSchema.
func (p *parser) lookupGroupMember(groupSchema string, name rawName) (schema.TableKey, bool) {
	if name.schema == "" {
		key := schema.TableKey{Schema: groupSchema, Table: name.name}
		if _, ok := p.tables[key]; ok {
			return key, true
		}
	}
	return p.lookupTable(name)
}

func (p *parser) table(key schema.TableKey) *schema.Table {
	entry := p.tables[key]
	return &p.schemas[entry.schemaName].Tables[entry.index]
}

func hasField(t *schema.Table, name string) bool {
	for _, f := range t.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}
