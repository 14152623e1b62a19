// Package ast holds the syntax tree handed to the engine core. Trees are
// produced by the fixture decoder; the engine treats them as read-only.
package ast

// Position is a 1-based line/column location of a node in its source file.
type Position struct {
	Line   int
	Column int
}

func (p Position) Pos() Position { return p }

// Node is implemented by every syntax tree node.
type Node interface {
	Pos() Position
}

// Statement is a node that can appear in a statement list.
type Statement interface {
	Node
	statementNode()
}

// Expression is a node that evaluates to a value or a reference.
type Expression interface {
	Node
	expressionNode()
}

// Pattern is a binding target in declarations and parameter lists.
type Pattern interface {
	Node
	patternNode()
	BoundNames() []string
}

// Script is the root of a decoded program.
type Script struct {
	Position
	Strict bool
	Body   []Statement
}

// --- Patterns ---

// BindingIdentifier binds a single name.
type BindingIdentifier struct {
	Position
	Name string
}

func (b *BindingIdentifier) patternNode()         {}
func (b *BindingIdentifier) BoundNames() []string { return []string{b.Name} }

// ObjectPattern destructures named properties of an object.
type ObjectPattern struct {
	Position
	Properties []*PatternProperty
}

// PatternProperty binds the property Key of the source object to Target.
type PatternProperty struct {
	Key     string
	Target  Pattern
	Default Expression
}

func (p *ObjectPattern) patternNode() {}
func (p *ObjectPattern) BoundNames() []string {
	var names []string
	for _, prop := range p.Properties {
		names = append(names, prop.Target.BoundNames()...)
	}
	return names
}

// --- Functions and classes ---

// FunctionNode is the shared shape of every function-like construct.
type FunctionNode struct {
	Position
	Name       string
	Params     *FormalParameters
	Kind       BodyKind
	Body       []Statement // statement bodies
	Expression Expression  // concise expression bodies
	Strict     bool
	Arrow      bool
	SourceText string
}

// IsExpressionBody reports whether the body is a bare expression.
func (f *FunctionNode) IsExpressionBody() bool {
	return f.Kind == ConciseExpressionBody || f.Kind == AsyncConciseExpressionBody
}

// MethodKind distinguishes object and class members.
type MethodKind uint8

const (
	MethodNormal MethodKind = iota
	MethodGetter
	MethodSetter
)

// ClassNode describes a class declaration or expression.
type ClassNode struct {
	Position
	Name        string
	Extends     Expression
	Constructor *FunctionNode
	Methods     []*ClassMethod
}

// ClassMethod is a method, getter or setter defined in a class body.
type ClassMethod struct {
	Static   bool
	Kind     MethodKind
	Key      string
	Function *FunctionNode
}

// --- Statements ---

type ExpressionStatement struct {
	Position
	Expression Expression
}

// DeclarationKind is var, let or const.
type DeclarationKind uint8

const (
	DeclareVar DeclarationKind = iota
	DeclareLet
	DeclareConst
)

func (k DeclarationKind) String() string {
	switch k {
	case DeclareLet:
		return "let"
	case DeclareConst:
		return "const"
	default:
		return "var"
	}
}

type VariableDeclaration struct {
	Position
	Kind         DeclarationKind
	Declarations []*VariableDeclarator
}

type VariableDeclarator struct {
	Target Pattern
	Init   Expression
}

type FunctionDeclaration struct {
	Position
	Function *FunctionNode
}

type ClassDeclaration struct {
	Position
	Class *ClassNode
}

type ReturnStatement struct {
	Position
	Argument Expression // nil for a bare return
}

type ThrowStatement struct {
	Position
	Argument Expression
}

type IfStatement struct {
	Position
	Test       Expression
	Consequent Statement
	Alternate  Statement
}

type BlockStatement struct {
	Position
	Body []Statement
}

type WhileStatement struct {
	Position
	Test Expression
	Body Statement
}

type LabeledStatement struct {
	Position
	Label string
	Body  Statement
}

type BreakStatement struct {
	Position
	Label string
}

type ContinueStatement struct {
	Position
	Label string
}

type TryStatement struct {
	Position
	Block     *BlockStatement
	Param     Pattern // nil when the catch clause has no binding
	Handler   *BlockStatement
	Finalizer *BlockStatement
}

type EmptyStatement struct {
	Position
}

func (*ExpressionStatement) statementNode() {}
func (*VariableDeclaration) statementNode() {}
func (*FunctionDeclaration) statementNode() {}
func (*ClassDeclaration) statementNode()    {}
func (*ReturnStatement) statementNode()     {}
func (*ThrowStatement) statementNode()      {}
func (*IfStatement) statementNode()         {}
func (*BlockStatement) statementNode()      {}
func (*WhileStatement) statementNode()      {}
func (*LabeledStatement) statementNode()    {}
func (*BreakStatement) statementNode()      {}
func (*ContinueStatement) statementNode()   {}
func (*TryStatement) statementNode()        {}
func (*EmptyStatement) statementNode()      {}

// --- Expressions ---

type NumberLiteral struct {
	Position
	Value float64
}

type StringLiteral struct {
	Position
	Value string
}

type BooleanLiteral struct {
	Position
	Value bool
}

type NullLiteral struct {
	Position
}

type UndefinedLiteral struct {
	Position
}

type Identifier struct {
	Position
	Name string
}

type ThisExpression struct {
	Position
}

type NewTargetExpression struct {
	Position
}

// PropertyKind distinguishes object literal members.
type PropertyKind uint8

const (
	PropertyInit PropertyKind = iota
	PropertyMethod
	PropertyGetter
	PropertySetter
)

type ObjectLiteral struct {
	Position
	Properties []*Property
}

type Property struct {
	Kind     PropertyKind
	Key      string
	Computed Expression // non-nil for [expr] keys
	Value    Expression // PropertyInit
	Function *FunctionNode
}

type FunctionExpression struct {
	Position
	Function *FunctionNode
}

type ClassExpression struct {
	Position
	Class *ClassNode
}

// MemberExpression is object.property or object[computed].
type MemberExpression struct {
	Position
	Object   Expression
	Property string
	Computed Expression
}

// SuperMember is super.property or super[computed].
type SuperMember struct {
	Position
	Property string
	Computed Expression
}

// SpreadElement forwards the elements of an array-like value as arguments.
type SpreadElement struct {
	Position
	Argument Expression
}

type CallExpression struct {
	Position
	Callee    Expression
	Arguments []Expression
}

type SuperCall struct {
	Position
	Arguments []Expression
}

type NewExpression struct {
	Position
	Callee    Expression
	Arguments []Expression
}

type AssignmentExpression struct {
	Position
	Operator string // "=", "+=", "-=", ...
	Target   Expression
	Value    Expression
}

type BinaryExpression struct {
	Position
	Operator string
	Left     Expression
	Right    Expression
}

type LogicalExpression struct {
	Position
	Operator string // "&&", "||", "??"
	Left     Expression
	Right    Expression
}

type UnaryExpression struct {
	Position
	Operator string // "!", "-", "+", "typeof", "void", "delete"
	Argument Expression
}

type ConditionalExpression struct {
	Position
	Test       Expression
	Consequent Expression
	Alternate  Expression
}

type YieldExpression struct {
	Position
	Argument Expression // nil yields undefined
	Delegate bool
}

type AwaitExpression struct {
	Position
	Argument Expression
}

func (*NumberLiteral) expressionNode()         {}
func (*StringLiteral) expressionNode()         {}
func (*BooleanLiteral) expressionNode()        {}
func (*NullLiteral) expressionNode()           {}
func (*UndefinedLiteral) expressionNode()      {}
func (*Identifier) expressionNode()            {}
func (*ThisExpression) expressionNode()        {}
func (*NewTargetExpression) expressionNode()   {}
func (*ObjectLiteral) expressionNode()         {}
func (*FunctionExpression) expressionNode()    {}
func (*ClassExpression) expressionNode()       {}
func (*MemberExpression) expressionNode()      {}
func (*SuperMember) expressionNode()           {}
func (*SpreadElement) expressionNode()         {}
func (*CallExpression) expressionNode()        {}
func (*SuperCall) expressionNode()             {}
func (*NewExpression) expressionNode()         {}
func (*AssignmentExpression) expressionNode()  {}
func (*BinaryExpression) expressionNode()      {}
func (*LogicalExpression) expressionNode()     {}
func (*UnaryExpression) expressionNode()       {}
func (*ConditionalExpression) expressionNode() {}
func (*YieldExpression) expressionNode()       {}
func (*AwaitExpression) expressionNode()       {}
