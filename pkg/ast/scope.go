package ast

// Static scoping helpers used by declaration instantiation.

// VarDeclaredNames collects names declared with var anywhere in the list,
// without descending into nested functions or classes.
func VarDeclaredNames(body []Statement) []string {
	var names []string
	for _, s := range body {
		names = appendVarNames(names, s)
	}
	return names
}

func appendVarNames(names []string, s Statement) []string {
	switch s := s.(type) {
	case *VariableDeclaration:
		if s.Kind == DeclareVar {
			for _, d := range s.Declarations {
				names = append(names, d.Target.BoundNames()...)
			}
		}
	case *BlockStatement:
		names = append(names, VarDeclaredNames(s.Body)...)
	case *IfStatement:
		names = appendVarNames(names, s.Consequent)
		if s.Alternate != nil {
			names = appendVarNames(names, s.Alternate)
		}
	case *WhileStatement:
		names = appendVarNames(names, s.Body)
	case *LabeledStatement:
		names = appendVarNames(names, s.Body)
	case *TryStatement:
		names = appendVarNames(names, s.Block)
		if s.Handler != nil {
			names = appendVarNames(names, s.Handler)
		}
		if s.Finalizer != nil {
			names = appendVarNames(names, s.Finalizer)
		}
	}
	return names
}

// TopLevelFunctionDeclarations returns the function declarations that are
// var-scoped at the top of a function body or script.
func TopLevelFunctionDeclarations(body []Statement) []*FunctionDeclaration {
	var decls []*FunctionDeclaration
	for _, s := range body {
		for {
			l, ok := s.(*LabeledStatement)
			if !ok {
				break
			}
			s = l.Body
		}
		if fd, ok := s.(*FunctionDeclaration); ok {
			decls = append(decls, fd)
		}
	}
	return decls
}

// TopLevelVarDeclaredNames is VarDeclaredNames plus the names of top-level
// function declarations.
func TopLevelVarDeclaredNames(body []Statement) []string {
	var names []string
	for _, fd := range TopLevelFunctionDeclarations(body) {
		names = append(names, fd.Function.Name)
	}
	return append(names, VarDeclaredNames(body)...)
}

// TopLevelLexicalDeclarations returns the let, const and class declarations
// directly in body.
func TopLevelLexicalDeclarations(body []Statement) []Statement {
	var decls []Statement
	for _, s := range body {
		switch d := s.(type) {
		case *VariableDeclaration:
			if d.Kind != DeclareVar {
				decls = append(decls, d)
			}
		case *ClassDeclaration:
			decls = append(decls, d)
		}
	}
	return decls
}

// BlockLexicalDeclarations is TopLevelLexicalDeclarations plus function
// declarations, which are block scoped inside blocks.
func BlockLexicalDeclarations(body []Statement) []Statement {
	var decls []Statement
	for _, s := range body {
		switch d := s.(type) {
		case *VariableDeclaration:
			if d.Kind != DeclareVar {
				decls = append(decls, d)
			}
		case *ClassDeclaration, *FunctionDeclaration:
			decls = append(decls, d)
		}
	}
	return decls
}

// DeclarationBoundNames returns the names a lexical declaration binds.
func DeclarationBoundNames(s Statement) []string {
	switch d := s.(type) {
	case *VariableDeclaration:
		var names []string
		for _, decl := range d.Declarations {
			names = append(names, decl.Target.BoundNames()...)
		}
		return names
	case *ClassDeclaration:
		return []string{d.Class.Name}
	case *FunctionDeclaration:
		return []string{d.Function.Name}
	}
	return nil
}

// IsConstantDeclaration reports whether s declares const bindings.
func IsConstantDeclaration(s Statement) bool {
	d, ok := s.(*VariableDeclaration)
	return ok && d.Kind == DeclareConst
}

// LexicallyDeclaredNames returns every name bound by the top-level lexical
// declarations of body.
func LexicallyDeclaredNames(body []Statement) []string {
	var names []string
	for _, d := range TopLevelLexicalDeclarations(body) {
		names = append(names, DeclarationBoundNames(d)...)
	}
	return names
}
