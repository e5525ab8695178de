package ast

func (m *Module) NodePos() Position  { return m.Pos }
func (*Module) NodeType() NodeType   { return MODULE }

func (f *FunctionDef) NodePos() Position { return f.Pos }
func (*FunctionDef) NodeType() NodeType  { return FUNCTION_DEF }

func (p *Param) NodePos() Position { return p.Pos }
func (*Param) NodeType() NodeType  { return PARAM }

func (s *AssignStmt) NodePos() Position { return s.Pos }
func (*AssignStmt) NodeType() NodeType  { return ASSIGN_STMT }

func (s *AugAssignStmt) NodePos() Position { return s.Pos }
func (*AugAssignStmt) NodeType() NodeType  { return AUG_ASSIGN_STMT }

func (s *ReturnStmt) NodePos() Position { return s.Pos }
func (*ReturnStmt) NodeType() NodeType  { return RETURN_STMT }

func (s *IfStmt) NodePos() Position { return s.Pos }
func (*IfStmt) NodeType() NodeType  { return IF_STMT }

func (s *WhileStmt) NodePos() Position { return s.Pos }
func (*WhileStmt) NodeType() NodeType  { return WHILE_STMT }

func (s *ForStmt) NodePos() Position { return s.Pos }
func (*ForStmt) NodeType() NodeType  { return FOR_STMT }

func (s *TryStmt) NodePos() Position { return s.Pos }
func (*TryStmt) NodeType() NodeType  { return TRY_STMT }

func (h *ExceptHandler) NodePos() Position { return h.Pos }
func (*ExceptHandler) NodeType() NodeType  { return EXCEPT_HANDLER }

func (s *RaiseStmt) NodePos() Position { return s.Pos }
func (*RaiseStmt) NodeType() NodeType  { return RAISE_STMT }

func (s *ExprStmt) NodePos() Position { return s.Pos }
func (*ExprStmt) NodeType() NodeType  { return EXPR_STMT }

func (s *PassStmt) NodePos() Position { return s.Pos }
func (*PassStmt) NodeType() NodeType  { return PASS_STMT }

func (s *BreakStmt) NodePos() Position { return s.Pos }
func (*BreakStmt) NodeType() NodeType  { return BREAK_STMT }

func (s *ContinueStmt) NodePos() Position { return s.Pos }
func (*ContinueStmt) NodeType() NodeType  { return CONTINUE_STMT }

func (e *NameExpr) NodePos() Position { return e.Pos }
func (*NameExpr) NodeType() NodeType  { return NAME_EXPR }

func (e *ConstantExpr) NodePos() Position { return e.Pos }
func (*ConstantExpr) NodeType() NodeType  { return CONSTANT_EXPR }

func (e *BinOpExpr) NodePos() Position { return e.Pos }
func (*BinOpExpr) NodeType() NodeType  { return BINOP_EXPR }

func (e *UnaryOpExpr) NodePos() Position { return e.Pos }
func (*UnaryOpExpr) NodeType() NodeType  { return UNARYOP_EXPR }

func (e *BoolOpExpr) NodePos() Position { return e.Pos }
func (*BoolOpExpr) NodeType() NodeType  { return BOOLOP_EXPR }

func (e *CompareExpr) NodePos() Position { return e.Pos }
func (*CompareExpr) NodeType() NodeType  { return COMPARE_EXPR }

func (e *CallExpr) NodePos() Position { return e.Pos }
func (*CallExpr) NodeType() NodeType  { return CALL_EXPR }

func (e *AttributeExpr) NodePos() Position { return e.Pos }
func (*AttributeExpr) NodeType() NodeType  { return ATTRIBUTE_EXPR }

func (e *SubscriptExpr) NodePos() Position { return e.Pos }
func (*SubscriptExpr) NodeType() NodeType  { return SUBSCRIPT_EXPR }

func (e *SliceExpr) NodePos() Position { return e.Pos }
func (*SliceExpr) NodeType() NodeType  { return SLICE_EXPR }

func (e *ListExpr) NodePos() Position { return e.Pos }
func (*ListExpr) NodeType() NodeType  { return LIST_EXPR }

func (e *TupleExpr) NodePos() Position { return e.Pos }
func (*TupleExpr) NodeType() NodeType  { return TUPLE_EXPR }

func (e *DictExpr) NodePos() Position { return e.Pos }
func (*DictExpr) NodeType() NodeType  { return DICT_EXPR }

func (e *SetExpr) NodePos() Position { return e.Pos }
func (*SetExpr) NodeType() NodeType  { return SET_EXPR }

func (e *ListCompExpr) NodePos() Position { return e.Pos }
func (*ListCompExpr) NodeType() NodeType  { return LIST_COMP_EXPR }

func (e *YieldExpr) NodePos() Position { return e.Pos }
func (*YieldExpr) NodeType() NodeType  { return YIELD_EXPR }

func (*AssignStmt) isStmt()    {}
func (*AugAssignStmt) isStmt() {}
func (*ReturnStmt) isStmt()    {}
func (*IfStmt) isStmt()        {}
func (*WhileStmt) isStmt()     {}
func (*ForStmt) isStmt()       {}
func (*TryStmt) isStmt()       {}
func (*RaiseStmt) isStmt()     {}
func (*ExprStmt) isStmt()      {}
func (*PassStmt) isStmt()      {}
func (*BreakStmt) isStmt()     {}
func (*ContinueStmt) isStmt()  {}

func (*NameExpr) isExpr()      {}
func (*ConstantExpr) isExpr()  {}
func (*BinOpExpr) isExpr()     {}
func (*UnaryOpExpr) isExpr()   {}
func (*BoolOpExpr) isExpr()    {}
func (*CompareExpr) isExpr()   {}
func (*CallExpr) isExpr()      {}
func (*AttributeExpr) isExpr() {}
func (*SubscriptExpr) isExpr() {}
func (*SliceExpr) isExpr()     {}
func (*ListExpr) isExpr()      {}
func (*TupleExpr) isExpr()     {}
func (*DictExpr) isExpr()      {}
func (*SetExpr) isExpr()       {}
func (*ListCompExpr) isExpr()  {}
func (*YieldExpr) isExpr()     {}
