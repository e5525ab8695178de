package hir

import "pyrite/internal/ast"

func (f *Function) NodeID() int            { return f.ID }
func (f *Function) NodePos() ast.Position  { return f.Pos }
func (p *Param) NodeID() int               { return p.ID }
func (p *Param) NodePos() ast.Position     { return p.Pos }

func (s *AssignStmt) NodeID() int      { return s.ID }
func (s *AssignStmt) NodePos() ast.Position { return s.Pos }

func (s *IndexAssignStmt) NodeID() int           { return s.ID }
func (s *IndexAssignStmt) NodePos() ast.Position { return s.Pos }

func (s *TupleAssignStmt) NodeID() int           { return s.ID }
func (s *TupleAssignStmt) NodePos() ast.Position { return s.Pos }

func (s *ReturnStmt) NodeID() int           { return s.ID }
func (s *ReturnStmt) NodePos() ast.Position { return s.Pos }

func (s *IfStmt) NodeID() int           { return s.ID }
func (s *IfStmt) NodePos() ast.Position { return s.Pos }

func (s *WhileStmt) NodeID() int           { return s.ID }
func (s *WhileStmt) NodePos() ast.Position { return s.Pos }

func (s *ForStmt) NodeID() int           { return s.ID }
func (s *ForStmt) NodePos() ast.Position { return s.Pos }

func (s *TryStmt) NodeID() int           { return s.ID }
func (s *TryStmt) NodePos() ast.Position { return s.Pos }

func (h *Handler) NodeID() int           { return h.ID }
func (h *Handler) NodePos() ast.Position { return h.Pos }

func (s *RaiseStmt) NodeID() int           { return s.ID }
func (s *RaiseStmt) NodePos() ast.Position { return s.Pos }

func (s *ExprStmt) NodeID() int           { return s.ID }
func (s *ExprStmt) NodePos() ast.Position { return s.Pos }

func (s *YieldStmt) NodeID() int           { return s.ID }
func (s *YieldStmt) NodePos() ast.Position { return s.Pos }

func (s *PassStmt) NodeID() int           { return s.ID }
func (s *PassStmt) NodePos() ast.Position { return s.Pos }

func (s *BreakStmt) NodeID() int           { return s.ID }
func (s *BreakStmt) NodePos() ast.Position { return s.Pos }

func (s *ContinueStmt) NodeID() int           { return s.ID }
func (s *ContinueStmt) NodePos() ast.Position { return s.Pos }

func (e *LitExpr) NodeID() int           { return e.ID }
func (e *LitExpr) NodePos() ast.Position { return e.Pos }

func (e *VarExpr) NodeID() int           { return e.ID }
func (e *VarExpr) NodePos() ast.Position { return e.Pos }

func (e *BinaryExpr) NodeID() int           { return e.ID }
func (e *BinaryExpr) NodePos() ast.Position { return e.Pos }

func (e *UnaryExpr) NodeID() int           { return e.ID }
func (e *UnaryExpr) NodePos() ast.Position { return e.Pos }

func (e *CallExpr) NodeID() int           { return e.ID }
func (e *CallExpr) NodePos() ast.Position { return e.Pos }

func (e *MethodCallExpr) NodeID() int           { return e.ID }
func (e *MethodCallExpr) NodePos() ast.Position { return e.Pos }

func (e *IndexExpr) NodeID() int           { return e.ID }
func (e *IndexExpr) NodePos() ast.Position { return e.Pos }

func (e *SliceExpr) NodeID() int           { return e.ID }
func (e *SliceExpr) NodePos() ast.Position { return e.Pos }

func (e *AttrExpr) NodeID() int           { return e.ID }
func (e *AttrExpr) NodePos() ast.Position { return e.Pos }

func (e *ListExpr) NodeID() int           { return e.ID }
func (e *ListExpr) NodePos() ast.Position { return e.Pos }

func (e *TupleExpr) NodeID() int           { return e.ID }
func (e *TupleExpr) NodePos() ast.Position { return e.Pos }

func (e *DictExpr) NodeID() int           { return e.ID }
func (e *DictExpr) NodePos() ast.Position { return e.Pos }

func (e *SetExpr) NodeID() int           { return e.ID }
func (e *SetExpr) NodePos() ast.Position { return e.Pos }

func (*AssignStmt) isStmt()      {}
func (*IndexAssignStmt) isStmt() {}
func (*TupleAssignStmt) isStmt() {}
func (*ReturnStmt) isStmt()      {}
func (*IfStmt) isStmt()          {}
func (*WhileStmt) isStmt()       {}
func (*ForStmt) isStmt()         {}
func (*TryStmt) isStmt()         {}
func (*RaiseStmt) isStmt()       {}
func (*ExprStmt) isStmt()        {}
func (*YieldStmt) isStmt()       {}
func (*PassStmt) isStmt()        {}
func (*BreakStmt) isStmt()       {}
func (*ContinueStmt) isStmt()    {}

func (*LitExpr) isExpr()        {}
func (*VarExpr) isExpr()        {}
func (*BinaryExpr) isExpr()     {}
func (*UnaryExpr) isExpr()      {}
func (*CallExpr) isExpr()       {}
func (*MethodCallExpr) isExpr() {}
func (*IndexExpr) isExpr()      {}
func (*SliceExpr) isExpr()      {}
func (*AttrExpr) isExpr()       {}
func (*ListExpr) isExpr()       {}
func (*TupleExpr) isExpr()      {}
func (*DictExpr) isExpr()       {}
func (*SetExpr) isExpr()        {}
