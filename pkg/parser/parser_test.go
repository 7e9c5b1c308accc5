package parser

import (
	"testing"

	"github.com/AaronC81/conker/pkg/ast"
)

func parseOne(t *testing.T, src string) *ast.TaskDef {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(prog.Tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(prog.Tasks))
	}
	return prog.Tasks[0]
}

func TestParseSend(t *testing.T) {
	task := parseOne(t, "task Main\n    123 -> $out\n")
	if task.Name != "Main" || task.IsMulti {
		t.Fatalf("unexpected task header: %+v", task)
	}
	if len(task.Body.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(task.Body.Statements))
	}
	send, ok := task.Body.Statements[0].(*ast.Send)
	if !ok {
		t.Fatalf("expected *ast.Send, got %T", task.Body.Statements[0])
	}
	lit, ok := send.Value.(*ast.IntegerLiteral)
	if !ok || lit.Value != 123 {
		t.Fatalf("expected integer literal 123, got %#v", send.Value)
	}
	channel, ok := send.Channel.(*ast.Identifier)
	if !ok || channel.Name != "$out" {
		t.Fatalf("expected $out channel, got %#v", send.Channel)
	}
}

func TestParseMultiTaskHeader(t *testing.T) {
	task := parseOne(t, "task Printer[5]\n    $index -> $out\n")
	if !task.IsMulti || task.Multiplicity != 5 {
		t.Fatalf("unexpected header: %+v", task)
	}
}

func TestParseExplicitReceive(t *testing.T) {
	task := parseOne(t, "task Adder\n    a <- Main\n")
	recv, ok := task.Body.Statements[0].(*ast.Receive)
	if !ok {
		t.Fatalf("expected *ast.Receive, got %T", task.Body.Statements[0])
	}
	if recv.Target != "a" {
		t.Fatalf("expected target 'a', got %q", recv.Target)
	}
	explicit, ok := recv.Channel.(*ast.ExplicitChannel)
	if !ok {
		t.Fatalf("expected *ast.ExplicitChannel, got %T", recv.Channel)
	}
	id, ok := explicit.Expr.(*ast.Identifier)
	if !ok || id.Name != "Main" {
		t.Fatalf("expected identifier Main, got %#v", explicit.Expr)
	}
}

func TestParseBindingReceive(t *testing.T) {
	task := parseOne(t, "task B\n    val <- ?c\n")
	recv := task.Body.Statements[0].(*ast.Receive)
	binding, ok := recv.Channel.(*ast.BindingChannel)
	if !ok || binding.Name != "c" {
		t.Fatalf("expected binding channel 'c', got %#v", recv.Channel)
	}
}

func TestParseDiscardReceiveTarget(t *testing.T) {
	task := parseOne(t, "task A\n    _ <- B\n")
	recv := task.Body.Statements[0].(*ast.Receive)
	if recv.Target != "_" {
		t.Fatalf("expected discard target, got %q", recv.Target)
	}
}

func TestParseAssignmentAndArithmetic(t *testing.T) {
	task := parseOne(t, "task Main\n    x = 1 + 2 * 3\n")
	assign := task.Body.Statements[0].(*ast.Assignment)
	if assign.Target != "x" {
		t.Fatalf("unexpected target %q", assign.Target)
	}
	bin, ok := assign.Value.(*ast.BinaryExpr)
	if !ok || bin.Op != "+" {
		t.Fatalf("expected top-level '+', got %#v", assign.Value)
	}
	rhs, ok := bin.Right.(*ast.BinaryExpr)
	if !ok || rhs.Op != "*" {
		t.Fatalf("expected '*' to bind tighter than '+', got %#v", bin.Right)
	}
}

func TestParseWhileLoopIfExit(t *testing.T) {
	src := "task Main\n" +
		"    x = 0\n" +
		"    while x < 5\n" +
		"        x = x + 1\n" +
		"    loop\n" +
		"        if x == 5\n" +
		"            exit\n" +
		"        else\n" +
		"            x = x + 1\n"
	task := parseOne(t, src)
	if len(task.Body.Statements) != 3 {
		t.Fatalf("expected 3 top-level statements, got %d", len(task.Body.Statements))
	}
	while, ok := task.Body.Statements[1].(*ast.While)
	if !ok || len(while.Body.Statements) != 1 {
		t.Fatalf("unexpected while statement: %#v", task.Body.Statements[1])
	}
	loop, ok := task.Body.Statements[2].(*ast.Loop)
	if !ok || len(loop.Body.Statements) != 1 {
		t.Fatalf("unexpected loop statement: %#v", task.Body.Statements[2])
	}
	ifStmt, ok := loop.Body.Statements[0].(*ast.If)
	if !ok || ifStmt.Else == nil {
		t.Fatalf("unexpected if statement: %#v", loop.Body.Statements[0])
	}
	if _, ok := ifStmt.Then.Statements[0].(*ast.Exit); !ok {
		t.Fatalf("expected exit in then-branch, got %#v", ifStmt.Then.Statements[0])
	}
}

func TestParseIndexedTaskReference(t *testing.T) {
	task := parseOne(t, "task Main\n    v <- ConstantSource[0]\n")
	recv := task.Body.Statements[0].(*ast.Receive)
	explicit := recv.Channel.(*ast.ExplicitChannel)
	idx, ok := explicit.Expr.(*ast.IndexExpr)
	if !ok || idx.Task != "ConstantSource" {
		t.Fatalf("expected indexed reference to ConstantSource, got %#v", explicit.Expr)
	}
}

func TestParseNegativeLiteral(t *testing.T) {
	task := parseOne(t, "task Main\n    x = -5\n")
	assign := task.Body.Statements[0].(*ast.Assignment)
	lit, ok := assign.Value.(*ast.IntegerLiteral)
	if !ok || lit.Value != -5 {
		t.Fatalf("expected -5, got %#v", assign.Value)
	}
}

func TestParseRejectsUnexpectedToken(t *testing.T) {
	if _, err := Parse("task Main\n    ->\n"); err == nil {
		t.Fatal("expected a parse error")
	}
}
