package errs

import (
	"errors"
	"testing"
)

var errRoot = errors.New("root")

func TestWrapPreservesChain(t *testing.T) {
	err := Wrapf(Wrap(errRoot, "inner"), "outer %d", 1)
	if !errors.Is(err, errRoot) {
		t.Fatalf("errors.Is() lost the root")
	}
	if err.Error() != "outer 1: inner: root" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if Wrap(nil, "x") != nil || Wrapf(nil, "x") != nil {
		t.Fatalf("wrapping nil must return nil")
	}
}

func TestWithStackCapturesOnce(t *testing.T) {
	err := WithStack(errRoot)
	again := WithStack(Wrap(err, "ctx"))

	var se *StackError
	if !errors.As(again, &se) || len(se.Stack()) == 0 {
		t.Fatalf("expected stack in chain")
	}
	if !errors.Is(again, errRoot) {
		t.Fatalf("errors.Is() lost the root")
	}
	chain := ErrorChainStrings(again)
	if len(chain) != 3 {
		t.Fatalf("chain = %v", chain)
	}
}

func TestUserError(t *testing.T) {
	err := Wrap(User(errRoot, "the workbook is empty"), "import")
	msg, ok := UserMessage(err)
	if !ok || msg != "the workbook is empty" {
		t.Fatalf("UserMessage() = %q, %v", msg, ok)
	}
	if !errors.Is(err, errRoot) {
		t.Fatalf("errors.Is() lost the root")
	}
	if _, ok := UserMessage(errRoot); ok {
		t.Fatalf("UserMessage() on plain error should be false")
	}
	if User(nil, "x") != nil {
		t.Fatalf("User(nil) must be nil")
	}
}
