package prompt

import (
	"testing"

	"github.com/pkg/errors"
)

func TestFirstWinsChoosesFirst(t *testing.T) {
	idx, err := FirstWins{}.Choose("pick one", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if idx != 0 {
		t.Errorf("Choose = %d, want 0", idx)
	}
}

func TestFirstWinsConfirmIsYes(t *testing.T) {
	ok, err := FirstWins{}.Confirm("proceed?", false)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if !ok {
		t.Error("Confirm = false, want true")
	}
}

func TestFirstWinsChooseEmptyIsError(t *testing.T) {
	if _, err := (FirstWins{}).Choose("pick one", nil); err == nil {
		t.Error("Choose with no options returned nil error")
	}
}

func TestInteractiveWithoutTerminal(t *testing.T) {
	if stdinIsTerminal() {
		t.Skip("stdin is a terminal")
	}

	if _, err := (Interactive{}).Choose("pick one", []string{"a", "b"}); !errors.Is(err, ErrNoTerminal) {
		t.Errorf("Choose error = %v, want ErrNoTerminal", err)
	}
	if _, err := (Interactive{}).Confirm("proceed?", false); !errors.Is(err, ErrNoTerminal) {
		t.Errorf("Confirm error = %v, want ErrNoTerminal", err)
	}
}
