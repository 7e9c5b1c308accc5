package runtime

import "testing"

func TestArithmetic(t *testing.T) {
	cases := []struct {
		op   func(a, b Value) (Value, error)
		a, b int64
		want int64
	}{
		{Add, 2, 3, 5},
		{Sub, 5, 3, 2},
		{Mul, 4, 3, 12},
		{Div, 7, 2, 3},
		{Div, -7, 2, -3},
	}
	for _, c := range cases {
		got, err := c.op(Integer{Val: c.a}, Integer{Val: c.b})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.(Integer).Val != c.want {
			t.Fatalf("got %v, want %d", got, c.want)
		}
	}
}

func TestDivByZero(t *testing.T) {
	if _, err := Div(Integer{Val: 1}, Integer{Val: 0}); err == nil {
		t.Fatal("expected an ArithmeticError")
	} else if _, ok := err.(*ArithmeticError); !ok {
		t.Fatalf("expected *ArithmeticError, got %T", err)
	}
}

func TestArithmeticTypeMismatch(t *testing.T) {
	if _, err := Add(Integer{Val: 1}, Boolean{Val: true}); err == nil {
		t.Fatal("expected a TypeError")
	} else if _, ok := err.(*TypeError); !ok {
		t.Fatalf("expected *TypeError, got %T", err)
	}
}

func TestEquals(t *testing.T) {
	if !Equals(Null{}, Null{}) {
		t.Fatal("Null should equal Null")
	}
	if Equals(Integer{Val: 1}, Boolean{Val: true}) {
		t.Fatal("values of different variants should never be equal")
	}
	if !Equals(ChannelRef{ID: 7}, ChannelRef{ID: 7}) {
		t.Fatal("ChannelRefs with the same id should be equal")
	}
	if Equals(ChannelRef{ID: 7}, ChannelRef{ID: 8}) {
		t.Fatal("ChannelRefs with different ids should not be equal")
	}
}

func TestIsTruthy(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{Null{}, false},
		{Boolean{Val: false}, false},
		{Boolean{Val: true}, true},
		{Integer{Val: 0}, false},
		{Integer{Val: -1}, true},
		{ChannelRef{ID: 0}, true},
	}
	for _, c := range cases {
		if got := IsTruthy(c.v); got != c.want {
			t.Fatalf("IsTruthy(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestCompare(t *testing.T) {
	got, err := Compare("<", Integer{Val: 1}, Integer{Val: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.(Boolean).Val {
		t.Fatal("expected 1 < 2 to be true")
	}
}
