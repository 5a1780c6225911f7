package values_test

import (
	"math/big"
	"testing"

	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

func TestMapAssocIsCopyOnWrite(t *testing.T) {
	base := values.NewMap().Assoc("a", 1)
	updated := base.Assoc("a", 2)
	if v, _ := base.Get("a"); v != 1 {
		t.Errorf("base[a] = %v, want 1 (Assoc must not mutate the receiver)", v)
	}
	if v, _ := updated.Get("a"); v != 2 {
		t.Errorf("updated[a] = %v, want 2", v)
	}
}

func TestMapGetKeywordStringFallback(t *testing.T) {
	m := values.NewMap().Assoc("name", "ada")
	if v, ok := m.Get(values.Keyword("name")); !ok || v != "ada" {
		t.Errorf("Get(Keyword(name)) = %v, %v, want ada, true", v, ok)
	}
	m2 := values.NewMap().Assoc(values.Keyword("name"), "ada")
	if v, ok := m2.Get("name"); !ok || v != "ada" {
		t.Errorf("Get(\"name\") = %v, %v, want ada, true", v, ok)
	}
}

func TestMapDissocRemovesBothAliases(t *testing.T) {
	m := values.NewMap().Assoc("a", 1).Assoc("b", 2)
	m2 := m.Dissoc(values.Keyword("a"))
	if _, ok := m2.Get("a"); ok {
		t.Error("Dissoc(Keyword(a)) left the string-keyed entry behind")
	}
	if m2.Len() != 1 {
		t.Errorf("Len = %d, want 1", m2.Len())
	}
}

func TestSetConjDedupesByValueEquality(t *testing.T) {
	s := values.NewSet().Conj(big.NewInt(1)).Conj(big.NewInt(1)).Conj(big.NewInt(2))
	if len(s.Items) != 2 {
		t.Errorf("Items = %v, want 2 distinct items", s.Items)
	}
}

func TestIsTruthy(t *testing.T) {
	testCases := []struct {
		name string
		v    interface{}
		want bool
	}{
		{"nil", nil, false},
		{"false", false, false},
		{"true", true, true},
		{"zero int", big.NewInt(0), true},
		{"empty string", "", true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := values.IsTruthy(tc.v); got != tc.want {
				t.Errorf("IsTruthy(%v) = %v, want %v", tc.v, got, tc.want)
			}
		})
	}
}

func TestEqualCrossesIntAndFloat(t *testing.T) {
	if !values.Equal(big.NewInt(2), 2.0) {
		t.Error("Equal(big.Int(2), 2.0) = false, want true")
	}
}

func TestEqualKeywordAndStringAreDistinct(t *testing.T) {
	if values.Equal(values.Keyword("a"), "a") {
		t.Error("Equal(Keyword(a), \"a\") = true, want false")
	}
}

func TestEqualVectorsAreOrderSensitive(t *testing.T) {
	a := values.NewVector(1, 2)
	b := values.NewVector(2, 1)
	if values.Equal(a, b) {
		t.Error("Equal should be order-sensitive for vectors")
	}
	c := values.NewVector(1, 2)
	if !values.Equal(a, c) {
		t.Error("Equal(a, c) = false, want true for identical vectors")
	}
}

func TestEqualSetsAreOrderInsensitive(t *testing.T) {
	a := values.NewSet().Conj(1).Conj(2)
	b := values.NewSet().Conj(2).Conj(1)
	if !values.Equal(a, b) {
		t.Error("Equal should be order-insensitive for sets")
	}
}

func TestLessOrdersNumbersAcrossIntAndFloat(t *testing.T) {
	if !values.Less(big.NewInt(1), 2.5) {
		t.Error("Less(1, 2.5) = false, want true")
	}
}

func TestLessOrdersStrings(t *testing.T) {
	if !values.Less("a", "b") {
		t.Error("Less(a, b) = false, want true")
	}
}

func TestLessPanicsOnUnorderedTypes(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Less(vector, vector) did not panic, want a *TypeMismatch")
		} else if _, ok := r.(*values.TypeMismatch); !ok {
			t.Errorf("panic value = %#v, want *values.TypeMismatch", r)
		}
	}()
	values.Less(values.NewVector(), values.NewVector())
}

func TestSortStableOrdersAscending(t *testing.T) {
	items := []interface{}{big.NewInt(3), big.NewInt(1), big.NewInt(2)}
	values.SortStable(items, values.Less)
	if items[0].(*big.Int).Int64() != 1 || items[2].(*big.Int).Int64() != 3 {
		t.Errorf("items = %v, want ascending order", items)
	}
}
