package cli

import (
	"reflect"
	"testing"
)

func TestExtractKeyTerms(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"El perro es un animal", []string{"perro", "animal"}},
		{"What is the sun made of?", []string{"sun", "made"}},
		{"perro PERRO Perro", []string{"perro"}},
		{"a y de el", nil},
		{"", nil},
		{"¿Qué relación hay entre el sol y el calor?", []string{"qué", "relación", "hay", "entre", "sol", "calor"}},
	}

	for _, c := range cases {
		got := extractKeyTerms(c.in)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("extractKeyTerms(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
