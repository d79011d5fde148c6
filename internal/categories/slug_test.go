package categories

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Papelaria", "papelaria"},
		{"Papelaria e Presentes", "papelaria-e-presentes"},
		{"Eletrônicos", "eletronicos"},
		{"Jogos & Brinquedos", "jogos-brinquedos"},
		{"  Revistas  ", "revistas"},
		{"Ação / Aventura", "acao-aventura"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.name), "input %q", tc.name)
	}
}
