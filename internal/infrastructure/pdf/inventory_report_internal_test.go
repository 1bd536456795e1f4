package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatThousands(t *testing.T) {
	cases := map[int64]string{
		0:        "0",
		999:      "999",
		25000:    "25.000",
		1000000:  "1.000.000",
		-1234567: "-1.234.567",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatThousands(in), in)
	}
}
