package printer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputSummary(t *testing.T) {
	tests := map[string]struct {
		lines int
		size  int64
		exp   string
	}{
		"No output should be summarized as empty.": {
			exp: "0 lines, 0 B",
		},

		"A single line should use the singular.": {
			lines: 1,
			size:  6,
			exp:   "1 line, 6 B",
		},

		"Sizes under a KiB should be shown in bytes.": {
			lines: 40,
			size:  1023,
			exp:   "40 lines, 1023 B",
		},

		"Sizes of a KiB or more should be shown with one decimal.": {
			lines: 300,
			size:  1536,
			exp:   "300 lines, 1.5 KiB",
		},

		"Big outputs should use the biggest fitting unit.": {
			lines: 1000000,
			size:  700 * 1024 * 1024,
			exp:   "1000000 lines, 700.0 MiB",
		},

		"Sizes past the last unit should stay in it.": {
			lines: 2,
			size:  2048 * 1024 * 1024 * 1024 * 1024,
			exp:   "2 lines, 2048.0 TiB",
		},

		"A negative size should be shown as zero.": {
			lines: 3,
			size:  -1,
			exp:   "3 lines, 0 B",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, outputSummary(test.lines, test.size))
		})
	}
}
