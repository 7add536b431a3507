package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteCountsSortedWithTotal(t *testing.T) {
	var buf bytes.Buffer
	writeCounts(&buf, map[string]int{
		"UNDP":      120,
		"AidData":   8,
		"WorldBank": 45,
	})

	assert.Equal(t,
		"AidData                      8\n"+
			"UNDP                         120\n"+
			"WorldBank                    45\n"+
			"total                        173\n",
		buf.String(),
	)
}

func TestWriteCountsEmpty(t *testing.T) {
	var buf bytes.Buffer
	writeCounts(&buf, map[string]int{})
	assert.Equal(t, "total                        0\n", buf.String())
}
