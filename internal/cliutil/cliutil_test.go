package cliutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintfWritesFormattedLineToWriter(t *testing.T) {
	var buf bytes.Buffer
	Printf(&buf, "%s has %d errors\n", "build", 3)
	assert.Equal(t, "build has 3 errors\n", buf.String())
}

func TestPrintfWithNoArgsWritesLiteralText(t *testing.T) {
	var buf bytes.Buffer
	Printf(&buf, "done\n")
	assert.Equal(t, "done\n", buf.String())
}
