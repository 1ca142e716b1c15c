package monitoring

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})

	Logf("hello %d", 42)
	assert.Equal(t, []string{"hello 42"}, lines)

	// nil installs a no-op logger rather than panicking
	SetLogger(nil)
	Logf("dropped")
	assert.Len(t, lines, 1)
}

func TestStage(t *testing.T) {
	defer SetLogger(nil)

	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})

	done := Stage("sample")
	done()

	assert.Len(t, lines, 2)
	assert.Equal(t, "stage sample: started", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "stage sample: done in "))
}
