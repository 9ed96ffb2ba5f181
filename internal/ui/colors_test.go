package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisable(t *testing.T) {
	saved := []string{ColorReset, ColorBold, ColorDim, ColorCyan, ColorGreen, ColorYellow, ColorWhite, ColorRed}
	t.Cleanup(func() {
		ColorReset, ColorBold, ColorDim, ColorCyan = saved[0], saved[1], saved[2], saved[3]
		ColorGreen, ColorYellow, ColorWhite, ColorRed = saved[4], saved[5], saved[6], saved[7]
	})

	ColorReset, ColorGreen = "\033[0m", "\033[32m"
	assert.Equal(t, "\033[32mok\033[0m", Success("ok"))

	Disable()
	assert.Equal(t, "ok", Success("ok"))
	assert.Equal(t, "note", Info("note"))
	assert.Empty(t, ColorCyan)
}
