package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderProgress renders a bar like [████░░░░]  45%. pct is a fraction in
// [0,1]; the bar is green above two thirds, yellow above one third, red below.
func RenderProgress(pct float64, width int) string {
	pct = clamp(pct)
	return fmt.Sprintf("[%s] %3.0f%%", bar(pct, width), pct*100)
}

// RenderPercent renders a whole-number percentage as a progress bar.
func RenderPercent(pct int, width int) string {
	return RenderProgress(float64(pct)/100, width)
}

func bar(pct float64, width int) string {
	if width < 2 {
		width = 2
	}
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	blocks := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	if pct < 0.33 {
		style = StyleRed
	} else if pct < 0.66 {
		style = StyleYellow
	}
	return style.Render(blocks)
}

func clamp(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 1 {
		return 1
	}
	return pct
}
