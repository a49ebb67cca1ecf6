package render

import "github.com/gdamore/tcell/v2"

// ColorTheme defines application colors.
type ColorTheme struct {
	Background tcell.Color
	HeaderBg   tcell.Color
	HeaderFg   tcell.Color
	FooterBg   tcell.Color
	FooterFg   tcell.Color
	PendingFg  tcell.Color
	ErrorFg    tcell.Color
}

// GetColorTheme returns the default color scheme.
func GetColorTheme() ColorTheme {
	return ColorTheme{
		Background: tcell.ColorBlack,
		HeaderBg:   tcell.ColorDefault,
		HeaderFg:   tcell.ColorDefault,
		FooterBg:   tcell.ColorDefault,
		FooterFg:   tcell.ColorDefault,
		PendingFg:  tcell.ColorLightSlateGray,
		ErrorFg:    tcell.ColorRed,
	}
}
