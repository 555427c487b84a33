package domain

const (
	DialogScreenPercent  = 70
	FallbackDialogWidth  = 800
	FallbackDialogHeight = 600
)

type DialogDimensions struct {
	Width  int
	Height int
}

// DialogDimensionsFor returns 70% of the given screen size, or the fixed
// fallback when the screen size is unknown.
func DialogDimensionsFor(screenWidth, screenHeight int) DialogDimensions {
	if screenWidth <= 0 || screenHeight <= 0 {
		return DialogDimensions{Width: FallbackDialogWidth, Height: FallbackDialogHeight}
	}

	return DialogDimensions{
		Width:  screenWidth * DialogScreenPercent / 100,
		Height: screenHeight * DialogScreenPercent / 100,
	}
}

// DialogRequest describes one round of the interactive surface.
type DialogRequest struct {
	Title      string
	Dimensions DialogDimensions
}
