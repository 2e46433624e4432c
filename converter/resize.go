package converter

import "math"

type Size struct {
	Width  int
	Height int
}

// Bounds are the requested maximum dimensions. Zero means unset.
type Bounds struct {
	MaxWidth  int
	MaxHeight int
}

func (b Bounds) IsZero() bool {
	return b.MaxWidth == 0 && b.MaxHeight == 0
}

// Plan is the target handed to the encoder. A zero Width or Height is left for
// the encoder to derive from the aspect ratio. Contain asks for the image to fit
// inside Width x Height.
type Plan struct {
	Width   int
	Height  int
	Contain bool
}

// PlanResize decides whether natural needs to shrink to satisfy bounds. It never
// upscales.
func PlanResize(natural Size, bounds Bounds) (Plan, bool) {
	switch {
	case bounds.MaxWidth > 0 && bounds.MaxHeight > 0:
		if natural.Width > bounds.MaxWidth || natural.Height > bounds.MaxHeight {
			return Plan{Width: bounds.MaxWidth, Height: bounds.MaxHeight, Contain: true}, true
		}
	case bounds.MaxWidth > 0:
		if natural.Width > bounds.MaxWidth {
			return Plan{Width: bounds.MaxWidth}, true
		}
	case bounds.MaxHeight > 0:
		if natural.Height > bounds.MaxHeight {
			return Plan{Height: bounds.MaxHeight}, true
		}
	}

	return Plan{}, false
}

// Fit returns the dimensions natural scales to under the plan, keeping the aspect
// ratio.
func (p Plan) Fit(natural Size) Size {
	if natural.Width <= 0 || natural.Height <= 0 {
		return natural
	}

	w, h := float64(natural.Width), float64(natural.Height)
	scale := 1.0
	switch {
	case p.Width > 0 && p.Height > 0:
		scale = math.Min(float64(p.Width)/w, float64(p.Height)/h)
	case p.Width > 0:
		scale = float64(p.Width) / w
	case p.Height > 0:
		scale = float64(p.Height) / h
	}

	return Size{
		Width:  max(1, int(math.Round(w*scale))),
		Height: max(1, int(math.Round(h*scale))),
	}
}
