package image

import (
	"github.com/h2non/bimg"

	"transcoder/converter"
)

type Transform func(o *bimg.Options)

// WithPlan applies a resize plan. bimg keeps the aspect ratio when only one side is
// set and fits inside the box when both are.
func WithPlan(plan *converter.Plan) Transform {
	return func(o *bimg.Options) {
		if plan == nil {
			return
		}
		o.Width = plan.Width
		o.Height = plan.Height
		o.Enlarge = false
		o.Crop = false
		o.Embed = false
	}
}

func WithStripMetadata() Transform {
	return func(o *bimg.Options) {
		o.StripMetadata = true
	}
}
