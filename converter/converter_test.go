package converter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcoder/converter"
)

func TestPlanResize(t *testing.T) {
	tests := []struct {
		name    string
		natural converter.Size
		bounds  converter.Bounds
		want    converter.Plan
		resize  bool
	}{
		{
			name:    "no bounds",
			natural: converter.Size{Width: 4000, Height: 2000},
		},
		{
			name:    "width only, larger",
			natural: converter.Size{Width: 4000, Height: 2000},
			bounds:  converter.Bounds{MaxWidth: 1920},
			want:    converter.Plan{Width: 1920},
			resize:  true,
		},
		{
			name:    "width only, already fits",
			natural: converter.Size{Width: 800, Height: 600},
			bounds:  converter.Bounds{MaxWidth: 1920},
		},
		{
			name:    "height only, larger",
			natural: converter.Size{Width: 800, Height: 600},
			bounds:  converter.Bounds{MaxHeight: 300},
			want:    converter.Plan{Height: 300},
			resize:  true,
		},
		{
			name:    "height only, equal",
			natural: converter.Size{Width: 800, Height: 600},
			bounds:  converter.Bounds{MaxHeight: 600},
		},
		{
			name:    "both, width exceeds",
			natural: converter.Size{Width: 4000, Height: 2000},
			bounds:  converter.Bounds{MaxWidth: 1920, MaxHeight: 1080},
			want:    converter.Plan{Width: 1920, Height: 1080, Contain: true},
			resize:  true,
		},
		{
			name:    "both, only height exceeds",
			natural: converter.Size{Width: 1000, Height: 3000},
			bounds:  converter.Bounds{MaxWidth: 1920, MaxHeight: 1080},
			want:    converter.Plan{Width: 1920, Height: 1080, Contain: true},
			resize:  true,
		},
		{
			name:    "both, fits",
			natural: converter.Size{Width: 10, Height: 10},
			bounds:  converter.Bounds{MaxWidth: 1920, MaxHeight: 1080},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, ok := converter.PlanResize(tt.natural, tt.bounds)
			assert.Equal(t, tt.resize, ok)
			assert.Equal(t, tt.want, plan)
		})
	}
}

func TestPlanFit(t *testing.T) {
	plan, ok := converter.PlanResize(converter.Size{Width: 4000, Height: 2000}, converter.Bounds{MaxWidth: 1920, MaxHeight: 1080})
	require.True(t, ok)

	got := plan.Fit(converter.Size{Width: 4000, Height: 2000})
	assert.Equal(t, converter.Size{Width: 1920, Height: 960}, got)

	tall := plan.Fit(converter.Size{Width: 1000, Height: 3000})
	assert.Equal(t, converter.Size{Width: 360, Height: 1080}, tall)

	assert.Equal(t, converter.Size{Width: 100, Height: 50}, converter.Plan{Width: 100}.Fit(converter.Size{Width: 400, Height: 200}))
	assert.Equal(t, converter.Size{Width: 1, Height: 10}, converter.Plan{Height: 10}.Fit(converter.Size{Width: 1, Height: 1000}))
}

func TestMakeFromString(t *testing.T) {
	for in, want := range map[string]converter.Type{
		"webp":   converter.WEBP,
		"WEBP":   converter.WEBP,
		" Avif ": converter.AVIF,
	} {
		got, err := converter.MakeFromString(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := converter.MakeFromString("jpeg")
	assert.ErrorIs(t, err, converter.ErrUnknownType)
}

func TestTypeAttributes(t *testing.T) {
	assert.Equal(t, "image/webp", converter.WEBP.ContentType())
	assert.Equal(t, "image/avif", converter.AVIF.ContentType())
	assert.Equal(t, float32(80), converter.WEBP.Quality())
	assert.Equal(t, float32(60), converter.AVIF.Quality())
	assert.True(t, converter.Type{}.IsZero())

	var typ converter.Type
	require.NoError(t, typ.UnmarshalText([]byte("WebP")))
	assert.Equal(t, converter.WEBP, typ)
}
