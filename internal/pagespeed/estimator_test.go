package pagespeed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Bahjat/page-speed-tool/internal/model"
)

func TestEstimateLoad(t *testing.T) {
	body := `<html><head>
	<link rel="stylesheet" href="/a.css">
	<link href="/b.css" rel="stylesheet">
	<link rel="icon" href="/favicon.ico">
	<script src="/1.js"></script>
	<script src='/2.js'></script>
	<script src="/3.js" defer></script>
	<script>inline()</script>
	</head><body><img src="/hero.jpg" alt=""></body></html>`

	got := EstimateLoad(body, 100)

	assert.Equal(t, 2, got.CSSFiles)
	assert.Equal(t, 3, got.JSFiles)
	assert.Equal(t, 1, got.Images)
	assert.InDelta(t, 600, got.AdditionalTimeMs, 0)
	assert.InDelta(t, 750, got.TotalLoadTimeMs, 0)
	assert.Equal(t, model.LoadSourceSimulated, got.Source)
	assert.Nil(t, got.FallbackReason)
}

func TestEstimateLoad_EmptyBody(t *testing.T) {
	got := EstimateLoad("", 123.45)

	assert.Zero(t, got.CSSFiles+got.JSFiles+got.Images)
	assert.InDelta(t, 173.45, got.TotalLoadTimeMs, 1e-9)
}

func TestSimulatedEstimator_Measure(t *testing.T) {
	in := LoadInput{Body: `<img src="a.png"><img src="b.png">`, BaseResponseMs: 10}

	got := SimulatedEstimator{}.Measure(context.Background(), in)

	assert.Equal(t, EstimateLoad(in.Body, in.BaseResponseMs), got)
	assert.InDelta(t, 460, got.TotalLoadTimeMs, 0)
}
