package worker

import (
	"encoding/json"
	"math"
	"strconv"

	"mysteryweb/internal/physics"
)

type bound struct {
	min, max, def float64
}

var configBounds = map[string]bound{
	"chargeStrength":  {-10000, -100, physics.DefaultChargeStrength},
	"iterations":      {10, 2000, physics.DefaultIterations},
	"width":           {100, 10000, physics.DefaultWidth},
	"height":          {100, 10000, physics.DefaultHeight},
	"linkDistance":    {10, 1000, physics.DefaultLinkDistance},
	"linkStrength":    {0, 2, physics.DefaultLinkStrength},
	"collisionRadius": {1, 500, physics.DefaultCollisionRadius},
	"centerStrength":  {0, 1, physics.DefaultCenterStrength},
	"clusterStrength": {0, 1, 0},
}

var multiplierBound = bound{0.1, 5, 1}

// SanitizeConfig turns an untrusted config object into simulation
// parameters. Out-of-range numbers are clamped; missing or non-numeric
// values take the default.
func SanitizeConfig(cfg map[string]any) physics.Params {
	get := func(key string) float64 {
		return sanitizeNumber(cfg[key], configBounds[key])
	}
	p := physics.Params{
		ChargeStrength:  get("chargeStrength"),
		Iterations:      int(math.Round(get("iterations"))),
		Width:           get("width"),
		Height:          get("height"),
		LinkDistance:    get("linkDistance"),
		LinkStrength:    get("linkStrength"),
		CollisionRadius: get("collisionRadius"),
		CenterStrength:  get("centerStrength"),
		ClusterStrength: get("clusterStrength"),
	}
	if raw, ok := cfg["typeMultipliers"].(map[string]any); ok {
		p.TypeMultipliers = make(map[string]float64, len(raw))
		for typ, v := range raw {
			p.TypeMultipliers[typ] = sanitizeNumber(v, multiplierBound)
		}
	}
	return p
}

func sanitizeNumber(v any, b bound) float64 {
	n, ok := toFloat(v)
	if !ok || !finite(n) {
		return b.def
	}
	return math.Max(b.min, math.Min(b.max, n))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// ConfigFromParams is the wire form of trusted parameters.
func ConfigFromParams(p physics.Params) map[string]any {
	cfg := map[string]any{
		"chargeStrength":  p.ChargeStrength,
		"iterations":      float64(p.Iterations),
		"width":           p.Width,
		"height":          p.Height,
		"linkDistance":    p.LinkDistance,
		"linkStrength":    p.LinkStrength,
		"collisionRadius": p.CollisionRadius,
		"centerStrength":  p.CenterStrength,
		"clusterStrength": p.ClusterStrength,
	}
	if len(p.TypeMultipliers) > 0 {
		m := make(map[string]any, len(p.TypeMultipliers))
		for typ, v := range p.TypeMultipliers {
			m[typ] = v
		}
		cfg["typeMultipliers"] = m
	}
	return cfg
}
