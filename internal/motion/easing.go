package motion

import (
	"fmt"
	"sort"

	"github.com/tanema/gween/ease"
)

var easings = map[string]ease.TweenFunc{
	"linear":     ease.Linear,
	"inQuad":     ease.InQuad,
	"outQuad":    ease.OutQuad,
	"inOutQuad":  ease.InOutQuad,
	"inCubic":    ease.InCubic,
	"outCubic":   ease.OutCubic,
	"inOutCubic": ease.InOutCubic,
	"inSine":     ease.InSine,
	"outSine":    ease.OutSine,
	"inOutSine":  ease.InOutSine,
	"inExpo":     ease.InExpo,
	"outExpo":    ease.OutExpo,
	"outBack":    ease.OutBack,
	"outElastic": ease.OutElastic,
	"outBounce":  ease.OutBounce,
}

// EasingByName resolves a scenario easing name. An empty name yields a nil
// function, which curves treat as exact float64 linear interpolation.
func EasingByName(name string) (ease.TweenFunc, error) {
	if name == "" {
		return nil, nil
	}
	fn, ok := easings[name]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q (known: %v)", name, EasingNames())
	}
	return fn, nil
}

// EasingNames lists the accepted easing names in sorted order.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
