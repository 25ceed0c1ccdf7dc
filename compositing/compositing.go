// Package compositing holds the alpha-blending policies used when a channel
// mapping composes a source pixel over a destination pixel.
//
// Every value handed to a policy is normalized to [0, 1].
package compositing

import (
	"fmt"
	"sort"
)

// Policy combines a source pixel into a destination pixel. Alpha computes the
// resulting alpha; Channel computes one color channel given that result.
type Policy struct {
	Name    string
	Alpha   func(alphaSrc, alphaDst float64) float64
	Channel func(alphaSrc, alphaDst, alphaRes, channelSrc, channelDst float64) float64
}

func normalAlpha(alphaSrc, alphaDst float64) float64 {
	return alphaSrc + alphaDst*(1-alphaSrc)
}

func normalChannel(alphaSrc, alphaDst, alphaRes, channelSrc, channelDst float64) float64 {
	if alphaRes == 0 {
		return 0
	}
	return (channelSrc*alphaSrc + channelDst*alphaDst*(1-alphaSrc)) / alphaRes
}

// Normal is source-over alpha blending.
var Normal = &Policy{
	Name:    "normal",
	Alpha:   normalAlpha,
	Channel: normalChannel,
}

// Mask treats alpha as binary: any non-zero source alpha replaces the destination.
var Mask = &Policy{
	Name: "mask",
	Alpha: func(alphaSrc, alphaDst float64) float64 {
		if alphaSrc != 0 {
			return 1
		}
		return alphaDst
	},
	Channel: func(alphaSrc, alphaDst, alphaRes, channelSrc, channelDst float64) float64 {
		if alphaSrc != 0 {
			return channelSrc
		}
		return channelDst
	},
}

// Multiply always darkens. A transparent destination behaves like white.
var Multiply = &Policy{
	Name:  "multiply",
	Alpha: normalAlpha,
	Channel: func(alphaSrc, alphaDst, alphaRes, channelSrc, channelDst float64) float64 {
		blended := channelSrc * (channelDst*alphaDst + (1 - alphaDst))
		return normalChannel(alphaSrc, alphaDst, alphaRes, blended, channelDst)
	},
}

// Screen is the inverse of Multiply and always brightens. A transparent
// destination behaves like black.
var Screen = &Policy{
	Name:  "screen",
	Alpha: normalAlpha,
	Channel: func(alphaSrc, alphaDst, alphaRes, channelSrc, channelDst float64) float64 {
		blended := 1 - (1-channelSrc)*(1-channelDst*alphaDst)
		return normalChannel(alphaSrc, alphaDst, alphaRes, blended, channelDst)
	},
}

var byName = map[string]*Policy{
	Normal.Name:   Normal,
	Mask.Name:     Mask,
	Multiply.Name: Multiply,
	Screen.Name:   Screen,
}

// ByName looks up a policy by its name, as given on the command line.
func ByName(name string) (*Policy, error) {
	p, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown compositing mode %q (available: %v)", name, Names())
	}
	return p, nil
}

func Names() []string {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
