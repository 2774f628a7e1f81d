// Copyright © 2018 Intel Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package integrate

import (
	"image"
	"image/png"
	"os"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// supportedIconSizes are the square dimensions the hicolor theme
// indexes.
var supportedIconSizes = []int{16, 24, 32, 48, 64, 72, 80, 96, 128, 192, 256, 512}

// snapIconSize picks the supported size with the smallest L1 distance
// to dim.
func snapIconSize(dim int) int {
	best := supportedIconSizes[0]
	bestDist := abs(dim - best)
	for _, s := range supportedIconSizes[1:] {
		if d := abs(dim - s); d < bestDist {
			best, bestDist = s, d
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// installIcon loads srcPath, resizes it with Lanczos-3 resampling to
// the nearest supported square size, and writes a PNG to dstPath. The
// caller links it into the matching hicolor dimension bucket.
func installIcon(srcPath, dstPath string) error {
	src, err := imaging.Open(srcPath, imaging.AutoOrientation(true))
	if err != nil {
		return errors.Wrapf(err, "opening icon %s", srcPath)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dim := w
	if h > dim {
		dim = h
	}
	size := snapIconSize(dim)

	// The hicolor bucket the icon lands in is square, so a non-square
	// source is always resized even when its larger dimension already
	// matches a supported size.
	var resized image.Image = src
	if w != size || h != size {
		resized = imaging.Resize(src, size, size, imaging.Lanczos)
	}

	out, err := os.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrapf(err, "creating icon destination %s", dstPath)
	}
	defer func() { _ = out.Close() }()

	if err := imaging.Encode(out, resized, imaging.PNG); err != nil {
		return errors.Wrapf(err, "encoding icon %s", dstPath)
	}
	return nil
}

// decodePNGConfig reads just the PNG header to recover a previously
// processed icon's square dimension.
func decodePNGConfig(f *os.File) (int, error) {
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		return 0, err
	}
	return cfg.Width, nil
}
