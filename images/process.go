package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"furniture-extractor/internal/types"
)

// Process decodes data, flattens it onto white RGBA, scales it so neither side
// exceeds maxDimension and re-encodes it as JPEG at quality
func Process(data []byte, maxDimension, quality int) (types.ImageAsset, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return types.ImageAsset{}, fmt.Errorf("decode: %w", err)
	}

	bounds := src.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return types.ImageAsset{}, fmt.Errorf("decode: empty image")
	}

	flat := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(flat, flat.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), src, bounds.Min, draw.Over)

	out := image.Image(flat)
	if w, h := fitWithin(bounds.Dx(), bounds.Dy(), maxDimension); w != bounds.Dx() || h != bounds.Dy() {
		scaled := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), flat, flat.Bounds(), draw.Src, nil)
		out = scaled
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: quality}); err != nil {
		return types.ImageAsset{}, fmt.Errorf("encode: %w", err)
	}

	return types.ImageAsset{
		ContentType: "image/jpeg",
		ByteSize:    buf.Len(),
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		Data:        buf.Bytes(),
	}, nil
}

// fitWithin keeps the aspect ratio while bringing the longer side down to limit
func fitWithin(w, h, limit int) (int, int) {
	if limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}
