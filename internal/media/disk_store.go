package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"log"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif" // register gif
	_ "image/png" // register png

	"nagarseva/backend/internal/config"

	"golang.org/x/image/draw"
)

// DiskStore writes objects under a base directory and serves them from a
// base URL. Uploaded photos are downscaled and re-encoded as JPEG before
// being written; other media (voice notes) is stored verbatim.
type DiskStore struct {
	Dir     string
	BaseURL string
}

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &DiskStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Put stores one object and returns its public URL.
func (d *DiskStore) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if strings.HasPrefix(contentType, "image/") {
		compressed, err := compressImage(data)
		if err != nil {
			// An undecodable "image" still gets stored as-is; format
			// validation beyond type/size is not this layer's job.
			log.Printf("INFO: Storing image %s uncompressed: %v", name, err)
		} else {
			data = compressed
			if !strings.HasSuffix(name, ".jpg") && !strings.HasSuffix(name, ".jpeg") {
				name = name + ".jpg"
			}
		}
	}

	path := filepath.Join(d.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("ERROR: Failed to write media object %s: %v", name, err)
		return "", err
	}

	return d.BaseURL + "/media/" + name, nil
}

// compressImage resizes the image to fit the configured bounding box and
// re-encodes it as JPEG.
func compressImage(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	width, height := fitBox(img.Bounds().Dx(), img.Bounds().Dy(), config.ImageMaxWidth, config.ImageMaxHeight)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	var out bytes.Buffer
	opts := &jpeg.Options{Quality: config.ImageJPEGQuality}
	if err := jpeg.Encode(&out, dst, opts); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return out.Bytes(), nil
}

// fitBox scales (w, h) down to fit within (maxW, maxH) preserving aspect
// ratio. Images already inside the box keep their size.
func fitBox(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	scaleW := float64(maxW) / float64(w)
	scaleH := float64(maxH) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	return int(float64(w) * scale), int(float64(h) * scale)
}
