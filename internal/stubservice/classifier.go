package stubservice

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"image"
	"os"
	"strings"

	"github.com/disintegration/imaging"
)

// ErrNotLoaded is returned when the classifier has no class names
var ErrNotLoaded = errors.New("model or class names not loaded")

const (
	resizeEdge = 256
	cropEdge   = 224
)

// Result is a single classification
type Result struct {
	Label      string
	Confidence float64
}

// Classifier assigns a region label to a decoded image
type Classifier interface {
	Classify(ctx context.Context, img image.Image) (Result, error)
}

// HashClassifier is a deterministic stand-in for a trained model: it
// normalizes the image the way the model's input pipeline does, then derives
// a class and confidence from a hash of the pixels. The same image always
// yields the same result.
type HashClassifier struct {
	classes []string
}

// NewHashClassifier creates a classifier over the given class names
func NewHashClassifier(classes []string) *HashClassifier {
	return &HashClassifier{classes: append([]string(nil), classes...)}
}

// Classes returns the class names
func (c *HashClassifier) Classes() []string {
	return append([]string(nil), c.classes...)
}

// Classify implements Classifier
func (c *HashClassifier) Classify(ctx context.Context, img image.Image) (Result, error) {
	if len(c.classes) == 0 {
		return Result{}, ErrNotLoaded
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	input := preprocess(img)

	h := fnv.New64a()
	_, _ = h.Write(input.Pix)
	sum := h.Sum64()

	return Result{
		Label:      c.classes[sum%uint64(len(c.classes))],
		Confidence: 0.5 + float64((sum>>32)%5000)/10000,
	}, nil
}

// preprocess resizes the short edge to 256 and center-crops to 224x224
func preprocess(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() < b.Dy() {
		img = imaging.Resize(img, resizeEdge, 0, imaging.Box)
	} else {
		img = imaging.Resize(img, 0, resizeEdge, imaging.Box)
	}
	return imaging.CropCenter(img, cropEdge, cropEdge)
}

// LoadClasses reads one class name per line, skipping blank lines
func LoadClasses(path string) ([]string, error) {
	// #nosec G304 - path is supplied by the operator on the command line
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open class names: %w", err)
	}
	defer func() { _ = f.Close() }()

	var classes []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if name := strings.TrimSpace(scanner.Text()); name != "" {
			classes = append(classes, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read class names: %w", err)
	}
	return classes, nil
}
