// Package decode turns model file bytes into scene trees. Each supported
// format has one decoder; dispatch is by a normalized format hint with an
// explicit stl fallback for hints outside the table.
package decode

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/meshvault/internal/logger"
	"github.com/Faultbox/meshvault/internal/scene"
)

// Source is the fetched content behind a model locator.
type Source struct {
	Locator string
	Path    string // local filesystem path, empty for remote sources
	Data    []byte
}

// Decoder parses one model format into a scene tree. Decoders bake any
// embedded node transforms into vertex positions, so drawable bounds are
// world-space without further transformation.
type Decoder interface {
	Decode(src *Source) (*scene.Node, error)
}

var registry = map[string]Decoder{
	"stl":  stlDecoder{},
	"obj":  objDecoder{},
	"gltf": gltfDecoder{},
	"glb":  gltfDecoder{},
	"ply":  plyDecoder{},
	"3mf":  threeMFDecoder{},
}

// NormalizeHint lowercases a format hint and strips surrounding whitespace
// and leading dots, so ".STL" and "stl" select the same decoder.
func NormalizeHint(hint string) string {
	return strings.TrimLeft(strings.ToLower(strings.TrimSpace(hint)), ".")
}

// Lookup returns the decoder for hint along with the normalized tag it
// resolved to. Hints outside the dispatch table fall back to the stl decoder
// as a best-effort default; many catalog entries carry no extension at all.
func Lookup(hint string) (Decoder, string) {
	h := NormalizeHint(hint)
	if d, ok := registry[h]; ok {
		return d, h
	}
	logger.Warn("unrecognized format hint, trying stl decoder",
		zap.String("hint", hint))
	return registry["stl"], "stl"
}

// Fetch loads the bytes behind a locator. http(s) locators are fetched over
// the network; anything else is read from the filesystem.
func Fetch(ctx context.Context, locator string) (*Source, error) {
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
		if err != nil {
			return nil, fmt.Errorf("building request for %s: %w", locator, err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", locator, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetching %s: %s", locator, resp.Status)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", locator, err)
		}
		return &Source{Locator: locator, Data: data}, nil
	}

	data, err := os.ReadFile(locator)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", locator, err)
	}
	return &Source{Locator: locator, Path: locator, Data: data}, nil
}
