// Package codec turns compacted analysis trees into storage payloads and back.
//
// Current payloads are compact JSON compressed with lz-string's UTF-16 variant,
// the format the browser client writes. Older records hold the JSON text
// uncompressed. Payloads carry no version tag; the shape is sniffed from the
// first non-blank character.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"

	lzstring "github.com/daku10/go-lz-string"

	"github.com/rpggio/chessnote/internal/domain/tree"
)

var (
	// ErrCorruptRecord indicates a payload that could not be decoded into a tree.
	ErrCorruptRecord = errors.New("corrupt or unsupported record")
	// ErrEmptyPayload indicates a blank payload.
	ErrEmptyPayload = errors.New("empty payload")
)

// Transform is one direction of a reversible text compression.
type Transform func(string) (string, error)

// Codec encodes and decodes tree payloads.
type Codec struct {
	compress   Transform
	decompress Transform
}

// New returns a codec using lz-string UTF-16 compression.
func New() *Codec {
	return NewWith(compressUTF16, decompressUTF16)
}

// compressUTF16 returns the code units as the string the browser client
// stores. The units stay within 0x20..0x8020, clear of the surrogate range,
// so the conversion through runes is lossless.
func compressUTF16(s string) (string, error) {
	units, err := lzstring.CompressToUTF16(s)
	if err != nil {
		return "", err
	}
	return string(utf16.Decode(units)), nil
}

func decompressUTF16(s string) (string, error) {
	return lzstring.DecompressFromUTF16(utf16.Encode([]rune(s)))
}

// NewWith returns a codec using the given compression pair.
func NewWith(compress, decompress Transform) *Codec {
	return &Codec{compress: compress, decompress: decompress}
}

var defaultCodec = New()

// Encode serializes root with the default codec.
func Encode(root *tree.Node) (string, error) { return defaultCodec.Encode(root) }

// Decode parses a payload with the default codec.
func Decode(payload string) (*tree.Node, error) { return defaultCodec.Decode(payload) }

// Encode serializes root as compact JSON and compresses it. Callers strip
// derived boards with tree.Compact first; Encode stores what it is given.
func (c *Codec) Encode(root *tree.Node) (string, error) {
	if root == nil {
		return "", fmt.Errorf("encode: nil tree")
	}
	data, err := json.Marshal(root)
	if err != nil {
		return "", fmt.Errorf("encode: marshal tree: %w", err)
	}
	out, err := c.compress(string(data))
	if err != nil {
		return "", fmt.Errorf("encode: compress: %w", err)
	}
	return out, nil
}

// Decode accepts both legacy JSON payloads and compressed payloads.
//
// A payload starting with '{' or '[' is parsed directly. Anything else is run
// through the decompressor first; if that yields nothing the raw text is
// parsed as-is. Every failure wraps ErrCorruptRecord.
func (c *Codec) Decode(payload string) (*tree.Node, error) {
	text := strings.TrimSpace(payload)
	if text == "" {
		return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, ErrEmptyPayload)
	}

	if IsLegacy(text) {
		root, err := parseTree(text)
		if err == nil {
			return root, nil
		}
		// Compressed output may itself begin with '{'.
		if expanded, ok := c.tryDecompress(payload); ok {
			if root, retryErr := parseTree(expanded); retryErr == nil {
				return root, nil
			}
		}
		return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}

	candidate := text
	if expanded, ok := c.tryDecompress(payload); ok {
		candidate = expanded
	}
	root, err := parseTree(candidate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	return root, nil
}

// IsLegacy reports whether payload looks like uncompressed JSON.
func IsLegacy(payload string) bool {
	text := strings.TrimSpace(payload)
	return strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[")
}

func (c *Codec) tryDecompress(payload string) (out string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			out, ok = "", false
		}
	}()
	expanded, err := c.decompress(payload)
	if err != nil || expanded == "" {
		return "", false
	}
	return expanded, true
}

func parseTree(text string) (*tree.Node, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "[") {
		var roots []*tree.Node
		if err := json.Unmarshal([]byte(text), &roots); err != nil {
			return nil, fmt.Errorf("parse tree: %w", err)
		}
		if len(roots) != 1 || roots[0] == nil {
			return nil, fmt.Errorf("parse tree: expected one root, got %d", len(roots))
		}
		return roots[0], nil
	}

	var root *tree.Node
	if err := json.Unmarshal([]byte(text), &root); err != nil {
		return nil, fmt.Errorf("parse tree: %w", err)
	}
	if root == nil {
		return nil, fmt.Errorf("parse tree: null root")
	}
	return root, nil
}
