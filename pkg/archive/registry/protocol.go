package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/tilebound/tileview/pkg/errors"
)

// Scheme is the custom URL scheme under which registered archives are
// addressable by the rendering engine.
const Scheme = "tilearchive"

// Protocol answers byte-range requests for "tilearchive://key"
// references by resolving key through a registry.
//
// A Protocol is explicitly owned by whoever consumes it — it is passed
// into the serving layer at mount time and dropped at teardown, never
// held in package-level state.
type Protocol struct {
	reg *Registry
}

// NewProtocol creates a protocol intercept backed by reg.
func NewProtocol(reg *Registry) *Protocol {
	return &Protocol{reg: reg}
}

// FormatRef qualifies an archive key as a protocol reference.
func FormatRef(key string) string {
	return Scheme + "://" + key
}

// ParseRef extracts the archive key from a protocol reference.
func ParseRef(ref string) (string, error) {
	key, ok := strings.CutPrefix(ref, Scheme+"://")
	if !ok || key == "" {
		return "", fmt.Errorf("not a %s reference: %q", Scheme, ref)
	}
	return key, nil
}

// ReadRange resolves ref via the registry and reads the requested byte
// range from the archive's source.
func (p *Protocol) ReadRange(ctx context.Context, ref string, offset, length int64) ([]byte, error) {
	key, err := ParseRef(ref)
	if err != nil {
		return nil, err
	}
	return p.ReadKeyRange(ctx, key, offset, length)
}

// KeySize returns the total byte size of the archive registered under
// key.
func (p *Protocol) KeySize(ctx context.Context, key string) (int64, error) {
	a, ok := p.reg.Resolve(key)
	if !ok {
		return 0, errors.New(errors.ErrCodeArchiveNotFound, "no archive registered for key %q", key)
	}
	return a.Source().Size(ctx)
}

// ReadKeyRange reads a byte range from the archive registered under key.
func (p *Protocol) ReadKeyRange(ctx context.Context, key string, offset, length int64) ([]byte, error) {
	a, ok := p.reg.Resolve(key)
	if !ok {
		return nil, errors.New(errors.ErrCodeArchiveNotFound, "no archive registered for key %q", key)
	}
	return a.Source().ReadRange(ctx, offset, length)
}
