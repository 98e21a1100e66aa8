package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Platform is a compile target as numbered by the worker.
type Platform int32

const (
	PlatformOpenGL Platform = iota
	PlatformD3D9
	PlatformXbox360
	PlatformPS3
	PlatformD3D11
	PlatformGLES
	PlatformGLESDesktop
	PlatformFlash
	PlatformD3D11_9x
	PlatformGLES3
	PlatformPSP2
	PlatformPS4
)

var platformNames = [...]string{
	"opengl", "d3d9", "xbox360", "ps3", "d3d11", "gles",
	"glesdesktop", "flash", "d3d11_9x", "gles3", "psp2", "ps4",
}

// Known reports whether p has a name in the platform table.
func (p Platform) Known() bool {
	return p >= 0 && int(p) < len(platformNames)
}

func (p Platform) String() string {
	if !p.Known() {
		return fmt.Sprintf("Platform(%d)", int32(p))
	}
	return platformNames[p]
}

// Bit returns the mask form of p, as used by Snip.Platforms.
func (p Platform) Bit() (PlatformMask, error) {
	shift, err := safecast.Conv[uint](p)
	if err != nil || !p.Known() {
		return 0, fmt.Errorf("%w: platform %d", ErrUnknownEnumerant, int32(p))
	}
	return PlatformMask(1) << shift, nil
}

// ParsePlatform accepts a platform name (case-insensitive) or its number.
func ParsePlatform(raw string) (Platform, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for i, name := range platformNames {
		if raw == name {
			return Platform(i), nil
		}
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || !Platform(n).Known() {
		return 0, fmt.Errorf("%w: platform %q", ErrUnknownEnumerant, raw)
	}
	return Platform(n), nil
}

// PlatformMask is a bitwise set of platforms.
type PlatformMask uint32

// Has reports whether m includes p. Platforms without a mask bit are never included.
func (m PlatformMask) Has(p Platform) bool {
	bit, err := p.Bit()
	return err == nil && m&bit != 0
}

// Platforms lists the known platforms present in m, in enum order.
func (m PlatformMask) Platforms() []Platform {
	out := make([]Platform, 0, len(platformNames))
	for i := range platformNames {
		if m.Has(Platform(i)) {
			out = append(out, Platform(i))
		}
	}
	return out
}

// Stage selects the shader function a configuration compiles.
type Stage int32

const (
	StageVertex Stage = iota
	StageFragment
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("Stage(%d)", int32(s))
	}
}

// ParseStage accepts a stage name, its short form or its wire number.
func ParseStage(raw string) (Stage, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "vertex", "vp", "0":
		return StageVertex, nil
	case "fragment", "fp", "pixel", "1":
		return StageFragment, nil
	default:
		return 0, fmt.Errorf("%w: stage %q", ErrUnknownEnumerant, raw)
	}
}

// ErrorLevel is the severity of an err: record.
type ErrorLevel int32

const (
	LevelInfo ErrorLevel = iota
	LevelWarning
	LevelError
)

func (l ErrorLevel) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("ErrorLevel(%d)", int32(l))
	}
}
