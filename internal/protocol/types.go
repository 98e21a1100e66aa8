package protocol

import (
	"fmt"

	"fortio.org/safecast"
)

// Error is one err: record. Records are kept in wire order and never deduplicated.
type Error struct {
	Level    ErrorLevel `json:"level" msgpack:"level"`
	Platform Platform   `json:"platform" msgpack:"platform"`
	Line     int32      `json:"line" msgpack:"line"`
	File     string     `json:"file" msgpack:"file"`
	Message  string     `json:"message" msgpack:"message"`
}

func (e Error) String() string {
	return fmt.Sprintf("%s(%d): %s: %s [%s]", e.File, e.Line, e.Level, e.Message, e.Platform)
}

// Configuration is one compiled variant of a snip: a stage plus its keyword set.
// Keyword order is wire order but carries no meaning.
type Configuration struct {
	Stage    Stage    `json:"stage" msgpack:"stage"`
	Keywords []string `json:"keywords" msgpack:"keywords"`
}

// SnipHeaderSize is the number of integer tokens following the snip: tag.
const SnipHeaderSize = 9

// Snip is one source fragment extracted by preprocessing.
// Reserved and hash fields have no known meaning and are passed through unchanged.
type Snip struct {
	ProgramID      int32           `json:"program_id" msgpack:"program_id"`
	Platforms      int32           `json:"platforms" msgpack:"platforms"`
	Reserved1      int32           `json:"reserved1" msgpack:"reserved1"`
	Target         int32           `json:"target" msgpack:"target"`
	Reserved2      int32           `json:"reserved2" msgpack:"reserved2"`
	Hash1          int32           `json:"hash1" msgpack:"hash1"`
	Hash2          int32           `json:"hash2" msgpack:"hash2"`
	Hash3          int32           `json:"hash3" msgpack:"hash3"`
	Reserved3      int32           `json:"reserved3" msgpack:"reserved3"`
	Text           string          `json:"text" msgpack:"text"`
	Configurations []Configuration `json:"configurations" msgpack:"configurations"`
}

// NewSnip builds a snip from the nine header integers in wire order.
func NewSnip(header [SnipHeaderSize]int32, text string, configs []Configuration) Snip {
	return Snip{
		ProgramID:      header[0],
		Platforms:      header[1],
		Reserved1:      header[2],
		Target:         header[3],
		Reserved2:      header[4],
		Hash1:          header[5],
		Hash2:          header[6],
		Hash3:          header[7],
		Reserved3:      header[8],
		Text:           text,
		Configurations: configs,
	}
}

// PlatformMask interprets Platforms as a bit set.
func (s Snip) PlatformMask() (PlatformMask, error) {
	m, err := safecast.Conv[uint32](s.Platforms)
	if err != nil {
		return 0, fmt.Errorf("%w: platform mask %d", ErrUnknownEnumerant, s.Platforms)
	}
	return PlatformMask(m), nil
}

// Configuration returns configuration i or false when out of range.
func (s Snip) Configuration(i int) (Configuration, bool) {
	if i < 0 || i >= len(s.Configurations) {
		return Configuration{}, false
	}
	return s.Configurations[i], true
}

// PlatformReport is the reply to c:getPlatforms. The values are opaque.
type PlatformReport struct {
	Values [PlatformReportSize]int32 `json:"values" msgpack:"values"`
}

// PreprocessResult is the reply to c:preprocess.
type PreprocessResult struct {
	Location string  `json:"location" msgpack:"location"`
	OK       bool    `json:"ok" msgpack:"ok"`
	Reserved int32   `json:"reserved" msgpack:"reserved"`
	Shader   string  `json:"shader" msgpack:"shader"`
	Snips    []Snip  `json:"snips" msgpack:"snips"`
	Errors   []Error `json:"errors" msgpack:"errors"`
}
