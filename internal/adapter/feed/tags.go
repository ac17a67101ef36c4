package feed

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/dhowden/tag"

	"github.com/tejashwikalptaru/beatscope/internal/domain"
)

// tempoKeys are the raw tag keys that carry a BPM value, in lookup order:
// ID3v2.3/2.4, ID3v2.2, MP4 atom, Vorbis comment.
var tempoKeys = []string{"TBPM", "TBP", "tmpo", "bpm", "tempo"}

// ReadTempoTag reads the BPM tag of the audio file at path.
func ReadTempoTag(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	bpm, err := ReadTempo(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return bpm, nil
}

// ReadTempo reads the BPM tag from tagged audio data.
//
// It returns domain.ErrNoTempoTag when the data has no tags or no BPM tag, and
// domain.ErrInvalidTempoTag when the tag is present but not a positive number.
func ReadTempo(r io.ReadSeeker) (float64, error) {
	m, err := tag.ReadFrom(r)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return 0, domain.ErrNoTempoTag
		}
		return 0, fmt.Errorf("failed to read tags: %w", err)
	}

	raw := m.Raw()
	for _, key := range tempoKeys {
		if v, ok := raw[key]; ok {
			return parseTempo(v)
		}
	}
	return 0, domain.ErrNoTempoTag
}

func parseTempo(v interface{}) (float64, error) {
	var bpm float64
	switch x := v.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", domain.ErrInvalidTempoTag, x)
		}
		bpm = f
	case int:
		bpm = float64(x)
	case float64:
		bpm = x
	default:
		return 0, fmt.Errorf("%w: unsupported value %T", domain.ErrInvalidTempoTag, v)
	}

	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidTempoTag, bpm)
	}
	return bpm, nil
}
