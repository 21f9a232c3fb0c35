package model

import (
	"errors"
	"fmt"
)

// ErrUnknownQuality is returned when a quality name is not one of the six tiers.
var ErrUnknownQuality = errors.New("unknown quality")

// Quality is the rarity tier of an equipment piece or pet.
// Ordered from weakest to strongest so that comparisons work naturally.
type Quality int

const (
	QualityCommon Quality = iota
	QualityUncommon
	QualityRare
	QualityEpic
	QualityLegendary
	QualityMythic
)

// QualityCount is the number of tiers.
const QualityCount = 6

var qualityNames = [QualityCount]string{
	"common", "uncommon", "rare", "epic", "legendary", "mythic",
}

// Display names used in battle logs and item descriptions.
var qualityTitles = [QualityCount]string{
	"凡品", "下品", "中品", "上品", "极品", "仙品",
}

// String returns the wire name of the tier ("common", ..., "mythic").
func (q Quality) String() string {
	if !q.Valid() {
		return fmt.Sprintf("Quality(%d)", int(q))
	}
	return qualityNames[q]
}

// Title returns the in-game display name of the tier.
func (q Quality) Title() string {
	if !q.Valid() {
		return ""
	}
	return qualityTitles[q]
}

// Valid reports whether q is one of the six tiers.
func (q Quality) Valid() bool {
	return q >= QualityCommon && q <= QualityMythic
}

// ParseQuality converts a wire name to a Quality.
func ParseQuality(s string) (Quality, error) {
	for i, name := range qualityNames {
		if name == s {
			return Quality(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownQuality, s)
}

// Qualities returns all tiers in rarity-descending order (mythic first).
func Qualities() []Quality {
	return []Quality{
		QualityMythic, QualityLegendary, QualityEpic,
		QualityRare, QualityUncommon, QualityCommon,
	}
}

// MarshalText implements encoding.TextMarshaler.
func (q Quality) MarshalText() ([]byte, error) {
	if !q.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownQuality, int(q))
	}
	return []byte(q.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (q *Quality) UnmarshalText(b []byte) error {
	v, err := ParseQuality(string(b))
	if err != nil {
		return err
	}
	*q = v
	return nil
}
