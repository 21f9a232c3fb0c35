package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownSlot is returned for an unrecognised equipment slot name.
var ErrUnknownSlot = errors.New("unknown equipment slot")

// Item type tags as stored and sent to clients.
const (
	ItemTypeEquipment = "equipment"
	ItemTypePet       = "pet"
)

// EquipSlot is the archetype of an equipment piece. Each slot holds one item.
type EquipSlot string

const (
	SlotFaqi    EquipSlot = "faqi"    // 法宝
	SlotGuanjin EquipSlot = "guanjin" // 冠巾
	SlotDaopao  EquipSlot = "daopao"  // 道袍
	SlotYunlv   EquipSlot = "yunlv"   // 云履
	SlotFabao   EquipSlot = "fabao"   // 本命法宝
)

// Slots lists the slots in archetype order.
var Slots = [...]EquipSlot{SlotFaqi, SlotGuanjin, SlotDaopao, SlotYunlv, SlotFabao}

// ParseSlot validates a slot name.
func ParseSlot(s string) (EquipSlot, error) {
	for _, slot := range Slots {
		if string(slot) == s {
			return slot, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSlot, s)
}

// Equipment is a generated gear piece.
// Values are plain records: operations return modified copies.
type Equipment struct {
	ID               string    `json:"id"`
	OwnerID          int64     `json:"ownerId,omitempty"`
	Name             string    `json:"name"`
	Type             string    `json:"type"`
	Quality          Quality   `json:"quality"`
	Slot             EquipSlot `json:"equipType"`
	LevelRequirement int       `json:"level"`
	RequiredRealm    int       `json:"requiredRealm"`
	EnhanceLevel     int       `json:"enhanceLevel"`
	Stats            StatBlock `json:"stats"`
	Equipped         bool      `json:"equipped"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Clone returns a deep copy.
func (e Equipment) Clone() Equipment {
	e.Stats = e.Stats.Clone()
	return e
}
