package testutil

import (
	"strconv"
	"time"

	"github.com/udisondev/xiuxian/internal/model"
)

// FixedTime -- стабильное время для сгенерированных предметов в тестах.
var FixedTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// NewPlayer возвращает игрока с базовыми атрибутами нового персонажа
// и заданными уровнем и запасом духовных камней.
func NewPlayer(name string, level int, spiritStones int64) model.Player {
	return model.Player{
		Name:         name,
		Level:        level,
		Realm:        1,
		SpiritStones: spiritStones,
		Attributes: model.Attributes{
			Base: model.BaseAttributes{
				Attack:  100,
				Health:  1000,
				Defense: 50,
				Speed:   10,
			},
		},
	}
}

// SeqIDs возвращает генератор ID вида prefix-1, prefix-2, ...
// Не потокобезопасен.
func SeqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + "-" + strconv.Itoa(n)
	}
}
