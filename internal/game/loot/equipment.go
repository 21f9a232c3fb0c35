package loot

import "github.com/udisondev/xiuxian/internal/model"

// Archetype is an equipment template: the slot it occupies, its base name
// and the name prefixes available at each tier.
type Archetype struct {
	Slot     model.EquipSlot
	Name     string
	Prefixes [model.QualityCount][]string
}

// Archetypes is the fixed archetype list. Order matters for reproducible draws.
var Archetypes = []Archetype{
	{
		Slot: model.SlotFaqi,
		Name: "法宝",
		Prefixes: [model.QualityCount][]string{
			model.QualityCommon:    {"粗制", "劣质", "破损", "锈蚀"},
			model.QualityUncommon:  {"精制", "优质", "改良", "强化"},
			model.QualityRare:      {"上品", "精品", "珍品", "灵韵"},
			model.QualityEpic:      {"异宝", "奇珍", "灵光", "宝华"},
			model.QualityLegendary: {"法宝", "神兵", "灵宝", "仙锋"},
			model.QualityMythic:    {"仙器", "神器", "天器", "圣器"},
		},
	},
	{
		Slot: model.SlotGuanjin,
		Name: "冠巾",
		Prefixes: [model.QualityCount][]string{
			model.QualityCommon:    {"布制", "麻织", "粗布", "素巾"},
			model.QualityUncommon:  {"丝织", "锦制", "绣冠", "轻纱"},
			model.QualityRare:      {"灵丝", "云锦", "霓裳", "羽冠"},
			model.QualityEpic:      {"宝冠", "灵冠", "星辰", "月华"},
			model.QualityLegendary: {"仙冠", "神冠", "紫金", "龙纹"},
			model.QualityMythic:    {"天冠", "圣冠", "混沌", "太虚"},
		},
	},
	{
		Slot: model.SlotDaopao,
		Name: "道袍",
		Prefixes: [model.QualityCount][]string{
			model.QualityCommon:    {"粗布", "麻衣", "布衣", "素袍"},
			model.QualityUncommon:  {"丝绸", "锦袍", "绣衣", "轻衫"},
			model.QualityRare:      {"灵绸", "云裳", "霞衣", "霓裳"},
			model.QualityEpic:      {"宝衣", "灵衣", "星辰", "月华"},
			model.QualityLegendary: {"仙衣", "神袍", "紫绶", "龙袍"},
			model.QualityMythic:    {"天衣", "圣袍", "混沌", "太虚"},
		},
	},
	{
		Slot: model.SlotYunlv,
		Name: "云履",
		Prefixes: [model.QualityCount][]string{
			model.QualityCommon:    {"布鞋", "草鞋", "麻鞋", "木屐"},
			model.QualityUncommon:  {"皮靴", "丝履", "锦履", "绣鞋"},
			model.QualityRare:      {"灵靴", "云履", "霞履", "霓履"},
			model.QualityEpic:      {"宝履", "灵履", "星辰", "月华"},
			model.QualityLegendary: {"仙履", "神履", "紫霞", "龙履"},
			model.QualityMythic:    {"天履", "圣履", "混沌", "太虚"},
		},
	},
	{
		Slot: model.SlotFabao,
		Name: "本命法宝",
		Prefixes: [model.QualityCount][]string{
			model.QualityCommon:    {"粗制", "劣质", "仿制", "赝品"},
			model.QualityUncommon:  {"精制", "良品", "上品", "优质"},
			model.QualityRare:      {"灵宝", "珍宝", "异宝", "奇宝"},
			model.QualityEpic:      {"重宝", "至宝", "灵光", "宝华"},
			model.QualityLegendary: {"仙宝", "神宝", "天宝", "圣宝"},
			model.QualityMythic:    {"至尊", "无上", "混沌", "太虚"},
		},
	},
}

// ArchetypeFor returns the archetype of a slot.
func ArchetypeFor(slot model.EquipSlot) (Archetype, bool) {
	for _, a := range Archetypes {
		if a.Slot == slot {
			return a, true
		}
	}
	return Archetype{}, false
}

// Equipment generates one equipment piece for a player of the given level.
//
// Draw order: tier, archetype, prefix, stats. Levels below 1 are treated as 1.
func (g *Generator) Equipment(level int, wish WishBias) model.Equipment {
	level = max(level, 1)

	q := Draw(TableFor(wish), g.src)
	arch := Archetypes[g.src.IntN(len(Archetypes))]
	prefixes := arch.Prefixes[q]
	prefix := prefixes[g.src.IntN(len(prefixes))]

	return model.Equipment{
		ID:               g.newID(),
		Name:             prefix + arch.Name,
		Type:             model.ItemTypeEquipment,
		Quality:          q,
		Slot:             arch.Slot,
		LevelRequirement: level,
		RequiredRealm:    RealmTier(level),
		EnhanceLevel:     0,
		Stats:            rollStats(g.src, q),
		CreatedAt:        g.now(),
	}
}
