package loot

import "github.com/udisondev/xiuxian/internal/model"

var petNames = [model.QualityCount][]string{
	model.QualityCommon:    {"白狐", "灰狼", "黄牛", "黑虎", "赤马", "棕熊", "青蛇", "紫貂", "银鼠", "金蝉", "彩雀", "田园犬"},
	model.QualityUncommon:  {"妖猴", "妖驴", "妖豹", "妖蛇", "妖虎", "妖熊", "妖鹰", "妖蝎", "妖蛛", "妖蝠", "妖蟾", "妖蜈"},
	model.QualityRare:      {"灵狐", "灵鹿", "灵龟", "灵蛇", "灵猿", "灵鹤", "灵鲤", "灵雀", "灵虎", "灵豹", "灵猫", "灵犬"},
	model.QualityEpic:      {"饕餮", "穷奇", "梼杌", "混沌", "九婴", "相柳", "凿齿", "修蛇", "封豨", "大风", "巴蛇", "朱厌"},
	model.QualityLegendary: {"麒麟", "凤凰", "龙龟", "白泽", "重明鸟", "当康", "乘黄", "英招", "夫诸", "天马", "青牛", "玄龟"},
	model.QualityMythic:    {"应龙", "夔牛", "毕方", "饕餮", "九尾狐", "玉兔", "金蟾", "青鸾", "火凤", "水麒麟", "土蝼", "陆吾"},
}

var petDescriptions = [model.QualityCount][]string{
	model.QualityCommon: {
		"一只普通的小动物，刚刚开启灵智",
		"刚刚踏上修仙路的凡兽，潜力有限",
		"随处可见的普通凡兽，资质平庸",
		"最低等的凡兽，仅有微弱的灵力",
		"毛茸茸的小家伙，虽然灵力微弱但十分忠诚",
		"山野间常见的小生灵，懵懂单纯",
	},
	model.QualityUncommon: {
		"已具初步妖力的妖兽，有一定培养价值",
		"开启了妖智的兽类，具备基本法术能力",
		"经过初步修炼的妖兽，战斗力尚可",
		"初具成长的妖兽，已能施展简单法术",
		"体内蕴含妖力精华，有望成长为强大伙伴",
		"灵智已开，能听懂主人简单的指令",
	},
	model.QualityRare: {
		"天生蕴含灵气的珍稀兽类，颇具潜力",
		"灵力充沛的高等灵兽，是不错的伙伴",
		"具有强大灵力的兽类，战斗力出色",
		"千年难遇的灵兽，拥有不俗的天赋",
		"通体散发着柔和灵光，天生与道有缘",
		"灵性非凡，可助主人感悟天地大道",
	},
	model.QualityEpic: {
		"来自上古时代的神秘异兽，力量强大",
		"传说中的远古生物，拥有毁天灭地之力",
		"稀世罕见的上古凶兽，威能惊人",
		"承载着远古血脉的强大生物，实力深不可测",
		"血脉中流淌着太古神力，潜力无穷",
		"一吼可震动山河，乃是天地孕育的奇珍",
	},
	model.QualityLegendary: {
		"祥瑞降临，世间少有的瑞兽",
		"蕴含天地精华的瑞兽，气运之子",
		"可佑主人大道亨通的瑞兽",
		"拥有莫大威能的瑞兽，极为罕见",
		"身披祥云，踏足之处百邪不侵",
		"瑞气千条，能为主人带来无上机缘和庇佑",
	},
	model.QualityMythic: {
		"超越凡俗的仙界仙兽，几近传说",
		"来自仙境的存在，拥有通天彻地之能",
		"近乎神明般的存在，掌握天地法则",
		"传说中只存在于神话中的至高仙兽",
		"仙气缭绕，举手投足间蕴含大道至理",
		"超脱三界之外，不在五行之中，已窥仙道真谛",
	},
}

// PetNames returns the candidate names of a rarity.
func PetNames(q model.Quality) []string {
	if !q.Valid() {
		return nil
	}
	return petNames[q]
}

// PetDescriptions returns the candidate descriptions of a rarity.
func PetDescriptions(q model.Quality) []string {
	if !q.Valid() {
		return nil
	}
	return petDescriptions[q]
}

// Базовый бонус и прирост за звезду по редкости.
var (
	petBaseBonus = [model.QualityCount]float64{0.03, 0.03, 0.06, 0.09, 0.12, 0.15}
	petStarStep  = [model.QualityCount]float64{0.01, 0.01, 0.01, 0.01, 0.01, 0.02}
)

// Every petPhaseStars stars a pet gains an extra half of its base bonus.
const petPhaseStars = 5

// PetBonus returns the attack/defense/health bonus of a pet:
//
//	base + star×step + (level−1)×base×0.1 + ⌊star/5⌋×base×0.5
//
// A fresh pet (level 1, star 0) gets exactly base.
func PetBonus(rarity model.Quality, star, level int) float64 {
	if !rarity.Valid() {
		rarity = model.QualityCommon
	}
	star = max(star, 0)
	level = max(level, 1)

	base := petBaseBonus[rarity]
	bonus := base
	if star > 0 {
		bonus += float64(star) * petStarStep[rarity]
	}
	if level > 1 {
		bonus += float64(level-1) * base * 0.1
	}
	if phase := star / petPhaseStars; phase > 0 {
		bonus += float64(phase) * base * 0.5
	}
	return bonus
}

// Pet generates one pet. Pets always start at level 1, star 0, whatever the
// level of the drawing player.
//
// Draw order: rarity, name, attributes, description.
func (g *Generator) Pet(wish WishBias) model.Pet {
	q := Draw(TableFor(wish), g.src)
	names := petNames[q]
	name := names[g.src.IntN(len(names))]
	stats := rollStats(g.src, q)
	descs := petDescriptions[q]
	desc := descs[g.src.IntN(len(descs))]

	p := model.Pet{
		ID:               g.newID(),
		Name:             name,
		Type:             model.ItemTypePet,
		Rarity:           q,
		Level:            1,
		Star:             0,
		Exp:              0,
		Description:      desc,
		CombatAttributes: stats,
		CreatedAt:        g.now(),
	}
	p.SetBonus(PetBonus(q, 0, 1))
	return p
}
