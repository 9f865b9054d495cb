// Package engine declares the native classes the Gothic engine exposes to
// scripts and binds their members to a program image.
//
// Each class is a Go struct embedding dat.InstanceHeader. Fields carry a
// daedalus tag naming the script member they back, so "C_NPC.ATTRIBUTE"
// maps to the field of Npc tagged `daedalus:"ATTRIBUTE"`. Script-function
// members (routines, conditions, callbacks) hold the function's symbol
// index.
package engine

import "github.com/chazu/daedalus/dat"

// Array sizes shared with the scripts.
const (
	MaxChapter     = 5
	MaxMissions    = 5
	MaxHitChance   = 5
	AttributeMax   = 8
	ItemTextMax    = 6
	DamageIndexMax = 8
	ItemCondMax    = 3
	ItemChangeMax  = 3
	NpcNames       = 5
	NpcAIVars      = 100
)

// Npc attribute indices.
const (
	AttrHitpoints = iota
	AttrHitpointsMax
	AttrMana
	AttrManaMax
	AttrStrength
	AttrDexterity
	AttrRegenerateHP
	AttrRegenerateMana
)

// Npc flags.
const (
	NpcFlagFriends   = 1 << 0
	NpcFlagImmortal  = 1 << 1
	NpcFlagGhost     = 1 << 2
	NpcFlagProtected = 1 << 10
)

// ---------------------------------------------------------------------------
// Characters and missions
// ---------------------------------------------------------------------------

// Npc backs C_NPC.
type Npc struct {
	dat.InstanceHeader

	ID           int32                 `daedalus:"ID"`
	Name         [NpcNames]string      `daedalus:"NAME"`
	Slot         string                `daedalus:"SLOT"`
	Effect       string                `daedalus:"EFFECT"`
	NpcType      int32                 `daedalus:"NPCTYPE"`
	Flags        int32                 `daedalus:"FLAGS"`
	Attribute    [AttributeMax]int32   `daedalus:"ATTRIBUTE"`
	HitChance    [MaxHitChance]int32   `daedalus:"HITCHANCE"`
	Protection   [DamageIndexMax]int32 `daedalus:"PROTECTION"`
	Damage       [DamageIndexMax]int32 `daedalus:"DAMAGE"`
	DamageType   int32                 `daedalus:"DAMAGETYPE"`
	Guild        int32                 `daedalus:"GUILD"`
	Level        int32                 `daedalus:"LEVEL"`
	Mission      [MaxMissions]int32    `daedalus:"MISSION"`
	FightTactic  int32                 `daedalus:"FIGHT_TACTIC"`
	Weapon       int32                 `daedalus:"WEAPON"`
	Voice        int32                 `daedalus:"VOICE"`
	VoicePitch   int32                 `daedalus:"VOICEPITCH"`
	BodyMass     int32                 `daedalus:"BODYMASS"`
	DailyRoutine int32                 `daedalus:"DAILY_ROUTINE"`
	StartAIState int32                 `daedalus:"START_AISTATE"`
	SpawnPoint   string                `daedalus:"SPAWNPOINT"`
	SpawnDelay   int32                 `daedalus:"SPAWNDELAY"`
	Senses       int32                 `daedalus:"SENSES"`
	SensesRange  int32                 `daedalus:"SENSES_RANGE"`
	AIVar        [NpcAIVars]int32      `daedalus:"AIVAR"`
	Waypoint     string                `daedalus:"WP"`
	Exp          int32                 `daedalus:"EXP"`
	ExpNext      int32                 `daedalus:"EXP_NEXT"`
	LearnPoints  int32                 `daedalus:"LP"`

	BodyStateInterruptableOverride int32 `daedalus:"BODYSTATEINTERRUPTABLEOVERRIDE"`
	NoFocus                        int32 `daedalus:"NOFOCUS"`
}

// Mission backs C_MISSION.
type Mission struct {
	dat.InstanceHeader

	Name               string `daedalus:"NAME"`
	Description        string `daedalus:"DESCRIPTION"`
	Duration           int32  `daedalus:"DURATION"`
	Important          int32  `daedalus:"IMPORTANT"`
	OfferConditions    int32  `daedalus:"OFFERCONDITIONS"`
	Offer              int32  `daedalus:"OFFER"`
	SuccessConditions  int32  `daedalus:"SUCCESSCONDITIONS"`
	Success            int32  `daedalus:"SUCCESS"`
	FailureConditions  int32  `daedalus:"FAILURECONDITIONS"`
	Failure            int32  `daedalus:"FAILURE"`
	ObsoleteConditions int32  `daedalus:"OBSOLETECONDITIONS"`
	Obsolete           int32  `daedalus:"OBSOLETE"`
	Running            int32  `daedalus:"RUNNING"`
}

// Info backs C_INFO, a dialog option.
type Info struct {
	dat.InstanceHeader

	Npc         int32  `daedalus:"NPC"`
	Nr          int32  `daedalus:"NR"`
	Important   int32  `daedalus:"IMPORTANT"`
	Condition   int32  `daedalus:"CONDITION"`
	Information int32  `daedalus:"INFORMATION"`
	Description string `daedalus:"DESCRIPTION"`
	Trade       int32  `daedalus:"TRADE"`
	Permanent   int32  `daedalus:"PERMANENT"`
}

// ---------------------------------------------------------------------------
// Items
// ---------------------------------------------------------------------------

// Item backs C_ITEM.
type Item struct {
	dat.InstanceHeader

	ID            int32                 `daedalus:"ID"`
	Name          string                `daedalus:"NAME"`
	NameID        string                `daedalus:"NAMEID"`
	HP            int32                 `daedalus:"HP"`
	HPMax         int32                 `daedalus:"HP_MAX"`
	MainFlag      int32                 `daedalus:"MAINFLAG"`
	Flags         int32                 `daedalus:"FLAGS"`
	Weight        int32                 `daedalus:"WEIGHT"`
	Value         int32                 `daedalus:"VALUE"`
	DamageType    int32                 `daedalus:"DAMAGETYPE"`
	DamageTotal   int32                 `daedalus:"DAMAGETOTAL"`
	Damage        [DamageIndexMax]int32 `daedalus:"DAMAGE"`
	Wear          int32                 `daedalus:"WEAR"`
	Protection    [DamageIndexMax]int32 `daedalus:"PROTECTION"`
	Nutrition     int32                 `daedalus:"NUTRITION"`
	CondAtr       [ItemCondMax]int32    `daedalus:"COND_ATR"`
	CondValue     [ItemCondMax]int32    `daedalus:"COND_VALUE"`
	ChangeAtr     [ItemChangeMax]int32  `daedalus:"CHANGE_ATR"`
	ChangeValue   [ItemChangeMax]int32  `daedalus:"CHANGE_VALUE"`
	Magic         int32                 `daedalus:"MAGIC"`
	OnEquip       int32                 `daedalus:"ON_EQUIP"`
	OnUnequip     int32                 `daedalus:"ON_UNEQUIP"`
	OnState       [4]int32              `daedalus:"ON_STATE"`
	Owner         int32                 `daedalus:"OWNER"`
	OwnerGuild    int32                 `daedalus:"OWNERGUILD"`
	DisguiseGuild int32                 `daedalus:"DISGUISEGUILD"`
	Visual        string                `daedalus:"VISUAL"`
	VisualChange  string                `daedalus:"VISUAL_CHANGE"`
	Effect        string                `daedalus:"EFFECT"`
	VisualSkin    int32                 `daedalus:"VISUAL_SKIN"`
	SchemeName    string                `daedalus:"SCEMENAME"`
	Material      int32                 `daedalus:"MATERIAL"`
	Munition      int32                 `daedalus:"MUNITION"`
	Spell         int32                 `daedalus:"SPELL"`
	Range         int32                 `daedalus:"RANGE"`
	MagCircle     int32                 `daedalus:"MAG_CIRCLE"`
	Description   string                `daedalus:"DESCRIPTION"`
	Text          [ItemTextMax]string   `daedalus:"TEXT"`
	Count         [ItemTextMax]int32    `daedalus:"COUNT"`
	InvZBias      int32                 `daedalus:"INV_ZBIAS"`
	InvRotX       int32                 `daedalus:"INV_ROTX"`
	InvRotY       int32                 `daedalus:"INV_ROTY"`
	InvRotZ       int32                 `daedalus:"INV_ROTZ"`
	InvAnimate    int32                 `daedalus:"INV_ANIMATE"`

	// Amount is the stack size held by the host; no script member backs it.
	Amount int32
}

// ItemReact backs C_ITEMREACT, a trade reaction.
type ItemReact struct {
	dat.InstanceHeader

	Npc             int32 `daedalus:"NPC"`
	TradeItem       int32 `daedalus:"TRADE_ITEM"`
	TradeAmount     int32 `daedalus:"TRADE_AMOUNT"`
	RequestedCat    int32 `daedalus:"REQUESTED_CAT"`
	RequestedItem   int32 `daedalus:"REQUESTED_ITEM"`
	RequestedAmount int32 `daedalus:"REQUESTED_AMOUNT"`
	Reaction        int32 `daedalus:"REACTION"`
}

// ---------------------------------------------------------------------------
// Perception, magic and sound
// ---------------------------------------------------------------------------

// Focus backs C_FOCUS.
type Focus struct {
	dat.InstanceHeader

	NpcLongRange float32 `daedalus:"NPC_LONGRANGE"`
	NpcRange1    float32 `daedalus:"NPC_RANGE1"`
	NpcRange2    float32 `daedalus:"NPC_RANGE2"`
	NpcAzi       float32 `daedalus:"NPC_AZI"`
	NpcElevDo    float32 `daedalus:"NPC_ELEVDO"`
	NpcElevUp    float32 `daedalus:"NPC_ELEVUP"`
	NpcPrio      int32   `daedalus:"NPC_PRIO"`

	ItemRange1 float32 `daedalus:"ITEM_RANGE1"`
	ItemRange2 float32 `daedalus:"ITEM_RANGE2"`
	ItemAzi    float32 `daedalus:"ITEM_AZI"`
	ItemElevDo float32 `daedalus:"ITEM_ELEVDO"`
	ItemElevUp float32 `daedalus:"ITEM_ELEVUP"`
	ItemPrio   int32   `daedalus:"ITEM_PRIO"`

	MobRange1 float32 `daedalus:"MOB_RANGE1"`
	MobRange2 float32 `daedalus:"MOB_RANGE2"`
	MobAzi    float32 `daedalus:"MOB_AZI"`
	MobElevDo float32 `daedalus:"MOB_ELEVDO"`
	MobElevUp float32 `daedalus:"MOB_ELEVUP"`
	MobPrio   int32   `daedalus:"MOB_PRIO"`
}

// Spell backs C_SPELL.
type Spell struct {
	dat.InstanceHeader

	TimePerMana                 float32 `daedalus:"TIME_PER_MANA"`
	DamagePerLevel              int32   `daedalus:"DAMAGE_PER_LEVEL"`
	DamageType                  int32   `daedalus:"DAMAGETYPE"`
	SpellType                   int32   `daedalus:"SPELLTYPE"`
	CanTurnDuringInvest         int32   `daedalus:"CANTURNDURINGINVEST"`
	CanChangeTargetDuringInvest int32   `daedalus:"CANCHANGETARGETDURINGINVEST"`
	IsMultiEffect               int32   `daedalus:"ISMULTIEFFECT"`
	TargetCollectAlgo           int32   `daedalus:"TARGETCOLLECTALGO"`
	TargetCollectType           int32   `daedalus:"TARGETCOLLECTTYPE"`
	TargetCollectRange          int32   `daedalus:"TARGETCOLLECTRANGE"`
	TargetCollectAzi            int32   `daedalus:"TARGETCOLLECTAZI"`
	TargetCollectElev           int32   `daedalus:"TARGETCOLLECTELEV"`
}

// Sfx backs C_SFX.
type Sfx struct {
	dat.InstanceHeader

	File            string  `daedalus:"FILE"`
	PitchOff        int32   `daedalus:"PITCHOFF"`
	PitchVar        int32   `daedalus:"PITCHVAR"`
	Vol             int32   `daedalus:"VOL"`
	Loop            int32   `daedalus:"LOOP"`
	LoopStartOffset int32   `daedalus:"LOOPSTARTOFFSET"`
	LoopEndOffset   int32   `daedalus:"LOOPENDOFFSET"`
	ReverbLevel     float32 `daedalus:"REVERBLEVEL"`
	PfxName         string  `daedalus:"PFXNAME"`
}

// NewSfx returns an Sfx with the engine's default volume.
func NewSfx() *Sfx { return &Sfx{Vol: 64} }
