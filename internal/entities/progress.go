package entities

// EmptySlot is the placeholder stored in an unused power or passive slot
const EmptySlot = "-----"

// Slot counts for equipped skills
const (
	PowerSlotCount   = 5
	PassiveSlotCount = 5
)

// Seeded defaults for a brand-new account
const (
	SeedBasicSkill = "Punch"
	SeedLevel      = 1
	SeedSP         = 5
	SeedPower      = 10
	SeedSpeed      = 20
	SeedHealth     = 250
	SeedEnergy     = 100
)

// PlayerProgress is the durable per-user progression record. JSON tags
// match the field names of the user_data documents.
type PlayerProgress struct {
	UserID      string `json:"user_id"`
	Level       int    `json:"level"`
	Experience  int    `json:"exp"`
	SkillPoints int    `json:"sp"`
	AttackPower int    `json:"power"`
	Speed       int    `json:"speed"`
	MaxHealth   int    `json:"hp"`
	MaxEnergy   int    `json:"mp"`
	Wins        int    `json:"wins"`

	// Learned holds every skill name the user has bought with SP
	Learned []string `json:"skills"`

	// Equipped skills. Basic is always set; Special may be empty.
	// The slot arrays always have five entries, empty ones holding
	// EmptySlot.
	Basic        string   `json:"basic"`
	Special      string   `json:"special"`
	PowerSlots   []string `json:"attack"`
	PassiveSlots []string `json:"passive"`
}

// NewPlayerProgress builds a freshly seeded record for first activity.
// seedExp is the initial experience grant (rolled by the caller).
func NewPlayerProgress(userID string, seedExp int) *PlayerProgress {
	return &PlayerProgress{
		UserID:       userID,
		Level:        SeedLevel,
		Experience:   seedExp,
		SkillPoints:  SeedSP,
		AttackPower:  SeedPower,
		Speed:        SeedSpeed,
		MaxHealth:    SeedHealth,
		MaxEnergy:    SeedEnergy,
		Learned:      []string{SeedBasicSkill},
		Basic:        SeedBasicSkill,
		PowerSlots:   EmptySlots(PowerSlotCount),
		PassiveSlots: EmptySlots(PassiveSlotCount),
	}
}

// EmptySlots returns n placeholder slots
func EmptySlots(n int) []string {
	slots := make([]string, n)
	for i := range slots {
		slots[i] = EmptySlot
	}
	return slots
}

// HasLearned reports whether the user has learned the named skill
func (p *PlayerProgress) HasLearned(name string) bool {
	for _, s := range p.Learned {
		if s == name {
			return true
		}
	}
	return false
}

// Normalize pads slot arrays that are missing entries. Older documents
// can be short if they were written by hand.
func (p *PlayerProgress) Normalize() {
	for len(p.PowerSlots) < PowerSlotCount {
		p.PowerSlots = append(p.PowerSlots, EmptySlot)
	}
	for len(p.PassiveSlots) < PassiveSlotCount {
		p.PassiveSlots = append(p.PassiveSlots, EmptySlot)
	}
	if p.Learned == nil {
		p.Learned = []string{}
	}
}
