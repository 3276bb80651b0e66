// Package names resolves joint and animation names for lookups.
package names

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns the case-folded form of a name for case-insensitive
// matching. Surrounding whitespace is dropped.
func Fold(s string) string {
	// A Caser keeps state, so each call gets its own.
	return cases.Fold().String(strings.TrimSpace(s))
}

// Equal reports whether two names match ignoring case.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}

// Index maps folded names to values.
type Index[V any] map[string]V

// Add registers name. An existing entry for the same folded name is kept,
// so the first joint with a given name wins.
func (idx Index[V]) Add(name string, v V) {
	key := Fold(name)
	if key == "" {
		return
	}
	if _, ok := idx[key]; !ok {
		idx[key] = v
	}
}

// Lookup finds name ignoring case.
func (idx Index[V]) Lookup(name string) (V, bool) {
	v, ok := idx[Fold(name)]
	return v, ok
}

// AnimationNames lists the standard animation identifiers by id.
var AnimationNames = []string{
	"Stand",                // 0
	"Death",                // 1
	"Spell",                // 2
	"Stop",                 // 3
	"Walk",                 // 4
	"Run",                  // 5
	"Dead",                 // 6
	"Rise",                 // 7
	"StandWound",           // 8
	"CombatWound",          // 9
	"CombatCritical",       // 10
	"ShuffleLeft",          // 11
	"ShuffleRight",         // 12
	"Walkbackwards",        // 13
	"Stun",                 // 14
	"HandsClosed",          // 15
	"AttackUnarmed",        // 16
	"Attack1H",             // 17
	"Attack2H",             // 18
	"Attack2HL",            // 19
	"ParryUnarmed",         // 20
	"Parry1H",              // 21
	"Parry2H",              // 22
	"Parry2HL",             // 23
	"ShieldBlock",          // 24
	"ReadyUnarmed",         // 25
	"Ready1H",              // 26
	"Ready2H",              // 27
	"Ready2HL",             // 28
	"ReadyBow",             // 29
	"Dodge",                // 30
	"SpellPrecast",         // 31
	"SpellCast",            // 32
	"SpellCastArea",        // 33
	"NPCWelcome",           // 34
	"NPCGoodbye",           // 35
	"Block",                // 36
	"JumpStart",            // 37
	"Jump",                 // 38
	"JumpEnd",              // 39
	"Fall",                 // 40
	"SwimIdle",             // 41
	"Swim",                 // 42
	"SwimLeft",             // 43
	"SwimRight",            // 44
	"SwimBackwards",        // 45
	"AttackBow",            // 46
	"FireBow",              // 47
	"ReadyRifle",           // 48
	"AttackRifle",          // 49
	"Loot",                 // 50
	"ReadySpellDirected",   // 51
	"ReadySpellOmni",       // 52
	"SpellCastDirected",    // 53
	"SpellCastOmni",        // 54
	"BattleRoar",           // 55
	"ReadyAbility",         // 56
	"Special1H",            // 57
	"Special2H",            // 58
	"ShieldBash",           // 59
	"EmoteTalk",            // 60
	"EmoteEat",             // 61
	"EmoteWork",            // 62
	"EmoteUseStanding",     // 63
	"EmoteTalkExclamation", // 64
	"EmoteTalkQuestion",    // 65
	"EmoteBow",             // 66
	"EmoteWave",            // 67
	"EmoteCheer",           // 68
	"EmoteDance",           // 69
	"EmoteLaugh",           // 70
	"EmoteSleep",           // 71
	"EmoteSitGround",       // 72
	"EmoteRude",            // 73
	"EmoteRoar",            // 74
	"EmoteKneel",           // 75
	"EmoteKiss",            // 76
	"EmoteCry",             // 77
	"EmoteChicken",         // 78
	"EmoteBeg",             // 79
	"EmoteApplaud",         // 80
	"EmoteShout",           // 81
	"EmoteFlex",            // 82
	"EmoteShy",             // 83
	"EmotePoint",           // 84
}

// Animation id constants for common sequences.
const (
	AnimStand = 0
	AnimDeath = 1
	AnimWalk  = 4
	AnimRun   = 5
	AnimDead  = 6
)

var animationIndex = func() Index[int] {
	idx := make(Index[int], len(AnimationNames))
	for id, name := range AnimationNames {
		idx.Add(name, id)
	}
	return idx
}()

// AnimationName returns the standard name for an animation id.
func AnimationName(id int) string {
	if id >= 0 && id < len(AnimationNames) {
		return AnimationNames[id]
	}
	return fmt.Sprintf("Anim%d", id)
}

// AnimationID resolves a name, a decimal id, or the "AnimN" form produced
// by AnimationName back to an animation id.
func AnimationID(name string) (int, bool) {
	if id, ok := animationIndex.Lookup(name); ok {
		return id, true
	}
	s := Fold(name)
	s = strings.TrimPrefix(s, "anim")
	if id, err := strconv.Atoi(s); err == nil && id >= 0 {
		return id, true
	}
	return 0, false
}
