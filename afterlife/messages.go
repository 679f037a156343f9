// Copyright 2026 Sectworks
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package afterlife

import (
	"fmt"
	"math/rand"
	"time"
)

// The notice pools keep the community's cultivation-sect voice. Each line
// takes the member's display name.

var departureLines = []string{
	"%s has severed their ties to our demonic brotherhood.",
	"%s has vanished into the shadow realm beyond our reach.",
	"%s has answered the call of darker powers elsewhere.",
	"%s has dissolved into the void, leaving our sect behind.",
	"%s has been consumed by the eternal darkness beyond.",
	"%s has abandoned the mortal coil to seek forbidden arts.",
}

var departureCycleLines = map[int][]string{
	1: {
		"Their soul takes its first journey into the unknown depths of existence.",
		"The first step on the path of eternal wandering has been taken.",
		"They embrace the void for the first time, seeking power beyond our realm.",
	},
	2: {
		"Once again, they choose the path of shadows over our brotherhood.",
		"Their second departure cuts deeper into the fabric of our sect.",
		"The cycle of abandonment continues as they seek greater darkness.",
	},
	3: {
		"Thrice they have forsaken us - a master of departure and solitude.",
		"Their third exodus marks them as a wanderer of the eternal abyss.",
		"Three times they have chosen the unknown over our demonic fellowship.",
	},
}

var epitaphs = []string{
	"%s's demonic qi has dispersed into the void, their path through our sect complete.",
	"The Heavenly Demon acknowledges %s's sacrifice. Their soul joins the eternal darkness.",
	"Blood and shadows remember %s's cultivation journey within our demonic realm.",
	"%s has shattered their mortal shell to pursue the forbidden arts elsewhere.",
	"The crimson moon bears witness to %s's departure from our unholy order.",
	"%s's demonic essence transcends this plane, seeking greater power beyond.",
	"In the abyss of cultivation, %s walks the path of eternal solitude.",
	"The dark heavens call %s to ascend beyond mortal comprehension.",
	"%s's inner demon has guided them to realms unknown to our sect.",
	"May %s's malevolent spirit find dominion in the netherworld.",
	"The sect's shadow grows darker in %s's absence. Their legacy endures.",
	"%s has broken through mortality's chains to embrace the void.",
	"Thunder echoes through the demonic realm as %s departs our brotherhood.",
	"The ancient spirits whisper %s's name in the winds of destruction.",
	"%s's cultivation of darkness leads them beyond our earthly sect.",
}

var returnLines = []string{
	"%s has torn through the veil of death and returned to our demonic sect!",
	"%s emerges from the shadow realm, reborn in darkness!",
	"%s has conquered death itself and returns with greater power!",
	"%s breaks free from the underworld's chains, reincarnated in our sect!",
	"%s descends from the blood moon, their soul tempered by otherworldly trials!",
	"%s has shattered the boundaries of mortality and returns as a demon reborn!",
}

var returnCycleLines = map[int][]string{
	1: {
		"Their first taste of death and rebirth has forged them anew in demonic fire.",
		"Having crossed the threshold of mortality, they return with forbidden knowledge.",
		"The cycle of destruction and creation has blessed them with dark enlightenment.",
	},
	2: {
		"Their second dance with death reveals deeper mysteries of the abyss.",
		"Twice they have walked the path of shadows and emerged stronger.",
		"The dual cycle of annihilation and resurrection marks their ascension.",
	},
	3: {
		"Three times they have conquered death - a true master of reincarnation.",
		"The trinity of death and rebirth has granted them unholy wisdom.",
		"Thrice blessed by the void, they return as a harbinger of darkness.",
	},
}

var welcomeLines = []string{
	"Welcome back to the abyss of cultivation, %s. May your darkness consume all.",
	"The Heavenly Demon rejoices in your return, %s. Let chaos reign.",
	"Your reincarnation strengthens our demonic brotherhood, %s.",
	"Rise, %s, and let your malevolent qi shake the heavens once more.",
	"The sect's shadow grows deeper with your return, %s.",
	"Blood and thunder herald your resurrection, %s. Embrace the darkness.",
}

func pick(pool []string) string {
	return pool[rand.Intn(len(pool))]
}

func departureLine(name string) string {
	return fmt.Sprintf(pick(departureLines), name)
}

func departureCycleLine(timesLeft int) string {
	if pool, ok := departureCycleLines[timesLeft]; ok {
		return pick(pool)
	}
	return fmt.Sprintf(
		"Their %s departure speaks of a restless demon seeking ultimate transcendence.",
		ordinal(timesLeft),
	)
}

func epitaph(name string) string {
	return fmt.Sprintf(pick(epitaphs), name)
}

func returnLine(name string) string {
	return fmt.Sprintf(pick(returnLines), name)
}

func returnCycleLine(timesLeft int) string {
	if pool, ok := returnCycleLines[timesLeft]; ok {
		return pick(pool)
	}
	return fmt.Sprintf(
		"After %s cycles of death and resurrection, they have transcended mortal understanding.",
		ordinal(timesLeft),
	)
}

func welcomeLine(name string) string {
	return fmt.Sprintf(pick(welcomeLines), name)
}

func ordinal(n int) string {
	if n%100 >= 10 && n%100 <= 20 {
		return fmt.Sprintf("%dth", n)
	}
	switch n % 10 {
	case 1:
		return fmt.Sprintf("%dst", n)
	case 2:
		return fmt.Sprintf("%dnd", n)
	case 3:
		return fmt.Sprintf("%drd", n)
	default:
		return fmt.Sprintf("%dth", n)
	}
}

// formatTimeAway renders a duration at the largest sensible unit.
func formatTimeAway(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	switch {
	case days == 1:
		return "1 day"
	case days > 1:
		return fmt.Sprintf("%d days", days)
	case hours == 1:
		return "1 hour"
	case hours > 1:
		return fmt.Sprintf("%d hours", hours)
	case minutes <= 1:
		return "a few moments"
	default:
		return fmt.Sprintf("%d minutes", minutes)
	}
}
