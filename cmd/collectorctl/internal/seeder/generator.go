package seeder

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/pulsemetrics/collector/internal/models"
)

// Device is one simulated client. A generator keeps a fixed pool of
// devices so repeated events share identity headers, the way real
// clients do.
type Device struct {
	UUID       string
	AppVersion string
	OSVersion  string
	UserAgent  string
}

// Generator produces synthetic event payloads according to a profile.
type Generator struct {
	profile *Profile
	devices []Device
	rng     *rand.Rand
}

// NewGenerator builds a generator with a device pool sized by the
// profile. The seed makes runs reproducible.
func NewGenerator(profile *Profile, seed int64) *Generator {
	gofakeit.Seed(seed)
	rng := rand.New(rand.NewSource(seed))

	devices := make([]Device, profile.Devices)
	for i := range devices {
		devices[i] = Device{
			UUID:       uuid.NewString(),
			AppVersion: fmt.Sprintf("%d.%d.%d", rng.Intn(3)+1, rng.Intn(10), rng.Intn(20)),
			OSVersion:  gofakeit.RandomString([]string{"iOS 17.5", "iOS 18.0", "Android 14", "Android 15"}),
			UserAgent:  gofakeit.UserAgent(),
		}
	}

	return &Generator{profile: profile, devices: devices, rng: rng}
}

// Next returns one payload and the device that emitted it.
func (g *Generator) Next() (*models.EventPayload, Device) {
	device := g.devices[g.rng.Intn(len(g.devices))]

	payload := &models.EventPayload{
		Page:  g.pick(g.profile.Pages),
		Event: g.pick(g.profile.Events),
	}

	switch payload.Event {
	case "click":
		payload.Target = gofakeit.RandomString([]string{"cta_button", "nav_link", "card", "footer_link"})
		payload.Label = gofakeit.BuzzWord()
	case "scroll":
		payload.Section = gofakeit.RandomString([]string{"header", "body", "comments", "related"})
	case "share":
		payload.Target = gofakeit.RandomString([]string{"twitter", "facebook", "copy_link"})
	}

	if g.rng.Intn(4) == 0 {
		param, _ := json.Marshal(map[string]any{
			"session_id": gofakeit.UUID(),
			"referrer":   gofakeit.URL(),
		})
		payload.Param = param
	}

	return payload, device
}

// pick selects a value by relative weight.
func (g *Generator) pick(candidates []WeightedValue) string {
	total := 0
	for _, wv := range candidates {
		total += wv.Weight
	}
	n := g.rng.Intn(total)
	for _, wv := range candidates {
		n -= wv.Weight
		if n < 0 {
			return wv.Value
		}
	}
	return candidates[len(candidates)-1].Value
}
