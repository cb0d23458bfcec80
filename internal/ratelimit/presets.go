package ratelimit

import "time"

type Preset struct {
	Name   string
	Window time.Duration
	Max    int
}

func (p Preset) Key(id string) string { return p.Name + ":" + id }

var (
	Default = Preset{Name: "default", Window: time.Minute, Max: 60}
	Login   = Preset{Name: "login", Window: time.Minute, Max: 5}
	Signup  = Preset{Name: "signup", Window: 5 * time.Minute, Max: 3}
	API     = Preset{Name: "api", Window: time.Minute, Max: 30}
	Booking = Preset{Name: "booking", Window: time.Minute, Max: 10}
	Contact = Preset{Name: "contact", Window: 5 * time.Minute, Max: 3}
)
