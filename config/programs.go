package config

// Built-in programs matching the stock demo timings. Demos use these as
// defaults and allow a YAML file to override them.

// TrafficLight is the blind-friendly traffic signal: a four-phase cycle with
// an audible crossing beep during green.
func TrafficLight() *Program {
	return NewProgram("trafficlight").
		WithInitial("red").
		WithTick(10).
		AddPhase("red", 5000).
		AddPhase("red_to_yellow", 2000).
		AddPhase("green", 5000).
		AddPhase("green_to_yellow", 2000).
		WithPulse("green", 1000, 200, 800)
}

// Blink is the canonical one-second LED blinker.
func Blink() *Program {
	return NewProgram("blink").
		WithTick(10).
		AddPhase("on", 1000).
		AddPhase("off", 1000)
}
