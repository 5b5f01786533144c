package dashboard

const (
	AdviceHeavyJacket  = "heavy jacket"
	AdviceLightSweater = "light sweater"
	AdviceTShirt       = "t-shirt weather"
)

// ClothingAdvice maps a temperature in Celsius to a suggestion. Each bracket
// includes its lower bound: 10 is sweater weather, 20 is t-shirt weather.
func ClothingAdvice(tempC float64) string {
	switch {
	case tempC < 10:
		return AdviceHeavyJacket
	case tempC < 20:
		return AdviceLightSweater
	default:
		return AdviceTShirt
	}
}
