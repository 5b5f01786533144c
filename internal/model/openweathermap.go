package model

// OpenWeatherMapResponse mirrors the subset of the /data/2.5/weather payload we read.
type OpenWeatherMapResponse struct {
	Name  string `json:"name"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Pressure  int     `json:"pressure"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
}

// ToWeatherResult normalizes the provider payload. The first weather entry, if
// any, supplies the condition.
func (r *OpenWeatherMapResponse) ToWeatherResult() *WeatherResult {
	result := &WeatherResult{
		LocationName: r.Name,
		TemperatureC: r.Main.Temp,
		HumidityPct:  r.Main.Humidity,
		WindSpeedMs:  r.Wind.Speed,
	}
	if len(r.Weather) > 0 {
		result.ConditionIcon = r.Weather[0].Icon
		result.ConditionText = r.Weather[0].Description
	}
	return result
}
