package geo

import "math"

// EarthRadiusKm радиус сферы, используемой для расчета расстояний
const EarthRadiusKm = 6371.0

// coordinateScale соответствует точности хранения координат NUMERIC(10,8)
const coordinateScale = 1e8

// Distance возвращает расстояние по большому кругу между двумя точками в километрах (формула гаверсинусов)
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Round2 округляет расстояние до двух знаков после запятой
func Round2(km float64) float64 {
	return math.Round(km*100) / 100
}

// RoundCoordinate приводит координату к точности хранения
func RoundCoordinate(v float64) float64 {
	return math.Round(v*coordinateScale) / coordinateScale
}

func ValidLatitude(lat float64) bool {
	return isFinite(lat) && lat >= -90 && lat <= 90
}

func ValidLongitude(lon float64) bool {
	return isFinite(lon) && lon >= -180 && lon <= 180
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
