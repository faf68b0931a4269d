// Package geo provides great-circle distance helpers for WGS84 coordinates.
//
//	d := geo.Distance(52.5200, 13.4050, 48.8566, 2.3522) // ~877 km
//	near := geo.WithinRadius(lat, lon, otherLat, otherLon, 500)
package geo
