package scraper

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"bizradar/models"
)

const searchBaseURL = "https://www.google.com/maps/search/"

var (
	dataLatRe = regexp.MustCompile(`!3d(-?\d+\.\d+)`)
	dataLngRe = regexp.MustCompile(`!4d(-?\d+\.\d+)`)
)

// BuildSearchURL builds the listings-feed URL. With a pinned center the query
// is the bare business type at an explicit position and zoom; otherwise it is
// the "<type> in <location>" free-text form.
func BuildSearchURL(businessType, location string, center *models.Coordinate, radius int) string {
	if center != nil {
		return fmt.Sprintf("%s%s/@%f,%f,%dz",
			searchBaseURL, url.QueryEscape(businessType), center.Lat, center.Lng, ZoomForRadius(radius))
	}
	query := businessType
	if location != "" {
		query = fmt.Sprintf("%s in %s", businessType, location)
	}
	return searchBaseURL + url.QueryEscape(query)
}

// ZoomForRadius maps a search radius in meters to a map zoom level.
func ZoomForRadius(radius int) int {
	switch {
	case radius <= 0:
		return 15
	case radius <= 200:
		return 17
	case radius <= 500:
		return 16
	case radius <= 1000:
		return 15
	case radius <= 2500:
		return 14
	default:
		return 13
	}
}

// ParseCoords extracts a coordinate from a maps URL, trying the "@lat,lng"
// viewport form first and the "!3d…!4d…" place-data form second.
func ParseCoords(rawURL string) *models.Coordinate {
	if c := parseAtCoords(rawURL); c != nil {
		return c
	}
	return parseDataCoords(rawURL)
}

func parseAtCoords(rawURL string) *models.Coordinate {
	_, after, ok := strings.Cut(rawURL, "/@")
	if !ok {
		return nil
	}
	parts := strings.Split(after, ",")
	if len(parts) < 2 {
		return nil
	}
	lat, err1 := strconv.ParseFloat(parts[0], 64)
	lng, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil {
		return nil
	}
	return &models.Coordinate{Lat: lat, Lng: lng}
}

func parseDataCoords(rawURL string) *models.Coordinate {
	latM := dataLatRe.FindStringSubmatch(rawURL)
	lngM := dataLngRe.FindStringSubmatch(rawURL)
	if latM == nil || lngM == nil {
		return nil
	}
	lat, err1 := strconv.ParseFloat(latM[1], 64)
	lng, err2 := strconv.ParseFloat(lngM[1], 64)
	if err1 != nil || err2 != nil {
		return nil
	}
	return &models.Coordinate{Lat: lat, Lng: lng}
}
