// Package mains resolves the electrical mains frequency used to place the
// hum notch and to measure hum. A configured value wins; otherwise the
// local timezone is mapped to its country.
package mains

import (
	"strings"

	tz "github.com/medama-io/go-timezone-country"
	"github.com/thlib/go-timezone-local/tzlocal"
)

// Supported mains frequencies in Hz
const (
	Hz50 = 50
	Hz60 = 60
)

// Source records how a frequency was chosen.
type Source string

const (
	SourceConfig   Source = "config"
	SourceTimezone Source = "timezone"
	SourceDefault  Source = "default"
)

// Detection is a resolved mains frequency.
type Detection struct {
	Hz       int
	Source   Source
	Timezone string // empty unless looked up
	Country  string // empty unless the timezone mapped to one
}

// Resolver looks up the mains frequency. The zero value reads the runtime
// timezone.
type Resolver struct {
	// LocalTimezone returns the IANA zone name. Nil uses tzlocal.RuntimeTZ.
	LocalTimezone func() (string, error)
}

// Resolve returns the mains frequency using the default Resolver.
func Resolve(configured int) Detection {
	return Resolver{}.Resolve(configured)
}

// Resolve returns configured when it is 50 or 60, and otherwise detects the
// frequency from the local timezone, falling back to 50 Hz.
func (r Resolver) Resolve(configured int) Detection {
	if configured == Hz50 || configured == Hz60 {
		return Detection{Hz: configured, Source: SourceConfig}
	}

	lookup := r.LocalTimezone
	if lookup == nil {
		lookup = tzlocal.RuntimeTZ
	}
	zone, err := lookup()
	if err != nil || zone == "" {
		return Detection{Hz: Hz50, Source: SourceDefault}
	}
	return ForTimezone(zone)
}

// ForTimezone maps an IANA zone to its mains frequency. Zones without a
// country (UTC, Etc/*) and unknown zones give 50 Hz with SourceDefault.
func ForTimezone(zone string) Detection {
	d := Detection{Hz: Hz50, Source: SourceDefault, Timezone: zone}
	if zone == "UTC" || zone == "GMT" || strings.HasPrefix(zone, "Etc/") {
		return d
	}

	countries, err := tz.NewTimezoneCountryMap()
	if err != nil {
		return d
	}
	country, err := countries.GetCountry(zone)
	if err != nil || country == "" {
		return d
	}

	d.Country = country
	d.Source = SourceTimezone
	if sixtyHertz[country] {
		d.Hz = Hz60
	}
	return d
}

// sixtyHertz holds the countries on 60 Hz grids; everywhere else is 50 Hz.
// Japan is split by region and is treated as 50 Hz. Brazil is mixed but
// mostly 60 Hz.
var sixtyHertz = func() map[string]bool {
	names := []string{
		"United States", "Canada", "Mexico",
		"Belize", "Costa Rica", "El Salvador", "Guatemala", "Honduras", "Nicaragua", "Panama",
		"Bahamas", "Barbados", "Cayman Islands", "Cuba", "Dominican Republic", "Haiti",
		"Jamaica", "Puerto Rico", "Trinidad and Tobago", "U.S. Virgin Islands",
		"Brazil", "Colombia", "Ecuador", "Guyana", "Peru", "Suriname", "Venezuela",
		"South Korea", "Taiwan", "Philippines", "Saudi Arabia",
		"Guam", "American Samoa", "Marshall Islands", "Micronesia", "Palau",
	}
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}()
