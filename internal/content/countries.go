// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package content

import (
	"sort"
	"strings"
)

// Country is a selectable signup country.
type Country struct {
	ISOCode  string
	Name     string
	DialCode string
	States   []string
}

var countries = []Country{
	{"AE", "United Arab Emirates", "+971", []string{
		"Abu Dhabi", "Ajman", "Dubai", "Fujairah", "Ras al-Khaimah", "Sharjah", "Umm al-Quwain",
	}},
	{"AU", "Australia", "+61", []string{
		"Australian Capital Territory", "New South Wales", "Northern Territory", "Queensland",
		"South Australia", "Tasmania", "Victoria", "Western Australia",
	}},
	{"CA", "Canada", "+1", []string{
		"Alberta", "British Columbia", "Manitoba", "New Brunswick", "Newfoundland and Labrador",
		"Northwest Territories", "Nova Scotia", "Nunavut", "Ontario", "Prince Edward Island",
		"Quebec", "Saskatchewan", "Yukon",
	}},
	{"GB", "United Kingdom", "+44", []string{
		"England", "Northern Ireland", "Scotland", "Wales",
	}},
	{"IN", "India", "+91", []string{
		"Andaman and Nicobar Islands", "Andhra Pradesh", "Arunachal Pradesh", "Assam", "Bihar",
		"Chandigarh", "Chhattisgarh", "Dadra and Nagar Haveli and Daman and Diu", "Delhi", "Goa",
		"Gujarat", "Haryana", "Himachal Pradesh", "Jammu and Kashmir", "Jharkhand", "Karnataka",
		"Kerala", "Ladakh", "Lakshadweep", "Madhya Pradesh", "Maharashtra", "Manipur", "Meghalaya",
		"Mizoram", "Nagaland", "Odisha", "Puducherry", "Punjab", "Rajasthan", "Sikkim",
		"Tamil Nadu", "Telangana", "Tripura", "Uttar Pradesh", "Uttarakhand", "West Bengal",
	}},
	{"SG", "Singapore", "+65", []string{
		"Central Singapore", "North East", "North West", "South East", "South West",
	}},
	{"US", "United States", "+1", []string{
		"Alabama", "Alaska", "Arizona", "Arkansas", "California", "Colorado", "Connecticut",
		"Delaware", "District of Columbia", "Florida", "Georgia", "Hawaii", "Idaho", "Illinois",
		"Indiana", "Iowa", "Kansas", "Kentucky", "Louisiana", "Maine", "Maryland", "Massachusetts",
		"Michigan", "Minnesota", "Mississippi", "Missouri", "Montana", "Nebraska", "Nevada",
		"New Hampshire", "New Jersey", "New Mexico", "New York", "North Carolina", "North Dakota",
		"Ohio", "Oklahoma", "Oregon", "Pennsylvania", "Rhode Island", "South Carolina",
		"South Dakota", "Tennessee", "Texas", "Utah", "Vermont", "Virginia", "Washington",
		"West Virginia", "Wisconsin", "Wyoming",
	}},
}

// Countries returns the selectable countries sorted by name.
func Countries() []Country {
	out := make([]Country, len(countries))
	copy(out, countries)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupCountry finds a country by ISO code or name, case-insensitively.
func LookupCountry(s string) (Country, bool) {
	s = strings.TrimSpace(s)
	for _, c := range countries {
		if strings.EqualFold(c.ISOCode, s) || strings.EqualFold(c.Name, s) {
			return c, true
		}
	}
	return Country{}, false
}

// StatesOf returns the states of the named country, or nil.
func StatesOf(country string) []string {
	c, ok := LookupCountry(country)
	if !ok {
		return nil
	}
	return c.States
}

// HasState reports whether state belongs to country.
func (c Country) HasState(state string) bool {
	for _, s := range c.States {
		if strings.EqualFold(s, strings.TrimSpace(state)) {
			return true
		}
	}
	return false
}

// FormatPhone prefixes a local number with the country's dial code unless
// it already carries one.
func (c Country) FormatPhone(number string) string {
	number = strings.TrimSpace(number)
	if number == "" || strings.HasPrefix(number, "+") {
		return number
	}
	return c.DialCode + " " + number
}
