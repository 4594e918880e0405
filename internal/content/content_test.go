// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package content

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFAQs(t *testing.T) {
	faqs := FAQs()
	require.Len(t, faqs, 3)
	assert.Equal(t, "What is Advith iTec?", faqs[0].Question)
	assert.Contains(t, faqs[1].Markdown(), "- Payroll Management")
}

func TestHelp(t *testing.T) {
	cats := Help()
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Category)
		assert.NotEmpty(t, c.Articles, c.Category)
	}
	assert.Equal(t, []string{"GST Filing", "Income Tax", "Corporate Tax", "Documentation"}, names)
	assert.Contains(t, cats[0].Markdown(), "**Monthly GST Returns**")
}

func TestCountries(t *testing.T) {
	all := Countries()
	assert.True(t, sort.SliceIsSorted(all, func(i, j int) bool { return all[i].Name < all[j].Name }))

	in, ok := LookupCountry("in")
	require.True(t, ok)
	assert.Equal(t, "India", in.Name)
	assert.True(t, in.HasState("karnataka"))
	assert.False(t, in.HasState("Texas"))

	_, ok = LookupCountry("Atlantis")
	assert.False(t, ok)
	assert.Nil(t, StatesOf("Atlantis"))
	assert.Contains(t, StatesOf("United States"), "Texas")
}

func TestFormatPhone(t *testing.T) {
	in, _ := LookupCountry("IN")
	assert.Equal(t, "+91 9876543210", in.FormatPhone("9876543210"))
	assert.Equal(t, "+1 5551234567", in.FormatPhone("+1 5551234567"))
	assert.Equal(t, "", in.FormatPhone("  "))
}
