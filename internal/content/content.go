// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package content holds the static Home and Help text shown in the widget.
package content

import (
	"fmt"
	"strings"
)

// Brand is the support desk name.
const Brand = "Advith iTec Support"

// WelcomeTitle and WelcomeText open the Home tab.
const (
	WelcomeTitle = "Welcome to Advith iTec Support"
	WelcomeText  = "We're here to help you with any questions about our services. " +
		"Browse through our frequently asked questions below or start a " +
		"conversation with our support team."
	FAQHeading  = "Generally Asked Questions"
	HelpHeading = "Help Center"
)

// FAQ is a question with a Markdown answer.
type FAQ struct {
	Question string
	Answer   string
}

// Article is a help article summary.
type Article struct {
	Title   string
	Excerpt string
}

// HelpCategory groups related articles.
type HelpCategory struct {
	Category string
	Articles []Article
}

// FAQs returns the Home tab questions.
func FAQs() []FAQ {
	return []FAQ{
		{
			Question: "What is Advith iTec?",
			Answer: "Advith ITeC is a tech-enabled consulting firm that integrates financial " +
				"expertise with advanced technology to streamline financial operations. " +
				"Established in 2020 and headquartered in Udupi, Karnataka, the company offers " +
				"remote, process-driven solutions designed to enhance efficiency, compliance, " +
				"and scalability for businesses worldwide.",
		},
		{
			Question: "What services do you offer?",
			Answer: "Advith ITeC provides a comprehensive suite of FinOps (Financial Operations) " +
				"services, including:\n\n" +
				"- Bookkeeping and Accounting\n" +
				"- Payroll Management\n" +
				"- Tax Compliance and Regulatory Filings\n" +
				"- Audit Support\n" +
				"- Data Analytics and MIS Reporting\n" +
				"- Corporate Law Compliance\n" +
				"- Digital Process Automation\n\n" +
				"These services are delivered through their Global Delivery Centre (GDC), " +
				"Global Capability Centre (GCC), and Centre of Excellence (CoE), ensuring " +
				"tailored solutions for diverse business needs.",
		},
		{
			Question: "What are your business hours?",
			Answer:   "We are available 24/7 for your support needs.",
		},
	}
}

// Help returns the Help tab categories.
func Help() []HelpCategory {
	return []HelpCategory{
		{
			Category: "GST Filing",
			Articles: []Article{
				{"GST Registration Process", "Step-by-step guide for GST registration."},
				{"Monthly GST Returns", "How to file GSTR-1 and GSTR-3B returns."},
				{"Input Tax Credit", "Understanding and claiming input tax credit."},
			},
		},
		{
			Category: "Income Tax",
			Articles: []Article{
				{"ITR Filing Guide", "Complete guide to filing your income tax returns."},
				{"Tax Deductions", "List of available tax deductions under various sections."},
				{"Form 16 & TDS", "Understanding Form 16 and TDS compliance."},
			},
		},
		{
			Category: "Corporate Tax",
			Articles: []Article{
				{"Corporate Tax Filing", "Guide for filing corporate tax returns."},
				{"Tax Planning", "Strategic tax planning for businesses."},
				{"International Taxation", "Understanding cross-border tax implications."},
			},
		},
		{
			Category: "Documentation",
			Articles: []Article{
				{"Required Documents", "List of documents needed for various tax filings."},
				{"Compliance Calendar", "Important tax deadlines and compliance dates."},
			},
		},
	}
}

// Markdown renders the question and answer.
func (f FAQ) Markdown() string {
	return fmt.Sprintf("### %s\n\n%s\n", f.Question, f.Answer)
}

// Markdown renders the category and its articles.
func (c HelpCategory) Markdown() string {
	var sb strings.Builder
	sb.WriteString("## " + c.Category + "\n\n")
	for _, a := range c.Articles {
		sb.WriteString("**" + a.Title + "**  \n")
		sb.WriteString(a.Excerpt + "\n\n")
	}
	return sb.String()
}
