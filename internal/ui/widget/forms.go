// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/advith-tui/internal/content"
	"github.com/jeranaias/advith-tui/internal/ui/styles"
	"github.com/jeranaias/advith-tui/internal/validate"
)

// =============================================================================
// FORM FIELDS
// =============================================================================

type fieldKind int

const (
	kindText fieldKind = iota
	kindPassword
	kindSelect
	kindSubmit
	kindToggle
)

type formField struct {
	id    validate.Field
	label string
	kind  fieldKind

	input textinput.Model

	options     []string
	choice      int
	placeholder string
}

func newTextField(id validate.Field, label, placeholder string, kind fieldKind) *formField {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = 128
	if kind == kindPassword {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return &formField{id: id, label: label, kind: kind, input: ti, choice: -1}
}

func newSelectField(id validate.Field, label, placeholder string, options []string) *formField {
	return &formField{id: id, label: label, kind: kindSelect, options: options, choice: -1, placeholder: placeholder}
}

func (f *formField) isInput() bool {
	return f.kind == kindText || f.kind == kindPassword
}

func (f *formField) value() string {
	switch f.kind {
	case kindText, kindPassword:
		return f.input.Value()
	case kindSelect:
		if f.choice >= 0 && f.choice < len(f.options) {
			return f.options[f.choice]
		}
	}
	return ""
}

// cycle moves a select by delta, wrapping, and reports whether it changed.
func (f *formField) cycle(delta int) bool {
	n := len(f.options)
	if n == 0 {
		return false
	}
	next := f.choice + delta
	switch {
	case f.choice < 0 && delta < 0:
		next = n - 1
	case next < 0:
		next = n - 1
	case next >= n:
		next = 0
	}
	changed := next != f.choice
	f.choice = next
	return changed
}

// jump selects the next option starting with r after the current one.
func (f *formField) jump(r rune) bool {
	prefix := strings.ToLower(string(r))
	n := len(f.options)
	for i := 1; i <= n; i++ {
		idx := (f.choice + i + n) % n
		if strings.HasPrefix(strings.ToLower(f.options[idx]), prefix) {
			changed := idx != f.choice
			f.choice = idx
			return changed
		}
	}
	return false
}

func (f *formField) setOptions(options []string) {
	f.options = options
	f.choice = -1
}

// =============================================================================
// FORM
// =============================================================================

type formKind int

const (
	loginForm formKind = iota
	signupForm
)

// form is the login or signup form. Errors are kept per field; FieldForm
// holds the submission error.
type form struct {
	kind     formKind
	title    string
	subtitle string
	fields   []*formField
	focus    int
	errors   validate.FieldErrors
	busy     bool
}

func newLoginForm() *form {
	f := &form{
		kind:     loginForm,
		title:    "Welcome Back",
		subtitle: "Sign in to continue",
		errors:   validate.FieldErrors{},
		fields: []*formField{
			newTextField(validate.FieldEmail, "Email", "name@example.com", kindText),
			newTextField(validate.FieldPassword, "Password", "Enter your password", kindPassword),
			{label: "Sign In", kind: kindSubmit},
			{label: "Don't have an account? Sign Up", kind: kindToggle},
		},
	}
	f.setFocus(0)
	return f
}

func newSignupForm() *form {
	countries := content.Countries()
	names := make([]string, len(countries))
	for i, c := range countries {
		names[i] = c.Name
	}

	f := &form{
		kind:     signupForm,
		title:    "Create Account",
		subtitle: "Sign up to chat with our support team",
		errors:   validate.FieldErrors{},
		fields: []*formField{
			newTextField(validate.FieldName, "Full Name", "Your name", kindText),
			newTextField(validate.FieldEmail, "Email", "name@example.com", kindText),
			newSelectField(validate.FieldCountry, "Country", "Select Country", names),
			newSelectField(validate.FieldState, "State/Province", "Select State", nil),
			newTextField(validate.FieldPhone, "Phone Number", "9876543210", kindText),
			newTextField(validate.FieldPassword, "Password", "Create a password", kindPassword),
			newTextField(validate.FieldConfirm, "Confirm Password", "Repeat the password", kindPassword),
			{label: "Sign Up", kind: kindSubmit},
			{label: "Already have an account? Sign In", kind: kindToggle},
		},
	}
	f.setFocus(0)
	return f
}

func (f *form) field(id validate.Field) *formField {
	for _, fld := range f.fields {
		if fld.id == id && fld.id != "" {
			return fld
		}
	}
	return nil
}

func (f *form) value(id validate.Field) string {
	if fld := f.field(id); fld != nil {
		return fld.value()
	}
	return ""
}

func (f *form) focused() *formField {
	return f.fields[f.focus]
}

func (f *form) setFocus(i int) tea.Cmd {
	n := len(f.fields)
	f.focus = ((i % n) + n) % n
	var cmd tea.Cmd
	for idx, fld := range f.fields {
		if !fld.isInput() {
			continue
		}
		if idx == f.focus {
			cmd = fld.input.Focus()
		} else {
			fld.input.Blur()
		}
	}
	return cmd
}

func (f *form) next() tea.Cmd { return f.setFocus(f.focus + 1) }
func (f *form) prev() tea.Cmd { return f.setFocus(f.focus - 1) }

// country returns the selected country, if any.
func (f *form) country() (content.Country, bool) {
	return content.LookupCountry(f.value(validate.FieldCountry))
}

// login returns the login values.
func (f *form) login() validate.Login {
	return validate.Login{
		Email:    strings.TrimSpace(f.value(validate.FieldEmail)),
		Password: f.value(validate.FieldPassword),
	}
}

// signup returns the signup values with the phone carrying the country's
// dial code.
func (f *form) signup() validate.Signup {
	phone := strings.TrimSpace(f.value(validate.FieldPhone))
	if c, ok := f.country(); ok {
		phone = c.FormatPhone(phone)
	}
	return validate.Signup{
		Name:     f.value(validate.FieldName),
		Email:    strings.TrimSpace(f.value(validate.FieldEmail)),
		Phone:    phone,
		Country:  f.value(validate.FieldCountry),
		State:    f.value(validate.FieldState),
		Password: f.value(validate.FieldPassword),
		Confirm:  f.value(validate.FieldConfirm),
	}
}

// revalidate re-checks a field after an edit. Only signup validates live.
func (f *form) revalidate(id validate.Field) {
	if f.kind != signupForm || id == "" {
		return
	}
	s := f.signup()
	f.errors.Set(id, s.ValidateField(id))

	switch id {
	case validate.FieldPassword:
		f.errors.Set(validate.FieldConfirm, s.ValidateField(validate.FieldConfirm))
	case validate.FieldCountry:
		f.errors.Set(validate.FieldState, s.ValidateField(validate.FieldState))
		f.errors.Set(validate.FieldPhone, "")
		if f.value(validate.FieldPhone) != "" {
			f.errors.Set(validate.FieldPhone, s.ValidateField(validate.FieldPhone))
		}
	}
}

// validateAll checks every field as a submit would.
func (f *form) validateAll() bool {
	if f.kind == loginForm {
		f.errors = f.login().Validate()
	} else {
		f.errors = f.signup().Validate()
	}
	return f.errors.Valid()
}

// applyErrors shows a failed submission. Field errors from the server-side
// validation attach to their fields; anything else is a form error.
func (f *form) applyErrors(err error) {
	f.busy = false
	var fe validate.FieldErrors
	if errors.As(err, &fe) {
		f.errors = fe
		return
	}
	f.errors = validate.FieldErrors{}
	f.errors.Set(validate.FieldForm, err.Error())
}

// selectChanged reacts to a select value change.
func (f *form) selectChanged(fld *formField) {
	if fld.id == validate.FieldCountry {
		state := f.field(validate.FieldState)
		if state != nil {
			state.setOptions(content.StatesOf(fld.value()))
		}
	}
	f.revalidate(fld.id)
}

// formAction is what a key press on the form asks the model to do.
type formAction int

const (
	formNone formAction = iota
	formSubmit
	formToggle
)

// update routes a key to the focused field.
func (f *form) update(msg tea.KeyMsg, keys KeyMap) (formAction, tea.Cmd) {
	if f.busy {
		return formNone, nil
	}
	fld := f.focused()

	switch {
	case key.Matches(msg, keys.Next):
		return formNone, f.next()
	case key.Matches(msg, keys.Prev):
		return formNone, f.prev()
	case key.Matches(msg, keys.Select):
		switch fld.kind {
		case kindToggle:
			return formToggle, nil
		case kindSubmit:
			return formSubmit, nil
		}
		// Enter on the last input submits, elsewhere it advances.
		if f.focus+1 < len(f.fields) && f.fields[f.focus+1].kind == kindSubmit {
			return formSubmit, nil
		}
		return formNone, f.next()
	}

	if fld.kind == kindSelect {
		changed := false
		switch {
		case key.Matches(msg, keys.Left):
			changed = fld.cycle(-1)
		case key.Matches(msg, keys.Right) || msg.String() == " ":
			changed = fld.cycle(1)
		case msg.Type == tea.KeyRunes && len(msg.Runes) == 1:
			changed = fld.jump(msg.Runes[0])
		}
		if changed {
			f.selectChanged(fld)
		}
		return formNone, nil
	}

	if fld.isInput() {
		before := fld.input.Value()
		var cmd tea.Cmd
		fld.input, cmd = fld.input.Update(msg)
		if fld.input.Value() != before {
			f.errors.Set(validate.FieldForm, "")
			f.revalidate(fld.id)
		}
		return formNone, cmd
	}
	return formNone, nil
}

// =============================================================================
// FORM RENDERING
// =============================================================================

func (f *form) view(theme *styles.Theme, width int) string {
	var sb strings.Builder

	sb.WriteString(theme.FormTitle.Render(f.title) + "\n")
	sb.WriteString(theme.FormSubtitle.Render(f.subtitle) + "\n\n")

	if msg := f.errors.Get(validate.FieldForm); msg != "" {
		sb.WriteString(theme.FormError.Width(width).Render(msg) + "\n\n")
	}

	inputWidth := width - 4
	if inputWidth < 16 {
		inputWidth = 16
	}

	for i, fld := range f.fields {
		focused := i == f.focus
		switch fld.kind {
		case kindSubmit:
			label := fld.label
			style := theme.Button
			if f.busy {
				label = busyLabel(f.kind)
				style = theme.ButtonBusy
			} else if focused {
				style = theme.ButtonFocus
			}
			sb.WriteString("\n" + style.Render(label) + "\n")
		case kindToggle:
			line := theme.ToggleLink.Render(fld.label)
			if focused {
				line = theme.LabelFocus.Render("> ") + line
			} else {
				line = "  " + line
			}
			sb.WriteString("\n" + line + "\n")
		default:
			sb.WriteString(f.renderField(theme, fld, focused, inputWidth))
		}
	}
	return sb.String()
}

func (f *form) renderField(theme *styles.Theme, fld *formField, focused bool, width int) string {
	label := theme.Label
	box := theme.InputBox
	if focused {
		label = theme.LabelFocus
		box = theme.InputBoxFocus
	}

	var body string
	switch fld.kind {
	case kindSelect:
		switch {
		case len(fld.options) == 0:
			body = theme.Muted.Render("Select a country first")
		case fld.choice < 0:
			body = theme.Muted.Render(fld.placeholder)
		default:
			body = theme.Select.Render(fld.value())
		}
		if focused && len(fld.options) > 0 {
			body = theme.SelectFocus.Render("< ") + body + theme.SelectFocus.Render(" >")
		}
	default:
		fld.input.Width = width - 4
		body = fld.input.View()
		if fld.id == validate.FieldPhone {
			if c, ok := f.country(); ok {
				body = theme.Muted.Render(c.DialCode+" ") + body
			}
		}
	}

	out := label.Render(fld.label) + "\n" + box.Width(width).Render(body) + "\n"
	if msg := f.errors.Get(fld.id); msg != "" {
		out += theme.FieldError.Render(strings.TrimRight(msg, "\n")) + "\n"
	}
	return out
}

func busyLabel(kind formKind) string {
	if kind == loginForm {
		return "Signing in..."
	}
	return "Creating account..."
}

// renderCentered centers a block in width.
func renderCentered(s string, width int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}
