package login

import (
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/omergehad405/EduMaster/internal/identity"
	"github.com/omergehad405/EduMaster/internal/screen"
	"github.com/omergehad405/EduMaster/internal/screens/shared"
	"github.com/omergehad405/EduMaster/internal/ui/components"
	"github.com/omergehad405/EduMaster/internal/ui/layout"
	"github.com/omergehad405/EduMaster/internal/ui/theme"
)

// Mode selects between signing in and creating an account.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

type field int

const (
	fieldUsername field = iota
	fieldEmail
	fieldPassword
	fieldAvatar
)

// fieldKeys are the validation field names reported by identity.InputError.
var fieldKeys = map[field]string{
	fieldUsername: "Username",
	fieldEmail:    "Email",
	fieldPassword: "Password",
	fieldAvatar:   "AvatarPath",
}

type doneMsg struct {
	err error
}

// LoginScreen signs a learner in or registers a new account.
type LoginScreen struct {
	deps    shared.Deps
	mode    Mode
	inputs  map[field]*components.TextInput
	focus   int
	loader  components.Loader
	err     error
	message string
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates the screen in the given mode. message is shown above the
// form, for example after the session expired.
func New(deps shared.Deps, mode Mode, message string) *LoginScreen {
	mk := func(label, placeholder string, secret bool) *components.TextInput {
		ti := components.NewTextInput(label, placeholder, secret, 40)
		return &ti
	}
	s := &LoginScreen{
		deps: deps,
		mode: mode,
		inputs: map[field]*components.TextInput{
			fieldUsername: mk("Username", "at least 3 characters", false),
			fieldEmail:    mk("Email", "you@example.com", false),
			fieldPassword: mk("Password", "", true),
			fieldAvatar:   mk("Avatar (optional)", "path to an image file", false),
		},
		loader:  components.NewLoader(),
		message: message,
	}
	return s
}

func (s *LoginScreen) fields() []field {
	if s.mode == ModeRegister {
		return []field{fieldUsername, fieldEmail, fieldPassword, fieldAvatar}
	}
	return []field{fieldEmail, fieldPassword}
}

func (s *LoginScreen) Init() tea.Cmd {
	return s.focusAt(0)
}

func (s *LoginScreen) Title() string {
	if s.mode == ModeRegister {
		return "Create account"
	}
	return "Log in"
}

func (s *LoginScreen) KeyHints() []layout.KeyHint {
	other := "Register"
	if s.mode == ModeRegister {
		other = "Log in"
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Submit"},
		{Key: "Ctrl+R", Description: other},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *LoginScreen) focusAt(i int) tea.Cmd {
	fs := s.fields()
	s.focus = (i + len(fs)) % len(fs)
	var cmd tea.Cmd
	for j, f := range fs {
		if j == s.focus {
			cmd = s.inputs[f].Focus()
		} else {
			s.inputs[f].Blur()
		}
	}
	return cmd
}

func (s *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		s.loader.Stop()
		if msg.err != nil {
			s.showError(msg.err)
			return s, nil
		}
		return s, func() tea.Msg { return shared.SignedInMsg{} }

	case tea.KeyMsg:
		if s.loader.Active {
			return s, nil
		}
		switch msg.String() {
		case "tab", "down":
			return s, s.focusAt(s.focus + 1)
		case "shift+tab", "up":
			return s, s.focusAt(s.focus - 1)
		case "ctrl+r":
			if s.mode == ModeLogin {
				s.mode = ModeRegister
			} else {
				s.mode = ModeLogin
			}
			s.clearErrors()
			return s, s.focusAt(0)
		case "enter":
			if s.focus < len(s.fields())-1 {
				return s, s.focusAt(s.focus + 1)
			}
			return s, s.submit()
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	s.loader, cmd = s.loader.Update(msg)
	cmds = append(cmds, cmd)
	f := s.fields()[s.focus]
	updated, cmd := s.inputs[f].Update(msg)
	*s.inputs[f] = updated
	cmds = append(cmds, cmd)
	return s, tea.Batch(cmds...)
}

func (s *LoginScreen) value(f field) string {
	v := s.inputs[f].Value()
	if f == fieldPassword {
		return v
	}
	return strings.TrimSpace(v)
}

func (s *LoginScreen) submit() tea.Cmd {
	s.clearErrors()
	deps := s.deps
	var run func() error
	if s.mode == ModeRegister {
		reg := identity.Registration{
			Username:   s.value(fieldUsername),
			Email:      s.value(fieldEmail),
			Password:   s.value(fieldPassword),
			AvatarPath: s.value(fieldAvatar),
		}
		run = func() error {
			ctx, cancel := shared.Context()
			defer cancel()
			return deps.Session.Register(ctx, reg)
		}
	} else {
		creds := identity.Credentials{
			Email:    s.value(fieldEmail),
			Password: s.value(fieldPassword),
		}
		run = func() error {
			ctx, cancel := shared.Context()
			defer cancel()
			return deps.Session.Login(ctx, creds)
		}
	}
	start := s.loader.Start("Signing in...")
	return tea.Batch(start, func() tea.Msg { return doneMsg{err: run()} })
}

func (s *LoginScreen) clearErrors() {
	s.err = nil
	for _, in := range s.inputs {
		in.Err = ""
	}
}

func (s *LoginScreen) showError(err error) {
	var inErr *identity.InputError
	if errors.As(err, &inErr) {
		for f, key := range fieldKeys {
			s.inputs[f].Err = inErr.Fields[key]
		}
		return
	}
	s.err = err
}

func (s *LoginScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	var b strings.Builder

	b.WriteString(theme.Title.Width(cw).Render(s.Title()))
	b.WriteString("\n\n")
	if s.message != "" {
		b.WriteString(theme.Notice.Render(s.message))
		b.WriteString("\n\n")
	}
	for _, f := range s.fields() {
		b.WriteString(s.inputs[f].View())
		b.WriteString("\n\n")
	}
	if v := s.loader.View(); v != "" {
		b.WriteString(v)
		b.WriteString("\n")
	}
	if s.err != nil {
		b.WriteString(components.Notice(s.err))
		b.WriteString("\n")
	}

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary).
		Padding(1, 3).
		Width(cw).
		Render(b.String())
	return components.Center(card, width, height)
}
