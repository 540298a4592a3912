package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"animehub/internal/client"
	"animehub/internal/tui/styles"
	"animehub/pkg/models"
)

// AuthMode represents login or register mode
type AuthMode int

const (
	ModeLogin AuthMode = iota
	ModeRegister
)

// AuthModel handles login/register forms
type AuthModel struct {
	mode      AuthMode
	apiClient *client.Client

	// Input fields
	nameInput     textinput.Model
	emailInput    textinput.Model
	passwordInput textinput.Model
	confirmInput  textinput.Model

	// State
	focusIndex int
	loading    bool
	err        error

	// Window size
	width  int
	height int
}

// NewAuthModel creates a new auth model
func NewAuthModel(apiClient *client.Client) AuthModel {
	nameInput := textinput.New()
	nameInput.Placeholder = "Name"
	nameInput.CharLimit = 50
	nameInput.Width = 30

	emailInput := textinput.New()
	emailInput.Placeholder = "Email"
	emailInput.CharLimit = 100
	emailInput.Width = 30
	emailInput.Focus()

	passwordInput := textinput.New()
	passwordInput.Placeholder = "Password"
	passwordInput.CharLimit = 128
	passwordInput.Width = 30
	passwordInput.EchoMode = textinput.EchoPassword
	passwordInput.EchoCharacter = '•'

	confirmInput := textinput.New()
	confirmInput.Placeholder = "Confirm Password"
	confirmInput.CharLimit = 128
	confirmInput.Width = 30
	confirmInput.EchoMode = textinput.EchoPassword
	confirmInput.EchoCharacter = '•'

	return AuthModel{
		mode:          ModeLogin,
		apiClient:     apiClient,
		nameInput:     nameInput,
		emailInput:    emailInput,
		passwordInput: passwordInput,
		confirmInput:  confirmInput,
		focusIndex:    0,
	}
}

// Init initializes the model
func (m AuthModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m AuthModel) Update(msg tea.Msg) (AuthModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("tab"))):
			return m.nextField(), nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("shift+tab"))):
			return m.prevField(), nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			if m.isSubmitFocused() {
				return m.submit()
			}
			return m.nextField(), nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+t"))):
			m.toggleMode()
			return m, nil
		}

	case AuthSuccessMsg:
		m.loading = false
		// Parent model handles navigation
		return m, nil

	case AuthErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil
	}

	// Update focused input
	var cmd tea.Cmd
	switch m.fieldAt(m.focusIndex) {
	case fieldName:
		m.nameInput, cmd = m.nameInput.Update(msg)
	case fieldEmail:
		m.emailInput, cmd = m.emailInput.Update(msg)
	case fieldPassword:
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	case fieldConfirm:
		m.confirmInput, cmd = m.confirmInput.Update(msg)
	}
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

type authField int

const (
	fieldName authField = iota
	fieldEmail
	fieldPassword
	fieldConfirm
	fieldSubmit
)

// fieldAt maps a focus index to the field it lands on for the current mode.
// Login shows email/password only; register adds name and confirm.
func (m AuthModel) fieldAt(index int) authField {
	if m.mode == ModeLogin {
		switch index {
		case 0:
			return fieldEmail
		case 1:
			return fieldPassword
		default:
			return fieldSubmit
		}
	}
	switch index {
	case 0:
		return fieldName
	case 1:
		return fieldEmail
	case 2:
		return fieldPassword
	case 3:
		return fieldConfirm
	default:
		return fieldSubmit
	}
}

func (m AuthModel) maxIndex() int {
	if m.mode == ModeRegister {
		return 4
	}
	return 2
}

// View renders the auth form
func (m AuthModel) View() string {
	var b strings.Builder

	title := "🔐 Login"
	if m.mode == ModeRegister {
		title = "📝 Register"
	}
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n\n")

	var form strings.Builder
	if m.mode == ModeRegister {
		form.WriteString(m.renderField("Name", m.nameInput.View(), m.fieldAt(m.focusIndex) == fieldName))
		form.WriteString("\n")
	}
	form.WriteString(m.renderField("Email", m.emailInput.View(), m.fieldAt(m.focusIndex) == fieldEmail))
	form.WriteString("\n")
	form.WriteString(m.renderField("Password", m.passwordInput.View(), m.fieldAt(m.focusIndex) == fieldPassword))
	form.WriteString("\n")
	if m.mode == ModeRegister {
		form.WriteString(m.renderField("Confirm", m.confirmInput.View(), m.fieldAt(m.focusIndex) == fieldConfirm))
		form.WriteString("\n")
	}
	form.WriteString("\n")

	label := "  Login  "
	if m.mode == ModeRegister {
		label = "  Register  "
	}
	submitStyle := styles.ButtonStyle
	if m.isSubmitFocused() {
		submitStyle = styles.ButtonActiveStyle
	}
	form.WriteString(submitStyle.Render(label))

	b.WriteString(styles.CardStyle.Render(form.String()))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(styles.ErrorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n\n")
	}

	if m.loading {
		b.WriteString(styles.SpinnerStyle.Render("⟳ "))
		b.WriteString(styles.InfoStyle.Render("Processing..."))
		b.WriteString("\n\n")
	}

	if m.mode == ModeLogin {
		b.WriteString(styles.HelpStyle.Render("Press Ctrl+T to switch to Register"))
	} else {
		b.WriteString(styles.HelpStyle.Render("Press Ctrl+T to switch to Login"))
	}

	return b.String()
}

// renderField renders a form field with label
func (m AuthModel) renderField(label, input string, focused bool) string {
	labelStyle := styles.MetaKeyStyle
	if focused {
		labelStyle = styles.InputFocusedStyle
	}
	return fmt.Sprintf("%s\n%s", labelStyle.Render(label+":"), input)
}

// nextField moves focus to the next field
func (m AuthModel) nextField() AuthModel {
	m.focusIndex = (m.focusIndex + 1) % (m.maxIndex() + 1)
	m.updateFocus()
	return m
}

// prevField moves focus to the previous field
func (m AuthModel) prevField() AuthModel {
	m.focusIndex--
	if m.focusIndex < 0 {
		m.focusIndex = m.maxIndex()
	}
	m.updateFocus()
	return m
}

// updateFocus updates input focus states
func (m *AuthModel) updateFocus() {
	m.nameInput.Blur()
	m.emailInput.Blur()
	m.passwordInput.Blur()
	m.confirmInput.Blur()

	switch m.fieldAt(m.focusIndex) {
	case fieldName:
		m.nameInput.Focus()
	case fieldEmail:
		m.emailInput.Focus()
	case fieldPassword:
		m.passwordInput.Focus()
	case fieldConfirm:
		m.confirmInput.Focus()
	}
}

// isSubmitFocused returns true if the submit button is focused
func (m AuthModel) isSubmitFocused() bool {
	return m.fieldAt(m.focusIndex) == fieldSubmit
}

// toggleMode switches between login and register
func (m *AuthModel) toggleMode() {
	if m.mode == ModeLogin {
		m.mode = ModeRegister
	} else {
		m.mode = ModeLogin
	}
	m.focusIndex = 0
	m.err = nil
	m.updateFocus()
}

// submit handles form submission
func (m AuthModel) submit() (AuthModel, tea.Cmd) {
	if m.mode == ModeRegister && m.nameInput.Value() == "" {
		m.err = fmt.Errorf("name is required")
		return m, nil
	}
	if m.emailInput.Value() == "" {
		m.err = fmt.Errorf("email is required")
		return m, nil
	}
	if m.passwordInput.Value() == "" {
		m.err = fmt.Errorf("password is required")
		return m, nil
	}
	if m.mode == ModeRegister && m.passwordInput.Value() != m.confirmInput.Value() {
		m.err = fmt.Errorf("passwords do not match")
		return m, nil
	}

	m.loading = true
	m.err = nil

	if m.mode == ModeLogin {
		return m, m.doLogin()
	}
	return m, m.doRegister()
}

// doLogin performs the login API call
func (m AuthModel) doLogin() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		resp, err := m.apiClient.Login(ctx, m.emailInput.Value(), m.passwordInput.Value())
		if err != nil {
			return AuthErrorMsg{Err: err}
		}
		return AuthSuccessMsg{Token: resp.Token, User: &resp.User}
	}
}

// doRegister performs the registration API call
func (m AuthModel) doRegister() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		resp, err := m.apiClient.Register(ctx, m.nameInput.Value(), m.emailInput.Value(), m.passwordInput.Value())
		if err != nil {
			return AuthErrorMsg{Err: err}
		}
		return AuthSuccessMsg{Token: resp.Token, User: &resp.User}
	}
}

// Messages

// AuthSuccessMsg is sent when auth succeeds
type AuthSuccessMsg struct {
	Token string
	User  *models.UserProfile
}

// AuthErrorMsg is sent when auth fails
type AuthErrorMsg struct {
	Err error
}
