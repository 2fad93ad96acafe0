package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/FerryCalvin/antam-autoq/internal/model"
)

const (
	fieldFullName = iota
	fieldNIK
	fieldPhone
	fieldEmail
	fieldPassword
	fieldLocation
	fieldDate
	fieldProxy
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Full name",
	"NIK",
	"Phone",
	"Email",
	"Password",
	"Location code",
	"Target date",
	"Proxy (optional)",
}

// nodeForm is the add-node input sequence. Enter advances through the
// fields and submits from the last one; Esc abandons the whole form.
type nodeForm struct {
	inputs [fieldCount]textinput.Model
	index  int
	errMsg string
}

func newNodeForm() *nodeForm {
	f := &nodeForm{}
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 128
		f.inputs[i] = in
	}
	f.inputs[fieldPassword].EchoMode = textinput.EchoPassword
	f.inputs[fieldPassword].EchoCharacter = '•'
	f.inputs[fieldLocation].Placeholder = "JKT-04"
	f.inputs[fieldDate].Placeholder = "2026-09-01"
	f.inputs[fieldProxy].Placeholder = "host:port"
	f.inputs[0].Focus()
	return f
}

// update routes one key to the focused field. It reports a completed
// request once the operator submits from the last field.
func (f *nodeForm) update(msg tea.Msg) (done bool, req model.CreateNodeRequest, cmd tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
		if f.index < fieldCount-1 {
			f.focus(f.index + 1)
			return false, model.CreateNodeRequest{}, nil
		}
		req = f.request()
		if err := req.Validate(); err != nil {
			f.errMsg = err.Error()
			f.focus(firstEmptyField(req))
			return false, model.CreateNodeRequest{}, nil
		}
		return true, req, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyTab, tea.KeyDown:
			f.focus((f.index + 1) % fieldCount)
			return false, model.CreateNodeRequest{}, nil
		case tea.KeyShiftTab, tea.KeyUp:
			f.focus((f.index + fieldCount - 1) % fieldCount)
			return false, model.CreateNodeRequest{}, nil
		}
	}

	f.inputs[f.index], cmd = f.inputs[f.index].Update(msg)
	return false, model.CreateNodeRequest{}, cmd
}

func (f *nodeForm) focus(index int) {
	f.inputs[f.index].Blur()
	f.index = index
	f.inputs[f.index].Focus()
}

func (f *nodeForm) request() model.CreateNodeRequest {
	return model.CreateNodeRequest{
		FullName:       strings.TrimSpace(f.inputs[fieldFullName].Value()),
		NIK:            strings.TrimSpace(f.inputs[fieldNIK].Value()),
		Phone:          strings.TrimSpace(f.inputs[fieldPhone].Value()),
		Email:          strings.TrimSpace(f.inputs[fieldEmail].Value()),
		Password:       f.inputs[fieldPassword].Value(),
		TargetLocation: strings.ToUpper(strings.TrimSpace(f.inputs[fieldLocation].Value())),
		TargetDate:     strings.TrimSpace(f.inputs[fieldDate].Value()),
		Proxy:          strings.TrimSpace(f.inputs[fieldProxy].Value()),
	}
}

func firstEmptyField(req model.CreateNodeRequest) int {
	switch {
	case req.FullName == "":
		return fieldFullName
	case req.NIK == "":
		return fieldNIK
	case req.Phone == "":
		return fieldPhone
	case req.Email == "":
		return fieldEmail
	case req.Password == "":
		return fieldPassword
	case req.TargetLocation == "":
		return fieldLocation
	default:
		return fieldDate
	}
}
