package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inkwell/app/services"

	"github.com/manifoldco/promptui"
)

// promptConfirmer asks on the terminal. Ctrl-C aborts the command instead
// of answering no.
type promptConfirmer struct{}

func (promptConfirmer) Confirm(_ context.Context, label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	_, err := prompt.Run()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	default:
		return false, fmt.Errorf("confirmation prompt: %w", err)
	}
}

func confirmer() services.Confirmer {
	if assumeYes {
		return services.Answer(true)
	}
	return promptConfirmer{}
}

var errRequired = errors.New("a value is required")

// ask prompts for a non-empty line of text.
func ask(label, def string) (string, error) {
	p := promptui.Prompt{
		Label:     label,
		Default:   def,
		AllowEdit: true,
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errRequired
			}
			return nil
		},
	}
	result, err := p.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result), nil
}

// askPassword prompts for a masked password. check runs as it is typed;
// nil accepts anything.
func askPassword(label string, check func(string) error) (string, error) {
	p := promptui.Prompt{
		Label:    label,
		Mask:     '*',
		Validate: check,
	}
	return p.Run()
}
