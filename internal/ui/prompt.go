package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/manifoldco/promptui"
)

// ErrCancelled is returned when the user aborts a prompt
var ErrCancelled = errors.New("operation cancelled by user")

// ConfirmPrompt asks a yes/no confirmation question
func ConfirmPrompt(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}

	result, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		if errors.Is(err, promptui.ErrInterrupt) {
			return false, ErrCancelled
		}
		return false, err
	}

	return strings.EqualFold(result, "y"), nil
}

// ConfirmDangerousAction warns on w and then asks for confirmation
func ConfirmDangerousAction(w io.Writer, action, target string) (bool, error) {
	PrintWarning(w, "You are about to %s: %s", action, target)
	PrintWarning(w, "Dependency checks are skipped; dependent packages may break.")
	fmt.Fprintln(w)

	return ConfirmPrompt(fmt.Sprintf("Are you sure you want to %s %s", action, target))
}

// SelectPackage presents names in a searchable list and returns the choice
func SelectPackage(label string, names []string) (string, error) {
	prompt := promptui.Select{
		Label:             label,
		Items:             names,
		Size:              min(12, len(names)),
		StartInSearchMode: true,
		Searcher:          FuzzySearcher(names),
	}

	_, result, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return "", ErrCancelled
		}
		return "", err
	}

	return result, nil
}

// FuzzySearcher returns a promptui searcher that fuzzy-matches items
func FuzzySearcher(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		if index < 0 || index >= len(items) {
			return false
		}
		input = strings.TrimSpace(input)
		if input == "" {
			return true
		}
		return fuzzy.MatchNormalizedFold(input, items[index])
	}
}
