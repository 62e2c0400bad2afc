// Package wizard provides interactive prompts for CLI commands.
package wizard

import (
	"fmt"
	"strings"

	"github.com/andywolf/ghcomment/internal/github"
	"github.com/charmbracelet/huh"
)

// PromptCredentials asks for a username and password, prefilling username.
func PromptCredentials(username string) (string, string, error) {
	var password string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("GitHub credentials").
				Description("Stored in the local preference store and sent as Basic auth."),

			huh.NewInput().
				Title("Username").
				Value(&username).
				Validate(required("username")),

			huh.NewInput().
				Title("Password or token").
				EchoMode(huh.EchoModePassword).
				Value(&password).
				Validate(required("password")),
		),
	)

	if err := form.Run(); err != nil {
		return "", "", fmt.Errorf("prompt cancelled: %w", err)
	}

	return strings.TrimSpace(username), password, nil
}

// SelectRepository lets the user pick one of repos and returns its index.
func SelectRepository(repos []github.Repository) (int, error) {
	if len(repos) == 0 {
		return -1, fmt.Errorf("no repositories to choose from")
	}

	index := 0
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Repository").
				Options(repositoryOptions(repos)...).
				Value(&index),
		),
	)

	if err := form.Run(); err != nil {
		return -1, fmt.Errorf("prompt cancelled: %w", err)
	}
	return index, nil
}

// SelectIssue lets the user pick one of issues, starting at selected.
func SelectIssue(issues []github.Issue, selected int) (int, error) {
	if len(issues) == 0 {
		return -1, fmt.Errorf("no issues to choose from")
	}

	index := selected
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Issue").
				Options(issueOptions(issues)...).
				Value(&index),
		),
	)

	if err := form.Run(); err != nil {
		return -1, fmt.Errorf("prompt cancelled: %w", err)
	}
	return index, nil
}

// PromptComment asks for the comment text, starting from draft.
func PromptComment(issue github.Issue, draft string) (string, error) {
	comment := draft

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(fmt.Sprintf("Comment on %s", issue.String())).
				Value(&comment).
				Validate(required("comment")),
		),
	)

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}
	return comment, nil
}

// Confirm asks a yes/no question.
func Confirm(title string) (bool, error) {
	var confirmed bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Value(&confirmed),
		),
	)

	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}

func repositoryOptions(repos []github.Repository) []huh.Option[int] {
	opts := make([]huh.Option[int], 0, len(repos))
	for i, r := range repos {
		opts = append(opts, huh.NewOption(r.FullName(), i))
	}
	return opts
}

func issueOptions(issues []github.Issue) []huh.Option[int] {
	opts := make([]huh.Option[int], 0, len(issues))
	for i, issue := range issues {
		opts = append(opts, huh.NewOption(issue.String(), i))
	}
	return opts
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
